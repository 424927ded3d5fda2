package models

import (
	"fmt"
	"time"
)

// StorageUsage is the quota report of GET /v1/storage/usage/. The amounts
// are human-readable strings produced by the server (e.g. "12.5 MB").
type StorageUsage struct {
	Used           string  `json:"used_storage"`
	Remaining      string  `json:"remaining_storage"`
	Total          string  `json:"total_storage"`
	UsedPercentage float64 `json:"used_percentage"`
}

// Permissions is the feature set granted by the user's package.
type Permissions struct {
	Chat  bool `json:"chat"`
	Image bool `json:"image"`
}

// File is a stored file. ParentFolder is nil for files in the root.
type File struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	FileURL       string    `json:"file_url,omitempty"`
	UniqueLink    string    `json:"unique_link,omitempty"`
	UniqueLinkURL string    `json:"unique_link_url,omitempty"`
	Size          int64     `json:"size"`
	UploadedAt    time.Time `json:"uploaded_at"`
	ParentFolder  *string   `json:"parent_folder"`
}

// Folder is a user folder with the files nested under it.
type Folder struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	Files         []File    `json:"files"`
	UniqueLink    string    `json:"unique_link,omitempty"`
	UniqueLinkURL string    `json:"unique_link_url,omitempty"`
}

// Listing is the wire shape of GET /v1/storage/: every folder plus the
// files that live directly in the root.
type Listing struct {
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}

// ItemKind distinguishes the two kinds of storage entries.
type ItemKind string

const (
	ItemKindFolder ItemKind = "folder"
	ItemKindFile   ItemKind = "file"
)

// Validate checks that k is one of the known kinds.
func (k ItemKind) Validate() error {
	switch k {
	case ItemKindFolder, ItemKindFile:
		return nil
	default:
		return fmt.Errorf("unknown item kind %q", string(k))
	}
}

// Item identifies a folder or a file for operations that accept either.
type Item struct {
	ID            string
	Name          string
	Kind          ItemKind
	UniqueLink    string
	UniqueLinkURL string
}

// Item returns the generic reference of the folder.
func (f Folder) Item() Item {
	return Item{ID: f.ID, Name: f.Name, Kind: ItemKindFolder, UniqueLink: f.UniqueLink, UniqueLinkURL: f.UniqueLinkURL}
}

// Item returns the generic reference of the file.
func (f File) Item() Item {
	return Item{ID: f.ID, Name: f.Filename, Kind: ItemKindFile, UniqueLink: f.UniqueLink, UniqueLinkURL: f.UniqueLinkURL}
}

// DeleteRequest is the body of DELETE /v1/storage/delete/. Exactly one of
// the two identifiers is set.
type DeleteRequest struct {
	FolderID string `json:"folder_id,omitempty"`
	FileID   string `json:"file_id,omitempty"`
}

// CreateFolderRequest is the body of POST /v1/create/folder/.
type CreateFolderRequest struct {
	Name string `json:"name"`
}

// Snapshot is the client-side cache of server-owned resources.
//
// Each category carries a Loaded flag so a view can tell "never fetched"
// apart from "fetched and empty".
type Snapshot struct {
	Storage     StorageUsage
	Permissions Permissions
	Folders     []Folder
	Files       []File

	StorageLoaded     bool
	PermissionsLoaded bool
	ListingLoaded     bool
}

// Clone returns a deep copy of the snapshot so callers can never alias the
// synchronizer's slices.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Folders != nil {
		out.Folders = make([]Folder, len(s.Folders))
		for i, f := range s.Folders {
			f.Files = append([]File(nil), f.Files...)
			out.Folders[i] = f
		}
	}
	if s.Files != nil {
		out.Files = append([]File(nil), s.Files...)
	}
	return out
}

// FolderByName returns the first folder called name.
func (s Snapshot) FolderByName(name string) (Folder, bool) {
	for _, f := range s.Folders {
		if f.Name == name {
			return f, true
		}
	}
	return Folder{}, false
}

// Contains reports whether an item with the given id and kind is present.
func (s Snapshot) Contains(id string, kind ItemKind) bool {
	switch kind {
	case ItemKindFolder:
		for _, f := range s.Folders {
			if f.ID == id {
				return true
			}
		}
	case ItemKindFile:
		for _, f := range s.Files {
			if f.ID == id {
				return true
			}
		}
		for _, folder := range s.Folders {
			for _, f := range folder.Files {
				if f.ID == id {
					return true
				}
			}
		}
	}
	return false
}
