package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

// FetchError reports the failure of one snapshot category.
type FetchError struct {
	Category Category
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var errUnknownCategory = errors.New("unknown category")

var fetchFallbacks = map[Category]string{
	CategoryPermissions: "Could not load your package permissions",
	CategoryStorage:     "Could not load storage usage",
	CategoryListing:     "Could not load your files",
}

type resourceSynchronizer struct {
	api     adapter.ServerAdapter
	notes   *NotificationCenter
	uploads *UploadTracker
	logger  *logger.Logger

	mu       sync.RWMutex
	snapshot models.Snapshot
	// generation changes on Reset; fetches carry the generation they
	// started in and are discarded when it no longer matches.
	generation uint64
}

// NewResourceSynchronizer creates a synchronizer with an empty snapshot.
func NewResourceSynchronizer(api adapter.ServerAdapter, notes *NotificationCenter, uploads *UploadTracker, log *logger.Logger) ResourceSynchronizer {
	return &resourceSynchronizer{
		api:     api,
		notes:   notes,
		uploads: uploads,
		logger:  log,
	}
}

func (s *resourceSynchronizer) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

func (s *resourceSynchronizer) Reset() {
	s.mu.Lock()
	s.generation++
	s.snapshot = models.Snapshot{}
	s.mu.Unlock()

	s.logger.Debug().Str("func", "resourceSynchronizer.Reset").Msg("snapshot reset")
}

func (s *resourceSynchronizer) RefreshAll(ctx context.Context, categories ...Category) error {
	categories = uniqueCategories(categories)

	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	errs := make([]error, len(categories))
	var g errgroup.Group
	for i, category := range categories {
		g.Go(func() error {
			errs[i] = s.fetch(ctx, gen, category)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func uniqueCategories(categories []Category) []Category {
	if len(categories) == 0 {
		return AllCategories
	}

	seen := make(map[Category]bool, len(categories))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (s *resourceSynchronizer) fetch(ctx context.Context, gen uint64, category Category) error {
	var update func(snap *models.Snapshot)

	switch category {
	case CategoryPermissions:
		perms, err := s.api.Permissions(ctx)
		if err != nil {
			return s.fetchFailed(category, err)
		}
		update = func(snap *models.Snapshot) {
			snap.Permissions = perms
			snap.PermissionsLoaded = true
		}
	case CategoryStorage:
		usage, err := s.api.StorageUsage(ctx)
		if err != nil {
			return s.fetchFailed(category, err)
		}
		update = func(snap *models.Snapshot) {
			snap.Storage = usage
			snap.StorageLoaded = true
		}
	case CategoryListing:
		listing, err := s.api.Listing(ctx)
		if err != nil {
			return s.fetchFailed(category, err)
		}
		update = func(snap *models.Snapshot) {
			snap.Folders = nonNil(listing.Folders)
			snap.Files = nonNil(listing.Files)
			snap.ListingLoaded = true
		}
	default:
		return &FetchError{Category: category, Err: errUnknownCategory}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug().Str("func", "resourceSynchronizer.fetch").Str("category", string(category)).
			Msg("discarding fetch started before reset")
		return nil
	}
	update(&s.snapshot)
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *resourceSynchronizer) fetchFailed(category Category, err error) error {
	s.logger.Err(err).Str("func", "resourceSynchronizer.fetch").Str("category", string(category)).Msg("fetch failed")
	s.notes.Error(UserMessage(err, fetchFallbacks[category]))
	return &FetchError{Category: category, Err: err}
}

func (s *resourceSynchronizer) mutationFailed(op string, err error, fallback string) error {
	s.logger.Err(err).Str("func", "resourceSynchronizer."+op).Msg("mutation failed")
	s.notes.Error(UserMessage(err, fallback))
	return err
}

// afterMutation re-fetches the categories a successful mutation affected.
// Fetch failures are notified on their own and do not fail the mutation.
func (s *resourceSynchronizer) afterMutation(ctx context.Context, success string, categories ...Category) {
	_ = s.RefreshAll(ctx, categories...)
	s.notes.Success(success)
}

func (s *resourceSynchronizer) CreateFolder(ctx context.Context, name string) (models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, s.mutationFailed("CreateFolder", ErrEmptyFolderName, "")
	}

	folder, err := s.api.CreateFolder(ctx, name)
	if err != nil {
		return models.Folder{}, s.mutationFailed("CreateFolder", err, "Failed to create folder")
	}

	s.logger.Info().Str("func", "resourceSynchronizer.CreateFolder").Str("folder_id", folder.ID).Msg("folder created")
	s.afterMutation(ctx, "Folder created", CategoryStorage, CategoryListing)
	return folder, nil
}

func (s *resourceSynchronizer) UploadFile(ctx context.Context, file models.UploadFile, folderID string, onProgress UploadProgressFunc) (models.File, error) {
	task := s.uploads.Start(file.Name, folderID, file.Size)
	if onProgress != nil {
		onProgress(task)
	}

	report := func(transferred, total int64) {
		current, err := s.uploads.Progress(task.ID, transferred, total)
		if err == nil && onProgress != nil {
			onProgress(current)
		}
	}

	uploaded, err := s.api.UploadFile(ctx, file, folderID, report)
	settled, _ := s.uploads.Settle(task.ID, err)
	if onProgress != nil {
		onProgress(settled)
	}
	if err != nil {
		return models.File{}, s.mutationFailed("UploadFile", err, "Upload failed")
	}

	s.afterMutation(ctx, "File uploaded successfully", CategoryStorage, CategoryListing)
	return uploaded, nil
}

func (s *resourceSynchronizer) DeleteItem(ctx context.Context, id string, kind models.ItemKind) error {
	if err := kind.Validate(); err != nil {
		return s.mutationFailed("DeleteItem", err, "Cannot delete this item")
	}

	if err := s.api.DeleteItem(ctx, id, kind); err != nil {
		return s.mutationFailed("DeleteItem", err, "Failed to delete item")
	}

	success := "File deleted successfully"
	if kind == models.ItemKindFolder {
		success = "Folder and its files deleted successfully"
	}
	s.logger.Info().Str("func", "resourceSynchronizer.DeleteItem").Str("id", id).Str("kind", string(kind)).Msg("item deleted")
	s.afterMutation(ctx, success, CategoryStorage, CategoryListing)
	return nil
}

func (s *resourceSynchronizer) DownloadItem(ctx context.Context, item models.Item, w io.Writer) (int64, error) {
	link := item.UniqueLinkURL
	if link == "" {
		link = item.UniqueLink
	}

	n, err := s.api.Download(ctx, link, item.Kind, w)
	if err != nil {
		return n, s.mutationFailed("DownloadItem", err, "Download failed")
	}

	s.logger.Info().Str("func", "resourceSynchronizer.DownloadItem").Str("id", item.ID).Int64("bytes", n).Msg("item downloaded")
	s.notes.Success(fmt.Sprintf("Downloaded %s", item.Name))
	return n, nil
}

func (s *resourceSynchronizer) PackageChanged(ctx context.Context) error {
	return s.RefreshAll(ctx, CategoryPermissions, CategoryStorage)
}
