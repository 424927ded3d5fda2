package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// UploadStatus is the lifecycle phase of an upload task.
type UploadStatus int

const (
	UploadInProgress UploadStatus = iota
	UploadCompleted
	UploadFailed
)

func (s UploadStatus) String() string {
	switch s {
	case UploadInProgress:
		return "in_progress"
	case UploadCompleted:
		return "completed"
	case UploadFailed:
		return "failed"
	default:
		return fmt.Sprintf("upload_status(%d)", int(s))
	}
}

// UploadTask is a point-in-time view of an upload in flight.
type UploadTask struct {
	ID               string
	Filename         string
	FolderID         string
	BytesTransferred int64
	BytesTotal       int64
	Status           UploadStatus
	Err              error
}

// Percent returns the transferred share in the range [0, 100].
// A zero-byte file counts as fully transferred once completed.
func (t UploadTask) Percent() float64 {
	if t.BytesTotal <= 0 {
		if t.Status == UploadCompleted {
			return 100
		}
		return 0
	}
	p := float64(t.BytesTransferred) * 100 / float64(t.BytesTotal)
	if p > 100 {
		return 100
	}
	return p
}

// Settled reports whether the task reached a terminal status.
func (t UploadTask) Settled() bool {
	return t.Status == UploadCompleted || t.Status == UploadFailed
}

// UploadFile is the content handed to an upload: a name, the declared
// total size and a reader positioned at the first byte.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// OpenUploadFile opens path for upload. The caller closes the returned file.
func OpenUploadFile(path string) (UploadFile, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadFile{}, nil, fmt.Errorf("open upload file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return UploadFile{}, nil, fmt.Errorf("stat upload file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return UploadFile{}, nil, fmt.Errorf("upload file %s is a directory", path)
	}

	return UploadFile{Name: filepath.Base(path), Size: info.Size(), Content: f}, f, nil
}
