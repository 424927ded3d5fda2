package service

import (
	"sort"
	"sync"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

// UploadTracker tracks the uploads in flight. A task exists from Start until
// Settle; settled tasks are not kept.
type UploadTracker struct {
	mu    sync.Mutex
	tasks map[string]*trackedUpload
	seq   uint64

	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

type trackedUpload struct {
	task  models.UploadTask
	order uint64
}

func NewUploadTracker(log *logger.Logger) *UploadTracker {
	return &UploadTracker{
		tasks:  make(map[string]*trackedUpload),
		ids:    utils.NewUUIDGenerator(),
		logger: log,
	}
}

// Start registers a new in-progress task.
func (t *UploadTracker) Start(filename, folderID string, total int64) models.UploadTask {
	task := models.UploadTask{
		ID:         t.ids.Generate(),
		Filename:   filename,
		FolderID:   folderID,
		BytesTotal: total,
		Status:     models.UploadInProgress,
	}

	t.mu.Lock()
	t.seq++
	t.tasks[task.ID] = &trackedUpload{task: task, order: t.seq}
	t.mu.Unlock()

	t.logger.Debug().Str("func", "UploadTracker.Start").Str("upload_id", task.ID).
		Str("filename", filename).Int64("bytes_total", total).Msg("upload started")
	return task
}

// Progress records the cumulative transferred byte count. Values lower than
// the recorded one are ignored, so BytesTransferred never decreases. A total
// reported by the transport replaces the declared one when it is larger.
func (t *UploadTracker) Progress(id string, transferred, total int64) (models.UploadTask, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.tasks[id]
	if !ok {
		return models.UploadTask{}, ErrUploadNotTracked
	}
	if transferred > tracked.task.BytesTransferred {
		tracked.task.BytesTransferred = transferred
	}
	if total > tracked.task.BytesTotal {
		tracked.task.BytesTotal = total
	}
	return tracked.task, nil
}

// Settle moves the task to its terminal status and forgets it. A nil err
// completes the task.
func (t *UploadTracker) Settle(id string, err error) (models.UploadTask, error) {
	t.mu.Lock()
	tracked, ok := t.tasks[id]
	if !ok {
		t.mu.Unlock()
		return models.UploadTask{}, ErrUploadNotTracked
	}
	delete(t.tasks, id)
	t.mu.Unlock()

	task := tracked.task
	if err != nil {
		task.Status = models.UploadFailed
		task.Err = err
		t.logger.Err(err).Str("func", "UploadTracker.Settle").Str("upload_id", id).
			Int64("bytes_transferred", task.BytesTransferred).Msg("upload failed")
		return task, nil
	}

	task.Status = models.UploadCompleted
	if task.BytesTransferred > task.BytesTotal {
		task.BytesTotal = task.BytesTransferred
	}
	task.BytesTransferred = task.BytesTotal
	t.logger.Info().Str("func", "UploadTracker.Settle").Str("upload_id", id).
		Int64("bytes_total", task.BytesTotal).Msg("upload completed")
	return task, nil
}

// Active returns the in-flight tasks in start order.
func (t *UploadTracker) Active() []models.UploadTask {
	t.mu.Lock()
	tracked := make([]trackedUpload, 0, len(t.tasks))
	for _, u := range t.tasks {
		tracked = append(tracked, *u)
	}
	t.mu.Unlock()

	sort.Slice(tracked, func(i, j int) bool { return tracked[i].order < tracked[j].order })
	out := make([]models.UploadTask, len(tracked))
	for i, u := range tracked {
		out[i] = u.task
	}
	return out
}
