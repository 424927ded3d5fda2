package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

func TestUploadTracker_ProgressNeverDecreases(t *testing.T) {
	tr := NewUploadTracker(logger.Nop())
	task := tr.Start("a.bin", "", 100)

	got, err := tr.Progress(task.ID, 40, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 40, got.BytesTransferred)
	assert.InDelta(t, 40.0, got.Percent(), 0.001)

	got, err = tr.Progress(task.ID, 10, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 40, got.BytesTransferred)

	got, err = tr.Progress(task.ID, 120, 120)
	require.NoError(t, err)
	assert.EqualValues(t, 120, got.BytesTotal)
	assert.InDelta(t, 100.0, got.Percent(), 0.001)
}

func TestUploadTracker_SettleForgetsTask(t *testing.T) {
	tr := NewUploadTracker(logger.Nop())
	first := tr.Start("a.bin", "", 10)
	second := tr.Start("b.bin", "f1", 20)

	active := tr.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)

	done, err := tr.Settle(first.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCompleted, done.Status)
	assert.EqualValues(t, 10, done.BytesTransferred)
	assert.True(t, done.Settled())

	cause := errors.New("connection reset")
	failed, err := tr.Settle(second.ID, cause)
	require.NoError(t, err)
	assert.Equal(t, models.UploadFailed, failed.Status)
	assert.ErrorIs(t, failed.Err, cause)

	assert.Empty(t, tr.Active())

	_, err = tr.Settle(first.ID, nil)
	assert.ErrorIs(t, err, ErrUploadNotTracked)
	_, err = tr.Progress(first.ID, 1, 1)
	assert.ErrorIs(t, err, ErrUploadNotTracked)
}

func TestUploadTracker_ZeroByteFileCompletes(t *testing.T) {
	tr := NewUploadTracker(logger.Nop())
	task := tr.Start("empty.txt", "", 0)

	done, err := tr.Settle(task.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, done.Percent(), 0.001)
}
