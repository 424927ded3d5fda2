package service

import (
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/mock"
	"github.com/MKhiriev/go-drive-client/models"
)

// newTestServices wires every client service on top of a mocked adapter.
func newTestServices(t *testing.T) (*ClientServices, *mock.MockServerAdapter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mock.NewMockServerAdapter(ctrl)
	return NewClientServices(api, logger.Nop()), api
}

func folder(id, name string) models.Folder {
	return models.Folder{ID: id, Name: name, Files: []models.File{}}
}

func rootFile(id, name string, size int64) models.File {
	return models.File{ID: id, Filename: name, Size: size}
}

func lastNotification(t *testing.T, c *NotificationCenter) models.Notification {
	t.Helper()
	list := c.List()
	if len(list) == 0 {
		t.Fatal("no notification queued")
	}
	return list[len(list)-1]
}
