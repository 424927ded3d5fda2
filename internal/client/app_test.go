package client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-drive-client/internal/config"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/session"
	"github.com/MKhiriev/go-drive-client/models"
)

type fakeUI struct {
	runs int
	err  error
}

func (u *fakeUI) Run(context.Context) error {
	u.runs++
	return u.err
}

func testConfig(t *testing.T, dsn string) *config.ClientConfig {
	t.Helper()
	return &config.ClientConfig{
		App:     config.ClientApp{DownloadDir: t.TempDir()},
		Adapter: config.ClientAdapter{HTTPAddress: "http://127.0.0.1:1", RequestTimeout: time.Second},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: dsn}},
	}
}

func TestNewApp_RunsUI(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t, config.DSNMemory), models.NewAppBuildInfo("1.0.0", "N/A", "N/A"), logger.Nop())
	require.NoError(t, err)

	ui := &fakeUI{}
	app.ui = ui
	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 1, ui.runs)
	assert.Equal(t, session.Unauthenticated, app.session.State())
}

func TestNewApp_UIErrorReturned(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t, config.DSNMemory), models.AppBuildInfo{}, logger.Nop())
	require.NoError(t, err)

	boom := errors.New("no tty")
	app.ui = &fakeUI{err: boom}
	assert.ErrorIs(t, app.Run(context.Background()), boom)
}

func TestNewApp_BadAdapterAddress(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "drive.db"))
	cfg.Adapter.HTTPAddress = ""

	_, err := NewApp(context.Background(), cfg, models.AppBuildInfo{}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create server adapter")
}
