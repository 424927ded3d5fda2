package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/config"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/service"
	"github.com/MKhiriev/go-drive-client/internal/session"
	"github.com/MKhiriev/go-drive-client/internal/store"
	"github.com/MKhiriev/go-drive-client/internal/tui"
	"github.com/MKhiriev/go-drive-client/models"
)

// App owns every long-lived component of one client process.
type App struct {
	storages *store.ClientStorages
	session  *session.Session
	services *service.ClientServices
	ui       UI
	logger   *logger.Logger
}

// NewApp builds the client in dependency order:
//  1. local storage and the token store on top of it
//  2. the HTTP adapter authorized from the token store
//  3. the session, the services bound to it, and the route guard
//  4. the terminal UI
func NewApp(ctx context.Context, cfg *config.ClientConfig, build models.AppBuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	tokens := session.NewTokenStore(storages.Tokens, log.WithComponent("tokens"))
	api, err := adapter.NewHTTPServerAdapter(cfg.Adapter, session.NewAuthorizer(tokens, log), log.WithComponent("adapter"))
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	sess := session.New(tokens, api, log.WithComponent("session"))
	services := service.NewClientServices(api, log)
	services.Bind(sess)

	ui, err := tui.New(tui.Deps{
		Auth:        sess,
		Guard:       session.NewRouteGuard(sess, log.WithComponent("guard")),
		Services:    services,
		DownloadDir: cfg.App.DownloadDir,
		BuildInfo:   build,
		Logger:      log.WithComponent("tui"),
	})
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create ui: %w", err)
	}

	return &App{
		storages: storages,
		session:  sess,
		services: services,
		ui:       ui,
		logger:   log,
	}, nil
}

// Run restores the persisted session and blocks in the UI. The local
// storage is closed when Run returns.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.storages.Close(); err != nil {
			a.logger.Err(err).Str("func", "App.Run").Msg("failed to close local storage")
		}
	}()

	if err := a.session.Restore(ctx); err != nil {
		// a broken local copy only costs a login
		a.logger.Err(err).Str("func", "App.Run").Msg("failed to restore session")
	}
	a.logger.Info().Str("func", "App.Run").Stringer("state", a.session.State()).Msg("client started")

	if err := a.ui.Run(ctx); err != nil {
		return err
	}
	a.logger.Info().Str("func", "App.Run").Msg("client stopped")
	return nil
}
