// Package tui is the terminal front end of the drive client.
//
// [RootModel] routes between pages. Pages behind the session are entered
// only through a [session.RouteGuard] activation; while it resolves the
// router shows a spinner. Notifications queued by the services render as
// toasts under every page.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/service"
	"github.com/MKhiriev/go-drive-client/models"
)

// Authenticator is the part of the session the login, register and logout
// actions use.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Logout(ctx context.Context) error
}

// Deps is everything the TUI needs from the rest of the client.
type Deps struct {
	Auth     Authenticator
	Guard    Guard
	Services *service.ClientServices
	// DownloadDir receives downloads and generated images. Empty means the
	// working directory.
	DownloadDir string
	BuildInfo   models.AppBuildInfo
	Logger      *logger.Logger
}

type TUI struct {
	deps Deps
}

func New(deps Deps) (*TUI, error) {
	switch {
	case deps.Auth == nil:
		return nil, errors.New("tui: nil authenticator")
	case deps.Guard == nil:
		return nil, errors.New("tui: nil route guard")
	case deps.Services == nil:
		return nil, errors.New("tui: nil services")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &TUI{deps: deps}, nil
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	root := NewRootModel(ctx, t.deps)
	_, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
