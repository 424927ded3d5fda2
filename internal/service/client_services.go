package service

import (
	"context"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/session"
	"github.com/MKhiriev/go-drive-client/models"
)

// SessionHooks is the part of the session that announces authentication
// transitions.
type SessionHooks interface {
	AddAuthHandler(h session.AuthHandler)
	AddDeauthHandler(h session.DeauthHandler)
}

// ClientServices aggregates the per-session client services.
type ClientServices struct {
	Notifications *NotificationCenter
	Uploads       *UploadTracker
	Resources     ResourceSynchronizer
	Account       AccountService
	Billing       BillingService
	AI            AIService

	logger *logger.Logger
}

func NewClientServices(serverAdapter adapter.ServerAdapter, log *logger.Logger) *ClientServices {
	notes := NewNotificationCenter(DefaultNotificationLimit, log.WithComponent("notifications"))
	uploads := NewUploadTracker(log.WithComponent("uploads"))
	resources := NewResourceSynchronizer(serverAdapter, notes, uploads, log.WithComponent("resources"))

	return &ClientServices{
		Notifications: notes,
		Uploads:       uploads,
		Resources:     resources,
		Account:       NewAccountService(serverAdapter, notes, log.WithComponent("account")),
		Billing:       NewBillingService(serverAdapter, resources, notes, log.WithComponent("billing")),
		AI:            NewAIService(serverAdapter, resources, notes, log.WithComponent("ai")),
		logger:        log,
	}
}

// Bind makes the services follow the session: authentication triggers the
// initial full fetch, deauthentication drops every cached resource.
func (s *ClientServices) Bind(hooks SessionHooks) {
	hooks.AddAuthHandler(s.onAuthenticated)
	hooks.AddDeauthHandler(s.onDeauthenticated)
}

func (s *ClientServices) onAuthenticated(ctx context.Context, _ models.TokenPair) {
	// a failed attempt is already notified per category
	_ = s.Resources.RefreshAll(ctx)
	if _, err := s.Account.FetchUsername(ctx); err != nil {
		s.logger.Err(err).Str("func", "ClientServices.onAuthenticated").Msg("username not loaded")
	}
}

func (s *ClientServices) onDeauthenticated(reason error) {
	s.Resources.Reset()
	s.Account.Reset()
	if reason != nil {
		s.Notifications.Error("Your session has expired. Please log in again.")
	}
	s.logger.Info().Str("func", "ClientServices.onDeauthenticated").AnErr("reason", reason).Msg("session cleared")
}
