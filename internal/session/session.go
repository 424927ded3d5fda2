package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

// State is the derived authentication state of the session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	// Pending lasts exactly as long as a refresh is outstanding.
	Pending
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Authenticator is the part of the remote API that issues tokens.
type Authenticator interface {
	TokenRefresher
	Login(ctx context.Context, creds models.Credentials) (models.TokenResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error)
}

// AuthHandler runs after the session became authenticated through Login or
// Register.
type AuthHandler func(ctx context.Context, pair models.TokenPair)

// DeauthHandler runs after the session was cleared. reason is nil for an
// explicit logout and the refresh failure otherwise.
type DeauthHandler func(reason error)

// Session is the explicit session object of one client instance.
type Session struct {
	tokens      *TokenStore
	api         Authenticator
	coordinator *RefreshCoordinator
	logger      *logger.Logger
	now         func() time.Time

	hooksMu        sync.Mutex
	authHandlers   []AuthHandler
	deauthHandlers []DeauthHandler
}

// New wires a session on top of tokens and api.
func New(tokens *TokenStore, api Authenticator, log *logger.Logger) *Session {
	s := &Session{
		tokens:      tokens,
		api:         api,
		coordinator: NewRefreshCoordinator(tokens, api, log),
		logger:      log,
		now:         time.Now,
	}
	s.coordinator.onCleared = s.fireDeauth
	return s
}

// Restore rehydrates the persisted pair. It does not contact the server.
func (s *Session) Restore(ctx context.Context) error {
	return s.tokens.Load(ctx)
}

// AddAuthHandler registers h to run after Login and Register.
func (s *Session) AddAuthHandler(h AuthHandler) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.authHandlers = append(s.authHandlers, h)
}

// AddDeauthHandler registers h to run whenever the session is cleared.
func (s *Session) AddDeauthHandler(h DeauthHandler) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.deauthHandlers = append(s.deauthHandlers, h)
}

// State derives the current authentication state.
func (s *Session) State() State {
	if s.coordinator.InFlight() {
		return Pending
	}
	if _, ok := s.tokens.Get(); !ok {
		return Unauthenticated
	}
	return Authenticated
}

// Tokens returns the current pair, if any.
func (s *Session) Tokens() (models.TokenPair, bool) {
	return s.tokens.Get()
}

// Login exchanges credentials for a token pair and stores it.
func (s *Session) Login(ctx context.Context, username, password string) error {
	resp, err := s.api.Login(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		s.logger.Err(err).Str("func", "Session.Login").Str("username", username).Msg("login failed")
		return err
	}

	if err = s.establish(ctx, resp); err != nil {
		return err
	}
	s.logger.Info().Str("func", "Session.Login").Str("username", username).Msg("logged in")
	return nil
}

// Register creates the account and stores the pair returned with it.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.logger.Err(err).Str("func", "Session.Register").Str("username", req.Username).Msg("registration failed")
		return "", err
	}

	if err = s.establish(ctx, resp.Token); err != nil {
		return "", err
	}
	s.logger.Info().Str("func", "Session.Register").Str("username", req.Username).Msg("registered")
	return resp.Message, nil
}

// Logout clears the pair. The in-memory session is gone even when deleting
// the persisted copy fails; that error is still returned.
func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.Clear(ctx)
	s.logger.Info().Str("func", "Session.Logout").Msg("logged out")
	s.fireDeauth(nil)
	return err
}

// Refresh renews the access token through the coordinator. A failure that
// cleared the session has already run the deauth handlers once it returns.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.coordinator.Refresh(ctx)
	return err
}

// EnsureValid returns nil when the session holds a valid access token,
// refreshing it first if necessary.
func (s *Session) EnsureValid(ctx context.Context) error {
	_, err := s.coordinator.EnsureValid(ctx)
	return err
}

// Coordinator exposes the refresh coordinator for diagnostics.
func (s *Session) Coordinator() *RefreshCoordinator {
	return s.coordinator
}

func (s *Session) establish(ctx context.Context, resp models.TokenResponse) error {
	pair := models.NewTokenPair(resp.Access, resp.Refresh)
	if pair.Access.Expired(s.now()) {
		s.logger.Error().Str("func", "Session.establish").AnErr("decode_err", pair.Access.DecodeErr).Msg("server returned unusable access token")
		return ErrInvalidTokenResponse
	}

	if err := s.tokens.Set(ctx, pair); err != nil {
		return err
	}
	s.fireAuth(ctx, pair)
	return nil
}

func (s *Session) fireAuth(ctx context.Context, pair models.TokenPair) {
	s.hooksMu.Lock()
	handlers := append([]AuthHandler(nil), s.authHandlers...)
	s.hooksMu.Unlock()

	for _, h := range handlers {
		h(ctx, pair)
	}
}

func (s *Session) fireDeauth(reason error) {
	s.hooksMu.Lock()
	handlers := append([]DeauthHandler(nil), s.deauthHandlers...)
	s.hooksMu.Unlock()

	for _, h := range handlers {
		h(reason)
	}
}
