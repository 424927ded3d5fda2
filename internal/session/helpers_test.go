package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/store"
	"github.com/MKhiriev/go-drive-client/models"
)

// ── tokens ────────────────────────────────────────────────────────────────────

var seq atomic.Int64

// mintToken signs a token expiring at exp. Every call yields a distinct
// string, so tests can tell tokens apart.
func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user",
		ID:        strconv.FormatInt(seq.Add(1), 10),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func validPair(t *testing.T) models.TokenPair {
	t.Helper()
	return models.NewTokenPair(
		mintToken(t, time.Now().Add(time.Hour)),
		mintToken(t, time.Now().Add(24*time.Hour)),
	)
}

// expiredAccessPair has an access token that expired a second ago.
func expiredAccessPair(t *testing.T) models.TokenPair {
	t.Helper()
	return models.NewTokenPair(
		mintToken(t, time.Now().Add(-time.Second)),
		mintToken(t, time.Now().Add(24*time.Hour)),
	)
}

func newTokens(t *testing.T, pair *models.TokenPair) *TokenStore {
	t.Helper()
	ts := NewTokenStore(nil, logger.Nop())
	if pair != nil {
		require.NoError(t, ts.Set(context.Background(), *pair))
	}
	return ts
}

// ── fake repository ───────────────────────────────────────────────────────────

type fakeRepo struct {
	mu        sync.Mutex
	access    string
	refresh   string
	stored    bool
	saveErr   error
	deleteErr error
	loadErr   error
	saves     int
	deletes   int
}

func (r *fakeRepo) Load(context.Context) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return "", "", r.loadErr
	}
	if !r.stored {
		return "", "", store.ErrTokenPairNotFound
	}
	return r.access, r.refresh, nil
}

func (r *fakeRepo) Save(_ context.Context, access, refresh string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.access, r.refresh, r.stored = access, refresh, true
	return nil
}

func (r *fakeRepo) Delete(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.access, r.refresh, r.stored = "", "", false
	return nil
}

// ── fake API ──────────────────────────────────────────────────────────────────

var errNetwork = errors.New("connection refused")

// spyAPI counts refresh calls. When gate is non-nil every refresh blocks
// until the gate is closed.
type spyAPI struct {
	refreshCalls atomic.Int32
	started      chan struct{}
	gate         chan struct{}

	mu          sync.Mutex
	refreshResp models.TokenResponse
	refreshErr  error
	loginResp   models.TokenResponse
	loginErr    error
	registerRes models.RegisterResponse
	registerErr error
	lastRefresh string
}

func newSpyAPI() *spyAPI {
	return &spyAPI{started: make(chan struct{}, 16)}
}

func (s *spyAPI) RefreshToken(ctx context.Context, refresh string) (models.TokenResponse, error) {
	s.refreshCalls.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return models.TokenResponse{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = refresh
	return s.refreshResp, s.refreshErr
}

func (s *spyAPI) Login(context.Context, models.Credentials) (models.TokenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginResp, s.loginErr
}

func (s *spyAPI) Register(context.Context, models.RegisterRequest) (models.RegisterResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerRes, s.registerErr
}

func (s *spyAPI) setRefresh(resp models.TokenResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshResp, s.refreshErr = resp, err
}
