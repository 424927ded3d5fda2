package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

func newGuardedSession(t *testing.T, pair *models.TokenPair, api *spyAPI) (*RouteGuard, *Session) {
	t.Helper()
	s := New(newTokens(t, pair), api, logger.Nop())
	return NewRouteGuard(s, logger.Nop()), s
}

// ── transition table ──────────────────────────────────────────────────────────

func TestGuardTransitions(t *testing.T) {
	tests := []struct {
		from, to GuardState
		allowed  bool
	}{
		{GuardUnknown, GuardAuthorized, true},
		{GuardUnknown, GuardUnauthorized, true},
		{GuardUnknown, GuardRefreshing, true},
		{GuardRefreshing, GuardAuthorized, true},
		{GuardRefreshing, GuardUnauthorized, true},
		{GuardRefreshing, GuardRefreshing, false},
		{GuardRefreshing, GuardUnknown, false},
		{GuardAuthorized, GuardRefreshing, false},
		{GuardUnauthorized, GuardUnknown, false},
		{GuardUnauthorized, GuardAuthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, canTransition(tt.from, tt.to))
		})
	}

	assert.True(t, GuardAuthorized.Terminal())
	assert.True(t, GuardUnauthorized.Terminal())
	assert.False(t, GuardUnknown.Terminal())
	assert.False(t, GuardRefreshing.Terminal())
}

func TestActivation_IllegalTransition(t *testing.T) {
	g, _ := newGuardedSession(t, nil, newSpyAPI())
	a := g.Activate("files")
	require.NoError(t, a.transition(GuardAuthorized))

	err := a.transition(GuardRefreshing)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, GuardAuthorized, a.State())
}

// ── resolution ────────────────────────────────────────────────────────────────

func TestGuard_NoTokenRedirectsToLogin(t *testing.T) {
	g, _ := newGuardedSession(t, nil, newSpyAPI())

	a := g.Activate("files")
	d := a.Resolve(context.Background())

	assert.Equal(t, GuardUnauthorized, d.State)
	assert.False(t, d.Allowed())
	assert.Equal(t, DefaultLoginRoute, d.RedirectTo)
	assert.Equal(t, "files", d.Destination)
	assert.Equal(t, []GuardState{GuardUnknown, GuardUnauthorized}, a.History())
}

func TestGuard_ValidTokenAuthorizes(t *testing.T) {
	api := newSpyAPI()
	pair := validPair(t)
	g, _ := newGuardedSession(t, &pair, api)

	a := g.Activate("files")
	d := a.Resolve(context.Background())

	assert.True(t, d.Allowed())
	assert.Empty(t, d.RedirectTo)
	assert.Equal(t, []GuardState{GuardUnknown, GuardAuthorized}, a.History())
	assert.Zero(t, api.refreshCalls.Load())
}

// exp = now-1 with a working refresh endpoint.
func TestGuard_ExpiredTokenRefreshesAndKeepsDestination(t *testing.T) {
	api := newSpyAPI()
	api.setRefresh(models.TokenResponse{Access: mintToken(t, time.Now().Add(time.Hour))}, nil)
	pair := expiredAccessPair(t)
	g, s := newGuardedSession(t, &pair, api)

	a := g.Activate("profile")
	d := a.Resolve(context.Background())

	assert.True(t, d.Allowed())
	assert.Equal(t, "profile", d.Destination)
	assert.Equal(t, []GuardState{GuardUnknown, GuardRefreshing, GuardAuthorized}, a.History())
	assert.Equal(t, Authenticated, s.State())
}

func TestGuard_RefreshFailureUnauthorizes(t *testing.T) {
	api := newSpyAPI()
	api.setRefresh(models.TokenResponse{}, errNetwork)
	pair := expiredAccessPair(t)
	g, s := newGuardedSession(t, &pair, api)

	a := g.Activate("files")
	d := a.Resolve(context.Background())

	assert.Equal(t, GuardUnauthorized, d.State)
	assert.Equal(t, DefaultLoginRoute, d.RedirectTo)
	assert.Equal(t, "files", d.Destination)
	assert.ErrorIs(t, d.Err, ErrRefreshFailed)
	assert.Equal(t, []GuardState{GuardUnknown, GuardRefreshing, GuardUnauthorized}, a.History())

	assert.Equal(t, Unauthenticated, s.State())
	_, ok := s.Tokens()
	assert.False(t, ok)
}

func TestGuard_MalformedTokenTakesRefreshPath(t *testing.T) {
	api := newSpyAPI()
	api.setRefresh(models.TokenResponse{Access: mintToken(t, time.Now().Add(time.Hour))}, nil)
	pair := models.NewTokenPair("definitely.not.jwt", mintToken(t, time.Now().Add(time.Hour)))
	g, _ := newGuardedSession(t, &pair, api)

	a := g.Activate("files")
	d := a.Resolve(context.Background())

	assert.True(t, d.Allowed())
	assert.Equal(t, []GuardState{GuardUnknown, GuardRefreshing, GuardAuthorized}, a.History())
}

// Unauthorized is terminal for an activation; only a new one starts over.
func TestGuard_ResolveIsIdempotentAndNewActivationRestarts(t *testing.T) {
	api := newSpyAPI()
	api.setRefresh(models.TokenResponse{Access: mintToken(t, time.Now().Add(time.Hour))}, nil)
	g, s := newGuardedSession(t, nil, api)

	first := g.Activate("files")
	d1 := first.Resolve(context.Background())
	require.Equal(t, GuardUnauthorized, d1.State)

	pair := validPair(t)
	require.NoError(t, s.tokens.Set(context.Background(), pair))

	d2 := first.Resolve(context.Background())
	assert.Equal(t, d1, d2)
	assert.Equal(t, GuardUnauthorized, first.State())

	second := g.Activate("files")
	assert.Equal(t, GuardUnknown, second.State())
	assert.True(t, second.Resolve(context.Background()).Allowed())
}

// Concurrent activations on an expired token share one refresh and the
// Refreshing state is entered once per activation.
func TestGuard_ConcurrentActivationsShareRefresh(t *testing.T) {
	api := newSpyAPI()
	api.gate = make(chan struct{})
	api.setRefresh(models.TokenResponse{Access: mintToken(t, time.Now().Add(time.Hour))}, nil)
	pair := expiredAccessPair(t)
	g, s := newGuardedSession(t, &pair, api)

	const n = 4
	activations := make([]*Activation, n)
	for i := range activations {
		activations[i] = g.Activate("files")
	}

	var wg sync.WaitGroup
	for _, a := range activations {
		wg.Add(1)
		go func(a *Activation) {
			defer wg.Done()
			a.Resolve(context.Background())
		}(a)
	}

	waitStarted(t, api)
	assert.Equal(t, Pending, s.State())
	time.Sleep(50 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	assert.Equal(t, int32(1), api.refreshCalls.Load())
	for _, a := range activations {
		history := a.History()
		assert.Equal(t, GuardAuthorized, a.State())

		refreshing := 0
		for _, st := range history {
			if st == GuardRefreshing {
				refreshing++
			}
		}
		assert.Equal(t, 1, refreshing)
	}
}

func TestGuard_Check(t *testing.T) {
	pair := validPair(t)
	g, _ := newGuardedSession(t, &pair, newSpyAPI())

	assert.True(t, g.Check(context.Background(), "files").Allowed())
}

// A login that replaced the pair while the refresh was in flight keeps the
// activation authorized.
func TestGuard_ReloginDuringRefreshAuthorizes(t *testing.T) {
	api := newSpyAPI()
	api.gate = make(chan struct{})
	api.setRefresh(models.TokenResponse{Access: mintToken(t, time.Now().Add(time.Hour))}, nil)
	pair := expiredAccessPair(t)
	g, s := newGuardedSession(t, &pair, api)

	a := g.Activate("files")
	done := make(chan Decision, 1)
	go func() { done <- a.Resolve(context.Background()) }()
	waitStarted(t, api)

	relogin := validPair(t)
	require.NoError(t, s.tokens.Set(context.Background(), relogin))
	close(api.gate)

	d := <-done
	assert.True(t, d.Allowed())
	assert.NoError(t, d.Err)
	assert.Equal(t, []GuardState{GuardUnknown, GuardRefreshing, GuardAuthorized}, a.History())

	stored, ok := s.Tokens()
	require.True(t, ok)
	assert.Equal(t, relogin.Access.Raw, stored.Access.Raw)
}

// A logout during the refresh still redirects.
func TestGuard_LogoutDuringRefreshUnauthorizes(t *testing.T) {
	api := newSpyAPI()
	api.gate = make(chan struct{})
	api.setRefresh(models.TokenResponse{Access: mintToken(t, time.Now().Add(time.Hour))}, nil)
	pair := expiredAccessPair(t)
	g, s := newGuardedSession(t, &pair, api)

	a := g.Activate("files")
	done := make(chan Decision, 1)
	go func() { done <- a.Resolve(context.Background()) }()
	waitStarted(t, api)

	require.NoError(t, s.tokens.Clear(context.Background()))
	close(api.gate)

	d := <-done
	assert.Equal(t, GuardUnauthorized, d.State)
	assert.Equal(t, DefaultLoginRoute, d.RedirectTo)
	assert.ErrorIs(t, d.Err, ErrSessionChanged)
}
