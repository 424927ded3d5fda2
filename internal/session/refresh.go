package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refresh string) (models.TokenResponse, error)
}

const refreshKey = "refresh"

// defaultRefreshTimeout bounds the shared refresh call, which outlives any
// single caller's context.
const defaultRefreshTimeout = 30 * time.Second

// RefreshCoordinator renews the access token. Concurrent callers share one
// in-flight refresh and all receive its outcome.
type RefreshCoordinator struct {
	tokens    *TokenStore
	refresher TokenRefresher
	logger    *logger.Logger
	now       func() time.Time
	timeout   time.Duration

	// onCleared runs once per refresh that cleared the session.
	onCleared func(reason error)

	group    singleflight.Group
	inFlight atomic.Int32
	calls    atomic.Int64
}

// NewRefreshCoordinator builds a coordinator writing into tokens.
func NewRefreshCoordinator(tokens *TokenStore, refresher TokenRefresher, log *logger.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{
		tokens:    tokens,
		refresher: refresher,
		logger:    log,
		now:       time.Now,
		timeout:   defaultRefreshTimeout,
	}
}

// InFlight reports whether a refresh is outstanding.
func (c *RefreshCoordinator) InFlight() bool {
	return c.inFlight.Load() > 0
}

// Calls returns how many refreshes actually reached the refresher.
func (c *RefreshCoordinator) Calls() int64 {
	return c.calls.Load()
}

// EnsureValid returns the current pair when its access token is still valid
// and refreshes it otherwise.
func (c *RefreshCoordinator) EnsureValid(ctx context.Context) (models.TokenPair, error) {
	pair, ok := c.tokens.Get()
	if !ok {
		return models.TokenPair{}, ErrNoSession
	}
	if !pair.Access.Expired(c.now()) {
		return pair, nil
	}
	return c.Refresh(ctx)
}

// Refresh renews the access token. When the flight starts with a valid
// access token, because an earlier flight already renewed it, the stored
// pair is returned without a server call. A caller whose ctx ends stops
// waiting, the shared call itself keeps running for the others.
//
// On any failure other than ErrSessionChanged the token store is empty when
// Refresh returns.
func (c *RefreshCoordinator) Refresh(ctx context.Context) (models.TokenPair, error) {
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		c.inFlight.Add(1)
		defer c.inFlight.Add(-1)

		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		return c.refresh(shared)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.TokenPair{}, res.Err
		}
		return res.Val.(models.TokenPair), nil
	case <-ctx.Done():
		return models.TokenPair{}, ctx.Err()
	}
}

func (c *RefreshCoordinator) refresh(ctx context.Context) (models.TokenPair, error) {
	pair, ok := c.tokens.Get()
	if !ok {
		return models.TokenPair{}, ErrNoSession
	}
	if !pair.Access.Expired(c.now()) {
		return pair, nil
	}
	usedRefresh := pair.Refresh.Raw

	if pair.Refresh.Expired(c.now()) {
		c.logger.Info().Str("func", "RefreshCoordinator.refresh").Msg("refresh token expired, clearing session")
		return models.TokenPair{}, c.fail(ctx, usedRefresh, ErrRefreshTokenExpired)
	}

	c.calls.Add(1)
	resp, err := c.refresher.RefreshToken(ctx, usedRefresh)
	if err != nil {
		c.logger.Err(err).Str("func", "RefreshCoordinator.refresh").Msg("refresh request failed")
		return models.TokenPair{}, c.fail(ctx, usedRefresh, fmt.Errorf("%w: %w", ErrRefreshFailed, err))
	}

	access := models.ParseToken(resp.Access)
	if access.Expired(c.now()) {
		c.logger.Error().Str("func", "RefreshCoordinator.refresh").AnErr("decode_err", access.DecodeErr).Msg("server returned unusable access token")
		return models.TokenPair{}, c.fail(ctx, usedRefresh, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrInvalidTokenResponse))
	}

	var rotated models.Token
	if resp.Refresh != "" {
		rotated = models.ParseToken(resp.Refresh)
	}

	next, swapped, err := c.tokens.replaceAccess(ctx, usedRefresh, access, rotated)
	if err != nil {
		return models.TokenPair{}, c.fail(ctx, usedRefresh, fmt.Errorf("%w: %w", ErrRefreshFailed, err))
	}
	if !swapped {
		c.logger.Info().Str("func", "RefreshCoordinator.refresh").Msg("session changed while refreshing, result discarded")
		return models.TokenPair{}, ErrSessionChanged
	}

	c.logger.Info().
		Str("func", "RefreshCoordinator.refresh").
		Time("access_exp", next.Access.ExpiresAt).
		Bool("rotated", !rotated.IsZero()).
		Msg("access token refreshed")
	return next, nil
}

// fail clears the session the failed refresh was made for and returns cause.
func (c *RefreshCoordinator) fail(ctx context.Context, usedRefresh string, cause error) error {
	cleared, err := c.tokens.clearIf(ctx, usedRefresh)
	if cleared && c.onCleared != nil {
		c.onCleared(cause)
	}
	if err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
