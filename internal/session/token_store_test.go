package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

func TestTokenStore_GetEmpty(t *testing.T) {
	ts := newTokens(t, nil)

	_, ok := ts.Get()
	assert.False(t, ok)
}

func TestTokenStore_SetReplacesWholePair(t *testing.T) {
	repo := &fakeRepo{}
	ts := NewTokenStore(repo, logger.Nop())
	ctx := context.Background()

	first := validPair(t)
	second := validPair(t)
	require.NoError(t, ts.Set(ctx, first))
	require.NoError(t, ts.Set(ctx, second))

	got, ok := ts.Get()
	require.True(t, ok)
	assert.Equal(t, second.Access.Raw, got.Access.Raw)
	assert.Equal(t, second.Refresh.Raw, got.Refresh.Raw)
	assert.Equal(t, second.Access.Raw, repo.access)
	assert.Equal(t, second.Refresh.Raw, repo.refresh)
}

func TestTokenStore_SetRejectsEmptyAccess(t *testing.T) {
	ts := newTokens(t, nil)

	err := ts.Set(context.Background(), models.NewTokenPair("", "refresh"))
	assert.ErrorIs(t, err, ErrInvalidTokenResponse)
	_, ok := ts.Get()
	assert.False(t, ok)
}

// A failed persist leaves the previous pair in place.
func TestTokenStore_SetPersistFailure(t *testing.T) {
	repo := &fakeRepo{}
	ts := NewTokenStore(repo, logger.Nop())
	ctx := context.Background()

	first := validPair(t)
	require.NoError(t, ts.Set(ctx, first))

	repo.saveErr = errors.New("disk full")
	err := ts.Set(ctx, validPair(t))
	require.Error(t, err)

	got, ok := ts.Get()
	require.True(t, ok)
	assert.Equal(t, first.Access.Raw, got.Access.Raw)
}

func TestTokenStore_Clear(t *testing.T) {
	repo := &fakeRepo{}
	ts := NewTokenStore(repo, logger.Nop())
	ctx := context.Background()
	require.NoError(t, ts.Set(ctx, validPair(t)))

	require.NoError(t, ts.Clear(ctx))

	_, ok := ts.Get()
	assert.False(t, ok)
	assert.False(t, repo.stored)
	assert.Equal(t, 1, repo.deletes)
}

// The in-memory pair is dropped even when the durable delete fails.
func TestTokenStore_ClearDeleteFailure(t *testing.T) {
	repo := &fakeRepo{}
	ts := NewTokenStore(repo, logger.Nop())
	ctx := context.Background()
	require.NoError(t, ts.Set(ctx, validPair(t)))

	repo.deleteErr = errors.New("readonly database")
	assert.Error(t, ts.Clear(ctx))

	_, ok := ts.Get()
	assert.False(t, ok)
}

func TestTokenStore_Load(t *testing.T) {
	pair := validPair(t)
	repo := &fakeRepo{access: pair.Access.Raw, refresh: pair.Refresh.Raw, stored: true}
	ts := NewTokenStore(repo, logger.Nop())

	require.NoError(t, ts.Load(context.Background()))

	got, ok := ts.Get()
	require.True(t, ok)
	assert.Equal(t, pair.Access.Raw, got.Access.Raw)
	assert.Equal(t, pair.Access.ExpiresAt, got.Access.ExpiresAt)
}

func TestTokenStore_LoadNothingPersisted(t *testing.T) {
	ts := NewTokenStore(&fakeRepo{}, logger.Nop())

	require.NoError(t, ts.Load(context.Background()))
	_, ok := ts.Get()
	assert.False(t, ok)
}

func TestTokenStore_LoadError(t *testing.T) {
	ts := NewTokenStore(&fakeRepo{loadErr: errors.New("corrupted")}, logger.Nop())

	assert.Error(t, ts.Load(context.Background()))
}

func TestTokenStore_ReplaceAccess(t *testing.T) {
	ctx := context.Background()
	pair := expiredAccessPair(t)
	ts := newTokens(t, &pair)
	fresh := validPair(t)

	next, ok, err := ts.replaceAccess(ctx, pair.Refresh.Raw, fresh.Access, models.Token{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh.Access.Raw, next.Access.Raw)
	assert.Equal(t, pair.Refresh.Raw, next.Refresh.Raw, "refresh token is kept unless rotated")

	rotated := validPair(t).Refresh
	next, ok, err = ts.replaceAccess(ctx, pair.Refresh.Raw, fresh.Access, rotated)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rotated.Raw, next.Refresh.Raw)
}

// A refresh cannot resurrect a session cleared while it was in flight.
func TestTokenStore_ReplaceAccessAfterClear(t *testing.T) {
	ctx := context.Background()
	pair := expiredAccessPair(t)
	ts := newTokens(t, &pair)
	require.NoError(t, ts.Clear(ctx))

	_, ok, err := ts.replaceAccess(ctx, pair.Refresh.Raw, validPair(t).Access, models.Token{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, present := ts.Get()
	assert.False(t, present)
}

func TestTokenStore_ClearIfOnlyMatchingRefresh(t *testing.T) {
	ctx := context.Background()
	pair := validPair(t)
	ts := newTokens(t, &pair)

	cleared, err := ts.clearIf(ctx, "some-older-refresh")
	require.NoError(t, err)
	assert.False(t, cleared)
	_, ok := ts.Get()
	assert.True(t, ok)

	cleared, err = ts.clearIf(ctx, pair.Refresh.Raw)
	require.NoError(t, err)
	assert.True(t, cleared)
	_, ok = ts.Get()
	assert.False(t, ok)
}
