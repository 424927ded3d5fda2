// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/store"
	"github.com/MKhiriev/go-drive-client/models"
)

// TokenStore holds the current token pair of the process.
//
// Readers never wait on disk I/O: a write persists the new pair first and
// only then swaps the in-memory value, so readers observe either the old or
// the new pair, never a mix. Writers are serialized.
type TokenStore struct {
	repo   store.TokenRepository
	logger *logger.Logger

	writeMu sync.Mutex

	mu   sync.RWMutex
	pair *models.TokenPair
}

// NewTokenStore returns an empty store backed by repo. A nil repo keeps the
// pair in memory only.
func NewTokenStore(repo store.TokenRepository, log *logger.Logger) *TokenStore {
	return &TokenStore{
		repo:   repo,
		logger: log,
	}
}

// Load rehydrates the pair from durable storage. A missing pair leaves the
// store empty and is not an error.
func (s *TokenStore) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	access, refresh, err := s.repo.Load(ctx)
	if errors.Is(err, store.ErrTokenPairNotFound) {
		s.swap(nil)
		s.logger.Debug().Str("func", "TokenStore.Load").Msg("no persisted session")
		return nil
	}
	if err != nil {
		s.logger.Err(err).Str("func", "TokenStore.Load").Msg("failed to load persisted session")
		return fmt.Errorf("load token pair: %w", err)
	}

	pair := models.NewTokenPair(access, refresh)
	s.swap(&pair)
	s.logger.Debug().Str("func", "TokenStore.Load").Time("access_exp", pair.Access.ExpiresAt).Msg("session restored")
	return nil
}

// Get returns the current pair and whether one is present.
func (s *TokenStore) Get() (models.TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil {
		return models.TokenPair{}, false
	}
	return *s.pair, true
}

// Set replaces the whole pair. Nothing changes in memory if persisting fails.
func (s *TokenStore) Set(ctx context.Context, pair models.TokenPair) error {
	if pair.Access.IsZero() {
		return fmt.Errorf("set token pair: %w", ErrInvalidTokenResponse)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist(ctx, pair); err != nil {
		return err
	}
	s.swap(&pair)
	return nil
}

// Clear removes the pair. The in-memory pair is always dropped; a failure to
// delete the persisted copy is returned to the caller.
func (s *TokenStore) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.clearLocked(ctx)
}

// clearIf clears the pair only while its refresh token is still usedRefresh.
func (s *TokenStore) clearIf(ctx context.Context, usedRefresh string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur, ok := s.Get()
	if !ok || cur.Refresh.Raw != usedRefresh {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

// replaceAccess installs a refreshed access token if the pair still carries
// usedRefresh. A non-zero rotated refresh token replaces the stored one.
// It reports false when the pair was replaced or cleared meanwhile.
func (s *TokenStore) replaceAccess(ctx context.Context, usedRefresh string, access, rotated models.Token) (models.TokenPair, bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur, ok := s.Get()
	if !ok || cur.Refresh.Raw != usedRefresh {
		return models.TokenPair{}, false, nil
	}

	next := models.TokenPair{Access: access, Refresh: cur.Refresh}
	if !rotated.IsZero() {
		next.Refresh = rotated
	}

	if err := s.persist(ctx, next); err != nil {
		return models.TokenPair{}, false, err
	}
	s.swap(&next)
	return next, true, nil
}

func (s *TokenStore) clearLocked(ctx context.Context) error {
	s.swap(nil)

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(ctx); err != nil {
		s.logger.Err(err).Str("func", "TokenStore.Clear").Msg("failed to delete persisted session")
		return fmt.Errorf("delete token pair: %w", err)
	}
	return nil
}

func (s *TokenStore) persist(ctx context.Context, pair models.TokenPair) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, pair.Access.Raw, pair.Refresh.Raw); err != nil {
		s.logger.Err(err).Str("func", "TokenStore.persist").Msg("failed to persist session")
		return fmt.Errorf("save token pair: %w", err)
	}
	return nil
}

func (s *TokenStore) swap(pair *models.TokenPair) {
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()
}
