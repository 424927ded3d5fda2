package service

import (
	"context"
	"strings"
	"sync"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

type accountService struct {
	api    adapter.ServerAdapter
	notes  *NotificationCenter
	logger *logger.Logger

	mu       sync.RWMutex
	username string
}

func NewAccountService(api adapter.ServerAdapter, notes *NotificationCenter, log *logger.Logger) AccountService {
	return &accountService{api: api, notes: notes, logger: log}
}

func (s *accountService) Profile(ctx context.Context) (models.Profile, error) {
	profile, err := s.api.Profile(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "accountService.Profile").Msg("failed to load profile")
		s.notes.Error(UserMessage(err, "Could not load your profile"))
		return models.Profile{}, err
	}

	s.setUsername(profile.Username)
	return profile, nil
}

func (s *accountService) FetchUsername(ctx context.Context) (string, error) {
	name, err := s.api.Username(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "accountService.FetchUsername").Msg("failed to load username")
		return "", err
	}

	s.setUsername(name)
	return name, nil
}

func (s *accountService) CurrentUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// UpdateProfile sends only the fields that are set after trimming. Field
// errors from the server stay reachable through adapter.FieldErrorsOf.
func (s *accountService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error) {
	update = models.ProfileUpdate{
		Username:  strings.TrimSpace(update.Username),
		FirstName: strings.TrimSpace(update.FirstName),
		LastName:  strings.TrimSpace(update.LastName),
		Phone:     strings.TrimSpace(update.Phone),
	}
	if update.IsEmpty() {
		s.notes.Error(UserMessage(ErrNothingToUpdate, ""))
		return models.Profile{}, ErrNothingToUpdate
	}

	profile, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		s.logger.Err(err).Str("func", "accountService.UpdateProfile").Msg("profile update rejected")
		s.notes.Error(UserMessage(err, "Failed to update profile"))
		return models.Profile{}, err
	}

	if profile.Username != "" {
		s.setUsername(profile.Username)
	}
	s.notes.Success("Profile updated")
	return profile, nil
}

func (s *accountService) Reset() {
	s.setUsername("")
}

func (s *accountService) setUsername(name string) {
	s.mu.Lock()
	s.username = name
	s.mu.Unlock()
}
