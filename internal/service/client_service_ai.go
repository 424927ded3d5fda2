package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

type feature string

const (
	featureChat  feature = "chat"
	featureImage feature = "image"
)

type aiService struct {
	api       adapter.ServerAdapter
	resources ResourceSynchronizer
	notes     *NotificationCenter
	logger    *logger.Logger
}

func NewAIService(api adapter.ServerAdapter, resources ResourceSynchronizer, notes *NotificationCenter, log *logger.Logger) AIService {
	return &aiService{api: api, resources: resources, notes: notes, logger: log}
}

// gate checks the cached permissions. Permissions that were never loaded
// count as not granted.
func (s *aiService) gate(f feature) error {
	snap := s.resources.Snapshot()
	granted := false
	if snap.PermissionsLoaded {
		switch f {
		case featureChat:
			granted = snap.Permissions.Chat
		case featureImage:
			granted = snap.Permissions.Image
		}
	}
	if granted {
		return nil
	}

	err := fmt.Errorf("%s: %w", f, ErrFeatureLocked)
	s.logger.Debug().Str("func", "aiService.gate").Str("feature", string(f)).Msg("feature locked")
	return err
}

func (s *aiService) fail(op string, err error, fallback string) error {
	s.logger.Err(err).Str("func", "aiService."+op).Msg("request failed")
	s.notes.Error(UserMessage(err, fallback))
	return err
}

func (s *aiService) Chat(ctx context.Context, message string) (models.ChatReply, error) {
	if err := s.gate(featureChat); err != nil {
		return models.ChatReply{}, s.fail("Chat", err, "")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ChatReply{}, s.fail("Chat", ErrEmptyMessage, "")
	}

	reply, err := s.api.Chat(ctx, message)
	if err != nil {
		return models.ChatReply{}, s.fail("Chat", err, "The assistant did not answer")
	}
	return reply, nil
}

func (s *aiService) ChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	if err := s.gate(featureChat); err != nil {
		return nil, err
	}

	history, err := s.api.ChatHistory(ctx)
	if err != nil {
		return nil, s.fail("ChatHistory", err, "Could not load the chat history")
	}
	return history, nil
}

func (s *aiService) SaveChat(ctx context.Context, conversation []models.ChatMessage) error {
	if err := s.gate(featureChat); err != nil {
		return s.fail("SaveChat", err, "")
	}
	if len(conversation) == 0 {
		return s.fail("SaveChat", ErrEmptyMessage, "")
	}

	if err := s.api.SaveChat(ctx, conversation); err != nil {
		return s.fail("SaveChat", err, "Failed to save the chat")
	}
	s.notes.Success("Chat saved successfully")
	return nil
}

func (s *aiService) ResetChat(ctx context.Context) error {
	if err := s.gate(featureChat); err != nil {
		return s.fail("ResetChat", err, "")
	}

	if err := s.api.ResetChat(ctx); err != nil {
		return s.fail("ResetChat", err, "Failed to reset the chat")
	}
	s.notes.Success("Chat session reset")
	return nil
}

func (s *aiService) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := s.gate(featureImage); err != nil {
		return nil, s.fail("GenerateImage", err, "")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, s.fail("GenerateImage", ErrEmptyPrompt, "")
	}

	image, err := s.api.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, s.fail("GenerateImage", err, "Image generation failed")
	}
	return image, nil
}
