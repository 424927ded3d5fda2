package adapter

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-drive-client/models"
	"github.com/go-resty/resty/v2"
)

const (
	pathChat        = "/v1/chat/"
	pathChatHistory = "/v1/chat/history/"
	pathChatSave    = "/v1/chat/save/"
	pathChatReset   = "/v1/chat/reset/"
	pathImageGen    = "/v1/img/gen/"
)

// Chat implements [ServerAdapter]. POST /v1/chat/.
func (h *httpServerAdapter) Chat(ctx context.Context, message string) (models.ChatReply, error) {
	var reply models.ChatReply
	if err := h.send(ctx, "Chat", resty.MethodPost, pathChat, models.ChatRequest{Message: message}, &reply); err != nil {
		return models.ChatReply{}, err
	}
	return reply, nil
}

// ChatHistory implements [ServerAdapter]. GET /v1/chat/history/.
func (h *httpServerAdapter) ChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	var history models.ChatHistory
	if err := h.send(ctx, "ChatHistory", resty.MethodGet, pathChatHistory, nil, &history); err != nil {
		return nil, err
	}
	return history.Conversation, nil
}

// SaveChat implements [ServerAdapter]. POST /v1/chat/save/; the server
// appends conversation to the stored one.
func (h *httpServerAdapter) SaveChat(ctx context.Context, conversation []models.ChatMessage) error {
	return h.send(ctx, "SaveChat", resty.MethodPost, pathChatSave, models.ChatHistory{Conversation: conversation}, nil)
}

// ResetChat implements [ServerAdapter]. DELETE /v1/chat/reset/.
func (h *httpServerAdapter) ResetChat(ctx context.Context) error {
	return h.send(ctx, "ResetChat", resty.MethodDelete, pathChatReset, nil, nil)
}

// GenerateImage implements [ServerAdapter]. POST /v1/img/gen/.
func (h *httpServerAdapter) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	var generated models.ImageResponse
	if err := h.send(ctx, "GenerateImage", resty.MethodPost, pathImageGen, models.ImageRequest{Prompt: prompt}, &generated); err != nil {
		return nil, err
	}

	image, err := decodeImage(generated.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	return image, nil
}

// decodeImage accepts plain base64 and data URLs ("data:image/png;base64,...").
func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}
	if encoded == "" {
		return nil, fmt.Errorf("empty image")
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	}
	return image, nil
}
