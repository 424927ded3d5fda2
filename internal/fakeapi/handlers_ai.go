package fakeapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

const generatedImageSize = 64

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "chat", ErrInvalidJSON)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.fail(w, r, "chat", ErrMessageRequired)
		return
	}

	reply, err := h.state.chat(currentUser(r), req.Message, h.opts.Answer)
	if err != nil {
		h.fail(w, r, "chat", err)
		return
	}
	_, _ = utils.WriteJSON(w, reply, http.StatusOK)
}

func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.state.chatHistory(currentUser(r))
	if err != nil {
		h.fail(w, r, "chatHistory", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.ChatHistory{Conversation: conversation}, http.StatusOK)
}

func (h *Handler) saveChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatHistory
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "saveChat", ErrInvalidJSON)
		return
	}

	if err := h.state.saveChat(currentUser(r), req.Conversation); err != nil {
		h.fail(w, r, "saveChat", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.MessageResponse{Message: "Chat saved successfully"}, http.StatusOK)
}

func (h *Handler) resetChat(w http.ResponseWriter, r *http.Request) {
	if err := h.state.resetChat(currentUser(r)); err != nil {
		h.fail(w, r, "resetChat", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.MessageResponse{Message: "Chat session reset"}, http.StatusOK)
}

func (h *Handler) generateImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "generateImage", ErrInvalidJSON)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.fail(w, r, "generateImage", ErrPromptRequired)
		return
	}
	if err := h.state.canGenerateImage(currentUser(r)); err != nil {
		h.fail(w, r, "generateImage", err)
		return
	}

	img, err := renderPrompt(req.Prompt)
	if err != nil {
		h.fail(w, r, "generateImage", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.ImageResponse{ImageBase64: base64.StdEncoding.EncodeToString(img)}, http.StatusOK)
}

// renderPrompt draws a deterministic gradient seeded by the prompt.
func renderPrompt(prompt string) ([]byte, error) {
	seed := sha256.Sum256([]byte(prompt))
	img := image.NewNRGBA(image.Rect(0, 0, generatedImageSize, generatedImageSize))
	for y := 0; y < generatedImageSize; y++ {
		for x := 0; x < generatedImageSize; x++ {
			img.Set(x, y, color.NRGBA{
				R: seed[0] + uint8(x*4),
				G: seed[1] + uint8(y*4),
				B: seed[2] + uint8((x+y)*2),
				A: 0xff,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
