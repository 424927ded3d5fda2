package models

// Chat roles used in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat/.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the assistant answer together with the stored conversation.
type ChatReply struct {
	Reply        string        `json:"reply"`
	Conversation []ChatMessage `json:"conversation"`
}

// ChatHistory is the wire shape of GET /v1/chat/history/ and the body of
// POST /v1/chat/save/.
type ChatHistory struct {
	Conversation []ChatMessage `json:"conversation"`
}

// ImageRequest is the body of POST /v1/img/gen/.
type ImageRequest struct {
	Prompt string `json:"prompt"`
}

// ImageResponse carries the generated image as base64.
type ImageResponse struct {
	ImageBase64 string `json:"image_base64"`
}

// MessageResponse is the generic {"message": "..."} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
