package domain

import "context"

// Role is the author of a chat message.
type Role string

// Chat roles understood by OpenAI-compatible providers.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a completion prompt.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the full prompt sent to the provider.
type CompletionRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// Completion carries the generated reply and token usage through the decorator chain.
type Completion struct {
	Content          string `json:"content"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Completer is the shared chat-completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
