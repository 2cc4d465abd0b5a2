package service

import (
	"context"
)

// Chat roles understood by the language-understanding backend
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatBackend is the interface for language-understanding providers
type ChatBackend interface {
	// Complete sends the ordered messages and returns the raw text of the reply.
	// Provider failures are reported as *UpstreamError; caller cancellation as the context error.
	Complete(ctx context.Context, messages []ChatMessage) (string, error)

	// IsEnabled returns whether the backend is configured and ready
	IsEnabled() bool
}

// ChatMessage represents a single message sent to the backend
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
