// Package llm is the boundary to hosted text-completion services. The
// core depends only on the request/response shapes defined here.
package llm

import (
	"context"
	"errors"
	"time"
)

// Message roles mirror the chat-completion convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-independent completion request.
type Request struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Extra       map[string]string
}

// Response is a provider-independent completion response.
type Response struct {
	OK      bool
	Content string
	Latency time.Duration
	Usage   Usage
	Error   string
}

// Usage reports token accounting when the provider supplies it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ErrTransport is the category for outright call failures (network,
// process, provider rejection). Transport failures are never retried
// by the authoring loop.
var ErrTransport = errors.New("completion transport failure")

// Provider executes one completion call.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}
