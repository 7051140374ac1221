package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kayky233/AgentCli/internal/infra/config"
)

// Service binds a provider to the configured model parameters.
type Service struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewService wires a provider selected by cfg.Provider.
// Supported providers: "openai" (OpenAI-compatible HTTP endpoint,
// requires OPENAI_API_KEY) and "agent-cli" (local agent binary).
func NewService(cfg config.Config) (*Service, error) {
	var provider Provider
	switch cfg.Provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set for provider openai")
		}
		provider = NewOpenAIProvider(apiKey, cfg.BaseURL)
	case "agent-cli":
		provider = NewAgentCLIProvider(cfg.AgentBin)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, agent-cli)", cfg.Provider)
	}
	return NewServiceWithProvider(provider, cfg), nil
}

// NewServiceWithProvider builds a service around an explicit provider.
// Tests use this with a stub.
func NewServiceWithProvider(provider Provider, cfg config.Config) *Service {
	return &Service{
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.LLMTimeout,
	}
}

// ProviderName reports the wired provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Generate runs one completion over the conversation. A transport
// failure returns an error wrapping ErrTransport; a content-level
// problem is reported through the Response.
func (s *Service) Generate(ctx context.Context, messages []ChatMessage) (Response, error) {
	req := Request{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Timeout:     s.timeout,
	}
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if !resp.OK {
		return Response{}, fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	return resp, nil
}
