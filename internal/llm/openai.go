package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completion
// endpoint (OpenAI itself, OpenRouter, a local server).
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a provider for the given API key. baseURL
// overrides the endpoint when non-empty.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Generate runs one chat completion. Any API error is a transport
// failure from the caller's point of view.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Response, error) {
	cctx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("chat completion returned no choices")
	}

	return Response{
		OK:      true,
		Content: resp.Choices[0].Message.Content,
		Latency: time.Since(start),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
