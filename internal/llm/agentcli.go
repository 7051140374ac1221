package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// AgentCLIProvider runs a local coding-agent binary in print mode
// (`<bin> -p --output-format json "prompt"`) and treats its output as
// the completion content.
type AgentCLIProvider struct {
	Bin string
}

// cliResponse is the JSON envelope emitted by the agent binary.
type cliResponse struct {
	Type       string `json:"type"`
	IsError    bool   `json:"is_error"`
	DurationMs int    `json:"duration_ms"`
	Result     string `json:"result"`
	SessionID  string `json:"session_id"`
}

// NewAgentCLIProvider builds a provider around the given binary name.
func NewAgentCLIProvider(bin string) *AgentCLIProvider {
	return &AgentCLIProvider{Bin: bin}
}

func (p *AgentCLIProvider) Name() string { return "agent-cli" }

// Generate flattens the conversation into one prompt and executes the
// binary. A non-zero exit or an error envelope is a transport failure.
func (p *AgentCLIProvider) Generate(ctx context.Context, req Request) (Response, error) {
	cctx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	prompt := flattenMessages(req.Messages)
	args := []string{"-p", "--output-format", "json", prompt}

	start := time.Now()
	cmd := exec.CommandContext(cctx, p.Bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return Response{}, fmt.Errorf("%s execution failed: %w (output: %s)", p.Bin, err, string(out))
	}

	var envelope cliResponse
	if err := json.Unmarshal(out, &envelope); err != nil {
		// Older binaries print plain text; pass it through.
		return Response{OK: true, Content: string(out), Latency: time.Since(start)}, nil
	}
	if envelope.IsError {
		return Response{}, fmt.Errorf("%s returned error: %s", p.Bin, envelope.Result)
	}
	return Response{OK: true, Content: envelope.Result, Latency: time.Since(start)}, nil
}

func flattenMessages(messages []ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[")
		b.WriteString(m.Role)
		b.WriteString("]\n")
		b.WriteString(m.Content)
	}
	return b.String()
}
