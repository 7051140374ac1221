// Package author drives the completion service to produce a valid edit
// request, retrying content failures with corrective feedback.
package author

import (
	"context"
	"fmt"

	"github.com/kayky233/AgentCli/internal/editing"
	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/llm"
)

// Outcome is the terminal result of one authoring call.
// Status is ok when a validated edit was produced, skip otherwise.
type Outcome struct {
	Status   framework.Status
	Request  editing.Request
	Payload  []byte
	Diff     string
	Note     string
	Attempts int
}

// Author runs the bounded retry-validate loop. Parse, protocol, and
// dry-run apply failures each consume one retry and feed the precise
// error back into the conversation; transport failures abort at once.
type Author struct {
	Service    *llm.Service
	Executor   *editing.Executor
	MaxRetries int
}

// Generate produces at most one validated edit request for the task.
func (a *Author) Generate(ctx context.Context, task string, pack *framework.ContextPack, diagnostics map[string]framework.CheckResult) Outcome {
	messages := BuildInitialMessages(task, pack, diagnostics)

	var lastErr string
	attempts := 0
	for attempts <= a.MaxRetries {
		attempts++

		resp, err := a.Service.Generate(ctx, messages)
		if err != nil {
			// Transport failures are outside the retry budget: better
			// prompting cannot fix a broken connection.
			return Outcome{
				Status:   framework.StatusSkip,
				Note:     fmt.Sprintf("completion transport failure: %v", err),
				Attempts: attempts,
			}
		}
		messages = append(messages, llm.ChatMessage{Role: llm.RoleAssistant, Content: resp.Content})

		payload, err := ExtractPayload(resp.Content)
		if err != nil {
			lastErr = fmt.Sprintf("parse failure: %v", err)
			messages = append(messages, correctiveMessage("parse", err.Error()))
			continue
		}

		req, err := editing.ParseRequest(payload)
		if err != nil {
			lastErr = fmt.Sprintf("protocol failure: %v", err)
			messages = append(messages, correctiveMessage("schema", err.Error()))
			continue
		}

		if _, ok := a.Executor.CachedContent(req.FilePath); !ok {
			if _, err := a.Executor.LoadFile(req.FilePath); err != nil {
				lastErr = fmt.Sprintf("apply failure: %v", err)
				messages = append(messages, correctiveMessage("apply", err.Error()))
				continue
			}
		}

		res := a.Executor.Apply(req, true)
		if !res.OK {
			lastErr = fmt.Sprintf("apply failure: %s", res.Error)
			messages = append(messages, correctiveMessage("apply", res.Error))
			continue
		}

		return Outcome{
			Status:   framework.StatusOK,
			Request:  req,
			Payload:  payload,
			Diff:     res.Diff,
			Attempts: attempts,
		}
	}

	return Outcome{
		Status:   framework.StatusSkip,
		Note:     fmt.Sprintf("retry budget exhausted after %d attempt(s); last error: %s", attempts, lastErr),
		Attempts: attempts,
	}
}
