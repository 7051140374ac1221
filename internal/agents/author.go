package agents

import (
	"context"
	"fmt"

	"github.com/kayky233/AgentCli/internal/author"
	"github.com/kayky233/AgentCli/internal/editing"
	"github.com/kayky233/AgentCli/internal/framework"
)

// AuthorAgent obtains one validated edit request from the completion
// service and queues it for APPLY.
type AuthorAgent struct {
	MaxRetries int
}

func (a *AuthorAgent) ID() string             { return "author" }
func (a *AuthorAgent) Stage() framework.Stage { return framework.StageEdit }

func (a *AuthorAgent) Run(ctx *framework.RunContext) (framework.AgentResult, error) {
	diagnostics := map[string]framework.CheckResult{}
	if ctx.LastBuild != nil {
		diagnostics["build"] = *ctx.LastBuild
	}
	if ctx.LastTest != nil {
		diagnostics["test"] = *ctx.LastTest
	}

	loop := &author.Author{
		Service:    ctx.Completion,
		Executor:   editing.NewExecutor(ctx.FS, ctx.Workspace, ctx.FileCache),
		MaxRetries: a.MaxRetries,
	}
	outcome := loop.Generate(context.Background(), ctx.Task, ctx.ContextPack, diagnostics)

	if outcome.Status != framework.StatusOK {
		ctx.Events.Emit("patch.skipped", map[string]any{"note": outcome.Note, "attempts": outcome.Attempts}, "warn")
		return framework.AgentResult{Status: framework.StatusSkip, Note: outcome.Note}, nil
	}

	base := fmt.Sprintf("patches/%03d", ctx.Iteration)
	payloadPath, err := ctx.WriteArtifact(base+".json", outcome.Payload)
	if err != nil {
		return framework.AgentResult{}, err
	}
	diffPath, err := ctx.WriteArtifact(base+".diff", []byte(outcome.Diff))
	if err != nil {
		return framework.AgentResult{}, err
	}

	ctx.PendingEdits = append(ctx.PendingEdits, outcome.Request)
	ctx.PatchArtifacts = append(ctx.PatchArtifacts, payloadPath)
	ctx.Events.Emit("patch.proposed", map[string]any{
		"file":     outcome.Request.FilePath,
		"edits":    len(outcome.Request.Edits),
		"attempts": outcome.Attempts,
	}, "")

	return framework.AgentResult{
		Status:    framework.StatusOK,
		Artifacts: []string{payloadPath, diffPath},
		Outputs:   map[string]any{"request": outcome.Request, "attempts": outcome.Attempts},
	}, nil
}
