package agents

import (
	"fmt"

	"github.com/kayky233/AgentCli/internal/editing"
	"github.com/kayky233/AgentCli/internal/framework"
)

// ApplyAgent commits the queued edit requests to the workspace.
// An empty queue is a no-op success.
type ApplyAgent struct{}

func (a *ApplyAgent) ID() string             { return "apply" }
func (a *ApplyAgent) Stage() framework.Stage { return framework.StageApply }

func (a *ApplyAgent) Run(ctx *framework.RunContext) (framework.AgentResult, error) {
	if len(ctx.PendingEdits) == 0 {
		ctx.Events.Emit("apply.noop", map[string]any{}, "")
		return framework.AgentResult{Status: framework.StatusOK, Note: "no pending edits"}, nil
	}

	executor := editing.NewExecutor(ctx.FS, ctx.Workspace, ctx.FileCache)
	applied := 0
	for _, req := range ctx.PendingEdits {
		res := executor.Apply(req, false)
		if !res.OK {
			ctx.Events.Emit("apply.failed", map[string]any{"file": req.FilePath, "error": res.Error}, "error")
			return framework.AgentResult{
				Status: framework.StatusFail,
				Note:   fmt.Sprintf("apply %s: %s", req.FilePath, res.Error),
			}, nil
		}
		ctx.AppliedFiles = append(ctx.AppliedFiles, req.FilePath)
		applied++
		ctx.Events.Emit("apply.committed", map[string]any{
			"file":  req.FilePath,
			"edits": len(res.AppliedEdits),
		}, "")
	}
	ctx.PendingEdits = nil

	return framework.AgentResult{
		Status:  framework.StatusOK,
		Outputs: map[string]any{"applied": applied},
	}, nil
}
