package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

var testFailureRe = regexp.MustCompile(`\[  FAILED  \]\s+([^.\s]+)\.(\S+)`)

// TestAgent runs the resolved test command and triages failures from
// gtest-style output.
type TestAgent struct {
	Runner *toolexec.Runner
}

func (a *TestAgent) ID() string             { return "test" }
func (a *TestAgent) Stage() framework.Stage { return framework.StageVerifyTest }

func (a *TestAgent) Run(ctx *framework.RunContext) (framework.AgentResult, error) {
	if ctx.Env == nil || len(ctx.Env.TestCommand) == 0 {
		return framework.AgentResult{Status: framework.StatusFail, Note: "no test command resolved"}, nil
	}

	res := a.Runner.Run(context.Background(), ctx.Env.TestCommand, ctx.Workspace)
	logPath, err := ctx.WriteArtifact(
		fmt.Sprintf("verify/%03d_test.log", ctx.Iteration),
		[]byte(toolexec.Truncate(res.Stdout+"\n"+res.Stderr, toolexec.MaxCaptureChars)),
	)
	if err != nil {
		return framework.AgentResult{}, err
	}

	check := &framework.CheckResult{
		Success:  res.ExitCode == 0,
		LogPath:  logPath,
		ExitCode: res.ExitCode,
		Summary:  parseTestFailures(res.Stdout),
	}
	ctx.LastTest = check

	status := framework.StatusOK
	if !check.Success {
		status = framework.StatusFail
	}
	ctx.Events.Emit("test.result", map[string]any{
		"status":   string(status),
		"failures": len(check.Summary),
	}, "")
	return framework.AgentResult{
		Status:    status,
		Artifacts: []string{logPath},
		Outputs:   map[string]any{"test_result": check},
	}, nil
}

// parseTestFailures extracts failed Suite.Case pairs from test output.
func parseTestFailures(stdout string) []framework.Diagnostic {
	var out []framework.Diagnostic
	for _, line := range strings.Split(stdout, "\n") {
		if m := testFailureRe.FindStringSubmatch(line); m != nil {
			out = append(out, framework.Diagnostic{
				Suite:   m[1],
				Case:    m[2],
				Message: strings.TrimSpace(line),
			})
			if len(out) >= maxDiagnostics {
				break
			}
		}
	}
	return out
}
