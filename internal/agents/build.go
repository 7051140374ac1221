package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

// maxDiagnostics bounds how many parsed failures land in a summary.
const maxDiagnostics = 10

var buildErrorRe = regexp.MustCompile(`^([^:\s]+):(\d+)(?::\d+)?:?\s*(.*)$`)

// BuildAgent runs the resolved build command and summarizes compiler
// errors for the next authoring round.
type BuildAgent struct {
	Runner *toolexec.Runner
}

func (a *BuildAgent) ID() string             { return "build" }
func (a *BuildAgent) Stage() framework.Stage { return framework.StageVerifyBuild }

func (a *BuildAgent) Run(ctx *framework.RunContext) (framework.AgentResult, error) {
	if ctx.Env == nil || len(ctx.Env.BuildCommand) == 0 {
		return framework.AgentResult{Status: framework.StatusFail, Note: "no build command resolved"}, nil
	}

	res := a.Runner.Run(context.Background(), ctx.Env.BuildCommand, ctx.Workspace)
	logPath, err := ctx.WriteArtifact(
		fmt.Sprintf("verify/%03d_build.log", ctx.Iteration),
		[]byte(toolexec.Truncate(res.Stdout+"\n"+res.Stderr, toolexec.MaxCaptureChars)),
	)
	if err != nil {
		return framework.AgentResult{}, err
	}

	check := &framework.CheckResult{
		Success:  res.ExitCode == 0,
		LogPath:  logPath,
		ExitCode: res.ExitCode,
		Summary:  parseBuildErrors(res.Stderr),
	}
	ctx.LastBuild = check

	status := framework.StatusOK
	if !check.Success {
		status = framework.StatusFail
	}
	ctx.Events.Emit("build.result", map[string]any{
		"status": string(status),
		"errors": len(check.Summary),
	}, "")
	return framework.AgentResult{
		Status:    status,
		Artifacts: []string{logPath},
		Outputs:   map[string]any{"build_result": check},
	}, nil
}

// parseBuildErrors extracts "file:line: message" diagnostics from
// compiler stderr, bounded to maxDiagnostics entries.
func parseBuildErrors(stderr string) []framework.Diagnostic {
	var out []framework.Diagnostic
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(strings.ToLower(line), "error") {
			continue
		}
		if m := buildErrorRe.FindStringSubmatch(line); m != nil {
			out = append(out, framework.Diagnostic{File: m[1], Line: m[2], Message: m[3]})
		} else {
			out = append(out, framework.Diagnostic{Message: line})
		}
		if len(out) >= maxDiagnostics {
			break
		}
	}
	return out
}
