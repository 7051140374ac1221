// Package toolexec is the boundary to external processes: build/test
// commands, text search, and version-control snapshots.
package toolexec

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// MaxCaptureChars bounds captured stdout/stderr; longer output is
// middle-truncated with a marker.
const MaxCaptureChars = 20000

// Result is the captured outcome of one external command.
type Result struct {
	Cmd      []string `json:"cmd"`
	Dir      string   `json:"cwd"`
	ExitCode int      `json:"exit_code"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	TimedOut bool     `json:"timed_out,omitempty"`
}

// Runner executes external commands with an explicit timeout.
type Runner struct {
	Dir     string        // default working directory
	Timeout time.Duration // per command; zero means no bound
}

// Run executes cmd in dir (or the runner default) and captures its
// output. It never returns an error: a failed start, non-zero exit, or
// timeout all yield a synthetic failure record.
func (r *Runner) Run(ctx context.Context, cmdline []string, dir string) Result {
	if dir == "" {
		dir = r.Dir
	}
	res := Result{Cmd: cmdline, Dir: dir, ExitCode: -1}
	if len(cmdline) == 0 {
		res.Stderr = "empty command"
		return res
	}

	cctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cctx, cmdline[0], cmdline[1:]...)
	cmd.Dir = dir
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = Truncate(stdout.String(), MaxCaptureChars)
	res.Stderr = Truncate(stderr.String(), MaxCaptureChars)

	if cctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.Stderr = Truncate(res.Stderr+"\n[timeout]", MaxCaptureChars)
		return res
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Stderr = Truncate(res.Stderr+"\n"+err.Error(), MaxCaptureChars)
		}
		return res
	}
	res.ExitCode = 0
	return res
}

// Truncate bounds text to limit characters, replacing the middle with
// a marker so both the head and the tail survive.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	half := limit / 2
	return text[:half] + "\n...[truncated]...\n" + text[len(text)-half:]
}
