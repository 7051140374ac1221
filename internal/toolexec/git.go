package toolexec

import (
	"context"
	"fmt"
	"strings"
)

// Checkpointer captures and restores reversible workspace snapshots.
// Tokens are opaque to callers.
type Checkpointer interface {
	Capture(ctx context.Context, label string) (string, error)
	Restore(ctx context.Context, token string) error
}

// GitCheckpointer snapshots the working tree with git stash. The
// stash entry stays in the stash list while a copy is re-applied, so
// the user keeps their tree and the token stays restorable.
type GitCheckpointer struct {
	Runner *Runner
}

// Capture records the current working tree and returns a stash ref.
func (g *GitCheckpointer) Capture(ctx context.Context, label string) (string, error) {
	if res := g.Runner.Run(ctx, []string{"git", "rev-parse", "--is-inside-work-tree"}, ""); res.ExitCode != 0 {
		return "", fmt.Errorf("not a git work tree: %s", strings.TrimSpace(res.Stderr))
	}
	stashLabel := "agentcli-" + label
	g.Runner.Run(ctx, []string{"git", "stash", "push", "-u", "-m", stashLabel}, "")

	list := g.Runner.Run(ctx, []string{"git", "stash", "list"}, "")
	if list.ExitCode != 0 || !strings.Contains(list.Stdout, stashLabel) {
		// Nothing to stash (clean tree) still counts as a checkpoint.
		return "", nil
	}
	ref := strings.SplitN(strings.SplitN(list.Stdout, "\n", 2)[0], ":", 2)[0]
	g.Runner.Run(ctx, []string{"git", "stash", "apply", ref}, "")
	return ref, nil
}

// Restore rolls the working tree back to the captured token.
func (g *GitCheckpointer) Restore(ctx context.Context, token string) error {
	if res := g.Runner.Run(ctx, []string{"git", "reset", "--hard"}, ""); res.ExitCode != 0 {
		return fmt.Errorf("git reset failed: %s", strings.TrimSpace(res.Stderr))
	}
	if res := g.Runner.Run(ctx, []string{"git", "clean", "-fd"}, ""); res.ExitCode != 0 {
		return fmt.Errorf("git clean failed: %s", strings.TrimSpace(res.Stderr))
	}
	if token == "" {
		return nil
	}
	if res := g.Runner.Run(ctx, []string{"git", "stash", "apply", token}, ""); res.ExitCode != 0 {
		return fmt.Errorf("git stash apply failed: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}
