package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/infra/fs"
)

func newRunCmd() *cobra.Command {
	var (
		auto          bool
		resume        bool
		buildOnly     bool
		maxIters      int
		makeCmd       string
		noFallback    bool
		shellFallback bool
	)
	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Run a repair session for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" && !resume {
				return fmt.Errorf("a task description is required (or pass --resume)")
			}
			if maxIters > 0 {
				globalConfig.MaxIterations = maxIters
			}

			orch, paths, err := newOrchestrator()
			if err != nil {
				return err
			}
			orch.BuildOnly = buildOnly
			force := ""
			if shellFallback {
				force = envresolver.StrategyFallback
			}
			orch.SetEnvOverrides(makeCmd, !noFallback, force)

			// One session per home at a time.
			release, err := fs.AcquireLock(afero.NewOsFs(), paths.RunLock)
			if err != nil {
				return err
			}
			defer release()

			return orch.Run(cmd.Context(), task, auto, resume)
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "Continue past failed verifications without prompting")
	cmd.Flags().BoolVar(&resume, "resume", false, "Resume the latest persisted session")
	cmd.Flags().BoolVar(&buildOnly, "build-only", false, "Verify the build but skip the test stage")
	cmd.Flags().IntVar(&maxIters, "max-iters", 0, "Override the iteration cap for this session")
	cmd.Flags().StringVar(&makeCmd, "make-cmd", "", "Use this make binary instead of autodetecting one")
	cmd.Flags().BoolVar(&noFallback, "no-make-fallback", false, "Fail instead of falling back to a POSIX shell")
	cmd.Flags().BoolVar(&shellFallback, "shell-fallback", false, "Run build/test commands through a POSIX shell")
	return cmd
}
