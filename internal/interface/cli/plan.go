package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "plan [task]",
		Short: "Write a reviewable plan without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" {
				return fmt.Errorf("a task description is required")
			}

			orch, _, err := newOrchestrator()
			if err != nil {
				return err
			}
			plan, err := orch.PlanOnly(cmd.Context(), task, auto)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task: %s\n\nSteps:\n", plan.Task)
			for i, step := range plan.Steps {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, step)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nCommands: %s\n", strings.Join(plan.Commands, ", "))
			for _, risk := range plan.Risks {
				fmt.Fprintf(cmd.OutOrStdout(), "Risk: %s\n", risk)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Iteration cap: %d\n", plan.MaxIterations)
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "Mark the session for unattended execution")
	return cmd
}
