package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/run"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest session's ledger summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs := run.NewManager(afero.NewOsFs(), app.ResolvePaths())
			st, err := runs.LoadLatest()
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session:   %s\n", st.SessionID)
			fmt.Fprintf(out, "Task:      %s\n", st.Task)
			fmt.Fprintf(out, "Stage:     %s\n", st.Stage)
			fmt.Fprintf(out, "Iteration: %d\n", st.Iteration)
			fmt.Fprintf(out, "Auto:      %v\n", st.Auto)
			if st.Checkpoint != "" {
				fmt.Fprintf(out, "Checkpoint: %s\n", st.Checkpoint)
			}
			names := make([]string, 0, len(st.Diagnostics))
			for name := range st.Diagnostics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				check := st.Diagnostics[name]
				verdict := "ok"
				if !check.Success {
					verdict = fmt.Sprintf("failed (exit %d, %d diagnostic(s))", check.ExitCode, len(check.Summary))
				}
				fmt.Fprintf(out, "%-10s %s\n", name+":", verdict)
			}
			if len(st.Patches) > 0 {
				fmt.Fprintf(out, "Patches:   %d applied artifact(s)\n", len(st.Patches))
			}
			return nil
		},
	}
}
