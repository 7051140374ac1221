package cli

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/run"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the workspace to the latest session's checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := os.Getwd()
			if err != nil {
				return err
			}
			runs := run.NewManager(afero.NewOsFs(), app.ResolvePaths())
			st, err := runs.LoadLatest()
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("no run to roll back")
			}

			runner := &toolexec.Runner{Dir: workspace, Timeout: globalConfig.CommandTimeout}
			cp := &toolexec.GitCheckpointer{Runner: runner}
			if err := cp.Restore(cmd.Context(), st.Checkpoint); err != nil {
				return err
			}
			st.Record("ROLLBACK", "", map[string]any{"checkpoint": st.Checkpoint})
			if err := runs.SaveState(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored checkpoint for session %s\n", st.SessionID)
			return nil
		},
	}
}
