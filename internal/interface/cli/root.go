package cli

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

func NewRoot() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "agentcli",
		Short: "Staged repair sessions for build and test failures",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				app.SetLogger(app.NewLogger(os.Stderr, app.LevelDebug))
			}
			// Priority: setting.yaml > ENV > defaults
			paths := app.ResolvePaths()
			cfg, err := config.LoadSettings(afero.NewOsFs(), paths.Setting)
			if err != nil {
				app.GetLogger().Warn("load settings: %v (using defaults)", err)
				cfg = config.Default()
			}
			globalConfig = cfg
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug records as well")
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newRollbackCmd())
	cmd.AddCommand(newStatusCmd())
	return cmd
}
