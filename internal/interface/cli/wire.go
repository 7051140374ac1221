package cli

import (
	"os"

	"github.com/spf13/afero"

	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/llm"
	"github.com/kayky233/AgentCli/internal/orchestrator"
	"github.com/kayky233/AgentCli/internal/run"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

// newOrchestrator assembles a session orchestrator rooted at the
// current working directory.
func newOrchestrator() (*orchestrator.Orchestrator, app.Paths, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, app.Paths{}, err
	}

	afs := afero.NewOsFs()
	paths := app.ResolvePaths()
	runs := run.NewManager(afs, paths)

	service, err := llm.NewService(globalConfig)
	if err != nil {
		return nil, app.Paths{}, err
	}

	runner := &toolexec.Runner{Dir: workspace, Timeout: globalConfig.CommandTimeout}
	orch := orchestrator.New(
		afs,
		workspace,
		globalConfig,
		runs,
		service,
		envresolver.New(),
		&toolexec.GitCheckpointer{Runner: runner},
		orchestrator.TerminalPrompter{},
	)
	return orch, paths, nil
}
