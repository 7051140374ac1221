// Package agents contains the pluggable units of work bound to the
// pipeline stages of the repair loop.
package agents

import (
	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/framework"
)

// EnvAgent resolves the build/test execution strategy once per session.
type EnvAgent struct {
	Resolver      envresolver.Resolver
	AllowFallback bool
	OverrideMake  string
	ForceStrategy string
}

func (a *EnvAgent) ID() string             { return "env" }
func (a *EnvAgent) Stage() framework.Stage { return framework.StagePrepare }

func (a *EnvAgent) Run(ctx *framework.RunContext) (framework.AgentResult, error) {
	decision := a.Resolver.Decide(envresolver.Request{
		Workspace:     ctx.Workspace,
		AllowFallback: a.AllowFallback,
		OverrideMake:  a.OverrideMake,
		ForceStrategy: a.ForceStrategy,
	})
	ctx.Env = &decision

	artifact, err := ctx.SaveJSON("env_decision.json", decision)
	if err != nil {
		return framework.AgentResult{}, err
	}
	ctx.Events.Emit("env.decision", map[string]any{
		"strategy": decision.Strategy,
		"build":    decision.BuildCommand,
		"test":     decision.TestCommand,
		"warnings": decision.Warnings,
	}, "")

	status := framework.StatusOK
	if decision.Strategy == envresolver.StrategyError {
		status = framework.StatusFail
	} else if len(decision.Warnings) > 0 {
		status = framework.StatusWarn
	}
	return framework.AgentResult{
		Status:    status,
		Artifacts: []string{artifact},
		Outputs:   map[string]any{"env_decision": decision},
	}, nil
}
