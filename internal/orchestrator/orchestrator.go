// Package orchestrator drives one repair session: environment
// resolution, the per-iteration stage sequence, failure decisions,
// checkpointing, and ledger persistence.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kayky233/AgentCli/internal/agents"
	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/infra/config"
	"github.com/kayky233/AgentCli/internal/llm"
	"github.com/kayky233/AgentCli/internal/run"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

// Orchestrator owns one session end to end. Execution is synchronous
// and single-threaded; the only suspension points are external
// commands, completion calls, and manual-mode prompts.
type Orchestrator struct {
	FS           afero.Fs
	Workspace    string
	Cfg          config.Config
	Runs         *run.Manager
	Service      *llm.Service
	Resolver     envresolver.Resolver
	Checkpointer toolexec.Checkpointer
	Prompter     Prompter
	BuildOnly    bool

	pipeline *framework.PipelineRunner
	env      *agents.EnvAgent
	log      app.Logger
}

// New wires the stage agents into a registry and returns a ready
// orchestrator.
func New(afs afero.Fs, workspace string, cfg config.Config, runs *run.Manager, service *llm.Service, resolver envresolver.Resolver, checkpointer toolexec.Checkpointer, prompter Prompter) *Orchestrator {
	runner := &toolexec.Runner{Dir: workspace, Timeout: cfg.CommandTimeout}
	envAgent := &agents.EnvAgent{Resolver: resolver, AllowFallback: true}

	registry := framework.NewAgentRegistry()
	registry.Register(framework.StagePrepare, envAgent, 100)
	registry.Register(framework.StageGather, &agents.ScoutAgent{Searcher: &toolexec.Searcher{FS: afs, Runner: runner}}, 100)
	registry.Register(framework.StageEdit, &agents.AuthorAgent{MaxRetries: cfg.MaxRetries}, 100)
	registry.Register(framework.StageApply, &agents.ApplyAgent{}, 100)
	registry.Register(framework.StageVerifyBuild, &agents.BuildAgent{Runner: runner}, 100)
	registry.Register(framework.StageVerifyTest, &agents.TestAgent{Runner: runner}, 100)

	return &Orchestrator{
		FS:           afs,
		Workspace:    workspace,
		Cfg:          cfg,
		Runs:         runs,
		Service:      service,
		Resolver:     resolver,
		Checkpointer: checkpointer,
		Prompter:     prompter,
		pipeline:     framework.NewPipelineRunner(registry),
		env:          envAgent,
		log:          app.GetLogger(),
	}
}

// SetEnvOverrides adjusts how the next session's environment is
// resolved: a fixed make binary, whether the shell fallback is
// permitted, and an optional forced strategy.
func (o *Orchestrator) SetEnvOverrides(makeBin string, allowFallback bool, forceStrategy string) {
	o.env.OverrideMake = makeBin
	o.env.AllowFallback = allowFallback
	o.env.ForceStrategy = forceStrategy
}

// buildPlan produces the reviewable execution plan for a task.
func (o *Orchestrator) buildPlan(task string) *run.Plan {
	return &run.Plan{
		Task: task,
		Steps: []string{
			"Resolve build/test environment",
			"Gather context for the task",
			"Author an edit via the completion service",
			"Apply validated edits atomically",
			"Verify build, then tests",
		},
		Commands:      []string{"make -j", "make test"},
		Risks:         []string{"edits may fail verification and need further iterations", "rollback restores the pre-session checkpoint"},
		MaxIterations: o.Cfg.MaxIterations,
	}
}

// PlanOnly creates a session, captures a checkpoint, and writes the
// plan without iterating.
func (o *Orchestrator) PlanOnly(ctx context.Context, task string, auto bool) (*run.Plan, error) {
	st, err := o.Runs.CreateRun(task, auto)
	if err != nil {
		return nil, err
	}
	if token, err := o.Checkpointer.Capture(ctx, st.SessionID); err == nil {
		st.Checkpoint = token
	}
	plan := o.buildPlan(task)
	if err := o.Runs.SavePlan(st, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Run executes a session until success, the iteration cap, or abort.
// With resume, the latest persisted ledger is re-entered without
// repeating completed iterations.
func (o *Orchestrator) Run(ctx context.Context, task string, auto, resume bool) error {
	var st *run.State
	var err error

	if resume {
		st, err = o.Runs.LoadLatest()
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("no resumable run found")
		}
		o.log.Info("resuming session %s (task: %s)", st.SessionID, st.Task)
		auto = auto || st.Auto
	} else {
		st, err = o.Runs.CreateRun(task, auto)
		if err != nil {
			return err
		}
		token, err := o.Checkpointer.Capture(ctx, st.SessionID)
		if err != nil {
			o.log.Warn("checkpoint unavailable: %v", err)
		}
		st.Checkpoint = token
		if err := o.Runs.SavePlan(st, o.buildPlan(task)); err != nil {
			return err
		}
		if !auto {
			choice, err := o.Prompter.Choose("Proceed with this plan?", []string{ChoiceContinue, ChoiceAbort})
			st.Record("PLAN", choice, nil)
			if err != nil || choice != ChoiceContinue {
				return o.finish(st, nil, "aborted at plan review")
			}
		}
	}

	rctx := framework.NewRunContext(o.FS, st.SessionID, st.Task, o.Workspace, st.RunDir)
	rctx.Auto = auto
	rctx.Completion = o.Service
	rctx.Iteration = st.Iteration
	rctx.Env = st.EnvDecision

	if rctx.Env == nil {
		if err := o.prepare(st, rctx); err != nil {
			return err
		}
	}

	for st.Iteration < o.Cfg.MaxIterations {
		st.Iteration++
		rctx.Iteration = st.Iteration

		done, err := o.iterate(st, rctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	return o.finish(st, rctx, "iteration cap reached without success")
}

// prepare resolves the environment once per session. An error strategy
// is fatal: no iteration is attempted.
func (o *Orchestrator) prepare(st *run.State, rctx *framework.RunContext) error {
	results := o.runStage(st, rctx, framework.StagePrepare)
	if framework.StageStatus(results) == framework.StatusFail {
		o.finish(st, rctx, "environment resolution failed")
		return fmt.Errorf("no viable build/test strategy for %s", o.Workspace)
	}
	st.EnvDecision = rctx.Env
	return o.Runs.SaveState(st)
}

// iterate runs one GATHER→EDIT→APPLY→VERIFY_BUILD→VERIFY_TEST pass.
// It returns done=true when the session reached a terminal outcome.
func (o *Orchestrator) iterate(st *run.State, rctx *framework.RunContext) (bool, error) {
	for _, stage := range framework.IterationStages {
		if o.BuildOnly && stage == framework.StageVerifyTest {
			break
		}

		results := o.runStage(st, rctx, stage)
		status := framework.StageStatus(results)

		switch stage {
		case framework.StageEdit:
			st.Patches = append([]string{}, rctx.PatchArtifacts...)
			if status == framework.StatusFail {
				return true, o.finish(st, rctx, "edit stage failed")
			}
		case framework.StageVerifyBuild:
			if rctx.LastBuild != nil {
				st.Diagnostics["build"] = *rctx.LastBuild
			}
			if err := o.Runs.SaveState(st); err != nil {
				return false, err
			}
			if status == framework.StatusFail {
				return o.handleFailure(st, rctx, "build")
			}
		case framework.StageVerifyTest:
			if rctx.LastTest != nil {
				st.Diagnostics["test"] = *rctx.LastTest
			}
			if err := o.Runs.SaveState(st); err != nil {
				return false, err
			}
			if status == framework.StatusFail {
				return o.handleFailure(st, rctx, "test")
			}
		default:
			if status == framework.StatusFail {
				// Non-verification failures are not iterated on.
				return true, o.finish(st, rctx, string(stage)+" stage failed")
			}
		}
	}

	return true, o.finish(st, rctx, "")
}

// runStage executes one stage, then persists the ledger and the
// transcript at the stage boundary.
func (o *Orchestrator) runStage(st *run.State, rctx *framework.RunContext, stage framework.Stage) []framework.AgentResult {
	st.Stage = string(stage)
	if err := o.Runs.SaveState(st); err != nil {
		o.log.Warn("persist ledger: %v", err)
	}
	results := o.pipeline.RunStage(stage, rctx)
	if err := rctx.Events.FlushTo(o.FS, filepath.Join(st.RunDir, "transcript.ndjson")); err != nil {
		o.log.Warn("persist transcript: %v", err)
	}
	return results
}

// handleFailure decides how to proceed after a failed verification:
// auto mode continues into the next iteration, manual mode asks.
func (o *Orchestrator) handleFailure(st *run.State, rctx *framework.RunContext, check string) (bool, error) {
	if rctx.Auto {
		o.log.Info("%s failed; continuing to next iteration (%d/%d)", check, st.Iteration, o.Cfg.MaxIterations)
		return false, nil
	}

	choice, err := o.Prompter.Choose(
		fmt.Sprintf("%s failed. Next step?", check),
		[]string{ChoiceContinue, ChoiceAbort, ChoiceRollback, ChoiceAuto},
	)
	st.Record(check+"_fail", choice, nil)
	if err != nil {
		return true, o.finish(st, rctx, "prompt failed: "+err.Error())
	}
	switch choice {
	case ChoiceAbort:
		return true, o.finish(st, rctx, "aborted after "+check+" failure")
	case ChoiceRollback:
		if err := o.Checkpointer.Restore(context.Background(), st.Checkpoint); err != nil {
			return true, o.finish(st, rctx, "rollback failed: "+err.Error())
		}
		return true, o.finish(st, rctx, "rolled back to checkpoint")
	case ChoiceAuto:
		rctx.Auto = true
		st.Auto = true
	}
	return false, o.Runs.SaveState(st)
}

// finish marks the session final, persisting the ledger and transcript.
// An empty note means success.
func (o *Orchestrator) finish(st *run.State, rctx *framework.RunContext, note string) error {
	st.Stage = string(framework.StageFinalize)
	if note == "" {
		o.log.Info("session %s succeeded after %d iteration(s)", st.SessionID, st.Iteration)
	} else {
		st.Record("FINALIZE", "", map[string]any{"note": note})
		o.log.Warn("session %s ended: %s", st.SessionID, note)
	}
	if err := o.Runs.SaveState(st); err != nil {
		return err
	}
	if rctx != nil {
		if err := rctx.Events.FlushTo(o.FS, filepath.Join(st.RunDir, "transcript.ndjson")); err != nil {
			return err
		}
	}
	return nil
}

// Rollback restores the workspace of the latest session to its
// pre-session checkpoint.
func (o *Orchestrator) Rollback(ctx context.Context) error {
	st, err := o.Runs.LoadLatest()
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("no run to roll back")
	}
	if err := o.Checkpointer.Restore(ctx, st.Checkpoint); err != nil {
		return err
	}
	st.Record("ROLLBACK", "", map[string]any{"checkpoint": st.Checkpoint})
	return o.Runs.SaveState(st)
}
