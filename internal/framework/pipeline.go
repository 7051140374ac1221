package framework

import "fmt"

// PipelineRunner executes the agents of one stage in order, with
// uniform telemetry and failure short-circuiting.
type PipelineRunner struct {
	registry *AgentRegistry
}

// NewPipelineRunner returns a runner over the given registry.
func NewPipelineRunner(registry *AgentRegistry) *PipelineRunner {
	return &PipelineRunner{registry: registry}
}

// RunStage runs every agent registered for stage until one fails.
// Errors and panics inside an agent never propagate: they are logged
// and converted into a fail result. Remaining agents are skipped the
// moment one agent reports fail; already-applied side effects are not
// rolled back here.
func (p *PipelineRunner) RunStage(stage Stage, ctx *RunContext) []AgentResult {
	var results []AgentResult
	ctx.Events.StageEnter(stage)
	for _, agent := range p.registry.Get(stage) {
		ctx.Events.AgentStart(agent.ID(), stage)
		res := p.invoke(agent, ctx)
		results = append(results, res)
		ctx.Events.AgentEnd(agent.ID(), stage, res.Status)
		for _, evt := range res.Events {
			ctx.Events.Emit(evt.Type, evt.Payload, evt.Level)
		}
		if res.Status == StatusFail {
			break
		}
	}
	ctx.Events.StageExit(stage, StageStatus(results))
	return results
}

func (p *PipelineRunner) invoke(agent Agent, ctx *RunContext) (res AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			ctx.Events.Emit("agent.error", map[string]any{
				"stage": string(agent.Stage()),
				"agent": agent.ID(),
				"error": fmt.Sprint(r),
			}, "error")
			res = AgentResult{Status: StatusFail, Note: fmt.Sprintf("panic: %v", r)}
		}
	}()

	res, err := agent.Run(ctx)
	if err != nil {
		ctx.Events.Emit("agent.error", map[string]any{
			"stage": string(agent.Stage()),
			"agent": agent.ID(),
			"error": err.Error(),
		}, "error")
		return AgentResult{Status: StatusFail, Note: err.Error()}
	}
	return res
}
