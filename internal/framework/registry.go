package framework

import "sort"

type registration struct {
	agent    Agent
	priority int
	seq      int
}

// AgentRegistry keeps the ordered agent list for each stage.
// Agents run in descending priority order; ties keep registration order.
type AgentRegistry struct {
	agents  map[Stage][]registration
	nextSeq int
}

// NewAgentRegistry returns an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: map[Stage][]registration{}}
}

// Register inserts agent into the stage's ordered list.
func (r *AgentRegistry) Register(stage Stage, agent Agent, priority int) {
	regs := append(r.agents[stage], registration{agent: agent, priority: priority, seq: r.nextSeq})
	r.nextSeq++
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority > regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	r.agents[stage] = regs
}

// Get returns the agents registered for stage, in execution order.
func (r *AgentRegistry) Get(stage Stage) []Agent {
	regs := r.agents[stage]
	out := make([]Agent, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.agent)
	}
	return out
}
