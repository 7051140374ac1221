// Package run owns the durable record of one repair session: the
// ledger (state.json), the run directory layout, and the resume
// pointer.
package run

import (
	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/framework"
)

// DecisionEvent records one user or orchestrator decision for audit.
type DecisionEvent struct {
	Stage   string         `json:"stage"`
	Choice  string         `json:"choice,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Plan is the human-reviewable execution plan written at session start.
type Plan struct {
	Task          string   `json:"task"`
	Steps         []string `json:"steps"`
	Commands      []string `json:"commands"`
	Risks         []string `json:"risks"`
	MaxIterations int      `json:"max_iterations"`
}

// State is the resumable ledger of one repair session. It is persisted
// after every stage and iteration boundary and loaded verbatim to
// resume an interrupted session.
type State struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Task      string `json:"task"`
	RunDir    string `json:"run_dir"`
	Auto      bool   `json:"auto"`

	Checkpoint string `json:"checkpoint"`
	Stage      string `json:"stage"`
	Iteration  int    `json:"iteration"`

	Plan        *Plan                            `json:"plan,omitempty"`
	EnvDecision *envresolver.Decision            `json:"env_decision,omitempty"`
	Transcript  []DecisionEvent                  `json:"transcript"`
	Diagnostics map[string]framework.CheckResult `json:"diagnostics"`
	Patches     []string                         `json:"patches"`

	Meta struct {
		UpdatedAt string `json:"updated_at"`
	} `json:"meta"`
}

// Record appends a decision event to the transcript.
func (s *State) Record(stage, choice string, payload map[string]any) {
	s.Transcript = append(s.Transcript, DecisionEvent{Stage: stage, Choice: choice, Payload: payload})
}
