package framework

// Stage is a named phase in the fixed session lifecycle.
type Stage string

const (
	StagePlan        Stage = "PLAN"
	StagePrepare     Stage = "PREPARE"
	StageGather      Stage = "GATHER"
	StageEdit        Stage = "EDIT"
	StageApply       Stage = "APPLY"
	StageVerifyBuild Stage = "VERIFY_BUILD"
	StageVerifyTest  Stage = "VERIFY_TEST"
	StageReview      Stage = "REVIEW"
	StageFinalize    Stage = "FINALIZE"
)

// IterationStages is the fixed per-iteration order executed by the orchestrator.
var IterationStages = []Stage{
	StageGather,
	StageEdit,
	StageApply,
	StageVerifyBuild,
	StageVerifyTest,
}

// Status is the outcome reported by an agent or aggregated for a stage.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// AgentResult is the outcome of one agent invocation.
type AgentResult struct {
	Status      Status         `json:"status"`
	Events      []Event        `json:"events,omitempty"`
	Artifacts   []string       `json:"artifacts,omitempty"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	SuggestNext map[string]any `json:"suggest_next,omitempty"`
	Note        string         `json:"note,omitempty"`
}

// Agent is a pluggable unit of work bound to one pipeline stage.
// Run may return an error; the pipeline converts errors and panics
// into fail results so no fault propagates past the scheduler.
type Agent interface {
	ID() string
	Stage() Stage
	Run(ctx *RunContext) (AgentResult, error)
}

// Diagnostic is one parsed build error or test failure.
type Diagnostic struct {
	File    string `json:"file,omitempty"`
	Line    string `json:"line,omitempty"`
	Suite   string `json:"suite,omitempty"`
	Case    string `json:"case,omitempty"`
	Message string `json:"message"`
}

// CheckResult summarizes one build or test verification run.
type CheckResult struct {
	Success  bool         `json:"success"`
	LogPath  string       `json:"log"`
	ExitCode int          `json:"exit_code"`
	Summary  []Diagnostic `json:"summary"`
}

// StageStatus aggregates agent results: fail beats warn beats ok.
func StageStatus(results []AgentResult) Status {
	status := StatusOK
	for _, r := range results {
		switch r.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			status = StatusWarn
		}
	}
	return status
}
