package framework

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kayky233/AgentCli/internal/editing"
	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/infra/fs"
	"github.com/kayky233/AgentCli/internal/llm"
)

// SearchSummary records the bounded matches for one search term.
type SearchSummary struct {
	Term    string   `json:"term"`
	Matches []string `json:"matches"`
}

// ContextPack is the gathered context handed to the patch author.
type ContextPack struct {
	Terms []string        `json:"terms"`
	Files []SearchSummary `json:"files"`
}

// RunContext is the in-memory mutable state threaded through one
// session. It is exclusively owned by the active run; no locking.
type RunContext struct {
	RunID     string
	Task      string
	Workspace string
	RunDir    string
	Auto      bool

	FS         afero.Fs
	Events     *EventLog
	Completion *llm.Service

	Env         *envresolver.Decision
	ContextPack *ContextPack

	// PendingEdits are validated edit requests queued for APPLY.
	PendingEdits   []editing.Request
	PatchArtifacts []string

	LastBuild *CheckResult
	LastTest  *CheckResult
	Iteration int

	// FileCache maps file path to the exact snapshot read before any
	// edit. A file must appear here before an edit may target it.
	FileCache    map[string]string
	AppliedFiles []string
}

// NewRunContext returns a context with initialized collections.
func NewRunContext(afs afero.Fs, runID, task, workspace, runDir string) *RunContext {
	return &RunContext{
		RunID:     runID,
		Task:      task,
		Workspace: workspace,
		RunDir:    runDir,
		FS:        afs,
		Events:    NewEventLog(),
		FileCache: map[string]string{},
	}
}

// SaveJSON writes an artifact as indented JSON under the run directory
// and returns its path.
func (c *RunContext) SaveJSON(relpath string, v any) (string, error) {
	path := filepath.Join(c.RunDir, relpath)
	if err := fs.AtomicWriteJSON(c.FS, path, v); err != nil {
		return "", err
	}
	return path, nil
}

// WriteArtifact writes a raw artifact under the run directory and
// returns its path.
func (c *RunContext) WriteArtifact(relpath string, data []byte) (string, error) {
	path := filepath.Join(c.RunDir, relpath)
	if err := fs.WriteFileAtomic(c.FS, path, data); err != nil {
		return "", err
	}
	return path, nil
}
