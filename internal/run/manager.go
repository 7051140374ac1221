package run

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/infra/fs"
)

// Manager creates, persists, and resumes session ledgers under the
// agentcli home directory.
type Manager struct {
	FS    afero.Fs
	Paths app.Paths
}

// NewManager returns a manager rooted at the resolved paths.
func NewManager(afs afero.Fs, paths app.Paths) *Manager {
	return &Manager{FS: afs, Paths: paths}
}

// CreateRun allocates a new session id, builds the run directory
// skeleton, and persists the initial ledger.
func (m *Manager) CreateRun(task string, auto bool) (*State, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()

	runDir := filepath.Join(m.Paths.Runs, id)
	for _, sub := range []string{"context", "patches", "verify"} {
		if err := m.FS.MkdirAll(filepath.Join(runDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create run directory: %w", err)
		}
	}

	st := &State{
		SessionID:   id,
		Task:        norm.NFC.String(task),
		RunDir:      runDir,
		Auto:        auto,
		Stage:       "PLAN",
		Diagnostics: map[string]framework.CheckResult{},
	}
	if err := m.SaveState(st); err != nil {
		return nil, err
	}
	return st, nil
}

// SaveState persists the ledger atomically and refreshes the resume
// pointer. Each save bumps the schema-internal version counter.
func (m *Manager) SaveState(st *State) error {
	st.Version++
	st.Meta.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := fs.AtomicWriteJSON(m.FS, filepath.Join(st.RunDir, "state.json"), st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return fs.WriteFileAtomic(m.FS, m.Paths.LatestRun, []byte(st.SessionID+"\n"))
}

// LoadLatest loads the most recent session's ledger, or nil when no
// resumable run exists.
func (m *Manager) LoadLatest() (*State, error) {
	b, err := afero.ReadFile(m.FS, m.Paths.LatestRun)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	id := strings.TrimSpace(string(b))
	statePath := filepath.Join(m.Paths.Runs, id, "state.json")
	data, err := afero.ReadFile(m.FS, statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", statePath, err)
	}
	return &st, nil
}

// SavePlan writes plan.json and persists it on the ledger.
func (m *Manager) SavePlan(st *State, plan *Plan) error {
	st.Plan = plan
	if err := fs.AtomicWriteJSON(m.FS, filepath.Join(st.RunDir, "plan.json"), plan); err != nil {
		return err
	}
	return m.SaveState(st)
}
