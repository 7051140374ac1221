package editing

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"

	"github.com/kayky233/AgentCli/internal/infra/fs"
)

// Apply error categories, inspectable with errors.Is.
var (
	// ErrNotLoaded means the target file was never read into the cache.
	ErrNotLoaded = errors.New("file must be read before editing")
	// ErrNotFound means old_string has zero occurrences.
	ErrNotFound = errors.New("old_string not found")
	// ErrCountMismatch means the occurrence count differs from
	// expected_replacements.
	ErrCountMismatch = errors.New("replacement count mismatch")
)

// AppliedEdit records one committed substitution.
type AppliedEdit struct {
	FilePath    string `json:"file_path"`
	OldString   string `json:"old_string"`
	NewString   string `json:"new_string"`
	Occurrences int    `json:"occurrences"`
}

// ApplyResult reports the outcome of one edit request.
type ApplyResult struct {
	OK           bool          `json:"ok"`
	Error        string        `json:"error,omitempty"`
	Diff         string        `json:"diff,omitempty"`
	AppliedEdits []AppliedEdit `json:"applied_edits"`

	// Err carries the failure category for errors.Is; not serialized.
	Err error `json:"-"`
}

// Executor validates and applies edit requests with strong guarantees:
// the target file must be pre-read into the cache, every op's
// occurrence count must equal expected_replacements, and a multi-op
// request commits no partial state.
type Executor struct {
	fs        afero.Fs
	workspace string
	cache     map[string]string
}

// NewExecutor returns an executor over the given workspace and
// file-content cache. The cache maps file path to the exact snapshot
// read before editing; the executor updates it on commit.
func NewExecutor(afs afero.Fs, workspace string, cache map[string]string) *Executor {
	return &Executor{fs: afs, workspace: workspace, cache: cache}
}

// Apply validates every op of req against a working copy and, unless
// dryRun, writes the file and updates the cache after all ops pass.
// A unified diff of original vs resulting content is always produced.
func (e *Executor) Apply(req Request, dryRun bool) ApplyResult {
	original, ok := e.cache[req.FilePath]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNotLoaded, req.FilePath)
		return ApplyResult{Error: err.Error(), Err: err, AppliedEdits: []AppliedEdit{}}
	}

	working := original
	applied := make([]AppliedEdit, 0, len(req.Edits))
	for i, op := range req.Edits {
		occ := strings.Count(working, op.OldString)
		if occ == 0 {
			err := fmt.Errorf("%w in %s (edit %d); ensure exact match including whitespace", ErrNotFound, req.FilePath, i+1)
			return ApplyResult{Error: err.Error(), Err: err, AppliedEdits: []AppliedEdit{}}
		}
		if occ != op.ExpectedReplacements {
			err := fmt.Errorf("%w: expected %d replacement(s) but found %d occurrence(s); set expected_replacements to the actual count or refine old_string",
				ErrCountMismatch, op.ExpectedReplacements, occ)
			return ApplyResult{Error: err.Error(), Err: err, AppliedEdits: []AppliedEdit{}}
		}
		working = strings.Replace(working, op.OldString, op.NewString, op.ExpectedReplacements)
		applied = append(applied, AppliedEdit{
			FilePath:    req.FilePath,
			OldString:   op.OldString,
			NewString:   op.NewString,
			Occurrences: occ,
		})
	}

	diff := unifiedDiff(original, working, req.FilePath)
	if !dryRun {
		abs := filepath.Join(e.workspace, req.FilePath)
		if err := fs.WriteFileAtomic(e.fs, abs, []byte(working)); err != nil {
			return ApplyResult{Error: err.Error(), Err: err, AppliedEdits: []AppliedEdit{}}
		}
		e.cache[req.FilePath] = working
	}
	return ApplyResult{OK: true, Diff: diff, AppliedEdits: applied}
}

// CachedContent returns the cached snapshot for filePath, if loaded.
func (e *Executor) CachedContent(filePath string) (string, bool) {
	content, ok := e.cache[filePath]
	return content, ok
}

// LoadFile reads a workspace file into the cache and returns its
// content. Editing a file is only legal after it has been loaded.
func (e *Executor) LoadFile(filePath string) (string, error) {
	abs := filepath.Join(e.workspace, filePath)
	b, err := afero.ReadFile(e.fs, abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filePath, err)
	}
	e.cache[filePath] = string(b)
	return string(b), nil
}

func unifiedDiff(old, new, filePath string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(new),
		FromFile: filePath,
		ToFile:   filePath,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
