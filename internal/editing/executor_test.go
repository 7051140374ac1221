package editing

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestExecutor(t *testing.T, files map[string]string) (*Executor, afero.Fs) {
	t.Helper()
	afs := afero.NewMemMapFs()
	cache := map[string]string{}
	exec := NewExecutor(afs, "/ws", cache)
	for path, content := range files {
		if err := afero.WriteFile(afs, "/ws/"+path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := exec.LoadFile(path); err != nil {
			t.Fatal(err)
		}
	}
	return exec, afs
}

func TestApplySingleEdit(t *testing.T) {
	exec, afs := newTestExecutor(t, map[string]string{"main.cc": "int x = 1;\n"})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "main.cc",
		Edits:    []Op{{OldString: "x = 1", NewString: "x = 2", ExpectedReplacements: 1}},
	}, false)

	if !res.OK {
		t.Fatalf("apply failed: %s", res.Error)
	}
	b, _ := afero.ReadFile(afs, "/ws/main.cc")
	if string(b) != "int x = 2;\n" {
		t.Errorf("file = %q", b)
	}
	if got, _ := exec.CachedContent("main.cc"); got != "int x = 2;\n" {
		t.Errorf("cache = %q", got)
	}
	if !strings.Contains(res.Diff, "-int x = 1;") || !strings.Contains(res.Diff, "+int x = 2;") {
		t.Errorf("diff missing hunks:\n%s", res.Diff)
	}
}

func TestApplyCountMismatchReportsActual(t *testing.T) {
	exec, _ := newTestExecutor(t, map[string]string{"a.txt": "hello world\nhello world\n"})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "a.txt",
		Edits:    []Op{{OldString: "hello", NewString: "hi", ExpectedReplacements: 1}},
	}, false)

	if res.OK {
		t.Fatal("apply should have failed")
	}
	if !errors.Is(res.Err, ErrCountMismatch) {
		t.Errorf("err = %v, want ErrCountMismatch", res.Err)
	}
	if !strings.Contains(res.Error, "expected 1") || !strings.Contains(res.Error, "found 2") {
		t.Errorf("error %q should report expected vs found", res.Error)
	}
	// The file is untouched after a failed validation.
	if got, _ := exec.CachedContent("a.txt"); got != "hello world\nhello world\n" {
		t.Errorf("cache mutated: %q", got)
	}
}

func TestApplyMatchingCountReplacesAll(t *testing.T) {
	exec, afs := newTestExecutor(t, map[string]string{"a.txt": "hello world\nhello world\n"})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "a.txt",
		Edits:    []Op{{OldString: "hello world", NewString: "hi", ExpectedReplacements: 2}},
	}, false)

	if !res.OK {
		t.Fatalf("apply failed: %s", res.Error)
	}
	b, _ := afero.ReadFile(afs, "/ws/a.txt")
	if string(b) != "hi\nhi\n" {
		t.Errorf("file = %q, want %q", b, "hi\nhi\n")
	}
	if res.AppliedEdits[0].Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", res.AppliedEdits[0].Occurrences)
	}
}

func TestApplyNotFound(t *testing.T) {
	exec, _ := newTestExecutor(t, map[string]string{"a.txt": "alpha\n"})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "a.txt",
		Edits:    []Op{{OldString: "beta", NewString: "gamma", ExpectedReplacements: 1}},
	}, false)

	if res.OK {
		t.Fatal("apply should have failed")
	}
	if !errors.Is(res.Err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", res.Err)
	}
}

func TestApplyRequiresLoadedFile(t *testing.T) {
	afs := afero.NewMemMapFs()
	_ = afero.WriteFile(afs, "/ws/a.txt", []byte("alpha\n"), 0o644)
	exec := NewExecutor(afs, "/ws", map[string]string{})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "a.txt",
		Edits:    []Op{{OldString: "alpha", NewString: "beta", ExpectedReplacements: 1}},
	}, false)

	if res.OK {
		t.Fatal("apply should have failed")
	}
	if !errors.Is(res.Err, ErrNotLoaded) {
		t.Errorf("err = %v, want ErrNotLoaded", res.Err)
	}
}

func TestApplyMultiEditAtomic(t *testing.T) {
	const content = "one\ntwo\nthree\n"
	exec, afs := newTestExecutor(t, map[string]string{"a.txt": content})

	// Second op fails validation; the first must not have been committed.
	res := exec.Apply(Request{
		Action:   ActionMultiEdit,
		FilePath: "a.txt",
		Edits: []Op{
			{OldString: "one", NewString: "ONE", ExpectedReplacements: 1},
			{OldString: "missing", NewString: "x", ExpectedReplacements: 1},
		},
	}, false)

	if res.OK {
		t.Fatal("apply should have failed")
	}
	if len(res.AppliedEdits) != 0 {
		t.Errorf("applied_edits = %d, want 0 on failure", len(res.AppliedEdits))
	}
	b, _ := afero.ReadFile(afs, "/ws/a.txt")
	if string(b) != content {
		t.Errorf("file mutated on failed request: %q", b)
	}
}

func TestApplyMultiEditSequential(t *testing.T) {
	// Ops validate against the working copy, so a later op may target
	// text produced by an earlier one.
	exec, afs := newTestExecutor(t, map[string]string{"a.txt": "start\n"})

	res := exec.Apply(Request{
		Action:   ActionMultiEdit,
		FilePath: "a.txt",
		Edits: []Op{
			{OldString: "start", NewString: "middle", ExpectedReplacements: 1},
			{OldString: "middle", NewString: "end", ExpectedReplacements: 1},
		},
	}, false)

	if !res.OK {
		t.Fatalf("apply failed: %s", res.Error)
	}
	b, _ := afero.ReadFile(afs, "/ws/a.txt")
	if string(b) != "end\n" {
		t.Errorf("file = %q, want %q", b, "end\n")
	}
}

func TestApplyDryRunLeavesFileUntouched(t *testing.T) {
	exec, afs := newTestExecutor(t, map[string]string{"a.txt": "alpha\n"})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "a.txt",
		Edits:    []Op{{OldString: "alpha", NewString: "beta", ExpectedReplacements: 1}},
	}, true)

	if !res.OK {
		t.Fatalf("dry run failed: %s", res.Error)
	}
	if res.Diff == "" {
		t.Error("dry run should still produce a diff")
	}
	b, _ := afero.ReadFile(afs, "/ws/a.txt")
	if string(b) != "alpha\n" {
		t.Errorf("dry run mutated file: %q", b)
	}
	if got, _ := exec.CachedContent("a.txt"); got != "alpha\n" {
		t.Errorf("dry run mutated cache: %q", got)
	}
}

func TestApplyIdenticalContentEmptyDiff(t *testing.T) {
	exec, _ := newTestExecutor(t, map[string]string{"a.txt": "alpha\n"})

	res := exec.Apply(Request{
		Action:   ActionEdit,
		FilePath: "a.txt",
		Edits:    []Op{{OldString: "alpha", NewString: "alpha", ExpectedReplacements: 1}},
	}, false)

	if !res.OK {
		t.Fatalf("apply failed: %s", res.Error)
	}
	if res.Diff != "" {
		t.Errorf("diff should be empty for identical content, got:\n%s", res.Diff)
	}
}
