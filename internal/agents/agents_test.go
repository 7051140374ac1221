package agents

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/kayky233/AgentCli/internal/editing"
	"github.com/kayky233/AgentCli/internal/envresolver"
	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

func newAgentContext() *framework.RunContext {
	return framework.NewRunContext(afero.NewMemMapFs(), "run-1", "fix the widget", "/ws", "/runs/run-1")
}

func TestParseBuildErrors(t *testing.T) {
	stderr := strings.Join([]string{
		"src/widget.cc:42:7: error: expected ';' after expression",
		"src/widget.cc:50: error: use of undeclared identifier 'frob'",
		"  candidate function not viable",
		"ld: error: undefined symbol: frob()",
		"",
	}, "\n")

	diags := parseBuildErrors(stderr)

	if len(diags) != 3 {
		t.Fatalf("diags = %d, want 3: %+v", len(diags), diags)
	}
	if diags[0].File != "src/widget.cc" || diags[0].Line != "42" {
		t.Errorf("diag[0] = %+v", diags[0])
	}
	if !strings.Contains(diags[0].Message, "expected ';'") {
		t.Errorf("diag[0].Message = %q", diags[0].Message)
	}
	if diags[2].File != "" {
		t.Errorf("linker line should have no file: %+v", diags[2])
	}
}

func TestParseBuildErrorsBounded(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, "a.cc:1: error: boom")
	}
	diags := parseBuildErrors(strings.Join(lines, "\n"))
	if len(diags) != maxDiagnostics {
		t.Errorf("diags = %d, want %d", len(diags), maxDiagnostics)
	}
}

func TestParseTestFailures(t *testing.T) {
	stdout := strings.Join([]string{
		"[ RUN      ] WidgetTest.Renders",
		"[  FAILED  ] WidgetTest.Renders (3 ms)",
		"[ RUN      ] WidgetTest.Resizes",
		"[       OK ] WidgetTest.Resizes (1 ms)",
		"[  FAILED  ] ParserTest.HandlesEmpty (0 ms)",
	}, "\n")

	diags := parseTestFailures(stdout)

	if len(diags) != 2 {
		t.Fatalf("diags = %d, want 2: %+v", len(diags), diags)
	}
	if diags[0].Suite != "WidgetTest" || diags[0].Case != "Renders" {
		t.Errorf("diag[0] = %+v", diags[0])
	}
	if diags[1].Suite != "ParserTest" || diags[1].Case != "HandlesEmpty" {
		t.Errorf("diag[1] = %+v", diags[1])
	}
}

func TestCollectTerms(t *testing.T) {
	ctx := newAgentContext()
	ctx.LastTest = &framework.CheckResult{Summary: []framework.Diagnostic{
		{Suite: "WidgetTest", Case: "Renders"},
		{Suite: "WidgetTest", Case: "Resizes"},
	}}
	ctx.LastBuild = &framework.CheckResult{Summary: []framework.Diagnostic{
		{Message: "undefined symbol: frob()"},
	}}

	terms := collectTerms(ctx)

	want := []string{"WidgetTest", "Renders", "Resizes", "undefined symbol: frob()", "fix the widget"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestEnvAgentFailsOnErrorStrategy(t *testing.T) {
	ctx := newAgentContext()
	agent := &EnvAgent{Resolver: stubResolver{decision: envresolver.Decision{Strategy: envresolver.StrategyError}}}

	res, err := agent.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != framework.StatusFail {
		t.Errorf("status = %s, want fail", res.Status)
	}
}

func TestEnvAgentWarnsOnSubstitution(t *testing.T) {
	ctx := newAgentContext()
	agent := &EnvAgent{Resolver: stubResolver{decision: envresolver.Decision{
		Strategy:     envresolver.StrategyNative,
		BuildCommand: []string{"gmake", "-j"},
		Warnings:     []string{"using gmake in place of make"},
	}}}

	res, err := agent.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != framework.StatusWarn {
		t.Errorf("status = %s, want warn", res.Status)
	}
	if ctx.Env == nil || ctx.Env.Strategy != envresolver.StrategyNative {
		t.Errorf("ctx.Env = %+v", ctx.Env)
	}
	ok, _ := afero.Exists(ctx.FS, "/runs/run-1/env_decision.json")
	if !ok {
		t.Error("env_decision.json not written")
	}
}

type stubResolver struct {
	decision envresolver.Decision
}

func (s stubResolver) Decide(req envresolver.Request) envresolver.Decision { return s.decision }

func TestBuildAgentCapsLogArtifact(t *testing.T) {
	ctx := framework.NewRunContext(afero.NewOsFs(), "run-1", "task", t.TempDir(), t.TempDir())
	ctx.Iteration = 1
	ctx.Env = &envresolver.Decision{
		Strategy:     envresolver.StrategyNative,
		BuildCommand: []string{"sh", "-c", "head -c 30000 /dev/zero | tr '\\0' x"},
	}

	res, err := (&BuildAgent{Runner: &toolexec.Runner{Timeout: 10 * time.Second}}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != framework.StatusOK {
		t.Fatalf("status = %s (%s)", res.Status, res.Note)
	}

	info, err := os.Stat(ctx.LastBuild.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	const marker = "\n...[truncated]...\n"
	if info.Size() > int64(toolexec.MaxCaptureChars+len(marker)) {
		t.Errorf("log artifact = %d bytes, want at most %d plus marker", info.Size(), toolexec.MaxCaptureChars)
	}
}

func TestApplyAgentEmptyQueueNoop(t *testing.T) {
	ctx := newAgentContext()
	res, err := (&ApplyAgent{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != framework.StatusOK {
		t.Errorf("status = %s, want ok", res.Status)
	}
}

func TestApplyAgentCommitsQueuedEdits(t *testing.T) {
	ctx := newAgentContext()
	_ = afero.WriteFile(ctx.FS, "/ws/a.txt", []byte("alpha\n"), 0o644)
	ctx.FileCache["a.txt"] = "alpha\n"
	ctx.PendingEdits = []editing.Request{{
		Action:   editing.ActionEdit,
		FilePath: "a.txt",
		Edits:    []editing.Op{{OldString: "alpha", NewString: "beta", ExpectedReplacements: 1}},
	}}

	res, err := (&ApplyAgent{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != framework.StatusOK {
		t.Fatalf("status = %s (%s)", res.Status, res.Note)
	}
	b, _ := afero.ReadFile(ctx.FS, "/ws/a.txt")
	if string(b) != "beta\n" {
		t.Errorf("file = %q", b)
	}
	if len(ctx.PendingEdits) != 0 {
		t.Error("queue should be cleared after commit")
	}
	if len(ctx.AppliedFiles) != 1 || ctx.AppliedFiles[0] != "a.txt" {
		t.Errorf("applied = %v", ctx.AppliedFiles)
	}
}

func TestApplyAgentFailsOnBadEdit(t *testing.T) {
	ctx := newAgentContext()
	ctx.FileCache["a.txt"] = "alpha\n"
	ctx.PendingEdits = []editing.Request{{
		Action:   editing.ActionEdit,
		FilePath: "a.txt",
		Edits:    []editing.Op{{OldString: "missing", NewString: "x", ExpectedReplacements: 1}},
	}}

	res, err := (&ApplyAgent{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != framework.StatusFail {
		t.Errorf("status = %s, want fail", res.Status)
	}
}
