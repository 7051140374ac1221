package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/goleak"

	"github.com/kayky233/AgentCli/internal/app"
	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/run"
)

// TestPackageLeaks runs goleak verification for the entire package
func TestPackageLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)
}

func TestRootListsCommands(t *testing.T) {
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	help := out.String()
	for _, name := range []string{"run", "plan", "rollback", "status"} {
		if !bytes.Contains([]byte(help), []byte(name)) {
			t.Errorf("help missing %q command:\n%s", name, help)
		}
	}
}

func TestStatusListsDiagnosticsInOrder(t *testing.T) {
	t.Setenv("AGENTCLI_HOME", t.TempDir())

	runs := run.NewManager(afero.NewOsFs(), app.ResolvePaths())
	st, err := runs.CreateRun("task", true)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	st.Diagnostics["test"] = framework.CheckResult{Success: false, ExitCode: 2}
	st.Diagnostics["build"] = framework.CheckResult{Success: true}
	if err := runs.SaveState(st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"status"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	buildAt := strings.Index(got, "build:")
	testAt := strings.Index(got, "test:")
	if buildAt < 0 || testAt < 0 {
		t.Fatalf("status output missing diagnostics lines:\n%s", got)
	}
	if buildAt > testAt {
		t.Errorf("diagnostics not sorted by name:\n%s", got)
	}
}

func TestRunRequiresTask(t *testing.T) {
	root := NewRoot()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"run"})

	if err := root.Execute(); err == nil {
		t.Fatal("run without a task should fail")
	}
}
