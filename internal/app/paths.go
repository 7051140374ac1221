package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved locations under the agentcli home directory.
type Paths struct {
	Home string // .agentcli directory
	Runs string // .agentcli/runs
	Var  string // .agentcli/var

	// Key files
	Setting   string // .agentcli/setting.yaml
	LatestRun string // .agentcli/latest_run
	RunLock   string // .agentcli/var/run.lock
}

// ResolvePaths builds all paths from the AGENTCLI_HOME environment
// variable, defaulting to .agentcli in the working directory.
func ResolvePaths() Paths {
	home := os.Getenv("AGENTCLI_HOME")
	if home == "" {
		home = ".agentcli"
	}

	p := Paths{
		Home: home,
		Runs: filepath.Join(home, "runs"),
		Var:  filepath.Join(home, "var"),
	}

	p.Setting = filepath.Join(home, "setting.yaml")
	p.LatestRun = filepath.Join(home, "latest_run")
	p.RunLock = filepath.Join(p.Var, "run.lock")

	return p
}
