// Package envresolver decides how a workspace is built and tested.
// The orchestrator depends only on the Resolver contract; the strategy
// heuristics live behind it.
package envresolver

import (
	"os/exec"
	"runtime"
	"strings"
)

// Strategies a decision may select. StrategyError means no viable
// execution path exists and the session must not start.
const (
	StrategyNative   = "native"
	StrategyShell    = "shell"
	StrategyFallback = "fallback"
	StrategyError    = "error"
)

// Request describes the workspace and caller preferences.
type Request struct {
	Workspace      string
	PreferredBuild []string
	PreferredTest  []string
	AllowFallback  bool
	ForceStrategy  string
	OverrideMake   string
}

// Decision is the resolved execution plan for one session.
type Decision struct {
	Platform     string            `json:"platform"`
	Strategy     string            `json:"strategy"`
	BuildCommand []string          `json:"build_command"`
	TestCommand  []string          `json:"test_command"`
	Detections   map[string]string `json:"detections"`
	Warnings     []string          `json:"warnings"`
}

// Resolver decides a build/test strategy for a workspace.
type Resolver interface {
	Decide(req Request) Decision
}

// DefaultResolver detects a usable make variant, falling back to a
// POSIX shell invocation when allowed.
type DefaultResolver struct {
	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// New returns a resolver using the real PATH.
func New() *DefaultResolver {
	return &DefaultResolver{lookPath: exec.LookPath}
}

var makeCandidates = []string{"make", "gmake", "mingw32-make"}

// Decide inspects the environment and picks a strategy.
func (r *DefaultResolver) Decide(req Request) Decision {
	look := r.lookPath
	if look == nil {
		look = exec.LookPath
	}
	d := Decision{
		Platform:   runtime.GOOS,
		Detections: map[string]string{},
	}

	var makeBin string
	if req.OverrideMake != "" {
		makeBin = req.OverrideMake
		d.Detections["make"] = makeBin
	} else {
		for _, cand := range makeCandidates {
			if path, err := look(cand); err == nil {
				makeBin = cand
				d.Detections["make"] = path
				break
			}
		}
	}
	if path, err := look("sh"); err == nil {
		d.Detections["sh"] = path
	}

	build := req.PreferredBuild
	test := req.PreferredTest
	if len(build) == 0 {
		build = []string{"make", "-j"}
	}
	if len(test) == 0 {
		test = []string{"make", "test"}
	}

	switch {
	case req.ForceStrategy == StrategyFallback || (makeBin == "" && req.AllowFallback && d.Detections["sh"] != ""):
		if d.Detections["sh"] == "" {
			d.Strategy = StrategyError
			d.Warnings = append(d.Warnings, "fallback requested but no POSIX shell found")
			return d
		}
		d.Strategy = StrategyFallback
		d.BuildCommand = []string{"sh", "-c", strings.Join(build, " ")}
		d.TestCommand = []string{"sh", "-c", strings.Join(test, " ")}
		if makeBin == "" {
			d.Warnings = append(d.Warnings, "no make variant found; using shell fallback")
		}
	case makeBin != "":
		d.Strategy = StrategyNative
		d.BuildCommand = aliasMake(build, makeBin)
		d.TestCommand = aliasMake(test, makeBin)
		if makeBin != "make" {
			d.Warnings = append(d.Warnings, "using "+makeBin+" in place of make")
		}
	default:
		d.Strategy = StrategyError
		d.Warnings = append(d.Warnings, "no make variant and no shell fallback available")
	}
	return d
}

// aliasMake rewrites a leading "make" to the detected variant.
func aliasMake(cmd []string, makeBin string) []string {
	if len(cmd) == 0 || cmd[0] != "make" || makeBin == "make" {
		return cmd
	}
	out := append([]string{makeBin}, cmd[1:]...)
	return out
}
