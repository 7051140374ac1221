package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/toolexec"
)

// maxMatchesPerTerm bounds how much of each search lands in the pack.
const maxMatchesPerTerm = 20

// ScoutAgent gathers candidate context for the patch author by
// searching the workspace for the task text and diagnostic hints.
type ScoutAgent struct {
	Searcher *toolexec.Searcher
}

func (a *ScoutAgent) ID() string             { return "scout" }
func (a *ScoutAgent) Stage() framework.Stage { return framework.StageGather }

func (a *ScoutAgent) Run(ctx *framework.RunContext) (framework.AgentResult, error) {
	terms := collectTerms(ctx)

	pack := &framework.ContextPack{Terms: terms}
	for i, term := range terms {
		out := a.Searcher.Search(context.Background(), term, ctx.Workspace)
		if out != "" {
			if _, err := ctx.WriteArtifact(fmt.Sprintf("context/search_%02d.txt", i+1), []byte(out)); err != nil {
				return framework.AgentResult{}, err
			}
		}
		lines := strings.Split(out, "\n")
		if len(lines) > maxMatchesPerTerm {
			lines = lines[:maxMatchesPerTerm]
		}
		if out == "" {
			lines = nil
		}
		pack.Files = append(pack.Files, framework.SearchSummary{Term: term, Matches: lines})
	}
	ctx.ContextPack = pack

	artifact, err := ctx.SaveJSON("context/context_pack.json", pack)
	if err != nil {
		return framework.AgentResult{}, err
	}
	ctx.Events.Emit("gather.summary", map[string]any{"terms": terms, "files": len(pack.Files)}, "")
	return framework.AgentResult{
		Status:    framework.StatusOK,
		Artifacts: []string{artifact},
		Outputs:   map[string]any{"context_pack": pack},
	}, nil
}

// collectTerms derives search terms from the task plus the failure
// hints of the previous iteration, deduplicated in order.
func collectTerms(ctx *framework.RunContext) []string {
	var terms []string
	seen := map[string]bool{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	if ctx.LastTest != nil {
		for _, d := range ctx.LastTest.Summary {
			add(d.Suite)
			add(d.Case)
		}
	}
	if ctx.LastBuild != nil {
		for _, d := range ctx.LastBuild.Summary {
			add(d.Message)
		}
	}
	add(ctx.Task)
	return terms
}
