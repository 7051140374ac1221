package author

import (
	"fmt"
	"strings"

	"github.com/kayky233/AgentCli/internal/framework"
	"github.com/kayky233/AgentCli/internal/llm"
)

const systemPrompt = `You are a code-repair assistant. Propose exactly one file edit
as a single JSON object following this schema:

{"action": "edit" | "multi_edit",
 "file_path": "<path relative to the workspace>",
 "edits": [{"old_string": "<exact text to replace>",
            "new_string": "<replacement text>",
            "expected_replacements": <positive integer>}],
 "message": "<optional short rationale>"}

Rules:
- old_string must match the file content byte-for-byte, including whitespace.
- expected_replacements must equal the number of occurrences of old_string.
- Use multi_edit with an ordered edits array for several regions in one file.
- Reply with the JSON object only. No prose, no markdown fences.`

// BuildInitialMessages assembles the instruction-plus-context prompt
// for the first authoring attempt.
func BuildInitialMessages(task string, pack *framework.ContextPack, diagnostics map[string]framework.CheckResult) []llm.ChatMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", task)

	if pack != nil && len(pack.Files) > 0 {
		b.WriteString("\nRelevant context (search matches):\n")
		for _, f := range pack.Files {
			fmt.Fprintf(&b, "## term: %s\n", f.Term)
			for _, m := range f.Matches {
				b.WriteString(m)
				b.WriteByte('\n')
			}
		}
	}

	for _, name := range []string{"build", "test"} {
		diag, ok := diagnostics[name]
		if !ok || diag.Success || len(diag.Summary) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\nLast %s failures:\n", name)
		for _, d := range diag.Summary {
			switch {
			case d.File != "":
				fmt.Fprintf(&b, "- %s:%s: %s\n", d.File, d.Line, d.Message)
			case d.Suite != "":
				fmt.Fprintf(&b, "- %s.%s: %s\n", d.Suite, d.Case, d.Message)
			default:
				fmt.Fprintf(&b, "- %s\n", d.Message)
			}
		}
	}

	b.WriteString("\nPropose the edit now.")
	return []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

// correctiveMessage echoes the exact failure back to the generator.
func correctiveMessage(kind, detail string) llm.ChatMessage {
	return llm.ChatMessage{
		Role: llm.RoleUser,
		Content: fmt.Sprintf("Your previous response failed %s validation: %s\n"+
			"Reply again with a single corrected JSON object and nothing else.", kind, detail),
	}
}
