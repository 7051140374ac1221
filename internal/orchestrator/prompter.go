package orchestrator

import "github.com/manifoldco/promptui"

// Decision labels offered after a failed verification in manual mode.
const (
	ChoiceContinue = "continue"
	ChoiceAbort    = "abort"
	ChoiceRollback = "rollback"
	ChoiceAuto     = "auto"
)

// Prompter asks the user to pick one of the offered items.
// Tests substitute a canned implementation.
type Prompter interface {
	Choose(label string, items []string) (string, error)
}

// TerminalPrompter renders an interactive select on the terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Choose(label string, items []string) (string, error) {
	prompt := promptui.Select{Label: label, Items: items}
	_, choice, err := prompt.Run()
	return choice, err
}
