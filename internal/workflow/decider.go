package workflow

import (
	"fmt"

	"github.com/fyrsmithlabs/recall/internal/similarity"
)

// Action is a terminal state of the add state machine.
type Action string

const (
	// ActionCreate writes a fresh record.
	ActionCreate Action = "create"

	// ActionUpdate mutates the best-matching existing record.
	ActionUpdate Action = "update"

	// ActionSupersede creates a fresh record and retires the match.
	ActionSupersede Action = "supersede"

	// ActionQuit aborts with no side effects.
	ActionQuit Action = "quit"
)

// Policy controls how Add disambiguates near-duplicate candidates.
type Policy string

const (
	// PolicyPrompt presents surviving matches and asks the decider.
	PolicyPrompt Policy = "prompt"

	// PolicyUpdate updates the highest-scoring survivor, falling back to
	// create when none survive the threshold.
	PolicyUpdate Policy = "update"

	// PolicySupersede supersedes the highest-scoring survivor, falling
	// back to create when none survive the threshold.
	PolicySupersede Policy = "supersede"

	// PolicyCreate creates unconditionally.
	PolicyCreate Policy = "create"
)

// ParsePolicy validates a policy flag value.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyPrompt, PolicyUpdate, PolicySupersede, PolicyCreate:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown dedup policy %q (want prompt, update, supersede or create)", s)
}

// Decider resolves the interactive disambiguation step. The engine calls
// it with the matches that survived the threshold, ranked by score, and
// blocks until it returns one Action. Implementations range from a
// terminal prompt to a scripted choice in tests.
type Decider interface {
	Decide(matches []similarity.Match) (Action, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(matches []similarity.Match) (Action, error)

// Decide calls f.
func (f DeciderFunc) Decide(matches []similarity.Match) (Action, error) {
	return f(matches)
}
