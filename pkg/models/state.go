package models

// State is the position of a task in the agent pipeline.
type State string

const (
	Init        State = "init"
	Planning    State = "planning"
	Navigating  State = "navigating"
	Interacting State = "interacting"
	Verifying   State = "verifying"
	Recovering  State = "recovering"
	Done        State = "done"
	Failed      State = "failed" // dead state
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
