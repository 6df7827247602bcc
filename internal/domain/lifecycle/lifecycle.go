// Package lifecycle defines the shared entity state machine.
//
// Every administrable entity carries one State instead of ad-hoc boolean
// flags: active rows are live, disabled rows are hidden from the storefront
// but editable in the back office, deleted rows are tombstones kept for
// referential history. Deleted is terminal.
package lifecycle

import "fmt"

// State is an entity lifecycle state.
type State string

const (
	Active   State = "active"
	Disabled State = "disabled"
	Deleted  State = "deleted"
)

// transitions lists the allowed moves. Active and Disabled flip freely; both
// can be tombstoned; Deleted goes nowhere.
var transitions = map[State][]State{
	Active:   {Disabled, Deleted},
	Disabled: {Active, Deleted},
	Deleted:  {},
}

// TransitionError indicates a lifecycle move the state machine does not allow.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lifecycle transition %s -> %s not allowed", e.From, e.To)
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Visible reports whether an entity in this state appears on the storefront.
func (s State) Visible() bool {
	return s == Active
}

// Transition returns the target state if the move is allowed, or a
// TransitionError. Moving to the current state is a no-op.
func (s State) Transition(to State) (State, error) {
	if s == to {
		return s, nil
	}
	for _, allowed := range transitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, &TransitionError{From: s, To: to}
}
