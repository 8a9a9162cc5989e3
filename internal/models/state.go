package models

import "fmt"

// RunState tracks how far a single exchange run has progressed.
// Transitions only move forward: Created -> Shuffled -> Persisted.
type RunState string

const (
	// RunStateCreated is the initial state before any randomization.
	RunStateCreated RunState = "created"
	// RunStateShuffled means the permutation has been applied.
	RunStateShuffled RunState = "shuffled"
	// RunStatePersisted means the concealed assignment has been written.
	RunStatePersisted RunState = "persisted"
)

var runStateOrder = map[RunState]int{
	RunStateCreated:   0,
	RunStateShuffled:  1,
	RunStatePersisted: 2,
}

// IsValidRunState checks if the given run state is supported.
func IsValidRunState(s RunState) bool {
	_, ok := runStateOrder[s]
	return ok
}

// AtLeast reports whether the state has reached the given stage.
func (s RunState) AtLeast(other RunState) bool {
	return runStateOrder[s] >= runStateOrder[other]
}

// Transition advances the state to next. Moving backwards or skipping a
// stage is rejected; transitioning to the current state is a no-op.
func (s RunState) Transition(next RunState) (RunState, error) {
	if !IsValidRunState(next) {
		return s, fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, next)
	}
	cur, nxt := runStateOrder[s], runStateOrder[next]
	if nxt == cur {
		return s, nil
	}
	if nxt != cur+1 {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}
