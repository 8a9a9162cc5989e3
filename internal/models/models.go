// Package models defines the core data structures for GiftRoulette.
//
// It includes types for participants, pairings and run state, which are shared across modules.
package models

import (
	"errors"
	"fmt"
)

// Validation constants for input validation
const (
	// MaxNoteLength defines the maximum allowed length for a participant note
	MaxNoteLength = 1000
	// MinParticipants defines the minimum pool size for a meaningful rotation
	MinParticipants = 2
)

// Error variables for better error handling and testability
var (
	ErrNoParticipants     = errors.New("no participants")
	ErrTooFewParticipants = errors.New("at least two participants required")
	ErrEmptyName          = errors.New("participant name cannot be empty")
	ErrDuplicateName      = errors.New("duplicate participant name")
	ErrNoteTooLong        = errors.New("participant note exceeds maximum length")
	ErrNotShuffled        = errors.New("participants not shuffled")
	ErrRecipientNotFound  = errors.New("recipient not found in registry")
	ErrBadStorePath       = errors.New("store path must end in .json")
	ErrInvalidTransition  = errors.New("invalid run state transition")
)

// Participant represents one member of the gift exchange pool.
// Name is the unique key within a run; Email and Phone are delivery
// addresses for the available notification channels.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Note  string `json:"note"`
}

// Validate checks a single participant record.
func (p Participant) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if len(p.Note) > MaxNoteLength {
		return fmt.Errorf("%w: %d > %d", ErrNoteTooLong, len(p.Note), MaxNoteLength)
	}
	return nil
}

// Registry is an immutable-per-run participant list with name lookup.
type Registry struct {
	participants []Participant
	byName       map[string]Participant
}

// NewRegistry validates the participant list and builds the name index.
// Names must be non-empty and unique; the registry is read-only afterwards.
func NewRegistry(participants []Participant) (*Registry, error) {
	byName := make(map[string]Participant, len(participants))
	for _, p := range participants {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byName[p.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		byName[p.Name] = p
	}
	list := make([]Participant, len(participants))
	copy(list, participants)
	return &Registry{participants: list, byName: byName}, nil
}

// Participants returns a copy of the registered participant list.
func (r *Registry) Participants() []Participant {
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	return len(r.participants)
}

// Lookup resolves a participant by name.
func (r *Registry) Lookup(name string) (Participant, error) {
	p, ok := r.byName[name]
	if !ok {
		return Participant{}, fmt.Errorf("%w: %s", ErrRecipientNotFound, name)
	}
	return p, nil
}

// Pairing is an ordered giver/recipient pair. Recipient holds the plain
// name in the internal form and a bcrypt hash in the concealed form.
type Pairing struct {
	Giver     string `json:"giver"`
	Recipient string `json:"recipient"`
}

// AssignmentSet is an ordered sequence of pairings covering every
// participant exactly once as giver and exactly once as recipient.
type AssignmentSet struct {
	Pairings []Pairing
}

// Len returns the number of pairings in the set.
func (a AssignmentSet) Len() int {
	return len(a.Pairings)
}

// Rows converts the set to the persisted two-column representation.
func (a AssignmentSet) Rows() [][]string {
	rows := make([][]string, 0, len(a.Pairings))
	for _, p := range a.Pairings {
		rows = append(rows, []string{p.Giver, p.Recipient})
	}
	return rows
}
