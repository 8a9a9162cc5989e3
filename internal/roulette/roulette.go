// Package roulette implements the gift exchange rotation engine.
//
// It shuffles the participant pool, derives a circular giver/recipient
// mapping from the permuted order, and drives persistence of the concealed
// assignment through a store backend.
package roulette

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mroldan/giftroulette/internal/models"
	"github.com/mroldan/giftroulette/internal/store"
)

// ShuffleFunc applies a random permutation via the swap callback.
// It matches the signature of rand.Shuffle so a deterministic source can
// be injected for tests.
type ShuffleFunc func(n int, swap func(i, j int))

// Opts holds configuration options for the rotation engine.
type Opts struct {
	Shuffle ShuffleFunc
}

// Option defines a configuration option for the rotation engine.
type Option func(*Opts)

// WithShuffleFunc overrides the random source used for permutations.
func WithShuffleFunc(fn ShuffleFunc) Option {
	return func(o *Opts) { o.Shuffle = fn }
}

// Roulette sequences one exchange run: shuffle, derive pairs, conceal,
// persist. Not safe for concurrent use; a run is a one-shot batch job.
type Roulette struct {
	registry *models.Registry
	store    store.AssignmentStore
	shuffle  ShuffleFunc
	state    models.RunState
	order    []models.Participant
	pairs    models.AssignmentSet
}

// New creates a rotation engine over the given registry and store.
// Pools smaller than two participants are rejected up front: a single
// participant would degenerately self-pair.
func New(registry *models.Registry, st store.AssignmentStore, opts ...Option) (*Roulette, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Shuffle == nil {
		cfg.Shuffle = rand.Shuffle
	}

	switch n := registry.Len(); {
	case n == 0:
		return nil, models.ErrNoParticipants
	case n < models.MinParticipants:
		return nil, fmt.Errorf("%w: got %d", models.ErrTooFewParticipants, n)
	}

	return &Roulette{
		registry: registry,
		store:    st,
		shuffle:  cfg.Shuffle,
		state:    models.RunStateCreated,
		order:    registry.Participants(),
	}, nil
}

// State returns the current run state.
func (r *Roulette) State() models.RunState {
	return r.state
}

// Shuffle applies a uniformly random permutation to the participant order.
// Once the run has been shuffled this is a no-op, so pairs derived from
// the first permutation cannot be invalidated by a second call.
func (r *Roulette) Shuffle() error {
	if r.state.AtLeast(models.RunStateShuffled) {
		slog.Debug("Roulette.Shuffle: already shuffled, skipping")
		return nil
	}

	r.shuffle(len(r.order), func(i, j int) {
		r.order[i], r.order[j] = r.order[j], r.order[i]
	})

	next, err := r.state.Transition(models.RunStateShuffled)
	if err != nil {
		return fmt.Errorf("shuffle state transition failed: %w", err)
	}
	r.state = next
	slog.Debug("Roulette.Shuffle: participants permuted", "count", len(r.order))
	return nil
}

// DerivePairs builds the circular successor mapping from the shuffled
// order: each participant gives to the next one, and the last wraps back
// to the first, forming a single cycle of length n. The row order of the
// resulting set is then shuffled again independently so the persisted
// file order carries no trace of the permutation.
func (r *Roulette) DerivePairs() error {
	if !r.state.AtLeast(models.RunStateShuffled) {
		return fmt.Errorf("derive pairs: %w", models.ErrNotShuffled)
	}
	if len(r.pairs.Pairings) > 0 {
		slog.Debug("Roulette.DerivePairs: pairs already derived, skipping")
		return nil
	}
	if len(r.order) == 0 {
		return fmt.Errorf("derive pairs: %w", models.ErrNoParticipants)
	}

	pairings := make([]models.Pairing, 0, len(r.order))
	for i := 0; i < len(r.order)-1; i++ {
		pairings = append(pairings, models.Pairing{
			Giver:     r.order[i].Name,
			Recipient: r.order[i+1].Name,
		})
	}
	last := r.order[len(r.order)-1]
	pairings = append(pairings, models.Pairing{
		Giver:     last.Name,
		Recipient: r.order[0].Name,
	})

	// Decorrelate row order from the permutation before anything is written.
	r.shuffle(len(pairings), func(i, j int) {
		pairings[i], pairings[j] = pairings[j], pairings[i]
	})

	r.pairs = models.AssignmentSet{Pairings: pairings}
	slog.Debug("Roulette.DerivePairs: cycle derived", "pairs", len(pairings))
	return nil
}

// Pairs returns the unconcealed assignment set for notification.
// Empty until DerivePairs has run.
func (r *Roulette) Pairs() models.AssignmentSet {
	out := make([]models.Pairing, len(r.pairs.Pairings))
	copy(out, r.pairs.Pairings)
	return models.AssignmentSet{Pairings: out}
}

// Conceal returns a copy of the assignment set with every recipient name
// replaced by its one-way hash. The internal unconcealed set is left
// untouched; the notifier still needs it.
func (r *Roulette) Conceal() (models.AssignmentSet, error) {
	concealed, err := Conceal(r.pairs)
	if err != nil {
		return models.AssignmentSet{}, fmt.Errorf("conceal assignment set: %w", err)
	}
	return concealed, nil
}

// Save derives pairs if needed, conceals the recipients and writes the
// set through the assignment store. Once the run is persisted further
// calls are no-ops.
func (r *Roulette) Save() error {
	if r.state.AtLeast(models.RunStatePersisted) {
		slog.Debug("Roulette.Save: already persisted, skipping")
		return nil
	}

	if err := r.DerivePairs(); err != nil {
		return err
	}
	concealed, err := r.Conceal()
	if err != nil {
		return err
	}
	if err := r.store.Save(concealed); err != nil {
		slog.Error("Roulette.Save: store write failed", "error", err)
		return fmt.Errorf("save assignment set: %w", err)
	}

	next, err := r.state.Transition(models.RunStatePersisted)
	if err != nil {
		return fmt.Errorf("save state transition failed: %w", err)
	}
	r.state = next
	slog.Info("Roulette.Save: assignment persisted", "pairs", r.pairs.Len())
	return nil
}

// Run executes the full assignment phase: shuffle then persist.
func (r *Roulette) Run() error {
	if err := r.Shuffle(); err != nil {
		return fmt.Errorf("run shuffle failed: %w", err)
	}
	if err := r.Save(); err != nil {
		return fmt.Errorf("run save failed: %w", err)
	}
	return nil
}
