// Package label implements the labelling function (spec §4.1): a bank of
// pure event detectors run over a ground transition, whose union of
// firings becomes the event set handed to the CRM automaton.
package label

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smilemakc/crm/internal/alphabet"
)

// Transition is the ground transition a detector inspects: observation
// before the action, the action taken, and the observation after.
type Transition struct {
	Obs     any
	Action  any
	NextObs any
}

// Predicate decides whether its detector's event fired on a transition.
// A predicate that cannot decide returns (false, nil), spec §4.1: "a
// detector that cannot decide returns nothing". It must not block.
type Predicate func(Transition) (bool, error)

// Detector is one named event predicate, registered once at construction
// (spec §9: "a list of (name, predicate) pairs").
type Detector struct {
	Event     alphabet.Event
	Predicate Predicate
}

// Function is a bank of registered detectors, normally all supplied to
// New. Register is exported as well and appends to the bank at any time,
// so the bank stays fixed after construction only if callers do not call
// it. Safe for concurrent use: a Function, like the CRM it labels for, is
// meant to be shared across cross-product instances (spec §5).
type Function struct {
	mu        sync.RWMutex
	alphabet  alphabet.Alphabet
	detectors []Detector
	log       zerolog.Logger
}

// Option configures a Function at construction.
type Option func(*Function)

// WithLogger attaches a logger used to report recovered detector panics
// and non-nil predicate errors. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(f *Function) { f.log = l }
}

// New builds a labelling function over the given alphabet. Registering a
// detector for an event absent from alphabet is a construction-time
// error (spec §4.1: "a detector that returns an event outside the
// declared alphabet [must be] rejected [at] registration").
func New(a alphabet.Alphabet, detectors []Detector, opts ...Option) (*Function, error) {
	f := &Function{alphabet: a, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	for _, d := range detectors {
		if err := f.Register(d); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Register adds a detector to the bank. Order of registration does not
// affect Label's result (a set), only tie-break order in diagnostics.
func (f *Function) Register(d Detector) error {
	if !f.alphabet.Contains(d.Event) {
		return fmt.Errorf("label: detector for undeclared event %q", d.Event)
	}
	if d.Predicate == nil {
		return fmt.Errorf("label: detector for event %q has a nil predicate", d.Event)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detectors = append(f.detectors, d)
	return nil
}

// Label runs every registered detector over the transition and returns
// the union of events that fired (spec §4.1). A detector whose predicate
// returns an error, or that panics, contributes no event; both are
// logged and never propagated, matching "no detector may raise".
func (f *Function) Label(t Transition) alphabet.EventSet {
	f.mu.RLock()
	detectors := make([]Detector, len(f.detectors))
	copy(detectors, f.detectors)
	f.mu.RUnlock()

	fired := make(alphabet.EventSet, len(detectors))
	for _, d := range detectors {
		if f.runDetector(d, t) {
			fired[d.Event] = struct{}{}
		}
	}
	return fired
}

func (f *Function) runDetector(d Detector, t Transition) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn().
				Str("event", string(d.Event)).
				Interface("panic", r).
				Msg("label: detector panicked, treating as no detection")
			ok = false
		}
	}()

	fired, err := d.Predicate(t)
	if err != nil {
		f.log.Warn().
			Str("event", string(d.Event)).
			Err(err).
			Msg("label: detector returned an error, treating as no detection")
		return false
	}
	return fired
}
