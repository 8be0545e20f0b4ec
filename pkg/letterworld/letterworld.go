// Package letterworld is a minimal ground environment and ready-made CRM
// used to demonstrate the core: three letter actions A, B, C drive an
// automaton that rewards -0.1 per step while it counts A's, hands off to
// a second state on the first B, then counts the tally back down with
// C's; the C that arrives once the counter is already zero emits +1 and
// terminates, so a tally of n takes n+1 C's to finish.
// This mirrors the Letter-World scenarios used to validate the core.
package letterworld

import (
	"context"

	"github.com/smilemakc/crm/internal/automaton"
	"github.com/smilemakc/crm/internal/crossproduct"
	"github.com/smilemakc/crm/internal/label"
)

// Action is the ground action space: one letter per step.
type Action string

const (
	ActionA     Action = "A"
	ActionB     Action = "B"
	ActionC     Action = "C"
	ActionOther Action = "X"
)

// GroundObs is the ground observation: a monotonically increasing step
// index. The ground environment has no dynamics of its own beyond that;
// all interesting behaviour lives in the CRM.
type GroundObs struct {
	Step int
}

// Env is the Letter-World ground environment (spec §6's "ground
// environment contract"). It ignores its own reward and termination,
// since the cross-product discards both.
type Env struct {
	step int
}

// NewEnv returns a fresh Letter-World ground environment.
func NewEnv() *Env { return &Env{} }

func (e *Env) Reset(ctx context.Context, seed *int64) (any, map[string]any, error) {
	e.step = 0
	return GroundObs{Step: e.step}, map[string]any{}, nil
}

func (e *Env) Step(ctx context.Context, action any) (any, float64, bool, bool, map[string]any, error) {
	e.step++
	return GroundObs{Step: e.step}, 0, false, false, map[string]any{"action": action}, nil
}

var _ crossproduct.GroundEnv = (*Env)(nil)

// BuildCRM assembles the A-B-C counting reward machine (spec §8's
// Letter-World scenarios): Σ={A,B,C}, arity 1, u0=0, c0=(0), F={-1}.
// State 0 tallies A's into the counter and waits for a B to hand off to
// state 1; state 1 counts C's back down at -0.1 each, and a C seen while
// the counter is already zero pays +1 and terminates the episode.
func BuildCRM() (*automaton.CRM, error) {
	return automaton.NewBuilder().
		Events("A", "B", "C").
		Arity(1).
		Initial(0, 0).
		AddTransition(0, "A", 0, []int{1}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddTransition(0, "B", 1, []int{0}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddTransition(0, "C", 0, []int{0}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddDefault(0, 0, []int{0}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddTransition(1, "A", 1, []int{0}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddTransition(1, "B", 1, []int{0}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddTransition(1, "C / (NZ)", 1, []int{-1}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		AddTransition(1, "C / (Z)", -1, []int{0}, automaton.RewardDef{Constant: constPtr(1.0)}).
		AddDefault(1, 1, []int{0}, automaton.RewardDef{Constant: constPtr(-0.1)}).
		Reachable(0, 0).
		Reachable(0, 1).
		Reachable(1, 0).
		Reachable(1, 2).
		Build()
}

func constPtr(f float64) *float64 { return &f }

// BuildLabel assembles the labelling function over crm's alphabet: each
// detector fires iff the action taken equals its letter.
func BuildLabel(crm *automaton.CRM) (*label.Function, error) {
	return label.New(crm.Alphabet(), []label.Detector{
		{Event: "A", Predicate: func(t label.Transition) (bool, error) { return t.Action == ActionA, nil }},
		{Event: "B", Predicate: func(t label.Transition) (bool, error) { return t.Action == ActionB, nil }},
		{Event: "C", Predicate: func(t label.Transition) (bool, error) { return t.Action == ActionC, nil }},
	})
}

// Encoder encodes the augmented observation as a plain struct, trivially
// bijective since it carries the ground observation verbatim.
type Encoder struct{}

// Augmented is the observation shape agents see: the ground step index
// augmented with CRM state and counters (spec §4.4's "(o', u', c')").
type Augmented struct {
	Ground   GroundObs
	State    int
	Counters []int
}

func (Encoder) Encode(obs any, state int, counters []int) (any, error) {
	c := make([]int, len(counters))
	copy(c, counters)
	return Augmented{Ground: obs.(GroundObs), State: state, Counters: c}, nil
}

func (Encoder) DecodeGround(augmented any) (any, error) {
	return augmented.(Augmented).Ground, nil
}

var _ crossproduct.Encoder = Encoder{}
