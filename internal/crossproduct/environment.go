package crossproduct

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smilemakc/crm/internal/automaton"
	"github.com/smilemakc/crm/internal/domain"
	"github.com/smilemakc/crm/internal/label"
)

// Step is one recorded transition of an episode, kept by a Trace when
// one is attached (spec §4.4 augmented with an optional in-memory
// execution record, mirroring how the ambient stack logs executions
// elsewhere in this codebase).
type Step struct {
	Index      int
	State      int
	Counters   []int
	Event      []string
	Reward     float64
	Terminated bool
	Truncated  bool
}

// Trace accumulates, at most, the last Capacity Steps of the current
// episode for inspection or debugging: a bounded ring rather than an
// unbounded log, so a long-running episode cannot grow it without
// limit. Not part of the core contract; entirely optional.
type Trace struct {
	EpisodeID uuid.UUID
	Capacity  int
	Steps     []Step
}

func (t *Trace) record(s Step) {
	t.Steps = append(t.Steps, s)
	if over := len(t.Steps) - t.Capacity; over > 0 {
		t.Steps = t.Steps[over:]
	}
}

// Option configures an Environment at construction.
type Option func(*Environment)

// WithLogger attaches a logger. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(e *Environment) { e.log = l }
}

// WithTrace enables per-episode step recording, keeping only the last
// capacity Steps of the running episode.
func WithTrace(capacity int) Option {
	return func(e *Environment) {
		e.tracing = true
		e.traceCapacity = capacity
	}
}

// Environment is the cross-product environment (spec §4.4). It owns a
// ground environment, a labelling function, a CRM and per-episode
// mutable state. Not safe for concurrent use or sharing across
// goroutines (spec §5: "a cross-product instance is not shareable").
type Environment struct {
	ground        GroundEnv
	lf            *label.Function
	crm           *automaton.CRM
	encoder       Encoder
	maxSteps      int
	log           zerolog.Logger
	tracing       bool
	traceCapacity int

	started       bool
	done          bool
	stepCount     int
	state         int
	counters      []int
	lastGroundObs any
	episodeID     uuid.UUID
	trace         *Trace
}

// New builds a cross-product environment over a ground environment, a
// labelling function, a CRM and an observation encoder.
func New(ground GroundEnv, lf *label.Function, crm *automaton.CRM, encoder Encoder, maxSteps int, opts ...Option) *Environment {
	e := &Environment{
		ground: ground, lf: lf, crm: crm, encoder: encoder, maxSteps: maxSteps,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset restarts the episode (spec §4.4): resets the ground environment,
// resets (u,c) to (u0,c0), zeroes the step counter, and returns the
// augmented observation.
func (e *Environment) Reset(ctx context.Context, seed *int64) (any, map[string]any, error) {
	obs, info, err := e.ground.Reset(ctx, seed)
	if err != nil {
		return nil, nil, err
	}

	u0, c0 := e.crm.Initial()
	e.state = u0
	e.counters = c0
	e.stepCount = 0
	e.lastGroundObs = obs
	e.started = true
	e.done = false
	e.episodeID = uuid.New()
	if e.tracing {
		e.trace = &Trace{EpisodeID: e.episodeID, Capacity: e.traceCapacity}
	}

	augmented, err := e.encoder.Encode(obs, e.state, e.counters)
	if err != nil {
		return nil, nil, domain.NewEncoderError(fmt.Sprintf("encode failed on reset: %v", err))
	}
	e.log.Debug().Str("episode", e.episodeID.String()).Int("state", e.state).Msg("crossproduct: episode reset")
	return augmented, info, nil
}

// Step advances the episode by one action (spec §4.4).
func (e *Environment) Step(ctx context.Context, action any) (augmented any, reward float64, terminated, truncated bool, info map[string]any, err error) {
	if !e.started {
		return nil, 0, false, false, nil, domain.NewStateError("step called before reset")
	}
	if e.done {
		return nil, 0, false, false, nil, domain.NewStateError("step called after a terminated or truncated episode without an intervening reset")
	}

	e.stepCount++
	nextObs, _, _, _, groundInfo, err := e.ground.Step(ctx, action)
	if err != nil {
		return nil, 0, false, false, nil, err
	}

	fired := e.lf.Label(label.Transition{Obs: e.lastGroundObs, Action: action, NextObs: nextObs})
	nextState, nextCounters, rewardEmitter, err := e.crm.Step(e.state, e.counters, fired)
	if err != nil {
		return nil, 0, false, false, nil, err
	}
	r, err := rewardEmitter.Emit(e.lastGroundObs, action, nextObs)
	if err != nil {
		return nil, 0, false, false, nil, err
	}

	terminated = e.crm.IsTerminal(nextState)
	truncated = e.stepCount >= e.maxSteps

	e.lastGroundObs = nextObs
	e.state = nextState
	e.counters = nextCounters
	e.done = terminated || truncated

	augmented, err = e.encoder.Encode(nextObs, nextState, nextCounters)
	if err != nil {
		return nil, 0, false, false, nil, domain.NewEncoderError(fmt.Sprintf("encode failed on step: %v", err))
	}

	if e.trace != nil {
		events := make([]string, 0, len(fired))
		for _, ev := range fired.Slice() {
			events = append(events, string(ev))
		}
		e.trace.record(Step{
			Index: e.stepCount, State: nextState, Counters: append([]int(nil), nextCounters...),
			Event: events, Reward: r, Terminated: terminated, Truncated: truncated,
		})
	}
	e.log.Debug().
		Str("episode", e.episodeID.String()).
		Int("state", nextState).
		Float64("reward", r).
		Bool("terminated", terminated).
		Bool("truncated", truncated).
		Msg("crossproduct: step")

	return augmented, r, terminated, truncated, groundInfo, nil
}

// ToGroundObs recovers the ground observation from an augmented one.
func (e *Environment) ToGroundObs(augmented any) (any, error) {
	return e.encoder.DecodeGround(augmented)
}

// Trace returns the current episode's recorded steps, or nil if
// tracing was not enabled via WithTrace.
func (e *Environment) Trace() *Trace { return e.trace }

// CRM exposes the underlying automaton, used by the counterfactual
// generator which replays the same labelling function and CRM.
func (e *Environment) CRM() *automaton.CRM { return e.crm }

// LabellingFunction exposes the underlying labelling function.
func (e *Environment) LabellingFunction() *label.Function { return e.lf }

// Encoder exposes the underlying observation encoder.
func (e *Environment) Encoder() Encoder { return e.encoder }
