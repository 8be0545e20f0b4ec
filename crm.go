// Package crm is the public facade over the core: construction types
// from internal/automaton, the cross-product environment, and the
// counterfactual generator, re-exported under one import path the way
// a root-level facade package aliases its internal packages.
package crm

import (
	"github.com/smilemakc/crm/internal/alphabet"
	"github.com/smilemakc/crm/internal/automaton"
	"github.com/smilemakc/crm/internal/counterfactual"
	"github.com/smilemakc/crm/internal/crossproduct"
	"github.com/smilemakc/crm/internal/label"
)

// Event is a symbolic event name (spec §3).
type Event = alphabet.Event

// Alphabet is a finite, user-declared set of events.
type Alphabet = alphabet.Alphabet

// NewAlphabet declares Σ.
func NewAlphabet(events ...Event) Alphabet { return alphabet.New(events...) }

// Detector is a named event predicate run by a LabellingFunction.
type Detector = label.Detector

// Transition is the ground transition a detector or reward emitter inspects.
type Transition = label.Transition

// LabellingFunction is a bank of registered detectors (spec §4.1).
type LabellingFunction = label.Function

// NewLabellingFunction builds a labelling function over alpha.
func NewLabellingFunction(alpha Alphabet, detectors []Detector, opts ...label.Option) (*LabellingFunction, error) {
	return label.New(alpha, detectors, opts...)
}

// Definition is the declarative, YAML/JSON-loadable form of a CRM.
type Definition = automaton.Definition

// StateDef, TransitionDef, RewardDef and ConfigurationDef are the
// Definition's sub-records.
type (
	StateDef         = automaton.StateDef
	TransitionDef    = automaton.TransitionDef
	RewardDef        = automaton.RewardDef
	ConfigurationDef = automaton.ConfigurationDef
)

// Builder assembles a Definition fluently.
type Builder = automaton.Builder

// NewBuilder starts a new CRM Builder.
func NewBuilder() *Builder { return automaton.NewBuilder() }

// CRM is the immutable, shareable counter automaton.
type CRM = automaton.CRM

// Configuration is a (state, counters) pair.
type Configuration = automaton.Configuration

// RewardEmitter is the tagged Constant/Functional/Scripted reward variant.
type RewardEmitter = automaton.RewardEmitter

// ConstantReward, FunctionalReward and ScriptedReward build the three
// RewardEmitter variants (spec §9).
var (
	ConstantReward   = automaton.ConstantReward
	FunctionalReward = automaton.FunctionalReward
	ScriptedReward   = automaton.ScriptedReward
)

// RewardFunc is a pure function (o, a, o') → reward.
type RewardFunc = automaton.RewardFunc

// FunctionalRewardDef wraps a Go closure as a RewardDef for Builder,
// the programmatic counterpart to a Constant or Script loaded from YAML.
var FunctionalRewardDef = automaton.FunctionalRewardDef

// GroundEnv is the ground-environment contract the cross-product consumes.
type GroundEnv = crossproduct.GroundEnv

// Encoder produces and reverses the augmented observation (spec §4.4).
type Encoder = crossproduct.Encoder

// VerifyRoundTrip checks an Encoder's encode/decode_ground round trip.
func VerifyRoundTrip(enc Encoder, obs any, state int, counters []int, equal func(a, b any) bool) error {
	return crossproduct.VerifyRoundTrip(enc, obs, state, counters, equal)
}

// Environment is the cross-product environment (spec §4.4).
type Environment = crossproduct.Environment

// NewEnvironment builds a cross-product environment.
func NewEnvironment(ground GroundEnv, lf *LabellingFunction, machine *CRM, enc Encoder, maxSteps int, opts ...crossproduct.Option) *Environment {
	return crossproduct.New(ground, lf, machine, enc, maxSteps, opts...)
}

// WithLogger and WithTrace configure an Environment at construction.
var (
	WithLogger = crossproduct.WithLogger
	WithTrace  = crossproduct.WithTrace
)

// Experience is one counterfactual experience tuple (spec §4.5).
type Experience = counterfactual.Experience

// Batch is a sequence of Experience records, marshalable for transport.
type Batch = counterfactual.Batch

// GenerateCounterfactualExperience replays one real ground transition
// against every configuration crm declares reachable (spec §4.5).
func GenerateCounterfactualExperience(lf *LabellingFunction, crm *CRM, enc Encoder, obs, action, nextObs any) (*Batch, error) {
	return counterfactual.Generate(lf, crm, enc, obs, action, nextObs)
}
