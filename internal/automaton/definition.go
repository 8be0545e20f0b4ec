package automaton

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/smilemakc/crm/internal/alphabet"
	"github.com/smilemakc/crm/internal/domain"
	"github.com/smilemakc/crm/internal/exprlang"
)

// RewardDef is the YAML/JSON-loadable surface form of a reward emitter
// (spec §9: scalars become Constant, callables become Functional). A
// document loaded from YAML has no Go closures available, so it only
// ever sets Constant or Script; FunctionalRewardDef wraps a Go closure
// for callers building a Definition programmatically through Builder.
type RewardDef struct {
	Constant *float64 `json:"constant,omitempty" yaml:"constant,omitempty"`
	Script   string   `json:"script,omitempty" yaml:"script,omitempty"`
	emitter  *RewardEmitter
}

// FunctionalRewardDef wraps a Go closure as a RewardDef, for use with
// Builder.AddTransition. Not representable in YAML/JSON; unmarshalling
// a document never populates this field.
func FunctionalRewardDef(fn RewardFunc) RewardDef {
	e := FunctionalReward(fn)
	return RewardDef{emitter: &e}
}

func (r RewardDef) build() (RewardEmitter, error) {
	switch {
	case r.emitter != nil:
		return *r.emitter, nil
	case r.Constant != nil:
		return ConstantReward(*r.Constant), nil
	case r.Script != "":
		return ScriptedReward(r.Script)
	default:
		return RewardEmitter{}, fmt.Errorf("automaton: reward must set either constant or script")
	}
}

// TransitionDef is the YAML/JSON-loadable surface form of one edge.
type TransitionDef struct {
	Expr   string    `json:"expr" yaml:"expr"`
	Dst    int       `json:"dst" yaml:"dst"`
	Delta  []int     `json:"delta" yaml:"delta"`
	Reward RewardDef `json:"reward" yaml:"reward"`
}

// StateDef declares every outgoing edge of one source state, in the
// order they are tried (spec §4.3's tie-break order).
type StateDef struct {
	State       int             `json:"state" yaml:"state"`
	Transitions []TransitionDef `json:"transitions" yaml:"transitions"`
}

// ConfigurationDef is the YAML/JSON-loadable surface form of one
// user-declared reachable (state, counters) pair.
type ConfigurationDef struct {
	State    int   `json:"state" yaml:"state"`
	Counters []int `json:"counters" yaml:"counters"`
}

// Definition is the declarative, loadable form of a CRM (spec §9: "the
// parallel-maps form is only the surface syntax of user-supplied CRMs;
// internally the CRM normalises to the record form at construction
// time"). It unmarshals directly from YAML or JSON and is normalised
// into a CRM by Build.
type Definition struct {
	Events          []string           `json:"events" yaml:"events"`
	Arity           int                `json:"arity" yaml:"arity"`
	Initial         int                `json:"initial" yaml:"initial"`
	InitialCounters []int              `json:"initial_counters" yaml:"initial_counters"`
	Terminal        []int              `json:"terminal" yaml:"terminal"`
	States          []StateDef         `json:"states" yaml:"states"`
	Reachable       []ConfigurationDef `json:"reachable" yaml:"reachable"`
}

// LoadDefinition parses a YAML (or JSON, a YAML subset) document into a
// Definition and builds it into a CRM in one step, the data-driven
// counterpart to assembling one programmatically via Builder.
func LoadDefinition(data []byte) (*CRM, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, domain.NewConstructionError(domain.ErrCodeParseError,
			fmt.Sprintf("invalid CRM definition document: %v", err), "", "", err)
	}
	return def.Build()
}

// Build validates and normalises the definition into an immutable CRM,
// parsing and caching every transition expression exactly once (spec
// §4.2: "parsing happens once at CRM construction").
func (d Definition) Build() (*CRM, error) {
	if d.Arity < 1 {
		return nil, domain.NewConstructionError(domain.ErrCodeArityMismatch,
			fmt.Sprintf("counter arity must be at least 1, got %d", d.Arity), "", "", nil)
	}
	if len(d.InitialCounters) != d.Arity {
		return nil, domain.NewConstructionError(domain.ErrCodeArityMismatch,
			fmt.Sprintf("initial counters has %d positions, arity is %d", len(d.InitialCounters), d.Arity), "", "", nil)
	}

	alpha := alphabet.New(toEvents(d.Events)...)

	terminal := map[int]bool{-1: true}
	for _, t := range d.Terminal {
		terminal[t] = true
	}

	declared := map[int]bool{}
	for _, s := range d.States {
		declared[s.State] = true
	}
	knownState := func(u int) bool { return u == -1 || declared[u] || terminal[u] }

	if !knownState(d.Initial) {
		return nil, domain.NewConstructionError(domain.ErrCodeUnknownState,
			fmt.Sprintf("initial state %d is not declared", d.Initial), "", "", nil)
	}

	cache := exprlang.NewCache()
	edges := make(map[int][]edge, len(d.States))
	for _, s := range d.States {
		if terminal[s.State] {
			return nil, domain.NewConstructionError(domain.ErrCodeUnknownState,
				fmt.Sprintf("state %d is declared terminal and cannot also carry transitions", s.State), "", "", nil)
		}

		list := make([]edge, 0, len(s.Transitions))
		defaults := 0
		for _, t := range s.Transitions {
			parsed, err := cache.Get(s.State, t.Expr, alpha, d.Arity)
			if err != nil {
				if ce, ok := err.(*domain.ConstructionError); ok && ce.State == "" {
					ce.State = fmt.Sprintf("%d", s.State)
				}
				return nil, err
			}
			if len(t.Delta) != d.Arity {
				return nil, domain.NewConstructionError(domain.ErrCodeArityMismatch,
					fmt.Sprintf("transition %q has a %d-position counter update, arity is %d", t.Expr, len(t.Delta), d.Arity),
					fmt.Sprintf("%d", s.State), t.Expr, nil)
			}
			if !knownState(t.Dst) {
				return nil, domain.NewConstructionError(domain.ErrCodeUnknownState,
					fmt.Sprintf("transition %q targets undeclared state %d", t.Expr, t.Dst),
					fmt.Sprintf("%d", s.State), t.Expr, nil)
			}
			reward, err := t.Reward.build()
			if err != nil {
				return nil, domain.NewConstructionError(domain.ErrCodeInvalidExpression, err.Error(),
					fmt.Sprintf("%d", s.State), t.Expr, err)
			}

			isDefault := parsed.IsDefault()
			if isDefault {
				defaults++
			}
			list = append(list, edge{
				source: t.Expr, expr: parsed, dst: t.Dst, delta: t.Delta, reward: reward, isDefault: isDefault,
			})
		}
		switch defaults {
		case 0:
			return nil, domain.NewConstructionError(domain.ErrCodeMissingDefault,
				fmt.Sprintf("state %d has no default edge (empty formula, all-wildcard pattern)", s.State),
				fmt.Sprintf("%d", s.State), "", nil)
		case 1:
			// exactly one, good.
		default:
			return nil, domain.NewConstructionError(domain.ErrCodeMissingDefault,
				fmt.Sprintf("state %d declares %d default edges, expected exactly one", s.State, defaults),
				fmt.Sprintf("%d", s.State), "", nil)
		}

		edges[s.State] = reorderDefaultLast(list)
	}

	if len(d.Reachable) == 0 {
		return nil, domain.NewConstructionError(domain.ErrCodeEmptyReachableSet,
			"the reachable-configuration set must not be empty", "", "", nil)
	}
	reachable := make([]Configuration, 0, len(d.Reachable))
	for _, r := range d.Reachable {
		if !knownState(r.State) {
			return nil, domain.NewConstructionError(domain.ErrCodeUnknownState,
				fmt.Sprintf("reachable configuration names undeclared state %d", r.State), "", "", nil)
		}
		if len(r.Counters) != d.Arity {
			return nil, domain.NewConstructionError(domain.ErrCodeArityMismatch,
				fmt.Sprintf("reachable configuration for state %d has %d counters, arity is %d", r.State, len(r.Counters), d.Arity),
				"", "", nil)
		}
		counters := make([]int, len(r.Counters))
		copy(counters, r.Counters)
		reachable = append(reachable, Configuration{State: r.State, Counters: counters})
	}

	counters := make([]int, len(d.InitialCounters))
	copy(counters, d.InitialCounters)

	return &CRM{
		alphabet:  alpha,
		arity:     d.Arity,
		u0:        d.Initial,
		c0:        counters,
		terminal:  terminal,
		edges:     edges,
		reachable: reachable,
	}, nil
}

// reorderDefaultLast moves the (unique, already-validated) default edge
// to the end of list, preserving the relative order of the rest (spec
// §9: "the default edge must be tried last even if the user declared
// it first... a normalisation step at construction").
func reorderDefaultLast(list []edge) []edge {
	out := make([]edge, 0, len(list))
	var def edge
	for _, e := range list {
		if e.isDefault {
			def = e
			continue
		}
		out = append(out, e)
	}
	return append(out, def)
}

func toEvents(names []string) []alphabet.Event {
	events := make([]alphabet.Event, len(names))
	for i, n := range names {
		events[i] = alphabet.Event(n)
	}
	return events
}
