// Package counterfactual implements the counterfactual experience
// generator (spec §4.5): given one real ground transition, it replays
// the same fired event set against every user-declared reachable
// (state, counters) pair and produces the experience each would have
// recorded.
package counterfactual

import (
	"github.com/smilemakc/crm/internal/automaton"
	"github.com/smilemakc/crm/internal/crossproduct"
	"github.com/smilemakc/crm/internal/label"
)

// Experience is one synthetic transition tuple (spec §4.5 step 2).
type Experience struct {
	State       int
	Counters    []int
	Obs         any
	Action      any
	NextObs     any
	NextState   int
	NextCounters []int
	Reward      float64
	Done        bool
	Info        map[string]any
}

// Generate computes the counterfactual batch for one real ground
// transition (o, a, o'), replaying it against every configuration crm
// declares reachable (spec §4.5). The generator performs no
// environment stepping; it calls lf.Label once, then crm.Step, the
// reward emitter and enc.Encode for each configuration.
func Generate(lf *label.Function, crm *automaton.CRM, enc crossproduct.Encoder, obs, action, nextObs any) (*Batch, error) {
	fired := lf.Label(label.Transition{Obs: obs, Action: action, NextObs: nextObs})

	var experiences []Experience
	for _, cfg := range crm.ReachableConfigurations() {
		if crm.IsTerminal(cfg.State) {
			continue
		}
		nextState, nextCounters, rewardEmitter, err := crm.Step(cfg.State, cfg.Counters, fired)
		if err != nil {
			return nil, err
		}
		reward, err := rewardEmitter.Emit(obs, action, nextObs)
		if err != nil {
			return nil, err
		}

		augObs, err := enc.Encode(obs, cfg.State, cfg.Counters)
		if err != nil {
			return nil, err
		}
		augNextObs, err := enc.Encode(nextObs, nextState, nextCounters)
		if err != nil {
			return nil, err
		}

		experiences = append(experiences, Experience{
			State: cfg.State, Counters: cfg.Counters,
			Obs: augObs, Action: action, NextObs: augNextObs,
			NextState: nextState, NextCounters: nextCounters,
			Reward: reward, Done: crm.IsTerminal(nextState),
		})
	}
	return &Batch{Experiences: experiences}, nil
}
