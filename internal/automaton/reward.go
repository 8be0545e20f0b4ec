package automaton

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RewardKind distinguishes the three forms a reward emitter can take
// (spec §9: "represent as a tagged variant").
type RewardKind int

const (
	// RewardConstant ignores its arguments and always yields the same value.
	RewardConstant RewardKind = iota
	// RewardFunctional invokes a Go closure over the ground transition.
	RewardFunctional
	// RewardScripted evaluates a compiled expr-lang program over the
	// ground transition, for rewards supplied as data rather than code.
	RewardScripted
)

// RewardFunc is a pure function of a ground transition to a scalar
// reward (spec §3: "a pure function (o, a, o') → ℝ").
type RewardFunc func(obs, action, nextObs any) float64

// rewardScriptEnv is the variable environment exposed to a scripted
// reward's expr-lang program: o, a, o2 mirroring spec §3's "(o, a, o')".
type rewardScriptEnv struct {
	O  any `expr:"o"`
	A  any `expr:"a"`
	O2 any `expr:"o2"`
}

// RewardEmitter is the reward a CRM transition produces (spec §3, §9).
type RewardEmitter struct {
	kind     RewardKind
	constant float64
	fn       RewardFunc
	program  *vm.Program
	source   string
}

// ConstantReward builds a reward emitter that always yields r.
func ConstantReward(r float64) RewardEmitter {
	return RewardEmitter{kind: RewardConstant, constant: r}
}

// FunctionalReward builds a reward emitter backed by a Go closure.
func FunctionalReward(fn RewardFunc) RewardEmitter {
	return RewardEmitter{kind: RewardFunctional, fn: fn}
}

// ScriptedReward compiles an expr-lang expression against the variables
// o, a and o2 (obs, action, next obs) and builds a reward emitter that
// runs it on every emission.
// Scripting lets a CRM Definition loaded from YAML carry reward logic
// as data instead of requiring a Go closure at construction time.
func ScriptedReward(source string) (RewardEmitter, error) {
	program, err := expr.Compile(source, expr.Env(rewardScriptEnv{}))
	if err != nil {
		return RewardEmitter{}, fmt.Errorf("automaton: invalid scripted reward %q: %w", source, err)
	}
	return RewardEmitter{kind: RewardScripted, program: program, source: source}, nil
}

// Emit computes the reward for the given ground transition.
func (r RewardEmitter) Emit(obs, action, nextObs any) (float64, error) {
	switch r.kind {
	case RewardConstant:
		return r.constant, nil
	case RewardFunctional:
		return r.fn(obs, action, nextObs), nil
	case RewardScripted:
		out, err := expr.Run(r.program, rewardScriptEnv{O: obs, A: action, O2: nextObs})
		if err != nil {
			return 0, fmt.Errorf("automaton: scripted reward %q failed: %w", r.source, err)
		}
		v, ok := toFloat64(out)
		if !ok {
			return 0, fmt.Errorf("automaton: scripted reward %q produced non-numeric result %v", r.source, out)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("automaton: reward emitter has no kind set")
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
