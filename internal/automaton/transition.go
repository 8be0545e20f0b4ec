package automaton

import "github.com/smilemakc/crm/internal/exprlang"

// edge is the normalised per-source-state transition record (spec §9:
// "represent each edge as a single record (parsed_expr, dst, δ,
// reward_emitter) in an ordered list per source state"). It is the
// construction-time result of compiling one TransitionDef.
type edge struct {
	source    string
	expr      *exprlang.Expr
	dst       int
	delta     []int
	reward    RewardEmitter
	isDefault bool
}

func addCounters(c []int, delta []int) []int {
	out := make([]int, len(c))
	for i := range c {
		d := 0
		if i < len(delta) {
			d = delta[i]
		}
		out[i] = c[i] + d
	}
	return out
}
