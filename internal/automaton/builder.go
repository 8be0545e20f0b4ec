package automaton

// Builder assembles a Definition through a fluent, programmatic API,
// as an alternative to loading one from YAML/JSON (grounded on the same
// append-and-return-receiver shape as a workflow definition builder).
type Builder struct {
	def Definition
}

// NewBuilder starts an empty Definition.
func NewBuilder() *Builder { return &Builder{} }

// Events declares the event alphabet Σ.
func (b *Builder) Events(events ...string) *Builder {
	b.def.Events = events
	return b
}

// Arity fixes the counter arity k.
func (b *Builder) Arity(k int) *Builder {
	b.def.Arity = k
	return b
}

// Initial sets u0 and c0.
func (b *Builder) Initial(state int, counters ...int) *Builder {
	b.def.Initial = state
	b.def.InitialCounters = counters
	return b
}

// Terminal adds states to F, in addition to the always-terminal -1.
func (b *Builder) Terminal(states ...int) *Builder {
	b.def.Terminal = append(b.def.Terminal, states...)
	return b
}

// AddTransition appends one outgoing edge to state. Edges for the same
// state accumulate in call order, which fixes the tie-break order
// (spec §4.3) except for the default edge, always tried last.
func (b *Builder) AddTransition(state int, expr string, dst int, delta []int, reward RewardDef) *Builder {
	s := b.stateDef(state)
	s.Transitions = append(s.Transitions, TransitionDef{
		Expr: expr, Dst: dst, Delta: delta, Reward: reward,
	})
	return b
}

// AddDefault appends state's default edge (empty formula, implicit
// all-wildcard pattern).
func (b *Builder) AddDefault(state int, dst int, delta []int, reward RewardDef) *Builder {
	return b.AddTransition(state, "", dst, delta, reward)
}

// Reachable declares one (state, counters) pair as part of the
// counterfactual-eligible reachable set (spec §4.3).
func (b *Builder) Reachable(state int, counters ...int) *Builder {
	b.def.Reachable = append(b.def.Reachable, ConfigurationDef{State: state, Counters: counters})
	return b
}

// Definition returns the accumulated declaration, unbuilt.
func (b *Builder) Definition() Definition { return b.def }

// Build normalises and validates the accumulated declaration into a CRM.
func (b *Builder) Build() (*CRM, error) { return b.def.Build() }

func (b *Builder) stateDef(state int) *StateDef {
	for i := range b.def.States {
		if b.def.States[i].State == state {
			return &b.def.States[i]
		}
	}
	b.def.States = append(b.def.States, StateDef{State: state})
	return &b.def.States[len(b.def.States)-1]
}
