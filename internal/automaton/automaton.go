// Package automaton implements the CRM automaton (spec §4.3): the
// counter-automaton core that, given a current state, counter tuple and
// fired event set, selects a transition and produces a next state, next
// counters and a reward emitter.
package automaton

import (
	"fmt"

	"github.com/smilemakc/crm/internal/alphabet"
	"github.com/smilemakc/crm/internal/domain"
	"github.com/smilemakc/crm/internal/exprlang"
)

// Configuration is one (state, counters) pair the counterfactual
// generator is permitted to replay against (spec §4.3, §4.5).
type Configuration struct {
	State    int
	Counters []int
}

// CRM is an immutable counter automaton. Once built it is safe for
// concurrent use by any number of cross-product instances (spec §5:
// "A CRM is immutable and freely shareable... across threads").
type CRM struct {
	alphabet   alphabet.Alphabet
	arity      int
	u0         int
	c0         []int
	terminal   map[int]bool
	edges      map[int][]edge
	reachable  []Configuration
}

// Alphabet returns the CRM's declared event alphabet.
func (c *CRM) Alphabet() alphabet.Alphabet { return c.alphabet }

// Arity returns the fixed counter arity k.
func (c *CRM) Arity() int { return c.arity }

// Initial returns u0, c0. The returned slice is a fresh copy; callers
// may mutate it freely.
func (c *CRM) Initial() (int, []int) {
	counters := make([]int, len(c.c0))
	copy(counters, c.c0)
	return c.u0, counters
}

// IsTerminal reports whether u is a terminal state (u ∈ F).
func (c *CRM) IsTerminal(u int) bool { return c.terminal[u] }

// ReachableConfigurations returns the user-declared finite set of
// (u, c) pairs the counterfactual generator may replay against (spec
// §4.3). The returned slice is a fresh copy.
func (c *CRM) ReachableConfigurations() []Configuration {
	out := make([]Configuration, len(c.reachable))
	copy(out, c.reachable)
	return out
}

// Step executes one CRM transition (spec §4.3): u must not be terminal;
// the edges declared for u are tried in order, with the default edge
// evaluated last regardless of declaration order; the first match wins.
func (c *CRM) Step(u int, counters []int, fired alphabet.EventSet) (int, []int, RewardEmitter, error) {
	if c.IsTerminal(u) {
		return 0, nil, RewardEmitter{}, domain.NewTerminalStepError(u)
	}
	for _, e := range c.edges[u] {
		if e.expr.Match(fired, counters) {
			return e.dst, addCounters(counters, e.delta), e.reward, nil
		}
	}
	// The default edge matches only an empty event set, so a non-empty
	// set that no other edge of u matches ends up here; covering every
	// non-empty event set is left to the CRM author.
	return 0, nil, RewardEmitter{}, domain.NewStateError(
		fmt.Sprintf("no transition matched for state %d and the fired event set", u))
}

// expressionOf returns the parsed expression for the nth edge of u, used
// only by tests to introspect default-edge reordering.
func (c *CRM) expressionOf(u, n int) *exprlang.Expr {
	return c.edges[u][n].expr
}
