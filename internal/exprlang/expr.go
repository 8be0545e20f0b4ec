package exprlang

import (
	"fmt"

	"github.com/smilemakc/crm/internal/alphabet"
	"github.com/smilemakc/crm/internal/domain"
)

// Expr is a fully parsed and validated transition expression: a
// propositional formula over the event alphabet paired with a
// fixed-length counter pattern (spec §4.2).
type Expr struct {
	source  string
	formula Formula
	pattern []PatternItem
}

// Match reports whether fired and counters satisfy the expression: the
// formula must hold over fired, and every counter position must satisfy
// its corresponding pattern item (spec §4.2).
func (e *Expr) Match(fired alphabet.EventSet, counters []int) bool {
	if !e.formula.Evaluate(fired) {
		return false
	}
	for i, item := range e.pattern {
		c := 0
		if i < len(counters) {
			c = counters[i]
		}
		if !item.Matches(c) {
			return false
		}
	}
	return true
}

// IsDefault reports whether this expression is the per-state default
// edge: empty formula, all-wildcard pattern (spec §3 invariants, §9
// "default-edge priority").
func (e *Expr) IsDefault() bool {
	if _, ok := e.formula.(emptyFormula); !ok {
		return false
	}
	for _, item := range e.pattern {
		if item != PatternWild {
			return false
		}
	}
	return true
}

// String renders the expression back to source form, "formula / pattern".
func (e *Expr) String() string {
	pattern := "("
	for i, item := range e.pattern {
		if i > 0 {
			pattern += ", "
		}
		pattern += item.String()
	}
	pattern += ")"
	return e.formula.String() + " / " + pattern
}

// Parse lexes, parses and validates a transition expression against a
// declared alphabet and counter arity. An identifier outside alphabet is
// an UnknownEvent construction error; a counter pattern whose length
// does not equal arity is an ArityMismatch construction error; anything
// the grammar itself rejects is a ParseError construction error (spec
// §4.2, §7).
func Parse(source string, alphabet alphabet.Alphabet, arity int) (*Expr, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, domain.NewConstructionError(domain.ErrCodeParseError, err.Error(), "", source, err)
	}

	p := &parser{src: source, tokens: tokens}
	formula, err := p.parseFormula()
	if err != nil {
		return nil, domain.NewConstructionError(domain.ErrCodeParseError, err.Error(), "", source, err)
	}

	pattern := make([]PatternItem, arity)
	if p.peek().kind == tokSlash {
		p.next()
		explicit, err := p.parseCounterPattern()
		if err != nil {
			return nil, domain.NewConstructionError(domain.ErrCodeParseError, err.Error(), "", source, err)
		}
		if len(explicit) != arity {
			return nil, domain.NewConstructionError(
				domain.ErrCodeArityMismatch,
				fmt.Sprintf("counter pattern has %d positions, counter arity is %d", len(explicit), arity),
				"", source, nil)
		}
		pattern = explicit
	}

	if _, err := p.expect(tokEOF); err != nil {
		return nil, domain.NewConstructionError(domain.ErrCodeParseError, err.Error(), "", source, err)
	}

	if err := validateEvents(formula, alphabet); err != nil {
		return nil, domain.NewConstructionError(domain.ErrCodeUnknownEvent, err.Error(), "", source, err)
	}

	return &Expr{source: source, formula: formula, pattern: pattern}, nil
}

// validateEvents walks the formula tree and rejects any atom naming an
// event outside the declared alphabet (spec §4.2).
func validateEvents(f Formula, a alphabet.Alphabet) error {
	switch n := f.(type) {
	case atomFormula:
		if !a.Contains(n.event) {
			return fmt.Errorf("exprlang: event %q is not in the declared alphabet", n.event)
		}
	case notFormula:
		return validateEvents(n.operand, a)
	case andFormula:
		if err := validateEvents(n.left, a); err != nil {
			return err
		}
		return validateEvents(n.right, a)
	case orFormula:
		if err := validateEvents(n.left, a); err != nil {
			return err
		}
		return validateEvents(n.right, a)
	}
	return nil
}
