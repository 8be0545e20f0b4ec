package exprlang

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/smilemakc/crm/internal/alphabet"
)

// cacheKey identifies a parsed expression by the state it transitions
// from and its source text, matching spec §4.2: "parsed trees are
// cached per source state and per expression string".
type cacheKey struct {
	state  int
	source string
}

// Cache memoizes parsed expressions so a CRM built from a textual
// Definition pays the parse cost once per (state, source) pair.
// automaton's Definition.Build uses a fresh Cache for each build; the
// built CRM keeps the parsed expressions on its edges, not the Cache.
// Safe for concurrent use.
type Cache struct {
	m *xsync.MapOf[cacheKey, *Expr]
}

// NewCache returns an empty expression cache.
func NewCache() *Cache {
	return &Cache{m: xsync.NewMapOf[cacheKey, *Expr]()}
}

// Get parses source for state if it has not been seen before, and
// returns the cached parse otherwise.
func (c *Cache) Get(state int, source string, a alphabet.Alphabet, arity int) (*Expr, error) {
	key := cacheKey{state: state, source: source}
	if expr, ok := c.m.Load(key); ok {
		return expr, nil
	}
	expr, err := Parse(source, a, arity)
	if err != nil {
		return nil, err
	}
	actual, _ := c.m.LoadOrStore(key, expr)
	return actual, nil
}

// Len reports how many distinct (state, source) pairs are cached.
func (c *Cache) Len() int {
	return c.m.Size()
}
