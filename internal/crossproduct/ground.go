// Package crossproduct implements the cross-product environment (spec
// §4.4): composition of a ground environment, a labelling function and
// a CRM automaton into a single steppable environment whose observation
// carries the ground observation augmented with CRM state and counters.
package crossproduct

import "context"

// GroundEnv is the ground-environment contract the cross-product
// consumes (spec §6). Ground reward, termination and truncation are
// ignored by the cross-product; the CRM is the sole reward source.
type GroundEnv interface {
	Reset(ctx context.Context, seed *int64) (obs any, info map[string]any, err error)
	Step(ctx context.Context, action any) (obs any, reward float64, terminated, truncated bool, info map[string]any, err error)
}
