package crossproduct

import (
	"fmt"

	"github.com/smilemakc/crm/internal/domain"
)

// Encoder produces the augmented observation handed to agents, and
// recovers the ground observation from it (spec §4.4: "these two hooks
// must be bijective on the (o,u,c) domain used at runtime"). Concrete
// layout is user-defined; the cross-product only requires the round
// trip to hold.
type Encoder interface {
	Encode(obs any, state int, counters []int) (any, error)
	DecodeGround(augmented any) (any, error)
}

// VerifyRoundTrip encodes obs/state/counters and checks that decoding
// the result recovers obs exactly, per the EncoderError invariant (spec
// §7, §8 invariant 3). Intended for test builds, not the hot path.
func VerifyRoundTrip(enc Encoder, obs any, state int, counters []int, equal func(a, b any) bool) error {
	augmented, err := enc.Encode(obs, state, counters)
	if err != nil {
		return domain.NewEncoderError(fmt.Sprintf("encode failed: %v", err))
	}
	recovered, err := enc.DecodeGround(augmented)
	if err != nil {
		return domain.NewEncoderError(fmt.Sprintf("decode_ground failed: %v", err))
	}
	if !equal(obs, recovered) {
		return domain.NewEncoderError("decode_ground(encode(o,u,c)) did not recover o")
	}
	return nil
}
