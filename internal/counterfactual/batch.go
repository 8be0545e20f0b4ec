package counterfactual

import (
	"crypto/sha256"

	"github.com/tmthrgd/go-hex"
	"github.com/vmihailenco/msgpack/v5"
)

// Batch is the output of Generate: one Experience per reachable,
// non-terminal configuration (spec §4.5 step 3: "parallel buffers, or a
// sequence of records" — here, a sequence).
type Batch struct {
	Experiences []Experience
}

// MarshalBinary encodes the batch with msgpack, for callers that ship
// counterfactual batches to an out-of-process learner over a queue or
// RPC boundary.
func (b *Batch) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(b.Experiences)
}

// UnmarshalBinary decodes a batch previously produced by MarshalBinary.
func (b *Batch) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, &b.Experiences)
}

// Fingerprint returns a short hex digest of the batch's encoded form,
// useful for logging or de-duplicating identical batches without
// printing their full contents.
func (b *Batch) Fingerprint() (string, error) {
	data, err := b.MarshalBinary()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

// Len reports how many experiences the batch holds.
func (b *Batch) Len() int { return len(b.Experiences) }
