// Package poseidon implements the circuit-compatible digest used for
// identity commitments, nullifiers and Merkle nodes.
//
// The construction is a two-to-one Poseidon2 sponge over the BN254 scalar
// field. Input buffers are concatenated and chunked into 31-byte little-endian
// segments (see field.Split); the resulting element list is absorbed two at a
// time through a width-3 permutation whose capacity lane is initialised with
// the input arity.
//
// Compatibility contract: the proving circuit must instantiate the gnark
// Poseidon2 gadget with the exact (Width, FullRounds, PartialRounds) triple
// below and the same arity-tagged IV rule. The round constants follow from the
// triple (gnark-crypto derives them deterministically), so agreeing on the
// triple and the IV rule is agreeing on the hash. Earlier placeholder hashes
// are not equivalent and must never be mixed into a deployment: a wrong
// variant breaks provability, not performance.
package poseidon

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/zkident/attest"
	"github.com/zkident/attest/field"
)

// Permutation parameters shared with the proving circuit.
const (
	Width         = 3
	FullRounds    = 8
	PartialRounds = 56
)

// perm is process-wide and stateless across calls; Permutation mutates only
// the caller-provided buffer.
var perm = poseidon2.NewPermutation(Width, FullRounds, PartialRounds)

// Hash digests the ordered input buffers. Identical inputs always yield
// identical digests and input order matters. An empty input (no buffers, or
// only empty buffers) yields the zero digest.
func Hash(inputs ...[]byte) (attest.Digest, error) {
	total := 0
	for _, in := range inputs {
		total += len(in)
	}
	if total == 0 {
		return attest.Digest{}, nil
	}
	buf := make([]byte, 0, total)
	for _, in := range inputs {
		buf = append(buf, in...)
	}

	elems := field.Split(buf)

	// state: [capacity, rate0, rate1]; the capacity IV carries the arity so
	// that distinct chunk counts never share a digest, even across zero
	// padding of the final absorb.
	var acc fr.Element
	acc.SetUint64(uint64(len(elems)))

	var state [Width]fr.Element
	for i := 0; i < len(elems); i += 2 {
		state[0] = acc
		state[1] = elems[i]
		if i+1 < len(elems) {
			state[2] = elems[i+1]
		} else {
			state[2].SetZero()
		}
		if err := perm.Permutation(state[:]); err != nil {
			return attest.Digest{}, fmt.Errorf("poseidon2 permutation: %w", err)
		}
		acc = state[0]
	}

	return attest.Digest(field.ToBytes(acc)), nil
}
