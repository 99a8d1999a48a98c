// Package merkle verifies inclusion proofs for the compressed identity-state
// tree.
//
// Parent nodes are computed with the circuit-compatible hash, so a root
// checked here matches the root the proving circuit constrains. The
// verification walk is an explicit iterative fold over an index-addressed
// sibling/direction array: proof depth never grows the stack.
package merkle

import (
	"fmt"

	"github.com/zkident/attest"
	"github.com/zkident/attest/hash/poseidon"
)

// Proof is an inclusion path: ordered sibling digests and, for each level,
// whether the accumulated hash is the left operand when combined with its
// sibling.
type Proof struct {
	Siblings   []attest.Digest
	Directions []bool
}

// Parent hashes a left/right child pair. It is intentionally non-commutative:
// Parent(a, b) != Parent(b, a) in general.
func Parent(left, right attest.Digest) (attest.Digest, error) {
	return poseidon.Hash(left[:], right[:])
}

// VerifyInclusion reports whether leaf is included in the tree with the given
// root. It fails with attest.ErrMerkleTree when the proof shape is broken;
// a well-formed proof that does not lead to root returns (false, nil).
func VerifyInclusion(leaf attest.Digest, proof Proof, root attest.Digest) (bool, error) {
	if len(proof.Siblings) != len(proof.Directions) {
		return false, fmt.Errorf("%w: %d siblings, %d directions",
			attest.ErrMerkleTree, len(proof.Siblings), len(proof.Directions))
	}

	current := leaf
	for i := range proof.Siblings {
		var err error
		if proof.Directions[i] {
			current, err = Parent(current, proof.Siblings[i])
		} else {
			current, err = Parent(proof.Siblings[i], current)
		}
		if err != nil {
			return false, fmt.Errorf("%w: level %d: %v", attest.ErrMerkleTree, i, err)
		}
	}
	return current == root, nil
}
