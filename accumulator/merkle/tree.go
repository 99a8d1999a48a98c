package merkle

import (
	"fmt"

	"github.com/zkident/attest"
)

// Tree is a bottom-up Merkle tree over a fixed leaf set, kept with all its
// intermediate levels so that proofs are direct lookups. Odd levels are
// padded by repeating the last node.
type Tree struct {
	levels   [][]attest.Digest // levels[0] = (padded) leaves
	nbLeaves uint64
}

// BuildTree constructs the tree for the given leaves.
func BuildTree(leaves []attest.Digest) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: empty leaf set", attest.ErrMerkleTree)
	}

	level := make([]attest.Digest, len(leaves))
	copy(level, leaves)

	t := &Tree{nbLeaves: uint64(len(leaves))}
	for {
		if len(level)%2 == 1 && len(level) > 1 {
			level = append(level, level[len(level)-1])
		}
		t.levels = append(t.levels, level)
		if len(level) == 1 {
			return t, nil
		}
		next := make([]attest.Digest, len(level)/2)
		for i := range next {
			p, err := Parent(level[2*i], level[2*i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", attest.ErrMerkleTree, err)
			}
			next[i] = p
		}
		level = next
	}
}

// Root returns the tree root.
func (t *Tree) Root() attest.Digest {
	return t.levels[len(t.levels)-1][0]
}

// NbLeaves returns the number of leaves the tree was built from.
func (t *Tree) NbLeaves() uint64 {
	return t.nbLeaves
}

// Prove returns the inclusion proof for the leaf at index.
func (t *Tree) Prove(index uint64) (Proof, error) {
	if index >= t.nbLeaves {
		return Proof{}, fmt.Errorf("%w: leaf index %d out of range (%d leaves)",
			attest.ErrMerkleTree, index, t.nbLeaves)
	}

	depth := len(t.levels) - 1
	proof := Proof{
		Siblings:   make([]attest.Digest, depth),
		Directions: make([]bool, depth),
	}
	i := index
	for lvl := 0; lvl < depth; lvl++ {
		sib := i ^ 1
		proof.Siblings[lvl] = t.levels[lvl][sib]
		proof.Directions[lvl] = i%2 == 0 // even index: accumulated hash is the left operand
		i /= 2
	}
	return proof, nil
}
