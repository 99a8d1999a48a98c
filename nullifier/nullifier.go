// Package nullifier derives the one-time-use value that lets collaborators
// detect reuse of an identity commitment by equality lookup.
//
// The derivation is deterministic: the same (commitment, secret) pair always
// yields the same nullifier. Tracking which nullifiers have been seen is the
// caller's responsibility (see the store package for a reference
// implementation).
package nullifier

import (
	"github.com/zkident/attest"
	"github.com/zkident/attest/hash/poseidon"
)

// Derive computes CircuitHash(commitment || secret).
func Derive(commitment, secret attest.Digest) (attest.Digest, error) {
	return poseidon.Hash(commitment[:], secret[:])
}
