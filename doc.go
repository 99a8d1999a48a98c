// Package attest verifies privacy-preserving identity attestations.
//
// A holder proves possession of an identity attribute (age, nationality,
// uniqueness) with a Groth16 proof over BN254; the verifier side of that
// exchange lives here. The module is organised as small, pure components:
//
//   - field: scalar field codecs (little-endian bytes <-> fr elements)
//   - hash/poseidon: the circuit-compatible digest used for commitments,
//     nullifiers and Merkle nodes
//   - accumulator/merkle: inclusion-proof verification for the compressed
//     state tree
//   - nullifier: one-time-use value derivation
//   - groth16: pairing-based proof verification against per-attribute keys
//   - compress: the compact identity-state record and its transitions
//   - store: reference bookkeeping collaborator (registry, sessions,
//     spent nullifiers, audit trail)
//
// Verification is a pure computation over caller-supplied bytes: no I/O, no
// retries, no mutation. State transitions gated by a verification belong to
// the store (or any other collaborator), never to the verifying components.
package attest

import (
	"github.com/blang/semver/v4"
)

// Version of the attest module.
var Version = semver.MustParse("1.0.0")
