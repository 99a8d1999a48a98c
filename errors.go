package attest

import "errors"

// Error kinds shared by the verification components. Callers discriminate
// with errors.Is; detail is carried by wrapping.
//
// A proof that parses but fails the pairing equation is NOT an error: Verify
// reports it as (false, nil). ErrProofVerificationFailed exists for callers
// using the strict variants, where "rejected" must abort like a fault.
var (
	// ErrInvalidProof covers malformed proof bytes: wrong length, or curve
	// point encodings that fail to parse.
	ErrInvalidProof = errors.New("invalid proof")

	// ErrInvalidPublicInputs covers empty or misaligned public-input buffers,
	// non-canonical field elements, unknown attribute tags and arity/IC
	// mismatches.
	ErrInvalidPublicInputs = errors.New("invalid public inputs")

	// ErrProofVerificationFailed reports a well-formed proof whose pairing
	// equation does not hold.
	ErrProofVerificationFailed = errors.New("proof verification failed")

	// ErrMerkleTree covers malformed inclusion proofs: sibling/direction
	// length mismatch or a broken wire encoding.
	ErrMerkleTree = errors.New("malformed merkle proof")

	// ErrCompression reports an internal failure while computing a
	// compressed-state hash.
	ErrCompression = errors.New("state compression failed")
)

// DigestSize is the byte length of a Digest.
const DigestSize = 32

// Digest is a 32-byte value produced by the circuit-compatible hash.
type Digest [DigestSize]byte

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
