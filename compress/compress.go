// Package compress maintains the compact identity-state record: a digest of
// the full identity data plus the bookkeeping needed to anchor it in the
// state tree.
//
// The record is only ever mutated through the operations here, and every
// hash-derived field changes together: a reader never observes a state hash
// from one write next to a Merkle root from another.
package compress

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/zkident/attest"
	"github.com/zkident/attest/accumulator/merkle"
	"github.com/zkident/attest/hash/poseidon"
)

// Record is the compressed identity state.
type Record struct {
	Owner              [32]byte      `cbor:"1,keyasint"`
	StateHash          attest.Digest `cbor:"2,keyasint"`
	MerkleRoot         attest.Digest `cbor:"3,keyasint"`
	Nullifier          attest.Digest `cbor:"4,keyasint"`
	LeafIndex          uint64        `cbor:"5,keyasint"`
	AttributesVerified uint8         `cbor:"6,keyasint"`
	LastUpdated        int64         `cbor:"7,keyasint"`
}

// record is a method-less alias: cbor dispatches to BinaryMarshaler when the
// type implements it, so encoding the Record directly would recurse.
type record Record

// MarshalBinary encodes the record for storage.
func (r *Record) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*record)(r))
}

// UnmarshalBinary decodes a stored record.
func (r *Record) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, (*record)(r))
}

// Compress computes the state hash CircuitHash(owner || commitment || root).
// Pure: no record is touched.
func Compress(owner [32]byte, commitment, merkleRoot attest.Digest) (attest.Digest, error) {
	d, err := poseidon.Hash(owner[:], commitment[:], merkleRoot[:])
	if err != nil {
		return attest.Digest{}, fmt.Errorf("%w: %v", attest.ErrCompression, err)
	}
	return d, nil
}

// UpdateRecord overwrites the hash-derived fields and the timestamp together.
// All-or-nothing by construction: the assignments cannot be observed
// partially because the record is single-writer (see package doc) and the
// function takes no failure path.
func UpdateRecord(r *Record, stateHash, merkleRoot, nullifier attest.Digest, now int64) {
	r.StateHash = stateHash
	r.MerkleRoot = merkleRoot
	r.Nullifier = nullifier
	r.LastUpdated = now
}

// Revoke clears the verified-attribute bitmap. Hash fields are left stale on
// purpose; they are rewritten wholesale by the next UpdateRecord.
func Revoke(r *Record, now int64) {
	r.AttributesVerified = 0
	r.LastUpdated = now
}

// VerifyAgainstProof checks the record's state hash against its Merkle root
// using an inclusion proof in the merkle wire format. An empty payload fails
// with attest.ErrInvalidProof; a payload that does not decode fails with
// attest.ErrMerkleTree.
func VerifyAgainstProof(r *Record, proofPayload []byte) (bool, error) {
	if len(proofPayload) == 0 {
		return false, fmt.Errorf("%w: empty inclusion payload", attest.ErrInvalidProof)
	}
	var proof merkle.Proof
	if err := proof.UnmarshalBinary(proofPayload); err != nil {
		return false, err
	}
	return merkle.VerifyInclusion(r.StateHash, proof, r.MerkleRoot)
}
