package compress

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/zkident/attest"
	"github.com/zkident/attest/accumulator/merkle"
)

func TestCompressDeterminism(t *testing.T) {
	var owner [32]byte
	var commitment, root attest.Digest
	owner[0], commitment[0], root[0] = 1, 2, 3

	a, err := Compress(owner, commitment, root)
	require.NoError(t, err)
	b, err := Compress(owner, commitment, root)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.False(t, a.IsZero())

	owner[31] = 0xcc
	c, err := Compress(owner, commitment, root)
	require.NoError(t, err)
	require.NotEqual(t, a, c, "changing owner alone must change the digest")
}

func TestUpdateRecord(t *testing.T) {
	r := Record{LeafIndex: 3, AttributesVerified: 0b101}
	var sh, mr, nf attest.Digest
	sh[0], mr[0], nf[0] = 1, 2, 3

	UpdateRecord(&r, sh, mr, nf, 1700000000)

	require.Equal(t, sh, r.StateHash)
	require.Equal(t, mr, r.MerkleRoot)
	require.Equal(t, nf, r.Nullifier)
	require.Equal(t, int64(1700000000), r.LastUpdated)
	// untouched fields survive
	require.Equal(t, uint64(3), r.LeafIndex)
	require.Equal(t, uint8(0b101), r.AttributesVerified)
}

func TestRevoke(t *testing.T) {
	r := Record{AttributesVerified: 0b111}
	var sh attest.Digest
	sh[0] = 9
	r.StateHash = sh

	Revoke(&r, 42)
	require.Zero(t, r.AttributesVerified)
	require.Equal(t, int64(42), r.LastUpdated)
	require.Equal(t, sh, r.StateHash, "hash fields stay stale until the next update")
}

func TestVerifyAgainstProof(t *testing.T) {
	var owner [32]byte
	var commitment attest.Digest
	owner[0], commitment[0] = 7, 8

	// the record's state hash is a leaf of the tree behind its root
	leaves := make([]attest.Digest, 4)
	for i := range leaves {
		leaves[i][0] = byte(0x10 + i)
	}
	stateHash, err := Compress(owner, commitment, attest.Digest{})
	require.NoError(t, err)
	leaves[2] = stateHash

	tree, err := merkle.BuildTree(leaves)
	require.NoError(t, err)

	r := Record{Owner: owner}
	UpdateRecord(&r, stateHash, tree.Root(), attest.Digest{}, 1)

	proof, err := tree.Prove(2)
	require.NoError(t, err)
	payload, err := proof.MarshalBinary()
	require.NoError(t, err)

	ok, err := VerifyAgainstProof(&r, payload)
	require.NoError(t, err)
	require.True(t, ok)

	// wrong leaf slot
	other, err := tree.Prove(1)
	require.NoError(t, err)
	otherPayload, err := other.MarshalBinary()
	require.NoError(t, err)
	ok, err = VerifyAgainstProof(&r, otherPayload)
	require.NoError(t, err)
	require.False(t, ok)

	// empty payload
	_, err = VerifyAgainstProof(&r, nil)
	require.ErrorIs(t, err, attest.ErrInvalidProof)

	// garbage payload
	_, err = VerifyAgainstProof(&r, []byte{5, 1, 2})
	require.ErrorIs(t, err, attest.ErrMerkleTree)
}

func TestRecordMarshalRoundTrip(t *testing.T) {
	r := Record{
		LeafIndex:          11,
		AttributesVerified: 0b110,
		LastUpdated:        1700000000,
	}
	r.Owner[0] = 1
	r.StateHash[1] = 2
	r.MerkleRoot[2] = 3
	r.Nullifier[3] = 4

	data, err := r.MarshalBinary()
	require.NoError(t, err)

	var got Record
	require.NoError(t, got.UnmarshalBinary(data))
	require.Equal(t, r, got)

	// encoding through cbor directly dispatches to MarshalBinary; the two
	// paths must agree (and terminate)
	viaCbor, err := cbor.Marshal(&r)
	require.NoError(t, err)
	var got2 Record
	require.NoError(t, cbor.Unmarshal(viaCbor, &got2))
	require.Equal(t, r, got2)
}
