package store

import (
	"testing"
	"time"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/require"

	"github.com/zkident/attest"
	"github.com/zkident/attest/groth16"
	"github.com/zkident/attest/internal/fixture"
	"github.com/zkident/attest/nullifier"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestKeySet(t *testing.T, f fixture.Fixture, attr groth16.AttributeType) *groth16.KeySet {
	t.Helper()
	vk, err := groth16.ParseVerifyingKey(f.VKRaw, semver.MustParse("1.0.0"))
	require.NoError(t, err)
	ks, err := groth16.NewKeySet(map[groth16.AttributeType]*groth16.VerifyingKey{attr: vk})
	require.NoError(t, err)
	return ks
}

func TestRegisterAndGet(t *testing.T) {
	s := newTestStore(t)
	var owner [32]byte
	var commitment, root attest.Digest
	owner[0], commitment[0], root[0] = 1, 2, 3

	rec, err := s.RegisterIdentity(owner, commitment, root)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rec.LeafIndex)
	require.False(t, rec.StateHash.IsZero())

	got, err := s.GetIdentity(owner)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	_, err = s.RegisterIdentity(owner, commitment, root)
	require.ErrorIs(t, err, ErrIdentityExists)

	var other [32]byte
	other[0] = 9
	rec2, err := s.RegisterIdentity(other, commitment, root)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rec2.LeafIndex, "leaf indices are allocated in order")

	var missing [32]byte
	missing[0] = 0xee
	_, err = s.GetIdentity(missing)
	require.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestVerifyAttributeFlipsBitmap(t *testing.T) {
	s := newTestStore(t)
	f := fixture.New(1, 42)
	ks := newTestKeySet(t, f, groth16.Age)

	var owner [32]byte
	owner[0] = 1
	_, err := s.RegisterIdentity(owner, attest.Digest{1}, attest.Digest{2})
	require.NoError(t, err)

	ok, err := s.VerifyAttribute(ks, owner, groth16.Age, f.Proof, f.PublicInputs)
	require.NoError(t, err)
	require.True(t, ok)

	rec, err := s.GetIdentity(owner)
	require.NoError(t, err)
	require.Equal(t, groth16.Age.Bit(), rec.AttributesVerified)

	// a rejected proof leaves the bitmap alone but is still audited
	ok, err = s.VerifyAttribute(ks, owner, groth16.Age, f.ProofWrongC, f.PublicInputs)
	require.NoError(t, err)
	require.False(t, ok)

	rec, err = s.GetIdentity(owner)
	require.NoError(t, err)
	require.Equal(t, groth16.Age.Bit(), rec.AttributesVerified)

	trail, err := s.AuditTrail()
	require.NoError(t, err)
	require.Len(t, trail, 2)
	require.Equal(t, uint64(0), trail[0].Seq)
	require.True(t, trail[0].Verified)
	require.False(t, trail[1].Verified)
	require.Equal(t, owner, trail[0].Owner)
	require.NotEqual(t, trail[0].ProofDigest, trail[1].ProofDigest)

	// malformed proof errors out without touching the trail
	_, err = s.VerifyAttribute(ks, owner, groth16.Age, f.Proof[:100], f.PublicInputs)
	require.ErrorIs(t, err, attest.ErrInvalidProof)
	trail, err = s.AuditTrail()
	require.NoError(t, err)
	require.Len(t, trail, 2)
}

func TestUpdateCommitmentSpendsNullifier(t *testing.T) {
	s := newTestStore(t)
	var owner [32]byte
	owner[0] = 1
	oldCommitment := attest.Digest{1}
	secret := attest.Digest{7}

	_, err := s.RegisterIdentity(owner, oldCommitment, attest.Digest{2})
	require.NoError(t, err)

	// only the owner may rotate
	var stranger [32]byte
	stranger[0] = 9
	_, err = s.UpdateCommitment(stranger, owner, oldCommitment, attest.Digest{3}, secret, attest.Digest{4})
	require.ErrorIs(t, err, ErrUnauthorized)

	rec, err := s.UpdateCommitment(owner, owner, oldCommitment, attest.Digest{3}, secret, attest.Digest{4})
	require.NoError(t, err)

	want, err := nullifier.Derive(oldCommitment, secret)
	require.NoError(t, err)
	require.Equal(t, want, rec.Nullifier)
	require.Equal(t, attest.Digest{4}, rec.MerkleRoot)

	spent, err := s.NullifierSpent(want)
	require.NoError(t, err)
	require.True(t, spent)

	// replaying the same rotation is a double spend
	_, err = s.UpdateCommitment(owner, owner, oldCommitment, attest.Digest{5}, secret, attest.Digest{6})
	require.ErrorIs(t, err, ErrNullifierSpent)
}

func TestRevokeIdentity(t *testing.T) {
	s := newTestStore(t)
	var owner, stranger [32]byte
	owner[0], stranger[0] = 1, 2

	_, err := s.RegisterIdentity(owner, attest.Digest{1}, attest.Digest{2})
	require.NoError(t, err)

	require.ErrorIs(t, s.RevokeIdentity(stranger, owner), ErrUnauthorized)

	require.NoError(t, s.RevokeIdentity(owner, owner))
	rec, err := s.GetIdentity(owner)
	require.NoError(t, err)
	require.Zero(t, rec.AttributesVerified)

	// the freed leaf is handed to the next registration
	rec2, err := s.RegisterIdentity(stranger, attest.Digest{1}, attest.Digest{2})
	require.NoError(t, err)
	require.Equal(t, uint64(0), rec2.LeafIndex)
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	var owner, stranger [32]byte
	owner[0], stranger[0] = 1, 2

	_, err := s.CreateSession(owner, time.Minute)
	require.ErrorIs(t, err, ErrIdentityNotFound)

	_, err = s.RegisterIdentity(owner, attest.Digest{1}, attest.Digest{2})
	require.NoError(t, err)

	sess, err := s.CreateSession(owner, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.ValidateSession(sess.ID, owner))
	require.ErrorIs(t, s.ValidateSession(sess.ID, stranger), ErrUnauthorized)

	// move the clock past the expiry
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	require.ErrorIs(t, s.ValidateSession(sess.ID, owner), ErrSessionExpired)
	// the expired session was reaped
	s.now = time.Now
	require.ErrorIs(t, s.ValidateSession(sess.ID, owner), ErrSessionExpired)

	sess2, err := s.CreateSession(owner, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.CloseSession(sess2.ID))
	require.ErrorIs(t, s.ValidateSession(sess2.ID, owner), ErrSessionExpired)
}

func TestSpendNullifier(t *testing.T) {
	s := newTestStore(t)
	n := attest.Digest{0xaa}

	spent, err := s.NullifierSpent(n)
	require.NoError(t, err)
	require.False(t, spent)

	require.NoError(t, s.SpendNullifier(n))
	require.ErrorIs(t, s.SpendNullifier(n), ErrNullifierSpent)

	spent, err = s.NullifierSpent(n)
	require.NoError(t, err)
	require.True(t, spent)
}
