package store

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/zkident/attest"
	"github.com/zkident/attest/compress"
	"github.com/zkident/attest/groth16"
	"github.com/zkident/attest/nullifier"
)

// RegisterIdentity creates a record for owner with the initial commitment and
// state-tree root, allocating the lowest free leaf index. Fails with
// ErrIdentityExists if the owner is already registered.
func (s *Store) RegisterIdentity(owner [32]byte, commitment, merkleRoot attest.Digest) (*compress.Record, error) {
	stateHash, err := compress.Compress(owner, commitment, merkleRoot)
	if err != nil {
		return nil, err
	}

	rec := &compress.Record{
		Owner:      owner,
		MerkleRoot: merkleRoot,
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(identityKey(owner)); err == nil {
			return ErrIdentityExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		idx, err := allocateLeaf(txn)
		if err != nil {
			return err
		}
		rec.LeafIndex = idx
		rec.StateHash = stateHash
		rec.LastUpdated = s.now().Unix()
		return putRecord(txn, rec)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Hex("owner", owner[:8]).Uint64("leaf", rec.LeafIndex).Msg("identity registered")
	return rec, nil
}

// GetIdentity loads the record for owner.
func (s *Store) GetIdentity(owner [32]byte) (*compress.Record, error) {
	var rec compress.Record
	err := s.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, owner, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateCommitment rotates the identity to a new commitment and state-tree
// root. Only the owner may rotate. The nullifier of the OLD commitment is
// derived from secret and spent; replaying the same rotation fails with
// ErrNullifierSpent.
func (s *Store) UpdateCommitment(actor, owner [32]byte, oldCommitment, newCommitment attest.Digest, secret attest.Digest, newRoot attest.Digest) (*compress.Record, error) {
	if actor != owner {
		return nil, ErrUnauthorized
	}
	null, err := nullifier.Derive(oldCommitment, secret)
	if err != nil {
		return nil, err
	}
	stateHash, err := compress.Compress(owner, newCommitment, newRoot)
	if err != nil {
		return nil, err
	}

	var rec compress.Record
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := getRecord(txn, owner, &rec); err != nil {
			return err
		}
		if err := spendNullifier(txn, null); err != nil {
			return err
		}
		compress.UpdateRecord(&rec, stateHash, newRoot, null, s.now().Unix())
		return putRecord(txn, &rec)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Hex("owner", owner[:8]).Msg("commitment rotated")
	return &rec, nil
}

// VerifyAttribute runs a zero-knowledge attribute proof against the loaded
// verifying keys and, on success, sets the attribute's bit in the record.
// The outcome is recorded in the audit trail either way. Malformed inputs
// return an error and leave both the record and the trail untouched.
func (s *Store) VerifyAttribute(ks *groth16.KeySet, owner [32]byte, attr groth16.AttributeType, proof, publicInputs []byte) (bool, error) {
	ok, err := ks.Verify(proof, publicInputs, attr)
	if err != nil {
		return false, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		var rec compress.Record
		if err := getRecord(txn, owner, &rec); err != nil {
			return err
		}
		if err := s.appendAudit(txn, owner, attr, proof, publicInputs, ok); err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rec.AttributesVerified |= attr.Bit()
		rec.LastUpdated = s.now().Unix()
		return putRecord(txn, &rec)
	})
	if err != nil {
		return false, err
	}
	s.log.Debug().Hex("owner", owner[:8]).Stringer("attribute", attr).Bool("verified", ok).Msg("attribute proof processed")
	return ok, nil
}

// RevokeIdentity clears the verified-attribute bitmap and frees the leaf
// index. Only the owner may revoke.
func (s *Store) RevokeIdentity(actor, owner [32]byte) error {
	if actor != owner {
		return ErrUnauthorized
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var rec compress.Record
		if err := getRecord(txn, owner, &rec); err != nil {
			return err
		}
		if err := releaseLeaf(txn, rec.LeafIndex); err != nil {
			return err
		}
		compress.Revoke(&rec, s.now().Unix())
		return putRecord(txn, &rec)
	})
	if err != nil {
		return err
	}
	s.log.Info().Hex("owner", owner[:8]).Msg("identity revoked")
	return nil
}

func getRecord(txn *badger.Txn, owner [32]byte, rec *compress.Record) error {
	item, err := txn.Get(identityKey(owner))
	if err == badger.ErrKeyNotFound {
		return ErrIdentityNotFound
	}
	if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if err := rec.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("corrupt identity record: %w", err)
	}
	return nil
}

func putRecord(txn *badger.Txn, rec *compress.Record) error {
	raw, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	return txn.Set(identityKey(rec.Owner), raw)
}
