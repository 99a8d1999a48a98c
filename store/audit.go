package store

import (
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/zkident/attest/groth16"
)

// AuditEntry records one attribute-verification attempt. Proof and inputs are
// stored as blake2b digests so the trail stays small and leaks nothing.
type AuditEntry struct {
	Seq          uint64                `cbor:"1,keyasint"`
	Owner        [32]byte              `cbor:"2,keyasint"`
	Attribute    groth16.AttributeType `cbor:"3,keyasint"`
	ProofDigest  [32]byte              `cbor:"4,keyasint"`
	InputsDigest [32]byte              `cbor:"5,keyasint"`
	Verified     bool                  `cbor:"6,keyasint"`
	At           int64                 `cbor:"7,keyasint"`
}

func (s *Store) appendAudit(txn *badger.Txn, owner [32]byte, attr groth16.AttributeType, proof, publicInputs []byte, verified bool) error {
	seq, err := nextAuditSeq(txn)
	if err != nil {
		return err
	}
	entry := AuditEntry{
		Seq:          seq,
		Owner:        owner,
		Attribute:    attr,
		ProofDigest:  blake2b.Sum256(proof),
		InputsDigest: blake2b.Sum256(publicInputs),
		Verified:     verified,
		At:           s.now().Unix(),
	}
	raw, err := cbor.Marshal(&entry)
	if err != nil {
		return err
	}
	return txn.Set(auditKey(seq), raw)
}

// AuditTrail returns all recorded entries in sequence order.
func (s *Store) AuditTrail() ([]AuditEntry, error) {
	var entries []AuditEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixAudit
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var entry AuditEntry
			if err := cbor.Unmarshal(raw, &entry); err != nil {
				return fmt.Errorf("corrupt audit entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func auditKey(seq uint64) []byte {
	key := append([]byte{}, prefixAudit...)
	// big-endian so badger's key order is sequence order
	return binary.BigEndian.AppendUint64(key, seq)
}

func nextAuditSeq(txn *badger.Txn) (uint64, error) {
	var seq uint64
	item, err := txn.Get(keyAuditSeq)
	switch err {
	case nil:
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return 0, err
		}
		seq = binary.BigEndian.Uint64(raw)
	case badger.ErrKeyNotFound:
	default:
		return 0, err
	}
	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, seq+1)
	if err := txn.Set(keyAuditSeq, next); err != nil {
		return 0, err
	}
	return seq, nil
}
