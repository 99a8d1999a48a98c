package store

import (
	badger "github.com/dgraph-io/badger/v3"

	"github.com/zkident/attest"
)

// SpendNullifier marks a nullifier as consumed. A second spend of the same
// value fails with ErrNullifierSpent.
func (s *Store) SpendNullifier(n attest.Digest) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return spendNullifier(txn, n)
	})
}

// NullifierSpent reports whether n has been consumed.
func (s *Store) NullifierSpent(n attest.Digest) (bool, error) {
	var spent bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(nullifierKey(n))
		switch err {
		case nil:
			spent = true
			return nil
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	return spent, err
}

func spendNullifier(txn *badger.Txn, n attest.Digest) error {
	key := nullifierKey(n)
	if _, err := txn.Get(key); err == nil {
		return ErrNullifierSpent
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	return txn.Set(key, []byte{1})
}
