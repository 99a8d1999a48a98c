package store

import (
	"crypto/rand"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"
)

// Session is a short-lived authorization ticket bound to an identity owner.
type Session struct {
	ID        [32]byte `cbor:"1,keyasint"`
	Owner     [32]byte `cbor:"2,keyasint"`
	ExpiresAt int64    `cbor:"3,keyasint"`
}

// CreateSession opens a session for owner, valid for ttl. The owner must be
// registered.
func (s *Store) CreateSession(owner [32]byte, ttl time.Duration) (*Session, error) {
	sess := &Session{
		Owner:     owner,
		ExpiresAt: s.now().Add(ttl).Unix(),
	}
	if _, err := rand.Read(sess.ID[:]); err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(identityKey(owner)); err == badger.ErrKeyNotFound {
			return ErrIdentityNotFound
		} else if err != nil {
			return err
		}
		raw, err := cbor.Marshal(sess)
		if err != nil {
			return err
		}
		return txn.Set(sessionKey(sess.ID), raw)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ValidateSession checks that id exists, is unexpired, and belongs to owner.
// Expired sessions are deleted on sight.
func (s *Store) ValidateSession(id, owner [32]byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrSessionExpired
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var sess Session
		if err := cbor.Unmarshal(raw, &sess); err != nil {
			return fmt.Errorf("corrupt session: %w", err)
		}
		if s.now().Unix() >= sess.ExpiresAt {
			_ = txn.Delete(sessionKey(id))
			return ErrSessionExpired
		}
		if sess.Owner != owner {
			return ErrUnauthorized
		}
		return nil
	})
}

// CloseSession deletes the session. Closing an unknown session is a no-op.
func (s *Store) CloseSession(id [32]byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
}
