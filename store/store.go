// Package store persists identity records, sessions, spent nullifiers and the
// audit trail in BadgerDB, and orchestrates attribute verification on top of
// the groth16 key set.
package store

import (
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"

	"github.com/zkident/attest/logger"
)

// key prefixes. Records, nullifiers and sessions are keyed by their 32-byte
// identifier; the allocator and audit counter live under fixed keys.
var (
	prefixIdentity  = []byte("id/")
	prefixNullifier = []byte("nf/")
	prefixSession   = []byte("ss/")
	prefixAudit     = []byte("au/")
	keyLeafAlloc    = []byte("leafalloc")
	keyAuditSeq     = []byte("auditseq")
)

// Store is a handle on the identity database. Safe for concurrent use; badger
// transactions provide the isolation.
type Store struct {
	db  *badger.DB
	log zerolog.Logger

	// test hook
	now func() time.Time
}

// Open opens (or creates) the database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening identity store: %w", err)
	}
	return &Store{
		db:  db,
		log: logger.With("store"),
		now: time.Now,
	}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func identityKey(owner [32]byte) []byte {
	return append(append([]byte{}, prefixIdentity...), owner[:]...)
}

func nullifierKey(n [32]byte) []byte {
	return append(append([]byte{}, prefixNullifier...), n[:]...)
}

func sessionKey(id [32]byte) []byte {
	return append(append([]byte{}, prefixSession...), id[:]...)
}

// allocateLeaf reserves the lowest free leaf index inside txn.
func allocateLeaf(txn *badger.Txn) (uint64, error) {
	var alloc bitset.BitSet
	item, err := txn.Get(keyLeafAlloc)
	switch err {
	case nil:
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return 0, err
		}
		if err := alloc.UnmarshalBinary(raw); err != nil {
			return 0, fmt.Errorf("corrupt leaf allocator: %w", err)
		}
	case badger.ErrKeyNotFound:
		// first registration
	default:
		return 0, err
	}

	idx, ok := alloc.NextClear(0)
	if !ok {
		idx = alloc.Len()
	}
	alloc.Set(idx)

	raw, err := alloc.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if err := txn.Set(keyLeafAlloc, raw); err != nil {
		return 0, err
	}
	return uint64(idx), nil
}

// releaseLeaf returns a leaf index to the allocator inside txn.
func releaseLeaf(txn *badger.Txn, idx uint64) error {
	item, err := txn.Get(keyLeafAlloc)
	if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	var alloc bitset.BitSet
	if err := alloc.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("corrupt leaf allocator: %w", err)
	}
	alloc.Clear(uint(idx))
	raw, err = alloc.MarshalBinary()
	if err != nil {
		return err
	}
	return txn.Set(keyLeafAlloc, raw)
}
