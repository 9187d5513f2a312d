// Package storage persists the wallet's local view of the ledger in a
// prefixed key-value store: discovered note records and in-flight
// operation records. The following prefixes are used:
//   - 'n/' for note records, keyed by commitment
//   - 'o/' for operation records, keyed by operation id
//
// Spent status is intentionally not stored here; it is always queried
// fresh from the ledger.
package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	notePrefix      = []byte("n/")
	operationPrefix = []byte("o/")
)

const (
	// maxKeySize is the maximum size of a database key in bytes. Keys
	// derived from larger values are truncated hashes.
	maxKeySize = 12
)

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("not found")

// Storage wraps the key-value database with typed accessors for the
// wallet artifacts.
type Storage struct {
	db db.Database
}

// New creates a new Storage instance over the given database.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the underlying database.
func (s *Storage) Close() {
	s.db.Close()
}

func hashKey(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:maxKeySize]
}

func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rd.Get(key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return decodeArtifact(data, out)
}

func (s *Storage) deleteArtifact(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return wTx.Commit()
}

func (s *Storage) iterateArtifacts(prefix []byte, fn func(k, v []byte) bool) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	return rd.Iterate(nil, fn)
}

// SetNote stores or replaces a note record, keyed by its commitment.
func (s *Storage) SetNote(n *NoteRecord) error {
	if len(n.Commitment) == 0 {
		return fmt.Errorf("note record without commitment")
	}
	return s.setArtifact(notePrefix, hashKey(n.Commitment), n)
}

// Note loads the note record for a commitment. Returns ErrNotFound if
// the note has never been stored.
func (s *Storage) Note(commitment []byte) (*NoteRecord, error) {
	n := &NoteRecord{}
	if err := s.getArtifact(notePrefix, hashKey(commitment), n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteNote removes the note record for a commitment.
func (s *Storage) DeleteNote(commitment []byte) error {
	return s.deleteArtifact(notePrefix, hashKey(commitment))
}

// ListNotes returns every stored note record.
func (s *Storage) ListNotes() ([]*NoteRecord, error) {
	var out []*NoteRecord
	var decErr error
	err := s.iterateArtifacts(notePrefix, func(_, v []byte) bool {
		n := &NoteRecord{}
		if decErr = decodeArtifact(v, n); decErr != nil {
			return false
		}
		out = append(out, n)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}
	return out, nil
}

// SetOperation stores or replaces an operation record, keyed by its id.
func (s *Storage) SetOperation(o *OperationRecord) error {
	if len(o.ID) == 0 {
		return fmt.Errorf("operation record without id")
	}
	return s.setArtifact(operationPrefix, o.ID, o)
}

// Operation loads an operation record by id. Returns ErrNotFound if no
// such operation exists.
func (s *Storage) Operation(id []byte) (*OperationRecord, error) {
	o := &OperationRecord{}
	if err := s.getArtifact(operationPrefix, id, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOperation removes an operation record.
func (s *Storage) DeleteOperation(id []byte) error {
	return s.deleteArtifact(operationPrefix, id)
}

// ListOperations returns every stored operation record.
func (s *Storage) ListOperations() ([]*OperationRecord, error) {
	var out []*OperationRecord
	var decErr error
	err := s.iterateArtifacts(operationPrefix, func(_, v []byte) bool {
		o := &OperationRecord{}
		if decErr = decodeArtifact(v, o); decErr != nil {
			return false
		}
		out = append(out, o)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}
	return out, nil
}
