// Package journal keeps a diagnostic, append-only log of upload and delete
// activity in a pebble database. Nothing in the request path reads it back:
// the storage backend stays the only source of truth for what exists.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	pebble "github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

// Action names the operation a record describes.
type Action string

const (
	ActionUpload          Action = "upload"
	ActionDelete          Action = "delete"
	ActionDeleteNamespace Action = "delete_namespace"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is one journal entry.
type Record struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Action  Action    `json:"action"`
	Purpose string    `json:"purpose,omitempty"`
	Key     string    `json:"key,omitempty"`
	Format  string    `json:"format,omitempty"`
	Size    int64     `json:"size,omitempty"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
}

// ErrClosed is returned by operations on a closed or nil store.
var ErrClosed = errors.New("journal store not initialized")

// keyLen is 8 bytes of big-endian unix nanoseconds followed by an 8 byte
// sequence number, so keys sort by time and never collide.
const keyLen = 16

// Store is the pebble-backed journal.
type Store struct {
	db  *pebble.DB
	seq atomic.Uint64
	now func() time.Time
}

// Open opens (or creates) the journal database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the journal store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) key(t time.Time) []byte {
	k := make([]byte, keyLen)
	binary.BigEndian.PutUint64(k[:8], uint64(t.UnixNano()))
	binary.BigEndian.PutUint64(k[8:], s.seq.Add(1))
	return k
}

func timeKey(t time.Time) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(t.UnixNano()))
	return k
}

// Append stores rec, filling in ID and Time when unset. A nil store
// discards the record.
func (s *Store) Append(rec Record) error {
	if s == nil {
		return nil
	}
	if s.db == nil {
		return ErrClosed
	}
	if rec.Time.IsZero() {
		rec.Time = s.now()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}
	return s.db.Set(s.key(rec.Time), data, pebble.NoSync)
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	records := make([]Record, 0, min(max(limit, 0), 256))
	for iter.Last(); iter.Valid() && len(records) < limit; iter.Prev() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // Skip invalid records
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

// Cleanup removes records older than maxAge and returns how many went.
func (s *Store) Cleanup(maxAge time.Duration) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{UpperBound: timeKey(s.now().Add(-maxAge))})
	if err != nil {
		return 0, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	deleted := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if err := batch.Delete(iter.Key(), nil); err != nil {
			iter.Close()
			return 0, err
		}
		deleted++
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("failed to delete old journal records: %w", err)
	}
	return deleted, nil
}

// CheckHealth performs a basic health check on the journal database.
func (s *Store) CheckHealth() error {
	if s == nil || s.db == nil {
		return ErrClosed
	}

	_, closer, err := s.db.Get([]byte("__health_check__"))
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}
