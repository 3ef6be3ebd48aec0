package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/rqlstore/internal/filter"
)

// Record is a stored object.
type Record = map[string]any

// Query is a filter over records.
type Query = filter.Filter[Record]

var (
	// ErrDuplicateID is returned by Add when the id is already stored.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrInvalidID is returned when the id field holds a non-string or an
	// empty string.
	ErrInvalidID = errors.New("invalid record id")
)

// Store is an in-memory record store.
//
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	idField string
	ids     IDGenerator
	order   []string
	records map[string]Record
}

// Option configures a Store.
type Option func(*Store)

// WithIDField names the field holding record ids. Default "id".
func WithIDField(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.idField = name
		}
	}
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		idField: "id",
		ids:     UUIDv7Generator{},
		records: make(map[string]Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDField returns the name of the id field.
func (s *Store) IDField() string {
	return s.idField
}

// identify returns a copy of r carrying its id, generating one if absent.
func (s *Store) identify(r Record) (Record, string, error) {
	stored := cloneRecord(r)
	if stored == nil {
		stored = Record{}
	}

	raw, ok := stored[s.idField]
	if !ok || raw == nil {
		id := s.ids.Generate()
		stored[s.idField] = id
		return stored, id, nil
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return nil, "", fmt.Errorf("%w: field %q holds %T %v", ErrInvalidID, s.idField, raw, raw)
	}
	return stored, id, nil
}

// Add stores a new record and returns its id.
func (s *Store) Add(r Record) (string, error) {
	stored, id, err := s.identify(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.records[id] = stored
	s.order = append(s.order, id)

	slog.Debug("record added", "id", id)
	return id, nil
}

// AddAll stores records in order, stopping at the first error.
func (s *Store) AddAll(records []Record) ([]string, error) {
	ids := make([]string, 0, len(records))
	for i, r := range records {
		id, err := s.Add(r)
		if err != nil {
			return ids, fmt.Errorf("record %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Put stores r, replacing any record with the same id.
func (s *Store) Put(r Record) (string, error) {
	stored, id, err := s.identify(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = stored

	slog.Debug("record put", "id", id)
	return id, nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneRecord(r), true
}

// Delete removes a record. It reports whether the record existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}

	slog.Debug("record deleted", "id", id)
	return true
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// snapshot returns the stored records in insertion order. The records
// themselves are shared; callers must not modify them.
func (s *Store) snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// All returns copies of every record in insertion order.
func (s *Store) All() []Record {
	return cloneAll(s.snapshot())
}

// Fetch returns copies of the records q matches, in insertion order.
// An empty query matches nothing.
func (s *Store) Fetch(q Query) []Record {
	all := s.snapshot()
	matched := q.Apply(all)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("fetch",
			"query", q.String(),
			"matched", len(matched),
			"total", len(all))
	}
	return cloneAll(matched)
}

// QueryString renders q in the query-string dialect, as sent to a remote
// store.
func (s *Store) QueryString(q Query) (string, error) {
	return q.Serialize()
}

func cloneAll(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, cloneRecord(r))
	}
	return out
}
