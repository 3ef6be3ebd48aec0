// Package store provides an in-memory queryable object store.
//
// Records are JSON-like objects (map[string]any) keyed by an id field.
// Queries are filter.Filter values:
//
//	s := store.New()
//	s.Add(store.Record{"name": "bob", "age": 30})
//	adults := s.Fetch(filter.New[store.Record]().GreaterThanOrEqualTo("age", 18))
//
// # Identity
//
// The id lives in the record itself (field "id" unless WithIDField says
// otherwise). Records added without one get a UUIDv7, which sorts by
// creation time.
//
// # Isolation
//
// Records are deep-copied on the way in and on the way out, so callers
// never share state with the store. Fetch evaluates the filter on a
// snapshot taken under the read lock; the lock is not held while
// predicates run.
//
// # Ordering
//
// Fetch and All return records in insertion order. Put on an existing id
// replaces the record in place.
package store
