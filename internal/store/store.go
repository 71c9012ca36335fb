// Package store defines the contract this service needs from the remote
// document store: point reads, appends, and live queries that push a full
// result snapshot on every change.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Snapshot is one delivery of a document's current state. Exists is false
// when the document is absent; Fields is nil in that case.
type Snapshot struct {
	ID     string
	Exists bool
	Fields map[string]interface{}
}

// Query describes a collection read. An empty Field means the query is
// unscoped and yields every row in the collection.
type Query struct {
	Collection string
	Field      string
	Equals     string
}

// Unscoped returns true if the query has no filter.
func (q Query) Unscoped() bool {
	return q.Field == ""
}

// Matches reports whether a snapshot satisfies the query filter.
// The reserved field "id" matches against the document identifier.
func (q Query) Matches(s Snapshot) bool {
	if q.Unscoped() {
		return true
	}
	if q.Field == "id" {
		return s.ID == q.Equals
	}
	v, ok := s.Fields[q.Field]
	if !ok {
		return false
	}
	str, ok := v.(string)
	return ok && str == q.Equals
}

// DocumentFunc receives document snapshots.
type DocumentFunc func(Snapshot)

// QueryFunc receives full query result sets.
type QueryFunc func([]Snapshot)

// Store is the remote document store as consumed by the sync layer.
// Within one subscription, snapshots arrive in the order the store emits
// them; there is no ordering guarantee across subscriptions.
type Store interface {
	// GetDocument reads a single document. A missing document is reported
	// via Snapshot.Exists, not an error.
	GetDocument(ctx context.Context, collection, id string) (Snapshot, error)

	// SubscribeToDocument opens a live subscription on one document. The
	// callback fires with the current state immediately and again on every
	// change, until the returned subscription is released.
	SubscribeToDocument(collection, id string, fn DocumentFunc) (*Subscription, error)

	// SubscribeToQuery opens a live query. The callback fires with the full
	// current result set immediately and again on every change.
	SubscribeToQuery(q Query, fn QueryFunc) (*Subscription, error)

	// AddDocument appends a new document and returns its assigned id.
	AddDocument(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
}
