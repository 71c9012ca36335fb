// Package memstore is an in-memory implementation of the document store
// contract. It backs unit tests and the local development mode, and
// delivers live-query snapshots synchronously on every write.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kaziflow/kazi-sync/internal/store"
)

type docWatcher struct {
	sub *store.Subscription
	id  string
	fn  store.DocumentFunc
}

type queryWatcher struct {
	sub *store.Subscription
	q   store.Query
	fn  store.QueryFunc
}

// MemStore holds documents as [collection][id]fields.
type MemStore struct {
	mu       sync.Mutex
	data     map[string]map[string]map[string]interface{}
	docSubs  map[string][]*docWatcher
	querySub map[string][]*queryWatcher
}

// New creates an empty store.
func New() *MemStore {
	return &MemStore{
		data:     make(map[string]map[string]map[string]interface{}),
		docSubs:  make(map[string][]*docWatcher),
		querySub: make(map[string][]*queryWatcher),
	}
}

// GetDocument implements store.Store.
func (m *MemStore) GetDocument(_ context.Context, collection, id string) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(collection, id), nil
}

func (m *MemStore) snapshotLocked(collection, id string) store.Snapshot {
	coll, ok := m.data[collection]
	if !ok {
		return store.Snapshot{ID: id}
	}
	fields, ok := coll[id]
	if !ok {
		return store.Snapshot{ID: id}
	}
	return store.Snapshot{ID: id, Exists: true, Fields: copyFields(fields)}
}

func (m *MemStore) resultSetLocked(q store.Query) []store.Snapshot {
	coll := m.data[q.Collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []store.Snapshot
	for _, id := range ids {
		snap := store.Snapshot{ID: id, Exists: true, Fields: copyFields(coll[id])}
		if q.Matches(snap) {
			out = append(out, snap)
		}
	}
	return out
}

// SubscribeToDocument implements store.Store. The first snapshot is
// delivered before SubscribeToDocument returns.
func (m *MemStore) SubscribeToDocument(collection, id string, fn store.DocumentFunc) (*store.Subscription, error) {
	w := &docWatcher{id: id, fn: fn}
	w.sub = store.NewSubscription(func() {
		m.removeDocWatcher(collection, w)
	})

	m.mu.Lock()
	m.docSubs[collection] = append(m.docSubs[collection], w)
	first := m.snapshotLocked(collection, id)
	m.mu.Unlock()

	w.sub.Deliver(func() { fn(first) })
	return w.sub, nil
}

// SubscribeToQuery implements store.Store. The first result set is
// delivered before SubscribeToQuery returns.
func (m *MemStore) SubscribeToQuery(q store.Query, fn store.QueryFunc) (*store.Subscription, error) {
	w := &queryWatcher{q: q, fn: fn}
	w.sub = store.NewSubscription(func() {
		m.removeQueryWatcher(q.Collection, w)
	})

	m.mu.Lock()
	m.querySub[q.Collection] = append(m.querySub[q.Collection], w)
	first := m.resultSetLocked(q)
	m.mu.Unlock()

	w.sub.Deliver(func() { fn(first) })
	return w.sub, nil
}

// AddDocument implements store.Store, assigning a fresh uuid as the id.
func (m *MemStore) AddDocument(_ context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.NewString()
	m.SetDocument(collection, id, fields)
	return id, nil
}

// SetDocument creates or replaces a document and fans the change out to
// every watcher of the collection.
func (m *MemStore) SetDocument(collection, id string, fields map[string]interface{}) {
	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]interface{})
	}
	m.data[collection][id] = copyFields(fields)
	m.mu.Unlock()

	m.notify(collection, id)
}

// DeleteDocument removes a document and notifies watchers.
func (m *MemStore) DeleteDocument(collection, id string) {
	m.mu.Lock()
	if coll, ok := m.data[collection]; ok {
		delete(coll, id)
	}
	m.mu.Unlock()

	m.notify(collection, id)
}

// Count returns the number of documents in a collection.
func (m *MemStore) Count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[collection])
}

// Documents returns a copy of every document in a collection.
func (m *MemStore) Documents(collection string) []store.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultSetLocked(store.Query{Collection: collection})
}

func (m *MemStore) notify(collection, id string) {
	m.mu.Lock()
	docSnap := m.snapshotLocked(collection, id)
	type docDelivery struct {
		w    *docWatcher
		snap store.Snapshot
	}
	type queryDelivery struct {
		w    *queryWatcher
		rows []store.Snapshot
	}
	var docs []docDelivery
	var queries []queryDelivery
	for _, w := range m.docSubs[collection] {
		if w.id == id {
			docs = append(docs, docDelivery{w, docSnap})
		}
	}
	for _, w := range m.querySub[collection] {
		queries = append(queries, queryDelivery{w, m.resultSetLocked(w.q)})
	}
	m.mu.Unlock()

	for _, d := range docs {
		d := d
		d.w.sub.Deliver(func() { d.w.fn(d.snap) })
	}
	for _, d := range queries {
		d := d
		d.w.sub.Deliver(func() { d.w.fn(d.rows) })
	}
}

func (m *MemStore) removeDocWatcher(collection string, target *docWatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.docSubs[collection]
	for i, w := range subs {
		if w == target {
			m.docSubs[collection] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (m *MemStore) removeQueryWatcher(collection string, target *queryWatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.querySub[collection]
	for i, w := range subs {
		if w == target {
			m.querySub[collection] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
