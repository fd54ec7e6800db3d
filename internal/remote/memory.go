package remote

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used in tests. Error fields, when set,
// are returned by the corresponding method to simulate an unreachable remote.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string][]byte // tenant/collection -> id -> doc

	GetErr    error
	SaveErr   error
	DeleteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) bucket(tenantID, collection string) map[string][]byte {
	key := tenantID + "/" + collection
	if m.data[key] == nil {
		m.data[key] = make(map[string][]byte)
	}
	return m.data[key]
}

func (m *MemoryStore) GetCollection(ctx context.Context, tenantID, collection string) ([]Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	b := m.bucket(tenantID, collection)
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Doc, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Doc{ID: id, Data: b[id]})
	}
	return docs, nil
}

func (m *MemoryStore) SaveItem(ctx context.Context, tenantID, collection, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.bucket(tenantID, collection)[id] = data
	return nil
}

func (m *MemoryStore) DeleteItem(ctx context.Context, tenantID, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.bucket(tenantID, collection), id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
