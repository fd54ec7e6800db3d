package localstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/autocheckhq/autocheck/internal/common"
)

// MemoryKV is an in-memory KV with the same quota semantics as SQLiteKV.
// Used in tests and as a throwaway store when no db path is configured.
type MemoryKV struct {
	mu    sync.Mutex
	data  map[string]string
	quota int64

	// SetErr, when non-nil, is returned by every Set. Test hook.
	SetErr error
}

func NewMemoryKV(quotaBytes int64) *MemoryKV {
	return &MemoryKV{data: make(map[string]string), quota: quotaBytes}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}

	if m.quota > 0 {
		var others int64
		for k, v := range m.data {
			if k != key {
				others += int64(len(v))
			}
		}
		if others+int64(len(value)) > m.quota {
			return fmt.Errorf("writing %q (%d bytes): %w", key, len(value), common.ErrStorageQuota)
		}
	}

	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
