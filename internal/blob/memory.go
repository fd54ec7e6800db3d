package blob

import (
	"context"
	"sync"
)

// MemoryStorage is a Storage fake for tests. Uploaded payloads are kept by
// the returned URL; UploadErr, when set, fails every upload.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	UploadErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (m *MemoryStorage) Upload(ctx context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	url := "mem://" + name
	m.objects[url] = append([]byte(nil), data...)
	return url, nil
}

// Object returns the payload stored under url.
func (m *MemoryStorage) Object(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[url]
	return data, ok
}
