package document

import (
	"context"
	"sync"
)

// Blob keys used by the core. The marketplace document and the session
// side-document are persisted independently.
const (
	KeyState   = "state"
	KeySession = "session"
)

// Backend stores opaque blobs by key. It is the localStorage analog of
// the browser original.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type memoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBackend returns a process-local Backend for tests and demos.
func NewMemoryBackend() Backend {
	return &memoryBackend{blobs: map[string][]byte{}}
}

func (m *memoryBackend) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)
	return cpy, true, nil
}

func (m *memoryBackend) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := make([]byte, len(data))
	copy(cpy, data)
	m.blobs[key] = cpy
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
