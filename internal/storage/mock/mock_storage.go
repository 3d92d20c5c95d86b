package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	storagetypes "github.com/kmolski/filevault/internal/storage/types"
)

// MockFileStore implements the FileStore interface for testing
type MockFileStore struct {
	mu       sync.RWMutex
	files    map[string][]byte
	StoreErr error
	OpenErr  error
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{
		files: make(map[string][]byte),
	}
}

func (m *MockFileStore) Store(_ context.Context, name string, data []byte) error {
	if m.StoreErr != nil {
		return m.StoreErr
	}
	cleaned, err := storagetypes.CleanName(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleaned] = bytes.Clone(data)
	return nil
}

func (m *MockFileStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	cleaned, err := storagetypes.CleanName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[cleaned]; ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil, fmt.Errorf("%w: %s", storagetypes.ErrNotFound, name)
}

// Get returns the stored bytes without going through Open.
func (m *MockFileStore) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	return data, ok
}

func (m *MockFileStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
