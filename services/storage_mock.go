package services

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockStorage is an in-memory Storage for testing
type MockStorage struct {
	files map[string][]byte
	mu    sync.RWMutex

	// PutErr and DeleteErr, when set, are returned by Put and Delete
	PutErr    error
	DeleteErr error
}

// NewMockStorage creates an empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage backend
func (m *MockStorage) SetAsMockForTesting() {
	SetStorage(m)
}

func (m *MockStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()
	return nil
}

func (m *MockStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok, nil
}

func (m *MockStorage) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

func (m *MockStorage) URL(key string) string {
	return "https://test-bucket.s3.us-east-1.amazonaws.com/" + key
}

// Files returns a copy of the stored objects
func (m *MockStorage) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// FileExists checks if key is stored
func (m *MockStorage) FileExists(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}
