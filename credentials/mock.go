package credentials

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// MockStore is an in-memory Store for tests. It is exported so tests in
// other packages can use it.
type MockStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

// NewMockStore creates a mock store holding a copy of secrets.
func NewMockStore(secrets map[string]string) *MockStore {
	m := &MockStore{secrets: make(map[string]string, len(secrets))}
	for id, secret := range secrets {
		m.secrets[id] = secret
	}
	return m
}

func (m *MockStore) Get(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secret, ok := m.secrets[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return secret, nil
}

func (m *MockStore) Set(id, secret string) error {
	if id == "" {
		return errors.New("credential id must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[id] = secret
	return nil
}

func (m *MockStore) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.secrets))
	for id := range m.secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
