package mocks

import "sync"

// CredentialStoreMock records stored keys.
type CredentialStoreMock struct {
	GetApiKeyFunc   func() (string, error)
	StoreApiKeyFunc func(apiKey string) error

	mu     sync.Mutex
	Stored []string
}

func (m *CredentialStoreMock) GetApiKey() (string, error) {
	if m.GetApiKeyFunc != nil {
		return m.GetApiKeyFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Stored) == 0 {
		return "", nil
	}
	return m.Stored[len(m.Stored)-1], nil
}

func (m *CredentialStoreMock) StoreApiKey(apiKey string) error {
	m.mu.Lock()
	m.Stored = append(m.Stored, apiKey)
	m.mu.Unlock()
	if m.StoreApiKeyFunc != nil {
		return m.StoreApiKeyFunc(apiKey)
	}
	return nil
}

func (m *CredentialStoreMock) StoredKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Stored...)
}
