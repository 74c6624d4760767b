package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

// MockKVStore is a mock implementation of domain.KVStore for testing.
type MockKVStore struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Puts   int
	GetErr error
	PutErr error
}

func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	payload, ok := m.Data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), payload...), nil
}

func (m *MockKVStore) Put(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	if m.Data == nil {
		m.Data = make(map[string][]byte)
	}
	m.Data[key] = append([]byte(nil), payload...)
	m.Puts++
	return nil
}

// MockBlobStore is a mock implementation of domain.BlobStore for testing.
type MockBlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	BaseURL string
	PutErr  error
}

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", 0, m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if m.Objects == nil {
		m.Objects = make(map[string][]byte)
	}
	m.Objects[key] = data
	return m.BaseURL + "/" + key, int64(len(data)), nil
}

// MockPublisher records published lead events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []domain.LeadEvent
}

func (m *MockPublisher) Publish(event domain.LeadEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// MockIdentityResolver resolves keys from a fixed map.
type MockIdentityResolver struct {
	Keys map[string]string
	Err  error
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, key string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	user, ok := m.Keys[key]
	if !ok {
		return "", domain.ErrUnknownAPIKey
	}
	return user, nil
}
