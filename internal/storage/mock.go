package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/pkg/campaign"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	campaigns map[string]*campaign.Campaign
	pingError error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions:  make(map[uuid.UUID]*Session),
		campaigns: make(map[string]*campaign.Campaign),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, s *Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

// LoadSession returns nil for not found, matching RedisStorage.
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[id]
	if !exists {
		return nil, nil
	}
	return s, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) ListCampaigns(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string)
	for filename, c := range m.campaigns {
		result[c.Name] = filename
	}
	return result, nil
}

func (m *MockStorage) GetCampaign(ctx context.Context, filename string) (*campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.campaigns[filename]
	if !exists {
		return nil, errors.New("campaign not found")
	}
	return c, nil
}

// AddCampaign adds a campaign to the mock storage (for testing)
func (m *MockStorage) AddCampaign(filename string, c *campaign.Campaign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[filename] = c
}
