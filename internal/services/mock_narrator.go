package services

import (
	"context"
	"sync"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// MockNarrator is a mock implementation of NarratorService for testing
type MockNarrator struct {
	NarrateFunc func(ctx context.Context, fact events.Fact) (string, error)

	// Track calls for testing
	NarrateCalls []events.Fact

	mu sync.Mutex
}

// NewMockNarrator creates a new mock narrator
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{
		NarrateCalls: make([]events.Fact, 0),
	}
}

// Narrate mocks narration, echoing the fact type by default
func (m *MockNarrator) Narrate(ctx context.Context, fact events.Fact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NarrateCalls = append(m.NarrateCalls, fact)

	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, fact)
	}
	return "The story continues after " + string(fact.Type), nil
}
