package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/pkg/campaign"
	"github.com/storyforge/narrative-engine/pkg/engine"
)

// Session is the persisted form of one narrative playthrough: which
// campaign it runs, how far world time has advanced, and the full engine
// snapshot.
type Session struct {
	ID       uuid.UUID `json:"id"`
	Campaign string    `json:"campaign"`
	WorldDay int       `json:"world_day"`

	Snapshot engine.Snapshot `json:"snapshot"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage defines a unified interface for all storage operations.
// Sessions are Redis-backed; campaigns are static world data loaded
// from the filesystem.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations (Redis-backed)
	SaveSession(ctx context.Context, id uuid.UUID, s *Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Campaign operations (filesystem-backed)
	ListCampaigns(ctx context.Context) (map[string]string, error)
	GetCampaign(ctx context.Context, filename string) (*campaign.Campaign, error)
}
