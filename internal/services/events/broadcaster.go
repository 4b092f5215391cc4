package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// Broadcaster publishes engine facts to Redis Pub/Sub, one channel per
// session, for SSE distribution to connected clients.
type Broadcaster struct {
	redisClient *redis.Client
	sessionID   uuid.UUID
	logger      *slog.Logger
}

var _ events.Emitter = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster bound to one session's channel.
func NewBroadcaster(redisClient *redis.Client, sessionID uuid.UUID, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		sessionID:   sessionID,
		logger:      logger,
	}
}

// Channel returns the Pub/Sub channel name for a session.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("narrative-facts:%s", sessionID.String())
}

// Emit publishes a fact to the session channel.
func (b *Broadcaster) Emit(ctx context.Context, fact events.Fact) error {
	data, err := fact.ToJSON()
	if err != nil {
		b.logger.Error("Failed to marshal fact", "error", err, "type", fact.Type)
		return fmt.Errorf("failed to marshal fact: %w", err)
	}

	channel := Channel(b.sessionID)
	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish fact", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish fact: %w", err)
	}

	b.logger.Debug("Fact published",
		"channel", channel,
		"fact_type", fact.Type,
	)
	return nil
}
