package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storyforge/narrative-engine/internal/services"
	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/pkg/queue"
)

// FactProcessor applies one queued fact to its session's engine. It is
// used by both the HTTP handler (synchronously) and the worker
// (asynchronously): rebuild the engine from the snapshot, process the
// fact, persist the new snapshot.
type FactProcessor struct {
	storage  storage.Storage
	sessions *services.SessionService
	logger   *slog.Logger
}

// NewFactProcessor creates a new fact processor
func NewFactProcessor(s storage.Storage, sessions *services.SessionService, logger *slog.Logger) *FactProcessor {
	return &FactProcessor{
		storage:  s,
		sessions: sessions,
		logger:   logger,
	}
}

// Process applies the request's fact and persists the resulting state.
func (p *FactProcessor) Process(ctx context.Context, req *queue.Request) error {
	session, err := p.storage.LoadSession(ctx, req.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", req.SessionID.String())
	}

	eng, _, err := p.sessions.LoadEngine(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	eng.HandleFact(req.Fact)

	session.Snapshot = eng.Export()
	if req.Fact.Days > 0 {
		session.WorldDay += req.Fact.Days
	}
	if err := p.storage.SaveSession(ctx, req.SessionID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	p.logger.Debug("Fact applied",
		"session_id", req.SessionID,
		"fact_type", req.Fact.Type,
		"world_day", session.WorldDay)
	return nil
}
