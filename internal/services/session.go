package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/pkg/engine"
	"github.com/storyforge/narrative-engine/pkg/events"
	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

// SessionService builds engines from campaigns and persisted sessions.
// An engine is rebuilt per request from its snapshot; only the snapshot
// is shared state.
type SessionService struct {
	storage  storage.Storage
	logger   *slog.Logger
	narrator NarratorService
}

func NewSessionService(s storage.Storage, logger *slog.Logger) *SessionService {
	return &SessionService{
		storage: s,
		logger:  logger,
	}
}

// WithNarrator attaches the optional narration collaborator, passed
// through to every engine this service builds.
func (s *SessionService) WithNarrator(n NarratorService) *SessionService {
	s.narrator = n
	return s
}

// CreateSession starts a fresh playthrough of a campaign: the world
// directory is registered, opening quests are created, and the initial
// snapshot is persisted.
func (s *SessionService) CreateSession(ctx context.Context, campaignFile string) (*storage.Session, error) {
	c, err := s.storage.GetCampaign(ctx, campaignFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campaign %q: %w", campaignFile, err)
	}

	eng, _ := s.buildEngine(c.Name)
	c.Seed(eng.Network(), eng.Graph())

	session := &storage.Session{
		ID:        uuid.New(),
		Campaign:  campaignFile,
		Snapshot:  eng.Export(),
		CreatedAt: time.Now(),
	}
	if err := s.storage.SaveSession(ctx, session.ID, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Session created",
		"session_id", session.ID,
		"campaign", c.Name,
		"quests", len(c.Quests))
	return session, nil
}

// LoadEngine rebuilds a live engine from a persisted session. The
// returned bus already has the engine attached, so publishing inbound
// facts drives it directly.
func (s *SessionService) LoadEngine(ctx context.Context, session *storage.Session) (*engine.Engine, *events.Bus, error) {
	c, err := s.storage.GetCampaign(ctx, session.Campaign)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load campaign for session %s: %w", session.ID, err)
	}

	eng, bus := s.buildEngine(c.Name)
	c.SeedDirectory(eng.Network())
	if err := eng.Import(session.Snapshot); err != nil {
		return nil, nil, fmt.Errorf("failed to import snapshot for session %s: %w", session.ID, err)
	}
	return eng, bus, nil
}

func (s *SessionService) buildEngine(campaignName string) (*engine.Engine, *events.Bus) {
	log := s.logger.With("campaign", campaignName)
	bus := events.NewBus()

	network := relationship.NewNetwork(relationship.DefaultConfig(), log).WithEmitter(bus)
	graph := quest.NewGraph(log).WithEmitter(bus)

	eng := engine.New(log, network, graph)
	if s.narrator != nil {
		eng.WithNarrator(s.narrator)
	}
	eng.Attach(bus)
	return eng, bus
}
