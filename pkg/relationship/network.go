package relationship

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// ErrUnknownEntity is returned when an operation references an NPC,
// faction, or companion that has not been registered. Callers iterate
// opportunistically over entities, so this is non-fatal: log and skip.
var ErrUnknownEntity = errors.New("unknown entity")

const historyLimit = 1000

// Config holds the tunable decay parameters.
type Config struct {
	// DecayThresholdDays is how long a relationship can go without
	// interaction before trust starts drifting back to neutral.
	// Companions get double this.
	DecayThresholdDays float64
	// DecayRate is points of drift per day beyond the threshold.
	DecayRate float64
}

// DefaultConfig returns the standard decay tuning.
func DefaultConfig() Config {
	return Config{
		DecayThresholdDays: 7,
		DecayRate:          1,
	}
}

// Network owns the three parallel relationship graphs: individual NPC
// trust, faction reputation, and companion approval. All mutation goes
// through its public operations; cross-system effects are delivered as
// emitted facts, never by direct reference.
//
// The network is single-owner: the orchestration layer processes one fact
// to completion before the next, so no internal locking is needed.
type Network struct {
	cfg    Config
	logger *slog.Logger
	emit   events.Emitter
	clock  func() time.Time

	npcProfiles     map[string]*NPCProfile
	factionProfiles map[string]*FactionProfile

	individual map[string]*Relationship
	factions   map[string]*FactionReputation
	companions map[string]*Companion
	history    []HistoryEntry
}

// NewNetwork creates an empty relationship network.
func NewNetwork(cfg Config, logger *slog.Logger) *Network {
	return &Network{
		cfg:             cfg,
		logger:          logger,
		clock:           time.Now,
		npcProfiles:     make(map[string]*NPCProfile),
		factionProfiles: make(map[string]*FactionProfile),
		individual:      make(map[string]*Relationship),
		factions:        make(map[string]*FactionReputation),
		companions:      make(map[string]*Companion),
	}
}

// WithEmitter sets the fact emitter. Returns the network for chaining.
func (n *Network) WithEmitter(emit events.Emitter) *Network {
	n.emit = emit
	return n
}

// WithClock overrides the time source, letting tests drive decay and
// interaction timestamps deterministically.
func (n *Network) WithClock(clock func() time.Time) *Network {
	n.clock = clock
	return n
}

// RegisterNPC adds or replaces an NPC directory entry.
func (n *Network) RegisterNPC(profile NPCProfile) {
	p := profile
	n.npcProfiles[p.ID] = &p
}

// RegisterFaction adds or replaces a faction directory entry.
func (n *Network) RegisterFaction(profile FactionProfile) {
	p := profile
	n.factionProfiles[p.ID] = &p
}

// RegisterCompanion marks an NPC as a companion, creating its approval
// record. Romance availability is part of the companion's definition.
func (n *Network) RegisterCompanion(companionID string, romanceAvailable bool) *Companion {
	c, ok := n.companions[companionID]
	if !ok {
		c = newCompanion(companionID)
		n.companions[companionID] = c
	}
	c.Romance.Available = romanceAvailable
	return c
}

// NPC returns the directory entry for an NPC, if registered.
func (n *Network) NPC(npcID string) (*NPCProfile, bool) {
	p, ok := n.npcProfiles[npcID]
	return p, ok
}

// Faction returns the directory entry for a faction, if registered.
func (n *Network) Faction(factionID string) (*FactionProfile, bool) {
	p, ok := n.factionProfiles[factionID]
	return p, ok
}

// Individual returns the trust record for an NPC, creating the default
// neutral record if none exists yet. The NPC must be registered.
func (n *Network) Individual(npcID string) (*Relationship, error) {
	if _, ok := n.npcProfiles[npcID]; !ok {
		return nil, ErrUnknownEntity
	}
	rel, ok := n.individual[npcID]
	if !ok {
		rel = newRelationship(npcID)
		n.individual[npcID] = rel
	}
	return rel, nil
}

// Reputation returns the reputation record for a faction, creating the
// default neutral record if none exists yet.
func (n *Network) Reputation(factionID string) (*FactionReputation, error) {
	if _, ok := n.factionProfiles[factionID]; !ok {
		return nil, ErrUnknownEntity
	}
	rep, ok := n.factions[factionID]
	if !ok {
		rep = newFactionReputation(factionID)
		n.factions[factionID] = rep
	}
	return rep, nil
}

// Approval returns the approval record for a companion.
func (n *Network) Approval(companionID string) (*Companion, error) {
	c, ok := n.companions[companionID]
	if !ok {
		return nil, ErrUnknownEntity
	}
	return c, nil
}

// History returns the most recent relationship changes, newest first,
// optionally filtered by kind and target. limit <= 0 returns everything.
func (n *Network) History(kind, targetID string, limit int) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(n.history))
	for _, entry := range n.history {
		if kind != "" && entry.Kind != kind {
			continue
		}
		if targetID != "" && entry.TargetID != targetID {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// logChange prepends an entry to the global history ring.
func (n *Network) logChange(kind, targetID string, delta int, reason string) {
	entry := HistoryEntry{
		Kind:      kind,
		TargetID:  targetID,
		Delta:     delta,
		Reason:    reason,
		Timestamp: n.clock(),
	}
	n.history = append([]HistoryEntry{entry}, n.history...)
	if len(n.history) > historyLimit {
		n.history = n.history[:historyLimit]
	}
}

// publish sends a fact to the emitter, degrading to a logged skip when
// the collaborator is unavailable.
func (n *Network) publish(fact events.Fact) {
	if n.emit == nil {
		return
	}
	if err := n.emit.Emit(context.Background(), fact); err != nil {
		n.logger.Warn("Failed to publish relationship fact",
			"type", fact.Type,
			"error", err)
	}
}
