package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storyforge/narrative-engine/pkg/events"
	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

// How long a finished quest lingers before its eligibility for
// retirement is acted on. The delay is world time, drained by
// day-passed facts through the scheduler.
const retirementDelay = 24 * time.Hour

// Narrator turns facts into prose. It is an optional collaborator; an
// unavailable narrator degrades to a logged skip, never an engine error.
type Narrator interface {
	Narrate(ctx context.Context, fact events.Fact) (string, error)
}

// Engine is the orchestration layer: it consumes inbound facts, settles
// relationship state first, then fans out quest evolution, so every
// subscriber observes the same ordering.
type Engine struct {
	logger    *slog.Logger
	network   *relationship.Network
	graph     *quest.Graph
	scheduler *Scheduler
	clock     func() time.Time

	narrator      Narrator
	lastNarration string

	worldState map[string]string
}

// New wires an engine around a relationship network and quest graph.
// The network and graph should share the engine's emitter so emitted
// facts interleave in processing order.
func New(logger *slog.Logger, network *relationship.Network, graph *quest.Graph) *Engine {
	return &Engine{
		logger:     logger,
		network:    network,
		graph:      graph,
		scheduler:  NewScheduler(),
		clock:      time.Now,
		worldState: make(map[string]string),
	}
}

// WithClock overrides the time source for deterministic tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// WithNarrator attaches the optional narration collaborator.
func (e *Engine) WithNarrator(n Narrator) *Engine {
	e.narrator = n
	return e
}

// Network exposes the relationship network for the query surface.
func (e *Engine) Network() *relationship.Network { return e.network }

// Graph exposes the quest graph for the query surface.
func (e *Engine) Graph() *quest.Graph { return e.graph }

// Scheduler exposes pending deferred work for inspection.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// Attach subscribes the engine to the four inbound fact types on a bus.
func (e *Engine) Attach(bus *events.Bus) {
	for _, t := range []events.Type{
		events.TypeChoiceRecorded,
		events.TypeRelationshipChanged,
		events.TypeWorldEvent,
		events.TypeDayPassed,
	} {
		bus.Subscribe(t, func(fact events.Fact) {
			e.HandleFact(fact)
		})
	}
}

// HandleFact processes one inbound fact to completion. Relationship
// effects always settle before any quest evolves, so quests adapt to the
// post-change relationship state.
func (e *Engine) HandleFact(fact events.Fact) {
	switch fact.Type {
	case events.TypeChoiceRecorded:
		if fact.Choice != nil {
			e.handleChoice(fact.Choice)
		}
	case events.TypeRelationshipChanged:
		if fact.Relationship != nil {
			e.handleRelationshipChange(fact.Relationship)
		}
	case events.TypeWorldEvent:
		if fact.World != nil {
			e.handleWorldEvent(fact.World)
		}
	case events.TypeDayPassed:
		days := fact.Days
		if days <= 0 {
			days = 1
		}
		e.handleDaysPassed(days)
	default:
		e.logger.Debug("Ignoring fact", "type", fact.Type)
		return
	}

	e.narrate(fact)
}

// RecordChoice applies a player choice: declared consequences first,
// then evolution across every active quest.
func (e *Engine) RecordChoice(choice events.Choice) {
	e.HandleFact(events.Fact{Type: events.TypeChoiceRecorded, At: e.clock(), Choice: &choice})
}

// ChangeRelationship applies an externally-sourced trust delta and fans
// out evolution to quests that involve the NPC.
func (e *Engine) ChangeRelationship(change events.RelationshipChange) {
	e.HandleFact(events.Fact{Type: events.TypeRelationshipChanged, At: e.clock(), Relationship: &change})
}

// ApplyWorldEvent evolves quests touched by a world event's location or
// factions.
func (e *Engine) ApplyWorldEvent(event events.WorldEvent) {
	e.HandleFact(events.Fact{Type: events.TypeWorldEvent, At: e.clock(), World: &event})
}

// PassDays advances world time: relationship decay, time-passage
// evolution, then any deferred retirements that came due.
func (e *Engine) PassDays(days int) {
	e.HandleFact(events.Fact{Type: events.TypeDayPassed, At: e.clock(), Days: days})
}

func (e *Engine) handleChoice(choice *events.Choice) {
	reason := choice.Description
	if reason == "" {
		reason = "Player choice"
	}

	for _, c := range choice.Consequences {
		switch c.Kind {
		case "relationship":
			if _, err := e.network.ModifyTrust(c.Target, c.Delta, reason, true); err != nil {
				e.warnUnknown("trust", c.Target, err)
			}
		case "reputation":
			if _, err := e.network.ModifyFactionReputation(c.Target, c.Delta, reason, true); err != nil {
				e.warnUnknown("reputation", c.Target, err)
			}
		case "approval":
			if _, err := e.network.ModifyCompanionApproval(c.Target, c.Delta, reason, false); err != nil {
				e.warnUnknown("approval", c.Target, err)
			}
		}
	}

	trigger := quest.Trigger{Type: quest.TriggerPlayerChoice, Choice: choice}
	for _, q := range e.graph.ActiveQuests() {
		e.graph.EvolveQuest(q.ID, trigger)
	}
}

func (e *Engine) handleRelationshipChange(change *events.RelationshipChange) {
	reason := change.Reason
	if reason == "" {
		reason = "Relationship change"
	}
	if _, err := e.network.ModifyTrust(change.NPC, change.Delta, reason, true); err != nil {
		e.warnUnknown("trust", change.NPC, err)
	}

	trigger := quest.Trigger{Type: quest.TriggerRelationshipChange, Relationship: change}
	for _, q := range e.graph.ActiveQuests() {
		e.graph.EvolveQuest(q.ID, trigger)
	}
}

func (e *Engine) handleWorldEvent(event *events.WorldEvent) {
	trigger := quest.Trigger{Type: quest.TriggerWorldEvent, World: event}
	for _, q := range e.graph.ActiveQuests() {
		e.graph.EvolveQuest(q.ID, trigger)
	}
}

func (e *Engine) handleDaysPassed(days int) {
	now := e.clock()
	e.network.ProcessDecay(now)

	trigger := quest.Trigger{Type: quest.TriggerTimePassage, Days: days}
	for _, q := range e.graph.ActiveQuests() {
		e.graph.EvolveQuest(q.ID, trigger)
	}

	if fired := e.scheduler.FireDue(now); fired > 0 {
		e.logger.Info("Deferred tasks fired", "count", fired)
	}
}

// CompleteQuest finishes a quest, forwards its reward and consequence
// effects to the relationship network, and defers the retirement check.
func (e *Engine) CompleteQuest(questID string, data quest.CompletionData) *quest.Quest {
	q := e.graph.CompleteQuest(questID, data)
	if q == nil {
		return nil
	}

	e.applyEffects(q.Rewards, "Reward from "+q.Title)
	e.applyEffects(q.Consequences, "Consequence of "+q.Title)
	e.scheduleRetirementCheck(q.ID)
	return q
}

// FailQuest fails a quest, forwards its failure consequences, and
// defers the retirement check.
func (e *Engine) FailQuest(questID, reason string) *quest.Quest {
	q := e.graph.FailQuest(questID, reason)
	if q == nil {
		return nil
	}

	// The graph already raised the stakes of edge-connected quests;
	// quests with no connection to the failure stay as they were.
	e.applyEffects(q.FailureConsequences, "Consequence of failing "+q.Title)
	e.scheduleRetirementCheck(q.ID)
	return q
}

func (e *Engine) scheduleRetirementCheck(questID string) {
	at := e.clock().Add(retirementDelay)
	e.scheduler.Schedule("retire:"+questID, at, func() {
		if !e.graph.EligibleForRetirement(questID) {
			return
		}
		e.graph.RetireQuest(questID, quest.RetirementReasonAutomatic)
	})
}

func (e *Engine) applyEffects(effects []quest.Effect, reason string) {
	for _, eff := range effects {
		switch eff.Kind {
		case "relationship":
			if _, err := e.network.ModifyTrust(eff.Target, eff.Delta, reason, true); err != nil {
				e.warnUnknown("trust", eff.Target, err)
			}
		case "reputation":
			if _, err := e.network.ModifyFactionReputation(eff.Target, eff.Delta, reason, true); err != nil {
				e.warnUnknown("reputation", eff.Target, err)
			}
		case "approval":
			if _, err := e.network.ModifyCompanionApproval(eff.Target, eff.Delta, reason, false); err != nil {
				e.warnUnknown("approval", eff.Target, err)
			}
		case "world_state":
			if eff.Key != "" {
				e.worldState[eff.Key] = eff.Value
			}
		}
	}
}

// WorldState returns the value of a world flag set by quest effects.
func (e *Engine) WorldState(key string) (string, bool) {
	v, ok := e.worldState[key]
	return v, ok
}

func (e *Engine) warnUnknown(kind, target string, err error) {
	if errors.Is(err, relationship.ErrUnknownEntity) {
		e.logger.Warn("Skipping effect for unknown entity", "kind", kind, "target", target)
		return
	}
	e.logger.Warn("Effect failed", "kind", kind, "target", target, "error", err)
}

// LastNarration returns the most recent narrator output, if any.
func (e *Engine) LastNarration() string { return e.lastNarration }

func (e *Engine) narrate(fact events.Fact) {
	if e.narrator == nil {
		return
	}
	text, err := e.narrator.Narrate(context.Background(), fact)
	if err != nil {
		e.logger.Warn("Narrator unavailable, skipping", "type", fact.Type, "error", err)
		return
	}
	e.lastNarration = text
}
