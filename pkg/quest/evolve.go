package quest

import (
	"slices"
	"strings"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// TriggerType identifies what caused a quest to evolve.
type TriggerType string

const (
	TriggerPlayerChoice       TriggerType = "player_choice"
	TriggerRelationshipChange TriggerType = "relationship_change"
	TriggerWorldEvent         TriggerType = "world_event"
	TriggerQuestFailure       TriggerType = "quest_failure"
	TriggerTimePassage        TriggerType = "time_passage"
	TriggerFactionChange      TriggerType = "faction_change"
)

// FactionChange reports a faction reputation delta for faction_change
// triggers.
type FactionChange struct {
	Faction string `json:"faction"`
	Delta   int    `json:"delta"`
}

// Trigger carries one evolution cause. Exactly one payload field matching
// Type is set.
type Trigger struct {
	Type         TriggerType                `json:"type"`
	Choice       *events.Choice             `json:"choice,omitempty"`
	Relationship *events.RelationshipChange `json:"relationship,omitempty"`
	World        *events.WorldEvent         `json:"world,omitempty"`
	Days         int                        `json:"days,omitempty"`
	Faction      *FactionChange             `json:"faction,omitempty"`
}

// Moral weight magnitude that unlocks paragon or renegade paths.
const moralWeightThreshold = 2

// EvolveQuest dispatches a trigger to the matching handler. If the quest
// changed, an evolution-history entry with the prior state is appended,
// the adaptation is described, and a quest:evolved fact is emitted.
//
// Unknown or non-active quest IDs are a non-fatal no-op returning nil,
// matching the iteration-heavy call pattern where subscribers blindly
// attempt evolution on every active quest.
func (g *Graph) EvolveQuest(questID string, trigger Trigger) *Quest {
	q, ok := g.active[questID]
	if !ok {
		return nil
	}

	prior := snapshotPrior(q)
	evolved := false

	switch trigger.Type {
	case TriggerPlayerChoice:
		if trigger.Choice != nil {
			evolved = g.evolveFromChoice(q, trigger.Choice)
		}
	case TriggerRelationshipChange:
		if trigger.Relationship != nil {
			evolved = g.evolveFromRelationship(q, trigger.Relationship)
		}
	case TriggerWorldEvent:
		if trigger.World != nil {
			evolved = g.evolveFromWorldEvent(q, trigger.World)
		}
	case TriggerQuestFailure:
		evolved = g.evolveFromFailure(q)
	case TriggerTimePassage:
		evolved = g.evolveFromTime(q, trigger.Days)
	case TriggerFactionChange:
		if trigger.Faction != nil {
			evolved = g.evolveFromFaction(q, trigger.Faction)
		}
	}

	if !evolved {
		return nil
	}

	g.recordEvolution(q, trigger.Type, prior, describeEvolution(q, trigger))
	return q
}

// evolveFromChoice adapts a quest to a player choice that references its
// NPCs or themes.
func (g *Graph) evolveFromChoice(q *Quest, choice *events.Choice) bool {
	evolved := false

	for _, npc := range choice.Characters {
		if !slices.Contains(q.Context.NPCs, npc) {
			continue
		}
		for _, consequence := range choice.Consequences {
			if consequence.Kind != "relationship" || consequence.Target != npc {
				continue
			}
			if g.adaptToRelationship(q, npc, consequence.Delta) {
				evolved = true
			}
		}
	}

	if abs(choice.MoralWeight) >= moralWeightThreshold {
		if g.adaptToMorality(q, choice.MoralWeight) {
			evolved = true
		}
	}

	return evolved
}

// evolveFromRelationship adapts a quest whose context lists the affected
// NPC.
func (g *Graph) evolveFromRelationship(q *Quest, change *events.RelationshipChange) bool {
	if !slices.Contains(q.Context.NPCs, change.NPC) {
		return false
	}
	return g.adaptToRelationship(q, change.NPC, change.Delta)
}

// evolveFromWorldEvent raises stakes when the event hits the quest's
// location and folds the event kind into the themes when it hits one of
// the quest's factions.
func (g *Graph) evolveFromWorldEvent(q *Quest, event *events.WorldEvent) bool {
	evolved := false

	if event.Location != "" && event.Location == q.Context.Location {
		if q.Context.Stakes != StakesHigh {
			q.Context.Stakes = StakesHigh
			evolved = true
		}
	}

	for _, faction := range event.AffectedFactions {
		if slices.Contains(q.Context.Factions, faction) && event.Kind != "" {
			if !slices.Contains(q.Context.Themes, event.Kind) {
				q.Context.Themes = append(q.Context.Themes, event.Kind)
				evolved = true
			}
			break
		}
	}

	return evolved
}

// evolveFromFailure raises the stakes of a quest entangled with a failed
// one.
func (g *Graph) evolveFromFailure(q *Quest) bool {
	if q.Context.Stakes == StakesHigh {
		return false
	}
	q.Context.Stakes = StakesHigh
	return true
}

// evolveFromTime adds urgency to high-stakes quests left to simmer.
func (g *Graph) evolveFromTime(q *Quest, days int) bool {
	if days <= 0 || q.Context.Stakes != StakesHigh {
		return false
	}
	if slices.Contains(q.Context.Themes, "urgency") {
		return false
	}
	q.Context.Themes = append(q.Context.Themes, "urgency")
	return true
}

// evolveFromFaction mirrors the relationship adaptation at faction scope.
func (g *Graph) evolveFromFaction(q *Quest, change *FactionChange) bool {
	if !slices.Contains(q.Context.Factions, change.Faction) {
		return false
	}
	return g.adaptPaths(q, "good_standing_"+change.Faction, "hostile_standing_"+change.Faction, change.Delta)
}

// adaptToRelationship adds a cooperative path on a positive delta and
// swaps cooperative for confrontational on a negative one.
func (g *Graph) adaptToRelationship(q *Quest, npc string, delta int) bool {
	return g.adaptPaths(q, "good_relationship_"+npc, "hostile_relationship_"+npc, delta)
}

// adaptPaths is the shared positive/negative path adjustment for
// relationship and faction deltas.
func (g *Graph) adaptPaths(q *Quest, goodReq, hostileReq string, delta int) bool {
	if delta > 0 {
		if hasArchetype(q.SolutionPaths, ArchDiplomatic) {
			return false
		}
		q.SolutionPaths = append(q.SolutionPaths, SolutionPath{
			Archetype:    ArchDiplomatic,
			Methods:      []string{"cooperative_approach"},
			Requirements: []string{goodReq},
			Viability:    0.8,
			Unlocked:     true,
		})
		return true
	}

	kept := q.SolutionPaths[:0]
	for _, p := range q.SolutionPaths {
		if p.Archetype == ArchDiplomatic && slices.Contains(p.Requirements, goodReq) {
			continue
		}
		kept = append(kept, p)
	}
	q.SolutionPaths = kept
	q.SolutionPaths = append(q.SolutionPaths, SolutionPath{
		Archetype:    ArchCombat,
		Methods:      []string{"intimidation", "force"},
		Requirements: []string{hostileReq},
		Viability:    0.6,
		Unlocked:     true,
	})
	return true
}

// adaptToMorality unlocks a paragon path for strongly good choices and a
// renegade path for strongly evil ones.
func (g *Graph) adaptToMorality(q *Quest, moralWeight int) bool {
	if moralWeight >= moralWeightThreshold {
		q.SolutionPaths = append(q.SolutionPaths, SolutionPath{
			Archetype:    ArchDiplomatic,
			Methods:      []string{"heroic_sacrifice", "pure_good"},
			Requirements: []string{"high_morality", "reputation_good"},
			Viability:    0.9,
			Unlocked:     true,
		})
		return true
	}
	if moralWeight <= -moralWeightThreshold {
		q.SolutionPaths = append(q.SolutionPaths, SolutionPath{
			Archetype:    ArchCombat,
			Methods:      []string{"ruthless_efficiency", "ends_justify_means"},
			Requirements: []string{"low_morality", "reputation_evil"},
			Viability:    0.9,
			Unlocked:     true,
		})
		return true
	}
	return false
}

// recordEvolution appends the audit entry and adaptation, emits
// quest:evolved, and re-checks whether the change unlocks an emergent
// opportunity.
func (g *Graph) recordEvolution(q *Quest, triggerType TriggerType, prior PriorState, description string) {
	now := g.clock()
	q.LastModified = now
	q.EvolutionHistory = append(q.EvolutionHistory, EvolutionEvent{
		Timestamp:   now,
		TriggerType: triggerType,
		Prior:       prior,
	})
	q.Adaptations = append(q.Adaptations, Adaptation{
		Timestamp:   now,
		TriggerType: triggerType,
		Description: description,
	})

	g.publish(events.Fact{
		Type: events.TypeQuestEvolved,
		At:   now,
		Data: map[string]interface{}{
			"quest":       q.ID,
			"title":       q.Title,
			"trigger":     string(triggerType),
			"description": description,
		},
	})

	g.checkEmergentOpportunity(q)
}

// snapshotPrior captures the mutable slices of a quest before a handler
// touches them.
func snapshotPrior(q *Quest) PriorState {
	return PriorState{
		Objectives:    append([]string(nil), q.Objectives...),
		SolutionPaths: append([]SolutionPath(nil), q.SolutionPaths...),
		Context:       q.Context.clone(),
	}
}

func describeEvolution(q *Quest, trigger Trigger) string {
	switch trigger.Type {
	case TriggerPlayerChoice:
		if trigger.Choice != nil && len(trigger.Choice.Categories) > 0 {
			return "Quest adapted to player's " + strings.Join(trigger.Choice.Categories, ", ") + " choice"
		}
		return "Quest adapted to player choice"
	case TriggerRelationshipChange:
		if trigger.Relationship != nil {
			return "Quest modified due to changing relationship with " + trigger.Relationship.NPC
		}
		return "Quest modified due to relationship change"
	case TriggerWorldEvent:
		if trigger.World != nil {
			return "Quest evolved in response to world event: " + trigger.World.Kind
		}
		return "Quest evolved in response to a world event"
	default:
		return "Quest evolved due to " + string(trigger.Type)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
