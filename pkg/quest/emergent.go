package quest

import (
	"slices"

	"github.com/storyforge/narrative-engine/pkg/events"
)

const (
	emergentFlexibility  = 0.9
	emergentAdaptability = 0.9
	emergentPotential    = 0.8

	// Adaptation count and potential a quest needs before its ripples
	// spawn a follow-on opportunity of their own.
	spawnPotentialFloor  = 0.7
	spawnAdaptationFloor = 3

	spawnedTag = "opportunity_spawned"
)

// generateFailureOpportunities turns a failed quest into new narrative
// hooks. A redemption arc is always offered; a damage-control quest only
// exists when the failure left consequences to contain, and that one
// starts immediately.
func (g *Graph) generateFailureOpportunities(failed *Quest) {
	redemption := Spec{
		Title:       "Redemption: " + failed.Title,
		Description: "A chance to make right what went wrong in " + failed.Title,
		Objectives:  []string{"Address the failure of " + failed.Title},
		Context: Context{
			Location: failed.Context.Location,
			NPCs:     append([]string(nil), failed.Context.NPCs...),
			Factions: append([]string(nil), failed.Context.Factions...),
			Themes:   append([]string{"redemption", "second_chance"}, failed.Context.Themes...),
			Stakes:   failed.Context.Stakes,
		},
	}
	g.createEmergentQuest(redemption, failed.ID, false)

	if len(failed.FailureConsequences) == 0 {
		return
	}
	themes := []string{"consequences", "damage_control"}
	damageControl := Spec{
		Title:       "Damage Control",
		Description: "Contain the fallout from the failure of " + failed.Title,
		Objectives:  []string{"Mitigate the consequences of " + failed.Title},
		Context: Context{
			Location: failed.Context.Location,
			NPCs:     append([]string(nil), failed.Context.NPCs...),
			Factions: append([]string(nil), failed.Context.Factions...),
			Themes:   themes,
			Stakes:   StakesHigh,
		},
	}
	g.createEmergentQuest(damageControl, failed.ID, true)
}

// checkEmergentOpportunity spawns at most one follow-on quest from a
// quest whose adaptations show the story has outgrown it.
func (g *Graph) checkEmergentOpportunity(q *Quest) {
	if q.EmergentPotential < spawnPotentialFloor {
		return
	}
	if len(q.Adaptations) < spawnAdaptationFloor {
		return
	}
	if slices.Contains(q.Tags, spawnedTag) {
		return
	}
	q.Tags = append(q.Tags, spawnedTag)

	spec := Spec{
		Title:       "Ripples of " + q.Title,
		Description: "Consequences of the shifting course of " + q.Title,
		Context: Context{
			Location: q.Context.Location,
			NPCs:     append([]string(nil), q.Context.NPCs...),
			Factions: append([]string(nil), q.Context.Factions...),
			Themes:   append([]string(nil), q.Context.Themes...),
			Stakes:   q.Context.Stakes,
		},
	}
	g.createEmergentQuest(spec, q.ID, false)
}

// createEmergentQuest builds an emergent quest from the source's fallout.
// Immediate quests activate on the spot; the rest wait in the pending
// bucket for ActivateOpportunity.
func (g *Graph) createEmergentQuest(spec Spec, sourceID string, immediate bool) *Quest {
	now := g.clock()

	ctx := spec.Context.clone()
	if ctx.Stakes == "" {
		ctx.Stakes = StakesMedium
	}

	q := &Quest{
		ID:                g.newID(),
		Title:             spec.Title,
		Description:       spec.Description,
		Type:              TypeEmergent,
		Status:            StatusActive,
		Objectives:        append([]string(nil), spec.Objectives...),
		Context:           ctx,
		Flexibility:       emergentFlexibility,
		Adaptability:      emergentAdaptability,
		EmergentPotential: emergentPotential,
		SolutionPaths:     generateSolutionPaths(ctx),
		EmergentSource:    sourceID,
		CreatedAt:         now,
		LastModified:      now,
	}

	if !immediate {
		q.Status = StatusPending
		g.pending[q.ID] = q
		g.logger.Info("Emergent opportunity pending",
			"quest", q.ID,
			"title", q.Title,
			"source", sourceID)
		return q
	}

	g.active[q.ID] = q
	g.discoverConnections(q)

	g.logger.Info("Emergent quest activated",
		"quest", q.ID,
		"title", q.Title,
		"source", sourceID)

	g.publish(events.Fact{
		Type: events.TypeQuestCreated,
		At:   now,
		Data: map[string]interface{}{
			"quest":  q.ID,
			"title":  q.Title,
			"type":   string(q.Type),
			"source": sourceID,
		},
	})

	return q
}

// ActivateOpportunity promotes a pending emergent quest to active.
// Unknown IDs are a no-op returning nil.
func (g *Graph) ActivateOpportunity(questID string) *Quest {
	q, ok := g.pending[questID]
	if !ok {
		g.logger.Warn("Activation requested for unknown opportunity", "quest", questID)
		return nil
	}

	now := g.clock()
	delete(g.pending, questID)
	q.Status = StatusActive
	q.LastModified = now
	g.active[q.ID] = q
	g.discoverConnections(q)

	g.logger.Info("Emergent quest activated",
		"quest", q.ID,
		"title", q.Title,
		"source", q.EmergentSource)

	g.publish(events.Fact{
		Type: events.TypeQuestCreated,
		At:   now,
		Data: map[string]interface{}{
			"quest":  q.ID,
			"title":  q.Title,
			"type":   string(q.Type),
			"source": q.EmergentSource,
		},
	})

	return q
}
