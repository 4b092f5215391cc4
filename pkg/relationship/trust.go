package relationship

import (
	"fmt"
	"math"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// cascadeTrigger is the minimum absolute delta that spills over to
// related entities.
const cascadeTrigger = 5

// ModifyTrust applies a trust delta to an NPC, clamps the result to
// [0,100], appends a change note, and re-derives the relationship type.
// When propagate is true and |delta| >= 5 the change cascades one hop to
// the NPC's declared relations at damped factors; cascaded calls never
// propagate further.
//
// Returns the updated record, or ErrUnknownEntity for an unregistered
// NPC.
func (n *Network) ModifyTrust(npcID string, delta int, reason string, propagate bool) (*Relationship, error) {
	profile, ok := n.npcProfiles[npcID]
	if !ok {
		return nil, ErrUnknownEntity
	}

	rel, err := n.Individual(npcID)
	if err != nil {
		return nil, err
	}

	now := n.clock()
	old := rel.TrustLevel
	rel.TrustLevel = clamp(old+delta, TrustMin, TrustMax)
	rel.LastInteraction = now
	rel.Interactions++
	rel.Notes = append(rel.Notes, Note{
		Timestamp: now,
		Delta:     delta,
		Reason:    reason,
		OldValue:  old,
		NewValue:  rel.TrustLevel,
	})

	n.logChange("individual", npcID, delta, reason)

	if propagate && abs(delta) >= cascadeTrigger {
		n.propagateTrust(profile, delta, reason)
	}

	n.rederiveType(rel)

	n.publish(events.Fact{
		Type: events.TypeIndividualUpdated,
		At:   now,
		Data: map[string]interface{}{
			"npc":         npcID,
			"trust_level": rel.TrustLevel,
			"delta":       delta,
			"reason":      reason,
		},
	})

	return rel, nil
}

// propagateTrust applies damped deltas to the NPC's declared relations.
// Each spill-over call runs with propagation disabled, bounding the
// cascade to a single hop even on densely connected graphs.
func (n *Network) propagateTrust(source *NPCProfile, delta int, reason string) {
	for _, rel := range source.Relations {
		factor := npcCascade(rel.Kind)
		spill := round(float64(delta) * factor)
		if abs(spill) < 1 {
			continue
		}
		spillReason := fmt.Sprintf("Consequence of actions toward %s: %s", source.Name, reason)
		if _, err := n.ModifyTrust(rel.Target, spill, spillReason, false); err != nil {
			n.logger.Warn("Skipping trust cascade to unknown NPC",
				"source", source.ID,
				"target", rel.Target,
				"error", err)
		}
	}
}

// rederiveType recomputes the relationship type from the trust level and
// emits a transition fact if the threshold was crossed.
func (n *Network) rederiveType(rel *Relationship) {
	newType := DeriveRelType(rel.TrustLevel)
	if newType == rel.Type {
		return
	}
	oldType := rel.Type
	rel.Type = newType

	n.publish(events.Fact{
		Type: events.TypeRelTypeChanged,
		At:   n.clock(),
		Data: map[string]interface{}{
			"npc":         rel.NPCID,
			"old_type":    string(oldType),
			"new_type":    string(newType),
			"trust_level": rel.TrustLevel,
		},
	})
}

func abs(v int) int {
	return int(math.Abs(float64(v)))
}
