package relationship

import (
	"fmt"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// memberTrustShare is the fraction of a faction reputation change pushed
// onto each member NPC's individual trust.
const memberTrustShare = 0.3

// ModifyFactionReputation applies a reputation delta to a faction, clamps
// the result to [-100,100], re-derives the level, and appends a history
// entry. When cascade is true and |delta| >= 5 the change cascades one
// hop to related factions at damped factors; cascaded calls never cascade
// further. Member NPCs always receive 30% of the delta as
// non-propagating trust.
func (n *Network) ModifyFactionReputation(factionID string, delta int, reason string, cascade bool) (*FactionReputation, error) {
	profile, ok := n.factionProfiles[factionID]
	if !ok {
		return nil, ErrUnknownEntity
	}

	rep, err := n.Reputation(factionID)
	if err != nil {
		return nil, err
	}

	now := n.clock()
	old := rep.Reputation
	rep.Reputation = clamp(old+delta, ReputationMin, ReputationMax)
	rep.Level = GetReputationLevel(rep.Reputation)
	rep.LastChange = now
	rep.History = append(rep.History, Note{
		Timestamp: now,
		Delta:     delta,
		Reason:    reason,
		OldValue:  old,
		NewValue:  rep.Reputation,
	})

	n.logChange("faction", factionID, delta, reason)

	if cascade && abs(delta) >= cascadeTrigger {
		n.cascadeReputation(profile, delta, reason)
	}

	n.pushMemberTrust(profile, delta)

	n.publish(events.Fact{
		Type: events.TypeFactionUpdated,
		At:   now,
		Data: map[string]interface{}{
			"faction":    factionID,
			"reputation": rep.Reputation,
			"level":      string(rep.Level),
			"delta":      delta,
			"reason":     reason,
		},
	})

	return rep, nil
}

// cascadeReputation spreads a reputation change to the faction's declared
// relations at per-kind damping. One hop only.
func (n *Network) cascadeReputation(source *FactionProfile, delta int, reason string) {
	for _, rel := range source.Relations {
		factor := factionCascade(rel.Kind)
		spill := round(float64(delta) * factor)
		if abs(spill) < 1 {
			continue
		}
		spillReason := fmt.Sprintf("Cascade effect from %s: %s", source.Name, reason)
		if _, err := n.ModifyFactionReputation(rel.Target, spill, spillReason, false); err != nil {
			n.logger.Warn("Skipping reputation cascade to unknown faction",
				"source", source.ID,
				"target", rel.Target,
				"error", err)
		}
	}
}

// pushMemberTrust applies the member share of a reputation change to each
// member NPC's trust without further propagation.
func (n *Network) pushMemberTrust(faction *FactionProfile, delta int) {
	share := round(float64(delta) * memberTrustShare)
	if abs(share) < 1 {
		return
	}
	reason := fmt.Sprintf("Faction reputation change: %s", faction.Name)
	for _, npcID := range faction.Members {
		if _, err := n.ModifyTrust(npcID, share, reason, false); err != nil {
			n.logger.Warn("Skipping member trust update for unknown NPC",
				"faction", faction.ID,
				"npc", npcID,
				"error", err)
		}
	}
}
