package relationship

import (
	"time"
)

const hoursPerDay = 24

// decayMultiplier scales decay speed by relationship standing: hostility
// cools off quickly, close bonds barely fade. An active romance decays
// slowest of all.
func decayMultiplier(rel *Relationship) float64 {
	if rel.Romance.Active {
		return 0.1
	}
	switch rel.Type {
	case RelEnemy:
		return 2.0
	case RelFriendly:
		return 0.5
	case RelAlly, RelDevoted:
		return 0.3
	default:
		return 1.0
	}
}

// ProcessDecay drifts every stale relationship and companion approval
// back toward neutral. A record is stale once its last interaction is
// older than the configured threshold (doubled for companions). The
// drift is proportional to the days beyond the threshold, floor
// truncated, and never crosses neutral.
func (n *Network) ProcessDecay(now time.Time) {
	for npcID, rel := range n.individual {
		if rel.LastInteraction.IsZero() {
			continue
		}
		days := now.Sub(rel.LastInteraction).Hours() / hoursPerDay
		if days <= n.cfg.DecayThresholdDays {
			continue
		}
		amount := int((days - n.cfg.DecayThresholdDays) * n.cfg.DecayRate * decayMultiplier(rel))
		if amount <= 0 {
			continue
		}
		n.decayTrust(npcID, rel, amount, now)
	}

	companionThreshold := n.cfg.DecayThresholdDays * 2
	for _, c := range n.companions {
		if c.LastInteraction.IsZero() {
			continue
		}
		days := now.Sub(c.LastInteraction).Hours() / hoursPerDay
		if days <= companionThreshold {
			continue
		}
		amount := int((days - companionThreshold) * 0.5)
		if amount <= 0 {
			continue
		}
		delta := towardNeutral(c.Approval, amount)
		if delta == 0 {
			continue
		}
		n.applyApproval(c, delta, "Natural decay from lack of interaction", true)
	}
}

// decayTrust moves a trust record toward neutral without touching the
// interaction timestamp, so decay keeps compounding until the player
// re-engages.
func (n *Network) decayTrust(npcID string, rel *Relationship, amount int, now time.Time) {
	delta := towardNeutral(rel.TrustLevel, amount)
	if delta == 0 {
		return
	}
	old := rel.TrustLevel
	rel.TrustLevel += delta
	rel.Notes = append(rel.Notes, Note{
		Timestamp: now,
		Delta:     delta,
		Reason:    "Natural decay from lack of interaction",
		OldValue:  old,
		NewValue:  rel.TrustLevel,
		Decay:     true,
	})
	n.logChange("individual", npcID, delta, "Natural decay from lack of interaction")
	n.rederiveType(rel)
}

// towardNeutral returns the signed step that moves value toward neutral
// by at most amount, stopping exactly at neutral.
func towardNeutral(value, amount int) int {
	if value > TrustNeutral {
		if value-amount < TrustNeutral {
			return TrustNeutral - value
		}
		return -amount
	}
	if value < TrustNeutral {
		if value+amount > TrustNeutral {
			return TrustNeutral - value
		}
		return amount
	}
	return 0
}
