package relationship

import (
	"github.com/storyforge/narrative-engine/pkg/events"
)

// jealousyFactor scales the penalty other romance candidates take when
// the player pays romantic attention to someone else.
const jealousyFactor = 0.7

// romanceInterestThreshold is the approval at which a companion with
// romance available becomes a candidate.
const romanceInterestThreshold = 70

// ModifyCompanionApproval applies an approval delta to a companion,
// clamps the result to [0,100], and re-evaluates the romance stage.
// When romantic is true and the companion's romance is available, every
// other available-and-interested companion takes a jealousy penalty of
// round(delta * 0.7 * -1), applied without further jealousy effects.
func (n *Network) ModifyCompanionApproval(companionID string, delta int, reason string, romantic bool) (*Companion, error) {
	c, ok := n.companions[companionID]
	if !ok {
		return nil, ErrUnknownEntity
	}

	if romantic && c.Romance.Available {
		n.applyJealousy(companionID, delta)
	}

	n.applyApproval(c, delta, reason, false)
	return c, nil
}

// applyApproval is the shared mutation path for approval changes,
// including jealousy penalties and decay.
func (n *Network) applyApproval(c *Companion, delta int, reason string, decay bool) {
	now := n.clock()
	old := c.Approval
	c.Approval = clamp(old+delta, TrustMin, TrustMax)
	if !decay {
		c.LastInteraction = now
	}
	c.History = append(c.History, Note{
		Timestamp: now,
		Delta:     delta,
		Reason:    reason,
		OldValue:  old,
		NewValue:  c.Approval,
		Decay:     decay,
	})
	c.Romance.Interested = c.Romance.Available && c.Approval >= romanceInterestThreshold

	n.logChange("companion", c.CompanionID, delta, reason)

	if c.Romance.Available {
		n.updateRomanceStage(c)
	}
}

// updateRomanceStage advances or resets the romance stage from approval.
// Progression is monotonic except the drop-back rule: below 60 approval,
// interested and courting both reset to none.
func (n *Network) updateRomanceStage(c *Companion) {
	current := c.Romance.Stage
	next := current

	switch {
	case c.Approval >= 90 && current == StageCourting:
		next = StageCommitted
	case c.Approval >= 80 && current == StageInterested:
		next = StageCourting
	case c.Approval >= 70 && current == StageNone:
		next = StageInterested
	case c.Approval < 60 && (current == StageInterested || current == StageCourting):
		next = StageNone
	}

	if next == current {
		return
	}
	c.Romance.Stage = next

	n.publish(events.Fact{
		Type: events.TypeRomanceStageChanged,
		At:   n.clock(),
		Data: map[string]interface{}{
			"companion": c.CompanionID,
			"old_stage": string(current),
			"new_stage": string(next),
			"approval":  c.Approval,
		},
	})
}

// applyJealousy penalizes every other available-and-interested companion.
// The penalty is uniform regardless of the target's current approval and
// never triggers further jealousy.
func (n *Network) applyJealousy(romancedID string, delta int) {
	penalty := round(float64(delta) * jealousyFactor * -1)
	if abs(penalty) < 1 {
		return
	}
	for id, other := range n.companions {
		if id == romancedID || !other.Romance.Available || !other.Romance.Interested {
			continue
		}
		other.Romance.Jealousy += abs(penalty)
		n.applyApproval(other, penalty, "Jealousy from romantic attention to another", false)
	}
}
