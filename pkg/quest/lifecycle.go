package quest

import (
	"github.com/storyforge/narrative-engine/pkg/events"
)

// RetirementReasonAutomatic marks retirements fired by the deferred
// eligibility check rather than an explicit request.
const RetirementReasonAutomatic = "automatic_retirement"

// RetirementUnlocks is the narrative payoff of retiring a quest: new
// quest lines, expanded locations, and dialogue the world remembers.
type RetirementUnlocks struct {
	QuestLines      []string            `json:"quest_lines,omitempty"`
	Locations       []string            `json:"locations,omitempty"`
	DialogueOptions map[string][]string `json:"dialogue_options,omitempty"`
}

// CompleteQuest moves an active quest to completed. Completing a quest
// that is not active is a non-fatal no-op returning nil; the caller is
// expected to have raced a duplicate fact, not to have made an error
// worth failing over.
//
// Reward and consequence effects are not applied here. They ride on the
// returned quest for the orchestration layer to forward.
func (g *Graph) CompleteQuest(questID string, data CompletionData) *Quest {
	q, ok := g.active[questID]
	if !ok {
		g.logger.Warn("Completion requested for quest that is not active", "quest", questID)
		return nil
	}

	now := g.clock()
	delete(g.active, questID)
	q.Status = StatusCompleted
	q.CompletionMethod = data.Method
	q.CompletedAt = now
	q.LastModified = now
	g.completed[questID] = q

	g.logger.Info("Quest completed",
		"quest", q.ID,
		"title", q.Title,
		"method", data.Method)

	g.publish(events.Fact{
		Type: events.TypeQuestCompleted,
		At:   now,
		Data: map[string]interface{}{
			"quest":        q.ID,
			"title":        q.Title,
			"method":       data.Method,
			"final_choice": data.FinalChoice,
		},
	})

	g.updateConnectedQuests(q, StatusCompleted)
	return q
}

// FailQuest moves an active quest to failed and seeds the pending bucket
// with recovery opportunities. Same no-op contract as CompleteQuest.
func (g *Graph) FailQuest(questID, reason string) *Quest {
	q, ok := g.active[questID]
	if !ok {
		g.logger.Warn("Failure requested for quest that is not active", "quest", questID)
		return nil
	}

	now := g.clock()
	delete(g.active, questID)
	q.Status = StatusFailed
	q.FailureReason = reason
	q.FailedAt = now
	q.LastModified = now
	g.failed[questID] = q

	g.logger.Info("Quest failed",
		"quest", q.ID,
		"title", q.Title,
		"reason", reason)

	g.publish(events.Fact{
		Type: events.TypeQuestFailed,
		At:   now,
		Data: map[string]interface{}{
			"quest":  q.ID,
			"title":  q.Title,
			"reason": reason,
		},
	})

	g.generateFailureOpportunities(q)
	g.updateConnectedQuests(q, StatusFailed)
	return q
}

// EligibleForRetirement reports whether a finished quest earned a spot in
// the world's memory: at least two of main-line status, high stakes, a
// rich evolution history, or repeated adaptation.
func (g *Graph) EligibleForRetirement(questID string) bool {
	q := g.GetQuest(questID)
	if q == nil || (q.Status != StatusCompleted && q.Status != StatusFailed) {
		return false
	}

	score := 0
	if q.Type == TypeMain {
		score++
	}
	if q.Context.Stakes == StakesHigh {
		score++
	}
	if len(q.EvolutionHistory) >= 3 {
		score++
	}
	if len(q.Adaptations) >= 2 {
		score++
	}
	return score >= 2
}

// RetireQuest moves a completed or failed quest to retired and computes
// its unlocks. Retiring from any other status is a non-fatal no-op.
func (g *Graph) RetireQuest(questID, reason string) *Quest {
	q, ok := g.completed[questID]
	bucket := g.completed
	if !ok {
		q, ok = g.failed[questID]
		bucket = g.failed
	}
	if !ok {
		g.logger.Warn("Retirement requested for quest that is not finished", "quest", questID)
		return nil
	}

	now := g.clock()
	delete(bucket, questID)
	q.Status = StatusRetired
	q.RetirementReason = reason
	q.RetiredAt = now
	q.LastModified = now
	g.retired[questID] = q

	unlocks := buildRetirementUnlocks(q)
	g.unlocks[questID] = unlocks
	g.dropConnections(questID)

	g.logger.Info("Quest retired",
		"quest", q.ID,
		"title", q.Title,
		"reason", reason,
		"unlocked_lines", len(unlocks.QuestLines))

	g.publish(events.Fact{
		Type: events.TypeQuestRetired,
		At:   now,
		Data: map[string]interface{}{
			"quest":   q.ID,
			"title":   q.Title,
			"reason":  reason,
			"unlocks": unlocks,
		},
	})

	return q
}

// Unlocks returns the retirement unlocks recorded for a quest, or nil if
// it never retired.
func (g *Graph) Unlocks(questID string) *RetirementUnlocks {
	u, ok := g.unlocks[questID]
	if !ok {
		return nil
	}
	return &u
}

func buildRetirementUnlocks(q *Quest) RetirementUnlocks {
	u := RetirementUnlocks{}

	if q.Type == TypeMain {
		u.QuestLines = append(u.QuestLines, "Legacy of "+q.Title)
	}
	if q.Context.Location != "" {
		u.Locations = append(u.Locations, q.Context.Location+"_extended")
	}
	if len(q.Context.NPCs) > 0 {
		u.DialogueOptions = make(map[string][]string, len(q.Context.NPCs))
		for _, npc := range q.Context.NPCs {
			u.DialogueOptions[npc] = []string{"reminisce_about_" + q.ID}
		}
	}

	return u
}
