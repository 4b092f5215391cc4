package relationship

import (
	"sort"
	"strings"
	"time"
)

// Default trust thresholds for the ally/enemy queries.
const (
	DefaultAllyThreshold  = 70
	DefaultEnemyThreshold = 30
)

const recentChanges = 3

// NPCSummary is one NPC's standing as handed to the narrator
// collaborator.
type NPCSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TrustLevel    int     `json:"trust_level"`
	Type          RelType `json:"relationship_type"`
	Interactions  int     `json:"interactions"`
	RecentChanges []Note  `json:"recent_changes,omitempty"`
	Romance       Romance `json:"romance"`
}

// FactionSummary is one faction's standing for narration.
type FactionSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Reputation    int             `json:"reputation"`
	Level         ReputationLevel `json:"level"`
	RecentChanges []Note          `json:"recent_changes,omitempty"`
}

// CompanionSummary is one companion's standing for narration.
type CompanionSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Approval      int           `json:"approval"`
	Level         ApprovalLevel `json:"approval_level"`
	Romance       Romance       `json:"romance"`
	PersonalQuest PersonalQuest `json:"personal_quest"`
	RecentChanges []Note        `json:"recent_changes,omitempty"`
}

// Context is the combined snapshot of all three relationship dimensions
// handed to presentation and narrator collaborators.
type Context struct {
	Timestamp  time.Time                   `json:"timestamp"`
	Individual map[string]NPCSummary       `json:"individual"`
	Factions   map[string]FactionSummary   `json:"factions"`
	Companions map[string]CompanionSummary `json:"companions"`
	Summary    ContextSummary              `json:"summary"`
}

// ContextSummary buckets NPCs by disposition for quick narration cues.
type ContextSummary struct {
	Allies   []NPCSummary `json:"allies"`
	Enemies  []NPCSummary `json:"enemies"`
	Romantic []NPCSummary `json:"romantic"`
	Neutral  []NPCSummary `json:"neutral"`
}

// Context assembles the full relationship snapshot.
func (n *Network) Context() Context {
	ctx := Context{
		Timestamp:  n.clock(),
		Individual: make(map[string]NPCSummary),
		Factions:   make(map[string]FactionSummary),
		Companions: make(map[string]CompanionSummary),
	}

	for npcID, rel := range n.individual {
		profile, ok := n.npcProfiles[npcID]
		if !ok {
			continue
		}
		summary := NPCSummary{
			ID:            npcID,
			Name:          profile.Name,
			TrustLevel:    rel.TrustLevel,
			Type:          rel.Type,
			Interactions:  rel.Interactions,
			RecentChanges: lastNotes(rel.Notes, recentChanges),
			Romance:       rel.Romance,
		}
		ctx.Individual[npcID] = summary

		switch {
		case rel.TrustLevel >= DefaultAllyThreshold:
			ctx.Summary.Allies = append(ctx.Summary.Allies, summary)
		case rel.TrustLevel <= DefaultEnemyThreshold:
			ctx.Summary.Enemies = append(ctx.Summary.Enemies, summary)
		default:
			ctx.Summary.Neutral = append(ctx.Summary.Neutral, summary)
		}
		if rel.Romance.Active {
			ctx.Summary.Romantic = append(ctx.Summary.Romantic, summary)
		}
	}

	for factionID, rep := range n.factions {
		profile, ok := n.factionProfiles[factionID]
		if !ok {
			continue
		}
		ctx.Factions[factionID] = FactionSummary{
			ID:            factionID,
			Name:          profile.Name,
			Reputation:    rep.Reputation,
			Level:         rep.Level,
			RecentChanges: lastNotes(rep.History, recentChanges),
		}
	}

	for companionID, c := range n.companions {
		profile, ok := n.npcProfiles[companionID]
		if !ok {
			continue
		}
		ctx.Companions[companionID] = CompanionSummary{
			ID:            companionID,
			Name:          profile.Name,
			Approval:      c.Approval,
			Level:         GetApprovalLevel(c.Approval),
			Romance:       c.Romance,
			PersonalQuest: c.PersonalQuest,
			RecentChanges: lastNotes(c.History, recentChanges),
		}
	}

	return ctx
}

// Ally is an NPC the player can lean on, with what the relationship
// unlocks.
type Ally struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TrustLevel int      `json:"trust_level"`
	Type       RelType  `json:"relationship_type"`
	CanProvide []string `json:"can_provide,omitempty"`
}

// Allies returns NPCs at or above the trust threshold, sorted by trust
// descending.
func (n *Network) Allies(threshold int) []Ally {
	var out []Ally
	for npcID, rel := range n.individual {
		if rel.TrustLevel < threshold {
			continue
		}
		profile, ok := n.npcProfiles[npcID]
		if !ok {
			continue
		}
		out = append(out, Ally{
			ID:         npcID,
			Name:       profile.Name,
			TrustLevel: rel.TrustLevel,
			Type:       rel.Type,
			CanProvide: capabilities(profile, rel.TrustLevel),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrustLevel != out[j].TrustLevel {
			return out[i].TrustLevel > out[j].TrustLevel
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Enemy is an NPC working against the player.
type Enemy struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TrustLevel  int     `json:"trust_level"`
	Type        RelType `json:"relationship_type"`
	ThreatLevel string  `json:"threat_level"`
}

// Enemies returns NPCs at or below the trust threshold, sorted most
// hostile first.
func (n *Network) Enemies(threshold int) []Enemy {
	var out []Enemy
	for npcID, rel := range n.individual {
		if rel.TrustLevel > threshold {
			continue
		}
		profile, ok := n.npcProfiles[npcID]
		if !ok {
			continue
		}
		out = append(out, Enemy{
			ID:          npcID,
			Name:        profile.Name,
			TrustLevel:  rel.TrustLevel,
			Type:        rel.Type,
			ThreatLevel: threatLevel(rel.TrustLevel),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrustLevel != out[j].TrustLevel {
			return out[i].TrustLevel < out[j].TrustLevel
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RomanticInterest is an NPC with an active or progressing romance arc.
type RomanticInterest struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	TrustLevel int          `json:"trust_level"`
	Stage      RomanceStage `json:"stage"`
	Jealousy   int          `json:"jealousy"`
}

// RomanticInterests returns every NPC whose romance is active or staged
// past none.
func (n *Network) RomanticInterests() []RomanticInterest {
	var out []RomanticInterest
	for npcID, rel := range n.individual {
		if !rel.Romance.Active && rel.Romance.Stage == StageNone {
			continue
		}
		profile, ok := n.npcProfiles[npcID]
		if !ok {
			continue
		}
		out = append(out, RomanticInterest{
			ID:         npcID,
			Name:       profile.Name,
			TrustLevel: rel.TrustLevel,
			Stage:      rel.Romance.Stage,
			Jealousy:   rel.Romance.Jealousy,
		})
	}
	for companionID, c := range n.companions {
		if c.Romance.Stage == StageNone && !c.Romance.Active {
			continue
		}
		if _, seen := n.individual[companionID]; seen {
			continue
		}
		profile, ok := n.npcProfiles[companionID]
		if !ok {
			continue
		}
		out = append(out, RomanticInterest{
			ID:         companionID,
			Name:       profile.Name,
			TrustLevel: c.Approval,
			Stage:      c.Romance.Stage,
			Jealousy:   c.Romance.Jealousy,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ApprovalGates returns companions whose approval meets the minimum,
// which is what gates personal-quest and romance content.
func (n *Network) ApprovalGates(minApproval int) []CompanionSummary {
	var out []CompanionSummary
	for companionID, c := range n.companions {
		if c.Approval < minApproval {
			continue
		}
		profile, ok := n.npcProfiles[companionID]
		if !ok {
			continue
		}
		out = append(out, CompanionSummary{
			ID:            companionID,
			Name:          profile.Name,
			Approval:      c.Approval,
			Level:         GetApprovalLevel(c.Approval),
			Romance:       c.Romance,
			PersonalQuest: c.PersonalQuest,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Approval != out[j].Approval {
			return out[i].Approval > out[j].Approval
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FactionConflict pairs the player's hostile standings against favorable
// ones so the narrator can surface brewing tensions.
type FactionConflict struct {
	Hostile  []FactionSummary `json:"hostile"`
	Favored  []FactionSummary `json:"favored"`
	Tensions []string         `json:"tensions,omitempty"`
}

// FactionConflicts summarizes which factions oppose the player and which
// back them, plus any declared enmity between factions on opposite sides.
func (n *Network) FactionConflicts() FactionConflict {
	var conflict FactionConflict
	for factionID, rep := range n.factions {
		profile, ok := n.factionProfiles[factionID]
		if !ok {
			continue
		}
		summary := FactionSummary{
			ID:         factionID,
			Name:       profile.Name,
			Reputation: rep.Reputation,
			Level:      rep.Level,
		}
		switch rep.Level {
		case RepHated, RepHostile:
			conflict.Hostile = append(conflict.Hostile, summary)
		case RepHonored, RepRevered:
			conflict.Favored = append(conflict.Favored, summary)
		}
	}
	sort.Slice(conflict.Hostile, func(i, j int) bool { return conflict.Hostile[i].ID < conflict.Hostile[j].ID })
	sort.Slice(conflict.Favored, func(i, j int) bool { return conflict.Favored[i].ID < conflict.Favored[j].ID })

	for _, favored := range conflict.Favored {
		profile := n.factionProfiles[favored.ID]
		for _, rel := range profile.Relations {
			if rel.Kind != KindEnemy && rel.Kind != KindRival {
				continue
			}
			for _, hostile := range conflict.Hostile {
				if hostile.ID == rel.Target {
					conflict.Tensions = append(conflict.Tensions,
						favored.Name+" opposes "+hostile.Name)
				}
			}
		}
	}
	return conflict
}

// capabilities derives what an NPC is willing to provide at a given trust
// level, plus occupation-specific extras.
func capabilities(profile *NPCProfile, trust int) []string {
	var caps []string
	if trust >= 90 {
		caps = append(caps, "secret_information", "dangerous_favors", "personal_sacrifice")
	}
	if trust >= 70 {
		caps = append(caps, "valuable_items", "important_introductions", "shelter")
	}
	if trust >= 50 {
		caps = append(caps, "basic_information", "common_items", "directions")
	}

	occupation := strings.ToLower(profile.Occupation)
	switch {
	case strings.Contains(occupation, "merchant"):
		caps = append(caps, "trade_discounts", "rare_goods")
	case strings.Contains(occupation, "guard"):
		caps = append(caps, "legal_protection", "weapon_training")
	case strings.Contains(occupation, "scholar"):
		caps = append(caps, "research", "ancient_knowledge")
	case strings.Contains(occupation, "noble"):
		caps = append(caps, "political_influence", "court_access")
	}
	return caps
}

// threatLevel grades how dangerous a hostile NPC is.
func threatLevel(trust int) string {
	switch {
	case trust <= 10:
		return "extreme"
	case trust <= 20:
		return "high"
	case trust <= 30:
		return "moderate"
	default:
		return "low"
	}
}

func lastNotes(notes []Note, limit int) []Note {
	if len(notes) <= limit {
		return notes
	}
	return notes[len(notes)-limit:]
}
