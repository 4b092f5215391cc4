package relationship

import (
	"math"
	"time"
)

// Trust bounds. 50 is neutral; decay always moves toward it.
const (
	TrustMin     = 0
	TrustMax     = 100
	TrustNeutral = 50
)

// Reputation bounds for factions.
const (
	ReputationMin = -100
	ReputationMax = 100
)

// RelType is the derived relationship classification for an NPC. It is
// always a pure function of the trust level; callers never set it
// directly.
type RelType string

const (
	RelEnemy      RelType = "enemy"
	RelUnfriendly RelType = "unfriendly"
	RelNeutral    RelType = "neutral"
	RelFriendly   RelType = "friendly"
	RelAlly       RelType = "ally"
	RelDevoted    RelType = "devoted"
)

// DeriveRelType maps a trust level to its relationship type.
func DeriveRelType(trust int) RelType {
	switch {
	case trust <= 10:
		return RelEnemy
	case trust <= 30:
		return RelUnfriendly
	case trust <= 40:
		return RelNeutral
	case trust <= 70:
		return RelFriendly
	case trust <= 90:
		return RelAlly
	default:
		return RelDevoted
	}
}

// ReputationLevel is the derived standing with a faction.
type ReputationLevel string

const (
	RepHated      ReputationLevel = "hated"
	RepHostile    ReputationLevel = "hostile"
	RepUnfriendly ReputationLevel = "unfriendly"
	RepNeutral    ReputationLevel = "neutral"
	RepFriendly   ReputationLevel = "friendly"
	RepHonored    ReputationLevel = "honored"
	RepRevered    ReputationLevel = "revered"
)

// GetReputationLevel maps a reputation value to its level. Total over all
// integers.
func GetReputationLevel(reputation int) ReputationLevel {
	switch {
	case reputation <= -100:
		return RepHated
	case reputation <= -50:
		return RepHostile
	case reputation <= -25:
		return RepUnfriendly
	case reputation < 25:
		return RepNeutral
	case reputation < 50:
		return RepFriendly
	case reputation < 100:
		return RepHonored
	default:
		return RepRevered
	}
}

// ApprovalLevel describes a companion approval band.
type ApprovalLevel struct {
	Name string  `json:"name"`
	Type RelType `json:"type"`
}

// GetApprovalLevel maps an approval value to its band. Total over all
// integers.
func GetApprovalLevel(approval int) ApprovalLevel {
	switch {
	case approval >= 95:
		return ApprovalLevel{Name: "Devoted", Type: RelDevoted}
	case approval >= 80:
		return ApprovalLevel{Name: "Love", Type: "romantic"}
	case approval >= 60:
		return ApprovalLevel{Name: "Likes You", Type: RelAlly}
	case approval >= 40:
		return ApprovalLevel{Name: "Neutral", Type: RelFriendly}
	case approval >= 20:
		return ApprovalLevel{Name: "Dislikes You", Type: RelUnfriendly}
	default:
		return ApprovalLevel{Name: "Hatred", Type: RelEnemy}
	}
}

// RomanceStage tracks the progression of a romance arc.
type RomanceStage string

const (
	StageNone       RomanceStage = "none"
	StageInterested RomanceStage = "interested"
	StageCourting   RomanceStage = "courting"
	StageCommitted  RomanceStage = "committed"
)

// Romance is the romance-specific slice of a relationship record.
type Romance struct {
	Available  bool         `json:"available"`
	Active     bool         `json:"active"`
	Interested bool         `json:"interested"`
	Stage      RomanceStage `json:"stage"`
	Jealousy   int          `json:"jealousy"`
}

// Note is one entry in a record's ordered change log.
type Note struct {
	Timestamp time.Time `json:"timestamp"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason,omitempty"`
	OldValue  int       `json:"old_value"`
	NewValue  int       `json:"new_value"`
	Decay     bool      `json:"decay,omitempty"`
}

// Relationship is the per-NPC trust record.
type Relationship struct {
	NPCID           string    `json:"npc_id"`
	TrustLevel      int       `json:"trust_level"`
	Type            RelType   `json:"relationship_type"`
	LastInteraction time.Time `json:"last_interaction,omitempty"`
	Interactions    int       `json:"interactions"`
	Notes           []Note    `json:"notes,omitempty"`
	Romance         Romance   `json:"romance"`
}

func newRelationship(npcID string) *Relationship {
	return &Relationship{
		NPCID:      npcID,
		TrustLevel: TrustNeutral,
		Type:       RelNeutral,
		Romance:    Romance{Stage: StageNone},
	}
}

// FactionReputation is the per-faction standing record.
type FactionReputation struct {
	FactionID  string          `json:"faction_id"`
	Reputation int             `json:"reputation"`
	Level      ReputationLevel `json:"level"`
	LastChange time.Time       `json:"last_change,omitempty"`
	History    []Note          `json:"history,omitempty"`
}

func newFactionReputation(factionID string) *FactionReputation {
	return &FactionReputation{
		FactionID: factionID,
		Level:     RepNeutral,
	}
}

// PersonalQuest tracks a companion's personal quest line.
type PersonalQuest struct {
	Available bool `json:"available"`
	Completed bool `json:"completed"`
	Stage     int  `json:"stage"`
}

// Companion extends the relationship record with approval and a personal
// quest line. Approval gates romance availability and progression.
type Companion struct {
	CompanionID     string        `json:"companion_id"`
	Approval        int           `json:"approval"`
	LastInteraction time.Time     `json:"last_interaction,omitempty"`
	Romance         Romance       `json:"romance"`
	PersonalQuest   PersonalQuest `json:"personal_quest"`
	History         []Note        `json:"history,omitempty"`
}

func newCompanion(companionID string) *Companion {
	return &Companion{
		CompanionID: companionID,
		Approval:    TrustNeutral,
		Romance:     Romance{Stage: StageNone},
	}
}

// RelationKind classifies a declared relation between two NPCs or two
// factions and determines cascade damping.
type RelationKind string

const (
	KindAlly         RelationKind = "ally"
	KindFriend       RelationKind = "friend"
	KindFriendly     RelationKind = "friendly"
	KindFamily       RelationKind = "family"
	KindLover        RelationKind = "lover"
	KindEnemy        RelationKind = "enemy"
	KindRival        RelationKind = "rival"
	KindAcquaintance RelationKind = "acquaintance"
	KindNeutral      RelationKind = "neutral"
	KindUnfriendly   RelationKind = "unfriendly"
)

// Relation is a declared edge from one entity to another.
type Relation struct {
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
}

// NPCProfile is the static directory entry for an NPC: who they are and
// who they are connected to. Profiles are world data loaded at startup;
// the network only mutates the records derived from them.
type NPCProfile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Occupation string     `json:"occupation,omitempty"`
	Relations  []Relation `json:"relations,omitempty"`
}

// FactionProfile is the static directory entry for a faction.
type FactionProfile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Members   []string   `json:"members,omitempty"`
	Relations []Relation `json:"relations,omitempty"`
}

// HistoryEntry is one row of the global relationship change log.
type HistoryEntry struct {
	Kind      string    `json:"kind"` // individual, faction, companion
	TargetID  string    `json:"target_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// npcCascade is the damping applied when trust changes spill over to an
// NPC's declared relations. A single hop only.
func npcCascade(kind RelationKind) float64 {
	switch kind {
	case KindAlly, KindFriend:
		return 0.4
	case KindFamily, KindLover:
		return 0.6
	case KindEnemy, KindRival:
		return -0.5
	case KindAcquaintance:
		return 0.1
	default:
		return 0
	}
}

// factionCascade is the damping applied when reputation changes spill
// over to related factions.
func factionCascade(kind RelationKind) float64 {
	switch kind {
	case KindAlly:
		return 0.8
	case KindFriendly, KindFriend:
		return 0.5
	case KindNeutral:
		return 0.1
	case KindUnfriendly:
		return -0.3
	case KindEnemy:
		return -0.6
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round rounds half toward positive infinity, matching the arithmetic the
// cascade factors were tuned against.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
