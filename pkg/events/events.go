package events

import (
	"context"
	"encoding/json"
	"time"
)

// Type identifies a kind of fact flowing between the engine and its
// collaborators.
type Type string

// Facts consumed by the engine.
const (
	TypeChoiceRecorded      Type = "choice:recorded"
	TypeRelationshipChanged Type = "relationship:changed"
	TypeWorldEvent          Type = "world:event"
	TypeDayPassed           Type = "time:dayPassed"
)

// Facts emitted by the engine.
const (
	TypeIndividualUpdated   Type = "relationship:individual:updated"
	TypeRelTypeChanged      Type = "relationship:type:changed"
	TypeFactionUpdated      Type = "relationship:faction:updated"
	TypeRomanceStageChanged Type = "relationship:romance:stage:changed"
	TypeQuestCreated        Type = "quest:created"
	TypeQuestEvolved        Type = "quest:evolved"
	TypeQuestCompleted      Type = "quest:completed"
	TypeQuestFailed         Type = "quest:failed"
	TypeQuestRetired        Type = "quest:retired"
)

// Consequence is a declared side effect carried by a player choice.
// Kind is "relationship" (Target is an NPC) or "reputation" (Target is
// a faction).
type Consequence struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Delta  int    `json:"delta"`
}

// Choice is a recorded player decision.
type Choice struct {
	ID           string        `json:"id,omitempty"`
	Description  string        `json:"description,omitempty"`
	Characters   []string      `json:"characters,omitempty"`
	Categories   []string      `json:"categories,omitempty"`
	MoralWeight  int           `json:"moral_weight,omitempty"`
	Consequences []Consequence `json:"consequences,omitempty"`
}

// RelationshipChange reports an externally-sourced trust delta for an NPC.
type RelationshipChange struct {
	NPC    string `json:"npc"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// WorldEvent reports a change in the wider world that quests may react to.
type WorldEvent struct {
	Kind             string   `json:"kind"`
	Location         string   `json:"location,omitempty"`
	AffectedFactions []string `json:"affected_factions,omitempty"`
}

// Fact is the unit of communication on the event bus. Exactly one typed
// payload is set for consumed facts; emitted facts carry Data.
type Fact struct {
	Type         Type                   `json:"type"`
	At           time.Time              `json:"at,omitempty"`
	Choice       *Choice                `json:"choice,omitempty"`
	Relationship *RelationshipChange    `json:"relationship,omitempty"`
	World        *WorldEvent            `json:"world,omitempty"`
	Days         int                    `json:"days,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// ToJSON serializes the fact for queueing or broadcast.
func (f *Fact) ToJSON() ([]byte, error) {
	return json.Marshal(f)
}

// FromJSON deserializes a fact from queue or broadcast payloads.
func FromJSON(data []byte) (*Fact, error) {
	var f Fact
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Emitter publishes facts to external collaborators. Implementations must
// never block engine control flow on collaborator availability; a failed
// publish is reported as an error for the caller to log and skip.
type Emitter interface {
	Emit(ctx context.Context, fact Fact) error
}
