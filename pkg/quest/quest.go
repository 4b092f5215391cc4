package quest

import (
	"time"
)

// Status is a quest's lifecycle state. The only legal transitions are
// active -> completed|failed and completed|failed -> retired.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRetired   Status = "retired"
)

// Type classifies a quest and fixes its priority and flexibility.
type Type string

const (
	TypeMain      Type = "main"
	TypeSide      Type = "side"
	TypePersonal  Type = "personal"
	TypeEmergent  Type = "emergent"
	TypeFaction   Type = "faction"
	TypeDiscovery Type = "discovery"
)

// typeWeights fixes priority and flexibility per quest type.
var typeWeights = map[Type]struct {
	Priority    int
	Flexibility float64
}{
	TypeMain:      {10, 0.3},
	TypeSide:      {5, 0.7},
	TypePersonal:  {7, 0.5},
	TypeEmergent:  {6, 0.9},
	TypeFaction:   {8, 0.4},
	TypeDiscovery: {4, 0.8},
}

// Priority returns the fixed priority weight for a quest type.
func (t Type) Priority() int {
	if w, ok := typeWeights[t]; ok {
		return w.Priority
	}
	return typeWeights[TypeSide].Priority
}

// Flexibility returns the fixed flexibility weight for a quest type.
func (t Type) Flexibility() float64 {
	if w, ok := typeWeights[t]; ok {
		return w.Flexibility
	}
	return typeWeights[TypeSide].Flexibility
}

// Stakes levels used by viability gates and retirement criteria.
const (
	StakesLow    = "low"
	StakesMedium = "medium"
	StakesHigh   = "high"
)

// Context situates a quest in the world: where it happens and who and
// what it touches. Connection discovery and evolution triggers both key
// off these fields.
type Context struct {
	Location string   `json:"location,omitempty"`
	NPCs     []string `json:"npcs,omitempty"`
	Factions []string `json:"factions,omitempty"`
	Themes   []string `json:"themes,omitempty"`
	Stakes   string   `json:"stakes,omitempty"`
}

func (c Context) clone() Context {
	cp := c
	cp.NPCs = append([]string(nil), c.NPCs...)
	cp.Factions = append([]string(nil), c.Factions...)
	cp.Themes = append([]string(nil), c.Themes...)
	return cp
}

// SolutionPath is one archetype-tagged approach to resolving a quest.
type SolutionPath struct {
	Archetype    Archetype `json:"archetype"`
	Methods      []string  `json:"methods,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	Viability    float64   `json:"viability"`
	Unlocked     bool      `json:"unlocked"`
}

// Effect is a declared reward or consequence a quest carries. The graph
// never applies effects itself; the orchestration layer forwards them to
// the relationship network or the world-event collaborator.
type Effect struct {
	Kind   string `json:"kind"` // relationship, reputation, world_state
	Target string `json:"target,omitempty"`
	Delta  int    `json:"delta,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// EvolutionEvent records one applied evolution with a snapshot of the
// prior state for audit.
type EvolutionEvent struct {
	Timestamp   time.Time   `json:"timestamp"`
	TriggerType TriggerType `json:"trigger_type"`
	Prior       PriorState  `json:"prior"`
}

// PriorState is the audit snapshot taken before an evolution mutates a
// quest.
type PriorState struct {
	Objectives    []string       `json:"objectives,omitempty"`
	SolutionPaths []SolutionPath `json:"solution_paths,omitempty"`
	Context       Context        `json:"context"`
}

// Adaptation is the human-readable record of what an evolution changed.
type Adaptation struct {
	Timestamp   time.Time   `json:"timestamp"`
	TriggerType TriggerType `json:"trigger_type"`
	Description string      `json:"description"`
}

// Quest is a single narrative quest entity. Once in a terminal status it
// is immutable except for the retirement transition.
type Quest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        Type   `json:"type"`
	Status      Status `json:"status"`

	Objectives          []string `json:"objectives,omitempty"`
	Rewards             []Effect `json:"rewards,omitempty"`
	Consequences        []Effect `json:"consequences,omitempty"`
	FailureConsequences []Effect `json:"failure_consequences,omitempty"`

	Context Context `json:"context"`

	Flexibility       float64 `json:"flexibility"`
	Adaptability      float64 `json:"adaptability"`
	EmergentPotential float64 `json:"emergent_potential"`

	SolutionPaths []SolutionPath `json:"solution_paths,omitempty"`

	EvolutionHistory []EvolutionEvent `json:"evolution_history,omitempty"`
	Adaptations      []Adaptation     `json:"adaptations,omitempty"`

	EmergentSource   string `json:"emergent_source,omitempty"`
	CompletionMethod string `json:"completion_method,omitempty"`
	FailureReason    string `json:"failure_reason,omitempty"`
	RetirementReason string `json:"retirement_reason,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
	FailedAt     time.Time `json:"failed_at,omitempty"`
	RetiredAt    time.Time `json:"retired_at,omitempty"`

	Tags []string `json:"tags,omitempty"`
}

// Terminal reports whether the quest has reached completed, failed, or
// retired.
func (q *Quest) Terminal() bool {
	return q.Status == StatusCompleted || q.Status == StatusFailed || q.Status == StatusRetired
}

// CompletionData describes how a quest was resolved.
type CompletionData struct {
	Method      string `json:"method"`
	FinalChoice string `json:"final_choice,omitempty"`
}

// Spec is the input for creating a quest. Zero values get sensible
// defaults: type side, stakes medium, adaptability 0.7, emergent
// potential 0.5.
type Spec struct {
	ID                  string   `json:"id,omitempty"`
	Title               string   `json:"title"`
	Description         string   `json:"description,omitempty"`
	Type                Type     `json:"type,omitempty"`
	Objectives          []string `json:"objectives,omitempty"`
	Rewards             []Effect `json:"rewards,omitempty"`
	Consequences        []Effect `json:"consequences,omitempty"`
	FailureConsequences []Effect `json:"failure_consequences,omitempty"`
	Context             Context  `json:"context"`
	Adaptability        float64  `json:"adaptability,omitempty"`
	EmergentPotential   float64  `json:"emergent_potential,omitempty"`
	Tags                []string `json:"tags,omitempty"`
}
