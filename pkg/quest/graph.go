package quest

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// Graph owns all quest entities and their derived connections. Quests
// live in one status bucket at a time; connections are recomputed on
// creation and never persisted independently of the quests they join.
//
// Like the relationship network, the graph is single-owner: one fact is
// processed to completion before the next, so no internal locking.
type Graph struct {
	logger *slog.Logger
	emit   events.Emitter
	clock  func() time.Time
	newID  func() string

	active    map[string]*Quest
	completed map[string]*Quest
	failed    map[string]*Quest
	retired   map[string]*Quest
	pending   map[string]*Quest // emergent opportunities not yet active

	connections map[string][]Connection
	unlocks     map[string]RetirementUnlocks
}

// NewGraph creates an empty quest graph.
func NewGraph(logger *slog.Logger) *Graph {
	return &Graph{
		logger:      logger,
		clock:       time.Now,
		newID:       uuid.NewString,
		active:      make(map[string]*Quest),
		completed:   make(map[string]*Quest),
		failed:      make(map[string]*Quest),
		retired:     make(map[string]*Quest),
		pending:     make(map[string]*Quest),
		connections: make(map[string][]Connection),
		unlocks:     make(map[string]RetirementUnlocks),
	}
}

// WithEmitter sets the fact emitter. Returns the graph for chaining.
func (g *Graph) WithEmitter(emit events.Emitter) *Graph {
	g.emit = emit
	return g
}

// WithClock overrides the time source for deterministic tests.
func (g *Graph) WithClock(clock func() time.Time) *Graph {
	g.clock = clock
	return g
}

// WithIDGenerator overrides quest ID generation for deterministic tests.
func (g *Graph) WithIDGenerator(newID func() string) *Graph {
	g.newID = newID
	return g
}

// CreateQuest builds a quest from a spec, generates its solution paths,
// discovers connections to other active quests, and activates it.
func (g *Graph) CreateQuest(spec Spec) *Quest {
	now := g.clock()

	qType := spec.Type
	if qType == "" {
		qType = TypeSide
	}
	ctx := spec.Context.clone()
	if ctx.Stakes == "" {
		ctx.Stakes = StakesMedium
	}
	adaptability := spec.Adaptability
	if adaptability == 0 {
		adaptability = 0.7
	}
	emergent := spec.EmergentPotential
	if emergent == 0 {
		emergent = 0.5
	}
	id := spec.ID
	if id == "" {
		id = g.newID()
	}

	q := &Quest{
		ID:                  id,
		Title:               spec.Title,
		Description:         spec.Description,
		Type:                qType,
		Status:              StatusActive,
		Objectives:          append([]string(nil), spec.Objectives...),
		Rewards:             append([]Effect(nil), spec.Rewards...),
		Consequences:        append([]Effect(nil), spec.Consequences...),
		FailureConsequences: append([]Effect(nil), spec.FailureConsequences...),
		Context:             ctx,
		Flexibility:         qType.Flexibility(),
		Adaptability:        adaptability,
		EmergentPotential:   emergent,
		SolutionPaths:       generateSolutionPaths(ctx),
		CreatedAt:           now,
		LastModified:        now,
		Tags:                append([]string(nil), spec.Tags...),
	}

	g.active[q.ID] = q
	g.discoverConnections(q)

	g.logger.Info("Quest created",
		"quest", q.ID,
		"title", q.Title,
		"type", string(q.Type),
		"paths", len(q.SolutionPaths))

	g.publish(events.Fact{
		Type: events.TypeQuestCreated,
		At:   now,
		Data: map[string]interface{}{
			"quest": q.ID,
			"title": q.Title,
			"type":  string(q.Type),
		},
	})

	return q
}

// GetQuest looks a quest up across every status bucket. Returns nil when
// the ID is unknown.
func (g *Graph) GetQuest(id string) *Quest {
	for _, bucket := range []map[string]*Quest{g.active, g.completed, g.failed, g.retired, g.pending} {
		if q, ok := bucket[id]; ok {
			return q
		}
	}
	return nil
}

// ActiveQuests returns all active quests sorted by priority descending,
// then ID for stability.
func (g *Graph) ActiveQuests() []*Quest {
	out := make([]*Quest, 0, len(g.active))
	for _, q := range g.active {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Type.Priority(), out[j].Type.Priority()
		if pi != pj {
			return pi > pj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PendingOpportunities returns emergent quests waiting for their moment.
func (g *Graph) PendingOpportunities() []*Quest {
	out := make([]*Quest, 0, len(g.pending))
	for _, q := range g.pending {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Analysis summarizes the graph's shape for the query surface.
type Analysis struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Retired   int `json:"retired"`
	Pending   int `json:"pending"`

	TypeBreakdown map[Type]StatusCounts `json:"type_breakdown"`

	SolutionPreferences map[string]int `json:"solution_preferences,omitempty"`
	ConnectionDensity   float64        `json:"connection_density"`
	EvolutionRate       float64        `json:"evolution_rate"`
	AdaptationSuccess   float64        `json:"adaptation_success"`
	PlayerEngagement    float64        `json:"player_engagement"`
}

// StatusCounts is the per-type slice of an analysis.
type StatusCounts struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Analyze computes graph metrics: how connected the quest web is, how
// often quests evolve, and how engaged the player looks.
func (g *Graph) Analyze() Analysis {
	a := Analysis{
		Active:        len(g.active),
		Completed:     len(g.completed),
		Failed:        len(g.failed),
		Retired:       len(g.retired),
		Pending:       len(g.pending),
		TypeBreakdown: make(map[Type]StatusCounts),
	}

	for t := range typeWeights {
		counts := StatusCounts{}
		for _, q := range g.active {
			if q.Type == t {
				counts.Active++
			}
		}
		for _, q := range g.completed {
			if q.Type == t {
				counts.Completed++
			}
		}
		for _, q := range g.failed {
			if q.Type == t {
				counts.Failed++
			}
		}
		a.TypeBreakdown[t] = counts
	}

	prefs := make(map[string]int)
	for _, q := range g.completed {
		if q.CompletionMethod != "" {
			prefs[q.CompletionMethod]++
		}
	}
	if len(prefs) > 0 {
		a.SolutionPreferences = prefs
	}

	totalQuests := len(g.active) + len(g.completed)
	totalConnections := 0
	for _, conns := range g.connections {
		totalConnections += len(conns)
	}
	if totalQuests > 0 {
		a.ConnectionDensity = float64(totalConnections) / float64(totalQuests)
	}

	evolved := 0
	for _, q := range g.active {
		if len(q.EvolutionHistory) > 0 {
			evolved++
		}
	}
	if len(g.active) > 0 {
		a.EvolutionRate = float64(evolved) / float64(len(g.active))
	}

	adapted := 0
	for _, q := range g.completed {
		if len(q.Adaptations) > 0 {
			adapted++
		}
	}
	if len(g.completed) > 0 {
		a.AdaptationSuccess = float64(adapted) / float64(len(g.completed))
	}

	total := len(g.completed) + len(g.failed) + len(g.active)
	if total > 0 {
		a.PlayerEngagement = float64(len(g.completed)) / float64(total)
	}

	return a
}

// publish sends a fact to the emitter, degrading to a logged skip when
// the collaborator is unavailable.
func (g *Graph) publish(fact events.Fact) {
	if g.emit == nil {
		return
	}
	if err := g.emit.Emit(context.Background(), fact); err != nil {
		g.logger.Warn("Failed to publish quest fact",
			"type", fact.Type,
			"error", err)
	}
}
