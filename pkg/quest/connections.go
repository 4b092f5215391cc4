package quest

import (
	"slices"
	"strings"
)

// ConnectionType classifies why two quests are linked.
type ConnectionType string

const (
	ConnNPCShared     ConnectionType = "npc_shared"
	ConnFactionShared ConnectionType = "faction_shared"
	ConnThematic      ConnectionType = "thematic"
)

// Fixed edge strengths per connection type.
const (
	strengthNPC     = 0.7
	strengthFaction = 0.6
	strengthTheme   = 0.4
)

// Connection is a derived, undirected weighted edge between two quests.
// Edges are recomputed when a quest is created and dropped with the
// quests they join; they are never authoritative state.
type Connection struct {
	QuestID  string         `json:"quest_id"`
	Type     ConnectionType `json:"type"`
	Strength float64        `json:"strength"`
	NPC      string         `json:"npc,omitempty"`
	Faction  string         `json:"faction,omitempty"`
	Themes   []string       `json:"themes,omitempty"`
}

// discoverConnections scans all other active quests for shared NPCs,
// shared factions, and overlapping themes, recording an edge per match
// on both endpoints.
func (g *Graph) discoverConnections(q *Quest) {
	for otherID, other := range g.active {
		if otherID == q.ID {
			continue
		}

		for _, npc := range q.Context.NPCs {
			if slices.Contains(other.Context.NPCs, npc) {
				g.addEdge(q.ID, otherID, Connection{
					Type:     ConnNPCShared,
					Strength: strengthNPC,
					NPC:      npc,
				})
			}
		}

		for _, faction := range q.Context.Factions {
			if slices.Contains(other.Context.Factions, faction) {
				g.addEdge(q.ID, otherID, Connection{
					Type:     ConnFactionShared,
					Strength: strengthFaction,
					Faction:  faction,
				})
			}
		}

		if shared := sharedThemes(q.Context.Themes, other.Context.Themes); len(shared) > 0 {
			g.addEdge(q.ID, otherID, Connection{
				Type:     ConnThematic,
				Strength: strengthTheme,
				Themes:   shared,
			})
		}
	}
}

// addEdge records the undirected edge on both endpoints.
func (g *Graph) addEdge(a, b string, conn Connection) {
	forward := conn
	forward.QuestID = b
	g.connections[a] = append(g.connections[a], forward)

	backward := conn
	backward.QuestID = a
	g.connections[b] = append(g.connections[b], backward)
}

// Connections returns the edges recorded for a quest.
func (g *Graph) Connections(questID string) []Connection {
	return g.connections[questID]
}

// dropConnections removes every edge touching the quest.
func (g *Graph) dropConnections(questID string) {
	delete(g.connections, questID)
	for id, conns := range g.connections {
		kept := conns[:0]
		for _, c := range conns {
			if c.QuestID != questID {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			delete(g.connections, id)
		} else {
			g.connections[id] = kept
		}
	}
}

// updateConnectedQuests propagates a status change to every quest linked
// to the changed one, evolving each via a quest_failure or equivalent
// connection trigger.
func (g *Graph) updateConnectedQuests(changed *Quest, change Status) {
	for _, conn := range g.connections[changed.ID] {
		connected, ok := g.active[conn.QuestID]
		if !ok {
			continue
		}
		evolved := g.adaptToConnectedChange(connected, conn, changed, change)
		if evolved {
			g.logger.Info("Connected quest evolved",
				"quest", connected.ID,
				"source", changed.ID,
				"change", string(change),
				"connection", string(conn.Type))
		}
	}
}

// adaptToConnectedChange adjusts a connected quest when its neighbor
// resolves. A failed neighbor raises the connected quest's stakes; a
// completed one nudges viability on the shared dimension.
func (g *Graph) adaptToConnectedChange(q *Quest, conn Connection, changed *Quest, change Status) bool {
	prior := snapshotPrior(q)
	adapted := false

	switch change {
	case StatusFailed:
		if q.Context.Stakes != StakesHigh {
			q.Context.Stakes = StakesHigh
			adapted = true
		}
	case StatusCompleted:
		for i := range q.SolutionPaths {
			switch {
			case conn.Type == ConnNPCShared && q.SolutionPaths[i].Archetype == ArchDiplomatic,
				conn.Type == ConnFactionShared && q.SolutionPaths[i].Archetype == ArchSocial:
				if q.SolutionPaths[i].Viability < 1.0 {
					q.SolutionPaths[i].Viability = minFloat(1.0, q.SolutionPaths[i].Viability+0.1)
					adapted = true
				}
			}
		}
	}

	if adapted {
		trigger := TriggerQuestFailure
		if change == StatusCompleted {
			trigger = TriggerWorldEvent
		}
		g.recordEvolution(q, trigger, prior,
			"Adapted to "+string(change)+" of connected quest "+changed.Title)
	}
	return adapted
}

// sharedThemes returns themes that overlap by substring containment in
// either direction, so "betrayal" links with "noble_betrayal".
func sharedThemes(a, b []string) []string {
	var shared []string
	for _, ta := range a {
		for _, tb := range b {
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				if !slices.Contains(shared, tb) {
					shared = append(shared, tb)
				}
			}
		}
	}
	return shared
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
