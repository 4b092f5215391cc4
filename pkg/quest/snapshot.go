package quest

// Snapshot is the flat persistence form of the graph. Quests carry their
// own evolution history and adaptations; connections and unlocks are
// stored alongside so a restore does not have to replay lifecycle events
// to rebuild them.
type Snapshot struct {
	Active    map[string]*Quest `json:"active,omitempty"`
	Completed map[string]*Quest `json:"completed,omitempty"`
	Failed    map[string]*Quest `json:"failed,omitempty"`
	Retired   map[string]*Quest `json:"retired,omitempty"`
	Pending   map[string]*Quest `json:"pending,omitempty"`

	Connections map[string][]Connection      `json:"connections,omitempty"`
	Unlocks     map[string]RetirementUnlocks `json:"unlocks,omitempty"`
}

// Export returns a serializable snapshot of every bucket.
func (g *Graph) Export() Snapshot {
	snap := Snapshot{
		Active:      copyBucket(g.active),
		Completed:   copyBucket(g.completed),
		Failed:      copyBucket(g.failed),
		Retired:     copyBucket(g.retired),
		Pending:     copyBucket(g.pending),
		Connections: make(map[string][]Connection, len(g.connections)),
		Unlocks:     make(map[string]RetirementUnlocks, len(g.unlocks)),
	}
	for id, conns := range g.connections {
		snap.Connections[id] = append([]Connection(nil), conns...)
	}
	for id, u := range g.unlocks {
		snap.Unlocks[id] = u
	}
	return snap
}

// Import replaces the graph's state from a snapshot. Nil collections
// reset to empty, so a zero-value snapshot wipes the graph clean.
func (g *Graph) Import(snap Snapshot) {
	g.active = copyBucket(snap.Active)
	g.completed = copyBucket(snap.Completed)
	g.failed = copyBucket(snap.Failed)
	g.retired = copyBucket(snap.Retired)
	g.pending = copyBucket(snap.Pending)

	g.connections = make(map[string][]Connection)
	for id, conns := range snap.Connections {
		g.connections[id] = append([]Connection(nil), conns...)
	}
	g.unlocks = make(map[string]RetirementUnlocks)
	for id, u := range snap.Unlocks {
		g.unlocks[id] = u
	}
}

func copyBucket(bucket map[string]*Quest) map[string]*Quest {
	out := make(map[string]*Quest, len(bucket))
	for id, q := range bucket {
		cp := *q
		out[id] = &cp
	}
	return out
}
