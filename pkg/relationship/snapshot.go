package relationship

// Snapshot is the flat persistence form of the network's owned
// collections. Unknown keys are ignored on import; missing keys default
// to empty collections.
type Snapshot struct {
	Individual map[string]*Relationship      `json:"individual,omitempty"`
	Factions   map[string]*FactionReputation `json:"factions,omitempty"`
	Companions map[string]*Companion         `json:"companions,omitempty"`
	History    []HistoryEntry                `json:"history,omitempty"`
}

// Export returns a serializable snapshot of every owned collection.
// Directory profiles are world data, not engine state, and are not part
// of the snapshot.
func (n *Network) Export() Snapshot {
	snap := Snapshot{
		Individual: make(map[string]*Relationship, len(n.individual)),
		Factions:   make(map[string]*FactionReputation, len(n.factions)),
		Companions: make(map[string]*Companion, len(n.companions)),
		History:    make([]HistoryEntry, len(n.history)),
	}
	for id, rel := range n.individual {
		cp := *rel
		snap.Individual[id] = &cp
	}
	for id, rep := range n.factions {
		cp := *rep
		snap.Factions[id] = &cp
	}
	for id, c := range n.companions {
		cp := *c
		snap.Companions[id] = &cp
	}
	copy(snap.History, n.history)
	return snap
}

// Import replaces the owned collections from a snapshot. Nil collections
// reset to empty, so a zero-value snapshot wipes the network clean.
func (n *Network) Import(snap Snapshot) {
	n.individual = make(map[string]*Relationship)
	for id, rel := range snap.Individual {
		cp := *rel
		n.individual[id] = &cp
	}
	n.factions = make(map[string]*FactionReputation)
	for id, rep := range snap.Factions {
		cp := *rep
		n.factions[id] = &cp
	}
	n.companions = make(map[string]*Companion)
	for id, c := range snap.Companions {
		cp := *c
		n.companions[id] = &cp
	}
	n.history = make([]HistoryEntry, len(snap.History))
	copy(n.history, snap.History)
	if len(n.history) > historyLimit {
		n.history = n.history[:historyLimit]
	}
}
