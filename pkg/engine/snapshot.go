package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

// SnapshotVersion guards imports against snapshots written by a
// different state layout.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when a snapshot was written by an
// incompatible engine version.
var ErrSnapshotVersion = errors.New("engine: unsupported snapshot version")

// DeferredTask is the persistable form of a scheduled task: its key and
// due time. The work itself is rebuilt from the key on import.
type DeferredTask struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}

// Snapshot is the full persistence form of the engine: both subsystem
// snapshots plus orchestration-owned state.
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	Relationships relationship.Snapshot `json:"relationships"`
	Quests        quest.Snapshot        `json:"quests"`

	WorldState map[string]string `json:"world_state,omitempty"`
	Deferred   []DeferredTask    `json:"deferred,omitempty"`
}

// Export captures the complete engine state.
func (e *Engine) Export() Snapshot {
	snap := Snapshot{
		Version:       SnapshotVersion,
		SavedAt:       e.clock(),
		Relationships: e.network.Export(),
		Quests:        e.graph.Export(),
	}
	if len(e.worldState) > 0 {
		snap.WorldState = make(map[string]string, len(e.worldState))
		for k, v := range e.worldState {
			snap.WorldState[k] = v
		}
	}
	for _, key := range e.scheduler.Pending() {
		snap.Deferred = append(snap.Deferred, DeferredTask{Key: key, At: e.scheduler.dueAt(key)})
	}
	return snap
}

// Import replaces the engine state from a snapshot. Deferred retirement
// checks are rebuilt from their keys; unrecognized keys are dropped with
// a warning rather than failing the restore.
func (e *Engine) Import(snap Snapshot) error {
	if snap.Version != 0 && snap.Version != SnapshotVersion {
		return ErrSnapshotVersion
	}

	e.network.Import(snap.Relationships)
	e.graph.Import(snap.Quests)

	e.worldState = make(map[string]string)
	for k, v := range snap.WorldState {
		e.worldState[k] = v
	}

	e.scheduler.Reset()
	for _, t := range snap.Deferred {
		questID, ok := strings.CutPrefix(t.Key, "retire:")
		if !ok {
			e.logger.Warn("Dropping deferred task with unknown key", "key", t.Key)
			continue
		}
		e.scheduler.Schedule(t.Key, t.At, func() {
			if !e.graph.EligibleForRetirement(questID) {
				return
			}
			e.graph.RetireQuest(questID, quest.RetirementReasonAutomatic)
		})
	}
	return nil
}
