package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/storyforge/narrative-engine/pkg/events"
	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

func TestEngineSnapshotRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	w.graph.CreateQuest(quest.Spec{
		ID:      "crown",
		Title:   "The Crown",
		Type:    quest.TypeMain,
		Context: quest.Context{Stakes: quest.StakesHigh},
		Rewards: []quest.Effect{{Kind: "world_state", Key: "succession_settled", Value: "true"}},
	})
	w.network.ModifyTrust("elara", 20, "setup", false)
	w.engine.CompleteQuest("crown", quest.CompletionData{Method: "negotiation"})

	snap := w.engine.Export()
	if snap.Version != SnapshotVersion {
		t.Errorf("version = %d, want %d", snap.Version, SnapshotVersion)
	}

	// Round-trip through JSON the way storage does.
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}

	restored := newTestWorld(t)
	if err := restored.engine.Import(decoded); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if rel, _ := restored.network.Individual("elara"); rel.TrustLevel != 70 {
		t.Errorf("restored trust = %d, want 70", rel.TrustLevel)
	}
	if q := restored.graph.GetQuest("crown"); q == nil || q.Status != quest.StatusCompleted {
		t.Errorf("restored quest = %+v", q)
	}
	if v, ok := restored.engine.WorldState("succession_settled"); !ok || v != "true" {
		t.Errorf("restored world state = %q/%v", v, ok)
	}

	// The deferred retirement survives and still fires.
	if got := restored.engine.Scheduler().Pending(); len(got) != 1 || got[0] != "retire:crown" {
		t.Fatalf("restored pending = %v", got)
	}
	restored.advance(48 * time.Hour)
	restored.engine.PassDays(2)
	if q := restored.graph.GetQuest("crown"); q.Status != quest.StatusRetired {
		t.Errorf("restored quest status = %q, want retired after the delay", q.Status)
	}
}

func TestEngineImportRejectsNewerVersion(t *testing.T) {
	w := newTestWorld(t)

	err := w.engine.Import(Snapshot{Version: 2})
	if !errors.Is(err, ErrSnapshotVersion) {
		t.Errorf("Import() error = %v, want ErrSnapshotVersion", err)
	}
}

func TestEngineImportAcceptsLegacyZeroVersion(t *testing.T) {
	w := newTestWorld(t)

	if err := w.engine.Import(Snapshot{}); err != nil {
		t.Errorf("Import() error = %v, want nil for version 0", err)
	}
}

func TestEngineImportDropsUnknownDeferredKeys(t *testing.T) {
	w := newTestWorld(t)

	err := w.engine.Import(Snapshot{
		Version: SnapshotVersion,
		Deferred: []DeferredTask{
			{Key: "retire:crown", At: w.now.Add(time.Hour)},
			{Key: "mystery:task", At: w.now.Add(time.Hour)},
		},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	got := w.engine.Scheduler().Pending()
	if len(got) != 1 || got[0] != "retire:crown" {
		t.Errorf("pending = %v, want just the retirement check", got)
	}
}

func TestEngineImportReplacesState(t *testing.T) {
	w := newTestWorld(t)
	w.network.ModifyTrust("elara", 20, "soon gone", false)
	w.graph.CreateQuest(quest.Spec{ID: "old", Title: "Old"})
	w.engine.RecordChoice(events.Choice{}) // no-op, just exercises the path

	if err := w.engine.Import(Snapshot{Version: SnapshotVersion}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if w.graph.GetQuest("old") != nil {
		t.Error("import kept the old quest")
	}
	rel, err := w.network.Individual("elara")
	if err != nil {
		t.Fatalf("Individual() error = %v", err)
	}
	if rel.TrustLevel != relationship.TrustNeutral {
		t.Errorf("trust = %d, want reset to neutral", rel.TrustLevel)
	}
}
