package quest

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testGraph returns a graph with a fixed clock and sequential quest IDs
// (q1, q2, ...).
func testGraph(t *testing.T) *Graph {
	t.Helper()
	seq := 0
	return NewGraph(testLogger()).
		WithClock(func() time.Time { return testTime }).
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("q%d", seq)
		})
}

func TestCreateQuestDefaults(t *testing.T) {
	g := testGraph(t)

	q := g.CreateQuest(Spec{Title: "Missing Shipment"})

	if q.ID != "q1" {
		t.Errorf("ID = %q, want q1", q.ID)
	}
	if q.Type != TypeSide {
		t.Errorf("Type = %q, want %q", q.Type, TypeSide)
	}
	if q.Status != StatusActive {
		t.Errorf("Status = %q, want %q", q.Status, StatusActive)
	}
	if q.Context.Stakes != StakesMedium {
		t.Errorf("Stakes = %q, want %q", q.Context.Stakes, StakesMedium)
	}
	if q.Adaptability != 0.7 {
		t.Errorf("Adaptability = %v, want 0.7", q.Adaptability)
	}
	if q.EmergentPotential != 0.5 {
		t.Errorf("EmergentPotential = %v, want 0.5", q.EmergentPotential)
	}
	if q.Flexibility != TypeSide.Flexibility() {
		t.Errorf("Flexibility = %v, want %v", q.Flexibility, TypeSide.Flexibility())
	}
	if !q.CreatedAt.Equal(testTime) {
		t.Errorf("CreatedAt = %v, want %v", q.CreatedAt, testTime)
	}
}

func TestCreateQuestExplicitSpec(t *testing.T) {
	g := testGraph(t)

	q := g.CreateQuest(Spec{
		ID:                "throne",
		Title:             "The Empty Throne",
		Type:              TypeMain,
		Context:           Context{Stakes: StakesHigh, NPCs: []string{"regent"}},
		Adaptability:      0.4,
		EmergentPotential: 0.9,
	})

	if q.ID != "throne" {
		t.Errorf("ID = %q, want explicit ID kept", q.ID)
	}
	if q.Type != TypeMain || q.Adaptability != 0.4 || q.EmergentPotential != 0.9 {
		t.Errorf("quest = %+v", q)
	}
}

func TestTypeWeights(t *testing.T) {
	tests := []struct {
		qType       Type
		priority    int
		flexibility float64
	}{
		{TypeMain, 10, 0.3},
		{TypeSide, 5, 0.7},
		{TypePersonal, 7, 0.5},
		{TypeEmergent, 6, 0.9},
		{TypeFaction, 8, 0.4},
		{TypeDiscovery, 4, 0.8},
		{Type("unknown"), 5, 0.7}, // falls back to side
	}
	for _, tt := range tests {
		if got := tt.qType.Priority(); got != tt.priority {
			t.Errorf("%s.Priority() = %d, want %d", tt.qType, got, tt.priority)
		}
		if got := tt.qType.Flexibility(); got != tt.flexibility {
			t.Errorf("%s.Flexibility() = %v, want %v", tt.qType, got, tt.flexibility)
		}
	}
}

func TestGetQuestAcrossBuckets(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A"})
	g.CreateQuest(Spec{ID: "b", Title: "B"})
	g.CompleteQuest("a", CompletionData{Method: "negotiation"})
	g.FailQuest("b", "ran out of time")

	if q := g.GetQuest("a"); q == nil || q.Status != StatusCompleted {
		t.Errorf("GetQuest(a) = %+v, want completed", q)
	}
	if q := g.GetQuest("b"); q == nil || q.Status != StatusFailed {
		t.Errorf("GetQuest(b) = %+v, want failed", q)
	}
	if q := g.GetQuest("missing"); q != nil {
		t.Errorf("GetQuest(missing) = %+v, want nil", q)
	}
}

func TestActiveQuestsOrdering(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "side_b", Title: "Side B", Type: TypeSide})
	g.CreateQuest(Spec{ID: "main", Title: "Main", Type: TypeMain})
	g.CreateQuest(Spec{ID: "faction", Title: "Faction", Type: TypeFaction})
	g.CreateQuest(Spec{ID: "side_a", Title: "Side A", Type: TypeSide})

	active := g.ActiveQuests()
	want := []string{"main", "faction", "side_a", "side_b"}
	if len(active) != len(want) {
		t.Fatalf("active = %d quests, want %d", len(active), len(want))
	}
	for i, id := range want {
		if active[i].ID != id {
			t.Errorf("active[%d] = %q, want %q", i, active[i].ID, id)
		}
	}
}

func TestAnalyze(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Type: TypeMain})
	g.CreateQuest(Spec{ID: "b", Title: "B"})
	g.CreateQuest(Spec{ID: "c", Title: "C"})
	g.CompleteQuest("a", CompletionData{Method: "negotiation"})
	g.FailQuest("b", "lost")

	a := g.Analyze()
	if a.Active != 1 || a.Completed != 1 || a.Failed != 1 {
		t.Errorf("counts = %+v", a)
	}
	if a.TypeBreakdown[TypeMain].Completed != 1 {
		t.Errorf("main completed = %d, want 1", a.TypeBreakdown[TypeMain].Completed)
	}
	if a.SolutionPreferences["negotiation"] != 1 {
		t.Errorf("preferences = %v", a.SolutionPreferences)
	}
	// 1 completed of (1 active + 1 completed + 1 failed, plus the
	// redemption opportunity stays pending).
	if a.PlayerEngagement < 0.3 || a.PlayerEngagement > 0.34 {
		t.Errorf("engagement = %v, want 1/3", a.PlayerEngagement)
	}
}
