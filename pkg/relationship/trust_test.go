package relationship

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/storyforge/narrative-engine/pkg/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testNetwork(t *testing.T) *Network {
	t.Helper()
	return NewNetwork(DefaultConfig(), testLogger())
}

func TestDeriveRelType(t *testing.T) {
	tests := []struct {
		trust    int
		expected RelType
	}{
		{0, RelEnemy},
		{10, RelEnemy},
		{11, RelUnfriendly},
		{30, RelUnfriendly},
		{31, RelNeutral},
		{40, RelNeutral},
		{41, RelFriendly},
		{50, RelFriendly},
		{70, RelFriendly},
		{71, RelAlly},
		{90, RelAlly},
		{91, RelDevoted},
		{100, RelDevoted},
	}

	for _, tt := range tests {
		if got := DeriveRelType(tt.trust); got != tt.expected {
			t.Errorf("DeriveRelType(%d) = %q, want %q", tt.trust, got, tt.expected)
		}
	}
}

func TestModifyTrust(t *testing.T) {
	n := testNetwork(t)
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})

	rel, err := n.ModifyTrust("elara", 25, "helped with the harvest", false)
	if err != nil {
		t.Fatalf("ModifyTrust() error = %v", err)
	}
	if rel.TrustLevel != 75 {
		t.Errorf("TrustLevel = %d, want 75", rel.TrustLevel)
	}
	if rel.Type != RelAlly {
		t.Errorf("Type = %q, want %q", rel.Type, RelAlly)
	}
	if rel.Interactions != 1 {
		t.Errorf("Interactions = %d, want 1", rel.Interactions)
	}
	if len(rel.Notes) != 1 {
		t.Fatalf("len(Notes) = %d, want 1", len(rel.Notes))
	}
	if rel.Notes[0].OldValue != 50 || rel.Notes[0].NewValue != 75 {
		t.Errorf("Note = %+v, want old 50 new 75", rel.Notes[0])
	}
}

func TestModifyTrustClamping(t *testing.T) {
	n := testNetwork(t)
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})

	rel, _ := n.ModifyTrust("elara", 200, "impossible generosity", false)
	if rel.TrustLevel != TrustMax {
		t.Errorf("TrustLevel = %d, want %d", rel.TrustLevel, TrustMax)
	}

	rel, _ = n.ModifyTrust("elara", -500, "unforgivable betrayal", false)
	if rel.TrustLevel != TrustMin {
		t.Errorf("TrustLevel = %d, want %d", rel.TrustLevel, TrustMin)
	}
}

func TestModifyTrustUnknownNPC(t *testing.T) {
	n := testNetwork(t)

	_, err := n.ModifyTrust("nobody", 10, "whatever", true)
	if err != ErrUnknownEntity {
		t.Errorf("ModifyTrust() error = %v, want ErrUnknownEntity", err)
	}
}

func TestTrustCascade(t *testing.T) {
	n := testNetwork(t)
	n.RegisterNPC(NPCProfile{
		ID:   "elara",
		Name: "Elara",
		Relations: []Relation{
			{Target: "finn", Kind: KindAlly},
			{Target: "mira", Kind: KindFamily},
			{Target: "vex", Kind: KindEnemy},
			{Target: "old_tom", Kind: KindAcquaintance},
		},
	})
	n.RegisterNPC(NPCProfile{ID: "finn", Name: "Finn"})
	n.RegisterNPC(NPCProfile{ID: "mira", Name: "Mira"})
	n.RegisterNPC(NPCProfile{ID: "vex", Name: "Vex"})
	n.RegisterNPC(NPCProfile{ID: "old_tom", Name: "Old Tom"})

	if _, err := n.ModifyTrust("elara", 10, "saved her life", true); err != nil {
		t.Fatalf("ModifyTrust() error = %v", err)
	}

	tests := []struct {
		npc   string
		trust int
	}{
		{"finn", 54},    // ally: 10 * 0.4
		{"mira", 56},    // family: 10 * 0.6
		{"vex", 45},     // enemy: 10 * -0.5
		{"old_tom", 51}, // acquaintance: 10 * 0.1
	}
	for _, tt := range tests {
		rel, err := n.Individual(tt.npc)
		if err != nil {
			t.Fatalf("Individual(%q) error = %v", tt.npc, err)
		}
		if rel.TrustLevel != tt.trust {
			t.Errorf("%s trust = %d, want %d", tt.npc, rel.TrustLevel, tt.trust)
		}
	}

	rel, _ := n.Individual("finn")
	if len(rel.Notes) != 1 {
		t.Fatalf("finn notes = %d, want 1", len(rel.Notes))
	}
	want := "Consequence of actions toward Elara: saved her life"
	if rel.Notes[0].Reason != want {
		t.Errorf("cascade reason = %q, want %q", rel.Notes[0].Reason, want)
	}
}

func TestTrustCascadeBelowThreshold(t *testing.T) {
	n := testNetwork(t)
	n.RegisterNPC(NPCProfile{
		ID:        "elara",
		Name:      "Elara",
		Relations: []Relation{{Target: "finn", Kind: KindAlly}},
	})
	n.RegisterNPC(NPCProfile{ID: "finn", Name: "Finn"})

	// |delta| < 5 never spills over.
	n.ModifyTrust("elara", 4, "small favor", true)

	rel, _ := n.Individual("finn")
	if rel.TrustLevel != TrustNeutral {
		t.Errorf("finn trust = %d, want untouched %d", rel.TrustLevel, TrustNeutral)
	}
}

func TestTrustCascadeSingleHop(t *testing.T) {
	n := testNetwork(t)
	// elara -> finn -> mira: a change to elara must not reach mira.
	n.RegisterNPC(NPCProfile{
		ID:        "elara",
		Name:      "Elara",
		Relations: []Relation{{Target: "finn", Kind: KindFamily}},
	})
	n.RegisterNPC(NPCProfile{
		ID:        "finn",
		Name:      "Finn",
		Relations: []Relation{{Target: "mira", Kind: KindFamily}},
	})
	n.RegisterNPC(NPCProfile{ID: "mira", Name: "Mira"})

	n.ModifyTrust("elara", 20, "major event", true)

	finn, _ := n.Individual("finn")
	if finn.TrustLevel != 62 {
		t.Errorf("finn trust = %d, want 62", finn.TrustLevel)
	}
	mira, _ := n.Individual("mira")
	if mira.TrustLevel != TrustNeutral {
		t.Errorf("mira trust = %d, want untouched %d", mira.TrustLevel, TrustNeutral)
	}
}

func TestTrustCascadeSkipsUnknownTargets(t *testing.T) {
	n := testNetwork(t)
	n.RegisterNPC(NPCProfile{
		ID:        "elara",
		Name:      "Elara",
		Relations: []Relation{{Target: "ghost", Kind: KindAlly}},
	})

	rel, err := n.ModifyTrust("elara", 10, "no crash please", true)
	if err != nil {
		t.Fatalf("ModifyTrust() error = %v", err)
	}
	if rel.TrustLevel != 60 {
		t.Errorf("elara trust = %d, want 60", rel.TrustLevel)
	}
}

func TestTypeChangeFactEmitted(t *testing.T) {
	rec := events.NewRecorder()
	n := testNetwork(t).WithEmitter(rec)
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})

	n.ModifyTrust("elara", 30, "heroics", false)

	changed := rec.ByType(events.TypeRelTypeChanged)
	if len(changed) != 1 {
		t.Fatalf("type change facts = %d, want 1", len(changed))
	}
	if changed[0].Data["new_type"] != string(RelAlly) {
		t.Errorf("new_type = %v, want %q", changed[0].Data["new_type"], RelAlly)
	}

	updated := rec.ByType(events.TypeIndividualUpdated)
	if len(updated) != 1 {
		t.Fatalf("individual update facts = %d, want 1", len(updated))
	}
}

func TestHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := testNetwork(t).WithClock(func() time.Time { return now })
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})
	n.RegisterNPC(NPCProfile{ID: "finn", Name: "Finn"})

	n.ModifyTrust("elara", 5, "first", false)
	n.ModifyTrust("finn", 5, "second", false)
	n.ModifyTrust("elara", -5, "third", false)

	all := n.History("", "", 0)
	if len(all) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(all))
	}
	// Newest first.
	if all[0].Reason != "third" {
		t.Errorf("history[0].Reason = %q, want %q", all[0].Reason, "third")
	}

	elaraOnly := n.History("individual", "elara", 0)
	if len(elaraOnly) != 2 {
		t.Errorf("filtered history = %d entries, want 2", len(elaraOnly))
	}

	limited := n.History("", "", 1)
	if len(limited) != 1 {
		t.Errorf("limited history = %d entries, want 1", len(limited))
	}
}
