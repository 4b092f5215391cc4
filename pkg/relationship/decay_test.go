package relationship

import (
	"testing"
	"time"
)

func TestProcessDecay(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	n := testNetwork(t).WithClock(func() time.Time { return start })
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})
	n.ModifyTrust("elara", 20, "helped out", false) // 70, friendly

	// 10 days since interaction, 7 day threshold, friendly halves the
	// rate: int(3 * 1 * 0.5) = 1.
	n.ProcessDecay(start.Add(10 * 24 * time.Hour))

	rel, _ := n.Individual("elara")
	if rel.TrustLevel != 69 {
		t.Errorf("trust = %d, want 69", rel.TrustLevel)
	}
	last := rel.Notes[len(rel.Notes)-1]
	if !last.Decay {
		t.Error("decay note not flagged")
	}
	if last.Reason != "Natural decay from lack of interaction" {
		t.Errorf("decay reason = %q", last.Reason)
	}
}

func TestProcessDecayWithinThreshold(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	n := testNetwork(t).WithClock(func() time.Time { return start })
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})
	n.ModifyTrust("elara", 20, "helped out", false)

	n.ProcessDecay(start.Add(6 * 24 * time.Hour))

	rel, _ := n.Individual("elara")
	if rel.TrustLevel != 70 {
		t.Errorf("trust = %d, want untouched 70", rel.TrustLevel)
	}
}

func TestProcessDecayMultipliers(t *testing.T) {
	tests := []struct {
		name     string
		delta    int
		romance  bool
		expected int
	}{
		// 17 days since interaction: 10 days past threshold.
		{"enemy doubles", -45, false, 25},  // 5, enemy, amount int(10*2.0)=20, toward 50
		{"neutral full", -15, false, 45},   // 35, neutral band, amount 10
		{"ally slow", 30, false, 77},       // 80, ally, amount int(10*0.3)=3
		{"romance slowest", 30, true, 79},  // 80, active romance, amount int(10*0.1)=1
		{"never past neutral", 5, false, 50}, // 55, friendly, amount 5 clipped at neutral
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			n := testNetwork(t).WithClock(func() time.Time { return start })
			n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})
			n.ModifyTrust("elara", tt.delta, "setup", false)
			if tt.romance {
				rel, _ := n.Individual("elara")
				rel.Romance.Active = true
			}

			n.ProcessDecay(start.Add(17 * 24 * time.Hour))

			rel, _ := n.Individual("elara")
			if rel.TrustLevel != tt.expected {
				t.Errorf("trust = %d, want %d", rel.TrustLevel, tt.expected)
			}
		})
	}
}

func TestProcessDecayCompounds(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	n := testNetwork(t).WithClock(func() time.Time { return start })
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})
	n.ModifyTrust("elara", -15, "rude", false) // 35, neutral band

	// Decay does not refresh the interaction timestamp, so a later pass
	// measures from the original interaction and drifts further.
	n.ProcessDecay(start.Add(9 * 24 * time.Hour))
	rel, _ := n.Individual("elara")
	if rel.TrustLevel != 37 {
		t.Fatalf("trust after first pass = %d, want 37", rel.TrustLevel)
	}
	if !rel.LastInteraction.Equal(start) {
		t.Fatal("decay must not refresh LastInteraction")
	}

	n.ProcessDecay(start.Add(12 * 24 * time.Hour))
	rel, _ = n.Individual("elara")
	if rel.TrustLevel != 42 {
		t.Errorf("trust after second pass = %d, want 42", rel.TrustLevel)
	}
}

func TestProcessDecayNeverTouchedNPC(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	n := testNetwork(t).WithClock(func() time.Time { return start })
	n.RegisterNPC(NPCProfile{ID: "elara", Name: "Elara"})
	n.Individual("elara") // record exists, no interaction yet

	n.ProcessDecay(start.Add(100 * 24 * time.Hour))

	rel, _ := n.Individual("elara")
	if rel.TrustLevel != TrustNeutral {
		t.Errorf("trust = %d, want untouched %d", rel.TrustLevel, TrustNeutral)
	}
}

func TestProcessDecayCompanion(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	n := testNetwork(t).WithClock(func() time.Time { return start })
	n.RegisterCompanion("kira", false)
	n.ModifyCompanionApproval("kira", 30, "adventure", false) // 80

	// Companions use double the threshold: 14 days. At 13 days, nothing.
	n.ProcessDecay(start.Add(13 * 24 * time.Hour))
	c, _ := n.Approval("kira")
	if c.Approval != 80 {
		t.Fatalf("approval = %d, want untouched 80", c.Approval)
	}

	// At 20 days: int((20-14) * 0.5) = 3.
	n.ProcessDecay(start.Add(20 * 24 * time.Hour))
	c, _ = n.Approval("kira")
	if c.Approval != 77 {
		t.Errorf("approval = %d, want 77", c.Approval)
	}
	last := c.History[len(c.History)-1]
	if !last.Decay {
		t.Error("companion decay note not flagged")
	}
}
