package quest

import (
	"slices"
	"testing"

	"github.com/storyforge/narrative-engine/pkg/events"
)

func TestEvolveQuestNonActive(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A"})
	g.CompleteQuest("a", CompletionData{Method: "negotiation"})

	trigger := Trigger{Type: TriggerQuestFailure}
	if q := g.EvolveQuest("a", trigger); q != nil {
		t.Errorf("EvolveQuest on completed quest = %+v, want nil", q)
	}
	if q := g.EvolveQuest("missing", trigger); q != nil {
		t.Errorf("EvolveQuest on unknown quest = %+v, want nil", q)
	}
}

func TestEvolveFromChoicePositiveRelationship(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{Stakes: StakesHigh}}) // no NPCs: no diplomatic path yet

	q := g.EvolveQuest("a", Trigger{
		Type: TriggerPlayerChoice,
		Choice: &events.Choice{
			Characters:   []string{"elara"},
			Consequences: []events.Consequence{{Kind: "relationship", Target: "elara", Delta: 10}},
		},
	})
	// elara is not in the quest context, so nothing changes.
	if q != nil {
		t.Fatalf("evolved despite unrelated NPC: %+v", q)
	}

	g.CreateQuest(Spec{ID: "b", Title: "B", Context: Context{Stakes: StakesHigh, NPCs: []string{"elara"}}})
	// Strip the generated diplomatic path so the adaptation is visible.
	b := g.GetQuest("b")
	kept := b.SolutionPaths[:0]
	for _, p := range b.SolutionPaths {
		if p.Archetype != ArchDiplomatic {
			kept = append(kept, p)
		}
	}
	b.SolutionPaths = kept

	q = g.EvolveQuest("b", Trigger{
		Type: TriggerPlayerChoice,
		Choice: &events.Choice{
			Characters:   []string{"elara"},
			Consequences: []events.Consequence{{Kind: "relationship", Target: "elara", Delta: 10}},
		},
	})
	if q == nil {
		t.Fatal("quest did not evolve")
	}
	last := q.SolutionPaths[len(q.SolutionPaths)-1]
	if last.Archetype != ArchDiplomatic || last.Viability != 0.8 {
		t.Errorf("added path = %+v", last)
	}
	if !slices.Contains(last.Requirements, "good_relationship_elara") {
		t.Errorf("requirements = %v", last.Requirements)
	}
	if !slices.Contains(last.Methods, "cooperative_approach") {
		t.Errorf("methods = %v", last.Methods)
	}
}

func TestEvolveFromChoiceNegativeRelationship(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{NPCs: []string{"elara"}}})

	// A positive pass is a no-op because the generated diplomatic path
	// already exists; the negative pass removes cooperative paths and
	// adds a confrontational one.
	q := g.EvolveQuest("a", Trigger{
		Type:         TriggerRelationshipChange,
		Relationship: &events.RelationshipChange{NPC: "elara", Delta: -15},
	})
	if q == nil {
		t.Fatal("quest did not evolve")
	}

	last := q.SolutionPaths[len(q.SolutionPaths)-1]
	if last.Archetype != ArchCombat || last.Viability != 0.6 {
		t.Errorf("added path = %+v", last)
	}
	if !slices.Contains(last.Requirements, "hostile_relationship_elara") {
		t.Errorf("requirements = %v", last.Requirements)
	}
}

func TestEvolveFromChoiceMorality(t *testing.T) {
	tests := []struct {
		name      string
		weight    int
		evolved   bool
		archetype Archetype
		req       string
	}{
		{"strong good", 2, true, ArchDiplomatic, "high_morality"},
		{"strong evil", -3, true, ArchCombat, "low_morality"},
		{"mild", 1, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGraph(t)
			g.CreateQuest(Spec{ID: "a", Title: "A"})

			q := g.EvolveQuest("a", Trigger{
				Type:   TriggerPlayerChoice,
				Choice: &events.Choice{MoralWeight: tt.weight},
			})
			if !tt.evolved {
				if q != nil {
					t.Fatalf("evolved on mild choice: %+v", q)
				}
				return
			}
			if q == nil {
				t.Fatal("quest did not evolve")
			}
			last := q.SolutionPaths[len(q.SolutionPaths)-1]
			if last.Archetype != tt.archetype || last.Viability != 0.9 {
				t.Errorf("added path = %+v", last)
			}
			if !slices.Contains(last.Requirements, tt.req) {
				t.Errorf("requirements = %v, want %q", last.Requirements, tt.req)
			}
		})
	}
}

func TestEvolveFromWorldEvent(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{
		Location: "harbor",
		Factions: []string{"iron_guard"},
		Stakes:   StakesLow,
	}})

	q := g.EvolveQuest("a", Trigger{
		Type: TriggerWorldEvent,
		World: &events.WorldEvent{
			Kind:             "invasion",
			Location:         "harbor",
			AffectedFactions: []string{"iron_guard"},
		},
	})
	if q == nil {
		t.Fatal("quest did not evolve")
	}
	if q.Context.Stakes != StakesHigh {
		t.Errorf("stakes = %q, want high after event at quest location", q.Context.Stakes)
	}
	if !slices.Contains(q.Context.Themes, "invasion") {
		t.Errorf("themes = %v, want invasion folded in", q.Context.Themes)
	}
}

func TestEvolveFromWorldEventElsewhere(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{Location: "harbor"}})

	q := g.EvolveQuest("a", Trigger{
		Type:  TriggerWorldEvent,
		World: &events.WorldEvent{Kind: "drought", Location: "plains"},
	})
	if q != nil {
		t.Errorf("evolved on unrelated event: %+v", q)
	}
}

func TestEvolveFromTime(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{Stakes: StakesHigh}})
	g.CreateQuest(Spec{ID: "b", Title: "B", Context: Context{Stakes: StakesMedium}})

	q := g.EvolveQuest("a", Trigger{Type: TriggerTimePassage, Days: 2})
	if q == nil {
		t.Fatal("high-stakes quest did not gain urgency")
	}
	if !slices.Contains(q.Context.Themes, "urgency") {
		t.Errorf("themes = %v, want urgency", q.Context.Themes)
	}

	// Urgency is added once.
	if q := g.EvolveQuest("a", Trigger{Type: TriggerTimePassage, Days: 2}); q != nil {
		t.Errorf("second passage re-evolved: %+v", q.Context.Themes)
	}

	// Medium stakes do not simmer.
	if q := g.EvolveQuest("b", Trigger{Type: TriggerTimePassage, Days: 2}); q != nil {
		t.Errorf("medium-stakes quest evolved: %+v", q)
	}
}

func TestEvolveFromFaction(t *testing.T) {
	g := testGraph(t)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{Factions: []string{"iron_guard"}}})

	q := g.EvolveQuest("a", Trigger{
		Type:    TriggerFactionChange,
		Faction: &FactionChange{Faction: "iron_guard", Delta: 20},
	})
	if q == nil {
		t.Fatal("quest did not evolve")
	}
	last := q.SolutionPaths[len(q.SolutionPaths)-1]
	if !slices.Contains(last.Requirements, "good_standing_iron_guard") {
		t.Errorf("requirements = %v", last.Requirements)
	}

	// Unrelated faction is a no-op.
	if q := g.EvolveQuest("a", Trigger{
		Type:    TriggerFactionChange,
		Faction: &FactionChange{Faction: "cult", Delta: 20},
	}); q != nil {
		t.Errorf("evolved on unrelated faction: %+v", q)
	}
}

func TestRecordEvolutionAudit(t *testing.T) {
	rec := events.NewRecorder()
	g := testGraph(t).WithEmitter(rec)
	g.CreateQuest(Spec{ID: "a", Title: "A", Context: Context{Stakes: StakesLow}})

	before := g.GetQuest("a").Context.Stakes
	q := g.EvolveQuest("a", Trigger{Type: TriggerQuestFailure})
	if q == nil {
		t.Fatal("quest did not evolve")
	}

	if len(q.EvolutionHistory) != 1 {
		t.Fatalf("history = %d entries, want 1", len(q.EvolutionHistory))
	}
	ev := q.EvolutionHistory[0]
	if ev.TriggerType != TriggerQuestFailure {
		t.Errorf("trigger = %q", ev.TriggerType)
	}
	if ev.Prior.Context.Stakes != before {
		t.Errorf("prior stakes = %q, want %q", ev.Prior.Context.Stakes, before)
	}
	if !q.LastModified.Equal(testTime) {
		t.Errorf("LastModified = %v", q.LastModified)
	}

	facts := rec.ByType(events.TypeQuestEvolved)
	if len(facts) != 1 {
		t.Fatalf("quest:evolved facts = %d, want 1", len(facts))
	}
	if facts[0].Data["quest"] != "a" {
		t.Errorf("fact data = %v", facts[0].Data)
	}
}
