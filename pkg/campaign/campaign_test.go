package campaign

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

func validCampaign() Campaign {
	return Campaign{
		Name: "The Sundered Coast",
		NPCs: []relationship.NPCProfile{
			{ID: "elara", Name: "Elara", Relations: []relationship.Relation{
				{Target: "finn", Kind: relationship.KindAlly},
			}},
			{ID: "finn", Name: "Finn"},
		},
		Factions: []relationship.FactionProfile{
			{ID: "iron_guard", Name: "Iron Guard", Members: []string{"finn"},
				Relations: []relationship.Relation{{Target: "smugglers", Kind: relationship.KindEnemy}}},
			{ID: "smugglers", Name: "Smugglers"},
		},
		Companions: []CompanionSpec{
			{ID: "finn", Name: "Finn", RomanceAvailable: true},
		},
		Quests: []quest.Spec{
			{ID: "opening", Title: "The Missing Tide",
				Context: quest.Context{NPCs: []string{"elara"}, Factions: []string{"smugglers"}}},
		},
	}
}

func TestValidate(t *testing.T) {
	c := validCampaign()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Campaign)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(c *Campaign) { c.Name = "" },
			wantErr: "name is required",
		},
		{
			name: "duplicate npc id",
			mutate: func(c *Campaign) {
				c.NPCs = append(c.NPCs, relationship.NPCProfile{ID: "elara", Name: "Other Elara"})
			},
			wantErr: `duplicate npc id "elara"`,
		},
		{
			name: "empty npc id",
			mutate: func(c *Campaign) {
				c.NPCs = append(c.NPCs, relationship.NPCProfile{Name: "Nameless"})
			},
			wantErr: "npc with empty id",
		},
		{
			name: "unknown relation target",
			mutate: func(c *Campaign) {
				c.NPCs[0].Relations = []relationship.Relation{{Target: "ghost", Kind: relationship.KindAlly}}
			},
			wantErr: `relates to unknown npc "ghost"`,
		},
		{
			name: "unknown faction member",
			mutate: func(c *Campaign) {
				c.Factions[0].Members = []string{"ghost"}
			},
			wantErr: `unknown member "ghost"`,
		},
		{
			name: "unknown faction relation",
			mutate: func(c *Campaign) {
				c.Factions[0].Relations = []relationship.Relation{{Target: "ghost_guild", Kind: relationship.KindAlly}}
			},
			wantErr: `relates to unknown faction "ghost_guild"`,
		},
		{
			name: "duplicate companion id",
			mutate: func(c *Campaign) {
				c.Companions = append(c.Companions, CompanionSpec{ID: "finn"})
			},
			wantErr: `duplicate companion id "finn"`,
		},
		{
			name: "quest without title",
			mutate: func(c *Campaign) {
				c.Quests = append(c.Quests, quest.Spec{})
			},
			wantErr: "quest with empty title",
		},
		{
			name: "quest references unknown npc",
			mutate: func(c *Campaign) {
				c.Quests[0].Context.NPCs = []string{"ghost"}
			},
			wantErr: `references unknown npc "ghost"`,
		},
		{
			name: "quest references unknown faction",
			mutate: func(c *Campaign) {
				c.Quests[0].Context.Factions = []string{"ghost_guild"}
			},
			wantErr: `references unknown faction "ghost_guild"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCampaign()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	network := relationship.NewNetwork(relationship.DefaultConfig(), logger)
	graph := quest.NewGraph(logger)

	c := validCampaign()
	c.Seed(network, graph)

	if _, ok := network.NPC("elara"); !ok {
		t.Error("elara not registered")
	}
	if _, ok := network.Faction("iron_guard"); !ok {
		t.Error("iron_guard not registered")
	}
	comp, err := network.Approval("finn")
	if err != nil {
		t.Fatalf("Approval() error = %v", err)
	}
	if !comp.Romance.Available {
		t.Error("finn's romance availability lost in seeding")
	}

	active := graph.ActiveQuests()
	if len(active) != 1 || active[0].ID != "opening" {
		t.Errorf("active quests = %+v, want the opening quest", active)
	}
}

func TestSeedDirectoryLeavesQuestsAlone(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	network := relationship.NewNetwork(relationship.DefaultConfig(), logger)

	c := validCampaign()
	c.SeedDirectory(network)

	if _, ok := network.NPC("finn"); !ok {
		t.Error("finn not registered")
	}
}
