package campaign

import (
	"fmt"

	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

// CompanionSpec declares a companion present in the campaign.
type CompanionSpec struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	RomanceAvailable bool   `json:"romance_available,omitempty"`
}

// Campaign is the template for a narrative session: the world directory
// (who exists and how they relate) plus the opening quests. Campaigns
// are static world data loaded from disk; all mutable state lives in
// engine snapshots.
type Campaign struct {
	Name        string `json:"name"`
	FileName    string `json:"file_name,omitempty"`
	Description string `json:"description,omitempty"`
	NarratorID  string `json:"narrator_id,omitempty"`

	NPCs       []relationship.NPCProfile     `json:"npcs,omitempty"`
	Factions   []relationship.FactionProfile `json:"factions,omitempty"`
	Companions []CompanionSpec               `json:"companions,omitempty"`

	Quests []quest.Spec `json:"quests,omitempty"`
}

// Validate checks internal consistency: unique IDs, relation and member
// references that resolve, and quests whose context names only known
// entities.
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("campaign name is required")
	}

	npcs := make(map[string]bool, len(c.NPCs))
	for _, n := range c.NPCs {
		if n.ID == "" {
			return fmt.Errorf("npc with empty id in campaign %q", c.Name)
		}
		if npcs[n.ID] {
			return fmt.Errorf("duplicate npc id %q", n.ID)
		}
		npcs[n.ID] = true
	}

	factions := make(map[string]bool, len(c.Factions))
	for _, f := range c.Factions {
		if f.ID == "" {
			return fmt.Errorf("faction with empty id in campaign %q", c.Name)
		}
		if factions[f.ID] {
			return fmt.Errorf("duplicate faction id %q", f.ID)
		}
		factions[f.ID] = true
	}

	for _, n := range c.NPCs {
		for _, rel := range n.Relations {
			if !npcs[rel.Target] {
				return fmt.Errorf("npc %q relates to unknown npc %q", n.ID, rel.Target)
			}
		}
	}
	for _, f := range c.Factions {
		for _, member := range f.Members {
			if !npcs[member] {
				return fmt.Errorf("faction %q lists unknown member %q", f.ID, member)
			}
		}
		for _, rel := range f.Relations {
			if !factions[rel.Target] {
				return fmt.Errorf("faction %q relates to unknown faction %q", f.ID, rel.Target)
			}
		}
	}

	companions := make(map[string]bool, len(c.Companions))
	for _, comp := range c.Companions {
		if comp.ID == "" {
			return fmt.Errorf("companion with empty id in campaign %q", c.Name)
		}
		if companions[comp.ID] {
			return fmt.Errorf("duplicate companion id %q", comp.ID)
		}
		companions[comp.ID] = true
	}

	for _, q := range c.Quests {
		if q.Title == "" {
			return fmt.Errorf("quest with empty title in campaign %q", c.Name)
		}
		for _, npc := range q.Context.NPCs {
			if !npcs[npc] {
				return fmt.Errorf("quest %q references unknown npc %q", q.Title, npc)
			}
		}
		for _, faction := range q.Context.Factions {
			if !factions[faction] {
				return fmt.Errorf("quest %q references unknown faction %q", q.Title, faction)
			}
		}
	}

	return nil
}

// Seed registers the campaign's directory into a network and creates its
// opening quests in a graph. Intended for fresh sessions; restored
// sessions import a snapshot instead and only need the directory.
func (c *Campaign) Seed(network *relationship.Network, graph *quest.Graph) {
	c.SeedDirectory(network)
	for _, spec := range c.Quests {
		graph.CreateQuest(spec)
	}
}

// SeedDirectory registers NPC, faction, and companion profiles without
// touching quest or relationship state.
func (c *Campaign) SeedDirectory(network *relationship.Network) {
	for _, n := range c.NPCs {
		network.RegisterNPC(n)
	}
	for _, f := range c.Factions {
		network.RegisterFaction(f)
	}
	for _, comp := range c.Companions {
		network.RegisterCompanion(comp.ID, comp.RomanceAvailable)
	}
}
