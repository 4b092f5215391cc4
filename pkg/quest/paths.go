package quest

import (
	"slices"
	"sort"
)

// Archetype tags a family of solution methods.
type Archetype string

const (
	ArchDiplomatic    Archetype = "diplomatic"
	ArchCombat        Archetype = "combat"
	ArchStealth       Archetype = "stealth"
	ArchInvestigation Archetype = "investigation"
	ArchSocial        Archetype = "social"
	ArchMagical       Archetype = "magical"
	ArchResource      Archetype = "resource"
)

// archetypeOrder fixes iteration order so generated paths are
// deterministic before the viability sort.
var archetypeOrder = []Archetype{
	ArchDiplomatic,
	ArchCombat,
	ArchStealth,
	ArchInvestigation,
	ArchSocial,
	ArchMagical,
	ArchResource,
}

var archetypeMethods = map[Archetype][]string{
	ArchDiplomatic:    {"negotiation", "persuasion", "compromise"},
	ArchCombat:        {"direct_assault", "tactical_strike", "elimination"},
	ArchStealth:       {"infiltration", "sabotage", "theft"},
	ArchInvestigation: {"research", "interrogation", "surveillance"},
	ArchSocial:        {"alliance_building", "reputation", "manipulation"},
	ArchMagical:       {"spellcasting", "ritual", "artifact_use"},
	ArchResource:      {"trade", "bribery", "economic_pressure"},
}

var archetypeRequirements = map[Archetype][]string{
	ArchDiplomatic:    {"persuasion_skill", "reputation", "communication"},
	ArchCombat:        {"combat_skills", "weapons", "tactics"},
	ArchStealth:       {"stealth_skill", "infiltration_tools", "timing"},
	ArchInvestigation: {"investigation_skill", "information_sources", "time"},
	ArchMagical:       {"spellcasting_ability", "magical_components", "knowledge"},
}

// generateSolutionPaths walks the archetype table, keeps the archetypes
// viable for the quest context, scores them, and returns the paths
// sorted by viability descending.
func generateSolutionPaths(ctx Context) []SolutionPath {
	var paths []SolutionPath
	for _, arch := range archetypeOrder {
		if !archetypeViable(arch, ctx) {
			continue
		}
		path := SolutionPath{
			Archetype:    arch,
			Methods:      append([]string(nil), archetypeMethods[arch]...),
			Requirements: append([]string(nil), archetypeRequirements[arch]...),
			Viability:    pathViability(arch, ctx),
			Unlocked:     true,
		}
		if len(path.Methods) == 0 {
			continue
		}
		paths = append(paths, path)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Viability > paths[j].Viability
	})
	return paths
}

// archetypeViable gates archetypes against the quest context. Most are
// generally viable; a few need specific stakes or themes.
func archetypeViable(arch Archetype, ctx Context) bool {
	switch arch {
	case ArchCombat:
		return ctx.Stakes == StakesHigh || hasTheme(ctx, "conflict")
	case ArchDiplomatic:
		return len(ctx.NPCs) > 0
	case ArchStealth:
		return hasTheme(ctx, "infiltration") || hasTheme(ctx, "secrecy")
	case ArchInvestigation:
		return hasTheme(ctx, "mystery") || hasTheme(ctx, "information")
	default:
		return true
	}
}

// pathViability scores an archetype in [0,1] weighted by context match.
func pathViability(arch Archetype, ctx Context) float64 {
	viability := 0.5
	switch arch {
	case ArchCombat:
		if ctx.Stakes == StakesHigh {
			viability += 0.3
		}
	case ArchDiplomatic:
		if len(ctx.NPCs) > 0 {
			viability += 0.4
		}
	case ArchStealth:
		if hasTheme(ctx, "secrecy") {
			viability += 0.3
		}
	}
	if viability > 1.0 {
		viability = 1.0
	}
	return viability
}

func hasTheme(ctx Context, theme string) bool {
	return slices.Contains(ctx.Themes, theme)
}

// hasArchetype reports whether any path uses the archetype.
func hasArchetype(paths []SolutionPath, arch Archetype) bool {
	for _, p := range paths {
		if p.Archetype == arch {
			return true
		}
	}
	return false
}
