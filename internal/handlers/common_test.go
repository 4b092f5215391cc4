package handlers

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/storyforge/narrative-engine/internal/services"
	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/pkg/campaign"
	"github.com/storyforge/narrative-engine/pkg/quest"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

// testLogger returns a logger suitable for handler tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// testCampaign builds a small but complete campaign fixture: two NPCs,
// one faction, a romanceable companion, and one opening quest.
func testCampaign() *campaign.Campaign {
	return &campaign.Campaign{
		Name:        "Harbor Intrigue",
		Description: "Smugglers and merchants collide at the docks.",
		NPCs: []relationship.NPCProfile{
			{ID: "elara", Name: "Elara", Occupation: "merchant"},
			{ID: "finn", Name: "Finn", Occupation: "dockhand"},
		},
		Factions: []relationship.FactionProfile{
			{ID: "iron_guard", Name: "Iron Guard", Members: []string{"finn"}},
		},
		Companions: []campaign.CompanionSpec{
			{ID: "finn", Name: "Finn", RomanceAvailable: true},
		},
		Quests: []quest.Spec{
			{
				ID:    "opening",
				Title: "Trouble at the Docks",
				Context: quest.Context{
					Location: "harbor",
					NPCs:     []string{"elara"},
					Themes:   []string{"smuggling"},
				},
			},
		},
	}
}

// newTestEnv wires mock storage with the test campaign and a session
// service on top of it.
func newTestEnv() (*storage.MockStorage, *services.SessionService) {
	sto := storage.NewMockStorage()
	sto.AddCampaign("harbor.json", testCampaign())
	svc := services.NewSessionService(sto, testLogger())
	return sto, svc
}

// createTestSession creates a fresh session for the test campaign.
func createTestSession(t *testing.T, svc *services.SessionService) *storage.Session {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), "harbor.json")
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return session
}
