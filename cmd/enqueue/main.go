package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/internal/config"
	"github.com/storyforge/narrative-engine/internal/logger"
	"github.com/storyforge/narrative-engine/internal/services/queue"
	"github.com/storyforge/narrative-engine/pkg/events"
	pkgqueue "github.com/storyforge/narrative-engine/pkg/queue"
)

// enqueue pushes a single fact onto the fact queue for a session. It is a
// development tool for exercising the worker without the API in front.
func main() {
	sessionFlag := flag.String("session", "", "session ID (required)")
	kindFlag := flag.String("kind", "day", "fact kind: day, relationship, or world")
	npcFlag := flag.String("npc", "", "NPC ID for relationship facts")
	deltaFlag := flag.Int("delta", 0, "trust delta for relationship facts")
	reasonFlag := flag.String("reason", "manual test", "reason for relationship facts")
	eventFlag := flag.String("event", "", "event kind for world facts")
	locationFlag := flag.String("location", "", "location for world facts")
	daysFlag := flag.Int("days", 1, "days elapsed for day facts")
	flag.Parse()

	if *sessionFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	sessionID, err := uuid.Parse(*sessionFlag)
	if err != nil {
		log.Fatalf("invalid session ID: %v", err)
	}

	fact, err := buildFact(*kindFlag, *npcFlag, *deltaFlag, *reasonFlag, *eventFlag, *locationFlag, *daysFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logg := logger.Setup(cfg)

	factQueue, err := queue.NewFactQueue(cfg.RedisURL, logg)
	if err != nil {
		log.Fatalf("failed to connect to queue: %v", err)
	}
	defer factQueue.Close()

	req := pkgqueue.NewRequest(sessionID, fact)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := factQueue.Enqueue(ctx, req); err != nil {
		log.Fatalf("failed to enqueue: %v", err)
	}

	depth, _ := factQueue.Depth(ctx)
	fmt.Printf("enqueued %s (request %s), queue depth %d\n", fact.Type, req.RequestID, depth)
}

func buildFact(kind, npc string, delta int, reason, event, location string, days int) (events.Fact, error) {
	switch kind {
	case "day":
		return events.Fact{Type: events.TypeDayPassed, Days: days}, nil
	case "relationship":
		if npc == "" {
			return events.Fact{}, fmt.Errorf("relationship facts require -npc")
		}
		return events.Fact{
			Type:         events.TypeRelationshipChanged,
			Relationship: &events.RelationshipChange{NPC: npc, Delta: delta, Reason: reason},
		}, nil
	case "world":
		if event == "" {
			return events.Fact{}, fmt.Errorf("world facts require -event")
		}
		return events.Fact{
			Type:  events.TypeWorldEvent,
			World: &events.WorldEvent{Kind: event, Location: location},
		}, nil
	default:
		return events.Fact{}, fmt.Errorf("unknown fact kind %q", kind)
	}
}
