package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/pkg/events"
	pkgqueue "github.com/storyforge/narrative-engine/pkg/queue"
)

func setupTestQueue(t *testing.T) (*FactQueue, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	q, err := NewFactQueue("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create fact queue: %v", err)
	}
	return q, mr
}

func TestFactQueueEnqueueDequeue(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()
	defer q.Close()

	ctx := context.Background()
	sessionID := uuid.New()

	reqs := []*pkgqueue.Request{
		pkgqueue.NewRequest(sessionID, events.Fact{Type: events.TypeDayPassed, Days: 1}),
		pkgqueue.NewRequest(sessionID, events.Fact{
			Type:         events.TypeRelationshipChanged,
			Relationship: &events.RelationshipChange{NPC: "elara", Delta: 10},
		}),
	}
	for _, req := range reqs {
		if err := q.Enqueue(ctx, req); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth() error = %v", err)
	}
	if depth != 2 {
		t.Errorf("Depth() = %d, want 2", depth)
	}

	// FIFO order.
	for i, want := range reqs {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		if got == nil {
			t.Fatalf("Dequeue() = nil at %d", i)
		}
		if got.RequestID != want.RequestID {
			t.Errorf("dequeued[%d] = %q, want %q", i, got.RequestID, want.RequestID)
		}
		if got.Fact.Type != want.Fact.Type {
			t.Errorf("dequeued[%d] fact type = %q, want %q", i, got.Fact.Type, want.Fact.Type)
		}
	}
}

func TestFactQueueDequeueEmpty(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()
	defer q.Close()

	req, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if req != nil {
		t.Errorf("Dequeue() on empty queue = %+v, want nil", req)
	}
}

func TestFactQueueBlockingDequeue(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()
	defer q.Close()

	ctx := context.Background()

	want := pkgqueue.NewRequest(uuid.New(), events.Fact{Type: events.TypeDayPassed, Days: 2})
	if err := q.Enqueue(ctx, want); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	got, err := q.BlockingDequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("BlockingDequeue() error = %v", err)
	}
	if got == nil || got.RequestID != want.RequestID {
		t.Errorf("BlockingDequeue() = %+v, want %+v", got, want)
	}
}
