package events

import (
	"context"
	"sync"
)

// Bus is a synchronous in-process fact bus. Handlers run in subscription
// order on the publishing goroutine, so a fact is fully processed before
// Publish returns. This is the dispatch-order contract the orchestration
// layer relies on.
type Bus struct {
	mu       sync.Mutex
	handlers map[Type][]func(Fact)
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]func(Fact)),
	}
}

// Subscribe registers a handler for a fact type.
func (b *Bus) Subscribe(t Type, handler func(Fact)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], handler)
}

// Publish delivers a fact to all handlers for its type, in the order they
// subscribed.
func (b *Bus) Publish(fact Fact) {
	b.mu.Lock()
	handlers := make([]func(Fact), len(b.handlers[fact.Type]))
	copy(handlers, b.handlers[fact.Type])
	b.mu.Unlock()

	for _, h := range handlers {
		h(fact)
	}
}

// Emit implements Emitter so the bus can stand in for an external
// broadcaster in tests and single-process deployments.
func (b *Bus) Emit(ctx context.Context, fact Fact) error {
	b.Publish(fact)
	return nil
}

// Recorder collects emitted facts for inspection in tests.
type Recorder struct {
	mu    sync.Mutex
	facts []Fact
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(ctx context.Context, fact Fact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facts = append(r.facts, fact)
	return nil
}

// Facts returns a copy of everything recorded so far.
func (r *Recorder) Facts() []Fact {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Fact, len(r.facts))
	copy(out, r.facts)
	return out
}

// ByType returns recorded facts of a single type.
func (r *Recorder) ByType(t Type) []Fact {
	var out []Fact
	for _, f := range r.Facts() {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}
