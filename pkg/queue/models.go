package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/pkg/events"
)

// Request is one unit of work on the fact queue: an inbound fact bound
// for a session's engine.
type Request struct {
	RequestID string    `json:"request_id"`
	SessionID uuid.UUID `json:"session_id"`

	Fact events.Fact `json:"fact"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewRequest builds a queue request for a session's fact.
func NewRequest(sessionID uuid.UUID, fact events.Fact) *Request {
	return &Request{
		RequestID:  uuid.NewString(),
		SessionID:  sessionID,
		Fact:       fact,
		EnqueuedAt: time.Now(),
	}
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
