package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/storyforge/narrative-engine/pkg/events"
)

func narratorTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestHTTPNarrator_Narrate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/narrate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req narrateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, events.TypeQuestCompleted, req.Fact.Type)

		json.NewEncoder(w).Encode(narrateResponse{
			Narration: "The harbor falls quiet as the last crate is counted.",
		})
	}))
	defer server.Close()

	n := NewHTTPNarrator(server.URL, 5*time.Second, "R", narratorTestLogger())
	text, err := n.Narrate(context.Background(), events.Fact{Type: events.TypeQuestCompleted})
	assert.NoError(t, err)
	assert.Equal(t, "The harbor falls quiet as the last crate is counted.", text)
}

func TestHTTPNarrator_FiltersByRating(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(narrateResponse{
			Narration: "That damn smuggler got away.",
		})
	}))
	defer server.Close()

	t.Run("family rating filters prose", func(t *testing.T) {
		n := NewHTTPNarrator(server.URL, 5*time.Second, "PG", narratorTestLogger())
		text, err := n.Narrate(context.Background(), events.Fact{Type: events.TypeQuestFailed})
		assert.NoError(t, err)
		assert.Equal(t, "That dang smuggler got away.", text)
	})

	t.Run("mature rating passes prose through", func(t *testing.T) {
		n := NewHTTPNarrator(server.URL, 5*time.Second, "R", narratorTestLogger())
		text, err := n.Narrate(context.Background(), events.Fact{Type: events.TypeQuestFailed})
		assert.NoError(t, err)
		assert.Equal(t, "That damn smuggler got away.", text)
	})
}

func TestHTTPNarrator_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewHTTPNarrator(server.URL, 5*time.Second, "R", narratorTestLogger())
	_, err := n.Narrate(context.Background(), events.Fact{Type: events.TypeDayPassed})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "narrator returned status 500")
}

func TestHTTPNarrator_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	n := NewHTTPNarrator(server.URL, 5*time.Second, "R", narratorTestLogger())
	_, err := n.Narrate(context.Background(), events.Fact{Type: events.TypeDayPassed})
	assert.Error(t, err)
}

func TestMockNarrator_RecordsCalls(t *testing.T) {
	m := NewMockNarrator()

	text, err := m.Narrate(context.Background(), events.Fact{Type: events.TypeChoiceRecorded})
	assert.NoError(t, err)
	assert.Equal(t, "The story continues after choice:recorded", text)
	assert.Len(t, m.NarrateCalls, 1)
}
