package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/storyforge/narrative-engine/pkg/quest"
)

func TestQuestHandler_ServeHTTP(t *testing.T) {
	sto, svc := newTestEnv()
	handler := NewQuestHandler(sto, svc, testLogger())
	session := createTestSession(t, svc)
	base := "/v1/sessions/" + session.ID.String() + "/quests"

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf []byte
		if body != nil {
			buf, _ = json.Marshal(body)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(buf))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("list active quests", func(t *testing.T) {
		w := do(http.MethodGet, base, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var quests []*quest.Quest
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&quests))
		assert.Len(t, quests, 1)
		assert.Equal(t, "Trouble at the Docks", quests[0].Title)
	})

	t.Run("get quest by id", func(t *testing.T) {
		w := do(http.MethodGet, base+"/opening", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var q quest.Quest
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&q))
		assert.Equal(t, "opening", q.ID)
		assert.Equal(t, quest.StatusActive, q.Status)
	})

	t.Run("get unknown quest", func(t *testing.T) {
		w := do(http.MethodGet, base+"/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("analysis", func(t *testing.T) {
		w := do(http.MethodGet, base+"/analysis", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var a quest.Analysis
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&a))
		assert.Equal(t, 1, a.Active)
	})

	t.Run("opportunities empty", func(t *testing.T) {
		w := do(http.MethodGet, base+"/opportunities", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("create quest persists", func(t *testing.T) {
		w := do(http.MethodPost, base, quest.Spec{
			Title:   "Side Job",
			Context: quest.Context{Location: "harbor"},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created quest.Quest
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, "Side Job", created.Title)
		assert.Equal(t, quest.StatusActive, created.Status)

		// Visible on the next request, so it survived the save.
		w = do(http.MethodGet, base, nil)
		var quests []*quest.Quest
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&quests))
		assert.Len(t, quests, 2)
	})

	t.Run("create quest requires title", func(t *testing.T) {
		w := do(http.MethodPost, base, quest.Spec{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("complete quest", func(t *testing.T) {
		w := do(http.MethodPost, base+"/opening/complete", CompleteQuestRequest{Method: "diplomatic"})
		assert.Equal(t, http.StatusOK, w.Code)

		var q quest.Quest
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&q))
		assert.Equal(t, quest.StatusCompleted, q.Status)
	})

	t.Run("complete is not repeatable", func(t *testing.T) {
		w := do(http.MethodPost, base+"/opening/complete", CompleteQuestRequest{Method: "combat"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("fail requires an active quest", func(t *testing.T) {
		w := do(http.MethodPost, base+"/opening/fail", FailQuestRequest{Reason: "too late"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("activate requires a pending opportunity", func(t *testing.T) {
		w := do(http.MethodPost, base+"/opening/activate", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid session ID", func(t *testing.T) {
		w := do(http.MethodGet, "/v1/sessions/not-a-uuid/quests", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := do(http.MethodGet, "/v1/sessions/"+uuid.New().String()+"/quests", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := do(http.MethodPut, base, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
