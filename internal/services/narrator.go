package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/storyforge/narrative-engine/pkg/events"
	"github.com/storyforge/narrative-engine/pkg/textfilter"
)

// NarratorService turns engine facts into prose for players. It is an
// optional collaborator: callers treat errors as log-and-skip.
type NarratorService interface {
	Narrate(ctx context.Context, fact events.Fact) (string, error)
}

// HTTPNarrator calls an external narration endpoint.
type HTTPNarrator struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	filter     *textfilter.ProfanityFilter
}

// NewHTTPNarrator creates a narrator client. When rating requires it,
// returned prose is run through the profanity filter.
func NewHTTPNarrator(baseURL string, timeout time.Duration, rating string, logger *slog.Logger) *HTTPNarrator {
	n := &HTTPNarrator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
	if textfilter.ShouldFilterContent(rating) {
		n.filter = textfilter.NewProfanityFilter()
	}
	return n
}

type narrateRequest struct {
	Fact events.Fact `json:"fact"`
}

type narrateResponse struct {
	Narration string `json:"narration"`
}

// Narrate posts the fact to the narration endpoint and returns its prose.
func (n *HTTPNarrator) Narrate(ctx context.Context, fact events.Fact) (string, error) {
	jsonBody, err := json.Marshal(narrateRequest{Fact: fact})
	if err != nil {
		return "", fmt.Errorf("failed to marshal narrate request: %w", err)
	}

	url := n.baseURL + "/narrate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("Narrator returned error",
			"status_code", resp.StatusCode,
			"url", url)
		return "", fmt.Errorf("narrator returned status %d", resp.StatusCode)
	}

	var out narrateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode narrate response: %w", err)
	}

	text := out.Narration
	if n.filter != nil {
		text = n.filter.FilterText(text)
	}
	return text, nil
}
