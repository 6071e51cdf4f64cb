package server

import (
	"net/http"
	"testing"
)

func TestSoloGameScoredAtSoloRate(t *testing.T) {
	_, ts := newTestServer(t)
	resp := doRequest(t, ts, http.MethodPost, "/api/solo/games", map[string]any{
		"letter": "T",
		"answers": []map[string]any{
			{"category_id": 1, "word": "Tigre"},
			{"category_id": 2, "word": "Toulon"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if got := int(body["score"].(float64)); got != 20 {
		t.Fatalf("expected 20 points, got %d", got)
	}
}

func TestSoloGameWrongLetterScoresZero(t *testing.T) {
	_, ts := newTestServer(t)
	resp := doRequest(t, ts, http.MethodPost, "/api/solo/games", map[string]any{
		"letter": "T",
		"answers": []map[string]any{
			{"category_id": 1, "word": "Baleine"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if got := int(body["score"].(float64)); got != 0 {
		t.Fatalf("expected 0 points, got %d", got)
	}
}

func TestSoloGameRejectsBadLetter(t *testing.T) {
	_, ts := newTestServer(t)
	resp := doRequest(t, ts, http.MethodPost, "/api/solo/games", map[string]any{
		"letter":  "42",
		"answers": []map[string]any{},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}
