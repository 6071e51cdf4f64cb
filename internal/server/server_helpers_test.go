package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"petit-bac/internal/config"
	"petit-bac/internal/dictionary"
)

// fakeDict accepts any word unless it contains "zz" (a dictionary miss) or
// "boom" (a lookup failure). Rule-based rather than a word list so tests can
// build words for whatever letter the rotation drew.
type fakeDict struct{}

func (fakeDict) Categories() ([]dictionary.Category, error) {
	return []dictionary.Category{
		{ID: 1, Name: "Animal"},
		{ID: 2, Name: "Ville"},
	}, nil
}

func (fakeDict) ValidateWord(word string, categoryID int) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(word))
	if strings.Contains(lower, "boom") {
		return false, errors.New("lookup failed")
	}
	if strings.Contains(lower, "zz") {
		return false, nil
	}
	return lower != "", nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.RoundSeconds = 30
	cfg.AutoSubmitGraceMillis = 300
	cfg.OpponentPollMillis = 10
	cfg.BarrierPollMillis = 10
	cfg.CoSubmitWaitSeconds = 2
	cfg.ReadyBarrierSeconds = 2
	cfg.EndGameResponseSeconds = 2
	cfg.VoteResolveSeconds = 2
	return cfg
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, testConfig(), fakeDict{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func createRoom(t *testing.T, ts *httptest.Server, hostName string) (string, string, int) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]string{
		"host_name": hostName,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	room := body["room"].(map[string]any)
	return room["id"].(string), room["code"].(string), int(body["player_id"].(float64))
}

func joinPlayer(t *testing.T, ts *httptest.Server, code, name string) int {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/join", map[string]string{
		"code": code,
		"name": name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return int(body["player_id"].(float64))
}

func startGame(t *testing.T, ts *httptest.Server, roomID string, hostID int) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/start", map[string]int{
		"player_id": hostID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func submitWords(t *testing.T, ts *httptest.Server, roomID string, playerID int, words map[int]string, stoppedEarly bool) *http.Response {
	t.Helper()
	answers := make([]map[string]any, 0, len(words))
	for categoryID, word := range words {
		answers = append(answers, map[string]any{"category_id": categoryID, "word": word})
	}
	return doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/answers", map[string]any{
		"player_id":     playerID,
		"answers":       answers,
		"stopped_early": stoppedEarly,
	})
}

func fetchRoom(t *testing.T, ts *httptest.Server, roomID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)["room"].(map[string]any)
}

// roundLetter reads the current round's letter so tests can build words that
// match whatever the rotation drew.
func roundLetter(t *testing.T, ts *httptest.Server, roomID string) string {
	t.Helper()
	room := fetchRoom(t, ts, roomID)
	letter := room["letter"].(string)
	if letter == "" {
		t.Fatal("expected a round letter")
	}
	return letter
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}
