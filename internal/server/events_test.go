package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fetchEvents(t *testing.T, ts *httptest.Server, roomID, query string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID+"/events"+query, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func TestRoomEventsListed(t *testing.T) {
	_, ts := newTestServer(t)
	roomID, code, hostID := createRoom(t, ts, "Ada")
	joinPlayer(t, ts, code, "Blaise")
	startGame(t, ts, roomID, hostID)

	body := fetchEvents(t, ts, roomID, "")
	events := body["events"].([]any)
	if len(events) < 4 {
		t.Fatalf("expected at least 4 events, got %d", len(events))
	}
	first := events[0].(map[string]any)
	if first["type"] != eventRoomCreated {
		t.Fatalf("expected %s first, got %v", eventRoomCreated, first["type"])
	}
	second := events[1].(map[string]any)
	if second["type"] != eventPlayerJoined {
		t.Fatalf("expected %s second, got %v", eventPlayerJoined, second["type"])
	}
	if second["event"].(map[string]any)["player"] != "Blaise" {
		t.Fatalf("expected joined player name, got %v", second["event"])
	}
}

func TestRoomEventsPaginated(t *testing.T) {
	_, ts := newTestServer(t)
	roomID, code, hostID := createRoom(t, ts, "Ada")
	joinPlayer(t, ts, code, "Blaise")
	startGame(t, ts, roomID, hostID)

	body := fetchEvents(t, ts, roomID, "?per_page=2")
	events := body["events"].([]any)
	if len(events) != 2 {
		t.Fatalf("expected 2 events on the first page, got %d", len(events))
	}
	meta := body["pagination"].(map[string]any)
	if int(meta["page"].(float64)) != 1 {
		t.Fatalf("expected page 1, got %v", meta["page"])
	}
	if !meta["has_next"].(bool) {
		t.Fatal("expected a next page")
	}
	total := int(meta["total"].(float64))

	body = fetchEvents(t, ts, roomID, "?per_page=2&page=2")
	second := body["events"].([]any)
	if len(second) == 0 {
		t.Fatal("expected events on the second page")
	}
	if second[0].(map[string]any)["id"] == events[0].(map[string]any)["id"] {
		t.Fatal("second page must not repeat the first")
	}
	meta = body["pagination"].(map[string]any)
	if !meta["has_prev"].(bool) {
		t.Fatal("expected a previous page")
	}

	// An overshoot clamps to the last page instead of returning nothing.
	body = fetchEvents(t, ts, roomID, "?per_page=2&page=99")
	meta = body["pagination"].(map[string]any)
	lastPage := (total + 1) / 2
	if int(meta["page"].(float64)) != lastPage {
		t.Fatalf("expected clamp to page %d, got %v", lastPage, meta["page"])
	}
	if len(body["events"].([]any)) == 0 {
		t.Fatal("expected events on the clamped page")
	}
}

func TestRoomEventsUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t)
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/nope/events", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestBuildPageMeta(t *testing.T) {
	cases := []struct {
		page, perPage, total     int
		wantPage, wantTotalPages int
		wantHasPrev, wantHasNext bool
	}{
		{1, 20, 0, 1, 1, false, false},
		{1, 2, 5, 1, 3, false, true},
		{2, 2, 5, 2, 3, true, true},
		{3, 2, 5, 3, 3, true, false},
		{99, 2, 5, 3, 3, true, false},
		{0, 2, 5, 1, 3, false, true},
	}
	for _, tc := range cases {
		name := fmt.Sprintf("page=%d per_page=%d total=%d", tc.page, tc.perPage, tc.total)
		meta := buildPageMeta(tc.page, tc.perPage, tc.total)
		if meta.Page != tc.wantPage || meta.TotalPages != tc.wantTotalPages {
			t.Errorf("%s: got page %d of %d, want %d of %d", name, meta.Page, meta.TotalPages, tc.wantPage, tc.wantTotalPages)
		}
		if meta.HasPrev != tc.wantHasPrev || meta.HasNext != tc.wantHasNext {
			t.Errorf("%s: got has_prev=%t has_next=%t, want %t/%t", name, meta.HasPrev, meta.HasNext, tc.wantHasPrev, tc.wantHasNext)
		}
	}
}
