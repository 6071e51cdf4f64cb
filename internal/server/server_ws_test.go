package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, baseURL, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readWSMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode websocket message: %v", err)
	}
	return payload
}

func TestWebsocketSnapshotOnConnect(t *testing.T) {
	_, ts := newTestServer(t)
	roomID, _, _ := createRoom(t, ts, "Ada")

	conn := dialWS(t, ts.URL, "/ws/rooms/"+roomID)
	payload := readWSMessage(t, conn)
	if payload["type"] != "snapshot" {
		t.Fatalf("expected snapshot, got %v", payload["type"])
	}
	room := payload["room"].(map[string]any)
	if room["id"] != roomID {
		t.Fatalf("snapshot for wrong room: %v", room["id"])
	}
}

func TestWebsocketReceivesJoinEvent(t *testing.T) {
	_, ts := newTestServer(t)
	roomID, code, _ := createRoom(t, ts, "Ada")

	conn := dialWS(t, ts.URL, "/ws/rooms/"+roomID)
	readWSMessage(t, conn)

	joinPlayer(t, ts, code, "Blaise")

	payload := readWSMessage(t, conn)
	if payload["type"] != eventPlayerJoined {
		t.Fatalf("expected %s, got %v", eventPlayerJoined, payload["type"])
	}
	event := payload["event"].(map[string]any)
	if event["player"] != "Blaise" {
		t.Fatalf("expected joining player name, got %v", event["player"])
	}
}

func TestWebsocketUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/ws/rooms/room-404")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestLobbyWebsocketListsRooms(t *testing.T) {
	_, ts := newTestServer(t)
	createRoom(t, ts, "Ada")

	conn := dialWS(t, ts.URL, "/ws/lobby")
	payload := readWSMessage(t, conn)
	rooms := payload["rooms"].([]any)
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room in lobby, got %d", len(rooms))
	}
}
