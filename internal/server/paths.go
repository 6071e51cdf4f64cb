package server

import "strings"

// parseRoomPath splits "/api/rooms/{id}" and "/api/rooms/{id}/{action...}"
// into the room id and the remaining action path.
func parseRoomPath(path string) (roomID, action string, ok bool) {
	rest, found := strings.CutPrefix(path, "/api/rooms/")
	if !found || rest == "" {
		return "", "", false
	}
	roomID, action, _ = strings.Cut(rest, "/")
	if roomID == "" {
		return "", "", false
	}
	return roomID, action, true
}

func parseWebsocketPath(path string) (string, bool) {
	roomID, found := strings.CutPrefix(path, "/ws/rooms/")
	if !found || roomID == "" || strings.Contains(roomID, "/") {
		return "", false
	}
	return roomID, true
}
