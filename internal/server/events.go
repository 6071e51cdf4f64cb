package server

// Event kinds cover every state-change callback the clients observe. The
// payload is a closed struct: unused fields are omitted from the JSON.
const (
	eventRoomCreated      = "room_created"
	eventPlayerJoined     = "player_joined"
	eventPlayerLeft       = "player_left"
	eventGameStarted      = "game_started"
	eventRoundStarted     = "round_started"
	eventPlayerFinished   = "player_finished"
	eventPlayerReady      = "player_ready"
	eventRoundFinished    = "round_finished"
	eventEndGameRequested = "endgame_requested"
	eventEndGameResponded = "endgame_responded"
	eventEndGameExpired   = "endgame_expired"
	eventVoteOpened       = "vote_opened"
	eventVoteCast         = "vote_cast"
	eventVoteResolved     = "vote_resolved"
	eventGameFinished     = "game_finished"
	eventRoomDeleted      = "room_deleted"
)

type EventPayload struct {
	RoomID      string `json:"room_id,omitempty"`
	Code        string `json:"code,omitempty"`
	PlayerName  string `json:"player,omitempty"`
	PlayerID    int    `json:"player_id,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	Letter      string `json:"letter,omitempty"`
	Status      string `json:"status,omitempty"`
	Reason      string `json:"reason,omitempty"`
	AnswerID    int    `json:"answer_id,omitempty"`
	RequestID   int    `json:"request_id,omitempty"`
	Accepted    *bool  `json:"accepted,omitempty"`
	Vote        *bool  `json:"vote,omitempty"`
	IsValid     *bool  `json:"is_valid,omitempty"`
	Score       int    `json:"score,omitempty"`
}

// broadcastRoomEvent appends to the room's event log, persists the event,
// pushes it with a fresh snapshot to the room's websocket group, and refreshes
// the lobby listing. Push is a latency optimization only; clients polling
// GET /api/rooms/{id} observe the same state.
func (s *Server) broadcastRoomEvent(room *Room, eventType string, payload EventPayload) {
	record := EventRecord{Type: eventType, Payload: payload, CreatedAt: timeNowUTC()}
	// Fails only for a room already gone from the store, e.g. the final
	// room_deleted broadcast.
	_, _ = s.store.UpdateRoom(room.ID, func(room *Room) error {
		record.ID = len(room.Events) + 1
		room.Events = append(room.Events, record)
		return nil
	})
	if err := s.persistEvent(room, eventType, payload); err != nil {
		logPersistEventFailure(room, eventType, err)
	}
	s.ws.Broadcast(room.ID, map[string]any{
		"type":  eventType,
		"event": payload,
		"room":  s.snapshot(room),
	})
	s.broadcastLobbyUpdate()
}
