package server

import (
	"context"
	"log"
	"time"
)

// StartCleanup sweeps abandoned waiting rooms on an interval until ctx is
// cancelled. A room nobody ever started just leaks its join code otherwise.
func (s *Server) StartCleanup(ctx context.Context) {
	interval := time.Duration(s.cfg.CleanupIntervalMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepStaleRooms()
			}
		}
	}()
}

func (s *Server) sweepStaleRooms() {
	cutoff := timeNowUTC().Add(-time.Duration(s.cfg.RoomMaxAgeMinutes) * time.Minute)
	for _, roomID := range s.store.StaleWaitingRooms(cutoff) {
		room, ok := s.store.DeleteRoom(roomID)
		if !ok {
			continue
		}
		s.cancelRoomWaiters(roomID)
		s.cancelRoomTimers(roomID)
		if err := s.deleteRoomRecords(room); err != nil {
			log.Printf("stale room delete persist failed room_id=%s error=%v", roomID, err)
		}
		s.ws.Broadcast(roomID, map[string]any{
			"type":  eventRoomDeleted,
			"event": EventPayload{RoomID: roomID, Reason: "stale"},
		})
		s.ws.CloseRoom(roomID)
		log.Printf("stale room removed room_id=%s code=%s", roomID, room.Code)
	}
	s.broadcastLobbyUpdate()
}
