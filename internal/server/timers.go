package server

import (
	"fmt"
	"time"
)

func (s *Server) scheduleTimer(key string, duration time.Duration, fn func()) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	s.timers[key] = time.AfterFunc(duration, func() {
		s.timersMu.Lock()
		delete(s.timers, key)
		s.timersMu.Unlock()
		fn()
	})
}

func (s *Server) cancelTimer(key string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Server) cancelRoomTimers(roomID string) {
	prefix := roomID + ":"
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for key, timer := range s.timers {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

func roundTimerKey(roomID string, number int) string {
	return fmt.Sprintf("%s:round-timer:%d", roomID, number)
}

func graceTimerKey(roomID string, number, playerID int) string {
	return fmt.Sprintf("%s:grace:%d:%d", roomID, number, playerID)
}

// scheduleRoundTimer arms the round countdown. On expiry every player who has
// not submitted gets their current draft submitted for them with
// stoppedEarly=false: a timer cutoff is not a voluntary early stop.
func (s *Server) scheduleRoundTimer(roomID string, number int) {
	duration := time.Duration(s.cfg.RoundSeconds) * time.Second
	s.scheduleTimer(roundTimerKey(roomID, number), duration, func() {
		s.expireRound(roomID, number)
	})
}

func (s *Server) expireRound(roomID string, number int) {
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		return
	}
	var pending []int
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.Number != number || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		for i := range room.Players {
			if !hasRoundScore(round, room.Players[i].ID) {
				pending = append(pending, room.Players[i].ID)
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	for _, playerID := range pending {
		s.autoSubmit(room.ID, number, playerID, "timer")
	}
	s.finishRoundIfComplete(roomID, number, "timer")
}
