package server

import (
	"context"
	"fmt"
	"log"
	"time"
)

// End-game consensus: one player asks to close the round before the timer,
// the other explicitly accepts or rejects. Acceptance ends the round for both
// with stoppedEarly=false, because a mutual agreement is not a voluntary
// early stop and must not trigger the penalty.

// requestEndGame is a conditional insert: at most one pending request exists
// per (room, round). A concurrent second request observes the existing one
// and is reported as not-created rather than an error.
func (s *Server) requestEndGame(roomID string, playerID int) (*EndGameRequestEntry, bool, error) {
	var entry EndGameRequestEntry
	created := false
	var number int
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		if _, found := s.store.FindPlayer(room, playerID); !found {
			return errPlayerNotFound
		}
		number = round.Number
		if pending := pendingRequest(round); pending != nil {
			entry = *pending
			return nil
		}
		round.Requests = append(round.Requests, EndGameRequestEntry{
			ID:          s.store.allocRequestID(),
			RequesterID: playerID,
			Status:      endGameStatusPending,
			CreatedAt:   timeNowUTC(),
		})
		entry = round.Requests[len(round.Requests)-1]
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !created {
		return &entry, false, nil
	}
	if err := s.persistEndGameRequest(room, number, entry); err != nil {
		log.Printf("endgame request persist failed room_id=%s error=%v", room.ID, err)
	}
	s.broadcastRoomEvent(room, eventEndGameRequested, EventPayload{
		PlayerID:    playerID,
		RoundNumber: number,
		RequestID:   entry.ID,
	})
	log.Printf("endgame requested room_id=%s player_id=%d round=%d", room.ID, playerID, number)
	s.startEndGameExpiry(room.ID, number, entry.ID)
	return &entry, true, nil
}

// startEndGameExpiry abandons a request nobody answered. The original left
// stale requests pending in the store forever; expiring them here keeps the
// conditional insert from being wedged by a dead client.
func (s *Server) startEndGameExpiry(roomID string, number, requestID int) {
	interval := time.Duration(s.cfg.BarrierPollMillis) * time.Millisecond
	attempts := s.cfg.EndGameResponseSeconds * 1000 / s.cfg.BarrierPollMillis
	key := fmt.Sprintf("%s:endgame:%d", roomID, requestID)
	s.startWaiter(key, func(ctx context.Context) {
		_, err := pollUntil(ctx, interval, attempts, func() (struct{}, bool) {
			room, ok := s.store.GetRoom(roomID)
			if !ok {
				return struct{}{}, true
			}
			round := roundByNumber(room, number)
			if round == nil || round.Status != roundStatusPlaying {
				return struct{}{}, true
			}
			request := requestByID(round, requestID)
			return struct{}{}, request == nil || request.Status != endGameStatusPending
		})
		if err != errSyncTimeout {
			return
		}
		s.expireEndGameRequest(roomID, number, requestID)
	})
}

func (s *Server) expireEndGameRequest(roomID string, number, requestID int) {
	expired := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := roundByNumber(room, number)
		if round == nil {
			return errRoundNotStarted
		}
		request := requestByID(round, requestID)
		if request == nil || request.Status != endGameStatusPending {
			return nil
		}
		request.Status = endGameStatusExpired
		expired = true
		return nil
	})
	if err != nil || !expired {
		return
	}
	if err := s.persistEndGameRequestStatus(room, number, requestID); err != nil {
		log.Printf("endgame expiry persist failed room_id=%s error=%v", room.ID, err)
	}
	s.broadcastRoomEvent(room, eventEndGameExpired, EventPayload{
		RoundNumber: number,
		RequestID:   requestID,
	})
	log.Printf("endgame request expired room_id=%s request_id=%d", room.ID, requestID)
}

// respondEndGame settles a pending request. Accepting submits both players'
// drafts with stoppedEarly=false; rejecting leaves the round running.
func (s *Server) respondEndGame(roomID string, playerID, requestID int, accept bool) error {
	var number int
	var requesterID int
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		if _, found := s.store.FindPlayer(room, playerID); !found {
			return errPlayerNotFound
		}
		request := requestByID(round, requestID)
		if request == nil || request.Status != endGameStatusPending {
			return errRoundNotStarted
		}
		if request.RequesterID == playerID {
			return errPlayerNotFound
		}
		now := timeNowUTC()
		if accept {
			request.Status = endGameStatusAccepted
		} else {
			request.Status = endGameStatusRejected
		}
		request.RespondedAt = &now
		number = round.Number
		requesterID = request.RequesterID
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.persistEndGameRequestStatus(room, number, requestID); err != nil {
		log.Printf("endgame response persist failed room_id=%s error=%v", room.ID, err)
	}
	accepted := accept
	s.broadcastRoomEvent(room, eventEndGameResponded, EventPayload{
		PlayerID:    playerID,
		RoundNumber: number,
		RequestID:   requestID,
		Accepted:    &accepted,
	})
	log.Printf("endgame responded room_id=%s request_id=%d accepted=%t", room.ID, requestID, accept)
	if !accept {
		return nil
	}
	s.autoSubmit(room.ID, number, requesterID, "endgame_accepted")
	s.autoSubmit(room.ID, number, playerID, "endgame_accepted")
	s.finishRoundIfComplete(room.ID, number, "endgame_accepted")
	return nil
}

func pendingRequest(round *RoundState) *EndGameRequestEntry {
	for i := range round.Requests {
		if round.Requests[i].Status == endGameStatusPending {
			return &round.Requests[i]
		}
	}
	return nil
}

func requestByID(round *RoundState, requestID int) *EndGameRequestEntry {
	for i := range round.Requests {
		if round.Requests[i].ID == requestID {
			return &round.Requests[i]
		}
	}
	return nil
}
