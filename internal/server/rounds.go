package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

func currentRound(room *Room) *RoundState {
	if len(room.Rounds) == 0 {
		return nil
	}
	return &room.Rounds[len(room.Rounds)-1]
}

func roundByNumber(room *Room, number int) *RoundState {
	for i := range room.Rounds {
		if room.Rounds[i].Number == number {
			return &room.Rounds[i]
		}
	}
	return nil
}

func hasRoundScore(round *RoundState, playerID int) bool {
	for _, score := range round.Scores {
		if score.PlayerID == playerID {
			return true
		}
	}
	return false
}

func allPlayersScored(room *Room, round *RoundState) bool {
	for i := range room.Players {
		if !hasRoundScore(round, room.Players[i].ID) {
			return false
		}
	}
	return len(room.Players) > 0
}

// createRound opens round `number` if no round is currently playing. The
// create is idempotent: a duplicate attempt observes the existing round
// instead of opening a second one, so at most one playing round exists per
// room at any time.
func createRound(room *Room, number int) (*RoundState, bool) {
	if current := currentRound(room); current != nil && current.Status == roundStatusPlaying {
		return current, false
	}
	if existing := roundByNumber(room, number); existing != nil {
		return existing, false
	}
	letter := nextLetter(room.UsedLetters)
	room.Rounds = append(room.Rounds, RoundState{
		Number:    number,
		Letter:    letter,
		Status:    roundStatusPlaying,
		StartedAt: timeNowUTC(),
		Drafts:    make(map[int][]DraftAnswer),
	})
	room.Letter = letter
	room.CurrentRound = number
	for i := range room.Players {
		room.Players[i].FinishedAt = nil
		room.Players[i].Ready = false
	}
	room.BarrierOpen = false
	return &room.Rounds[len(room.Rounds)-1], true
}

// saveDraft stores a player's in-progress answers so the engine can submit
// on their behalf when the timer, the grace delay, or an accepted end-game
// request cuts the round off.
func (s *Server) saveDraft(roomID string, playerID int, answers []DraftAnswer) error {
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		if _, found := s.store.FindPlayer(room, playerID); !found {
			return errPlayerNotFound
		}
		if hasRoundScore(round, playerID) {
			return errRoundAlreadySubmitted
		}
		round.Drafts[playerID] = append([]DraftAnswer(nil), answers...)
		return nil
	})
	return err
}

// submitAnswers scores and records one player's answers for the current
// round. Submit-once: a second call for the same (round, player) is rejected
// before anything is written, and the (round_id, player_id) unique constraint
// on round_scores is the authoritative backstop.
func (s *Server) submitAnswers(roomID string, playerID int, words []DraftAnswer, stoppedEarly bool, reason string) error {
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		return errRoomNotFound
	}
	var letter string
	var number int
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		if hasRoundScore(round, playerID) {
			return errRoundAlreadySubmitted
		}
		letter = round.Letter
		number = round.Number
		return nil
	})
	if err != nil {
		return err
	}

	// Dictionary lookups happen outside the critical section.
	full := s.fillCategories(words)
	scored := make([]WordScore, len(full))
	for i, answer := range full {
		scored[i] = scoreWord(answer.Word, letter, answer.CategoryID, s.cfg.PointsPerWord, s.dict.ValidateWord)
	}

	now := timeNowUTC()
	var entries []AnswerEntry
	var scoreEntry RoundScoreEntry
	roundDone := false
	room, err = s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.Number != number || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		if hasRoundScore(round, playerID) {
			return errRoundAlreadySubmitted
		}
		player, found := s.store.FindPlayer(room, playerID)
		if !found {
			return errPlayerNotFound
		}
		for i, answer := range full {
			entry := AnswerEntry{
				ID:                    s.store.allocAnswerID(),
				PlayerID:              playerID,
				CategoryID:            answer.CategoryID,
				Word:                  strings.TrimSpace(answer.Word),
				IsValid:               scored[i].IsValid,
				Points:                scored[i].Points,
				NeedsManualValidation: scored[i].NeedsManualValidation,
			}
			round.Answers = append(round.Answers, entry)
			entries = append(entries, entry)
		}
		total, validCount, penaltyApplied := tallyRound(entries, stoppedEarly, s.cfg.EarlyStopPenalty)
		scoreEntry = RoundScoreEntry{
			PlayerID:        playerID,
			RoundScore:      total,
			ValidWordsCount: validCount,
			StoppedEarly:    stoppedEarly,
			PenaltyApplied:  penaltyApplied,
			FinishedAt:      now,
		}
		round.Scores = append(round.Scores, scoreEntry)
		player.FinishedAt = &now
		player.Score = total
		delete(round.Drafts, playerID)
		if allPlayersScored(room, round) {
			round.Status = roundStatusFinished
			roundDone = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.persistSubmission(room, number, playerID, entries, scoreEntry); err != nil {
		log.Printf("submission persist failed room_id=%s player_id=%d error=%v", room.ID, playerID, err)
	}
	s.broadcastRoomEvent(room, eventPlayerFinished, EventPayload{
		PlayerID:    playerID,
		RoundNumber: number,
		Score:       scoreEntry.RoundScore,
		Reason:      reason,
	})
	log.Printf("answers submitted room_id=%s player_id=%d round=%d score=%d stopped_early=%t reason=%s",
		room.ID, playerID, number, scoreEntry.RoundScore, stoppedEarly, reason)

	if roundDone {
		s.onRoundFinished(room.ID, number, reason)
		return nil
	}
	s.afterFirstSubmission(room, number, playerID)
	return nil
}

// afterFirstSubmission arms the two waits that close a half-submitted round:
// a short grace delay after which the opponent's draft is submitted for them
// (stoppedEarly=false, since the cutoff was not their choice), and a longer
// co-submission watchdog that force-finishes the round if nothing lands.
func (s *Server) afterFirstSubmission(room *Room, number int, submitterID int) {
	grace := time.Duration(s.cfg.AutoSubmitGraceMillis) * time.Millisecond
	for i := range room.Players {
		playerID := room.Players[i].ID
		if playerID == submitterID || room.Players[i].FinishedAt != nil {
			continue
		}
		s.scheduleTimer(graceTimerKey(room.ID, number, playerID), grace, func() {
			s.autoSubmit(room.ID, number, playerID, "opponent_finished")
			s.finishRoundIfComplete(room.ID, number, "opponent_finished")
		})
	}

	interval := time.Duration(s.cfg.OpponentPollMillis) * time.Millisecond
	attempts := s.cfg.CoSubmitWaitSeconds * 1000 / s.cfg.OpponentPollMillis
	key := fmt.Sprintf("%s:cosubmit:%d", room.ID, number)
	s.startWaiter(key, func(ctx context.Context) {
		_, err := pollUntil(ctx, interval, attempts, func() (struct{}, bool) {
			current, ok := s.store.GetRoom(room.ID)
			if !ok {
				return struct{}{}, true
			}
			round := roundByNumber(current, number)
			return struct{}{}, round == nil || round.Status == roundStatusFinished
		})
		if err == errSyncTimeout {
			s.forceFinishRound(room.ID, number, "timeout")
		}
	})
}

// autoSubmit submits a player's saved draft on their behalf. Losing the race
// against the player's own submission is fine; submit-once absorbs it.
func (s *Server) autoSubmit(roomID string, number, playerID int, reason string) {
	var draft []DraftAnswer
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := roundByNumber(room, number)
		if round == nil || round.Status != roundStatusPlaying {
			return errRoundNotStarted
		}
		if hasRoundScore(round, playerID) {
			return errRoundAlreadySubmitted
		}
		draft = append([]DraftAnswer(nil), round.Drafts[playerID]...)
		return nil
	})
	if err != nil {
		return
	}
	if err := s.submitAnswers(roomID, playerID, draft, false, reason); err != nil {
		if err != errRoundAlreadySubmitted && err != errRoundNotStarted {
			log.Printf("auto submit failed room_id=%s player_id=%d error=%v", roomID, playerID, err)
		}
	}
}

func (s *Server) finishRoundIfComplete(roomID string, number int, reason string) {
	done := false
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := roundByNumber(room, number)
		if round == nil || round.Status != roundStatusPlaying {
			return nil
		}
		if !allPlayersScored(room, round) {
			return nil
		}
		round.Status = roundStatusFinished
		done = true
		return nil
	})
	if err == nil && done {
		s.onRoundFinished(roomID, number, reason)
	}
}

// forceFinishRound closes a round without the missing party's score. Reached
// only when every wait expired; degrading beats hanging.
func (s *Server) forceFinishRound(roomID string, number int, reason string) {
	done := false
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := roundByNumber(room, number)
		if round == nil || round.Status != roundStatusPlaying {
			return nil
		}
		round.Status = roundStatusFinished
		done = true
		return nil
	})
	if err == nil && done {
		s.onRoundFinished(roomID, number, reason)
	}
}

func (s *Server) onRoundFinished(roomID string, number int, reason string) {
	s.cancelTimer(roundTimerKey(roomID, number))
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		return
	}
	for i := range room.Players {
		s.cancelTimer(graceTimerKey(roomID, number, room.Players[i].ID))
	}
	if err := s.persistRoundStatus(room, number); err != nil {
		log.Printf("round status persist failed room_id=%s round=%d error=%v", roomID, number, err)
	}
	s.broadcastRoomEvent(room, eventRoundFinished, EventPayload{
		RoundNumber: number,
		Reason:      reason,
	})
	log.Printf("round finished room_id=%s round=%d reason=%s", roomID, number, reason)
}

// markReady records that a player has seen the results and wants the next
// round, then opens the both-ready barrier. The barrier polls until every
// player is ready and then the service, as the single round authority,
// rotates the letter and opens the next round exactly once.
func (s *Server) markReady(roomID string, playerID int) error {
	var number int
	openBarrier := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil {
			return errRoundNotStarted
		}
		if round.Status != roundStatusFinished {
			return errRoundStillPlaying
		}
		player, found := s.store.FindPlayer(room, playerID)
		if !found {
			return errPlayerNotFound
		}
		player.Ready = true
		number = round.Number
		if !room.BarrierOpen {
			room.BarrierOpen = true
			openBarrier = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.persistPlayerState(room, playerID); err != nil {
		log.Printf("player persist failed room_id=%s player_id=%d error=%v", room.ID, playerID, err)
	}
	s.broadcastRoomEvent(room, eventPlayerReady, EventPayload{
		PlayerID:    playerID,
		RoundNumber: number,
	})
	if openBarrier {
		s.startReadyBarrier(room.ID, number)
	}
	return nil
}

func (s *Server) startReadyBarrier(roomID string, number int) {
	interval := time.Duration(s.cfg.BarrierPollMillis) * time.Millisecond
	attempts := s.cfg.ReadyBarrierSeconds * 1000 / s.cfg.BarrierPollMillis
	key := fmt.Sprintf("%s:barrier:%d", roomID, number)
	s.startWaiter(key, func(ctx context.Context) {
		_, err := pollUntil(ctx, interval, attempts, func() (struct{}, bool) {
			room, ok := s.store.GetRoom(roomID)
			if !ok {
				return struct{}{}, true
			}
			for i := range room.Players {
				if !room.Players[i].Ready {
					return struct{}{}, false
				}
			}
			return struct{}{}, len(room.Players) > 0
		})
		if err != nil {
			if err == errSyncTimeout {
				log.Printf("ready barrier timed out room_id=%s round=%d", roomID, number)
			}
			return
		}
		s.beginNextRound(roomID, number+1)
	})
}

func (s *Server) beginNextRound(roomID string, number int) {
	created := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != roomStatusPlaying {
			return errRoundNotStarted
		}
		_, created = createRound(room, number)
		return nil
	})
	if err != nil || !created {
		return
	}
	if err := s.persistRound(room); err != nil {
		log.Printf("round persist failed room_id=%s error=%v", room.ID, err)
	}
	s.broadcastRoomEvent(room, eventRoundStarted, EventPayload{
		RoundNumber: room.CurrentRound,
		Letter:      room.Letter,
	})
	s.scheduleRoundTimer(room.ID, room.CurrentRound)
	log.Printf("round started room_id=%s round=%d letter=%s", room.ID, room.CurrentRound, room.Letter)
}

// fillCategories expands a submission to one answer per category, keeping
// empty words so the results view can show the full comparison grid.
func (s *Server) fillCategories(words []DraftAnswer) []DraftAnswer {
	categories, err := s.dict.Categories()
	if err != nil || len(categories) == 0 {
		return words
	}
	byCategory := make(map[int]string, len(words))
	for _, answer := range words {
		byCategory[answer.CategoryID] = answer.Word
	}
	full := make([]DraftAnswer, 0, len(categories))
	for _, category := range categories {
		full = append(full, DraftAnswer{
			CategoryID: category.ID,
			Word:       byCategory[category.ID],
		})
	}
	return full
}
