package server

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Word-validation consensus: after results are shown, any player may contest
// a word the dictionary rejected. One vote row per current room player is
// opened in a batch; each player votes exactly once; unanimity is required to
// flip the verdict. Resolution is the only path that ever rewrites an
// authoritative Answer or RoundScore row.

// openVote creates the vote batch for an answer if none exists yet. Opening
// twice is a no-op observing the existing batch.
func (s *Server) openVote(roomID string, playerID, answerID int) (bool, error) {
	created := false
	var number int
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil {
			return errRoundNotStarted
		}
		if round.Status != roundStatusFinished {
			return errRoundStillPlaying
		}
		if _, found := s.store.FindPlayer(room, playerID); !found {
			return errPlayerNotFound
		}
		answer := answerByID(round, answerID)
		if answer == nil {
			return errAnswerNotFound
		}
		// Only a dictionary rejection is open to contest. Wrong-letter and
		// empty words score zero with no recourse, and valid words carry
		// nothing to flip.
		if !answer.NeedsManualValidation || answer.IsValid {
			return errAnswerNotContestable
		}
		number = round.Number
		if len(votesForAnswer(round, answerID)) > 0 {
			return nil
		}
		for i := range room.Players {
			round.Votes = append(round.Votes, VoteEntry{
				AnswerID: answerID,
				PlayerID: room.Players[i].ID,
			})
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}
	if err := s.persistVotes(room, number, answerID); err != nil {
		log.Printf("vote batch persist failed room_id=%s answer_id=%d error=%v", room.ID, answerID, err)
	}
	s.broadcastRoomEvent(room, eventVoteOpened, EventPayload{
		PlayerID:    playerID,
		RoundNumber: number,
		AnswerID:    answerID,
	})
	log.Printf("vote opened room_id=%s answer_id=%d", room.ID, answerID)
	s.startVoteResolution(room.ID, number, answerID)
	return true, nil
}

// castVote records a player's verdict. The null→non-null transition happens
// exactly once; a second attempt is rejected.
func (s *Server) castVote(roomID string, playerID, answerID int, vote bool) error {
	var number int
	complete := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil {
			return errRoundNotStarted
		}
		number = round.Number
		found := false
		for i := range round.Votes {
			entry := &round.Votes[i]
			if entry.AnswerID != answerID || entry.PlayerID != playerID {
				continue
			}
			if entry.Vote != nil {
				return errAlreadyVoted
			}
			value := vote
			entry.Vote = &value
			found = true
			break
		}
		if !found {
			return errAnswerNotFound
		}
		complete = allVotesCast(round, answerID)
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.persistVoteCast(room, answerID, playerID); err != nil {
		log.Printf("vote persist failed room_id=%s answer_id=%d player_id=%d error=%v", room.ID, answerID, playerID, err)
	}
	value := vote
	s.broadcastRoomEvent(room, eventVoteCast, EventPayload{
		PlayerID:    playerID,
		RoundNumber: number,
		AnswerID:    answerID,
		Vote:        &value,
	})
	if complete {
		s.resolveVote(room.ID, number, answerID)
	}
	return nil
}

// startVoteResolution watches the batch until every vote is cast, then
// resolves. At the ceiling the contest is abandoned and the prior verdict
// stands.
func (s *Server) startVoteResolution(roomID string, number, answerID int) {
	interval := time.Duration(s.cfg.BarrierPollMillis) * time.Millisecond
	attempts := s.cfg.VoteResolveSeconds * 1000 / s.cfg.BarrierPollMillis
	key := fmt.Sprintf("%s:vote:%d", roomID, answerID)
	s.startWaiter(key, func(ctx context.Context) {
		_, err := pollUntil(ctx, interval, attempts, func() (struct{}, bool) {
			room, ok := s.store.GetRoom(roomID)
			if !ok {
				return struct{}{}, true
			}
			round := roundByNumber(room, number)
			if round == nil {
				return struct{}{}, true
			}
			answer := answerByID(round, answerID)
			if answer == nil || answer.ManualValidationResult != nil {
				return struct{}{}, true
			}
			return struct{}{}, allVotesCast(round, answerID)
		})
		if err == errSyncTimeout {
			log.Printf("vote abandoned room_id=%s answer_id=%d reason=timeout", roomID, answerID)
			return
		}
		if err != nil {
			return
		}
		s.resolveVote(roomID, number, answerID)
	})
}

// resolveVote applies the unanimity rule and recomputes the owning round
// score in place, re-running the penalty rule with the round's stored
// stoppedEarly flag.
func (s *Server) resolveVote(roomID string, number, answerID int) {
	resolved := false
	var outcome bool
	var ownerID int
	var newScore RoundScoreEntry
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := roundByNumber(room, number)
		if round == nil {
			return errRoundNotStarted
		}
		answer := answerByID(round, answerID)
		if answer == nil {
			return errAnswerNotFound
		}
		if answer.ManualValidationResult != nil {
			return nil
		}
		votes := votesForAnswer(round, answerID)
		if len(votes) == 0 || !allVotesCast(round, answerID) {
			return nil
		}
		outcome = true
		for _, entry := range votes {
			if entry.Vote == nil || !*entry.Vote {
				outcome = false
				break
			}
		}
		result := outcome
		answer.IsValid = outcome
		answer.ManualValidationResult = &result
		if outcome {
			answer.Points = s.cfg.PointsPerWord
		} else {
			answer.Points = 0
		}

		ownerID = answer.PlayerID
		ownerAnswers := answersForPlayer(round, ownerID)
		scoreEntry := scoreForPlayer(round, ownerID)
		if scoreEntry == nil {
			return nil
		}
		total, validCount, penaltyApplied := tallyRound(ownerAnswers, scoreEntry.StoppedEarly, s.cfg.EarlyStopPenalty)
		scoreEntry.RoundScore = total
		scoreEntry.ValidWordsCount = validCount
		scoreEntry.PenaltyApplied = penaltyApplied
		newScore = *scoreEntry
		if owner, found := s.store.FindPlayer(room, ownerID); found {
			owner.Score = total
		}
		resolved = true
		return nil
	})
	if err != nil || !resolved {
		return
	}
	if err := s.persistVoteResolution(room, number, answerID, ownerID, newScore); err != nil {
		log.Printf("vote resolution persist failed room_id=%s answer_id=%d error=%v", room.ID, answerID, err)
	}
	isValid := outcome
	s.broadcastRoomEvent(room, eventVoteResolved, EventPayload{
		RoundNumber: number,
		AnswerID:    answerID,
		PlayerID:    ownerID,
		IsValid:     &isValid,
		Score:       newScore.RoundScore,
	})
	log.Printf("vote resolved room_id=%s answer_id=%d valid=%t score=%d", room.ID, answerID, outcome, newScore.RoundScore)
}

func answerByID(round *RoundState, answerID int) *AnswerEntry {
	for i := range round.Answers {
		if round.Answers[i].ID == answerID {
			return &round.Answers[i]
		}
	}
	return nil
}

func answersForPlayer(round *RoundState, playerID int) []AnswerEntry {
	var answers []AnswerEntry
	for _, answer := range round.Answers {
		if answer.PlayerID == playerID {
			answers = append(answers, answer)
		}
	}
	return answers
}

func scoreForPlayer(round *RoundState, playerID int) *RoundScoreEntry {
	for i := range round.Scores {
		if round.Scores[i].PlayerID == playerID {
			return &round.Scores[i]
		}
	}
	return nil
}

func votesForAnswer(round *RoundState, answerID int) []VoteEntry {
	var votes []VoteEntry
	for _, entry := range round.Votes {
		if entry.AnswerID == answerID {
			votes = append(votes, entry)
		}
	}
	return votes
}

func allVotesCast(round *RoundState, answerID int) bool {
	votes := votesForAnswer(round, answerID)
	if len(votes) == 0 {
		return false
	}
	for _, entry := range votes {
		if entry.Vote == nil {
			return false
		}
	}
	return true
}
