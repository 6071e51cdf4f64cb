package server

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"petit-bac/internal/db"
)

// Restore reloads unfinished rooms from the database after a restart. Rounds
// that were mid-play when the process died are closed as-is rather than
// resumed: their timers and drafts are gone, and degrading to a finished
// round beats reviving a countdown nobody is watching.
func (s *Server) Restore() error {
	if s.db == nil {
		return nil
	}
	var records []db.Room
	if err := s.db.Where("status IN ?", []string{roomStatusWaiting, roomStatusPlaying}).Find(&records).Error; err != nil {
		return err
	}
	restored := 0
	for i := range records {
		room, err := s.restoreRoom(&records[i])
		if err != nil {
			log.Printf("room restore failed code=%s error=%v", records[i].Code, err)
			continue
		}
		if err := s.store.RestoreRoom(room); err != nil {
			log.Printf("room restore failed code=%s error=%v", records[i].Code, err)
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Printf("rooms restored count=%d", restored)
	}
	return nil
}

func (s *Server) restoreRoom(record *db.Room) (*Room, error) {
	room := &Room{
		ID:           fmt.Sprintf("room-%d", record.ID),
		DBID:         record.ID,
		Code:         record.Code,
		Letter:       record.Letter,
		Status:       record.Status,
		MaxPlayers:   record.MaxPlayers,
		UsedLetters:  make(map[string]struct{}),
		CurrentRound: record.CurrentRound,
		CreatedAt:    record.CreatedAt,
	}
	if record.StartedAt != nil {
		room.StartedAt = *record.StartedAt
	}
	for _, letter := range strings.Split(record.UsedLetters, "") {
		room.UsedLetters[letter] = struct{}{}
	}

	var players []db.Player
	if err := s.db.Where("room_id = ?", record.ID).Order("id").Find(&players).Error; err != nil {
		return nil, err
	}
	playerIDs := make(map[uint]int, len(players))
	for i := range players {
		player := restorePlayer(&players[i], i+1)
		if player.IsHost {
			room.HostID = player.ID
		}
		room.Players = append(room.Players, player)
		playerIDs[players[i].ID] = player.ID
	}

	var rounds []db.Round
	if err := s.db.Where("room_id = ?", record.ID).Order("number").Find(&rounds).Error; err != nil {
		return nil, err
	}
	nextAnswerID := 1
	for _, roundRecord := range rounds {
		round := RoundState{
			Number:    roundRecord.Number,
			DBID:      roundRecord.ID,
			Letter:    roundRecord.Letter,
			Status:    roundStatusFinished,
			StartedAt: roundRecord.CreatedAt,
			Drafts:    make(map[int][]DraftAnswer),
		}
		var answers []db.Answer
		if err := s.db.Where("round_id = ?", roundRecord.ID).Order("id").Find(&answers).Error; err != nil {
			return nil, err
		}
		for _, answerRecord := range answers {
			round.Answers = append(round.Answers, AnswerEntry{
				ID:                     nextAnswerID,
				DBID:                   answerRecord.ID,
				PlayerID:               playerIDs[answerRecord.PlayerID],
				CategoryID:             answerRecord.CategoryID,
				Word:                   answerRecord.Word,
				IsValid:                answerRecord.IsValid,
				Points:                 answerRecord.Points,
				NeedsManualValidation:  answerRecord.NeedsManualValidation,
				ManualValidationResult: answerRecord.ManualValidationResult,
			})
			nextAnswerID++
		}
		var scores []db.RoundScore
		if err := s.db.Where("round_id = ?", roundRecord.ID).Order("id").Find(&scores).Error; err != nil {
			return nil, err
		}
		for _, scoreRecord := range scores {
			round.Scores = append(round.Scores, RoundScoreEntry{
				DBID:            scoreRecord.ID,
				PlayerID:        playerIDs[scoreRecord.PlayerID],
				RoundScore:      scoreRecord.RoundScore,
				ValidWordsCount: scoreRecord.ValidWordsCount,
				StoppedEarly:    scoreRecord.StoppedEarly,
				PenaltyApplied:  scoreRecord.PenaltyApplied,
				FinishedAt:      scoreRecord.FinishedAt,
			})
		}
		room.Rounds = append(room.Rounds, round)
	}

	var events []db.Event
	if err := s.db.Where("room_id = ?", record.ID).Order("id").Find(&events).Error; err != nil {
		return nil, err
	}
	for i := range events {
		entry := EventRecord{
			ID:        i + 1,
			Type:      events[i].Type,
			CreatedAt: events[i].CreatedAt,
		}
		if len(events[i].Payload) > 0 {
			if err := json.Unmarshal(events[i].Payload, &entry.Payload); err != nil {
				log.Printf("event payload decode failed room_id=%s event_id=%d error=%v", room.ID, events[i].ID, err)
			}
		}
		room.Events = append(room.Events, entry)
	}

	if room.Status == roomStatusPlaying {
		for i := range room.Rounds {
			if err := s.persistRestoredRoundStatus(&room.Rounds[i]); err != nil {
				log.Printf("round close persist failed room_id=%s round=%d error=%v", room.ID, room.Rounds[i].Number, err)
			}
		}
	}
	return room, nil
}

// restorePlayer maps a persisted player row back onto in-memory state,
// carrying every column persistPlayerState writes. Ready survives a restart
// so a player mid-barrier does not have to re-ready.
func restorePlayer(record *db.Player, seq int) Player {
	return Player{
		ID:         seq,
		DBID:       record.ID,
		Name:       record.Name,
		IsHost:     record.IsHost,
		Score:      record.Score,
		Ready:      record.Ready,
		FinishedAt: record.FinishedAt,
		JoinedAt:   record.JoinedAt,
	}
}

func (s *Server) persistRestoredRoundStatus(round *RoundState) error {
	if round.DBID == 0 {
		return nil
	}
	return s.db.Model(&db.Round{}).Where("id = ? AND status <> ?", round.DBID, roundStatusFinished).
		Update("status", roundStatusFinished).Error
}
