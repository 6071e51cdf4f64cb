package server

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"

	"petit-bac/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Postgres mirrors the in-memory state. Every persist call is a no-op when
// the server runs without a database (tests, local play), and failures are
// logged rather than surfaced: the store stays authoritative for a running
// room, the mirror is there for restarts and for the unique-constraint
// backstops.

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func logPersistEventFailure(room *Room, eventType string, err error) {
	log.Printf("event persist failed room_id=%s type=%s error=%v", room.ID, eventType, err)
}

func usedLettersString(room *Room) string {
	letters := make([]string, 0, len(room.UsedLetters))
	for letter := range room.UsedLetters {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	return strings.Join(letters, "")
}

// ensureRoomDBID resolves the room's row id, looking it up by join code when
// the in-memory copy predates the mirror (restored rooms, retried persists).
func (s *Server) ensureRoomDBID(room *Room) (uint, error) {
	if room.DBID != 0 {
		return room.DBID, nil
	}
	var record db.Room
	if err := s.db.Where("code = ?", room.Code).First(&record).Error; err != nil {
		return 0, err
	}
	s.setRoomDBID(room.ID, record.ID)
	room.DBID = record.ID
	return record.ID, nil
}

func (s *Server) setRoomDBID(roomID string, dbid uint) {
	_, _ = s.store.UpdateRoom(roomID, func(room *Room) error {
		room.DBID = dbid
		return nil
	})
}

func (s *Server) playerDBID(roomDBID uint, room *Room, playerID int) (uint, error) {
	player, found := s.store.FindPlayer(room, playerID)
	if !found {
		return 0, errPlayerNotFound
	}
	if player.DBID != 0 {
		return player.DBID, nil
	}
	var record db.Player
	if err := s.db.Where("room_id = ? AND name = ?", roomDBID, player.Name).First(&record).Error; err != nil {
		return 0, err
	}
	_, _ = s.store.UpdateRoom(room.ID, func(r *Room) error {
		if p, ok := s.store.FindPlayer(r, playerID); ok {
			p.DBID = record.ID
		}
		return nil
	})
	return record.ID, nil
}

func (s *Server) roundDBID(roomDBID uint, room *Room, number int) (uint, error) {
	round := roundByNumber(room, number)
	if round == nil {
		return 0, errRoundNotStarted
	}
	if round.DBID != 0 {
		return round.DBID, nil
	}
	var record db.Round
	if err := s.db.Where("room_id = ? AND number = ?", roomDBID, number).First(&record).Error; err != nil {
		return 0, err
	}
	_, _ = s.store.UpdateRoom(room.ID, func(r *Room) error {
		if rd := roundByNumber(r, number); rd != nil {
			rd.DBID = record.ID
		}
		return nil
	})
	return record.ID, nil
}

func (s *Server) persistRoom(room *Room) error {
	if s.db == nil {
		return nil
	}
	record := db.Room{
		Code:       room.Code,
		Status:     room.Status,
		MaxPlayers: room.MaxPlayers,
		CreatedAt:  room.CreatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	s.setRoomDBID(room.ID, record.ID)
	room.DBID = record.ID
	return nil
}

func (s *Server) persistPlayer(room *Room, player *Player) (uint, error) {
	if s.db == nil {
		return 0, nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return 0, err
	}
	record := db.Player{
		RoomID:   roomDBID,
		Name:     player.Name,
		IsHost:   player.IsHost,
		JoinedAt: player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, errRoomNotJoinable
		}
		return 0, err
	}
	_, _ = s.store.UpdateRoom(room.ID, func(r *Room) error {
		if p, ok := s.store.FindPlayer(r, player.ID); ok {
			p.DBID = record.ID
		}
		return nil
	})
	player.DBID = record.ID
	return record.ID, nil
}

func (s *Server) persistRoomStatus(room *Room) error {
	if s.db == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"status":        room.Status,
		"letter":        room.Letter,
		"current_round": room.CurrentRound,
		"used_letters":  usedLettersString(room),
	}
	if !room.StartedAt.IsZero() {
		updates["started_at"] = room.StartedAt
	}
	if room.Status == roomStatusFinished {
		updates["finished_at"] = timeNowUTC()
	}
	return s.db.Model(&db.Room{}).Where("id = ?", roomDBID).Updates(updates).Error
}

// persistRound mirrors the room's current round. The (room_id, number)
// unique index absorbs a double create: the duplicate row is looked up and
// adopted instead.
func (s *Server) persistRound(room *Room) error {
	if s.db == nil {
		return nil
	}
	round := currentRound(room)
	if round == nil {
		return errRoundNotStarted
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	record := db.Round{
		RoomID: roomDBID,
		Number: round.Number,
		Letter: round.Letter,
		Status: round.Status,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if !isUniqueViolation(err) {
			return err
		}
		if err := s.db.Where("room_id = ? AND number = ?", roomDBID, round.Number).First(&record).Error; err != nil {
			return err
		}
	}
	number := round.Number
	_, _ = s.store.UpdateRoom(room.ID, func(r *Room) error {
		if rd := roundByNumber(r, number); rd != nil {
			rd.DBID = record.ID
		}
		return nil
	})
	round.DBID = record.ID
	if err := s.persistRoomStatus(room); err != nil {
		return err
	}
	return nil
}

func (s *Server) persistRoundStatus(room *Room, number int) error {
	if s.db == nil {
		return nil
	}
	round := roundByNumber(room, number)
	if round == nil {
		return errRoundNotStarted
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	roundID, err := s.roundDBID(roomDBID, room, number)
	if err != nil {
		return err
	}
	return s.db.Model(&db.Round{}).Where("id = ?", roundID).Update("status", round.Status).Error
}

func (s *Server) persistPlayerState(room *Room, playerID int) error {
	if s.db == nil {
		return nil
	}
	player, found := s.store.FindPlayer(room, playerID)
	if !found {
		return errPlayerNotFound
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	playerDBID, err := s.playerDBID(roomDBID, room, playerID)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"score":       player.Score,
		"ready":       player.Ready,
		"finished_at": player.FinishedAt,
	}
	return s.db.Model(&db.Player{}).Where("id = ?", playerDBID).Updates(updates).Error
}

// persistSubmission writes one player's answer rows and their round score.
// The (round_id, player_id) unique index on round_scores is the submit-once
// backstop: a duplicate that slipped past the store surfaces here.
func (s *Server) persistSubmission(room *Room, number, playerID int, entries []AnswerEntry, scoreEntry RoundScoreEntry) error {
	if s.db == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	roundID, err := s.roundDBID(roomDBID, room, number)
	if err != nil {
		return err
	}
	playerDBID, err := s.playerDBID(roomDBID, room, playerID)
	if err != nil {
		return err
	}

	scoreRecord := db.RoundScore{
		RoundID:         roundID,
		PlayerID:        playerDBID,
		RoundScore:      scoreEntry.RoundScore,
		ValidWordsCount: scoreEntry.ValidWordsCount,
		StoppedEarly:    scoreEntry.StoppedEarly,
		PenaltyApplied:  scoreEntry.PenaltyApplied,
		FinishedAt:      scoreEntry.FinishedAt,
	}
	if err := s.db.Create(&scoreRecord).Error; err != nil {
		if isUniqueViolation(err) {
			return errRoundAlreadySubmitted
		}
		return err
	}

	for _, entry := range entries {
		record := db.Answer{
			RoomID:                roomDBID,
			RoundID:               roundID,
			PlayerID:              playerDBID,
			CategoryID:            entry.CategoryID,
			Word:                  entry.Word,
			IsValid:               entry.IsValid,
			Points:                entry.Points,
			NeedsManualValidation: entry.NeedsManualValidation,
		}
		if err := s.db.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
		entryID := entry.ID
		_, _ = s.store.UpdateRoom(room.ID, func(r *Room) error {
			round := roundByNumber(r, number)
			if round == nil {
				return nil
			}
			if answer := answerByID(round, entryID); answer != nil {
				answer.DBID = record.ID
			}
			return nil
		})
	}
	return s.persistPlayerState(room, playerID)
}

func (s *Server) persistEndGameRequest(room *Room, number int, entry EndGameRequestEntry) error {
	if s.db == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	roundID, err := s.roundDBID(roomDBID, room, number)
	if err != nil {
		return err
	}
	requesterID, err := s.playerDBID(roomDBID, room, entry.RequesterID)
	if err != nil {
		return err
	}
	record := db.EndGameRequest{
		RoomID:            roomDBID,
		RoundID:           roundID,
		RequesterPlayerID: requesterID,
		Status:            entry.Status,
		CreatedAt:         entry.CreatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	entryID := entry.ID
	_, _ = s.store.UpdateRoom(room.ID, func(r *Room) error {
		round := roundByNumber(r, number)
		if round == nil {
			return nil
		}
		if request := requestByID(round, entryID); request != nil {
			request.DBID = record.ID
		}
		return nil
	})
	return nil
}

func (s *Server) persistEndGameRequestStatus(room *Room, number, requestID int) error {
	if s.db == nil {
		return nil
	}
	round := roundByNumber(room, number)
	if round == nil {
		return errRoundNotStarted
	}
	request := requestByID(round, requestID)
	if request == nil {
		return errRoundNotStarted
	}
	if request.DBID == 0 {
		return nil
	}
	updates := map[string]any{
		"status":       request.Status,
		"responded_at": request.RespondedAt,
	}
	return s.db.Model(&db.EndGameRequest{}).Where("id = ?", request.DBID).Updates(updates).Error
}

func (s *Server) answerDBID(roomDBID, roundID uint, room *Room, number, answerID int) (uint, error) {
	round := roundByNumber(room, number)
	if round == nil {
		return 0, errRoundNotStarted
	}
	answer := answerByID(round, answerID)
	if answer == nil {
		return 0, errAnswerNotFound
	}
	if answer.DBID != 0 {
		return answer.DBID, nil
	}
	playerDBID, err := s.playerDBID(roomDBID, room, answer.PlayerID)
	if err != nil {
		return 0, err
	}
	var record db.Answer
	err = s.db.Where("round_id = ? AND player_id = ? AND category_id = ?", roundID, playerDBID, answer.CategoryID).
		First(&record).Error
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (s *Server) persistVotes(room *Room, number, answerID int) error {
	if s.db == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	roundID, err := s.roundDBID(roomDBID, room, number)
	if err != nil {
		return err
	}
	answerDBID, err := s.answerDBID(roomDBID, roundID, room, number, answerID)
	if err != nil {
		return err
	}
	round := roundByNumber(room, number)
	if round == nil {
		return errRoundNotStarted
	}
	for _, entry := range votesForAnswer(round, answerID) {
		playerDBID, err := s.playerDBID(roomDBID, room, entry.PlayerID)
		if err != nil {
			return err
		}
		record := db.WordValidationVote{
			RoomID:   roomDBID,
			RoundID:  roundID,
			AnswerID: answerDBID,
			PlayerID: playerDBID,
			Vote:     entry.Vote,
		}
		if err := s.db.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Server) persistVoteCast(room *Room, answerID, playerID int) error {
	if s.db == nil {
		return nil
	}
	round := currentRound(room)
	if round == nil {
		return errRoundNotStarted
	}
	var vote *bool
	for _, entry := range votesForAnswer(round, answerID) {
		if entry.PlayerID == playerID {
			vote = entry.Vote
			break
		}
	}
	if vote == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	roundID, err := s.roundDBID(roomDBID, room, round.Number)
	if err != nil {
		return err
	}
	answerDBID, err := s.answerDBID(roomDBID, roundID, room, round.Number, answerID)
	if err != nil {
		return err
	}
	playerDBID, err := s.playerDBID(roomDBID, room, playerID)
	if err != nil {
		return err
	}
	return s.db.Model(&db.WordValidationVote{}).
		Where("answer_id = ? AND player_id = ?", answerDBID, playerDBID).
		Update("vote", vote).Error
}

func (s *Server) persistVoteResolution(room *Room, number, answerID, ownerID int, score RoundScoreEntry) error {
	if s.db == nil {
		return nil
	}
	round := roundByNumber(room, number)
	if round == nil {
		return errRoundNotStarted
	}
	answer := answerByID(round, answerID)
	if answer == nil {
		return errAnswerNotFound
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	roundID, err := s.roundDBID(roomDBID, room, number)
	if err != nil {
		return err
	}
	answerDBID, err := s.answerDBID(roomDBID, roundID, room, number, answerID)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"is_valid":                 answer.IsValid,
		"points":                   answer.Points,
		"manual_validation_result": answer.ManualValidationResult,
	}
	if err := s.db.Model(&db.Answer{}).Where("id = ?", answerDBID).Updates(updates).Error; err != nil {
		return err
	}
	playerDBID, err := s.playerDBID(roomDBID, room, ownerID)
	if err != nil {
		return err
	}
	scoreUpdates := map[string]any{
		"round_score":       score.RoundScore,
		"valid_words_count": score.ValidWordsCount,
		"penalty_applied":   score.PenaltyApplied,
	}
	err = s.db.Model(&db.RoundScore{}).
		Where("round_id = ? AND player_id = ?", roundID, playerDBID).
		Updates(scoreUpdates).Error
	if err != nil {
		return err
	}
	return s.persistPlayerState(room, ownerID)
}

func (s *Server) persistEvent(room *Room, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		RoomID:    roomDBID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: timeNowUTC(),
	}
	return s.db.Create(&record).Error
}

// deleteRoomRecords removes a dissolved room and everything hanging off it.
// Children without a declared cascade are cleared explicitly first.
func (s *Server) deleteRoomRecords(room *Room) error {
	if s.db == nil {
		return nil
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomDBID).Delete(&db.WordValidationVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomDBID).Delete(&db.EndGameRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomDBID).Delete(&db.Answer{}).Error; err != nil {
			return err
		}
		err := tx.Where("round_id IN (?)", tx.Model(&db.Round{}).Select("id").Where("room_id = ?", roomDBID)).
			Delete(&db.RoundScore{}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomDBID).Delete(&db.Round{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomDBID).Delete(&db.Player{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomDBID).Delete(&db.Event{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Room{}, roomDBID).Error
	})
}

// deletePlayerRecord drops the row of a player who already left the
// in-memory room, so the identity is passed in rather than looked up.
func (s *Server) deletePlayerRecord(room *Room, playerDBID uint, name string) error {
	if s.db == nil {
		return nil
	}
	if playerDBID != 0 {
		return s.db.Delete(&db.Player{}, playerDBID).Error
	}
	roomDBID, err := s.ensureRoomDBID(room)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.db.Where("room_id = ? AND name = ?", roomDBID, name).Delete(&db.Player{}).Error
}
