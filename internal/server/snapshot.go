package server

import (
	"sort"
	"time"
)

// Wire views returned by the API and by websocket events. Answers of an
// unfinished round are withheld so a client can never read its opponent's
// words before both sides have submitted.

type roomView struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Status       string       `json:"status"`
	Letter       string       `json:"letter"`
	MaxPlayers   int          `json:"max_players"`
	CurrentRound int          `json:"current_round"`
	HostID       int          `json:"host_id"`
	UsedLetters  []string     `json:"used_letters"`
	Players      []playerView `json:"players"`
	Rounds       []roundView  `json:"rounds"`
	CreatedAt    time.Time    `json:"created_at"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	BarrierOpen  bool         `json:"barrier_open"`
}

type playerView struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	IsHost     bool       `json:"is_host"`
	Score      int        `json:"score"`
	Ready      bool       `json:"ready"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type roundView struct {
	Number    int                  `json:"number"`
	Letter    string               `json:"letter"`
	Status    string               `json:"status"`
	StartedAt time.Time            `json:"started_at"`
	Answers   []answerView         `json:"answers"`
	Scores    []roundScoreView     `json:"scores"`
	Requests  []endGameRequestView `json:"end_game_requests"`
	Votes     []voteView           `json:"votes"`
}

type answerView struct {
	ID                     int    `json:"id"`
	PlayerID               int    `json:"player_id"`
	CategoryID             int    `json:"category_id"`
	Word                   string `json:"word"`
	IsValid                bool   `json:"is_valid"`
	Points                 int    `json:"points"`
	NeedsManualValidation  bool   `json:"needs_manual_validation"`
	ManualValidationResult *bool  `json:"manual_validation_result,omitempty"`
}

type roundScoreView struct {
	PlayerID       int  `json:"player_id"`
	Score          int  `json:"score"`
	ValidCount     int  `json:"valid_count"`
	StoppedEarly   bool `json:"stopped_early"`
	PenaltyApplied bool `json:"penalty_applied"`
}

type endGameRequestView struct {
	ID          int        `json:"id"`
	RequesterID int        `json:"requester_id"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type voteView struct {
	AnswerID int   `json:"answer_id"`
	PlayerID int   `json:"player_id"`
	Vote     *bool `json:"vote,omitempty"`
}

func (s *Server) snapshot(room *Room) roomView {
	view := roomView{
		ID:           room.ID,
		Code:         room.Code,
		Status:       room.Status,
		Letter:       room.Letter,
		MaxPlayers:   room.MaxPlayers,
		CurrentRound: room.CurrentRound,
		HostID:       room.HostID,
		UsedLetters:  make([]string, 0, len(room.UsedLetters)),
		Players:      make([]playerView, 0, len(room.Players)),
		Rounds:       make([]roundView, 0, len(room.Rounds)),
		CreatedAt:    room.CreatedAt,
		BarrierOpen:  room.BarrierOpen,
	}
	if !room.StartedAt.IsZero() {
		started := room.StartedAt
		view.StartedAt = &started
	}
	for letter := range room.UsedLetters {
		view.UsedLetters = append(view.UsedLetters, letter)
	}
	sort.Strings(view.UsedLetters)
	for _, p := range room.Players {
		view.Players = append(view.Players, playerView{
			ID:         p.ID,
			Name:       p.Name,
			IsHost:     p.IsHost,
			Score:      p.Score,
			Ready:      p.Ready,
			FinishedAt: p.FinishedAt,
		})
	}
	for i := range room.Rounds {
		view.Rounds = append(view.Rounds, s.roundSnapshot(&room.Rounds[i]))
	}
	return view
}

func (s *Server) roundSnapshot(round *RoundState) roundView {
	view := roundView{
		Number:    round.Number,
		Letter:    round.Letter,
		Status:    round.Status,
		StartedAt: round.StartedAt,
		Answers:   []answerView{},
		Scores:    []roundScoreView{},
		Requests:  []endGameRequestView{},
		Votes:     []voteView{},
	}
	if round.Status == roundStatusFinished {
		for _, a := range round.Answers {
			view.Answers = append(view.Answers, answerView{
				ID:                     a.ID,
				PlayerID:               a.PlayerID,
				CategoryID:             a.CategoryID,
				Word:                   a.Word,
				IsValid:                a.IsValid,
				Points:                 a.Points,
				NeedsManualValidation:  a.NeedsManualValidation,
				ManualValidationResult: a.ManualValidationResult,
			})
		}
		for _, sc := range round.Scores {
			view.Scores = append(view.Scores, roundScoreView{
				PlayerID:       sc.PlayerID,
				Score:          sc.RoundScore,
				ValidCount:     sc.ValidWordsCount,
				StoppedEarly:   sc.StoppedEarly,
				PenaltyApplied: sc.PenaltyApplied,
			})
		}
	}
	for _, req := range round.Requests {
		view.Requests = append(view.Requests, endGameRequestView{
			ID:          req.ID,
			RequesterID: req.RequesterID,
			Status:      req.Status,
			RequestedAt: req.CreatedAt,
			RespondedAt: req.RespondedAt,
		})
	}
	for _, v := range round.Votes {
		view.Votes = append(view.Votes, voteView{
			AnswerID: v.AnswerID,
			PlayerID: v.PlayerID,
			Vote:     v.Vote,
		})
	}
	return view
}
