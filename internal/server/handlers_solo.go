package server

import (
	"log"
	"net/http"
	"strings"

	"petit-bac/internal/db"
)

type soloGameRequest struct {
	Letter  string        `json:"letter"`
	Answers []draftAnswer `json:"answers"`
}

type soloAnswerView struct {
	CategoryID int    `json:"category_id"`
	Word       string `json:"word"`
	IsValid    bool   `json:"is_valid"`
	Points     int    `json:"points"`
}

// handleSoloGame scores a finished solo run in one shot. Solo play has no
// opponent and no consensus machinery, so each valid word is worth the solo
// rate and there is no early-stop penalty.
func (s *Server) handleSoloGame(w http.ResponseWriter, r *http.Request) {
	var req soloGameRequest
	if !readJSON(w, r, &req) {
		return
	}
	letter := strings.ToUpper(strings.TrimSpace(req.Letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		writeError(w, http.StatusBadRequest, "invalid letter")
		return
	}
	drafts, ok := validateDraft(toDrafts(req.Answers))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid answers")
		return
	}

	total := 0
	views := make([]soloAnswerView, 0, len(drafts))
	records := make([]db.SoloAnswer, 0, len(drafts))
	for _, answer := range drafts {
		score := scoreWord(answer.Word, letter, answer.CategoryID, s.cfg.PointsPerWordSolo, s.dict.ValidateWord)
		total += score.Points
		views = append(views, soloAnswerView{
			CategoryID: answer.CategoryID,
			Word:       answer.Word,
			IsValid:    score.IsValid,
			Points:     score.Points,
		})
		records = append(records, db.SoloAnswer{
			CategoryID: answer.CategoryID,
			Word:       answer.Word,
			IsValid:    score.IsValid,
			Points:     score.Points,
		})
	}

	if s.db != nil {
		game := db.SoloGame{
			Letter:  letter,
			Score:   total,
			Answers: records,
		}
		if err := s.db.Create(&game).Error; err != nil {
			log.Printf("solo game persist failed error=%v", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"letter":  letter,
		"score":   total,
		"answers": views,
	})
}
