package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/skip2/go-qrcode"
)

type createRoomRequest struct {
	HostName string `json:"host_name"`
}

type joinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type playerActionRequest struct {
	PlayerID int `json:"player_id"`
}

type draftRequest struct {
	PlayerID int           `json:"player_id"`
	Answers  []draftAnswer `json:"answers"`
}

type submitRequest struct {
	PlayerID     int           `json:"player_id"`
	Answers      []draftAnswer `json:"answers"`
	StoppedEarly bool          `json:"stopped_early"`
}

type draftAnswer struct {
	CategoryID int    `json:"category_id"`
	Word       string `json:"word"`
}

type endGameRespondRequest struct {
	PlayerID  int  `json:"player_id"`
	RequestID int  `json:"request_id"`
	Accept    bool `json:"accept"`
}

type openVoteRequest struct {
	PlayerID int `json:"player_id"`
	AnswerID int `json:"answer_id"`
}

type castVoteRequest struct {
	PlayerID int  `json:"player_id"`
	AnswerID int  `json:"answer_id"`
	Vote     bool `json:"vote"`
}

func toDrafts(answers []draftAnswer) []DraftAnswer {
	drafts := make([]DraftAnswer, 0, len(answers))
	for _, answer := range answers {
		drafts = append(drafts, DraftAnswer{CategoryID: answer.CategoryID, Word: answer.Word})
	}
	return drafts
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": s.store.ListRoomSummaries(),
	})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !readJSON(w, r, &req) {
		return
	}
	name, ok := validateName(req.HostName)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid host name")
		return
	}
	room, host, err := s.createRoom(name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"room":      s.snapshot(room),
		"player_id": host.ID,
		"join_url":  s.joinURL(room.Code),
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if !readJSON(w, r, &req) {
		return
	}
	name, ok := validateName(req.Name)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid player name")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing room code")
		return
	}
	room, player, err := s.joinRoom(req.Code, name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":      s.snapshot(room),
		"player_id": player.ID,
	})
}

func (s *Server) handleRoomSubroutes(w http.ResponseWriter, r *http.Request) {
	roomID, action, ok := parseRoomPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodGet {
		switch action {
		case "":
			s.handleGetRoom(w, r, roomID)
		case "qr":
			s.handleRoomQR(w, r, roomID)
		case "events":
			s.handleRoomEvents(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
		return
	}
	switch action {
	case "leave":
		s.handleLeaveRoom(w, r, roomID)
	case "start":
		s.handleStartGame(w, r, roomID)
	case "finish":
		s.handleFinishGame(w, r, roomID)
	case "answers":
		s.handleSubmitAnswers(w, r, roomID)
	case "drafts":
		s.handleSaveDraft(w, r, roomID)
	case "ready":
		s.handleReady(w, r, roomID)
	case "endgame":
		s.handleRequestEndGame(w, r, roomID)
	case "endgame/respond":
		s.handleRespondEndGame(w, r, roomID)
	case "votes":
		s.handleOpenVote(w, r, roomID)
	case "votes/cast":
		s.handleCastVote(w, r, roomID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		writeDomainError(w, errRoomNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": s.snapshot(room)})
}

const (
	defaultEventsPerPage = 20
	maxEventsPerPage     = 100
)

type eventView struct {
	ID        int          `json:"id"`
	Type      string       `json:"type"`
	Event     EventPayload `json:"event"`
	CreatedAt time.Time    `json:"created_at"`
}

// handleRoomEvents lists the room's event log in order, oldest first.
func (s *Server) handleRoomEvents(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		writeDomainError(w, errRoomNotFound)
		return
	}
	page, perPage := parsePagination(r, defaultEventsPerPage, maxEventsPerPage)
	meta := buildPageMeta(page, perPage, len(room.Events))
	start := (meta.Page - 1) * meta.PerPage
	if start > len(room.Events) {
		start = len(room.Events)
	}
	end := start + meta.PerPage
	if end > len(room.Events) {
		end = len(room.Events)
	}
	views := make([]eventView, 0, end-start)
	for _, record := range room.Events[start:end] {
		views = append(views, eventView{
			ID:        record.ID,
			Type:      record.Type,
			Event:     record.Payload,
			CreatedAt: record.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":     views,
		"pagination": meta,
	})
}

func (s *Server) joinURL(code string) string {
	return fmt.Sprintf("%s/join?code=%s", s.cfg.PublicBaseURL, code)
}

// handleRoomQR renders the room's join link as a PNG so the host can show it
// on screen for the second player to scan.
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		writeDomainError(w, errRoomNotFound)
		return
	}
	png, err := qrcode.Encode(s.joinURL(room.Code), qrcode.Medium, 256)
	if err != nil {
		log.Printf("qr encode failed room_id=%s error=%v", roomID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var req playerActionRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.leaveRoom(roomID, req.PlayerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, roomID string) {
	var req playerActionRequest
	if !readJSON(w, r, &req) {
		return
	}
	room, err := s.startGame(roomID, req.PlayerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": s.snapshot(room)})
}

func (s *Server) handleFinishGame(w http.ResponseWriter, r *http.Request, roomID string) {
	var req playerActionRequest
	if !readJSON(w, r, &req) {
		return
	}
	room, err := s.finishGame(roomID, req.PlayerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": s.snapshot(room)})
}

func (s *Server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request, roomID string) {
	var req submitRequest
	if !readJSON(w, r, &req) {
		return
	}
	drafts, ok := validateDraft(toDrafts(req.Answers))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid answers")
		return
	}
	if err := s.submitAnswers(roomID, req.PlayerID, drafts, req.StoppedEarly, "player"); err != nil {
		writeDomainError(w, err)
		return
	}
	room, found := s.store.GetRoom(roomID)
	if !found {
		writeDomainError(w, errRoomNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": s.snapshot(room)})
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request, roomID string) {
	var req draftRequest
	if !readJSON(w, r, &req) {
		return
	}
	drafts, ok := validateDraft(toDrafts(req.Answers))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid answers")
		return
	}
	if err := s.saveDraft(roomID, req.PlayerID, drafts); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request, roomID string) {
	var req playerActionRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.markReady(roomID, req.PlayerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRequestEndGame(w http.ResponseWriter, r *http.Request, roomID string) {
	var req playerActionRequest
	if !readJSON(w, r, &req) {
		return
	}
	entry, created, err := s.requestEndGame(roomID, req.PlayerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"request_id": entry.ID,
		"status":     entry.Status,
		"created":    created,
	})
}

func (s *Server) handleRespondEndGame(w http.ResponseWriter, r *http.Request, roomID string) {
	var req endGameRespondRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.respondEndGame(roomID, req.PlayerID, req.RequestID, req.Accept); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenVote(w http.ResponseWriter, r *http.Request, roomID string) {
	var req openVoteRequest
	if !readJSON(w, r, &req) {
		return
	}
	created, err := s.openVote(roomID, req.PlayerID, req.AnswerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"created": created})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request, roomID string) {
	var req castVoteRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.castVote(roomID, req.PlayerID, req.AnswerID, req.Vote); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.dict.Categories()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "dictionary unavailable")
		return
	}
	type categoryView struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, categoryView{ID: category.ID, Name: category.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": views})
}
