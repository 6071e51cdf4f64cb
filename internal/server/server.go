package server

import (
	"net/http"
	"sync"
	"time"

	"petit-bac/internal/config"
	"petit-bac/internal/dictionary"

	"gorm.io/gorm"
)

// Dictionary is the word-validity collaborator. Failures are soft: the
// scoring path turns them into a manual-validation flag.
type Dictionary interface {
	Categories() ([]dictionary.Category, error)
	ValidateWord(word string, categoryID int) (bool, error)
}

type Server struct {
	store     *Store
	db        *gorm.DB
	dict      Dictionary
	ws        *wsHub
	lobbyWS   *lobbyHub
	cfg       config.Config
	timersMu  sync.Mutex
	timers    map[string]*time.Timer
	waitersMu sync.Mutex
	waiters   map[string]func()
}

func New(conn *gorm.DB, cfg config.Config, dict Dictionary) *Server {
	return &Server{
		store:   NewStore(),
		db:      conn,
		dict:    dict,
		ws:      newWSHub(),
		lobbyWS: newLobbyHub(),
		cfg:     cfg,
		timers:  make(map[string]*time.Timer),
		waiters: make(map[string]func()),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("POST /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("POST /api/join", s.handleJoinRoom)
	mux.HandleFunc("POST /api/solo/games", s.handleSoloGame)
	mux.HandleFunc("GET /ws/rooms/", s.handleWebsocket)
	mux.HandleFunc("GET /ws/lobby", s.handleLobbyWebsocket)
	return mux
}
