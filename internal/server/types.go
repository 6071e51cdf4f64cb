package server

import "time"

const (
	roomStatusWaiting  = "waiting"
	roomStatusPlaying  = "playing"
	roomStatusFinished = "finished"
)

const (
	roundStatusPlaying  = "playing"
	roundStatusFinished = "finished"
)

const (
	endGameStatusPending  = "pending"
	endGameStatusAccepted = "accepted"
	endGameStatusRejected = "rejected"
	endGameStatusExpired  = "expired"
)

type RoomSummary struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Status  string `json:"status"`
	Players int    `json:"players"`
}

type Room struct {
	ID           string
	DBID         uint
	Code         string
	Letter       string
	Status       string
	MaxPlayers   int
	UsedLetters  map[string]struct{}
	CurrentRound int
	HostID       int
	CreatedAt    time.Time
	StartedAt    time.Time
	Players      []Player
	Rounds       []RoundState
	Events       []EventRecord
	BarrierOpen  bool
}

// EventRecord is one entry of the room's ordered event log, mirrored to the
// events table and served back through the paginated listing.
type EventRecord struct {
	ID        int
	Type      string
	Payload   EventPayload
	CreatedAt time.Time
}

type Player struct {
	ID         int
	DBID       uint
	Name       string
	IsHost     bool
	Score      int
	FinishedAt *time.Time
	Ready      bool
	JoinedAt   time.Time
}

type RoundState struct {
	Number    int
	DBID      uint
	Letter    string
	Status    string
	StartedAt time.Time
	Answers   []AnswerEntry
	Scores    []RoundScoreEntry
	Requests  []EndGameRequestEntry
	Votes     []VoteEntry
	Drafts    map[int][]DraftAnswer
}

type AnswerEntry struct {
	ID                     int
	DBID                   uint
	PlayerID               int
	CategoryID             int
	Word                   string
	IsValid                bool
	Points                 int
	NeedsManualValidation  bool
	ManualValidationResult *bool
}

type DraftAnswer struct {
	CategoryID int
	Word       string
}

type RoundScoreEntry struct {
	DBID            uint
	PlayerID        int
	RoundScore      int
	ValidWordsCount int
	StoppedEarly    bool
	PenaltyApplied  bool
	FinishedAt      time.Time
}

type EndGameRequestEntry struct {
	ID          int
	DBID        uint
	RequesterID int
	Status      string
	CreatedAt   time.Time
	RespondedAt *time.Time
}

type VoteEntry struct {
	DBID     uint
	AnswerID int
	PlayerID int
	Vote     *bool
}
