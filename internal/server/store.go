package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store holds the authoritative in-memory room state. Every mutation runs
// under the store mutex, which is the critical section that serializes the
// protocols; Postgres mirrors the result and its unique constraints are the
// backstop against anything that slips past.
type Store struct {
	mu            sync.Mutex
	nextID        int
	nextPlayerID  int
	nextAnswerID  int
	nextRequestID int
	rooms         map[string]*Room
}

func NewStore() *Store {
	return &Store{
		nextID:        1,
		nextPlayerID:  1,
		nextAnswerID:  1,
		nextRequestID: 1,
		rooms:         make(map[string]*Room),
	}
}

func (s *Store) CreateRoom(hostName string, maxPlayers int) (*Room, *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("room-%d", s.nextID)
	s.nextID++
	room := &Room{
		ID:          id,
		Code:        newRoomCode(),
		Status:      roomStatusWaiting,
		MaxPlayers:  maxPlayers,
		UsedLetters: make(map[string]struct{}),
		CreatedAt:   timeNowUTC(),
	}
	host := Player{
		ID:       s.nextPlayerID,
		Name:     hostName,
		IsHost:   true,
		JoinedAt: timeNowUTC(),
	}
	s.nextPlayerID++
	room.Players = append(room.Players, host)
	room.HostID = host.ID
	s.rooms[id] = room
	return room, &room.Players[0]
}

func (s *Store) GetRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

func (s *Store) FindRoomByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.Code == code {
			return room, true
		}
	}
	return nil, false
}

// UpdateRoom runs update with the store locked, so the closure is a critical
// section over the room's state.
func (s *Store) UpdateRoom(id string, update func(room *Room) error) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, errRoomNotFound
	}
	if err := update(room); err != nil {
		return nil, err
	}
	return room, nil
}

// AddPlayer joins a player into a waiting room by join code.
func (s *Store) AddPlayer(code, name string) (*Room, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var room *Room
	for _, candidate := range s.rooms {
		if candidate.Code == code || candidate.ID == code {
			room = candidate
			break
		}
	}
	if room == nil {
		return nil, nil, errRoomNotFound
	}
	if room.Status != roomStatusWaiting {
		return nil, nil, errRoomNotJoinable
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, nil, errRoomNotJoinable
	}
	for i := range room.Players {
		if strings.EqualFold(room.Players[i].Name, name) {
			return nil, nil, errRoomNotJoinable
		}
	}

	player := Player{
		ID:       s.nextPlayerID,
		Name:     name,
		JoinedAt: timeNowUTC(),
	}
	s.nextPlayerID++
	room.Players = append(room.Players, player)
	return room, &room.Players[len(room.Players)-1], nil
}

// RemovePlayer takes a player out of a room. A host leaving dissolves the
// whole room; the returned flag reports whether that happened.
func (s *Store) RemovePlayer(roomID string, playerID int) (*Room, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false, errRoomNotFound
	}
	index := -1
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false, errPlayerNotFound
	}
	if room.Players[index].IsHost {
		delete(s.rooms, roomID)
		return room, true, nil
	}
	room.Players = append(room.Players[:index], room.Players[index+1:]...)
	return room, false, nil
}

func (s *Store) DeleteRoom(roomID string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	delete(s.rooms, roomID)
	return room, true
}

// StaleWaitingRooms returns rooms still in the waiting state older than the
// cutoff, for the cleanup sweep.
func (s *Store) StaleWaitingRooms(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []string
	for id, room := range s.rooms {
		if room.Status == roomStatusWaiting && room.CreatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}

func (s *Store) RestoreRoom(room *Room) error {
	if room == nil {
		return errRoomNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return fmt.Errorf("room already running: %s", room.ID)
	}
	for _, existing := range s.rooms {
		if existing.Code == room.Code {
			return fmt.Errorf("room code already in use: %s", room.Code)
		}
	}
	s.rooms[room.ID] = room
	if id := roomSortKey(room.ID); id >= s.nextID {
		s.nextID = id + 1
	}
	for _, player := range room.Players {
		if player.ID >= s.nextPlayerID {
			s.nextPlayerID = player.ID + 1
		}
	}
	for _, round := range room.Rounds {
		for _, answer := range round.Answers {
			if answer.ID >= s.nextAnswerID {
				s.nextAnswerID = answer.ID + 1
			}
		}
		for _, request := range round.Requests {
			if request.ID >= s.nextRequestID {
				s.nextRequestID = request.ID + 1
			}
		}
	}
	return nil
}

func (s *Store) ListRoomSummaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, RoomSummary{
			ID:      room.ID,
			Code:    room.Code,
			Status:  room.Status,
			Players: len(room.Players),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return roomSortKey(list[i].ID) < roomSortKey(list[j].ID)
	})
	return list
}

func (s *Store) GetPlayer(roomID string, playerID int) (*Room, *Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, false
	}
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return room, &room.Players[i], true
		}
	}
	return room, nil, false
}

// FindPlayer assumes the caller already holds the room via UpdateRoom or a
// store accessor.
func (s *Store) FindPlayer(room *Room, playerID int) (*Player, bool) {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return &room.Players[i], true
		}
	}
	return nil, false
}

func (s *Store) allocAnswerID() int {
	id := s.nextAnswerID
	s.nextAnswerID++
	return id
}

func (s *Store) allocRequestID() int {
	id := s.nextRequestID
	s.nextRequestID++
	return id
}

func roomSortKey(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
