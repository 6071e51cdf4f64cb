package server

import (
	"log"
)

// Room lifecycle: create/join/leave/start/finish. Round progression lives in
// rounds.go.

func (s *Server) createRoom(hostName string) (*Room, *Player, error) {
	room, host := s.store.CreateRoom(hostName, s.cfg.MaxPlayers)
	if err := s.persistRoom(room); err != nil {
		s.store.DeleteRoom(room.ID)
		return nil, nil, err
	}
	if _, err := s.persistPlayer(room, host); err != nil {
		s.store.DeleteRoom(room.ID)
		return nil, nil, err
	}
	log.Printf("room created room_id=%s code=%s host=%s", room.ID, room.Code, hostName)
	s.broadcastRoomEvent(room, eventRoomCreated, EventPayload{
		RoomID:     room.ID,
		Code:       room.Code,
		PlayerID:   host.ID,
		PlayerName: host.Name,
	})
	return room, host, nil
}

func (s *Server) joinRoom(code, name string) (*Room, *Player, error) {
	room, player, err := s.store.AddPlayer(code, name)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.persistPlayer(room, player); err != nil {
		return nil, nil, err
	}
	log.Printf("player joined room_id=%s player_id=%d player_name=%s", room.ID, player.ID, name)
	s.broadcastRoomEvent(room, eventPlayerJoined, EventPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
	return room, player, nil
}

// leaveRoom removes a player. A guest leaving only drops their row; the host
// leaving dissolves the room entirely, cascading every dependent row.
func (s *Server) leaveRoom(roomID string, playerID int) error {
	room, player, found := s.store.GetPlayer(roomID, playerID)
	if !found {
		if room == nil {
			return errRoomNotFound
		}
		return errPlayerNotFound
	}
	playerDBID := player.DBID
	playerName := player.Name
	room, dissolved, err := s.store.RemovePlayer(roomID, playerID)
	if err != nil {
		return err
	}
	if dissolved {
		s.cancelRoomWaiters(room.ID)
		s.cancelRoomTimers(room.ID)
		if err := s.deleteRoomRecords(room); err != nil {
			log.Printf("room delete persist failed room_id=%s error=%v", room.ID, err)
		}
		log.Printf("room dissolved room_id=%s reason=host_left", room.ID)
		s.ws.Broadcast(room.ID, map[string]any{
			"type":  eventRoomDeleted,
			"event": EventPayload{RoomID: room.ID, Reason: "host_left"},
		})
		s.ws.CloseRoom(room.ID)
		s.broadcastLobbyUpdate()
		return nil
	}
	if err := s.deletePlayerRecord(room, playerDBID, playerName); err != nil {
		log.Printf("player delete persist failed room_id=%s player_id=%d error=%v", room.ID, playerID, err)
	}
	log.Printf("player left room_id=%s player_id=%d", room.ID, playerID)
	s.broadcastRoomEvent(room, eventPlayerLeft, EventPayload{PlayerID: playerID})
	return nil
}

// startGame moves a waiting room into play and opens round one. Only the host
// may start, and only with a full pair of players.
func (s *Server) startGame(roomID string, playerID int) (*Room, error) {
	var created bool
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		player, found := s.store.FindPlayer(room, playerID)
		if !found {
			return errPlayerNotFound
		}
		if !player.IsHost {
			return errRoomNotJoinable
		}
		if room.Status != roomStatusWaiting {
			return errRoomNotJoinable
		}
		if len(room.Players) < 2 {
			return errRoomNotJoinable
		}
		room.Status = roomStatusPlaying
		room.StartedAt = timeNowUTC()
		_, created = createRound(room, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistRoomStatus(room); err != nil {
		log.Printf("room status persist failed room_id=%s error=%v", room.ID, err)
	}
	if created {
		if err := s.persistRound(room); err != nil {
			log.Printf("round persist failed room_id=%s error=%v", room.ID, err)
		}
	}
	s.broadcastRoomEvent(room, eventGameStarted, EventPayload{Status: room.Status})
	s.broadcastRoomEvent(room, eventRoundStarted, EventPayload{
		RoundNumber: room.CurrentRound,
		Letter:      room.Letter,
	})
	s.scheduleRoundTimer(room.ID, room.CurrentRound)
	log.Printf("game started room_id=%s letter=%s", room.ID, room.Letter)
	return room, nil
}

func (s *Server) finishGame(roomID string, playerID int) (*Room, error) {
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		player, found := s.store.FindPlayer(room, playerID)
		if !found {
			return errPlayerNotFound
		}
		if !player.IsHost {
			return errRoomNotJoinable
		}
		if room.Status == roomStatusFinished {
			return nil
		}
		room.Status = roomStatusFinished
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cancelRoomWaiters(room.ID)
	s.cancelRoomTimers(room.ID)
	if err := s.persistRoomStatus(room); err != nil {
		log.Printf("room status persist failed room_id=%s error=%v", room.ID, err)
	}
	s.broadcastRoomEvent(room, eventGameFinished, EventPayload{Status: room.Status})
	log.Printf("game finished room_id=%s", room.ID)
	return room, nil
}
