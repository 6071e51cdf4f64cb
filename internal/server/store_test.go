package server

import "testing"

func TestStoreCreateRoom(t *testing.T) {
	store := NewStore()
	room, host := store.CreateRoom("Ada", 2)
	if room.Status != roomStatusWaiting {
		t.Fatalf("expected waiting room, got %s", room.Status)
	}
	if len(room.Code) != 4 {
		t.Fatalf("expected a 4 character code, got %q", room.Code)
	}
	if !host.IsHost || room.HostID != host.ID {
		t.Fatal("creator must be the host")
	}
}

func TestStoreAddPlayer(t *testing.T) {
	store := NewStore()
	room, _ := store.CreateRoom("Ada", 2)
	joined, player, err := store.AddPlayer(room.Code, "Blaise")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if joined.ID != room.ID {
		t.Fatalf("joined the wrong room: %s", joined.ID)
	}
	if player.IsHost {
		t.Fatal("second player must not be host")
	}
	if len(joined.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(joined.Players))
	}
}

func TestStoreAddPlayerRejectsDuplicateName(t *testing.T) {
	store := NewStore()
	room, _ := store.CreateRoom("Ada", 2)
	if _, _, err := store.AddPlayer(room.Code, "ada"); err != errRoomNotJoinable {
		t.Fatalf("expected errRoomNotJoinable, got %v", err)
	}
}

func TestStoreAddPlayerRejectsFullRoom(t *testing.T) {
	store := NewStore()
	room, _ := store.CreateRoom("Ada", 2)
	if _, _, err := store.AddPlayer(room.Code, "Blaise"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, _, err := store.AddPlayer(room.Code, "Claude"); err != errRoomNotJoinable {
		t.Fatalf("expected errRoomNotJoinable, got %v", err)
	}
}

func TestStoreAddPlayerUnknownCode(t *testing.T) {
	store := NewStore()
	if _, _, err := store.AddPlayer("ZZZZ", "Ada"); err != errRoomNotFound {
		t.Fatalf("expected errRoomNotFound, got %v", err)
	}
}

func TestStoreHostLeaveDissolvesRoom(t *testing.T) {
	store := NewStore()
	room, host := store.CreateRoom("Ada", 2)
	_, dissolved, err := store.RemovePlayer(room.ID, host.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !dissolved {
		t.Fatal("host leaving must dissolve the room")
	}
	if _, ok := store.GetRoom(room.ID); ok {
		t.Fatal("room must be gone after dissolution")
	}
}

func TestStoreGuestLeaveKeepsRoom(t *testing.T) {
	store := NewStore()
	room, _ := store.CreateRoom("Ada", 2)
	_, guest, err := store.AddPlayer(room.Code, "Blaise")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	_, dissolved, err := store.RemovePlayer(room.ID, guest.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if dissolved {
		t.Fatal("guest leaving must not dissolve the room")
	}
	current, ok := store.GetRoom(room.ID)
	if !ok || len(current.Players) != 1 {
		t.Fatal("room must survive with the host alone")
	}
}

func TestStoreStaleWaitingRooms(t *testing.T) {
	store := NewStore()
	room, _ := store.CreateRoom("Ada", 2)
	stale := store.StaleWaitingRooms(timeNowUTC().Add(1))
	if len(stale) != 1 || stale[0] != room.ID {
		t.Fatalf("expected the waiting room to be stale, got %v", stale)
	}
	if stale := store.StaleWaitingRooms(timeNowUTC().Add(-1e9)); len(stale) != 0 {
		t.Fatalf("expected no stale rooms, got %v", stale)
	}
}

func TestStoreListRoomSummaries(t *testing.T) {
	store := NewStore()
	store.CreateRoom("Ada", 2)
	store.CreateRoom("Blaise", 2)
	summaries := store.ListRoomSummaries()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != "room-1" || summaries[1].ID != "room-2" {
		t.Fatalf("summaries out of order: %v", summaries)
	}
}
