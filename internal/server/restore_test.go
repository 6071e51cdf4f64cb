package server

import (
	"testing"
	"time"

	"petit-bac/internal/db"
)

func TestRestorePlayerCarriesPersistedState(t *testing.T) {
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := db.Player{
		ID:         7,
		Name:       "Ada",
		IsHost:     true,
		Score:      12,
		Ready:      true,
		FinishedAt: &finished,
		JoinedAt:   finished.Add(-time.Hour),
	}
	player := restorePlayer(&record, 1)
	if player.ID != 1 || player.DBID != 7 {
		t.Fatalf("unexpected ids: %d/%d", player.ID, player.DBID)
	}
	if player.Name != "Ada" || !player.IsHost {
		t.Fatalf("unexpected identity: %+v", player)
	}
	if player.Score != 12 {
		t.Fatalf("expected score 12, got %d", player.Score)
	}
	if !player.Ready {
		t.Fatal("ready must survive a restart")
	}
	if player.FinishedAt == nil || !player.FinishedAt.Equal(finished) {
		t.Fatalf("expected finished_at carried, got %v", player.FinishedAt)
	}
}
