package server

import (
	"net/http"
	"testing"
)

// voteFixture plays one round where the host's category 1 word is a
// dictionary miss, so it lands invalid but flagged for manual validation.
func voteFixture(t *testing.T) (*testServerHandle, int) {
	t.Helper()
	handle := newEndGameFixture(t)
	letter := roundLetter(t, handle.ts, handle.roomID)

	hostWords := map[int]string{1: letter + "azz", 2: letter + "ville"}
	guestWords := map[int]string{1: letter + "on", 2: letter + "ville"}
	if resp := submitWords(t, handle.ts, handle.roomID, handle.hostID, hostWords, false); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp := submitWords(t, handle.ts, handle.roomID, handle.guestID, guestWords, false); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	room := fetchRoom(t, handle.ts, handle.roomID)
	round := room["rounds"].([]any)[0].(map[string]any)
	if round["status"] != roundStatusFinished {
		t.Fatalf("expected finished round, got %v", round["status"])
	}
	for _, raw := range round["answers"].([]any) {
		answer := raw.(map[string]any)
		if int(answer["player_id"].(float64)) == handle.hostID &&
			int(answer["category_id"].(float64)) == 1 {
			if !answer["needs_manual_validation"].(bool) {
				t.Fatal("expected the miss to be flagged for manual validation")
			}
			return handle, int(answer["id"].(float64))
		}
	}
	t.Fatal("contested answer not found")
	return nil, 0
}

func openVoteReq(t *testing.T, handle *testServerHandle, playerID, answerID int) *http.Response {
	t.Helper()
	return doRequest(t, handle.ts, http.MethodPost, "/api/rooms/"+handle.roomID+"/votes", map[string]int{
		"player_id": playerID,
		"answer_id": answerID,
	})
}

func castVoteReq(t *testing.T, handle *testServerHandle, playerID, answerID int, vote bool) *http.Response {
	t.Helper()
	return doRequest(t, handle.ts, http.MethodPost, "/api/rooms/"+handle.roomID+"/votes/cast", map[string]any{
		"player_id": playerID,
		"answer_id": answerID,
		"vote":      vote,
	})
}

func TestOpenVoteOncePerAnswer(t *testing.T) {
	handle, answerID := voteFixture(t)
	resp := openVoteReq(t, handle, handle.hostID, answerID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	resp = openVoteReq(t, handle, handle.guestID, answerID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second open must observe, got %d", resp.StatusCode)
	}
	if decodeBody(t, resp)["created"].(bool) {
		t.Fatal("second open must not create a new batch")
	}
}

func TestVoteUnanimousYesValidatesWord(t *testing.T) {
	handle, answerID := voteFixture(t)
	openVoteReq(t, handle, handle.hostID, answerID)

	if resp := castVoteReq(t, handle, handle.hostID, answerID, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp := castVoteReq(t, handle, handle.guestID, answerID, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	room := fetchRoom(t, handle.ts, handle.roomID)
	round := room["rounds"].([]any)[0].(map[string]any)
	for _, raw := range round["answers"].([]any) {
		answer := raw.(map[string]any)
		if int(answer["id"].(float64)) != answerID {
			continue
		}
		if !answer["is_valid"].(bool) {
			t.Fatal("unanimous yes must validate the word")
		}
		if int(answer["points"].(float64)) != 2 {
			t.Fatalf("expected 2 points, got %v", answer["points"])
		}
		if answer["manual_validation_result"] != true {
			t.Fatalf("expected recorded verdict, got %v", answer["manual_validation_result"])
		}
	}
	for _, raw := range round["scores"].([]any) {
		score := raw.(map[string]any)
		if int(score["player_id"].(float64)) == handle.hostID {
			if got := int(score["score"].(float64)); got != 4 {
				t.Fatalf("expected recomputed score 4, got %d", got)
			}
		}
	}
}

func TestVoteAnyNoKeepsWordInvalid(t *testing.T) {
	handle, answerID := voteFixture(t)
	openVoteReq(t, handle, handle.hostID, answerID)

	castVoteReq(t, handle, handle.hostID, answerID, true)
	castVoteReq(t, handle, handle.guestID, answerID, false)

	room := fetchRoom(t, handle.ts, handle.roomID)
	round := room["rounds"].([]any)[0].(map[string]any)
	for _, raw := range round["answers"].([]any) {
		answer := raw.(map[string]any)
		if int(answer["id"].(float64)) != answerID {
			continue
		}
		if answer["is_valid"].(bool) {
			t.Fatal("a single no vote must keep the word invalid")
		}
		if answer["manual_validation_result"] != false {
			t.Fatalf("expected recorded verdict, got %v", answer["manual_validation_result"])
		}
	}
}

func TestOpenVoteRejectsWrongLetterWord(t *testing.T) {
	handle := newEndGameFixture(t)
	letter := roundLetter(t, handle.ts, handle.roomID)
	wrong := "z"
	if letter == "Z" {
		wrong = "q"
	}

	hostWords := map[int]string{1: wrong + "on", 2: letter + "ville"}
	guestWords := map[int]string{1: letter + "on", 2: letter + "ville"}
	if resp := submitWords(t, handle.ts, handle.roomID, handle.hostID, hostWords, false); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp := submitWords(t, handle.ts, handle.roomID, handle.guestID, guestWords, false); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	room := fetchRoom(t, handle.ts, handle.roomID)
	round := room["rounds"].([]any)[0].(map[string]any)
	wrongID, validID := 0, 0
	for _, raw := range round["answers"].([]any) {
		answer := raw.(map[string]any)
		if int(answer["player_id"].(float64)) != handle.hostID {
			continue
		}
		switch int(answer["category_id"].(float64)) {
		case 1:
			if answer["needs_manual_validation"].(bool) {
				t.Fatal("a wrong-letter word must not be flagged for manual validation")
			}
			wrongID = int(answer["id"].(float64))
		case 2:
			validID = int(answer["id"].(float64))
		}
	}
	if wrongID == 0 || validID == 0 {
		t.Fatal("host answers not found")
	}

	for _, answerID := range []int{wrongID, validID} {
		resp := openVoteReq(t, handle, handle.guestID, answerID)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("answer %d: expected status %d, got %d", answerID, http.StatusUnprocessableEntity, resp.StatusCode)
		}
	}

	room = fetchRoom(t, handle.ts, handle.roomID)
	round = room["rounds"].([]any)[0].(map[string]any)
	for _, raw := range round["answers"].([]any) {
		answer := raw.(map[string]any)
		if int(answer["id"].(float64)) == wrongID && int(answer["points"].(float64)) != 0 {
			t.Fatalf("wrong-letter word must stay at 0 points, got %v", answer["points"])
		}
	}
}

func TestVoteCastOnce(t *testing.T) {
	handle, answerID := voteFixture(t)
	openVoteReq(t, handle, handle.hostID, answerID)

	if resp := castVoteReq(t, handle, handle.hostID, answerID, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp := castVoteReq(t, handle, handle.hostID, answerID, false); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestVoteWithoutOpenBatch(t *testing.T) {
	handle, answerID := voteFixture(t)
	if resp := castVoteReq(t, handle, handle.hostID, answerID, true); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestOpenVoteRequiresFinishedRound(t *testing.T) {
	handle := newEndGameFixture(t)
	resp := openVoteReq(t, handle, handle.hostID, 1)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, resp.StatusCode)
	}
}
