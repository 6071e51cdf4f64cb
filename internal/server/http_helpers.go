package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the engine's sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errRoomNotFound), errors.Is(err, errPlayerNotFound), errors.Is(err, errAnswerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errRoomNotJoinable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errRoundAlreadySubmitted), errors.Is(err, errAlreadyVoted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errRoundNotStarted), errors.Is(err, errRoundStillPlaying), errors.Is(err, errAnswerNotContestable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
