package server

import (
	"strings"
)

// DictionaryCheck reports whether a word exists for a category. Errors mean
// the dictionary could not answer, not that the word is wrong.
type DictionaryCheck func(word string, categoryID int) (bool, error)

type WordScore struct {
	IsValid               bool
	Points                int
	NeedsManualValidation bool
}

// scoreWord is the per-word scoring rule. It fails closed: an empty word or a
// word that does not start with the round letter scores zero with no recourse.
// A dictionary miss or a dictionary failure keeps the word invalid but flags
// it for manual validation, so players have recourse against an incomplete
// dictionary.
func scoreWord(word, letter string, categoryID int, pointsPerWord int, check DictionaryCheck) WordScore {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return WordScore{}
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(letter)) {
		return WordScore{}
	}
	valid, err := check(trimmed, categoryID)
	if err != nil || !valid {
		return WordScore{NeedsManualValidation: true}
	}
	return WordScore{IsValid: true, Points: pointsPerWord}
}

// tallyRound sums a player's answers for one round and applies the early-stop
// penalty: stopping voluntarily with every category filled but at least one
// invalid word costs a flat penalty, floored at zero. Rounds ended by the
// timer or by a mutually accepted end-game request pass stoppedEarly=false
// and are never penalized.
func tallyRound(answers []AnswerEntry, stoppedEarly bool, penalty int) (int, int, bool) {
	raw := 0
	validCount := 0
	allFilled := len(answers) > 0
	hasInvalid := false
	for _, answer := range answers {
		raw += answer.Points
		if answer.IsValid {
			validCount++
		} else {
			hasInvalid = true
		}
		if strings.TrimSpace(answer.Word) == "" {
			allFilled = false
		}
	}
	if stoppedEarly && allFilled && hasInvalid {
		score := raw - penalty
		if score < 0 {
			score = 0
		}
		return score, validCount, true
	}
	return raw, validCount, false
}
