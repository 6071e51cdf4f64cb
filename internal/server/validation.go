package server

import (
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength = 24
	maxWordLength = 48
)

func validateName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", false
	}
	return trimmed, true
}

func validateWord(word string) (string, bool) {
	trimmed := strings.TrimSpace(word)
	if utf8.RuneCountInString(trimmed) > maxWordLength {
		return "", false
	}
	return trimmed, true
}

func validateDraft(answers []DraftAnswer) ([]DraftAnswer, bool) {
	clean := make([]DraftAnswer, 0, len(answers))
	for _, answer := range answers {
		if answer.CategoryID <= 0 {
			return nil, false
		}
		word, ok := validateWord(answer.Word)
		if !ok {
			return nil, false
		}
		clean = append(clean, DraftAnswer{CategoryID: answer.CategoryID, Word: word})
	}
	return clean, true
}
