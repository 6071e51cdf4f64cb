package server

import "testing"

func TestNextLetterNeverRepeatsWithinCycle(t *testing.T) {
	used := make(map[string]struct{})
	seen := make(map[string]bool)
	for i := 0; i < 26; i++ {
		letter := nextLetter(used)
		if seen[letter] {
			t.Fatalf("letter %s repeated before the pool was exhausted", letter)
		}
		seen[letter] = true
	}
	if len(seen) != 26 {
		t.Fatalf("expected 26 distinct letters, got %d", len(seen))
	}
}

func TestNextLetterResetsAfterExhaustion(t *testing.T) {
	used := make(map[string]struct{})
	for i := 0; i < 26; i++ {
		nextLetter(used)
	}
	letter := nextLetter(used)
	if letter == "" {
		t.Fatal("expected a letter after reset")
	}
	if len(used) != 1 {
		t.Fatalf("expected pool reset to a single used letter, got %d", len(used))
	}
}

func TestNextLetterMarksUsed(t *testing.T) {
	used := make(map[string]struct{})
	letter := nextLetter(used)
	if _, ok := used[letter]; !ok {
		t.Fatalf("letter %s not recorded as used", letter)
	}
}
