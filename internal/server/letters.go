package server

import "math/rand/v2"

const letterAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// nextLetter draws a letter not yet used in this room and records it in used.
// Once all 26 letters are spent the pool resets first, so the rotation always
// makes progress at the cost of one eventual repeat per full cycle.
func nextLetter(used map[string]struct{}) string {
	if len(used) >= len(letterAlphabet) {
		for letter := range used {
			delete(used, letter)
		}
	}
	unused := make([]string, 0, len(letterAlphabet)-len(used))
	for _, r := range letterAlphabet {
		letter := string(r)
		if _, taken := used[letter]; !taken {
			unused = append(unused, letter)
		}
	}
	letter := unused[rand.IntN(len(unused))]
	used[letter] = struct{}{}
	return letter
}
