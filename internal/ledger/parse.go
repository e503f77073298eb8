package ledger

import (
	"strconv"
	"strings"
)

// ParseScore accepts an integer in 0..=100. Anything else, including
// out-of-range numbers, means "not recorded"; it is never clamped.
func ParseScore(input string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || !validScore(n) {
		return nil
	}
	return &n
}

// ParseHit accepts y/yes and n/no in any case. Anything else is unrecorded.
func ParseHit(input string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		v = true
	case "n", "no":
		v = false
	default:
		return nil
	}
	return &v
}

// ParseNotes trims input; blank means unrecorded.
func ParseNotes(input string) *string {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}
	return &s
}
