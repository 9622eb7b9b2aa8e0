package course

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const suggestionMinRatio = 0.7

// SuggestGradeToken returns the non-numeric grade closest to a mistyped grade.
// Nothing is suggested for valid, numeric or unset grades.
func SuggestGradeToken(grade Grade) (string, bool) {
	if grade.IsUnset() || grade.IsToken() {
		return "", false
	}
	if _, ok := grade.Numeric(); ok {
		return "", false
	}

	typed := strings.Split(strings.TrimSpace(string(grade)), "")
	var (
		best      string
		bestRatio float64
	)
	for _, tok := range GradeTokens {
		ratio := difflib.NewMatcher(typed, strings.Split(tok, "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = tok, ratio
		}
	}
	if bestRatio < suggestionMinRatio {
		return "", false
	}
	return best, true
}
