package namematch

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// levenshteinDistance computes the Levenshtein edit distance, case
// insensitive. It delegates to github.com/agnivade/levenshtein, which
// operates on runes and is safe for non-ASCII author names.
func levenshteinDistance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// ratio turns an edit distance into a [0,1] similarity score:
// 1 - edit_distance/max(len(a), len(b)). Two empty strings are a
// perfect (1.0) match; one empty and one non-empty is a total (0.0)
// mismatch.
func ratio(a, b string) float64 {
	maxLen := len([]rune(a))
	if bl := len([]rune(b)); bl > maxLen {
		maxLen = bl
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshteinDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
