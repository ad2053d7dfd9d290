package namematch

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SuggestVariants is a diagnostics helper, separate from FindAuthorIndex
// and not called by any command in this module: when
// a claim was refused, it lists which of a record's authors come
// "fuzzy-close" to one of the claimant's variants, to help an operator
// see why the precise matcher passed over them. Results are capped at 5
// and sorted for deterministic output.
func SuggestVariants(recordAuthors []string, variant string) []string {
	cleanedVariant := CleanupName(variant)
	if cleanedVariant == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, author := range recordAuthors {
		cleaned := CleanupName(author)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		if fuzzy.MatchFold(cleanedVariant, cleaned) {
			seen[cleaned] = true
			out = append(out, cleaned)
		}
	}

	sort.Strings(out)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
