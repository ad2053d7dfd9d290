// Package namematch locates the author within a record's author list that
// a claimant's ORCID facts refer to: an exact pass first, then a
// Levenshtein fuzzy pass with ASCII-transliteration fallback. It is pure
// and side-effect free — no I/O, never raises; refusal is NotFound (-1).
package namematch

import (
	"strings"

	"github.com/adsabs/orcidclaims/internal/types"
)

// NotFound is returned when no author position matches.
const NotFound = -1

// FindAuthorIndex returns the index within recordAuthors that the
// claimant's name variants refer to, or NotFound.
//
// Strategy, in order:
//  1. Exact pass over the union of cleaned, lower-cased variants across
//     all fact fields; ties go to the first author position. Authors are
//     also tried transliterated.
//  2. Fuzzy pass, one fact field at a time in types.FactFieldOrder: the
//     first field whose best-ratio match clears minRatio (or whose
//     top-ranked pair is a substring of one another) wins.
func FindAuthorIndex(recordAuthors []string, claimantVariants types.Facts, minRatio float64) int {
	if idx := exactPass(recordAuthors, claimantVariants); idx != NotFound {
		return idx
	}
	return fuzzyPass(recordAuthors, claimantVariants, minRatio)
}

// exactPass builds the set of cleaned, lower-cased variants from every
// fact field (blanks skipped) and scans recordAuthors in order, testing
// both the author's cleaned form and its transliterated form.
func exactPass(recordAuthors []string, variants types.Facts) int {
	set := make(map[string]bool)
	for _, field := range types.FactFieldOrder {
		for _, v := range variants[field] {
			cleaned := strings.ToLower(CleanupName(v))
			if cleaned == "" {
				continue
			}
			set[cleaned] = true
		}
	}
	if len(set) == 0 {
		return NotFound
	}

	for i, author := range recordAuthors {
		cleaned := strings.ToLower(CleanupName(author))
		if cleaned != "" && set[cleaned] {
			return i
		}
	}
	for i, author := range recordAuthors {
		translit := strings.ToLower(CleanupName(Transliterate(author)))
		if translit != "" && set[translit] {
			return i
		}
	}
	return NotFound
}

// candidate is the best (author, variant) pairing found for one fact
// field.
type candidate struct {
	ratio       float64
	authorIndex int
	variantText string // cleaned author text actually scored (original or transliterated)
}

// fuzzyPass walks fact fields in their canonical order and returns on the
// first field that yields a hit (first-field-wins).
func fuzzyPass(recordAuthors []string, variants types.Facts, minRatio float64) int {
	for _, field := range types.FactFieldOrder {
		fieldVariants := variants[field]
		if len(fieldVariants) == 0 {
			continue
		}

		best, bestVariant, ok := bestInField(recordAuthors, fieldVariants)
		if !ok {
			continue
		}

		if best.ratio >= minRatio {
			return best.authorIndex
		}

		// Substring sub-match fallback: the cleaned top-ranked author is
		// a substring of the corresponding variant, or vice versa.
		a := strings.ToLower(CleanupName(best.variantText))
		v := strings.ToLower(CleanupName(bestVariant))
		if a != "" && v != "" && (strings.Contains(v, a) || strings.Contains(a, v)) {
			return best.authorIndex
		}
	}
	return NotFound
}

// bestInField scores every (author, variant) pair within one fact field
// and returns the maximum-ratio triple, preferring the transliterated
// author form whenever it scores strictly higher than the original.
func bestInField(recordAuthors []string, fieldVariants []string) (candidate, string, bool) {
	best := candidate{ratio: -1, authorIndex: NotFound}
	bestVariant := ""
	found := false

	for vi, variant := range fieldVariants {
		cleanedVariant := CleanupName(variant)
		if cleanedVariant == "" {
			continue
		}
		for ai, author := range recordAuthors {
			cleanedAuthor := CleanupName(author)
			if cleanedAuthor == "" {
				continue
			}

			r := ratio(cleanedAuthor, cleanedVariant)
			text := cleanedAuthor

			translit := CleanupName(Transliterate(author))
			if translit != "" {
				if tr := ratio(translit, cleanedVariant); tr > r {
					r = tr
					text = translit
				}
			}

			if r > best.ratio {
				found = true
				best = candidate{ratio: r, authorIndex: ai, variantText: text}
				bestVariant = cleanedVariant
				_ = vi
			}
		}
	}

	return best, bestVariant, found
}
