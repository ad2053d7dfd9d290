package orcidimport

import "github.com/adsabs/orcidclaims/internal/adsapi"

// IdentifierPriority maps an identifier scheme name (e.g. "doi", "bibcode")
// to a priority score. The key "*" supplies the default score for any
// scheme not listed explicitly.
type IdentifierPriority map[string]int

func (p IdentifierPriority) scoreOf(scheme string) int {
	if s, ok := p[scheme]; ok {
		return s
	}
	return p["*"]
}

// SelectIdentifier picks the single identifier with the highest priority
// score, breaking ties by first occurrence in identifiers.
func SelectIdentifier(identifiers []adsapi.Identifier, order IdentifierPriority) (adsapi.Identifier, bool) {
	if len(identifiers) == 0 {
		return adsapi.Identifier{}, false
	}

	best := identifiers[0]
	bestScore := order.scoreOf(best.Type)
	for _, id := range identifiers[1:] {
		score := order.scoreOf(id.Type)
		if score > bestScore {
			best = id
			bestScore = score
		}
	}
	return best, true
}
