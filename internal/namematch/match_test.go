package namematch

import (
	"testing"

	"github.com/adsabs/orcidclaims/internal/types"
)

func TestFindAuthorIndex_S1_ExactShortNameMatch(t *testing.T) {
	authors := []string{
		"Li, Zhongkui", "Xia, Liqun", "Lee, Leo M.", "Khaletskiy, Alexander",
		"Wang, J.", "Wong, J. Y.", "Li, Jian-Jian",
	}
	variants := types.Facts{
		types.FactOrcidName: {"Wong, Jeffrey Yang"},
		types.FactAuthor:    {"Wong, J Y"},
		types.FactShortName: BuildShortForms("Wong, Jeffrey Yang"),
	}

	idx := FindAuthorIndex(authors, variants, 0.8)
	if idx != 5 {
		t.Fatalf("expected index 5, got %d", idx)
	}
}

func TestFindAuthorIndex_S3_LevenshteinFallback(t *testing.T) {
	authors := make([]string, 14)
	for i := range authors {
		authors[i] = "Filler, Author"
	}
	authors[13] = "Zhang, William W."

	variants := types.Facts{
		types.FactAuthor: {"Zhang, Will"},
	}

	idx := FindAuthorIndex(authors, variants, 0.75)
	if idx != 13 {
		t.Fatalf("expected index 13, got %d", idx)
	}
}

func TestFindAuthorIndex_S4_TransliterationFallback(t *testing.T) {
	authors := make([]string, 14)
	for i := range authors {
		authors[i] = "Filler, Author"
	}
	authors[13] = "Yıldız, Umut"

	variants := types.Facts{
		types.FactAuthor: {"Yildiz, Umut"},
	}

	idx := FindAuthorIndex(authors, variants, 0.9)
	if idx != 13 {
		t.Fatalf("expected index 13, got %d", idx)
	}
}

func TestFindAuthorIndex_EmptyVariantsNeverMatch(t *testing.T) {
	authors := []string{"Smith, John"}
	variants := types.Facts{
		types.FactAuthor: {""},
	}
	if idx := FindAuthorIndex(authors, variants, 0.5); idx != NotFound {
		t.Fatalf("expected NotFound, got %d", idx)
	}
}

func TestFindAuthorIndex_NoVariantsAtAll(t *testing.T) {
	authors := []string{"Smith, John"}
	if idx := FindAuthorIndex(authors, types.Facts{}, 0.5); idx != NotFound {
		t.Fatalf("expected NotFound, got %d", idx)
	}
}

func TestFindAuthorIndex_FirstFieldWins(t *testing.T) {
	// No variant matches an author exactly, so the fuzzy pass decides.
	// "author" field (first in FactFieldOrder) yields a weak ratio that
	// still clears minRatio (1-2/13); a later field would have scored
	// higher (1-1/13) but must never be consulted once "author" produces a
	// hit.
	authors := []string{"Aardvark, Zzz", "Smith, John Q"}
	variants := types.Facts{
		types.FactAuthor:    {"Aardvark, Z"},
		types.FactAsciiName: {"Smith, Jon Q"},
	}

	idx := FindAuthorIndex(authors, variants, 0.7)
	if idx != 0 {
		t.Fatalf("expected first-field-wins index 0, got %d", idx)
	}
}

func TestRatio(t *testing.T) {
	if r := ratio("", ""); r != 1.0 {
		t.Fatalf("expected 1.0 for two empty strings, got %v", r)
	}
	if r := ratio("abc", ""); r != 0.0 {
		t.Fatalf("expected 0.0, got %v", r)
	}
	if r := ratio("kitten", "sitting"); r <= 0 || r >= 1 {
		t.Fatalf("expected ratio strictly between 0 and 1, got %v", r)
	}
}

func TestLevenshteinDistance_MatchesHandRolledFallback(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"Zhang, William", "Zhang, Will"},
		{"", "abc"},
		{"abc", ""},
		{"Wong, J Y", "Wong, Jeffrey Yang"},
	}
	for _, p := range pairs {
		got := levenshteinDistance(p[0], p[1])
		want := levenshteinDistanceDP(p[0], p[1])
		if got != want {
			t.Errorf("distance(%q,%q) = %d, fallback DP = %d", p[0], p[1], got, want)
		}
	}
}

func TestCleanupName(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"   ":              "",
		"Wong, J. Y.":      "Wong, J Y",
		"  Wong,   J  Y  ": "Wong, J Y",
	}
	for in, want := range cases {
		if got := CleanupName(in); got != want {
			t.Errorf("CleanupName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTransliterate(t *testing.T) {
	if got := Transliterate("Yıldız"); got != "Yildiz" {
		t.Errorf("Transliterate(Yıldız) = %q, want Yildiz", got)
	}
	if got := Transliterate("Müller"); got != "Muller" {
		t.Errorf("Transliterate(Müller) = %q, want Muller", got)
	}
}
