package namematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Transliterate deterministically maps s to an ASCII approximation: NFKD
// decomposition pulls accents and other combining marks off their base
// letters, then those marks are dropped, leaving the closest plain-ASCII
// spelling. Characters with no compatible decomposition (e.g. "ı", "ß")
// fall back to a small manual table; anything still non-ASCII afterward is
// dropped rather than left in place, so the result is always pure ASCII.
func Transliterate(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	decomposed := norm.NFKD.String(s)
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark, drop it
		}
		if r < unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		if repl, ok := asciiFallback[r]; ok {
			b.WriteString(repl)
		}
		// else: no known ASCII approximation, drop the rune
	}
	return b.String()
}

// asciiFallback covers letters whose NFKD decomposition doesn't already
// reduce to ASCII (Turkish dotless/dotted I, German sharp S, and a handful
// of Scandinavian/Polish letters commonly seen in author names).
var asciiFallback = map[rune]string{
	'ı': "i",
	'İ': "I",
	'ß': "ss",
	'ø': "o",
	'Ø': "O",
	'ł': "l",
	'Ł': "L",
	'đ': "d",
	'Đ': "D",
	'æ': "ae",
	'Æ': "AE",
	'œ': "oe",
	'Œ': "OE",
}
