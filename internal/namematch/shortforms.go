package namematch

import "strings"

// BuildShortForms produces the set of abbreviated forms of a "Surname,
// given1 given2 ..." name that are plausible to see asserted elsewhere
// (e.g. "Smith, John Robert" -> "Smith, J Robert", "Smith, John R",
// "Smith, J R"). Returns an empty slice if name carries no comma, or if
// the given-name portion is already a single initial.
//
// The returned forms always begin with "Surname,": callers rely on this
// to validate the function stays closed under its own output.
func BuildShortForms(name string) []string {
	idx := strings.Index(name, ",")
	if idx < 0 {
		return nil
	}
	surname := name[:idx]
	rest := strings.TrimSpace(name[idx+1:])
	given := strings.Fields(rest)
	if len(given) == 0 {
		return nil
	}
	if len(given) == 1 && isSingleInitial(given[0]) {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(parts []string) {
		form := surname + ", " + strings.Join(parts, " ")
		if !seen[form] {
			seen[form] = true
			out = append(out, form)
		}
	}

	// Every form obtained by replacing exactly one given name with its
	// initial, keeping the rest unchanged.
	for i := range given {
		if isSingleInitial(given[i]) {
			continue
		}
		parts := make([]string, len(given))
		copy(parts, given)
		parts[i] = initialOf(given[i])
		add(parts)
	}

	// Every truncation of the all-initials form, from all n initials down
	// to just the first.
	initials := make([]string, len(given))
	for i, g := range given {
		initials[i] = initialOf(g)
	}
	for n := len(initials); n >= 1; n-- {
		add(initials[:n])
	}

	return out
}

func isSingleInitial(s string) bool {
	s = strings.TrimSuffix(s, ".")
	return len(s) == 1
}

func initialOf(s string) string {
	r := []rune(strings.TrimSuffix(s, "."))
	if len(r) == 0 {
		return ""
	}
	return string(r[0])
}
