package namematch

import (
	"strings"
	"testing"
)

func TestBuildShortForms_NoComma(t *testing.T) {
	if got := BuildShortForms("Wong Jeffrey"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestBuildShortForms_SingleInitialAlready(t *testing.T) {
	if got := BuildShortForms("Wong, J"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := BuildShortForms("Wong, J."); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestBuildShortForms_ClosedUnderSurname(t *testing.T) {
	forms := BuildShortForms("Wong, Jeffrey Yang")
	if len(forms) == 0 {
		t.Fatal("expected at least one short form")
	}
	for _, f := range forms {
		if !strings.HasPrefix(f, "Wong,") {
			t.Errorf("form %q does not begin with surname comma", f)
		}
	}
}

func TestBuildShortForms_Contents(t *testing.T) {
	forms := BuildShortForms("Wong, Jeffrey Yang")
	set := make(map[string]bool)
	for _, f := range forms {
		set[f] = true
	}

	// Single-substitution forms.
	for _, want := range []string{"Wong, J Yang", "Wong, Jeffrey Y"} {
		if !set[want] {
			t.Errorf("missing expected form %q in %v", want, forms)
		}
	}
	// All-initials truncations.
	for _, want := range []string{"Wong, J Y", "Wong, J"} {
		if !set[want] {
			t.Errorf("missing expected truncation %q in %v", want, forms)
		}
	}
}

func TestBuildShortForms_Dedup(t *testing.T) {
	forms := BuildShortForms("Wong, Jeffrey Yang")
	seen := make(map[string]bool)
	for _, f := range forms {
		if seen[f] {
			t.Fatalf("duplicate form %q", f)
		}
		seen[f] = true
	}
}
