package orcidimport

import (
	"testing"
	"time"
)

func TestComputeDiff_ClaimedAndRemoved(t *testing.T) {
	present := map[string]PresentEntry{
		"2024ApJ...900....1A": {Bibcode: "2024ApJ...900....1A"},
	}
	adsHas := map[string]AdsClaim{
		"2024ApJ...900....2B": {Bibcode: "2024ApJ...900....2B"},
	}

	claimed, removed, updated, forced, unchanged := ComputeDiff(present, adsHas, false, 0)
	if len(claimed) != 1 || claimed[0] != "2024ApJ...900....1A" {
		t.Fatalf("expected claimed=[1A], got %v", claimed)
	}
	if len(removed) != 1 || removed[0] != "2024ApJ...900....2B" {
		t.Fatalf("expected removed=[2B], got %v", removed)
	}
	if len(updated) != 0 || len(forced) != 0 || len(unchanged) != 0 {
		t.Fatalf("expected no intersection entries, got updated=%v forced=%v unchanged=%v", updated, forced, unchanged)
	}
}

func TestComputeDiff_IntersectionUpdated(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	present := map[string]PresentEntry{
		"2024ApJ...900....1A": {Bibcode: "2024ApJ...900....1A", Modified: now},
	}
	adsHas := map[string]AdsClaim{
		"2024ApJ...900....1A": {Bibcode: "2024ApJ...900....1A", Created: now.Add(-5 * time.Minute)},
	}

	claimed, removed, updated, forced, unchanged := ComputeDiff(present, adsHas, false, DefaultUpdateWindow)
	if len(claimed) != 0 || len(removed) != 0 {
		t.Fatalf("expected no add/remove, got claimed=%v removed=%v", claimed, removed)
	}
	if len(updated) != 1 || len(forced) != 0 || len(unchanged) != 0 {
		t.Fatalf("expected updated=[1A], got updated=%v forced=%v unchanged=%v", updated, forced, unchanged)
	}
}

func TestComputeDiff_IntersectionUnchangedThenForced(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	present := map[string]PresentEntry{
		"2024ApJ...900....1A": {Bibcode: "2024ApJ...900....1A", Modified: now},
	}
	adsHas := map[string]AdsClaim{
		"2024ApJ...900....1A": {Bibcode: "2024ApJ...900....1A", Created: now.Add(-5 * time.Second)},
	}

	_, _, updated, forced, unchanged := ComputeDiff(present, adsHas, false, DefaultUpdateWindow)
	if len(updated) != 0 || len(forced) != 0 || len(unchanged) != 1 {
		t.Fatalf("expected unchanged=[1A], got updated=%v forced=%v unchanged=%v", updated, forced, unchanged)
	}

	_, _, updated, forced, unchanged = ComputeDiff(present, adsHas, true, DefaultUpdateWindow)
	if len(updated) != 0 || len(forced) != 1 || len(unchanged) != 0 {
		t.Fatalf("expected forced=[1A] with force=true, got updated=%v forced=%v unchanged=%v", updated, forced, unchanged)
	}
}
