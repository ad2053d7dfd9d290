package orcidimport

import (
	"testing"

	"github.com/adsabs/orcidclaims/internal/adsapi"
)

func TestSelectIdentifier_HighestScoreWins(t *testing.T) {
	order := IdentifierPriority{"bibcode": 10, "doi": 5, "*": 0}
	ids := []adsapi.Identifier{
		{Type: "doi", Value: "10.1/x"},
		{Type: "bibcode", Value: "2024ApJ...900....1A"},
		{Type: "arxiv", Value: "2401.00001"},
	}

	got, ok := SelectIdentifier(ids, order)
	if !ok || got.Type != "bibcode" {
		t.Fatalf("expected bibcode identifier, got %+v ok=%v", got, ok)
	}
}

func TestSelectIdentifier_TiesGoToFirstOccurrence(t *testing.T) {
	order := IdentifierPriority{"*": 1}
	ids := []adsapi.Identifier{
		{Type: "doi", Value: "first"},
		{Type: "arxiv", Value: "second"},
	}

	got, ok := SelectIdentifier(ids, order)
	if !ok || got.Value != "first" {
		t.Fatalf("expected first identifier on tie, got %+v", got)
	}
}

func TestSelectIdentifier_Empty(t *testing.T) {
	if _, ok := SelectIdentifier(nil, IdentifierPriority{}); ok {
		t.Fatal("expected ok=false for no identifiers")
	}
}
