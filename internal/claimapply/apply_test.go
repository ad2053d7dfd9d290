package claimapply

import (
	"testing"

	"github.com/adsabs/orcidclaims/internal/types"
)

func freshRecord(authors []string) *types.Record {
	n := len(authors)
	verified := make([]string, n)
	unverified := make([]string, n)
	for i := range verified {
		verified[i] = types.EmptySlot
		unverified[i] = types.EmptySlot
	}
	return &types.Record{
		Bibcode: "2024ApJ...900....1A",
		Authors: authors,
		Claims:  types.ClaimArrays{Verified: verified, Unverified: unverified},
	}
}

func s1Authors() []string {
	return []string{
		"Li, Zhongkui", "Xia, Liqun", "Lee, Leo M.", "Khaletskiy, Alexander",
		"Wang, J.", "Wong, J. Y.", "Li, Jian-Jian",
	}
}

func s1Claim() Claim {
	acct := int64(42)
	return Claim{
		OrcidID:   "0000-0001-2345-6789",
		Status:    types.ClaimClaimed,
		AccountID: &acct,
		Variants: types.Facts{
			types.FactOrcidName: {"Wong, Jeffrey Yang"},
			types.FactAuthor:    {"Wong, J Y"},
		},
	}
}

func TestApply_S1_VerifiedExactMatch(t *testing.T) {
	rec := freshRecord(s1Authors())
	res := Apply(rec, s1Claim(), 0.8)

	if res == nil || res.Field != types.ClaimFieldVerified || res.Index != 5 {
		t.Fatalf("expected (verified, 5), got %+v", res)
	}
	if rec.Claims.Verified[5] != "0000-0001-2345-6789" {
		t.Fatalf("verified array not written: %v", rec.Claims.Verified)
	}
	for i, v := range rec.Claims.Unverified {
		if v != types.EmptySlot {
			t.Fatalf("unverified[%d] unexpectedly written: %q", i, v)
		}
	}
}

func TestApply_S2_RemovalRoundTrip(t *testing.T) {
	rec := freshRecord(s1Authors())
	claim := s1Claim()

	first := Apply(rec, claim, 0.8)
	if first == nil || first.Index != 5 {
		t.Fatalf("setup claim failed: %+v", first)
	}

	removal := claim
	removal.Status = types.ClaimRemoved
	res := Apply(rec, removal, 0.8)

	if res == nil || res.Field != types.ClaimFieldVerified || res.Index != 5 {
		t.Fatalf("expected (verified, 5) on removal pass, got %+v", res)
	}
	for i, v := range rec.Claims.Verified {
		if v != types.EmptySlot {
			t.Fatalf("verified array not restored to empty at %d: %q", i, v)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	rec := freshRecord(s1Authors())
	claim := s1Claim()

	Apply(rec, claim, 0.8)
	first := append([]string(nil), rec.Claims.Verified...)

	Apply(rec, claim, 0.8)
	second := rec.Claims.Verified

	if len(first) != len(second) {
		t.Fatalf("array length changed across repeated apply")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated apply changed verified[%d]: %q -> %q", i, first[i], second[i])
		}
	}
}

func TestApply_ArrayLengthInvariant(t *testing.T) {
	authors := s1Authors()
	rec := freshRecord(authors)
	// Simulate a record whose author list grew since the claim arrays were
	// last sized.
	rec.Authors = append(rec.Authors, "Extra, Author")

	Apply(rec, s1Claim(), 0.8)

	if len(rec.Claims.Verified) != len(rec.Authors) {
		t.Fatalf("verified array length %d != authors length %d", len(rec.Claims.Verified), len(rec.Authors))
	}
	if len(rec.Claims.Unverified) != len(rec.Authors) {
		t.Fatalf("unverified array length %d != authors length %d", len(rec.Claims.Unverified), len(rec.Authors))
	}
}

func TestApply_UnverifiedWhenNoAccountID(t *testing.T) {
	rec := freshRecord(s1Authors())
	claim := s1Claim()
	claim.AccountID = nil

	res := Apply(rec, claim, 0.8)
	if res == nil || res.Field != types.ClaimFieldUnverified || res.Index != 5 {
		t.Fatalf("expected (unverified, 5), got %+v", res)
	}
	if rec.Claims.Unverified[5] != claim.OrcidID {
		t.Fatalf("unverified array not written: %v", rec.Claims.Unverified)
	}
}

func TestApply_Blacklisted_NoPriorClaim_Refused(t *testing.T) {
	rec := freshRecord(s1Authors())
	claim := s1Claim()
	claim.AuthorStatus = types.StatusBlacklisted

	res := Apply(rec, claim, 0.8)
	if res != nil {
		t.Fatalf("expected nil refusal, got %+v", res)
	}
	for i, v := range rec.Claims.Verified {
		if v != types.EmptySlot {
			t.Fatalf("verified[%d] unexpectedly written: %q", i, v)
		}
	}
}

func TestApply_Blacklisted_ScrubsExistingClaim(t *testing.T) {
	rec := freshRecord(s1Authors())
	claim := s1Claim()

	Apply(rec, claim, 0.8)

	claim.AuthorStatus = types.StatusBlacklisted
	res := Apply(rec, claim, 0.8)

	if res == nil || res.Field != types.ClaimFieldRemoved || res.Index != -1 {
		t.Fatalf("expected (removed, -1), got %+v", res)
	}
	for i, v := range rec.Claims.Verified {
		if v != types.EmptySlot {
			t.Fatalf("verified[%d] not scrubbed: %q", i, v)
		}
	}
}

func TestApply_NoMatchNoScrub_Refused(t *testing.T) {
	rec := freshRecord([]string{"Nobody, Here"})
	claim := s1Claim()

	res := Apply(rec, claim, 0.95)
	if res != nil {
		t.Fatalf("expected nil refusal, got %+v", res)
	}
}

func TestApply_NoMatchButScrubbed_ReturnsRemoved(t *testing.T) {
	rec := freshRecord([]string{"Nobody, Here"})
	rec.Claims.Verified[0] = "0000-0001-2345-6789"

	claim := s1Claim()
	claim.Variants = types.Facts{} // force no match

	res := Apply(rec, claim, 0.95)
	if res == nil || res.Field != types.ClaimFieldRemoved || res.Index != -1 {
		t.Fatalf("expected (removed, -1), got %+v", res)
	}
	if rec.Claims.Verified[0] != types.EmptySlot {
		t.Fatalf("expected scrub, got %q", rec.Claims.Verified[0])
	}
}
