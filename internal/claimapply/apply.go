// Package claimapply rebuilds a Record's per-author claim arrays from a
// single incoming claim. Like namematch, it is pure and local: it never
// performs I/O and never raises for a normal refusal — it returns a nil
// *Result.
package claimapply

import (
	"log"

	"github.com/adsabs/orcidclaims/internal/namematch"
	"github.com/adsabs/orcidclaims/internal/types"
)

// Claim is the enriched payload the match-claim pipeline stage hands to
// Apply: the bare ClaimLogEntry plus the author facts/status needed to
// run the Name Matcher and decide verified-vs-unverified.
type Claim struct {
	OrcidID      string
	Status       types.ClaimStatus
	AccountID    *int64 // non-nil => write to the verified array
	AuthorStatus types.ProfileStatus
	Variants     types.Facts
}

// Result names where a claim landed (or "removed" if it was scrubbed with
// no reinsertion).
type Result struct {
	Field types.ClaimFieldName
	Index int
}

// Apply mutates record in place following the claim application contract
// and reports where (if anywhere) the claim ended up.
func Apply(record *types.Record, claim Claim, minRatio float64) *Result {
	field := types.ClaimFieldUnverified
	if claim.AccountID != nil {
		field = types.ClaimFieldVerified
	}

	n := len(record.Authors)
	record.Claims.Verified = resize(record.Claims.Verified, n)
	record.Claims.Unverified = resize(record.Claims.Unverified, n)

	scrubbedVerified := scrub(record.Claims.Verified, claim.OrcidID)
	scrubbedUnverified := scrub(record.Claims.Unverified, claim.OrcidID)
	scrubbed := scrubbedVerified || scrubbedUnverified

	if claim.AuthorStatus == types.StatusBlacklisted {
		if scrubbed {
			return &Result{Field: types.ClaimFieldRemoved, Index: -1}
		}
		return nil
	}

	idx := namematch.FindAuthorIndex(record.Authors, claim.Variants, minRatio)
	if idx >= n {
		// Defensive: the matcher is pure and should never return an
		// out-of-range index, but a corrupt author list could make n
		// shrink out from under a stale index. Treat as no-match rather
		// than writing past the array.
		log.Printf("claimapply: match index %d out of range for %d authors (bibcode=%s orcidid=%s)", idx, n, record.Bibcode, claim.OrcidID)
		idx = namematch.NotFound
	}

	if idx != namematch.NotFound {
		arr := record.Claims.Get(field)
		if claim.Status == types.ClaimRemoved {
			arr[idx] = types.EmptySlot
		} else {
			arr[idx] = claim.OrcidID
		}
		record.Claims.Set(field, arr)
		return &Result{Field: field, Index: idx}
	}

	if scrubbed {
		return &Result{Field: types.ClaimFieldRemoved, Index: -1}
	}
	return nil
}

// resize pads or truncates arr to length n, filling new slots with
// types.EmptySlot.
func resize(arr []string, n int) []string {
	if len(arr) == n {
		return arr
	}
	out := make([]string, n)
	for i := range out {
		if i < len(arr) {
			out[i] = arr[i]
		} else {
			out[i] = types.EmptySlot
		}
	}
	return out
}

// scrub replaces every occurrence of orcidid in arr with the empty slot
// and reports whether any replacement happened.
func scrub(arr []string, orcidid string) bool {
	found := false
	for i, v := range arr {
		if v == orcidid {
			arr[i] = types.EmptySlot
			found = true
		}
	}
	return found
}
