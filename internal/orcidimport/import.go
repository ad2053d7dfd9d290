// Package orcidimport implements the ORCID importer: it fetches a
// fresh ORCID profile, resolves each work to a canonical bibcode, and
// reports the raw state needed for the caller to compute a claimed/
// updated/removed/unchanged diff against what is already stored.
package orcidimport

import (
	"context"
	"time"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/types"
)

// PresentEntry is one bibcode the ORCID profile currently asserts
// authorship of.
type PresentEntry struct {
	Bibcode     string
	Modified    time.Time
	Provenance  string
	Identifiers []adsapi.Identifier
	Authors     []string
}

// AdsClaim is the most recent stored claim-log state for a bibcode, used
// by the diff to compare against what ORCID currently asserts.
type AdsClaim struct {
	Bibcode string
	Status  types.ClaimStatus
	Created time.Time
}

// Dependencies bundles the external collaborators GetClaims needs.
type Dependencies struct {
	Profiles adsapi.ProfileSource
	Metadata adsapi.MetadataLookup
	Store    orcidstore.Store
}

// GetClaims is the importer's entry point. It returns the profile's current
// bibcode-keyed assertions (orcidPresent) plus the claim-log's prior
// non-removed state (updatedAds) and removed state (removedAds) since the
// last full import, so the caller can compute the claimed/updated/
// removed/unchanged diff described in the design notes.
//
// If a #full-import sentinel already covers the profile's last-modified
// time and force is false, all three maps come back empty and no further
// work happens (step 5's short-circuit).
func GetClaims(ctx context.Context, deps Dependencies, orcidID, token, profileURL string, force bool, order IdentifierPriority) (
	orcidPresent map[string]PresentEntry,
	updatedAds map[string]AdsClaim,
	removedAds map[string]AdsClaim,
	err error,
) {
	profile, err := deps.Profiles.FetchProfile(ctx, orcidID, token, profileURL)
	if err != nil {
		return nil, nil, nil, err
	}

	latest, err := deps.Store.LatestFullImport(ctx, orcidID)
	if err != nil {
		return nil, nil, nil, err
	}

	if !force && latest != nil && !latest.Created.Before(profile.Modified) {
		return map[string]PresentEntry{}, map[string]AdsClaim{}, map[string]AdsClaim{}, nil
	}

	orcidPresent = make(map[string]PresentEntry)
	for _, work := range profile.Works {
		identifier, ok := SelectIdentifier(work.Identifiers, order)
		if !ok {
			continue
		}
		meta, err := deps.Metadata.LookupByIdentifier(ctx, identifier.Type, identifier.Value)
		if err != nil {
			return nil, nil, nil, err
		}
		if meta == nil {
			continue // no known record resolves this work; discard it
		}
		orcidPresent[meta.Bibcode] = PresentEntry{
			Bibcode:     meta.Bibcode,
			Modified:    work.Updated,
			Provenance:  work.Provenance,
			Identifiers: meta.Identifiers,
			Authors:     meta.Authors,
		}
	}

	since := time.Time{}
	if latest != nil {
		since = latest.Created
	}
	claims, err := deps.Store.ListClaimsSince(ctx, orcidID, since)
	if err != nil {
		return nil, nil, nil, err
	}

	updatedAds = make(map[string]AdsClaim)
	removedAds = make(map[string]AdsClaim)
	for _, c := range claims {
		if c.Status == types.ClaimFullImport || c.Bibcode == "" {
			continue
		}
		entry := AdsClaim{Bibcode: c.Bibcode, Status: c.Status, Created: c.Created}
		switch c.Status {
		case types.ClaimClaimed, types.ClaimUpdated, types.ClaimForced:
			updatedAds[c.Bibcode] = entry
			delete(removedAds, c.Bibcode)
		case types.ClaimRemoved:
			removedAds[c.Bibcode] = entry
			delete(updatedAds, c.Bibcode)
		}
	}

	if err := deps.Store.CreateClaim(ctx, &types.ClaimLogEntry{
		OrcidID:    orcidID,
		Status:     types.ClaimFullImport,
		Provenance: "import",
	}); err != nil {
		return nil, nil, nil, err
	}

	return orcidPresent, updatedAds, removedAds, nil
}
