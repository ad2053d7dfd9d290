package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/ierr"
	"github.com/adsabs/orcidclaims/internal/orcidimport"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/types"
)

var errCheckOrcidIDMissingID = errors.New("pipeline: check-orcidid payload missing orcidid")

// CheckOrcidIDPayload is what check-updates (or a CLI reindex driver)
// enqueues onto the check-orcidid queue.
type CheckOrcidIDPayload struct {
	OrcidID string
	Force   bool
}

// MatchClaimPayload is the enriched claim check-orcidid dispatches
// downstream for each persisted diff entry with a bibcode.
type MatchClaimPayload struct {
	OrcidID       string
	Bibcode       string
	Status        types.ClaimStatus
	Name          string
	Facts         types.Facts
	AuthorStatus  types.ProfileStatus
	AccountID     *int64
	AuthorUpdated time.Time

	// Identifiers and AuthorList are only populated for non-removed
	// claims, sourced from the importer's orcid_present entry.
	Identifiers []adsapi.Identifier
	AuthorList  []string
}

func (c *Coordinator) EnqueueCheckOrcidID(p CheckOrcidIDPayload) {
	c.CheckOrcidID.Enqueue(Job{Name: "check-orcidid", Run: func(ctx context.Context) error {
		return c.runCheckOrcidID(ctx, p)
	}})
}

// TryEnqueueCheckOrcidID is the non-blocking counterpart to
// EnqueueCheckOrcidID, used by CLI drivers that must honor the
// retry-once-then-surface backpressure policy rather than block a
// goroutine on a saturated queue.
func (c *Coordinator) TryEnqueueCheckOrcidID(p CheckOrcidIDPayload) error {
	return c.CheckOrcidID.TryEnqueue(Job{Name: "check-orcidid", Run: func(ctx context.Context) error {
		return c.runCheckOrcidID(ctx, p)
	}})
}

func (c *Coordinator) runCheckOrcidID(ctx context.Context, p CheckOrcidIDPayload) error {
	if p.OrcidID == "" {
		return ierr.New(ierr.Ignorable, "pipeline.check-orcidid", errCheckOrcidIDMissingID)
	}

	profile, err := c.deps.Store.RetrieveProfile(ctx, p.OrcidID)
	if errors.Is(err, orcidstore.ErrNotFound) {
		profile = &types.AuthorProfile{OrcidID: p.OrcidID}
	} else if err != nil {
		return err
	}

	if info, err := c.deps.AuthorInfo.FetchAuthorInfo(ctx, p.OrcidID); err != nil {
		return ierr.New(ierr.TransientIO, "pipeline.check-orcidid", err)
	} else if info != nil {
		profile.Name = info.Name
		profile.Facts = factsFromInfo(info)
	}
	if err := c.deps.Store.UpsertProfile(ctx, profile); err != nil {
		return err
	}

	orcidPresent, updatedAds, _, err := orcidimport.GetClaims(ctx, orcidimport.Dependencies{
		Profiles: c.deps.Profiles,
		Metadata: c.deps.Metadata,
		Store:    c.deps.Store,
	}, p.OrcidID, "", "", p.Force, c.cfg.IdentifierOrder)
	if err != nil {
		return ierr.New(ierr.TransientIO, "pipeline.check-orcidid", err)
	}

	// adsHas must be the active claim set only: updatedAds and removedAds
	// are already disjoint (GetClaims classifies each bibcode into
	// exactly one), and a bibcode ORCID has reasserted since it was
	// removed belongs in orcidPresent-only (claimed), not the
	// intersection — folding removedAds in here would route a reclaim
	// through the timestamp-comparison branch instead.
	claimed, removed, updated, forced, _ := orcidimport.ComputeDiff(orcidPresent, updatedAds, p.Force, c.cfg.UpdateWindow)

	persist := func(bibcode string, status types.ClaimStatus) error {
		return c.deps.Store.CreateClaim(ctx, &types.ClaimLogEntry{
			OrcidID:    p.OrcidID,
			Bibcode:    bibcode,
			Status:     status,
			Provenance: "check-orcidid",
		})
	}
	for _, b := range claimed {
		if err := persist(b, types.ClaimClaimed); err != nil {
			return err
		}
	}
	for _, b := range updated {
		if err := persist(b, types.ClaimUpdated); err != nil {
			return err
		}
	}
	for _, b := range forced {
		if err := persist(b, types.ClaimForced); err != nil {
			return err
		}
	}
	for _, b := range removed {
		if err := persist(b, types.ClaimRemoved); err != nil {
			return err
		}
	}

	if profile.Status == types.StatusBlacklisted || profile.Status == types.StatusPostponed {
		return nil
	}

	dispatch := func(bibcode string, status types.ClaimStatus) {
		payload := MatchClaimPayload{
			OrcidID:       p.OrcidID,
			Bibcode:       bibcode,
			Status:        status,
			Name:          profile.Name,
			Facts:         profile.Facts,
			AuthorStatus:  profile.Status,
			AccountID:     profile.AccountID,
			AuthorUpdated: profile.Updated,
		}
		if status != types.ClaimRemoved {
			if present, ok := orcidPresent[bibcode]; ok {
				payload.Identifiers = present.Identifiers
				payload.AuthorList = present.Authors
			}
		}
		c.EnqueueMatchClaim(payload)
	}

	for _, b := range claimed {
		dispatch(b, types.ClaimClaimed)
	}
	for _, b := range updated {
		dispatch(b, types.ClaimUpdated)
	}
	for _, b := range forced {
		dispatch(b, types.ClaimForced)
	}
	for _, b := range removed {
		dispatch(b, types.ClaimRemoved)
	}

	return nil
}

func factsFromInfo(info *adsapi.AuthorInfo) types.Facts {
	if info == nil {
		return nil
	}
	f := make(types.Facts, len(info.Facts))
	for k, v := range info.Facts {
		f[types.FactField(k)] = v
	}
	return f
}
