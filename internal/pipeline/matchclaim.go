package pipeline

import (
	"context"
	"errors"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/claimapply"
	"github.com/adsabs/orcidclaims/internal/ierr"
	"github.com/adsabs/orcidclaims/internal/logging"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/types"
)

var errMatchClaimMissingOrcidID = errors.New("pipeline: match-claim payload missing orcidid")

func (c *Coordinator) EnqueueMatchClaim(p MatchClaimPayload) {
	c.MatchClaim.Enqueue(Job{Name: "match-claim", Run: func(ctx context.Context) error {
		return c.runMatchClaim(ctx, p)
	}})
}

// TryEnqueueMatchClaim is the non-blocking counterpart to EnqueueMatchClaim.
func (c *Coordinator) TryEnqueueMatchClaim(p MatchClaimPayload) error {
	return c.MatchClaim.TryEnqueue(Job{Name: "match-claim", Run: func(ctx context.Context) error {
		return c.runMatchClaim(ctx, p)
	}})
}

func (c *Coordinator) runMatchClaim(ctx context.Context, p MatchClaimPayload) error {
	logger := logging.With(logging.Fields{"orcidid": p.OrcidID, "bibcode": p.Bibcode})

	if p.OrcidID == "" {
		return ierr.New(ierr.Processing, "pipeline.match-claim", errMatchClaimMissingOrcidID)
	}

	authors := p.AuthorList
	if p.Status == types.ClaimRemoved {
		meta, err := c.deps.Metadata.LookupByBibcode(ctx, p.Bibcode)
		if err != nil {
			return ierr.New(ierr.TransientIO, "pipeline.match-claim", err)
		}
		if meta != nil {
			authors = meta.Authors
		}
	}

	// The bootstrap create is idempotent and outside the race this
	// transaction guards against, so it runs once, before the transaction.
	// Transaction has no UpsertRecord of its own (see orcidstore.Transaction).
	if _, err := c.deps.Store.RetrieveRecord(ctx, p.Bibcode); errors.Is(err, orcidstore.ErrNotFound) {
		if err := c.deps.Store.UpsertRecord(ctx, p.Bibcode, authors); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	claim := claimapply.Claim{
		OrcidID:      p.OrcidID,
		Status:       p.Status,
		AccountID:    p.AccountID,
		AuthorStatus: p.AuthorStatus,
		Variants:     p.Facts,
	}

	var record *types.Record
	status := "rejected"

	// Retrieve, apply and persist inside one transaction so two match-claim
	// workers racing on the same bibcode serialize instead of both reading
	// the same stale record and one clobbering the other's claim write.
	err := c.deps.Store.RunInTransaction(ctx, func(tx orcidstore.Transaction) error {
		rec, err := tx.RetrieveRecord(ctx, p.Bibcode)
		if err != nil {
			return err
		}
		record = rec

		if result := claimapply.Apply(record, claim, c.cfg.MinRatio); result != nil {
			status = "verified"
			return tx.RecordClaims(ctx, p.Bibcode, record.Claims)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if status == "verified" {
		c.EnqueueOutputResults(adsapi.OutputMessage{
			Bibcode:    p.Bibcode,
			Authors:    record.Authors,
			Verified:   record.Claims.Verified,
			Unverified: record.Claims.Unverified,
		})
	} else {
		logger.Warnf("claim refused")
	}

	ack, err := c.deps.Status.PostBibcodeStatus(ctx, p.OrcidID, []adsapi.BibcodeStatus{{Bibcode: p.Bibcode, Status: status}})
	if err != nil {
		return ierr.New(ierr.TransientIO, "pipeline.match-claim", err)
	}
	if got, ok := ack[p.Bibcode]; ok && got != status {
		logger.Warnf("status mismatch: want=%s got=%s", status, got)
	}

	return nil
}
