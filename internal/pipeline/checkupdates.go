package pipeline

import (
	"context"
	"time"

	"github.com/adsabs/orcidclaims/internal/ierr"
	"github.com/adsabs/orcidclaims/internal/types"
)

// UpdatesHeartbeat is check-updates' own payload: a self-reschedule
// carries forward how many consecutive failures have happened so the
// linear backoff can widen.
type UpdatesHeartbeat struct {
	ErrCount int
}

func (c *Coordinator) EnqueueCheckUpdates(hb UpdatesHeartbeat) {
	c.CheckUpdates.Enqueue(Job{Name: "check-updates", Run: func(ctx context.Context) error {
		return c.runCheckUpdates(ctx, hb)
	}})
}

// checkUpdatesPlan is the pure timing decision check-updates makes before
// touching the network: fetch now, or wait out the remainder of the
// window since last.check.
type checkUpdatesPlan struct {
	shouldFetch bool
	wait        time.Duration
}

func planCheckUpdates(now, lastCheck time.Time, interval time.Duration) checkUpdatesPlan {
	if lastCheck.IsZero() {
		return checkUpdatesPlan{shouldFetch: true}
	}
	elapsed := now.Sub(lastCheck)
	if elapsed < interval {
		return checkUpdatesPlan{shouldFetch: false, wait: interval - elapsed}
	}
	return checkUpdatesPlan{shouldFetch: true}
}

func (c *Coordinator) runCheckUpdates(ctx context.Context, hb UpdatesHeartbeat) error {
	raw, ok, err := c.deps.Store.GetKV(ctx, types.KVLastCheck)
	if err != nil {
		return err
	}
	var lastCheck time.Time
	if ok && raw != "" {
		lastCheck, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return ierr.New(ierr.Data, "pipeline.check-updates", err)
		}
	}

	plan := planCheckUpdates(time.Now(), lastCheck, c.cfg.CheckForChangesInterval)
	if !plan.shouldFetch {
		c.rescheduleCheckUpdates(hb.ErrCount, plan.wait)
		return nil
	}

	entries, err := c.deps.Updates.FetchUpdatesSince(ctx, lastCheck)
	if err != nil {
		wait := c.cfg.CheckForChangesInterval * time.Duration(1+hb.ErrCount)
		c.rescheduleCheckUpdates(hb.ErrCount+1, wait)
		return ierr.New(ierr.TransientIO, "pipeline.check-updates", err)
	}

	if len(entries) == 0 {
		c.rescheduleCheckUpdates(0, c.cfg.CheckForChangesInterval)
		return nil
	}

	// Advance the checkpoint immediately, before any check-orcidid
	// dispatch, so a redundant concurrent worker fetches nothing.
	maxUpdated := lastCheck
	for _, e := range entries {
		if e.Updated.After(maxUpdated) {
			maxUpdated = e.Updated
		}
	}
	if err := c.deps.Store.SetKV(ctx, types.KVLastCheck, maxUpdated.Format(time.RFC3339)); err != nil {
		return err
	}

	for _, e := range entries {
		c.EnqueueCheckOrcidID(CheckOrcidIDPayload{OrcidID: e.OrcidID})
	}

	c.rescheduleCheckUpdates(0, c.cfg.CheckForChangesInterval)
	return nil
}

func (c *Coordinator) rescheduleCheckUpdates(errcount int, delay time.Duration) {
	c.CheckUpdates.EnqueueDelayed(Job{Name: "check-updates", Run: func(ctx context.Context) error {
		return c.runCheckUpdates(ctx, UpdatesHeartbeat{ErrCount: errcount})
	}}, delay)
}
