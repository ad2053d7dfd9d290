package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/orcidstore/sqlite"
)

func TestPlanCheckUpdates_S6_TooSoonYieldsWaitNoFetch(t *testing.T) {
	t0 := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := t0.Add(10 * time.Second)
	interval := 300 * time.Second

	plan := planCheckUpdates(now, t0, interval)
	require.False(t, plan.shouldFetch)
	require.Equal(t, 290*time.Second, plan.wait)
}

func TestPlanCheckUpdates_PastIntervalFetches(t *testing.T) {
	t0 := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := t0.Add(301 * time.Second)
	plan := planCheckUpdates(now, t0, 300*time.Second)
	require.True(t, plan.shouldFetch)
}

func TestPlanCheckUpdates_ZeroLastCheckFetches(t *testing.T) {
	plan := planCheckUpdates(time.Now(), time.Time{}, 300*time.Second)
	require.True(t, plan.shouldFetch)
}

type noCallUpdatesFeed struct{ t *testing.T }

func (f *noCallUpdatesFeed) FetchUpdatesSince(ctx context.Context, since time.Time) ([]adsapi.UpdateEntry, error) {
	f.t.Fatal("FetchUpdatesSince must not be called inside the check-for-changes window")
	return nil, nil
}

// TestRunCheckUpdates_S6_TooSoonSkipsFetchAndReschedulesOnce exercises the
// full task: given last.check = t0 and now = t0+10s with a 300s window, it
// must not reach the external feed and must schedule exactly one delayed
// self-retry for the remaining ~290s.
func TestRunCheckUpdates_S6_TooSoonSkipsFetchAndReschedulesOnce(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(orcidstore.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	t0 := time.Now().Add(-10 * time.Second)
	require.NoError(t, store.SetKV(ctx, "last.check", t0.Format(time.RFC3339)))

	c := NewCoordinator(Config{CheckForChangesInterval: 300 * time.Second}, Dependencies{
		Store:   store,
		Updates: &noCallUpdatesFeed{t: t},
	})

	type scheduled struct {
		delay time.Duration
	}
	calls := make(chan scheduled, 8)
	c.CheckUpdates.afterFunc = func(d time.Duration, f func()) *time.Timer {
		calls <- scheduled{delay: d}
		return time.NewTimer(time.Hour) // never fires during the test
	}

	err = c.runCheckUpdates(ctx, UpdatesHeartbeat{})
	require.NoError(t, err)

	select {
	case got := <-calls:
		require.InDelta(t, 290*time.Second, got.delay, float64(2*time.Second))
	case <-time.After(time.Second):
		t.Fatal("expected exactly one scheduled self-retry")
	}
	select {
	case got := <-calls:
		t.Fatalf("expected exactly one scheduled self-retry, got a second: %+v", got)
	default:
	}
}
