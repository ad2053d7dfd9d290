package pipeline

import (
	"time"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/orcidimport"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
)

// Config tunes queue concurrency and the timing/matching constants the
// tasks consult.
type Config struct {
	CheckUpdatesConcurrency  int
	CheckOrcidIDConcurrency  int
	MatchClaimConcurrency    int
	OutputResultsConcurrency int

	CheckForChangesInterval time.Duration // ORCID_CHECK_FOR_CHANGES
	UpdateWindow            time.Duration // ORCID_UPDATE_WINDOW
	MinRatio                float64
	IdentifierOrder         orcidimport.IdentifierPriority
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.CheckForChangesInterval <= 0 {
		out.CheckForChangesInterval = 300 * time.Second
	}
	if out.UpdateWindow <= 0 {
		out.UpdateWindow = orcidimport.DefaultUpdateWindow
	}
	if out.MinRatio <= 0 {
		out.MinRatio = 0.75
	}
	if out.IdentifierOrder == nil {
		out.IdentifierOrder = orcidimport.IdentifierPriority{"*": 0}
	}
	return out
}

// Dependencies bundles every external collaborator the four queues call
// into; Coordinator itself holds no other state.
type Dependencies struct {
	Store      orcidstore.Store
	Profiles   adsapi.ProfileSource
	Updates    adsapi.UpdatesFeed
	Status     adsapi.StatusCallback
	AuthorInfo adsapi.AuthorInfoSource
	Metadata   adsapi.MetadataLookup
	Output     adsapi.OutputSink
}

// Coordinator owns the four named queues and wires their tasks
// to Dependencies. Queues start draining as soon as NewCoordinator
// returns; call Close to drain and stop them.
type Coordinator struct {
	cfg  Config
	deps Dependencies

	CheckUpdates  *Queue
	CheckOrcidID  *Queue
	MatchClaim    *Queue
	OutputResults *Queue
}

func defaultConcurrency(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func NewCoordinator(cfg Config, deps Dependencies) *Coordinator {
	cfg = cfg.withDefaults()
	c := &Coordinator{cfg: cfg, deps: deps}
	c.OutputResults = NewQueue("output-results", defaultConcurrency(cfg.OutputResultsConcurrency, 2), nil)
	c.MatchClaim = NewQueue("match-claim", defaultConcurrency(cfg.MatchClaimConcurrency, 4), nil)
	c.CheckOrcidID = NewQueue("check-orcidid", defaultConcurrency(cfg.CheckOrcidIDConcurrency, 4), nil)
	c.CheckUpdates = NewQueue("check-updates", defaultConcurrency(cfg.CheckUpdatesConcurrency, 1), nil)
	return c
}

// Deps exposes the wired Dependencies, for CLI drivers that need direct
// access to an external collaborator (e.g. the updates feed for a
// --since backfill) without going through a queue.
func (c *Coordinator) Deps() Dependencies {
	return c.deps
}

// Close drains all four queues, upstream first: each queue is closed only
// after every queue that enqueues onto it has drained, so in-flight
// dispatches (check-orcidid -> match-claim -> output-results) never send
// on a closed queue.
func (c *Coordinator) Close() {
	c.CheckUpdates.Close()
	c.CheckOrcidID.Close()
	c.MatchClaim.Close()
	c.OutputResults.Close()
}
