package main

import (
	"fmt"
	"time"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/config"
	"github.com/adsabs/orcidclaims/internal/orcidimport"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/orcidstore/sqlite"
	"github.com/adsabs/orcidclaims/internal/pipeline"
)

// openStore opens the configured backing store. sqlite is the only
// backend wired today; the Backend field exists so a future driver only
// needs a new case here.
func openStore() (orcidstore.Store, error) {
	cfg := orcidstore.Config{
		Backend:         config.GetString("db.backend"),
		Path:            config.GetString("db.path"),
		CacheTTLSeconds: config.GetInt("db.cache-ttl-seconds"),
	}
	switch cfg.Backend {
	case "", "sqlite":
		return sqlite.Open(cfg)
	default:
		return nil, fmt.Errorf("orcidclaims: unsupported db.backend %q", cfg.Backend)
	}
}

func buildCoordinator(store orcidstore.Store) *pipeline.Coordinator {
	client := adsapi.NewClient(config.GetString("api.orcid-export-profile"), config.GetString("api.token"))

	order := orcidimport.IdentifierPriority(config.GetStringMapInt("identifier-priority"))
	if len(order) == 0 {
		order = orcidimport.IdentifierPriority{"*": 0}
	}

	return pipeline.NewCoordinator(pipeline.Config{
		CheckUpdatesConcurrency:  config.GetInt("queue.check-updates.concurrency"),
		CheckOrcidIDConcurrency:  config.GetInt("queue.check-orcidid.concurrency"),
		MatchClaimConcurrency:    config.GetInt("queue.match-claim.concurrency"),
		OutputResultsConcurrency: config.GetInt("queue.output-results.concurrency"),
		CheckForChangesInterval:  config.GetDuration("orcid-check-for-changes"),
		UpdateWindow:             config.GetDuration("orcid-update-window"),
		MinRatio:                 config.GetFloat64("min-ratio"),
		IdentifierOrder:          order,
	}, pipeline.Dependencies{
		Store:      store,
		Profiles:   client,
		Updates:    client,
		Status:     client,
		AuthorInfo: client,
		Metadata:   client,
		Output:     client,
	})
}

// retryOnce implements the CLI driver's backpressure policy: retry once
// after a short sleep before surfacing an enqueue failure to the operator.
func retryOnce(tryEnqueue func() error) error {
	if err := tryEnqueue(); err == nil {
		return nil
	}
	time.Sleep(200 * time.Millisecond)
	return tryEnqueue()
}
