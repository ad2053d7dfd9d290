package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/pipeline"
)

var reindexClaimsCmd = &cobra.Command{
	Use:   "reindex-claims",
	Short: "Full reconciliation pass: diff ORCID profiles against stored claims and apply the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReindexClaims(cmd.Context(), reindexFlags)
	},
}

var reindexFlags *commonFlags

func init() {
	reindexFlags = registerCommonFlags(reindexClaimsCmd)
	rootCmd.AddCommand(reindexClaimsCmd)
}

func runReindexClaims(ctx context.Context, f *commonFlags) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := applyKVOverride(ctx, store, f.kv); err != nil {
		return err
	}

	oids, err := parseListFlag(f.oid)
	if err != nil {
		return err
	}

	if len(oids) == 0 && f.since == "" {
		return fmt.Errorf("reindex-claims requires --oid or --since")
	}

	coord := buildCoordinator(store)

	if len(oids) > 0 {
		for _, oid := range oids {
			payload := pipeline.CheckOrcidIDPayload{OrcidID: oid, Force: f.force}
			if f.diagnose {
				fmt.Printf("would enqueue check-orcidid orcidid=%s force=%v\n", oid, f.force)
				continue
			}
			if err := enqueueCheckOrcidID(coord, payload); err != nil {
				return err
			}
		}
		coord.Close()
		return nil
	}

	since, err := time.Parse(time.RFC3339, f.since)
	if err != nil {
		return fmt.Errorf("--since: %w", err)
	}
	entries, err := coord.Deps().Updates.FetchUpdatesSince(ctx, since)
	if err != nil {
		return err
	}
	for _, e := range entries {
		payload := pipeline.CheckOrcidIDPayload{OrcidID: e.OrcidID, Force: f.force}
		if f.diagnose {
			fmt.Printf("would enqueue check-orcidid orcidid=%s force=%v\n", e.OrcidID, f.force)
			continue
		}
		if err := enqueueCheckOrcidID(coord, payload); err != nil {
			return err
		}
	}
	coord.Close()
	return nil
}

func enqueueCheckOrcidID(coord *pipeline.Coordinator, payload pipeline.CheckOrcidIDPayload) error {
	return retryOnce(func() error {
		return coord.TryEnqueueCheckOrcidID(payload)
	})
}
