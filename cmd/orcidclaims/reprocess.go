package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/ierr"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/pipeline"
)

var reprocessBibcodesCmd = &cobra.Command{
	Use:   "reprocess-bibcodes",
	Short: "Refresh a record's author list from metadata, preserving its existing verified/unverified arrays",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReprocessBibcodes(cmd.Context(), reprocessFlags)
	},
}

var reprocessFlags *commonFlags

func init() {
	reprocessFlags = registerCommonFlags(reprocessBibcodesCmd)
	rootCmd.AddCommand(reprocessBibcodesCmd)
}

func runReprocessBibcodes(ctx context.Context, f *commonFlags) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := applyKVOverride(ctx, store, f.kv); err != nil {
		return err
	}

	bibcodes, err := parseListFlag(f.bibcodes)
	if err != nil {
		return err
	}
	if len(bibcodes) == 0 {
		return fmt.Errorf("reprocess-bibcodes requires --bibcodes")
	}

	coord := buildCoordinator(store)
	defer coord.Close()

	for _, bibcode := range bibcodes {
		if f.diagnose {
			fmt.Printf("would reprocess bibcode=%s\n", bibcode)
			continue
		}
		if err := reprocessBibcode(ctx, coord, store, bibcode); err != nil {
			return err
		}
	}
	return nil
}

func reprocessBibcode(ctx context.Context, coord *pipeline.Coordinator, store orcidstore.Store, bibcode string) error {
	meta, err := coord.Deps().Metadata.LookupByBibcode(ctx, bibcode)
	if err != nil {
		return ierr.New(ierr.TransientIO, "reprocess-bibcodes", err)
	}
	if meta == nil {
		return fmt.Errorf("reprocess-bibcodes: no metadata for bibcode %s", bibcode)
	}

	record, err := store.RetrieveRecord(ctx, bibcode)
	if errors.Is(err, orcidstore.ErrNotFound) {
		return store.UpsertRecord(ctx, bibcode, meta.Authors)
	} else if err != nil {
		return err
	}

	if err := store.UpsertRecord(ctx, bibcode, meta.Authors); err != nil {
		return err
	}
	return store.RecordClaims(ctx, bibcode, record.Claims)
}
