package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/adsapi"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/pipeline"
)

var repushClaimsCmd = &cobra.Command{
	Use:   "repush-claims",
	Short: "Resend a record's existing verified/unverified arrays to output-results without reapplying claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepushClaims(cmd.Context(), repushFlags)
	},
}

var repushFlags *commonFlags

func init() {
	repushFlags = registerCommonFlags(repushClaimsCmd)
	rootCmd.AddCommand(repushClaimsCmd)
}

func runRepushClaims(ctx context.Context, f *commonFlags) error {
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
		return fmt.Errorf("repush-claims requires --bibcodes")
	}

	coord := buildCoordinator(store)
	defer coord.Close()

	for _, bibcode := range bibcodes {
		if f.diagnose {
			fmt.Printf("would repush output-results bibcode=%s\n", bibcode)
			continue
		}
		if err := repushBibcode(ctx, coord, store, bibcode); err != nil {
			return err
		}
	}
	return nil
}

func repushBibcode(ctx context.Context, coord *pipeline.Coordinator, store orcidstore.Store, bibcode string) error {
	record, err := store.RetrieveRecord(ctx, bibcode)
	if errors.Is(err, orcidstore.ErrNotFound) {
		return fmt.Errorf("repush-claims: no stored record for bibcode %s", bibcode)
	} else if err != nil {
		return err
	}

	msg := adsapi.OutputMessage{
		Bibcode:    record.Bibcode,
		Authors:    record.Authors,
		Verified:   record.Claims.Verified,
		Unverified: record.Claims.Unverified,
	}
	return retryOnce(func() error {
		return coord.TryEnqueueOutputResults(msg)
	})
}
