package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/ierr"
	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/pipeline"
	"github.com/adsabs/orcidclaims/internal/types"
)

var refetchOrcidIDsCmd = &cobra.Command{
	Use:   "refetch-orcidids",
	Short: "Refresh stored name-variant facts for the given ORCID iDs without running the claim pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefetchOrcidIDs(cmd.Context(), refetchFlags)
	},
}

var refetchFlags *commonFlags

func init() {
	refetchFlags = registerCommonFlags(refetchOrcidIDsCmd)
	rootCmd.AddCommand(refetchOrcidIDsCmd)
}

func runRefetchOrcidIDs(ctx context.Context, f *commonFlags) error {
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
	if len(oids) == 0 {
		return fmt.Errorf("refetch-orcidids requires --oid")
	}

	coord := buildCoordinator(store)
	defer coord.Close()

	for _, oid := range oids {
		if f.diagnose {
			fmt.Printf("would refetch author facts orcidid=%s\n", oid)
			continue
		}
		if err := refetchOrcidID(ctx, coord, store, oid); err != nil {
			return err
		}
	}
	return nil
}

func refetchOrcidID(ctx context.Context, coord *pipeline.Coordinator, store orcidstore.Store, orcidID string) error {
	profile, err := store.RetrieveProfile(ctx, orcidID)
	if errors.Is(err, orcidstore.ErrNotFound) {
		profile = &types.AuthorProfile{OrcidID: orcidID}
	} else if err != nil {
		return err
	}

	info, err := coord.Deps().AuthorInfo.FetchAuthorInfo(ctx, orcidID)
	if err != nil {
		return ierr.New(ierr.TransientIO, "refetch-orcidids", err)
	}
	if info == nil {
		return nil
	}
	profile.Name = info.Name
	facts := make(types.Facts, len(info.Facts))
	for k, v := range info.Facts {
		facts[types.FactField(k)] = v
	}
	profile.Facts = facts
	return store.UpsertProfile(ctx, profile)
}
