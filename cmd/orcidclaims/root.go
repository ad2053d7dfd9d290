package main

import (
	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/config"
)

var (
	flagDBPath  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "orcidclaims",
	Short: "ORCID claim reconciliation engine",
	Long: `orcidclaims reconciles ORCID-asserted authorship claims against
bibliographic records: importing ORCID profiles, matching claimed names
against author lists, and applying the result to each record's verified
and unverified claim arrays.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		if flagDBPath != "" {
			config.Set("db.path", flagDBPath)
		}
		if flagVerbose {
			config.Set("verbose", true)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the sqlite database (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
