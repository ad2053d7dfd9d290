package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/logging"
	"github.com/adsabs/orcidclaims/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation engine as a long-lived daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

var daemonSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

func runServe(ctx context.Context) error {
	logger := logging.With(logging.Fields{"cmd": "serve"})

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	coord := buildCoordinator(store)

	// Seed the first check-updates pass; from here on check-updates
	// reschedules itself (normal interval, backoff, or wait-out-window)
	// per its own plan.
	coord.EnqueueCheckUpdates(pipeline.UpdatesHeartbeat{})
	logger.Infof("serve started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, daemonSignals...)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Infof("received signal %v, shutting down", sig)
	case <-ctx.Done():
		logger.Infof("context canceled, shutting down")
	}

	coord.Close()
	return nil
}
