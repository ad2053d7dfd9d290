package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adsabs/orcidclaims/internal/orcidstore"
)

// commonFlags are the flags shared across all four task drivers.
type commonFlags struct {
	since    string
	oid      string
	bibcodes string
	force    bool
	kv       string
	diagnose bool
}

func registerCommonFlags(cmd *cobra.Command) *commonFlags {
	f := &commonFlags{}
	cmd.Flags().StringVar(&f.since, "since", "", "RFC3339 lower bound")
	cmd.Flags().StringVar(&f.oid, "oid", "", "comma-separated ORCID iDs")
	cmd.Flags().StringVar(&f.bibcodes, "bibcodes", "", "comma-separated bibcodes, or @path/to/file")
	cmd.Flags().BoolVar(&f.force, "force", false, "bypass the #full-import short-circuit")
	cmd.Flags().StringVar(&f.kv, "kv", "", "key=value checkpoint to set before running")
	cmd.Flags().BoolVar(&f.diagnose, "diagnose", false, "print planned work without enqueuing it")
	return f
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseListFlag accepts either a comma-separated list or, when prefixed
// with '@', a path to a newline-delimited file.
func parseListFlag(raw string) ([]string, error) {
	if !strings.HasPrefix(raw, "@") {
		return splitCSV(raw), nil
	}
	f, err := os.Open(raw[1:])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

func applyKVOverride(ctx context.Context, store orcidstore.Store, kv string) error {
	if kv == "" {
		return nil
	}
	parts := strings.SplitN(kv, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("--kv expects key=value, got %q", kv)
	}
	return store.SetKV(ctx, parts[0], parts[1])
}
