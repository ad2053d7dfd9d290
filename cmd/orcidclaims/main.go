// Command orcidclaims drives the ORCID claim reconciliation engine: a
// one-shot CLI over the same pipeline coordinator that a long-running
// `serve` process uses.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
