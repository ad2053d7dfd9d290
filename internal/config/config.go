// Package config centralizes the reconciliation engine's tunables behind
// a viper singleton: file + environment + default precedence, the same
// shape the daemon's own config layer uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton. Should be called
// once at application startup, before any Get* call.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	// User config directory (~/.config/orcidclaims/config.yaml)
	if configDir, err := os.UserConfigDir(); err == nil {
		configPath := filepath.Join(configDir, "orcidclaims", "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			configFileSet = true
		}
	}

	// Home directory (~/.orcidclaims/config.yaml)
	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".orcidclaims", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file.
	// ORCIDCLAIMS_DB_PATH, ORCIDCLAIMS_MIN_RATIO, etc.
	v.SetEnvPrefix("ORCIDCLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Storage
	v.SetDefault("db.backend", "sqlite")
	v.SetDefault("db.path", "orcidclaims.db")
	v.SetDefault("db.cache-ttl-seconds", 300)

	// Importer and pipeline timing windows, named after the existing
	// ORCID_* environment variables so an operator's existing deployment
	// carries over unchanged.
	v.SetDefault("orcid-update-window", "60s")
	v.SetDefault("orcid-check-for-changes", "300s")

	// Matching threshold
	v.SetDefault("min-ratio", 0.75)

	// Per-queue worker counts
	v.SetDefault("queue.check-updates.concurrency", 1)
	v.SetDefault("queue.check-orcidid.concurrency", 4)
	v.SetDefault("queue.match-claim.concurrency", 4)
	v.SetDefault("queue.output-results.concurrency", 2)

	// External service endpoints
	v.SetDefault("api.orcid-export-profile", "")
	v.SetDefault("api.orcid-updates-endpoint", "")
	v.SetDefault("api.orcid-update-bib-status", "")
	v.SetDefault("api.orcid-profile-endpoint", "")
	v.SetDefault("api.token", "")

	// Identifier resolution priority; "*" is the required fallback entry.
	v.SetDefault("identifier-priority", map[string]int{"bibcode": 10, "doi": 5, "arxiv": 3, "*": 0})

	v.SetDefault("verbose", false)
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetFloat64 retrieves a float configuration value.
func GetFloat64(key string) float64 {
	if v == nil {
		return 0
	}
	return v.GetFloat64(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringMapInt retrieves a map[string]int configuration value, used for
// identifier-priority.
func GetStringMapInt(key string) map[string]int {
	if v == nil {
		return map[string]int{}
	}
	raw := v.GetStringMap(key)
	out := make(map[string]int, len(raw))
	for k, val := range raw {
		switch n := val.(type) {
		case int:
			out[k] = n
		case int64:
			out[k] = int(n)
		case float64:
			out[k] = int(n)
		}
	}
	return out
}

// Set overrides a configuration value, used by the CLI to apply flags
// that take precedence over file/env.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// ConfigFileUsed reports which file (if any) Initialize loaded.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
