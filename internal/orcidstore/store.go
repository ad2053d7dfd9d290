// Package orcidstore defines the storage interface for the reconciliation
// engine's persisted state: author profiles, the append-only claim log,
// per-record claim arrays, the fact-change log, and small checkpoint
// key/value pairs.
package orcidstore

import (
	"context"
	"errors"
	"time"

	"github.com/adsabs/orcidclaims/internal/types"
)

// ErrDBNotInitialized names use of a store before the backing database has
// been opened and migrated. The sqlite backend never returns it: its Open
// fails instead.
var ErrDBNotInitialized = errors.New("orcidstore: database not initialized")

// ErrNotFound is returned by retrieval methods when the requested row does
// not exist. Callers distinguish "no such profile" from a transport error
// by checking errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("orcidstore: not found")

// Transaction exposes the subset of Store methods that run inside a single
// database transaction, for atomic read-modify-write sequences such as
// claim application (retrieve record, mutate claim arrays, persist).
//
// # Semantics
//
//   - All operations share one connection and are invisible to other
//     connections until commit.
//   - A non-nil error from the callback rolls the transaction back; a nil
//     return commits.
//   - SQLite backends use BEGIN IMMEDIATE to acquire the write lock up
//     front, which serializes concurrent writers instead of letting them
//     deadlock on a later upgrade.
type Transaction interface {
	RetrieveRecord(ctx context.Context, bibcode string) (*types.Record, error)
	RecordClaims(ctx context.Context, bibcode string, arrays types.ClaimArrays) error
	MarkProcessed(ctx context.Context, bibcode string) error
	AppendChangeLog(ctx context.Context, entry *types.ChangeLogEntry) error
}

// Store is the durable home for author profiles, claim history,
// per-record claim state, and pipeline checkpoints.
type Store interface {
	// Profiles
	RetrieveProfile(ctx context.Context, orcidID string) (*types.AuthorProfile, error)
	UpsertProfile(ctx context.Context, profile *types.AuthorProfile) error
	AppendChangeLog(ctx context.Context, entry *types.ChangeLogEntry) error

	// Claim log (append-only history of every claim decision made)
	CreateClaim(ctx context.Context, entry *types.ClaimLogEntry) error
	InsertClaims(ctx context.Context, entries []*types.ClaimLogEntry) error
	// LatestFullImport returns the most recent #full-import sentinel row
	// for orcidID, or nil if none exists.
	LatestFullImport(ctx context.Context, orcidID string) (*types.ClaimLogEntry, error)
	// ListClaimsSince returns claim_log rows for orcidID created strictly
	// after since (zero time means "all"), ordered oldest first.
	ListClaimsSince(ctx context.Context, orcidID string, since time.Time) ([]*types.ClaimLogEntry, error)

	// Records
	UpsertRecord(ctx context.Context, bibcode string, authors []string) error
	RetrieveRecord(ctx context.Context, bibcode string) (*types.Record, error)
	RetrieveMetadata(ctx context.Context, bibcode string) (*types.Record, error)
	RecordClaims(ctx context.Context, bibcode string, arrays types.ClaimArrays) error
	MarkProcessed(ctx context.Context, bibcode string) error

	// Checkpoints
	GetKV(ctx context.Context, key string) (string, bool, error)
	SetKV(ctx context.Context, key, value string) error

	// Transactions
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Lifecycle
	Close() error
	Path() string

	// ClearCaches drops any in-process cache layered over the backing
	// store. Backends without a cache implement it as a no-op.
	ClearCaches()
}

// Config selects and configures a Store backend.
type Config struct {
	Backend string // currently only "sqlite"
	Path    string // database file path, or ":memory:"

	// CacheTTLSeconds bounds how long a retrieved AuthorProfile may be
	// served from cache before a fresh read is required. Zero disables
	// caching entirely.
	CacheTTLSeconds int
}
