// Package sqlite is the SQLite-backed implementation of orcidstore.Store,
// built on the pure-Go driver github.com/ncruces/go-sqlite3 so the engine
// never needs cgo to persist state.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/adsabs/orcidclaims/internal/orcidstore"
	"github.com/adsabs/orcidclaims/internal/types"
)

var (
	_ orcidstore.Store       = (*Store)(nil)
	_ orcidstore.Transaction = (*transaction)(nil)
)

// sqliteTimeLayout matches the text SQLite writes for CURRENT_TIMESTAMP,
// so a Go time.Time formatted this way compares correctly against stored
// values in a WHERE clause.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Store is orcidstore.Store backed by a single SQLite database file (or
// ":memory:" for tests).
type Store struct {
	db    *sql.DB
	path  string
	cache *profileCache
}

// Open creates (if needed) and migrates a SQLite database at cfg.Path,
// returning a ready-to-use Store.
func Open(cfg orcidstore.Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: empty database path")
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1) // SQLite serializes writers anyway; avoid pool contention on the single file.

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &Store{db: db, path: cfg.Path, cache: newProfileCache(ttl)}, nil
}

func (s *Store) Close() error { return s.db.Close() }
func (s *Store) Path() string { return s.path }

func (s *Store) ClearCaches() { s.cache.clearCaches() }

// RetrieveProfile loads an AuthorProfile by ORCID iD, consulting the TTL
// cache first.
func (s *Store) RetrieveProfile(ctx context.Context, orcidID string) (*types.AuthorProfile, error) {
	if p, ok := s.cache.get(orcidID); ok {
		return p, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT orcidid, name, facts, status, account_id, created_at, updated_at
		FROM author_profiles WHERE orcidid = ?
	`, orcidID)

	p, err := scanProfile(row)
	if err != nil {
		return nil, err
	}
	s.cache.put(orcidID, p)
	return p, nil
}

func scanProfile(row *sql.Row) (*types.AuthorProfile, error) {
	var p types.AuthorProfile
	var factsJSON string
	var accountID sql.NullInt64

	err := row.Scan(&p.OrcidID, &p.Name, &factsJSON, &p.Status, &accountID, &p.Created, &p.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orcidstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan profile: %w", err)
	}
	if accountID.Valid {
		p.AccountID = &accountID.Int64
	}
	facts := types.Facts{}
	if err := json.Unmarshal([]byte(factsJSON), &facts); err != nil {
		return nil, fmt.Errorf("sqlite: decode facts for %s: %w", p.OrcidID, err)
	}
	p.Facts = facts
	return &p, nil
}

// UpsertProfile inserts or replaces an AuthorProfile wholesale and
// invalidates any cached copy.
func (s *Store) UpsertProfile(ctx context.Context, profile *types.AuthorProfile) error {
	factsJSON, err := json.Marshal(profile.Facts)
	if err != nil {
		return fmt.Errorf("sqlite: encode facts for %s: %w", profile.OrcidID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO author_profiles (orcidid, name, facts, status, account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), CURRENT_TIMESTAMP), CURRENT_TIMESTAMP)
		ON CONFLICT(orcidid) DO UPDATE SET
			name = excluded.name,
			facts = excluded.facts,
			status = excluded.status,
			account_id = excluded.account_id,
			updated_at = CURRENT_TIMESTAMP
	`, profile.OrcidID, profile.Name, string(factsJSON), profile.Status, profile.AccountID, formatTimeOrEmpty(profile.Created))
	if err != nil {
		return fmt.Errorf("sqlite: upsert profile %s: %w", profile.OrcidID, err)
	}
	s.cache.invalidate(profile.OrcidID)
	return nil
}

func formatTimeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func (s *Store) AppendChangeLog(ctx context.Context, entry *types.ChangeLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO change_log (key, old_value, new_value) VALUES (?, ?, ?)
	`, entry.Key, entry.OldValue, entry.NewValue)
	if err != nil {
		return fmt.Errorf("sqlite: append change log %s: %w", entry.Key, err)
	}
	return nil
}

func (s *Store) CreateClaim(ctx context.Context, entry *types.ClaimLogEntry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO claim_log (orcidid, bibcode, status, provenance) VALUES (?, ?, ?, ?)
	`, entry.OrcidID, entry.Bibcode, entry.Status, entry.Provenance)
	if err != nil {
		return fmt.Errorf("sqlite: create claim %s/%s: %w", entry.OrcidID, entry.Bibcode, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

func (s *Store) InsertClaims(ctx context.Context, entries []*types.ClaimLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.RunInTransaction(ctx, func(tx orcidstore.Transaction) error {
		t := tx.(*transaction)
		for _, e := range entries {
			if _, err := t.conn.ExecContext(ctx, `
				INSERT INTO claim_log (orcidid, bibcode, status, provenance) VALUES (?, ?, ?, ?)
			`, e.OrcidID, e.Bibcode, e.Status, e.Provenance); err != nil {
				return fmt.Errorf("sqlite: insert claim %s/%s: %w", e.OrcidID, e.Bibcode, err)
			}
		}
		return nil
	})
}

// UpsertRecord seeds or refreshes a record's author list. Claim arrays are
// left untouched on an existing row; only RecordClaims writes them, so an
// author refresh never stomps on stored claims.
func (s *Store) UpsertRecord(ctx context.Context, bibcode string, authors []string) error {
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return fmt.Errorf("sqlite: encode authors for %s: %w", bibcode, err)
	}
	empty, err := json.Marshal(emptySlots(len(authors)))
	if err != nil {
		return fmt.Errorf("sqlite: encode empty claim slots for %s: %w", bibcode, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (bibcode, authors, verified, unverified)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bibcode) DO UPDATE SET
			authors = excluded.authors,
			updated_at = CURRENT_TIMESTAMP
	`, bibcode, string(authorsJSON), string(empty), string(empty))
	if err != nil {
		return fmt.Errorf("sqlite: upsert record %s: %w", bibcode, err)
	}
	return nil
}

func emptySlots(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = types.EmptySlot
	}
	return out
}

func (s *Store) RetrieveRecord(ctx context.Context, bibcode string) (*types.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT bibcode, authors, verified, unverified, created_at, updated_at, processed_at
		FROM records WHERE bibcode = ?
	`, bibcode)
	return scanRecord(row)
}

// LatestFullImport returns the most recent #full-import sentinel for
// orcidID. created gives a total order over sentinel rows for one ORCID
// iD, so ORDER BY created DESC, id DESC picks the authoritative one even
// if two sentinels share a timestamp.
func (s *Store) LatestFullImport(ctx context.Context, orcidID string) (*types.ClaimLogEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, orcidid, bibcode, status, provenance, created_at
		FROM claim_log
		WHERE orcidid = ? AND status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, orcidID, types.ClaimFullImport)

	var e types.ClaimLogEntry
	err := row.Scan(&e.ID, &e.OrcidID, &e.Bibcode, &e.Status, &e.Provenance, &e.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest full import for %s: %w", orcidID, err)
	}
	return &e, nil
}

// ListClaimsSince returns every claim_log row for orcidID created after
// since, oldest first. Passing the zero time returns the full history.
func (s *Store) ListClaimsSince(ctx context.Context, orcidID string, since time.Time) ([]*types.ClaimLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, orcidid, bibcode, status, provenance, created_at
		FROM claim_log
		WHERE orcidid = ? AND created_at > ?
		ORDER BY created_at ASC, id ASC
	`, orcidID, since.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list claims since for %s: %w", orcidID, err)
	}
	defer rows.Close()

	var out []*types.ClaimLogEntry
	for rows.Next() {
		var e types.ClaimLogEntry
		if err := rows.Scan(&e.ID, &e.OrcidID, &e.Bibcode, &e.Status, &e.Provenance, &e.Created); err != nil {
			return nil, fmt.Errorf("sqlite: scan claim log row: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// RetrieveMetadata is an alias kept distinct from RetrieveRecord in the
// interface because the importer and the match-claim stage pull
// different projections in the real ADS deployment (metadata-only vs.
// metadata+claims); here both read the same row.
func (s *Store) RetrieveMetadata(ctx context.Context, bibcode string) (*types.Record, error) {
	return s.RetrieveRecord(ctx, bibcode)
}

func scanRecord(row *sql.Row) (*types.Record, error) {
	var rec types.Record
	var authorsJSON, verifiedJSON, unverifiedJSON string
	var processedAt sql.NullTime

	err := row.Scan(&rec.Bibcode, &authorsJSON, &verifiedJSON, &unverifiedJSON,
		&rec.Created, &rec.Updated, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orcidstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan record: %w", err)
	}
	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("sqlite: decode authors for %s: %w", rec.Bibcode, err)
	}
	if err := json.Unmarshal([]byte(verifiedJSON), &rec.Claims.Verified); err != nil {
		return nil, fmt.Errorf("sqlite: decode verified claims for %s: %w", rec.Bibcode, err)
	}
	if err := json.Unmarshal([]byte(unverifiedJSON), &rec.Claims.Unverified); err != nil {
		return nil, fmt.Errorf("sqlite: decode unverified claims for %s: %w", rec.Bibcode, err)
	}
	if processedAt.Valid {
		rec.Processed = &processedAt.Time
	}
	return &rec, nil
}

func (s *Store) RecordClaims(ctx context.Context, bibcode string, arrays types.ClaimArrays) error {
	verifiedJSON, err := json.Marshal(arrays.Verified)
	if err != nil {
		return fmt.Errorf("sqlite: encode verified claims for %s: %w", bibcode, err)
	}
	unverifiedJSON, err := json.Marshal(arrays.Unverified)
	if err != nil {
		return fmt.Errorf("sqlite: encode unverified claims for %s: %w", bibcode, err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE records SET verified = ?, unverified = ?, updated_at = CURRENT_TIMESTAMP
		WHERE bibcode = ?
	`, string(verifiedJSON), string(unverifiedJSON), bibcode)
	if err != nil {
		return fmt.Errorf("sqlite: record claims for %s: %w", bibcode, err)
	}
	return nil
}

func (s *Store) MarkProcessed(ctx context.Context, bibcode string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE records SET processed_at = CURRENT_TIMESTAMP WHERE bibcode = ?
	`, bibcode)
	if err != nil {
		return fmt.Errorf("sqlite: mark processed %s: %w", bibcode, err)
	}
	return nil
}

func (s *Store) GetKV(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: get kv %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetKV(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: set kv %s: %w", key, err)
	}
	return nil
}

// transaction implements orcidstore.Transaction over a single *sql.Conn
// holding a BEGIN IMMEDIATE transaction, so the write lock is acquired up
// front rather than on the first actual write — this is what lets
// concurrent match-claim workers serialize cleanly instead of deadlocking
// on a lock upgrade.
type transaction struct {
	conn *sql.Conn
}

func (t *transaction) RetrieveRecord(ctx context.Context, bibcode string) (*types.Record, error) {
	row := t.conn.QueryRowContext(ctx, `
		SELECT bibcode, authors, verified, unverified, created_at, updated_at, processed_at
		FROM records WHERE bibcode = ?
	`, bibcode)
	return scanRecord(row)
}

func (t *transaction) RecordClaims(ctx context.Context, bibcode string, arrays types.ClaimArrays) error {
	verifiedJSON, err := json.Marshal(arrays.Verified)
	if err != nil {
		return fmt.Errorf("sqlite: encode verified claims for %s: %w", bibcode, err)
	}
	unverifiedJSON, err := json.Marshal(arrays.Unverified)
	if err != nil {
		return fmt.Errorf("sqlite: encode unverified claims for %s: %w", bibcode, err)
	}
	_, err = t.conn.ExecContext(ctx, `
		UPDATE records SET verified = ?, unverified = ?, updated_at = CURRENT_TIMESTAMP
		WHERE bibcode = ?
	`, string(verifiedJSON), string(unverifiedJSON), bibcode)
	if err != nil {
		return fmt.Errorf("sqlite: record claims for %s: %w", bibcode, err)
	}
	return nil
}

func (t *transaction) MarkProcessed(ctx context.Context, bibcode string) error {
	_, err := t.conn.ExecContext(ctx, `
		UPDATE records SET processed_at = CURRENT_TIMESTAMP WHERE bibcode = ?
	`, bibcode)
	if err != nil {
		return fmt.Errorf("sqlite: mark processed %s: %w", bibcode, err)
	}
	return nil
}

func (t *transaction) AppendChangeLog(ctx context.Context, entry *types.ChangeLogEntry) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO change_log (key, old_value, new_value) VALUES (?, ?, ?)
	`, entry.Key, entry.OldValue, entry.NewValue)
	if err != nil {
		return fmt.Errorf("sqlite: append change log %s: %w", entry.Key, err)
	}
	return nil
}

// RunInTransaction executes fn inside a BEGIN IMMEDIATE transaction,
// committing on a nil return and rolling back otherwise (including on
// panic, which is re-raised after rollback).
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx orcidstore.Transaction) error) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("sqlite: begin immediate: %w", err)
	}

	committed := false
	defer func() {
		if r := recover(); r != nil {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
			panic(r)
		}
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(&transaction{conn: conn}); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	committed = true
	return nil
}
