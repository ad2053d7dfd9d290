package sqlite

import (
	"database/sql"
	"fmt"
)

// Migration is a single idempotent schema upgrade, named so operators can
// see what ran in a given database without inspecting its DDL directly.
type Migration struct {
	Name string
	Func func(*sql.DB) error
}

// migrationsList runs in order every time a database is opened. Each
// migration checks for its own precondition before acting, so re-running
// the full list against an already-migrated database is a no-op.
var migrationsList = []Migration{
	{"claim_log_provenance_index", migrateClaimLogProvenanceIndex},
	{"records_processed_at_index", migrateRecordsProcessedAtIndex},
}

// RunMigrations applies every registered migration inside one EXCLUSIVE
// transaction, so two processes opening the same database file at once
// can't race on a check-then-ALTER sequence.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec("BEGIN EXCLUSIVE"); err != nil {
		return fmt.Errorf("acquire exclusive lock for migrations: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = db.Exec("ROLLBACK")
		}
	}()

	for _, m := range migrationsList {
		if err := m.Func(db); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}

	if _, err := db.Exec("COMMIT"); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	committed = true
	return nil
}

func migrateClaimLogProvenanceIndex(db *sql.DB) error {
	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_claim_log_provenance'
	`).Scan(&name)
	if err == nil {
		return nil // already present
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check idx_claim_log_provenance: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX idx_claim_log_provenance ON claim_log(provenance)`)
	if err != nil {
		return fmt.Errorf("create idx_claim_log_provenance: %w", err)
	}
	return nil
}

func migrateRecordsProcessedAtIndex(db *sql.DB) error {
	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_records_processed_at'
	`).Scan(&name)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check idx_records_processed_at: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX idx_records_processed_at ON records(processed_at)`)
	if err != nil {
		return fmt.Errorf("create idx_records_processed_at: %w", err)
	}
	return nil
}
