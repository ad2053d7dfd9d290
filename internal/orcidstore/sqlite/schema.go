package sqlite

// schema is applied once, on every open, with CREATE TABLE IF NOT EXISTS —
// the same idempotent-DDL approach the rest of the migrations in this
// package follow. New columns go through migrations.go instead of being
// added here, so existing databases upgrade in place.
const schema = `
CREATE TABLE IF NOT EXISTS author_profiles (
    orcidid    TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    facts      TEXT NOT NULL DEFAULT '{}',
    status     TEXT NOT NULL DEFAULT '',
    account_id INTEGER,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS claim_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    orcidid    TEXT NOT NULL,
    bibcode    TEXT NOT NULL,
    status     TEXT NOT NULL,
    provenance TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claim_log_orcidid ON claim_log(orcidid);
CREATE INDEX IF NOT EXISTS idx_claim_log_bibcode ON claim_log(bibcode);

CREATE TABLE IF NOT EXISTS records (
    bibcode    TEXT PRIMARY KEY,
    authors    TEXT NOT NULL DEFAULT '[]',
    verified   TEXT NOT NULL DEFAULT '[]',
    unverified TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    processed_at DATETIME
);

CREATE TABLE IF NOT EXISTS change_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    key        TEXT NOT NULL,
    old_value  TEXT NOT NULL DEFAULT '',
    new_value  TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_change_log_key ON change_log(key);

CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
