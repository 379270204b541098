package db

// Supported drivers
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// Table definitions shared by both drivers. Timestamps are stored as Unix
// nanoseconds so that both engines round-trip them identically.
var tableStatements = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
    id VARCHAR PRIMARY KEY,
    seq BIGINT NOT NULL,
    owner_id VARCHAR NOT NULL,
    name VARCHAR NOT NULL,
    name_folded VARCHAR NOT NULL,
    kind VARCHAR NOT NULL,
    parent_id VARCHAR,
    is_trashed BOOLEAN NOT NULL DEFAULT FALSE,
    original_parent_id VARCHAR,
    storage_path VARCHAR,
    mime_type VARCHAR,
    size_bytes BIGINT NOT NULL DEFAULT 0,
    checksum VARCHAR,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS shares (
    id VARCHAR PRIMARY KEY,
    file_id VARCHAR NOT NULL,
    shared_by_user_id VARCHAR NOT NULL,
    shared_with_user_id VARCHAR NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (file_id, shared_with_user_id)
)`,
	`CREATE TABLE IF NOT EXISTS profiles (
    user_id VARCHAR PRIMARY KEY,
    plan VARCHAR NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
    id VARCHAR PRIMARY KEY,
    email VARCHAR NOT NULL UNIQUE,
    password_hash VARCHAR NOT NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
    token_hash VARCHAR PRIMARY KEY,
    user_id VARCHAR NOT NULL,
    expires_at BIGINT NOT NULL
)`,
}

// Secondary indexes. Only created on SQLite: DuckDB rewrites updates of
// indexed columns as delete+insert, which trips its primary-key check when
// parent_id changes on move.
var sqliteIndexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_nodes_owner_parent ON nodes(owner_id, parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_owner_trashed ON nodes(owner_id, is_trashed)`,
	`CREATE INDEX IF NOT EXISTS idx_shares_recipient ON shares(shared_with_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

// BuildSchemaStatements returns the DDL to run for a driver, in order
func BuildSchemaStatements(driver string) []string {
	stmts := append([]string{}, tableStatements...)
	if driver == DriverSQLite {
		stmts = append(stmts, sqliteIndexStatements...)
	}
	return stmts
}

// nodeColumns is the canonical column order used by scanNode
const nodeColumns = `id, owner_id, name, kind, parent_id, is_trashed, original_parent_id,
storage_path, mime_type, size_bytes, checksum, created_at, updated_at`
