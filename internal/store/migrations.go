package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			uploaded_at TEXT NOT NULL,
			name        TEXT NOT NULL,
			row_count   INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS claim_rows (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id    INTEGER NOT NULL REFERENCES datasets(id),
			claim_id      TEXT NOT NULL,
			service_date  TEXT NOT NULL,
			date_paid     TEXT NOT NULL,
			billed_amount REAL NOT NULL,
			amount_paid   REAL NOT NULL,
			payer         TEXT NOT NULL,
			service_type  TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_claim_rows_dataset ON claim_rows(dataset_id)`,

		`DELETE FROM schema_version`,
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}
	return nil
}
