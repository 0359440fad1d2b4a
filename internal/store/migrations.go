package store

import "fmt"

// migrations are applied in order; migrations[i] brings the schema to
// version i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS sessions (
			id               TEXT PRIMARY KEY,
			start_time       TEXT NOT NULL,
			duration_minutes REAL NOT NULL,
			type             TEXT NOT NULL,
			source           TEXT NOT NULL DEFAULT 'cli',
			created_at       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at    TEXT NOT NULL,
			command     TEXT NOT NULL,
			version     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS aggregate_metrics (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id  INTEGER NOT NULL REFERENCES snapshots(id),
			metric_name  TEXT NOT NULL,
			metric_value REAL NOT NULL,
			detail       TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_aggregate_snapshot ON aggregate_metrics(snapshot_id)`,
	},
	{
		// Notes travel with a session for display only; the analyzer never
		// reads them.
		`ALTER TABLE sessions ADD COLUMN note TEXT`,
	},
}

// currentSchemaVersion is the latest schema version.
var currentSchemaVersion = len(migrations)

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

	for v := version; v < len(migrations); v++ {
		if err := db.migrateTo(v+1, migrations[v]); err != nil {
			return fmt.Errorf("migration v%d: %w", v+1, err)
		}
	}

	return nil
}

// SchemaVersion returns the version recorded in schema_version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

// migrateTo executes statements in a single transaction and records version.
func (db *DB) migrateTo(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", truncate(stmt, 40), err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}

	return tx.Commit()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
