// Package migrations applies the database schema. Versions are embedded and
// tracked with checksums in schema_migrations, so a changed migration is
// caught instead of silently diverging between environments.
package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
)

type migration struct {
	Version string
	SQL     string
}

// steps are applied in order; never edit an applied step, append a new one.
var steps = []migration{
	{
		Version: "001_documents",
		SQL: `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, key)
);`,
	},
	{
		Version: "002_document_indexes",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_documents_external_id
	ON documents ((doc->>'external_id')) WHERE collection = 'patients';
CREATE INDEX IF NOT EXISTS idx_documents_patient_id
	ON documents ((doc->>'patient_id')) WHERE collection IN ('sessions', 'reports');
CREATE INDEX IF NOT EXISTS idx_documents_start_time
	ON documents ((doc->>'start_time')) WHERE collection = 'sessions';`,
	},
}

// Migrator handles database schema migrations
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new migrator
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Up executes all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, step := range steps {
		sum := checksum(step.SQL)
		if prev, ok := applied[step.Version]; ok {
			if prev != sum {
				return fmt.Errorf("migration %s changed after being applied", step.Version)
			}
			continue
		}
		if err := m.applyMigration(ctx, step, sum); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", step.Version, err)
		}
	}
	return nil
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, sum string
		if err := rows.Scan(&version, &sum); err != nil {
			return nil, err
		}
		applied[version] = sum
	}
	return applied, rows.Err()
}

func (m *Migrator) applyMigration(ctx context.Context, step migration, sum string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)`,
		step.Version, sum); err != nil {
		return err
	}
	return tx.Commit()
}

func checksum(sqlText string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(sqlText)))
}
