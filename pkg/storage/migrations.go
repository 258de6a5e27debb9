// Package storage owns the database schema and its migration runner.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atelierhq/atelier/pkg/observability"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all schema migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create organizations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS organizations (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					plan VARCHAR(50) NOT NULL DEFAULT 'SOLO',
					addons_json JSONB,
					feature_blog BOOLEAN NOT NULL DEFAULT FALSE,
					feature_crm BOOLEAN NOT NULL DEFAULT FALSE,
					feature_emailing BOOLEAN NOT NULL DEFAULT FALSE,
					feature_shop BOOLEAN NOT NULL DEFAULT FALSE,
					feature_whatsapp BOOLEAN NOT NULL DEFAULT FALSE,
					feature_sms BOOLEAN NOT NULL DEFAULT FALSE,
					feature_social_media BOOLEAN NOT NULL DEFAULT FALSE,
					feature_stock BOOLEAN NOT NULL DEFAULT FALSE,
					feature_multi_location BOOLEAN NOT NULL DEFAULT FALSE,
					feature_multi_user BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_organizations_plan ON organizations(plan);
			`,
		},
		{
			Version:     2,
			Description: "Create invoices table",
			SQL: `
				CREATE TABLE IF NOT EXISTS invoices (
					id BIGSERIAL PRIMARY KEY,
					org_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
					number VARCHAR(50) NOT NULL UNIQUE,
					amount_cents BIGINT NOT NULL,
					currency VARCHAR(3) NOT NULL DEFAULT 'eur',
					period_start TIMESTAMP NOT NULL,
					period_end TIMESTAMP NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					metadata JSONB,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_invoices_org_id ON invoices(org_id);
				CREATE INDEX idx_invoices_status ON invoices(status);
				CREATE INDEX idx_invoices_period_start ON invoices(period_start);
			`,
		},
	}
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB, logger *observability.Logger) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate migrations: %w", err)
	}

	for _, migration := range GetMigrations() {
		if applied[migration.Version] {
			continue
		}

		logger.WithFields(map[string]interface{}{
			"version":     migration.Version,
			"description": migration.Description,
		}).Info("running migration")

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
