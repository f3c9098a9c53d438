package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	log.Info().Msg("Running database migrations")

	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	log.Debug().Int("current_version", currentVersion).Msg("Current schema version")

	// Run migrations
	for _, migration := range migrations {
		if migration.Version > currentVersion {
			log.Info().Int("version", migration.Version).Str("name", migration.Name).Msg("Applying migration")

			if err := db.Transaction(func(tx *sql.Tx) error {
				// Execute migration SQL - split by semicolons and execute each statement
				// This ensures each statement is properly executed and errors are caught
				statements := splitSQLStatements(migration.SQL)
				for i, stmt := range statements {
					if _, err := tx.Exec(stmt); err != nil {
						return fmt.Errorf("migration %d statement %d failed: %w", migration.Version, i+1, err)
					}
				}

				// Record migration
				if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
					return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
				}

				return nil
			}); err != nil {
				return err
			}
		}
	}

	log.Info().Msg("Database migrations complete")
	return nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

// splitSQLStatements splits a SQL string into individual statements.
// It handles comments and only returns non-empty statements.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	lines := strings.Split(sql, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		// Skip empty lines and comments
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		// Check if line ends with semicolon (statement complete)
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	// Handle any remaining content without trailing semicolon
	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			-- Invoice issuers
			CREATE TABLE companies (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				address TEXT NOT NULL,
				city TEXT NOT NULL,
				county TEXT NOT NULL,
				postal_code TEXT,
				country TEXT NOT NULL DEFAULT 'Romania',
				registration_number TEXT NOT NULL,
				fiscal_code TEXT NOT NULL UNIQUE,
				vat_number TEXT,
				vat_payer INTEGER NOT NULL DEFAULT 1,
				email TEXT,
				phone TEXT,
				website TEXT,
				logo_path TEXT,
				default_bank_account INTEGER,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);

			-- Invoice recipients
			CREATE TABLE clients (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				address TEXT NOT NULL,
				city TEXT NOT NULL,
				county TEXT NOT NULL,
				postal_code TEXT,
				country TEXT NOT NULL DEFAULT 'Romania',
				registration_number TEXT,
				fiscal_code TEXT NOT NULL UNIQUE,
				vat_number TEXT,
				vat_payer INTEGER NOT NULL DEFAULT 1,
				email TEXT,
				phone TEXT,
				website TEXT,
				contact_person TEXT,
				notes TEXT,
				default_bank_account INTEGER,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);

			-- Bank accounts hang off either parent table; entity_type is a
			-- string discriminator because a foreign key cannot point at
			-- two possible tables
			CREATE TABLE bank_accounts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				bank_name TEXT NOT NULL,
				account_number TEXT NOT NULL,
				swift_code TEXT,
				iban TEXT,
				currency TEXT NOT NULL DEFAULT 'RON',
				entity_id INTEGER NOT NULL,
				entity_type TEXT NOT NULL CHECK (entity_type IN ('company', 'client')),
				is_default INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (entity_id, entity_type, account_number)
			);

			CREATE INDEX idx_bank_accounts_entity ON bank_accounts (entity_id, entity_type);

			-- Exchange-rate reference rows, stored as text and parsed with
			-- decimal to avoid float drift
			CREATE TABLE currency_rates (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				currency_code TEXT NOT NULL,
				exchange_rate TEXT NOT NULL,
				rate_date DATE NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (currency_code, rate_date)
			);

			INSERT OR IGNORE INTO currency_rates (currency_code, exchange_rate, rate_date)
			VALUES
				('RON', '1.0', date('now')),
				('EUR', '4.9', date('now')),
				('USD', '4.5', date('now')),
				('GBP', '5.7', date('now'));
		`,
	},
}
