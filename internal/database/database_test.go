package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	for _, table := range []string{"companies", "clients", "bank_accounts", "currency_rates"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestMigrate_SeedsCurrencyRates(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM currency_rates").Scan(&count); err != nil {
		t.Fatalf("failed to count rates: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 seeded currency rates, got %d", count)
	}

	var rate string
	if err := db.QueryRow(
		"SELECT exchange_rate FROM currency_rates WHERE currency_code = 'EUR'",
	).Scan(&rate); err != nil {
		t.Fatalf("failed to read EUR rate: %v", err)
	}
	if rate != "4.9" {
		t.Fatalf("expected EUR rate 4.9, got %q", rate)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("first migrate failed: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to count applied migrations: %v", err)
	}
	if count != len(migrations) {
		t.Fatalf("expected %d applied migrations, got %d", len(migrations), count)
	}
}

func TestTransaction_CommitsOnNil(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	err := db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO companies (name, address, city, county, registration_number, fiscal_code)
			VALUES ('Tx SRL', 'Str. 1', 'Cluj', 'Cluj', 'J12/1/2020', 'RO100')
		`)
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed row, got %d rows", count)
	}
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	wantErr := fmt.Errorf("boom")
	err := db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO companies (name, address, city, county, registration_number, fiscal_code)
			VALUES ('Tx SRL', 'Str. 1', 'Cluj', 'Cluj', 'J12/1/2020', 'RO100')
		`); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected original error back, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave no rows, got %d", count)
	}
}

func TestSplitSQLStatements(t *testing.T) {
	statements := splitSQLStatements(`
		-- comment only
		CREATE TABLE a (id INTEGER);
		INSERT INTO a VALUES (1);
	`)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
	}
}
