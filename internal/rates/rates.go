// Package rates reads the currency exchange reference rows seeded at
// schema creation. The core record managers never mutate these.
package rates

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturo/facturo/internal/database"
)

// Rate is one (currency, date) reference row.
type Rate struct {
	Code string
	Rate decimal.Decimal
	Date time.Time
}

// Manager provides read access to the currency reference table.
type Manager struct {
	db *database.DB
}

// New creates a rates manager bound to db.
func New(db *database.DB) *Manager {
	return &Manager{db: db}
}

// List returns every reference row, newest date first, then by code.
func (m *Manager) List() ([]Rate, error) {
	rows, err := m.db.Query(`
		SELECT currency_code, exchange_rate, rate_date
		FROM currency_rates ORDER BY rate_date DESC, currency_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list currency rates: %w", err)
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// Get returns the most recent reference row for a currency code, or
// nil when the code is unknown.
func (m *Manager) Get(code string) (*Rate, error) {
	row := m.db.QueryRow(`
		SELECT currency_code, exchange_rate, rate_date
		FROM currency_rates WHERE currency_code = ?
		ORDER BY rate_date DESC LIMIT 1
	`, code)
	rate, err := scanRate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRate(row scannable) (Rate, error) {
	var (
		rate Rate
		raw  string
	)
	if err := row.Scan(&rate.Code, &raw, &rate.Date); err != nil {
		if err == sql.ErrNoRows {
			return Rate{}, err
		}
		return Rate{}, fmt.Errorf("failed to scan currency rate: %w", err)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return Rate{}, fmt.Errorf("corrupt exchange rate %q for %s: %w", raw, rate.Code, err)
	}
	rate.Rate = value
	return rate, nil
}
