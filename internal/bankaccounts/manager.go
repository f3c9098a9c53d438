// Package bankaccounts manages bank account records. Every account is
// owned by exactly one company or client, and at most one account per
// owner carries the default flag at any time.
package bankaccounts

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/facturo/facturo/internal/database"
	"github.com/facturo/facturo/internal/entity"
	"github.com/facturo/facturo/internal/validate"
)

// DefaultCurrency is the home currency applied when none is given.
const DefaultCurrency = "RON"

// Account represents a bank account row.
type Account struct {
	ID            int64
	BankName      string
	AccountNumber string
	SwiftCode     *string
	IBAN          *string
	Currency      string
	Owner         entity.Ref
	IsDefault     bool
	CreatedAt     time.Time
}

// CreateParams are the inputs for a new account.
type CreateParams struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	SwiftCode     *string
	IBAN          *string
	Currency      string
	IsDefault     bool
}

// Update carries a partial field set. Nil fields are left untouched; the
// account id and owner are deliberately not representable here.
type Update struct {
	BankName      *string
	AccountNumber *string
	SwiftCode     *string
	IBAN          *string
	Currency      *string
	IsDefault     *bool
}

func (u Update) empty() bool {
	return u.BankName == nil && u.AccountNumber == nil && u.SwiftCode == nil &&
		u.IBAN == nil && u.Currency == nil && u.IsDefault == nil
}

// Manager provides CRUD over bank account records.
type Manager struct {
	db *database.DB
}

// New creates a bank account manager bound to db.
func New(db *database.DB) *Manager {
	return &Manager{db: db}
}

// Create inserts a new account for owner, clearing any existing default
// for that owner first when the new account is flagged default. Both steps
// run in one transaction.
func (m *Manager) Create(owner entity.Ref, p CreateParams) (int64, error) {
	var id int64
	err := m.db.Transaction(func(tx *sql.Tx) error {
		var err error
		id, err = m.CreateIn(tx, owner, p)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CreateIn is Create running inside the caller's transaction scope.
func (m *Manager) CreateIn(q database.Querier, owner entity.Ref, p CreateParams) (int64, error) {
	if err := validateOwner(owner); err != nil {
		return 0, err
	}
	if err := validate.Check(p); err != nil {
		return 0, err
	}
	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	if p.IsDefault {
		if err := clearDefault(q, owner); err != nil {
			return 0, err
		}
	}

	result, err := q.Exec(`
		INSERT INTO bank_accounts (bank_name, account_number, swift_code, iban, currency, entity_id, entity_type, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.BankName, p.AccountNumber, database.PtrToNullString(p.SwiftCode), database.PtrToNullString(p.IBAN),
		currency, owner.ID, owner.Kind.String(), p.IsDefault)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, validate.Failf("account_number",
				"account %q already exists for %s", p.AccountNumber, owner)
		}
		return 0, fmt.Errorf("failed to create bank account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get bank account id: %w", err)
	}

	log.Debug().Int64("id", id).Str("owner", owner.String()).Msg("Bank account created")
	return id, nil
}

// Get retrieves an account by id; a missing id yields nil, nil.
func (m *Manager) Get(id int64) (*Account, error) {
	return getAccount(m.db, id)
}

// ByOwner returns all accounts for an owner in insertion order.
func (m *Manager) ByOwner(owner entity.Ref) ([]Account, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	return byOwner(m.db, owner)
}

// Default returns the owner's default account, or nil when none is set.
func (m *Manager) Default(owner entity.Ref) (*Account, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	row := m.db.QueryRow(selectColumns+`
		FROM bank_accounts WHERE entity_id = ? AND entity_type = ? AND is_default = 1
	`, owner.ID, owner.Kind.String())
	return scanAccount(row)
}

// Update applies a partial update. The boolean result reports whether the
// account existed; an all-nil update is a no-op success. Setting the
// default flag clears the owner's previous default in the same
// transaction.
func (m *Manager) Update(id int64, u Update) (bool, error) {
	found := false
	err := m.db.Transaction(func(tx *sql.Tx) error {
		account, err := getAccount(tx, id)
		if err != nil {
			return err
		}
		if account == nil {
			return nil
		}
		found = true

		if u.empty() {
			return nil
		}

		if u.IsDefault != nil && *u.IsDefault {
			if err := clearDefault(tx, account.Owner); err != nil {
				return err
			}
		}

		set := make([]string, 0, 6)
		args := make([]any, 0, 7)
		appendSet := func(column string, value any) {
			set = append(set, column+" = ?")
			args = append(args, value)
		}
		if u.BankName != nil {
			appendSet("bank_name", *u.BankName)
		}
		if u.AccountNumber != nil {
			appendSet("account_number", *u.AccountNumber)
		}
		if u.SwiftCode != nil {
			appendSet("swift_code", *u.SwiftCode)
		}
		if u.IBAN != nil {
			appendSet("iban", *u.IBAN)
		}
		if u.Currency != nil {
			appendSet("currency", *u.Currency)
		}
		if u.IsDefault != nil {
			appendSet("is_default", *u.IsDefault)
		}
		args = append(args, id)

		if _, err := tx.Exec(
			"UPDATE bank_accounts SET "+strings.Join(set, ", ")+" WHERE id = ?", args...,
		); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return validate.Failf("account_number",
					"account %q already exists for %s", *u.AccountNumber, account.Owner)
			}
			return fmt.Errorf("failed to update bank account: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Delete removes an account. The boolean result reports whether a row was
// removed; deleting an unknown id is not an error.
func (m *Manager) Delete(id int64) (bool, error) {
	result, err := m.db.Exec("DELETE FROM bank_accounts WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete bank account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

// DeleteByOwnerIn removes every account owned by owner inside the
// caller's transaction scope, returning the number of rows removed.
func (m *Manager) DeleteByOwnerIn(q database.Querier, owner entity.Ref) (int64, error) {
	result, err := q.Exec(
		"DELETE FROM bank_accounts WHERE entity_id = ? AND entity_type = ?",
		owner.ID, owner.Kind.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bank accounts for %s: %w", owner, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// SetDefault marks the account as its owner's default, clearing any
// previous default in the same transaction. Returns false when the
// account does not exist.
func (m *Manager) SetDefault(id int64) (bool, error) {
	found := false
	err := m.db.Transaction(func(tx *sql.Tx) error {
		var err error
		found, err = m.SetDefaultIn(tx, id)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// SetDefaultIn is SetDefault running inside the caller's transaction scope.
func (m *Manager) SetDefaultIn(q database.Querier, id int64) (bool, error) {
	account, err := getAccount(q, id)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}
	if err := clearDefault(q, account.Owner); err != nil {
		return false, err
	}
	if _, err := q.Exec("UPDATE bank_accounts SET is_default = 1 WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("failed to set default bank account: %w", err)
	}
	return true, nil
}

// GetIn retrieves an account inside the caller's transaction scope.
func (m *Manager) GetIn(q database.Querier, id int64) (*Account, error) {
	return getAccount(q, id)
}

const selectColumns = `
	SELECT id, bank_name, account_number, swift_code, iban, currency, entity_id, entity_type, is_default, created_at
`

func getAccount(q database.Querier, id int64) (*Account, error) {
	row := q.QueryRow(selectColumns+" FROM bank_accounts WHERE id = ?", id)
	return scanAccount(row)
}

func byOwner(q database.Querier, owner entity.Ref) ([]Account, error) {
	rows, err := q.Query(selectColumns+`
		FROM bank_accounts WHERE entity_id = ? AND entity_type = ? ORDER BY id
	`, owner.ID, owner.Kind.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func clearDefault(q database.Querier, owner entity.Ref) error {
	_, err := q.Exec(
		"UPDATE bank_accounts SET is_default = 0 WHERE entity_id = ? AND entity_type = ?",
		owner.ID, owner.Kind.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to clear default bank account for %s: %w", owner, err)
	}
	return nil
}

func validateOwner(owner entity.Ref) error {
	if owner.ID <= 0 {
		return validate.Failf("entity_id", "must be a positive identifier")
	}
	if !owner.Kind.Valid() {
		return validate.Failf("entity_type", "must be %q or %q", entity.KindCompany, entity.KindClient)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row *sql.Row) (*Account, error) {
	account, err := scanAccountRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func scanAccountRow(row scannable) (*Account, error) {
	var (
		account    Account
		swift      sql.NullString
		iban       sql.NullString
		entityType string
	)
	err := row.Scan(&account.ID, &account.BankName, &account.AccountNumber, &swift, &iban,
		&account.Currency, &account.Owner.ID, &entityType, &account.IsDefault, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank account: %w", err)
	}
	account.SwiftCode = database.NullStringToPtr(swift)
	account.IBAN = database.NullStringToPtr(iban)
	kind, err := entity.ParseKind(entityType)
	if err != nil {
		return nil, fmt.Errorf("corrupt bank account row %d: %w", account.ID, err)
	}
	account.Owner.Kind = kind
	return &account, nil
}
