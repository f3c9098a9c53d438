// Package clients manages client (invoice recipient) records and the bank
// accounts attached to them. It mirrors the companies package over its own
// table: fiscal codes are unique among clients but independent of company
// fiscal codes.
package clients

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/facturo/facturo/internal/bankaccounts"
	"github.com/facturo/facturo/internal/database"
	"github.com/facturo/facturo/internal/entity"
	"github.com/facturo/facturo/internal/validate"
)

// Client represents a client row.
type Client struct {
	ID                 int64
	Name               string
	Address            string
	City               string
	County             string
	PostalCode         *string
	Country            string
	RegistrationNumber *string
	FiscalCode         string
	VATNumber          *string
	VATPayer           bool
	Email              *string
	Phone              *string
	Website            *string
	ContactPerson      *string
	Notes              *string
	DefaultBankAccount *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Ref returns the entity reference for this client.
func (c *Client) Ref() entity.Ref {
	return entity.Ref{Kind: entity.KindClient, ID: c.ID}
}

// CreateParams are the inputs for a new client. Unlike companies, the
// registration number is optional, but it is format-checked when present.
type CreateParams struct {
	Name               string  `json:"name" validate:"required"`
	Address            string  `json:"address" validate:"required"`
	City               string  `json:"city" validate:"required"`
	County             string  `json:"county" validate:"required"`
	PostalCode         *string `json:"postal_code"`
	Country            string  `json:"country"`
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,regnum"`
	FiscalCode         string  `json:"fiscal_code" validate:"required"`
	VATNumber          *string `json:"vat_number" validate:"omitempty,vatnum"`
	VATPayer           *bool   `json:"vat_payer"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Phone              *string `json:"phone" validate:"omitempty,phone_intl"`
	Website            *string `json:"website" validate:"omitempty,website_url"`
	ContactPerson      *string `json:"contact_person"`
	Notes              *string `json:"notes"`
}

// Update carries a partial field set; nil fields are left untouched.
type Update struct {
	Name               *string `json:"name"`
	Address            *string `json:"address"`
	City               *string `json:"city"`
	County             *string `json:"county"`
	PostalCode         *string `json:"postal_code"`
	Country            *string `json:"country"`
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,regnum"`
	FiscalCode         *string `json:"fiscal_code"`
	VATNumber          *string `json:"vat_number" validate:"omitempty,vatnum"`
	VATPayer           *bool   `json:"vat_payer"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Phone              *string `json:"phone" validate:"omitempty,phone_intl"`
	Website            *string `json:"website" validate:"omitempty,website_url"`
	ContactPerson      *string `json:"contact_person"`
	Notes              *string `json:"notes"`
}

// Filter narrows List results.
type Filter struct {
	Name       string
	City       string
	County     string
	Country    string
	FiscalCode string
	SortByName bool
}

// Manager provides CRUD over client records.
type Manager struct {
	db       *database.DB
	accounts *bankaccounts.Manager
}

// New creates a client manager bound to db.
func New(db *database.DB) *Manager {
	return &Manager{db: db, accounts: bankaccounts.New(db)}
}

// Create validates and inserts a new client, returning its id.
func (m *Manager) Create(p CreateParams) (int64, error) {
	if err := validate.Check(p); err != nil {
		return 0, err
	}
	if p.Country == "" {
		p.Country = "Romania"
	}
	vatPayer := true
	if p.VATPayer != nil {
		vatPayer = *p.VATPayer
	}

	var id int64
	err := m.db.Transaction(func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRow("SELECT id FROM clients WHERE fiscal_code = ?", p.FiscalCode).Scan(&existing)
		if err == nil {
			return validate.Failf("fiscal_code", "a client with fiscal code %q already exists", p.FiscalCode)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check fiscal code: %w", err)
		}

		result, err := tx.Exec(`
			INSERT INTO clients (name, address, city, county, postal_code, country,
				registration_number, fiscal_code, vat_number, vat_payer, email, phone, website,
				contact_person, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.Name, p.Address, p.City, p.County, database.PtrToNullString(p.PostalCode), p.Country,
			database.PtrToNullString(p.RegistrationNumber), p.FiscalCode,
			database.PtrToNullString(p.VATNumber), vatPayer,
			database.PtrToNullString(p.Email), database.PtrToNullString(p.Phone),
			database.PtrToNullString(p.Website), database.PtrToNullString(p.ContactPerson),
			database.PtrToNullString(p.Notes))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return validate.Failf("fiscal_code", "a client with fiscal code %q already exists", p.FiscalCode)
			}
			return fmt.Errorf("failed to create client: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get client id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("id", id).Str("fiscal_code", p.FiscalCode).Msg("Client created")
	return id, nil
}

// Get retrieves a client by id; a missing id yields nil, nil.
func (m *Manager) Get(id int64) (*Client, error) {
	return getClient(m.db, id)
}

// GetByFiscalCode retrieves a client by fiscal code; absence yields nil, nil.
func (m *Manager) GetByFiscalCode(code string) (*Client, error) {
	row := m.db.QueryRow(selectColumns+" FROM clients WHERE fiscal_code = ?", code)
	return scanClient(row)
}

// List returns clients matching the filter.
func (m *Manager) List(f Filter) ([]Client, error) {
	query := selectColumns + " FROM clients"
	var conditions []string
	var args []any
	like := func(column, value string) {
		conditions = append(conditions, column+" LIKE ?")
		args = append(args, "%"+value+"%")
	}
	if f.Name != "" {
		like("name", f.Name)
	}
	if f.City != "" {
		like("city", f.City)
	}
	if f.County != "" {
		like("county", f.County)
	}
	if f.Country != "" {
		conditions = append(conditions, "country = ?")
		args = append(args, f.Country)
	}
	if f.FiscalCode != "" {
		conditions = append(conditions, "fiscal_code = ?")
		args = append(args, f.FiscalCode)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if f.SortByName {
		query += " ORDER BY name"
	} else {
		query += " ORDER BY id"
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		client, err := scanClientRow(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, rows.Err()
}

// Update applies a partial update. The boolean result reports whether the
// client existed; an all-nil update is a no-op success.
func (m *Manager) Update(id int64, u Update) (bool, error) {
	if err := checkUpdate(u); err != nil {
		return false, err
	}

	found := false
	err := m.db.Transaction(func(tx *sql.Tx) error {
		client, err := getClient(tx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return nil
		}
		found = true

		set, args := buildSet(u)
		if len(set) == 0 {
			return nil
		}

		if u.FiscalCode != nil && *u.FiscalCode != client.FiscalCode {
			var other int64
			err := tx.QueryRow("SELECT id FROM clients WHERE fiscal_code = ? AND id <> ?",
				*u.FiscalCode, id).Scan(&other)
			if err == nil {
				return validate.Failf("fiscal_code", "a client with fiscal code %q already exists", *u.FiscalCode)
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("failed to check fiscal code: %w", err)
			}
		}

		set = append(set, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := tx.Exec(
			"UPDATE clients SET "+strings.Join(set, ", ")+" WHERE id = ?", args...,
		); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Delete removes a client and every bank account it owns, as one
// transaction.
func (m *Manager) Delete(id int64) (bool, error) {
	removed := false
	err := m.db.Transaction(func(tx *sql.Tx) error {
		ref := entity.Ref{Kind: entity.KindClient, ID: id}
		if _, err := m.accounts.DeleteByOwnerIn(tx, ref); err != nil {
			return err
		}
		result, err := tx.Exec("DELETE FROM clients WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		log.Debug().Int64("id", id).Msg("Client deleted")
	}
	return removed, nil
}

// AddBankAccount attaches a new bank account to the client, failing
// loudly when the client does not exist.
func (m *Manager) AddBankAccount(id int64, p bankaccounts.CreateParams) (int64, error) {
	var accountID int64
	err := m.db.Transaction(func(tx *sql.Tx) error {
		client, err := getClient(tx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return &entity.NotFoundError{Kind: entity.KindClient, ID: id}
		}

		accountID, err = m.accounts.CreateIn(tx, client.Ref(), p)
		if err != nil {
			return err
		}
		if p.IsDefault {
			return setDefaultRef(tx, id, accountID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return accountID, nil
}

// BankAccounts lists the client's bank accounts, failing loudly when the
// client does not exist.
func (m *Manager) BankAccounts(id int64) ([]bankaccounts.Account, error) {
	client, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &entity.NotFoundError{Kind: entity.KindClient, ID: id}
	}
	return m.accounts.ByOwner(client.Ref())
}

// SetDefaultBankAccount marks an account the client already owns as its
// default and updates the back-reference, as one transaction.
func (m *Manager) SetDefaultBankAccount(id, accountID int64) error {
	return m.db.Transaction(func(tx *sql.Tx) error {
		client, err := getClient(tx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return &entity.NotFoundError{Kind: entity.KindClient, ID: id}
		}

		account, err := m.accounts.GetIn(tx, accountID)
		if err != nil {
			return err
		}
		if account == nil || account.Owner != client.Ref() {
			return validate.Failf("account_id",
				"bank account %d does not exist or does not belong to client %d", accountID, id)
		}

		if _, err := m.accounts.SetDefaultIn(tx, accountID); err != nil {
			return err
		}
		return setDefaultRef(tx, id, accountID)
	})
}

func setDefaultRef(q database.Querier, id, accountID int64) error {
	if _, err := q.Exec(
		"UPDATE clients SET default_bank_account = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		accountID, id,
	); err != nil {
		return fmt.Errorf("failed to update default bank account reference: %w", err)
	}
	return nil
}

func checkUpdate(u Update) error {
	verr := &validate.Error{}
	requireNonEmpty := func(field string, value *string) {
		if value != nil && strings.TrimSpace(*value) == "" {
			verr.Violations = append(verr.Violations, validate.Violation{Field: field, Message: "is required"})
		}
	}
	requireNonEmpty("name", u.Name)
	requireNonEmpty("address", u.Address)
	requireNonEmpty("city", u.City)
	requireNonEmpty("county", u.County)
	requireNonEmpty("fiscal_code", u.FiscalCode)

	if err := validate.Check(u); err != nil {
		var ve *validate.Error
		if !errors.As(err, &ve) {
			return err
		}
		verr.Violations = append(verr.Violations, ve.Violations...)
	}
	if len(verr.Violations) > 0 {
		return verr
	}
	return nil
}

func buildSet(u Update) ([]string, []any) {
	var set []string
	var args []any
	add := func(column string, value any) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.City != nil {
		add("city", *u.City)
	}
	if u.County != nil {
		add("county", *u.County)
	}
	if u.PostalCode != nil {
		add("postal_code", *u.PostalCode)
	}
	if u.Country != nil {
		add("country", *u.Country)
	}
	if u.RegistrationNumber != nil {
		add("registration_number", *u.RegistrationNumber)
	}
	if u.FiscalCode != nil {
		add("fiscal_code", *u.FiscalCode)
	}
	if u.VATNumber != nil {
		add("vat_number", *u.VATNumber)
	}
	if u.VATPayer != nil {
		add("vat_payer", *u.VATPayer)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.Website != nil {
		add("website", *u.Website)
	}
	if u.ContactPerson != nil {
		add("contact_person", *u.ContactPerson)
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}
	return set, args
}

const selectColumns = `
	SELECT id, name, address, city, county, postal_code, country, registration_number,
		fiscal_code, vat_number, vat_payer, email, phone, website, contact_person, notes,
		default_bank_account, created_at, updated_at
`

func getClient(q database.Querier, id int64) (*Client, error) {
	row := q.QueryRow(selectColumns+" FROM clients WHERE id = ?", id)
	return scanClient(row)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanClient(row *sql.Row) (*Client, error) {
	client, err := scanClientRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func scanClientRow(row scannable) (*Client, error) {
	var (
		c                     Client
		postal, regnum, vat   sql.NullString
		email, phone, website sql.NullString
		contact, notes        sql.NullString
		defaultAccount        sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.County, &postal, &c.Country,
		&regnum, &c.FiscalCode, &vat, &c.VATPayer, &email, &phone, &website,
		&contact, &notes, &defaultAccount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	c.PostalCode = database.NullStringToPtr(postal)
	c.RegistrationNumber = database.NullStringToPtr(regnum)
	c.VATNumber = database.NullStringToPtr(vat)
	c.Email = database.NullStringToPtr(email)
	c.Phone = database.NullStringToPtr(phone)
	c.Website = database.NullStringToPtr(website)
	c.ContactPerson = database.NullStringToPtr(contact)
	c.Notes = database.NullStringToPtr(notes)
	c.DefaultBankAccount = database.NullInt64ToPtr(defaultAccount)
	return &c, nil
}
