package clients

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturo/facturo/internal/bankaccounts"
	"github.com/facturo/facturo/internal/companies"
	"github.com/facturo/facturo/internal/database"
	"github.com/facturo/facturo/internal/entity"
	"github.com/facturo/facturo/internal/validate"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func betaParams() CreateParams {
	return CreateParams{
		Name:       "Beta Consulting SRL",
		Address:    "2 Side St",
		City:       "Iasi",
		County:     "Iasi",
		FiscalCode: "RO555",
	}
}

func ptr(s string) *string { return &s }

func TestCreate_RegistrationNumberOptional(t *testing.T) {
	m := New(newTestDB(t))

	id, err := m.Create(betaParams())
	require.NoError(t, err)

	client, err := m.Get(id)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Nil(t, client.RegistrationNumber)
	assert.True(t, client.VATPayer)

	p := betaParams()
	p.FiscalCode = "RO556"
	p.RegistrationNumber = ptr("bad-regnum")
	_, err = m.Create(p)
	assert.True(t, validate.IsValidation(err), "present registration number is format-checked: %v", err)
}

func TestCreate_DuplicateFiscalCode(t *testing.T) {
	m := New(newTestDB(t))

	_, err := m.Create(betaParams())
	require.NoError(t, err)

	p := betaParams()
	p.Name = "Other"
	_, err = m.Create(p)
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))
	assert.Contains(t, err.Error(), "RO555")
}

func TestFiscalCodeNamespaces_AreIndependent(t *testing.T) {
	db := newTestDB(t)
	clientMgr := New(db)
	companyMgr := companies.New(db)

	_, err := clientMgr.Create(betaParams())
	require.NoError(t, err)

	// The same fiscal code on a company is a different namespace.
	_, err = companyMgr.Create(companies.CreateParams{
		Name:               "Beta SA",
		Address:            "3 Main St",
		City:               "Iasi",
		County:             "Iasi",
		RegistrationNumber: "J22/10/2019",
		FiscalCode:         "RO555",
	})
	assert.NoError(t, err)
}

func TestRoundTrip_ByIDAndFiscalCode(t *testing.T) {
	m := New(newTestDB(t))

	p := betaParams()
	p.ContactPerson = ptr("Ana Pop")
	p.Notes = ptr("priority customer")
	id, err := m.Create(p)
	require.NoError(t, err)

	byID, err := m.Get(id)
	require.NoError(t, err)
	byCode, err := m.GetByFiscalCode("RO555")
	require.NoError(t, err)

	require.NotNil(t, byID)
	require.NotNil(t, byCode)
	assert.Equal(t, byID.ID, byCode.ID)
	assert.Equal(t, byID.ContactPerson, byCode.ContactPerson)
	assert.Equal(t, byID.Notes, byCode.Notes)
}

func TestUpdate_FiscalCodeCollision(t *testing.T) {
	m := New(newTestDB(t))

	first, err := m.Create(betaParams())
	require.NoError(t, err)

	p := betaParams()
	p.FiscalCode = "RO556"
	_, err = m.Create(p)
	require.NoError(t, err)

	_, err = m.Update(first, Update{FiscalCode: ptr("RO556")})
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))
}

func TestUpdate_NoFieldsIsNoOp(t *testing.T) {
	m := New(newTestDB(t))

	id, err := m.Create(betaParams())
	require.NoError(t, err)

	found, err := m.Update(id, Update{})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = m.Update(99, Update{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDelete_CascadesBankAccounts(t *testing.T) {
	db := newTestDB(t)
	m := New(db)

	id, err := m.Create(betaParams())
	require.NoError(t, err)

	_, err = m.AddBankAccount(id, bankaccounts.CreateParams{
		BankName:      "Test Bank",
		AccountNumber: "123",
		IsDefault:     true,
	})
	require.NoError(t, err)

	client, err := m.Get(id)
	require.NoError(t, err)
	require.NotNil(t, client.DefaultBankAccount)

	removed, err := m.Delete(id)
	require.NoError(t, err)
	assert.True(t, removed)

	accounts, err := bankaccounts.New(db).ByOwner(entity.Ref{Kind: entity.KindClient, ID: id})
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestAddBankAccount_MissingClientFailsLoudly(t *testing.T) {
	m := New(newTestDB(t))

	_, err := m.AddBankAccount(42, bankaccounts.CreateParams{BankName: "B", AccountNumber: "1"})
	var nfe *entity.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, entity.KindClient, nfe.Kind)
}

func TestSetDefaultBankAccount_CrossKindOwnershipRejected(t *testing.T) {
	db := newTestDB(t)
	clientMgr := New(db)
	companyMgr := companies.New(db)

	companyID, err := companyMgr.Create(companies.CreateParams{
		Name:               "Acme SRL",
		Address:            "1 Main St",
		City:               "Bucharest",
		County:             "Bucharest",
		RegistrationNumber: "J12/345/2021",
		FiscalCode:         "RO1",
	})
	require.NoError(t, err)

	clientID, err := clientMgr.Create(betaParams())
	require.NoError(t, err)
	require.Equal(t, companyID, clientID, "ids collide across tables by construction")

	accountID, err := companyMgr.AddBankAccount(companyID, bankaccounts.CreateParams{
		BankName:      "B",
		AccountNumber: "1",
	})
	require.NoError(t, err)

	// The account's owner id matches the client id, but the kind differs.
	err = clientMgr.SetDefaultBankAccount(clientID, accountID)
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))
}
