package bankaccounts

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturo/facturo/internal/database"
	"github.com/facturo/facturo/internal/entity"
	"github.com/facturo/facturo/internal/validate"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return New(db)
}

func companyRef(id int64) entity.Ref {
	return entity.Ref{Kind: entity.KindCompany, ID: id}
}

func ptr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreateAndGet_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Create(companyRef(1), CreateParams{
		BankName:      "Test Bank",
		AccountNumber: "123456789",
		SwiftCode:     ptr("BTRLRO22"),
		IBAN:          ptr("RO49AAAA1B31007593840000"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	account, err := m.Get(id)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "Test Bank", account.BankName)
	assert.Equal(t, "123456789", account.AccountNumber)
	require.NotNil(t, account.SwiftCode)
	assert.Equal(t, "BTRLRO22", *account.SwiftCode)
	assert.Equal(t, DefaultCurrency, account.Currency)
	assert.Equal(t, companyRef(1), account.Owner)
	assert.False(t, account.IsDefault)
}

func TestGet_MissingYieldsNil(t *testing.T) {
	m := newTestManager(t)

	account, err := m.Get(99)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestCreate_Validation(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(companyRef(1), CreateParams{AccountNumber: "1"})
	assert.True(t, validate.IsValidation(err), "empty bank name: %v", err)

	_, err = m.Create(companyRef(1), CreateParams{BankName: "B"})
	assert.True(t, validate.IsValidation(err), "empty account number: %v", err)

	_, err = m.Create(companyRef(0), CreateParams{BankName: "B", AccountNumber: "1"})
	assert.True(t, validate.IsValidation(err), "non-positive owner id: %v", err)

	_, err = m.Create(entity.Ref{Kind: "vendor", ID: 1}, CreateParams{BankName: "B", AccountNumber: "1"})
	assert.True(t, validate.IsValidation(err), "bad owner kind: %v", err)
}

func TestCreate_DuplicateAccountNumberForOwner(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "1"})
	require.NoError(t, err)

	_, err = m.Create(companyRef(1), CreateParams{BankName: "Other", AccountNumber: "1"})
	assert.True(t, validate.IsValidation(err), "expected validation error, got %v", err)

	// Same number under a different owner is fine.
	_, err = m.Create(companyRef(2), CreateParams{BankName: "B", AccountNumber: "1"})
	assert.NoError(t, err)
}

func TestByOwner_InsertionOrder(t *testing.T) {
	m := newTestManager(t)

	for _, number := range []string{"111", "222", "333"} {
		_, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: number})
		require.NoError(t, err)
	}
	_, err := m.Create(entity.Ref{Kind: entity.KindClient, ID: 1}, CreateParams{BankName: "B", AccountNumber: "999"})
	require.NoError(t, err)

	accounts, err := m.ByOwner(companyRef(1))
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "111", accounts[0].AccountNumber)
	assert.Equal(t, "222", accounts[1].AccountNumber)
	assert.Equal(t, "333", accounts[2].AccountNumber)
}

func TestDefaultFlag_ClearedOnNewDefault(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "1", IsDefault: true})
	require.NoError(t, err)

	second, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "2", IsDefault: true})
	require.NoError(t, err)

	def, err := m.Default(companyRef(1))
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, second, def.ID)

	old, err := m.Get(first)
	require.NoError(t, err)
	assert.False(t, old.IsDefault)
}

func TestDefaultInvariant_RandomizedToggles(t *testing.T) {
	m := newTestManager(t)
	owner := companyRef(7)

	ids := make([]int64, 0, 5)
	for _, number := range []string{"a", "b", "c", "d", "e"} {
		id, err := m.Create(owner, CreateParams{BankName: "B", AccountNumber: number})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	rng := rand.New(rand.NewSource(1))
	for step := 0; step < 50; step++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			ok, err := m.SetDefault(id)
			require.NoError(t, err)
			assert.True(t, ok)
		case 1:
			_, err := m.Update(id, Update{IsDefault: boolPtr(true)})
			require.NoError(t, err)
		case 2:
			_, err := m.Update(id, Update{IsDefault: boolPtr(false)})
			require.NoError(t, err)
		}

		accounts, err := m.ByOwner(owner)
		require.NoError(t, err)
		defaults := 0
		for _, a := range accounts {
			if a.IsDefault {
				defaults++
			}
		}
		assert.LessOrEqual(t, defaults, 1, "more than one default after step %d", step)
	}
}

func TestUpdate_NoFieldsIsNoOp(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "1"})
	require.NoError(t, err)

	found, err := m.Update(id, Update{})
	require.NoError(t, err)
	assert.True(t, found)

	account, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "B", account.BankName)
	assert.Equal(t, "1", account.AccountNumber)
}

func TestUpdate_MissingAccount(t *testing.T) {
	m := newTestManager(t)

	found, err := m.Update(42, Update{BankName: ptr("New")})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdate_Fields(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "1"})
	require.NoError(t, err)

	found, err := m.Update(id, Update{BankName: ptr("New Bank"), Currency: ptr("EUR")})
	require.NoError(t, err)
	assert.True(t, found)

	account, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "New Bank", account.BankName)
	assert.Equal(t, "EUR", account.Currency)
	assert.Equal(t, companyRef(1), account.Owner, "owner must be untouched")
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "1"})
	require.NoError(t, err)

	removed, err := m.Delete(id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Delete(id)
	require.NoError(t, err)
	assert.False(t, removed, "second delete is a no-op, not an error")
}

func TestSetDefault_MissingAccount(t *testing.T) {
	m := newTestManager(t)

	ok, err := m.SetDefault(99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetDefault_IsolatedPerOwner(t *testing.T) {
	m := newTestManager(t)

	companyAccount, err := m.Create(companyRef(1), CreateParams{BankName: "B", AccountNumber: "1", IsDefault: true})
	require.NoError(t, err)

	clientRef := entity.Ref{Kind: entity.KindClient, ID: 1}
	clientAccount, err := m.Create(clientRef, CreateParams{BankName: "B", AccountNumber: "1", IsDefault: true})
	require.NoError(t, err)

	// Same numeric id, different kind: defaults must not interfere.
	ok, err := m.SetDefault(clientAccount)
	require.NoError(t, err)
	assert.True(t, ok)

	stillDefault, err := m.Get(companyAccount)
	require.NoError(t, err)
	assert.True(t, stillDefault.IsDefault)
}
