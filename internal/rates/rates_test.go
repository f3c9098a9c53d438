package rates

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturo/facturo/internal/database"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return New(db)
}

func TestList_SeededRates(t *testing.T) {
	m := newTestManager(t)

	all, err := m.List()
	require.NoError(t, err)
	require.Len(t, all, 4)

	codes := make([]string, len(all))
	for i, r := range all {
		codes[i] = r.Code
	}
	assert.ElementsMatch(t, []string{"RON", "EUR", "USD", "GBP"}, codes)
}

func TestGet_KnownCode(t *testing.T) {
	m := newTestManager(t)

	rate, err := m.Get("EUR")
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.True(t, rate.Rate.Equal(decimal.RequireFromString("4.9")),
		"expected 4.9, got %s", rate.Rate)

	ron, err := m.Get("RON")
	require.NoError(t, err)
	require.NotNil(t, ron)
	assert.True(t, ron.Rate.Equal(decimal.NewFromInt(1)))
}

func TestGet_UnknownCodeYieldsNil(t *testing.T) {
	m := newTestManager(t)

	rate, err := m.Get("CHF")
	require.NoError(t, err)
	assert.Nil(t, rate)
}
