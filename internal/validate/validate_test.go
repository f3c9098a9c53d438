package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testParams struct {
	Name    string  `json:"name" validate:"required"`
	RegNum  string  `json:"registration_number" validate:"omitempty,regnum"`
	VATNum  *string `json:"vat_number" validate:"omitempty,vatnum"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,phone_intl"`
	Website *string `json:"website" validate:"omitempty,website_url"`
}

func ptr(s string) *string { return &s }

func TestCheck_Valid(t *testing.T) {
	err := Check(testParams{
		Name:    "Acme SRL",
		RegNum:  "J12/345/2021",
		VATNum:  ptr("RO12345678"),
		Email:   ptr("office@acme.ro"),
		Phone:   ptr("+40 721 123 456"),
		Website: ptr("https://acme.ro/about"),
	})
	assert.NoError(t, err)
}

func TestCheck_RegistrationNumberShapes(t *testing.T) {
	valid := []string{"123456", "1234567890", "RO123456", "J12/345/2021", "J5/1/1995"}
	for _, s := range valid {
		assert.NoError(t, Check(testParams{Name: "x", RegNum: s}), "expected %q to be valid", s)
	}

	invalid := []string{"12345", "12345678901", "ROx123456", "J123/345/2021", "j12/345/2021"}
	for _, s := range invalid {
		assert.Error(t, Check(testParams{Name: "x", RegNum: s}), "expected %q to be invalid", s)
	}
}

func TestCheck_VATNumber(t *testing.T) {
	assert.NoError(t, Check(testParams{Name: "x", VATNum: ptr("RO12")}))
	assert.NoError(t, Check(testParams{Name: "x", VATNum: ptr("DE123456789012")}))
	assert.Error(t, Check(testParams{Name: "x", VATNum: ptr("12345678")}))
	assert.Error(t, Check(testParams{Name: "x", VATNum: ptr("R012345678X")}))
}

func TestCheck_Phone(t *testing.T) {
	assert.NoError(t, Check(testParams{Name: "x", Phone: ptr("0721-123-456")}))
	assert.NoError(t, Check(testParams{Name: "x", Phone: ptr("+40 (21) 555 1234")}))
	assert.Error(t, Check(testParams{Name: "x", Phone: ptr("1234567")}))
	assert.Error(t, Check(testParams{Name: "x", Phone: ptr("not a phone")}))
}

func TestCheck_Website(t *testing.T) {
	assert.NoError(t, Check(testParams{Name: "x", Website: ptr("http://acme.ro")}))
	assert.NoError(t, Check(testParams{Name: "x", Website: ptr("https://acme.ro/path?q=1")}))
	assert.Error(t, Check(testParams{Name: "x", Website: ptr("acme.ro")}))
	assert.Error(t, Check(testParams{Name: "x", Website: ptr("ftp://acme.ro")}))
}

func TestCheck_ReportsAllViolationsTogether(t *testing.T) {
	err := Check(testParams{
		Name:  "",
		Email: ptr("not-an-email"),
		Phone: ptr("123"),
	})
	require.Error(t, err)

	verr, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	assert.ElementsMatch(t, []string{"name", "email", "phone"}, verr.Fields())
	assert.Contains(t, verr.Error(), `field "name" is required`)
	assert.Contains(t, verr.Error(), `field "email" invalid email format`)
}

func TestFailf(t *testing.T) {
	err := Failf("fiscal_code", "a company with fiscal code %q already exists", "RO1")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), `field "fiscal_code"`)
	assert.Contains(t, err.Error(), "RO1")
}

func TestIsValidation(t *testing.T) {
	assert.False(t, IsValidation(assert.AnError))
	assert.True(t, IsValidation(Failf("x", "bad")))
}
