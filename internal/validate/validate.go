// Package validate wraps go-playground/validator with the field format
// rules used by Romanian invoicing records. All violations found in one
// pass are reported together in a single *Error.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Bare commerce-registry number (optionally country-prefixed CUI)
	// or the J-number shape issued by the trade registry.
	regnumBare = regexp.MustCompile(`^[A-Z]{0,2}\d{6,10}$`)
	regnumJ    = regexp.MustCompile(`^J\d{1,2}/\d{1,7}/\d{4}$`)

	vatnumRe  = regexp.MustCompile(`^[A-Z]{2}\d{2,12}$`)
	phoneRe   = regexp.MustCompile(`^\+?[0-9\s\-()]{8,20}$`)
	websiteRe = regexp.MustCompile(`^https?://[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(/.*)?$`)
)

var messages = map[string]string{
	"required":    "is required",
	"email":       "invalid email format",
	"regnum":      "invalid registration number format (expected ######, RO######, or J##/###/####)",
	"vatnum":      "invalid VAT number format (expected country code followed by 2-12 digits)",
	"phone_intl":  "invalid phone number format",
	"website_url": "invalid website format (expected http(s)://example.com)",
}

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report violations under the column-style json name, not the Go
	// struct field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("regnum", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return regnumBare.MatchString(s) || regnumJ.MatchString(s)
	})
	must("vatnum", func(fl validator.FieldLevel) bool {
		return vatnumRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	must("phone_intl", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	must("website_url", func(fl validator.FieldLevel) bool {
		return websiteRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	return v
}

// Violation is one failed rule on one field.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("field %q %s", v.Field, v.Message)
}

// Error collects every violation found during one validation pass.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

// Fields returns the names of all violating fields.
func (e *Error) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// Check validates struct tags on p and returns a *Error describing every
// failing field, or nil when p is valid.
func Check(p any) error {
	err := v.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation: %w", err)
	}
	out := &Error{}
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed rule %q", fe.Tag())
		}
		out.Violations = append(out.Violations, Violation{Field: fe.Field(), Message: msg})
	}
	return out
}

// Failf builds a single-violation *Error for checks that live outside
// struct tags, such as uniqueness conflicts.
func Failf(field, format string, args ...any) error {
	return &Error{Violations: []Violation{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}
