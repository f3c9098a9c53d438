// Package entity identifies the owner of a bank account: either a company
// or a client row. The discriminator is validated at parse time so an
// invalid kind never reaches the storage layer.
package entity

import "fmt"

// Kind discriminates between the two parent tables a bank account can
// belong to. It is stored as-is in the bank_accounts.entity_type column.
type Kind string

const (
	KindCompany Kind = "company"
	KindClient  Kind = "client"
)

// ParseKind validates a raw discriminator value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCompany, KindClient:
		return Kind(s), nil
	}
	return "", fmt.Errorf("invalid entity type %q (must be %q or %q)", s, KindCompany, KindClient)
}

// Valid reports whether the kind is one of the two known values.
func (k Kind) Valid() bool {
	return k == KindCompany || k == KindClient
}

func (k Kind) String() string {
	return string(k)
}

// Ref points at one company or client row.
type Ref struct {
	Kind Kind
	ID   int64
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d", r.Kind, r.ID)
}

// NotFoundError reports a missing entity that a nested operation required
// to exist, e.g. adding a bank account to an unknown company.
type NotFoundError struct {
	Kind Kind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Kind, e.ID)
}
