package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCustomerNotFound is returned by lookups when no customer matches the identifier.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrInvalidClassification is returned when a classification tag is not recognised.
	ErrInvalidClassification = errors.New("invalid customer classification")
)

// LoyaltyPeriod is how long a regular customer must have been registered to count as loyal.
const LoyaltyPeriod = 2

// Kind is the tag of a Classification.
type Kind string

const (
	KindEmployee  Kind = "EMPLOYEE"
	KindAffiliate Kind = "AFFILIATE"
	KindRegular   Kind = "REGULAR"
)

// ParseKind resolves a classification tag case-insensitively.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(value))) {
	case KindEmployee:
		return KindEmployee, nil
	case KindAffiliate:
		return KindAffiliate, nil
	case KindRegular:
		return KindRegular, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClassification, value)
}

// Classification is exactly one of Employee, Affiliate or Regular.
// The set is closed: only this package can implement it.
type Classification interface {
	Kind() Kind
	classification()
}

// Employee marks a store employee.
type Employee struct{}

// Affiliate marks a partner of the store.
type Affiliate struct{}

// Regular is an ordinary customer; RegisteredAt drives loyalty.
type Regular struct {
	RegisteredAt time.Time
}

func (Employee) Kind() Kind  { return KindEmployee }
func (Affiliate) Kind() Kind { return KindAffiliate }
func (Regular) Kind() Kind   { return KindRegular }

func (Employee) classification()  {}
func (Affiliate) classification() {}
func (Regular) classification()   {}

// Customer is a buyer with a single exclusive classification.
type Customer struct {
	ID             string
	Name           string
	Email          string
	Classification Classification
	RegisteredAt   time.Time
}

// New builds a customer of the given kind. Regular customers carry registeredAt as their loyalty anchor.
func New(id, name, email string, kind Kind, registeredAt time.Time) (Customer, error) {
	var cls Classification
	switch kind {
	case KindEmployee:
		cls = Employee{}
	case KindAffiliate:
		cls = Affiliate{}
	case KindRegular:
		cls = Regular{RegisteredAt: registeredAt}
	default:
		return Customer{}, fmt.Errorf("%w: %q", ErrInvalidClassification, kind)
	}
	return Customer{ID: id, Name: name, Email: email, Classification: cls, RegisteredAt: registeredAt}, nil
}

// Kind returns the classification tag, or an empty kind when unclassified.
func (c Customer) Kind() Kind {
	if c.Classification == nil {
		return ""
	}
	return c.Classification.Kind()
}

// IsEmployee reports whether the customer is an employee.
func (c Customer) IsEmployee() bool {
	_, ok := c.Classification.(Employee)
	return ok
}

// IsAffiliate reports whether the customer is an affiliate.
func (c Customer) IsAffiliate() bool {
	_, ok := c.Classification.(Affiliate)
	return ok
}

// IsLoyal reports whether the customer is a regular customer registered more than two years before now.
func (c Customer) IsLoyal(now time.Time) bool {
	r, ok := c.Classification.(Regular)
	if !ok {
		return false
	}
	return r.RegisteredAt.Before(now.AddDate(-LoyaltyPeriod, 0, 0))
}

// Reclassify changes the customer's classification, keeping the registration date.
func (c *Customer) Reclassify(kind Kind) error {
	updated, err := New(c.ID, c.Name, c.Email, kind, c.RegisteredAt)
	if err != nil {
		return err
	}
	c.Classification = updated.Classification
	return nil
}

// Lookup resolves customers by identifier. Implementations return ErrCustomerNotFound when absent.
type Lookup interface {
	FindByID(ctx context.Context, id string) (Customer, error)
}
