package bill

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-billing/internal/pricing"
)

var (
	// ErrEmptyBill is returned when constructing a bill without items.
	ErrEmptyBill = errors.New("bill must have at least one item")
	// ErrAlreadyFinalized is returned when mutating or finalizing a finalized bill.
	ErrAlreadyFinalized = errors.New("bill is already finalized")
	// ErrItemNotFound is returned when removing an item index that does not exist.
	ErrItemNotFound = errors.New("bill item not found")
)

// Status is the bookkeeping lifecycle of a bill.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusFinalized Status = "FINALIZED"
)

// Bill aggregates the items bought by one customer. Derived amounts are
// recomputed on every mutation.
type Bill struct {
	id         string
	customerID string
	items      []Item
	status     Status
	createdAt  time.Time
	updatedAt  time.Time

	subtotal       pricing.Money
	eligibleAmount pricing.Money
	nonGrocery     pricing.Money
	discount       pricing.Money
}

// New creates a draft bill. It fails with ErrEmptyBill when items is empty.
func New(customerID string, items []Item) (*Bill, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBill
	}
	now := time.Now().UTC()
	b := &Bill{
		id:         uuid.NewString(),
		customerID: customerID,
		items:      append([]Item(nil), items...),
		status:     StatusDraft,
		createdAt:  now,
		updatedAt:  now,
	}
	b.recalculate()
	return b, nil
}

func (b *Bill) ID() string           { return b.id }
func (b *Bill) CustomerID() string   { return b.customerID }
func (b *Bill) Status() Status       { return b.status }
func (b *Bill) CreatedAt() time.Time { return b.createdAt }
func (b *Bill) UpdatedAt() time.Time { return b.updatedAt }

// Items returns a copy of the bill lines in insertion order.
func (b *Bill) Items() []Item {
	return append([]Item(nil), b.items...)
}

// Subtotal is the sum of all line totals.
func (b *Bill) Subtotal() pricing.Money { return b.subtotal }

// EligibleAmount is the sum of line totals eligible for percentage discounts.
func (b *Bill) EligibleAmount() pricing.Money { return b.eligibleAmount }

// NonGroceryAmount is the sum of line totals outside the grocery category.
func (b *Bill) NonGroceryAmount() pricing.Money { return b.nonGrocery }

// HasNonGroceryItems reports whether any non-grocery value is on the bill.
func (b *Bill) HasNonGroceryItems() bool { return !b.nonGrocery.IsZero() }

// IsEmpty reports whether the bill has no lines.
func (b *Bill) IsEmpty() bool { return len(b.items) == 0 }

// Discount is the discount last applied with ApplyDiscount.
func (b *Bill) Discount() pricing.Money { return b.discount }

// NetAmount is the subtotal minus the applied discount, never negative.
func (b *Bill) NetAmount() pricing.Money { return b.subtotal.Sub(b.discount) }

// IsFinalized reports whether the bill has been finalized.
func (b *Bill) IsFinalized() bool { return b.status == StatusFinalized }

// AddItem appends a line to a draft bill.
func (b *Bill) AddItem(item Item) error {
	if b.IsFinalized() {
		return ErrAlreadyFinalized
	}
	b.items = append(b.items, item)
	b.touch()
	return nil
}

// RemoveItem drops the line at index from a draft bill.
func (b *Bill) RemoveItem(index int) error {
	if b.IsFinalized() {
		return ErrAlreadyFinalized
	}
	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("%w: index %d", ErrItemNotFound, index)
	}
	b.items = append(b.items[:index], b.items[index+1:]...)
	b.touch()
	return nil
}

// ApplyDiscount records the discount granted on the bill.
func (b *Bill) ApplyDiscount(amount pricing.Money) error {
	if b.IsFinalized() {
		return ErrAlreadyFinalized
	}
	b.discount = amount
	b.updatedAt = time.Now().UTC()
	return nil
}

// Finalize moves the bill from draft to finalized. It can only happen once.
func (b *Bill) Finalize() error {
	if b.IsFinalized() {
		return ErrAlreadyFinalized
	}
	b.status = StatusFinalized
	b.updatedAt = time.Now().UTC()
	return nil
}

func (b *Bill) touch() {
	b.recalculate()
	b.updatedAt = time.Now().UTC()
}

func (b *Bill) recalculate() {
	subtotal := pricing.Zero()
	eligible := pricing.Zero()
	nonGrocery := pricing.Zero()
	for _, it := range b.items {
		subtotal = subtotal.Add(it.Total())
		eligible = eligible.Add(it.EligibleAmount())
		if !it.IsGrocery() {
			nonGrocery = nonGrocery.Add(it.Total())
		}
	}
	b.subtotal = subtotal
	b.eligibleAmount = eligible
	b.nonGrocery = nonGrocery
}
