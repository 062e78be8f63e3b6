package bill

import (
	"errors"
	"fmt"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// ErrInvalidQuantity is returned when a line quantity is not a positive integer.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Item is one product line on a bill. Values are immutable after construction.
type Item struct {
	product   catalog.Product
	quantity  int
	unitPrice pricing.Money
	total     pricing.Money
}

// NewItem creates a line priced at the product's catalog price.
func NewItem(product catalog.Product, quantity int) (Item, error) {
	return NewItemWithPrice(product, quantity, product.Price)
}

// NewItemWithPrice creates a line with an explicit unit price.
func NewItemWithPrice(product catalog.Product, quantity int, unitPrice pricing.Money) (Item, error) {
	if quantity <= 0 {
		return Item{}, fmt.Errorf("%w: got %d for product %s", ErrInvalidQuantity, quantity, product.ID)
	}
	return Item{
		product:   product,
		quantity:  quantity,
		unitPrice: unitPrice,
		total:     unitPrice.MulInt(int64(quantity)),
	}, nil
}

func (i Item) Product() catalog.Product { return i.product }
func (i Item) Quantity() int            { return i.quantity }
func (i Item) UnitPrice() pricing.Money { return i.unitPrice }
func (i Item) Total() pricing.Money     { return i.total }
func (i Item) IsGrocery() bool          { return i.product.IsGrocery() }

// EligibleForPercentageDiscount reports whether the line counts towards percentage discounts.
func (i Item) EligibleForPercentageDiscount() bool {
	return i.product.EligibleForPercentageDiscount()
}

// EligibleAmount is the line total when eligible for percentage discounts, zero otherwise.
func (i Item) EligibleAmount() pricing.Money {
	if !i.EligibleForPercentageDiscount() {
		return pricing.Zero()
	}
	return i.total
}
