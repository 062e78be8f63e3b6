package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-billing/internal/pricing"
)

var (
	// ErrProductNotFound is returned by lookups when no product matches the identifier.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidCategory is returned when a category name is not recognised.
	ErrInvalidCategory = errors.New("invalid product category")
)

// Category classifies products. Grocery is the only category excluded from percentage discounts.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryGrocery     Category = "GROCERY"
	CategoryClothing    Category = "CLOTHING"
	CategoryBooks       Category = "BOOKS"
	CategoryHome        Category = "HOME"
	CategoryBeauty      Category = "BEAUTY"
	CategorySports      Category = "SPORTS"
	CategoryOther       Category = "OTHER"
)

var categories = []Category{
	CategoryElectronics,
	CategoryGrocery,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategoryBeauty,
	CategorySports,
	CategoryOther,
}

// Categories lists every known category.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(value string) (Category, error) {
	candidate := Category(strings.ToUpper(strings.TrimSpace(value)))
	for _, c := range categories {
		if c == candidate {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, value)
}

// Product is a purchasable catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Price       pricing.Money
}

// IsGrocery reports whether the product belongs to the grocery category.
func (p Product) IsGrocery() bool {
	return p.Category == CategoryGrocery
}

// EligibleForPercentageDiscount reports whether percentage discounts may apply to the product.
func (p Product) EligibleForPercentageDiscount() bool {
	return !p.IsGrocery()
}

// Lookup resolves products by identifier. Implementations return ErrProductNotFound when absent.
type Lookup interface {
	FindByID(ctx context.Context, id string) (Product, error)
}
