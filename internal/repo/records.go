package repo

import (
	"fmt"
	"time"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// CustomerRecord is the storage shape of a customer.
type CustomerRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Type         string    `json:"type"`
	RegisteredAt time.Time `json:"registrationDate"`
}

// ProductRecord is the storage shape of a product.
type ProductRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category"`
	Price       pricing.Money `json:"price"`
}

// CustomerToRecord flattens a customer for storage.
func CustomerToRecord(c customer.Customer) CustomerRecord {
	return CustomerRecord{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Type:         string(c.Kind()),
		RegisteredAt: c.RegisteredAt.UTC(),
	}
}

// Customer rebuilds the domain value from its record.
func (r CustomerRecord) Customer() (customer.Customer, error) {
	kind, err := customer.ParseKind(r.Type)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("customer %s: %w", r.ID, err)
	}
	return customer.New(r.ID, r.Name, r.Email, kind, r.RegisteredAt)
}

// ProductToRecord flattens a product for storage.
func ProductToRecord(p catalog.Product) ProductRecord {
	return ProductRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Price:       p.Price,
	}
}

// Product rebuilds the domain value from its record.
func (r ProductRecord) Product() (catalog.Product, error) {
	category, err := catalog.ParseCategory(r.Category)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s: %w", r.ID, err)
	}
	return catalog.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    category,
		Price:       r.Price,
	}, nil
}
