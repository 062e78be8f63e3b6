// Package seed loads the demo customers and products used in development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// Sample ids, stable across runs so requests can be scripted against them.
const (
	EmployeeID  = "65a1b2c3d4e5f6a7b8c9d0e1"
	AffiliateID = "65a1b2c3d4e5f6a7b8c9d0e2"
	LoyalID     = "65a1b2c3d4e5f6a7b8c9d0e3"
	RegularID   = "65a1b2c3d4e5f6a7b8c9d0e4"

	LaptopID = "65a1b2c3d4e5f6a7b8c9d0f1"
	AppleID  = "65a1b2c3d4e5f6a7b8c9d0f2"
	ShirtID  = "65a1b2c3d4e5f6a7b8c9d0f3"
	BookID   = "65a1b2c3d4e5f6a7b8c9d0f4"
)

// CustomerStore is a customer lookup that can also persist customers.
type CustomerStore interface {
	customer.Lookup
	SaveCustomer(ctx context.Context, c customer.Customer) error
}

// ProductStore is a product lookup that can also persist products.
type ProductStore interface {
	catalog.Lookup
	SaveProduct(ctx context.Context, p catalog.Product) error
}

// Summary reports how many records Load wrote.
type Summary struct {
	Customers int
	Products  int
}

type sampleCustomer struct {
	id, name, email string
	kind            customer.Kind
	age             func(time.Time) time.Time
}

var sampleCustomers = []sampleCustomer{
	{EmployeeID, "abdullah alqahtani", "anqorithm@protonmail.com", customer.KindEmployee, func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) }},
	{AffiliateID, "sarah almutairi", "sarah.almutairi@partner.com", customer.KindAffiliate, func(t time.Time) time.Time { return t.AddDate(-2, 0, 0) }},
	{LoyalID, "mohammed alghamdi", "mohammed.alghamdi@customer.com", customer.KindRegular, func(t time.Time) time.Time { return t.AddDate(-3, 0, 0) }},
	{RegularID, "fatima alharbi", "fatima.alharbi@customer.com", customer.KindRegular, func(t time.Time) time.Time { return t.AddDate(0, -6, 0) }},
}

var sampleProducts = []catalog.Product{
	{ID: LaptopID, Name: "gaming laptop", Description: "high-performance gaming laptop", Category: catalog.CategoryElectronics, Price: pricing.MustMoney("1500.00")},
	{ID: AppleID, Name: "fresh apples", Description: "organic red apples per kg", Category: catalog.CategoryGrocery, Price: pricing.MustMoney("5.99")},
	{ID: ShirtID, Name: "cotton t-shirt", Description: "100% cotton casual t-shirt", Category: catalog.CategoryClothing, Price: pricing.MustMoney("25.00")},
	{ID: BookID, Name: "programming book", Description: "learn go programming", Category: catalog.CategoryBooks, Price: pricing.MustMoney("45.00")},
}

// Customers returns the sample customers with registration dates relative to now.
func Customers(now time.Time) ([]customer.Customer, error) {
	out := make([]customer.Customer, 0, len(sampleCustomers))
	for _, s := range sampleCustomers {
		c, err := customer.New(s.id, s.name, s.email, s.kind, s.age(now))
		if err != nil {
			return nil, fmt.Errorf("sample customer %s: %w", s.id, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Products returns the sample catalog.
func Products() []catalog.Product {
	return lo.Map(sampleProducts, func(p catalog.Product, _ int) catalog.Product { return p })
}

// Load writes the sample data unless it is already present. Customers and
// products are checked separately, each by its first sample id.
func Load(ctx context.Context, customers CustomerStore, products ProductStore, now time.Time) (Summary, error) {
	var summary Summary

	seeded, err := exists(customers.FindByID(ctx, EmployeeID))
	if err != nil {
		return summary, err
	}
	if !seeded {
		list, err := Customers(now)
		if err != nil {
			return summary, err
		}
		for _, c := range list {
			if err := customers.SaveCustomer(ctx, c); err != nil {
				return summary, fmt.Errorf("save customer %s: %w", c.ID, err)
			}
			summary.Customers++
		}
	}

	seeded, err = exists(products.FindByID(ctx, LaptopID))
	if err != nil {
		return summary, err
	}
	if !seeded {
		for _, p := range Products() {
			if err := products.SaveProduct(ctx, p); err != nil {
				return summary, fmt.Errorf("save product %s: %w", p.ID, err)
			}
			summary.Products++
		}
	}
	return summary, nil
}

func exists[T any](_ T, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, customer.ErrCustomerNotFound), errors.Is(err, catalog.ErrProductNotFound):
		return false, nil
	default:
		return false, err
	}
}
