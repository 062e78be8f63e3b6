package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// DBTX is the subset of pgxpool.Pool used by the Postgres stores.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getCustomerSQL = `SELECT id, name, email, customer_type, registered_at FROM customers WHERE id = $1`

	upsertCustomerSQL = `INSERT INTO customers (id, name, email, customer_type, registered_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
    customer_type = EXCLUDED.customer_type, registered_at = EXCLUDED.registered_at, updated_at = now()`

	getProductSQL = `SELECT id, name, description, category, price::text FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (id, name, description, category, price)
VALUES ($1, $2, $3, $4, $5::numeric)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
    category = EXCLUDED.category, price = EXCLUDED.price, updated_at = now()`
)

// PostgresCustomers reads customers from the customers table.
type PostgresCustomers struct {
	DB DBTX
}

// FindByID implements customer.Lookup.
func (s PostgresCustomers) FindByID(ctx context.Context, id string) (customer.Customer, error) {
	var (
		rec          CustomerRecord
		registeredAt time.Time
	)
	err := s.DB.QueryRow(ctx, getCustomerSQL, id).Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Type, &registeredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return customer.Customer{}, fmt.Errorf("%w: %s", customer.ErrCustomerNotFound, id)
		}
		return customer.Customer{}, fmt.Errorf("query customer %s: %w", id, err)
	}
	rec.RegisteredAt = registeredAt
	return rec.Customer()
}

// SaveCustomer upserts c.
func (s PostgresCustomers) SaveCustomer(ctx context.Context, c customer.Customer) error {
	rec := CustomerToRecord(c)
	if _, err := s.DB.Exec(ctx, upsertCustomerSQL, rec.ID, rec.Name, rec.Email, rec.Type, rec.RegisteredAt); err != nil {
		return fmt.Errorf("upsert customer %s: %w", c.ID, err)
	}
	return nil
}

// PostgresProducts reads products from the products table.
type PostgresProducts struct {
	DB DBTX
}

// FindByID implements catalog.Lookup.
func (s PostgresProducts) FindByID(ctx context.Context, id string) (catalog.Product, error) {
	var (
		rec   ProductRecord
		price string
	)
	err := s.DB.QueryRow(ctx, getProductSQL, id).Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Category, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
		}
		return catalog.Product{}, fmt.Errorf("query product %s: %w", id, err)
	}
	rec.Price, err = pricing.ParseMoney(price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s price: %w", id, err)
	}
	return rec.Product()
}

// SaveProduct upserts p.
func (s PostgresProducts) SaveProduct(ctx context.Context, p catalog.Product) error {
	rec := ProductToRecord(p)
	price := rec.Price.Decimal().StringFixed(pricing.MoneyScale)
	if _, err := s.DB.Exec(ctx, upsertProductSQL, rec.ID, rec.Name, rec.Description, rec.Category, price); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}
