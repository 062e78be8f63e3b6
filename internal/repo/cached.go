package repo

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/resilience"
)

// CachedCustomers is a read-through Redis cache in front of another customer lookup.
// Cache failures are logged and fall through to the source.
type CachedCustomers struct {
	Source customer.Lookup
	Cache  *Cache
	Logger zerolog.Logger
}

// FindByID implements customer.Lookup.
func (c CachedCustomers) FindByID(ctx context.Context, id string) (customer.Customer, error) {
	key := "cache:" + CustomerKey(id)
	var rec CustomerRecord
	hit, err := c.Cache.GetJSON(ctx, key, &rec)
	if err != nil {
		cacheFailure(c.Logger, err).Str("customer_id", id).Msg("customer cache read")
	}
	if hit {
		if cust, err := rec.Customer(); err == nil {
			return cust, nil
		}
	}
	cust, err := c.Source.FindByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := c.Cache.SetJSON(ctx, key, CustomerToRecord(cust)); err != nil {
		cacheFailure(c.Logger, err).Str("customer_id", id).Msg("customer cache write")
	}
	return cust, nil
}

// CachedProducts is a read-through Redis cache in front of another product lookup.
type CachedProducts struct {
	Source catalog.Lookup
	Cache  *Cache
	Logger zerolog.Logger
}

// FindByID implements catalog.Lookup.
func (c CachedProducts) FindByID(ctx context.Context, id string) (catalog.Product, error) {
	key := "cache:" + ProductKey(id)
	var rec ProductRecord
	hit, err := c.Cache.GetJSON(ctx, key, &rec)
	if err != nil {
		cacheFailure(c.Logger, err).Str("product_id", id).Msg("product cache read")
	}
	if hit {
		if p, err := rec.Product(); err == nil {
			return p, nil
		}
	}
	p, err := c.Source.FindByID(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := c.Cache.SetJSON(ctx, key, ProductToRecord(p)); err != nil {
		cacheFailure(c.Logger, err).Str("product_id", id).Msg("product cache write")
	}
	return p, nil
}

// cacheFailure logs at debug while the breaker is open, since every lookup would repeat it.
func cacheFailure(logger zerolog.Logger, err error) *zerolog.Event {
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return logger.Debug().Err(err)
	}
	return logger.Warn().Err(err)
}
