package repo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
)

const (
	customerKeyPrefix = "billing:customer:"
	productKeyPrefix  = "billing:product:"
)

// CustomerKey is the Redis key holding the customer record for id.
func CustomerKey(id string) string { return customerKeyPrefix + id }

// ProductKey is the Redis key holding the product record for id.
func ProductKey(id string) string { return productKeyPrefix + id }

// RedisCustomers stores customer records as JSON strings in Redis.
type RedisCustomers struct {
	cache *Cache
}

// NewRedisCustomers builds a Redis-backed customer store. Records never expire.
func NewRedisCustomers(client *redis.Client) *RedisCustomers {
	return &RedisCustomers{cache: NewCache(client, 0)}
}

// FindByID implements customer.Lookup.
func (s *RedisCustomers) FindByID(ctx context.Context, id string) (customer.Customer, error) {
	var rec CustomerRecord
	ok, err := s.cache.GetJSON(ctx, CustomerKey(id), &rec)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("redis get customer %s: %w", id, err)
	}
	if !ok {
		return customer.Customer{}, fmt.Errorf("%w: %s", customer.ErrCustomerNotFound, id)
	}
	return rec.Customer()
}

// SaveCustomer inserts or replaces c.
func (s *RedisCustomers) SaveCustomer(ctx context.Context, c customer.Customer) error {
	return s.cache.SetJSON(ctx, CustomerKey(c.ID), CustomerToRecord(c))
}

// RedisProducts stores product records as JSON strings in Redis.
type RedisProducts struct {
	cache *Cache
}

// NewRedisProducts builds a Redis-backed product store. Records never expire.
func NewRedisProducts(client *redis.Client) *RedisProducts {
	return &RedisProducts{cache: NewCache(client, 0)}
}

// FindByID implements catalog.Lookup.
func (s *RedisProducts) FindByID(ctx context.Context, id string) (catalog.Product, error) {
	var rec ProductRecord
	ok, err := s.cache.GetJSON(ctx, ProductKey(id), &rec)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("redis get product %s: %w", id, err)
	}
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
	}
	return rec.Product()
}

// SaveProduct inserts or replaces p.
func (s *RedisProducts) SaveProduct(ctx context.Context, p catalog.Product) error {
	return s.cache.SetJSON(ctx, ProductKey(p.ID), ProductToRecord(p))
}
