package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/billing"
	"github.com/noah-isme/backend-billing/internal/discount"
	"github.com/noah-isme/backend-billing/internal/health"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/ratelimit"
	"github.com/noah-isme/backend-billing/internal/repo"
	"github.com/noah-isme/backend-billing/internal/seed"
)

func testRouter(t *testing.T, limit int) http.Handler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	customers, products := repo.NewRedisCustomers(client), repo.NewRedisProducts(client)
	_, err = seed.Load(context.Background(), customers, products, time.Now())
	require.NoError(t, err)

	resolver, err := discount.NewResolver(discount.DefaultConfig(), nil)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	svc := &billing.Service{
		Customers: customers,
		Products:  products,
		Resolver:  resolver,
		Metrics:   obs.NewBillMetrics("billing", registry),
		Logger:    zerolog.Nop(),
	}
	return newRouter(routerDeps{
		Logger:  zerolog.Nop(),
		Billing: &billing.Handler{Svc: svc, Logger: zerolog.Nop()},
		Health:  health.Handler{Checks: map[string]health.Check{"redis": health.Redis(client)}},
		RateLimit: ratelimit.Handler{
			Limiter: ratelimit.Limiter{Client: client, Prefix: "test:ratelimit:"},
			Config:  ratelimit.Config{Window: time.Minute, Max: limit},
		},
		HTTPMetrics: obs.NewHTTPMetrics("billing", nil, registry),
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		BodyLimit:   1 << 16,
	})
}

func calculate(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterCalculatesSeededBill(t *testing.T) {
	h := testRouter(t, 10)
	rr := calculate(h, `{"customerId":"`+seed.AffiliateID+`","items":[{"productId":"`+seed.LaptopID+`","quantity":1},{"productId":"`+seed.AppleID+`","quantity":3}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	var body struct {
		Data struct {
			Subtotal       json.Number `json:"subtotal"`
			PercentageType string      `json:"percentageDiscountType"`
			TotalDiscount  json.Number `json:"totalDiscount"`
			NetAmount      json.Number `json:"netAmount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, json.Number("1517.97"), body.Data.Subtotal)
	require.Equal(t, "AFFILIATE", body.Data.PercentageType)
	require.Equal(t, json.Number("225.00"), body.Data.TotalDiscount)
	require.Equal(t, json.Number("1292.97"), body.Data.NetAmount)

	metrics := httptest.NewRecorder()
	h.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, metrics.Body.String(), `billing_bill_calculations_total{percentage_kind="AFFILIATE",result="ok"} 1`)
}

func TestRouterRateLimitsCalculate(t *testing.T) {
	h := testRouter(t, 1)
	body := `{"customerId":"` + seed.RegularID + `","items":[{"productId":"` + seed.BookID + `","quantity":1}]}`
	require.Equal(t, http.StatusOK, calculate(h, body).Code)
	require.Equal(t, http.StatusTooManyRequests, calculate(h, body).Code)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/bills/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterHealthAndInfo(t *testing.T) {
	h := testRouter(t, 10)
	for _, path := range []string{"/", "/health/live", "/health/ready"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
	}
}
