package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/bill"
	"github.com/noah-isme/backend-billing/internal/billing"
	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/discount"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/pricing"
	"github.com/noah-isme/backend-billing/internal/repo"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *billing.Service {
	t.Helper()
	ctx := context.Background()
	customers := repo.NewMemoryCustomers()
	for _, c := range []struct {
		id         string
		kind       customer.Kind
		registered time.Time
	}{
		{"emp", customer.KindEmployee, now.AddDate(-1, 0, 0)},
		{"aff", customer.KindAffiliate, now.AddDate(-2, 0, 0)},
		{"loyal", customer.KindRegular, now.AddDate(-3, 0, 0)},
		{"new", customer.KindRegular, now.AddDate(0, -6, 0)},
	} {
		cust, err := customer.New(c.id, c.id, c.id+"@example.com", c.kind, c.registered)
		require.NoError(t, err)
		require.NoError(t, customers.SaveCustomer(ctx, cust))
	}

	products := repo.NewMemoryProducts()
	for _, p := range []catalog.Product{
		{ID: "laptop", Name: "Laptop", Category: catalog.CategoryElectronics, Price: pricing.MustMoney("1500.00")},
		{ID: "apples", Name: "Fresh Apples", Category: catalog.CategoryGrocery, Price: pricing.MustMoney("5.99")},
		{ID: "tshirt", Name: "Cotton T-Shirt", Category: catalog.CategoryClothing, Price: pricing.MustMoney("25.00")},
	} {
		require.NoError(t, products.SaveProduct(ctx, p))
	}

	resolver, err := discount.NewResolver(discount.DefaultConfig(), func() time.Time { return now })
	require.NoError(t, err)
	return &billing.Service{
		Customers: customers,
		Products:  products,
		Resolver:  resolver,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return now },
	}
}

func mixedBill(customerID string) billing.Request {
	return billing.Request{
		CustomerID: customerID,
		Items: []billing.ItemRequest{
			{ProductID: "laptop", Quantity: 1},
			{ProductID: "apples", Quantity: 2},
		},
	}
}

func TestCalculateByClassification(t *testing.T) {
	svc := newService(t)
	cases := []struct {
		customer   string
		kind       *discount.Kind
		percentage string
		total      string
		net        string
	}{
		{"emp", kindPtr(discount.KindEmployee), "450.00", "525.00", "986.98"},
		{"aff", kindPtr(discount.KindAffiliate), "150.00", "225.00", "1286.98"},
		{"loyal", kindPtr(discount.KindLoyalty), "75.00", "150.00", "1361.98"},
		{"new", nil, "0.00", "75.00", "1436.98"},
	}
	for _, tc := range cases {
		t.Run(tc.customer, func(t *testing.T) {
			calc, err := svc.Calculate(context.Background(), mixedBill(tc.customer))
			require.NoError(t, err)
			require.Equal(t, "1511.98", money(calc.Subtotal))
			require.Equal(t, tc.kind, calc.PercentageKind)
			require.Equal(t, tc.percentage, money(calc.PercentageDiscount))
			require.Equal(t, "75.00", money(calc.BillBasedDiscount))
			require.Equal(t, tc.total, money(calc.TotalDiscount))
			require.Equal(t, tc.net, money(calc.NetAmount))
			require.Equal(t, now, calc.CalculatedAt)
			require.NotEmpty(t, calc.BillID)
			require.Len(t, calc.Items, 2)
			require.True(t, calc.Items[0].EligibleForPercentageDiscount)
			require.False(t, calc.Items[1].EligibleForPercentageDiscount)
			require.Equal(t, "11.98", money(calc.Items[1].TotalPrice))
		})
	}
}

func TestCalculateGroceryOnlyEmployee(t *testing.T) {
	svc := newService(t)
	calc, err := svc.Calculate(context.Background(), billing.Request{
		CustomerID: "emp",
		Items:      []billing.ItemRequest{{ProductID: "apples", Quantity: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, kindPtr(discount.KindEmployee), calc.PercentageKind)
	require.Equal(t, "0.00", money(calc.PercentageDiscount))
	require.Equal(t, "0.00", money(calc.BillBasedDiscount))
	require.Equal(t, "59.90", money(calc.NetAmount))
}

func TestCalculateUnitPriceOverride(t *testing.T) {
	svc := newService(t)
	override := pricing.MustMoney("20.00")
	calc, err := svc.Calculate(context.Background(), billing.Request{
		CustomerID: "new",
		Items:      []billing.ItemRequest{{ProductID: "tshirt", Quantity: 3, UnitPrice: &override}},
	})
	require.NoError(t, err)
	require.Equal(t, "20.00", money(calc.Items[0].UnitPrice))
	require.Equal(t, "60.00", money(calc.Subtotal))
	require.Equal(t, "60.00", money(calc.NetAmount))
}

func TestCalculateErrors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Calculate(ctx, mixedBill("ghost"))
	require.ErrorIs(t, err, customer.ErrCustomerNotFound)

	_, err = svc.Calculate(ctx, billing.Request{CustomerID: "emp", Items: []billing.ItemRequest{
		{ProductID: "laptop", Quantity: 1},
		{ProductID: "unicorn", Quantity: 1},
	}})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.Calculate(ctx, billing.Request{CustomerID: "emp", Items: []billing.ItemRequest{{ProductID: "laptop", Quantity: 0}}})
	require.ErrorIs(t, err, bill.ErrInvalidQuantity)

	_, err = svc.Calculate(ctx, billing.Request{CustomerID: "emp"})
	require.ErrorIs(t, err, bill.ErrEmptyBill)

	var unconfigured *billing.Service
	_, err = unconfigured.Calculate(ctx, mixedBill("emp"))
	require.Error(t, err)
}

func TestCalculateRecordsMetrics(t *testing.T) {
	svc := newService(t)
	svc.Metrics = obs.NewBillMetrics("billing_test", prometheus.NewRegistry())

	_, err := svc.Calculate(context.Background(), mixedBill("aff"))
	require.NoError(t, err)
	_, err = svc.Calculate(context.Background(), mixedBill("ghost"))
	require.Error(t, err)

	require.Equal(t, float64(1), testutil.ToFloat64(svc.Metrics.Calculations.WithLabelValues("ok", "AFFILIATE")))
	require.Equal(t, float64(1), testutil.ToFloat64(svc.Metrics.Calculations.WithLabelValues("not_found", "NONE")))
	require.Equal(t, float64(1), testutil.ToFloat64(svc.Metrics.Lookups.WithLabelValues("customer", "not_found")))
}

func kindPtr(k discount.Kind) *discount.Kind { return &k }

func money(m pricing.Money) string { return m.Decimal().StringFixed(2) }
