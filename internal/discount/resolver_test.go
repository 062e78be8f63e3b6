package discount

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/bill"
	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

var (
	fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	tv      = catalog.Product{ID: "p-tv", Name: "television", Category: catalog.CategoryElectronics, Price: pricing.MustMoney("999.00")}
	grocery = catalog.Product{ID: "p-apple", Name: "apples", Category: catalog.CategoryGrocery, Price: pricing.MustMoney("5.99")}
	rice    = catalog.Product{ID: "p-rice", Name: "rice", Category: catalog.CategoryGrocery, Price: pricing.MustMoney("5.99")}
	speaker = catalog.Product{ID: "p-speaker", Name: "speaker", Category: catalog.CategoryElectronics, Price: pricing.MustMoney("100.00")}
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultConfig(), func() time.Time { return fixedNow })
	require.NoError(t, err)
	return r
}

func newCustomer(t *testing.T, kind customer.Kind, registeredAt time.Time) customer.Customer {
	t.Helper()
	c, err := customer.New("c-"+string(kind), "name", "mail@example.com", kind, registeredAt)
	require.NoError(t, err)
	return c
}

func newBill(t *testing.T, lines ...any) *bill.Bill {
	t.Helper()
	var items []bill.Item
	for i := 0; i < len(lines); i += 2 {
		it, err := bill.NewItem(lines[i].(catalog.Product), lines[i+1].(int))
		require.NoError(t, err)
		items = append(items, it)
	}
	b, err := bill.New("c1", items)
	require.NoError(t, err)
	return b
}

func money(s string) pricing.Money { return pricing.MustMoney(s) }

func requireMoney(t *testing.T, want string, got pricing.Money) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "want %s got %s", want, got)
}

func TestEmployeeWithGroceries(t *testing.T) {
	r := newResolver(t)
	res := r.Resolve(newBill(t, tv, 1, grocery, 10), newCustomer(t, customer.KindEmployee, fixedNow.AddDate(-1, 0, 0)))

	requireMoney(t, "1058.90", res.Subtotal)
	requireMoney(t, "299.70", res.PercentageDiscount)
	require.NotNil(t, res.PercentageKind)
	require.Equal(t, KindEmployee, *res.PercentageKind)
	requireMoney(t, "50.00", res.BillBasedDiscount)
	requireMoney(t, "349.70", res.TotalDiscount)
	requireMoney(t, "709.20", res.NetAmount)
}

func TestLoyalRegularCustomer(t *testing.T) {
	r := newResolver(t)
	res := r.Resolve(newBill(t, tv, 1, grocery, 1), newCustomer(t, customer.KindRegular, fixedNow.AddDate(-3, 0, 0)))

	requireMoney(t, "1004.99", res.Subtotal)
	requireMoney(t, "49.95", res.PercentageDiscount)
	require.Equal(t, KindLoyalty, *res.PercentageKind)
	requireMoney(t, "50.00", res.BillBasedDiscount)
	requireMoney(t, "99.95", res.TotalDiscount)
	requireMoney(t, "905.04", res.NetAmount)
}

func TestNewRegularCustomerGetsOnlyBillBased(t *testing.T) {
	r := newResolver(t)
	res := r.Resolve(newBill(t, tv, 1, grocery, 1), newCustomer(t, customer.KindRegular, fixedNow.AddDate(0, -6, 0)))

	requireMoney(t, "0.00", res.PercentageDiscount)
	require.Nil(t, res.PercentageKind)
	requireMoney(t, "50.00", res.BillBasedDiscount)
	requireMoney(t, "50.00", res.TotalDiscount)
	requireMoney(t, "954.99", res.NetAmount)
}

func TestGroceryOnlyBillGetsNoPercentageDiscount(t *testing.T) {
	r := newResolver(t)
	kinds := []customer.Kind{customer.KindEmployee, customer.KindAffiliate, customer.KindRegular}
	for _, k := range kinds {
		res := r.Resolve(newBill(t, rice, 20), newCustomer(t, k, fixedNow.AddDate(-5, 0, 0)))
		requireMoney(t, "119.80", res.Subtotal)
		requireMoney(t, "0.00", res.PercentageDiscount)
		requireMoney(t, "5.00", res.BillBasedDiscount)
		requireMoney(t, "114.80", res.NetAmount)
	}
}

func TestAffiliateAtThresholdBoundary(t *testing.T) {
	r := newResolver(t)
	res := r.Resolve(newBill(t, speaker, 1), newCustomer(t, customer.KindAffiliate, fixedNow))

	requireMoney(t, "10.00", res.PercentageDiscount)
	require.Equal(t, KindAffiliate, *res.PercentageKind)
	requireMoney(t, "5.00", res.BillBasedDiscount)
	requireMoney(t, "15.00", res.TotalDiscount)
	requireMoney(t, "85.00", res.NetAmount)
}

func TestPercentageDiscountsAreExclusive(t *testing.T) {
	b := newBill(t, tv, 2, grocery, 3)
	policies := newResolver(t).Policies()[:3]

	for _, k := range []customer.Kind{customer.KindEmployee, customer.KindAffiliate, customer.KindRegular} {
		for _, registered := range []time.Time{fixedNow, fixedNow.AddDate(-4, 0, 0)} {
			c := newCustomer(t, k, registered)
			nonZero := 0
			for _, p := range policies {
				if !p.Amount(b, c, fixedNow).IsZero() {
					nonZero++
				}
			}
			require.LessOrEqual(t, nonZero, 1, "kind %s", k)
		}
	}
}

func TestBillBasedTiers(t *testing.T) {
	p, err := BillBased(money("100"), money("5"))
	require.NoError(t, err)
	c := newCustomer(t, customer.KindRegular, fixedNow)

	cases := []struct {
		price string
		want  string
	}{
		{"99.99", "0.00"},
		{"100.00", "5.00"},
		{"199.99", "5.00"},
		{"250.00", "10.00"},
		{"1058.90", "50.00"},
	}
	prev := pricing.Zero()
	for _, tc := range cases {
		item, err := bill.NewItem(catalog.Product{ID: "x", Category: catalog.CategoryOther, Price: money(tc.price)}, 1)
		require.NoError(t, err)
		b, err := bill.New("c1", []bill.Item{item})
		require.NoError(t, err)
		got := p.Amount(b, c, fixedNow)
		requireMoney(t, tc.want, got)
		require.True(t, got.GreaterThanOrEqual(prev), "monotonic at %s", tc.price)
		prev = got
	}
}

func TestBillBasedRejectsZeroThreshold(t *testing.T) {
	_, err := BillBased(pricing.Zero(), money("5"))
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmployeePercentage = decimal.NewFromInt(120)
	_, err := NewResolver(cfg, nil)
	require.ErrorIs(t, err, pricing.ErrInvalidPercentage)

	cfg = DefaultConfig()
	cfg.BillDiscountAmount = decimal.NewFromInt(-1)
	_, err = NewResolver(cfg, nil)
	require.ErrorIs(t, err, pricing.ErrInvalidAmount)

	cfg = DefaultConfig()
	cfg.BillThreshold = decimal.Zero
	_, err = NewResolver(cfg, nil)
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestDescriptionsAndKinds(t *testing.T) {
	policies := newResolver(t).Policies()
	require.Equal(t, "30% discount for employees", policies[0].Description())
	require.Equal(t, "10% discount for affiliates on non-grocery items", policies[1].Description())
	require.Equal(t, "5% discount for loyal customers (2+ years)", policies[2].Description())
	require.Equal(t, "$5.00 for every $100.00 on the bill", policies[3].Description())

	for i, p := range policies {
		require.Equal(t, i+1, p.Kind().Priority())
		require.Equal(t, p.Kind() != KindBillBased, p.Kind().PercentageBased())
	}
	require.Equal(t, "no discount", Policy{}.Description())
}

func TestResolveIsSafeForConcurrentUse(t *testing.T) {
	r := newResolver(t)
	b := newBill(t, tv, 1, grocery, 10)
	c := newCustomer(t, customer.KindEmployee, fixedNow)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(b, c)
		}(i)
	}
	wg.Wait()
	for _, res := range results {
		requireMoney(t, "709.20", res.NetAmount)
	}
}
