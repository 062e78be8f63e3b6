package bill

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

var (
	laptop = catalog.Product{ID: "p-laptop", Name: "laptop", Category: catalog.CategoryElectronics, Price: pricing.MustMoney("999.00")}
	apples = catalog.Product{ID: "p-apples", Name: "apples", Category: catalog.CategoryGrocery, Price: pricing.MustMoney("5.99")}
	book   = catalog.Product{ID: "p-book", Name: "book", Category: catalog.CategoryBooks, Price: pricing.MustMoney("45.00")}
)

func mustItem(t *testing.T, p catalog.Product, qty int) Item {
	t.Helper()
	it, err := NewItem(p, qty)
	require.NoError(t, err)
	return it
}

func TestNewItemRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, err := NewItem(laptop, qty)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestItemTotalsAndEligibility(t *testing.T) {
	it := mustItem(t, apples, 10)
	require.True(t, it.Total().Equal(pricing.MustMoney("59.90")))
	require.False(t, it.EligibleForPercentageDiscount())
	require.True(t, it.EligibleAmount().IsZero())

	override, err := NewItemWithPrice(laptop, 2, pricing.MustMoney("899.50"))
	require.NoError(t, err)
	require.True(t, override.UnitPrice().Equal(pricing.MustMoney("899.50")))
	require.True(t, override.Total().Equal(pricing.MustMoney("1799.00")))
	require.True(t, override.EligibleAmount().Equal(override.Total()))
}

func TestNewRejectsEmptyBill(t *testing.T) {
	_, err := New("c1", nil)
	require.ErrorIs(t, err, ErrEmptyBill)
}

func TestBillAggregates(t *testing.T) {
	b, err := New("c1", []Item{mustItem(t, laptop, 1), mustItem(t, apples, 10)})
	require.NoError(t, err)
	require.NotEmpty(t, b.ID())
	require.Equal(t, StatusDraft, b.Status())
	require.True(t, b.Subtotal().Equal(pricing.MustMoney("1058.90")))
	require.True(t, b.EligibleAmount().Equal(pricing.MustMoney("999.00")))
	require.True(t, b.NonGroceryAmount().Equal(pricing.MustMoney("999.00")))
	require.True(t, b.HasNonGroceryItems())
	require.False(t, b.IsEmpty())
}

func TestGroceryOnlyBillHasNoEligibleAmount(t *testing.T) {
	b, err := New("c1", []Item{mustItem(t, apples, 20)})
	require.NoError(t, err)
	require.True(t, b.Subtotal().Equal(pricing.MustMoney("119.80")))
	require.True(t, b.EligibleAmount().IsZero())
	require.False(t, b.HasNonGroceryItems())
}

func TestMutationsRecalculate(t *testing.T) {
	b, err := New("c1", []Item{mustItem(t, apples, 1)})
	require.NoError(t, err)

	require.NoError(t, b.AddItem(mustItem(t, book, 2)))
	require.Len(t, b.Items(), 2)
	require.True(t, b.Subtotal().Equal(pricing.MustMoney("95.99")))
	require.True(t, b.NonGroceryAmount().Equal(pricing.MustMoney("90.00")))

	require.NoError(t, b.RemoveItem(1))
	require.True(t, b.Subtotal().Equal(pricing.MustMoney("5.99")))
	require.False(t, b.HasNonGroceryItems())
	require.ErrorIs(t, b.RemoveItem(3), ErrItemNotFound)
}

func TestDiscountAndFinalizeLifecycle(t *testing.T) {
	b, err := New("c1", []Item{mustItem(t, book, 1)})
	require.NoError(t, err)

	require.NoError(t, b.ApplyDiscount(pricing.MustMoney("50.00")))
	require.True(t, b.NetAmount().IsZero(), "net amount is clamped at zero")

	require.NoError(t, b.ApplyDiscount(pricing.MustMoney("5.00")))
	require.True(t, b.NetAmount().Equal(pricing.MustMoney("40.00")))

	require.NoError(t, b.Finalize())
	require.True(t, b.IsFinalized())
	require.ErrorIs(t, b.Finalize(), ErrAlreadyFinalized)
	require.ErrorIs(t, b.AddItem(mustItem(t, apples, 1)), ErrAlreadyFinalized)
	require.ErrorIs(t, b.RemoveItem(0), ErrAlreadyFinalized)
	require.ErrorIs(t, b.ApplyDiscount(pricing.Zero()), ErrAlreadyFinalized)
}
