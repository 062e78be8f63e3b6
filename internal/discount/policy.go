package discount

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/backend-billing/internal/bill"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// ErrInvalidPolicy is returned when a policy is configured with unusable values.
var ErrInvalidPolicy = errors.New("invalid discount policy")

// Kind tags a discount policy.
type Kind string

const (
	KindEmployee  Kind = "EMPLOYEE"
	KindAffiliate Kind = "AFFILIATE"
	KindLoyalty   Kind = "LOYALTY"
	KindBillBased Kind = "BILL_BASED"
)

// Priority is the evaluation order of the kind; lower runs first.
func (k Kind) Priority() int {
	switch k {
	case KindEmployee:
		return 1
	case KindAffiliate:
		return 2
	case KindLoyalty:
		return 3
	case KindBillBased:
		return 4
	default:
		return 0
	}
}

// PercentageBased reports whether the kind grants a rate on the non-grocery amount.
func (k Kind) PercentageBased() bool {
	return k == KindEmployee || k == KindAffiliate || k == KindLoyalty
}

// Policy is one of the four discount variants. Construct it with Employee,
// Affiliate, Loyalty or BillBased; the zero value grants nothing.
type Policy struct {
	kind      Kind
	rate      pricing.Percentage
	threshold pricing.Money
	amount    pricing.Money
}

// Employee grants rate on the eligible amount to employees.
func Employee(rate pricing.Percentage) Policy {
	return Policy{kind: KindEmployee, rate: rate}
}

// Affiliate grants rate on the non-grocery amount to affiliates.
func Affiliate(rate pricing.Percentage) Policy {
	return Policy{kind: KindAffiliate, rate: rate}
}

// Loyalty grants rate on the eligible amount to loyal regular customers.
func Loyalty(rate pricing.Percentage) Policy {
	return Policy{kind: KindLoyalty, rate: rate}
}

// BillBased grants amount for every full threshold reached by the subtotal.
func BillBased(threshold, amount pricing.Money) (Policy, error) {
	if threshold.IsZero() {
		return Policy{}, fmt.Errorf("%w: bill threshold must be greater than zero", ErrInvalidPolicy)
	}
	return Policy{kind: KindBillBased, threshold: threshold, amount: amount}, nil
}

func (p Policy) Kind() Kind                   { return p.kind }
func (p Policy) Rate() pricing.Percentage     { return p.rate }
func (p Policy) Threshold() pricing.Money     { return p.threshold }
func (p Policy) AmountPerTier() pricing.Money { return p.amount }

// Description is a human readable summary of the configured policy.
func (p Policy) Description() string {
	switch p.kind {
	case KindEmployee:
		return fmt.Sprintf("%s%% discount for employees", p.rate.Decimal().String())
	case KindAffiliate:
		return fmt.Sprintf("%s%% discount for affiliates on non-grocery items", p.rate.Decimal().String())
	case KindLoyalty:
		return fmt.Sprintf("%s%% discount for loyal customers (2+ years)", p.rate.Decimal().String())
	case KindBillBased:
		return fmt.Sprintf("%s for every %s on the bill", p.amount, p.threshold)
	default:
		return "no discount"
	}
}

// Applicable reports whether the policy grants anything for the bill and customer at now.
func (p Policy) Applicable(b *bill.Bill, c customer.Customer, now time.Time) bool {
	if b == nil || b.IsEmpty() {
		return false
	}
	switch p.kind {
	case KindEmployee:
		return c.IsEmployee()
	case KindAffiliate:
		return c.IsAffiliate() && b.HasNonGroceryItems()
	case KindLoyalty:
		return c.IsLoyal(now)
	case KindBillBased:
		return b.Subtotal().GreaterThanOrEqual(p.threshold)
	default:
		return false
	}
}

// Amount computes the discount granted by the policy. It is zero when the policy is not applicable.
func (p Policy) Amount(b *bill.Bill, c customer.Customer, now time.Time) pricing.Money {
	if !p.Applicable(b, c, now) {
		return pricing.Zero()
	}
	switch p.kind {
	case KindEmployee, KindLoyalty:
		return p.rate.ApplyTo(b.EligibleAmount())
	case KindAffiliate:
		return p.rate.ApplyTo(b.NonGroceryAmount())
	case KindBillBased:
		return p.amount.Mul(Tiers(b.Subtotal(), p.threshold))
	default:
		return pricing.Zero()
	}
}
