package discount

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-billing/internal/bill"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// Config carries the configured discount rates and thresholds.
type Config struct {
	EmployeePercentage  decimal.Decimal
	AffiliatePercentage decimal.Decimal
	LoyaltyPercentage   decimal.Decimal
	BillThreshold       decimal.Decimal
	BillDiscountAmount  decimal.Decimal
}

// DefaultConfig returns the stock rates: 30% employee, 10% affiliate, 5% loyalty and $5 per $100.
func DefaultConfig() Config {
	return Config{
		EmployeePercentage:  decimal.NewFromInt(30),
		AffiliatePercentage: decimal.NewFromInt(10),
		LoyaltyPercentage:   decimal.NewFromInt(5),
		BillThreshold:       decimal.NewFromInt(100),
		BillDiscountAmount:  decimal.NewFromInt(5),
	}
}

// Policies validates the configuration and builds the four policies in priority order.
func (c Config) Policies() ([]Policy, error) {
	employee, err := pricing.NewPercentage(c.EmployeePercentage)
	if err != nil {
		return nil, fmt.Errorf("employee percentage: %w", err)
	}
	affiliate, err := pricing.NewPercentage(c.AffiliatePercentage)
	if err != nil {
		return nil, fmt.Errorf("affiliate percentage: %w", err)
	}
	loyalty, err := pricing.NewPercentage(c.LoyaltyPercentage)
	if err != nil {
		return nil, fmt.Errorf("loyalty percentage: %w", err)
	}
	threshold, err := pricing.NewMoney(c.BillThreshold)
	if err != nil {
		return nil, fmt.Errorf("bill threshold: %w", err)
	}
	amount, err := pricing.NewMoney(c.BillDiscountAmount)
	if err != nil {
		return nil, fmt.Errorf("bill discount amount: %w", err)
	}
	billBased, err := BillBased(threshold, amount)
	if err != nil {
		return nil, err
	}
	return []Policy{Employee(employee), Affiliate(affiliate), Loyalty(loyalty), billBased}, nil
}

// Result is the discount breakdown of one bill.
type Result struct {
	Subtotal           pricing.Money `json:"subtotal"`
	PercentageDiscount pricing.Money `json:"percentageBasedDiscount"`
	PercentageKind     *Kind         `json:"percentageDiscountType"`
	BillBasedDiscount  pricing.Money `json:"billBasedDiscount"`
	TotalDiscount      pricing.Money `json:"totalDiscount"`
	NetAmount          pricing.Money `json:"netAmount"`
}

// Resolver combines one classification-based percentage discount with the
// bill-based discount. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	employee  Policy
	affiliate Policy
	loyalty   Policy
	billBased Policy
	now       func() time.Time
}

// NewResolver builds a resolver from cfg. now defaults to time.Now.
func NewResolver(cfg Config, now func() time.Time) (*Resolver, error) {
	policies, err := cfg.Policies()
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		employee:  policies[0],
		affiliate: policies[1],
		loyalty:   policies[2],
		billBased: policies[3],
		now:       now,
	}, nil
}

// Policies returns the configured policies in priority order.
func (r *Resolver) Policies() []Policy {
	return []Policy{r.employee, r.affiliate, r.loyalty, r.billBased}
}

// Resolve computes the discount breakdown for b and c.
func (r *Resolver) Resolve(b *bill.Bill, c customer.Customer) Result {
	now := r.now()
	subtotal := b.Subtotal()

	pct, kind := r.percentage(b, c, now)
	billBased := r.billBased.Amount(b, c, now)
	total := pct.Add(billBased)

	return Result{
		Subtotal:           subtotal,
		PercentageDiscount: pct,
		PercentageKind:     kind,
		BillBasedDiscount:  billBased,
		TotalDiscount:      total,
		NetAmount:          subtotal.Sub(total),
	}
}

// percentage picks at most one percentage policy by classification precedence.
func (r *Resolver) percentage(b *bill.Bill, c customer.Customer, now time.Time) (pricing.Money, *Kind) {
	var policy Policy
	switch {
	case c.IsEmployee():
		policy = r.employee
	case c.IsAffiliate():
		policy = r.affiliate
	case c.IsLoyal(now):
		policy = r.loyalty
	default:
		return pricing.Zero(), nil
	}
	kind := policy.Kind()
	return policy.Amount(b, c, now), &kind
}

// Tiers is the number of whole thresholds contained in subtotal.
func Tiers(subtotal, threshold pricing.Money) decimal.Decimal {
	if threshold.IsZero() {
		return decimal.Zero
	}
	q, _ := subtotal.Decimal().QuoRem(threshold.Decimal(), 0)
	return q
}
