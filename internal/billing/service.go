package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-billing/internal/bill"
	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/discount"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

// ItemRequest is one requested bill line.
type ItemRequest struct {
	ProductID string         `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"min=1"`
	UnitPrice *pricing.Money `json:"unitPrice,omitempty"`
}

// Request asks for the discount breakdown of a prospective bill.
type Request struct {
	CustomerID string        `json:"customerId" validate:"required"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Line is one priced bill line in a calculation.
type Line struct {
	ProductID                     string           `json:"productId"`
	ProductName                   string           `json:"productName"`
	Category                      catalog.Category `json:"category"`
	Quantity                      int              `json:"quantity"`
	UnitPrice                     pricing.Money    `json:"unitPrice"`
	TotalPrice                    pricing.Money    `json:"totalPrice"`
	EligibleForPercentageDiscount bool             `json:"eligibleForPercentageDiscount"`
}

// Calculation is the outcome of Service.Calculate.
type Calculation struct {
	BillID       string        `json:"billId"`
	CustomerID   string        `json:"customerId"`
	CustomerType customer.Kind `json:"customerType"`
	Items        []Line        `json:"items"`
	discount.Result
	CalculatedAt time.Time `json:"calculatedAt"`
}

// Service prices bills for known customers and products.
type Service struct {
	Customers customer.Lookup
	Products  catalog.Lookup
	Resolver  *discount.Resolver
	Metrics   *obs.BillMetrics
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Calculate looks up the customer and every product, builds the bill and
// resolves its discounts. Lookup and construction errors are returned as is;
// no partial result is produced.
func (s *Service) Calculate(ctx context.Context, req Request) (Calculation, error) {
	if s == nil || s.Customers == nil || s.Products == nil || s.Resolver == nil {
		return Calculation{}, errors.New("billing service not configured")
	}
	ctx, span := otel.Tracer("billing").Start(ctx, "billing.Calculate")
	defer span.End()
	span.SetAttributes(
		attribute.String("billing.customer_id", req.CustomerID),
		attribute.Int("billing.items", len(req.Items)),
	)

	calc, err := s.calculate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Metrics.ObserveCalculation(outcome(err), "", 0)
		return Calculation{}, err
	}

	kind := ""
	if calc.PercentageKind != nil {
		kind = string(*calc.PercentageKind)
	}
	span.SetAttributes(
		attribute.String("billing.percentage_kind", kind),
		attribute.String("billing.net_amount", calc.NetAmount.Decimal().StringFixed(pricing.MoneyScale)),
	)
	s.Metrics.ObserveCalculation("ok", kind, calc.TotalDiscount.Decimal().InexactFloat64())
	s.Logger.Info().
		Str("bill_id", calc.BillID).
		Str("customer_id", calc.CustomerID).
		Int("items", len(calc.Items)).
		Stringer("subtotal", calc.Subtotal).
		Stringer("total_discount", calc.TotalDiscount).
		Stringer("net_amount", calc.NetAmount).
		Str("percentage_kind", kind).
		Msg("bill calculated")
	return calc, nil
}

func (s *Service) calculate(ctx context.Context, req Request) (Calculation, error) {
	cust, err := s.Customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		s.Metrics.ObserveLookupFailure("customer", outcome(err))
		return Calculation{}, err
	}

	items := make([]bill.Item, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.Products.FindByID(ctx, line.ProductID)
		if err != nil {
			s.Metrics.ObserveLookupFailure("product", outcome(err))
			return Calculation{}, err
		}
		var item bill.Item
		if line.UnitPrice != nil {
			item, err = bill.NewItemWithPrice(product, line.Quantity, *line.UnitPrice)
		} else {
			item, err = bill.NewItem(product, line.Quantity)
		}
		if err != nil {
			return Calculation{}, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		items = append(items, item)
	}

	b, err := bill.New(cust.ID, items)
	if err != nil {
		return Calculation{}, err
	}
	result := s.Resolver.Resolve(b, cust)
	if err := b.ApplyDiscount(result.TotalDiscount); err != nil {
		return Calculation{}, err
	}
	if err := b.Finalize(); err != nil {
		return Calculation{}, err
	}

	return Calculation{
		BillID:       b.ID(),
		CustomerID:   cust.ID,
		CustomerType: cust.Kind(),
		Items:        lo.Map(b.Items(), func(it bill.Item, _ int) Line { return toLine(it) }),
		Result:       result,
		CalculatedAt: s.now().UTC(),
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func toLine(it bill.Item) Line {
	p := it.Product()
	return Line{
		ProductID:                     p.ID,
		ProductName:                   p.Name,
		Category:                      p.Category,
		Quantity:                      it.Quantity(),
		UnitPrice:                     it.UnitPrice(),
		TotalPrice:                    it.Total(),
		EligibleForPercentageDiscount: it.EligibleForPercentageDiscount(),
	}
}

// outcome labels err for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound), errors.Is(err, catalog.ErrProductNotFound):
		return "not_found"
	case isInvalidArgument(err):
		return "invalid"
	default:
		return "error"
	}
}

func isInvalidArgument(err error) bool {
	for _, target := range []error{
		pricing.ErrInvalidAmount,
		pricing.ErrInvalidPercentage,
		bill.ErrInvalidQuantity,
		bill.ErrEmptyBill,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
