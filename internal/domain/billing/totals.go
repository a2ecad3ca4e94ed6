package billing

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountType selects how a quote discount value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Discount is a quote-level discount
type Discount struct {
	Value decimal.Decimal
	Type  DiscountType
}

// NoDiscount is a zero percentage discount
func NoDiscount() Discount {
	return Discount{Value: decimal.Zero, Type: DiscountTypePercentage}
}

// Amount returns the discount applied to subtotal
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if d.Type == DiscountTypeFixed {
		return d.Value
	}
	return subtotal.Mul(d.Value).Div(hundred)
}

// Validate rejects discounts that would push the taxable base below zero
func (d Discount) Validate(subtotal decimal.Decimal) error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount type must be percentage or fixed")
	}
	if d.Value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if d.Type == DiscountTypePercentage && d.Value.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Percentage discount cannot exceed 100")
	}
	if d.Type == DiscountTypeFixed && d.Value.GreaterThan(subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Fixed discount cannot exceed the subtotal")
	}
	return nil
}

// Totals is the result of a totals calculation
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// CalculateTotals recomputes every item total in place and returns the
// document totals. A nil discount means the document kind has none.
func CalculateTotals(items []LineItem, taxRate decimal.Decimal, discount *Discount) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].recompute()
		subtotal = subtotal.Add(items[i].Total)
	}

	discountAmount := decimal.Zero
	if discount != nil {
		discountAmount = discount.Amount(subtotal)
	}

	base := subtotal.Sub(discountAmount)
	tax := base.Mul(taxRate).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableBase:    base,
		TaxAmount:      tax,
		TotalAmount:    base.Add(tax),
	}
}

// ValidateTaxRate checks the rate is a percentage between 0 and 100
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	return nil
}
