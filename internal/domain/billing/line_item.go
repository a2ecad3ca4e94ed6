package billing

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one billable row of an invoice or quote.
// Total is derived from Quantity and UnitPrice and is never authoritative.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// NewLineItem creates a validated line item with its total computed
func NewLineItem(description string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	item := LineItem{
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	item.recompute()
	return item, nil
}

// Validate checks the item fields
func (i LineItem) Validate() error {
	if i.Description == "" {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item description is required")
	}
	if len(i.Description) > 500 {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot exceed 500 characters")
	}
	if i.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if i.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return nil
}

func (i *LineItem) recompute() {
	i.Total = i.Quantity.Mul(i.UnitPrice)
}

func validateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_LINE_ITEMS", "At least one line item is required")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
