package persistence

import (
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// newTestDB opens a private in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lineItem(t *testing.T, qty, price string) billing.LineItem {
	t.Helper()
	it, err := billing.NewLineItem("Consulting", dec(qty), dec(price))
	require.NoError(t, err)
	return it
}

func newInvoice(t *testing.T, ownerID, clientID uuid.UUID, due time.Time) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(ownerID, billing.InvoiceParams{
		DocumentParams: billing.DocumentParams{
			ClientID:  clientID,
			IssueDate: testNow.AddDate(0, 0, -10),
			Items:     []billing.LineItem{lineItem(t, "2", "100")},
			TaxRate:   dec("10"),
		},
		DueDate: due,
	}, testNow)
	require.NoError(t, err)
	return inv
}

func newQuote(t *testing.T, ownerID, clientID uuid.UUID, validUntil time.Time) *billing.Quote {
	t.Helper()
	q, err := billing.NewQuote(ownerID, billing.QuoteParams{
		DocumentParams: billing.DocumentParams{
			ClientID:  clientID,
			IssueDate: testNow.AddDate(0, 0, -5),
			Items:     []billing.LineItem{lineItem(t, "2", "100")},
			TaxRate:   dec("10"),
		},
		ValidUntil: validUntil,
		Discount:   &billing.Discount{Value: dec("10"), Type: billing.DiscountTypePercentage},
	}, testNow)
	require.NoError(t, err)
	return q
}
