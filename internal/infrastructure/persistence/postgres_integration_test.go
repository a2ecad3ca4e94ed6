//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable postgres container and applies the
// embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("crm_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func seedOwner(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	u, err := identity.NewUser(uuid.NewString()+"@example.com", "secret123", "Test", "Owner", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), u))
	return u.ID
}

func TestPostgres_ConcurrentInvoiceNumbersAreUnique(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormInvoiceRepository(db, nil)
	owner := seedOwner(t, db)
	client := uuid.New()

	const workers = 8
	pending := make([]*billing.Invoice, workers)
	for i := range pending {
		pending[i] = newInvoice(t, owner, client, testNow.AddDate(0, 0, 30))
	}

	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	errs := make(chan error, workers)
	for _, inv := range pending {
		wg.Add(1)
		go func(inv *billing.Invoice) {
			defer wg.Done()
			if err := repo.Create(context.Background(), inv); err != nil {
				errs <- err
				return
			}
			numbers <- inv.Number
		}(inv)
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("create failed: %v", err)
	}
	seen := make(map[string]bool)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["INV-000001"])
	assert.True(t, seen["INV-000008"])
}

func TestPostgres_ConvertQuote(t *testing.T) {
	db := newPostgresDB(t)
	quotes := NewGormQuoteRepository(db, nil, nil)
	invoices := NewGormInvoiceRepository(db, nil)
	ctx := context.Background()
	owner := seedOwner(t, db)

	q := newQuote(t, owner, uuid.New(), testNow.AddDate(0, 0, 30))
	require.NoError(t, quotes.Create(ctx, q))

	inv, err := q.ConvertToInvoice(owner, billing.ConversionOptions{}, testNow)
	require.NoError(t, err)
	require.NoError(t, quotes.Convert(ctx, q, inv))

	stored, err := invoices.FindByIDForOwner(ctx, owner, inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(dec("198")))
	assert.Equal(t, "INV-000001", stored.Number)

	// A second conversion of the same quote hits the version check.
	stale, err := quotes.FindByIDForOwner(ctx, owner, q.ID)
	require.NoError(t, err)
	stale.Status = billing.QuoteStatusSent
	stale.ConvertedInvoiceID = nil
	stale.Version = 1
	again, err := stale.ConvertToInvoice(owner, billing.ConversionOptions{}, testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, quotes.Convert(ctx, stale, again), shared.ErrConcurrencyConflict)
}
