package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatusSweepService_SweepStale(t *testing.T) {
	ownerID := uuid.New()

	t.Run("persists overdue and expired transitions", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		quotes := new(MockQuoteRepository)
		published := &recordingPublisher{}
		svc := NewStatusSweepService(invoices, quotes, 50, nil)
		svc.SetEventPublisher(published)

		late := newTestInvoice(t, ownerID, uuid.New(), testNow.AddDate(0, 0, -1))
		fresh := newTestInvoice(t, ownerID, uuid.New(), testNow.AddDate(0, 0, 1))
		lapsed := newTestQuote(t, ownerID, uuid.New(), testNow.AddDate(0, 0, -1))

		invoices.On("FindStale", mock.Anything, testNow, 50).Return([]billing.Invoice{*late, *fresh}, nil)
		quotes.On("FindStale", mock.Anything, testNow, 50).Return([]billing.Quote{*lapsed}, nil)
		invoices.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(inv *billing.Invoice) bool {
			return inv.ID == late.ID && inv.Status == billing.InvoiceStatusOverdue
		})).Return(nil).Once()
		quotes.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(q *billing.Quote) bool {
			return q.Status == billing.QuoteStatusExpired
		})).Return(nil).Once()

		changed, err := svc.SweepStale(context.Background(), testNow)
		require.NoError(t, err)

		assert.Equal(t, 2, changed)
		assert.Equal(t, []string{billing.EventTypeInvoiceOverdue, billing.EventTypeQuoteExpired}, published.types)
		invoices.AssertExpectations(t)
		quotes.AssertExpectations(t)
	})

	t.Run("skips documents changed concurrently", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		quotes := new(MockQuoteRepository)
		published := &recordingPublisher{}
		svc := NewStatusSweepService(invoices, quotes, 0, nil)
		svc.SetEventPublisher(published)

		first := newTestInvoice(t, ownerID, uuid.New(), testNow.AddDate(0, 0, -3))
		second := newTestInvoice(t, ownerID, uuid.New(), testNow.AddDate(0, 0, -2))

		invoices.On("FindStale", mock.Anything, testNow, 500).Return([]billing.Invoice{*first, *second}, nil)
		quotes.On("FindStale", mock.Anything, testNow, 500).Return([]billing.Quote{}, nil)
		invoices.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(inv *billing.Invoice) bool {
			return inv.ID == first.ID
		})).Return(shared.ErrConcurrencyConflict)
		invoices.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(inv *billing.Invoice) bool {
			return inv.ID == second.ID
		})).Return(nil)

		changed, err := svc.SweepStale(context.Background(), testNow)
		require.NoError(t, err)
		assert.Equal(t, 1, changed)
		assert.Equal(t, []string{billing.EventTypeInvoiceOverdue}, published.types)
	})

	t.Run("stops on storage failure", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		quotes := new(MockQuoteRepository)
		svc := NewStatusSweepService(invoices, quotes, 10, nil)

		boom := errors.New("connection reset")
		invoices.On("FindStale", mock.Anything, testNow, 10).Return([]billing.Invoice{}, boom)

		changed, err := svc.SweepStale(context.Background(), testNow)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, changed)
		quotes.AssertNotCalled(t, "FindStale", mock.Anything, mock.Anything, mock.Anything)
	})
}
