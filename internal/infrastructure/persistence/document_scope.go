package persistence

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentScope narrows an invoice or quote query to one owner and the
// filter's status, client and search terms
func documentScope(ownerID uuid.UUID, filter billing.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", ownerID)
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.ClientID != nil {
			db = db.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where("LOWER(number) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern)
		}
		return db
	}
}

// lapse describes the read-time transition of a document kind: rows in one
// of the open statuses whose deadline column is before now count as lapsed.
type lapse struct {
	open     []string
	deadline string
	lapsed   string
}

var (
	invoiceLapse = lapse{
		open:     []string{billing.InvoiceStatusDraft.String(), billing.InvoiceStatusSent.String()},
		deadline: "due_date",
		lapsed:   billing.InvoiceStatusOverdue.String(),
	}
	quoteLapse = lapse{
		open:     []string{billing.QuoteStatusDraft.String(), billing.QuoteStatusSent.String()},
		deadline: "valid_until",
		lapsed:   billing.QuoteStatusExpired.String(),
	}
)

// statusCounts groups the owner's rows in table by effective status as of now
func statusCounts(db *gorm.DB, table string, ownerID uuid.UUID, l lapse, now time.Time) ([]billing.StatusCount, error) {
	effective := db.Table(table).
		Select("CASE WHEN status IN ? AND "+l.deadline+" < ? THEN ? ELSE status END AS status",
			l.open, now.UTC(), l.lapsed).
		Where("owner_id = ?", ownerID)

	counts := make([]billing.StatusCount, 0)
	err := db.Table("(?) AS docs", effective).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	return counts, err
}
