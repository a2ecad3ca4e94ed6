// Package models contains GORM persistence models that map to database tables.
// Domain types carry no ORM tags; each model converts with ToDomain/FromDomain.
//
//   - base.go: shared columns (id, timestamps, version, owner)
//   - billing.go: invoices, quotes and the document number counters
//   - partner.go: clients and companies
//   - identity.go: users
package models
