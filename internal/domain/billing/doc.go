// Package billing holds the invoice and quote aggregates.
//
// Both document kinds share the same shape (Document): an ordered list of
// line items whose totals are always recomputed, a tax rate, a client and a
// human-readable number of the form PREFIX-NNNNNN that is assigned once on
// first persistence. Status derivation (overdue invoices, expired quotes) is
// a pure function of the stored status, the relevant date and the clock, so
// it can be applied both when saving and when rendering.
package billing
