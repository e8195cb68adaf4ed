package entity

import (
	"context"
	"time"

	"mezgeb/internal/core/apperror"
)

// Document is the base type for financial documents: sales invoices,
// purchase bills, payment vouchers.
//
// Number, SeqValue and Year are frozen at creation by the sequence
// allocator and never change afterwards, even if the document is edited.
type Document struct {
	BaseDocument

	// Number is the formatted document number, unique per tenant
	// (e.g. "ABC-CS-2025-0001")
	Number string `db:"number" json:"number"`

	// SeqValue is the raw counter value behind Number
	SeqValue int64 `db:"seq_value" json:"seqValue"`

	// Year is the calendar year the number was allocated in
	Year int `db:"year" json:"year"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document for a tenant. The number is left
// empty; it is assigned exactly once when the document is created.
func NewDocument(tenantID string) Document {
	return Document{
		BaseDocument: NewBaseDocument(tenantID),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.TenantID == "" {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// IsNumbered reports whether a document number has been allocated.
func (d *Document) IsNumbered() bool {
	return d.Number != ""
}

// CanModify checks if the document can be edited. Documents keep their
// number for life, so only unnumbered (not yet created) or explicitly
// editable documents pass.
func (d *Document) CanModify() error {
	if d.DeletionMark {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentImmutable,
			"Cannot modify a deleted document.",
		).WithDetail("document_id", d.ID.String())
	}
	return nil
}
