// Package sequence provides transactional allocation of document numbers.
//
// Every legal document carries a number drawn from a per-tenant,
// per-document-type, per-year monotonic counter. Allocation is the one
// place in the platform where two requests race for the same row, so the
// whole read-increment runs as a single atomic unit against the store and
// a number is returned only once it is durably committed.
package sequence

import (
	"fmt"
	"strings"

	"mezgeb/internal/core/apperror"
)

// DocumentType identifies the numbered document series.
type DocumentType string

const (
	// DocTypeSalesInvoice is a cash sales invoice ("CS").
	DocTypeSalesInvoice DocumentType = "CS"

	// DocTypePaymentVoucher is a payment voucher ("PV").
	DocTypePaymentVoucher DocumentType = "PV"

	// DocTypePurchaseBill is a purchase bill ("PB").
	DocTypePurchaseBill DocumentType = "PB"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocTypeSalesInvoice, DocTypePaymentVoucher, DocTypePurchaseBill:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t DocumentType) String() string { return string(t) }

// ParseDocumentType converts a string to a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", apperror.NewValidation("unknown document type").
			WithDetail("document_type", s)
	}
	return t, nil
}

// Key identifies one counter. Tenant identity is part of the key and is
// always passed explicitly — the store never infers it from ambient state.
type Key struct {
	TenantID string
	DocType  DocumentType
	Year     int
}

// String renders the key for error details and log fields.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d", k.TenantID, k.DocType, k.Year)
}

// Validate checks the key components.
func (k Key) Validate() error {
	if k.TenantID == "" {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}
	if !k.DocType.Valid() {
		return apperror.NewValidation("unknown document type").
			WithDetail("document_type", string(k.DocType))
	}
	if k.Year <= 0 {
		return apperror.NewValidation("year must be positive").
			WithDetail("year", k.Year)
	}
	return nil
}

// DocumentNumber is the result of one allocation. It is a value object;
// the document record freezes these fields at creation time.
type DocumentNumber struct {
	// Number is the formatted string, unique per tenant for the lifetime
	// of the system
	Number string `json:"number"`

	// SeqValue is the raw counter value
	SeqValue int64 `json:"seqValue"`

	// Year is the calendar year used for the series
	Year int `json:"year"`
}

// Format renders a document number as
// {tenantCode}-{docType}-{year}-{seq:04d}. Sequence values are
// zero-padded to 4 digits; wider values keep all their digits, they are
// never truncated.
func Format(tenantCode string, docType DocumentType, year int, seq int64) string {
	return fmt.Sprintf("%s-%s-%d-%04d", tenantCode, docType, year, seq)
}
