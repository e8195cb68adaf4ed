// Package salesinvoice provides the cash sales invoice document (CS).
package salesinvoice

import (
	"context"

	"github.com/shopspring/decimal"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/entity"
	"mezgeb/internal/core/id"
	"mezgeb/internal/core/money"
	"mezgeb/internal/domain/totals"
)

// SalesInvoice represents a cash sales invoice issued to a customer.
// The number and the financial summary are frozen at creation time;
// totals are recomputed only when the document is explicitly edited.
type SalesInvoice struct {
	entity.Document

	// Customer reference
	CustomerID   id.ID  `db:"customer_id" json:"customerId"`
	CustomerName string `db:"customer_name" json:"customerName"`

	// CustomerIsCompany drives the withholding rule: only company
	// payers withhold on payment
	CustomerIsCompany bool `db:"customer_is_company" json:"customerIsCompany"`

	// IsService selects the service withholding threshold
	IsService bool `db:"is_service" json:"isService"`

	// Frozen financial summary
	totals.DocumentTotals

	// Table part: invoice lines
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one invoice line.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Description   string          `db:"description" json:"description"`
	Unit          string          `db:"unit" json:"unit"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice     money.Money     `db:"unit_price" json:"unitPrice"`
	Discount      money.Money     `db:"discount" json:"discount"`
	VATApplicable bool            `db:"vat_applicable" json:"vatApplicable"`

	// LineTotal is frozen alongside the document totals
	LineTotal money.Money `db:"line_total" json:"lineTotal"`
}

// New creates a new sales invoice for a tenant.
func New(tenantID string, customerID id.ID, customerName string) *SalesInvoice {
	return &SalesInvoice{
		Document:     entity.NewDocument(tenantID),
		CustomerID:   customerID,
		CustomerName: customerName,
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a line. Totals are computed by the service, not here.
func (s *SalesInvoice) AddLine(description, unit string, quantity decimal.Decimal, unitPrice money.Money, vatApplicable bool) {
	s.Lines = append(s.Lines, Line{
		LineID:        id.New(),
		LineNo:        len(s.Lines) + 1,
		Description:   description,
		Unit:          unit,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Discount:      money.Zero(),
		VATApplicable: vatApplicable,
	})
}

// LineItems converts the table part for the totals calculator.
func (s *SalesInvoice) LineItems() []totals.LineItem {
	items := make([]totals.LineItem, len(s.Lines))
	for i, l := range s.Lines {
		items[i] = totals.LineItem{
			Description:   l.Description,
			Unit:          l.Unit,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Discount:      l.Discount,
			VATApplicable: l.VATApplicable,
		}
	}
	return items
}

// TaxContext returns the calculator context for this document.
// Sales invoices always derive withholding from the rules.
func (s *SalesInvoice) TaxContext() totals.Context {
	return totals.Context{
		PayerIsCompany: s.CustomerIsCompany,
		IsService:      s.IsService,
	}
}

// ApplyTotals freezes the computed summary onto the document.
func (s *SalesInvoice) ApplyTotals(t totals.DocumentTotals) {
	s.DocumentTotals = t
	for i := range s.Lines {
		s.Lines[i].LineTotal = totals.LineItem{
			Quantity:  s.Lines[i].Quantity,
			UnitPrice: s.Lines[i].UnitPrice,
			Discount:  s.Lines[i].Discount,
		}.Total()
	}
}

// Validate implements entity.Validatable.
func (s *SalesInvoice) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}
