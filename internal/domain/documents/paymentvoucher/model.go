// Package paymentvoucher provides the payment voucher document (PV).
package paymentvoucher

import (
	"context"

	"github.com/shopspring/decimal"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/entity"
	"mezgeb/internal/core/id"
	"mezgeb/internal/core/money"
	"mezgeb/internal/domain/totals"
)

// PaymentVoucher records an outgoing payment made by the business.
// Withholding is derived from the rules: the paying business is the
// payer, so its legal form decides whether it withholds.
type PaymentVoucher struct {
	entity.Document

	// Payee reference
	PayeeID   id.ID  `db:"payee_id" json:"payeeId"`
	PayeeName string `db:"payee_name" json:"payeeName"`

	// PayerIsCompany: whether the paying business is incorporated.
	// Sole proprietors do not withhold.
	PayerIsCompany bool `db:"payer_is_company" json:"payerIsCompany"`

	// IsService: payment for services vs goods
	IsService bool `db:"is_service" json:"isService"`

	// PaymentMethod is free-form ("cash", "cheque", "transfer")
	PaymentMethod string `db:"payment_method" json:"paymentMethod"`

	// Frozen financial summary; Net is the amount actually paid out
	totals.DocumentTotals

	// Table part: what the payment covers
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one voucher line.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Description   string          `db:"description" json:"description"`
	Unit          string          `db:"unit" json:"unit"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice     money.Money     `db:"unit_price" json:"unitPrice"`
	VATApplicable bool            `db:"vat_applicable" json:"vatApplicable"`

	LineTotal money.Money `db:"line_total" json:"lineTotal"`
}

// New creates a new payment voucher for a tenant.
func New(tenantID string, payeeID id.ID, payeeName string) *PaymentVoucher {
	return &PaymentVoucher{
		Document:  entity.NewDocument(tenantID),
		PayeeID:   payeeID,
		PayeeName: payeeName,
		Lines:     make([]Line, 0),
	}
}

// AddLine appends a line.
func (v *PaymentVoucher) AddLine(description, unit string, quantity decimal.Decimal, unitPrice money.Money, vatApplicable bool) {
	v.Lines = append(v.Lines, Line{
		LineID:        id.New(),
		LineNo:        len(v.Lines) + 1,
		Description:   description,
		Unit:          unit,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		VATApplicable: vatApplicable,
	})
}

// LineItems converts the table part for the totals calculator.
func (v *PaymentVoucher) LineItems() []totals.LineItem {
	items := make([]totals.LineItem, len(v.Lines))
	for i, l := range v.Lines {
		items[i] = totals.LineItem{
			Description:   l.Description,
			Unit:          l.Unit,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Discount:      money.Zero(),
			VATApplicable: l.VATApplicable,
		}
	}
	return items
}

// TaxContext returns the calculator context; vouchers always derive.
func (v *PaymentVoucher) TaxContext() totals.Context {
	return totals.Context{
		PayerIsCompany: v.PayerIsCompany,
		IsService:      v.IsService,
	}
}

// ApplyTotals freezes the computed summary onto the document.
func (v *PaymentVoucher) ApplyTotals(t totals.DocumentTotals) {
	v.DocumentTotals = t
	for i := range v.Lines {
		v.Lines[i].LineTotal = totals.LineItem{
			Quantity:  v.Lines[i].Quantity,
			UnitPrice: v.Lines[i].UnitPrice,
		}.Total()
	}
}

// Validate implements entity.Validatable.
func (v *PaymentVoucher) Validate(ctx context.Context) error {
	if err := v.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(v.PayeeID) {
		return apperror.NewValidation("payee is required").
			WithDetail("field", "payeeId")
	}

	if len(v.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}
