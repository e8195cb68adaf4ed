// Package purchasebill provides the purchase bill document (PB).
package purchasebill

import (
	"context"

	"github.com/shopspring/decimal"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/entity"
	"mezgeb/internal/core/id"
	"mezgeb/internal/core/money"
	"mezgeb/internal/domain/totals"
)

// PurchaseBill records goods or services bought from a supplier.
//
// Withholding on purchase bills is entered manually by the bookkeeper
// (the business decides what it withholds when paying the supplier);
// the default is no withholding. The entered rate is frozen into the
// document totals at creation.
type PurchaseBill struct {
	entity.Document

	// Supplier reference
	SupplierID   id.ID  `db:"supplier_id" json:"supplierId"`
	SupplierName string `db:"supplier_name" json:"supplierName"`

	// SupplierTIN is the supplier's tax identification number
	SupplierTIN string `db:"supplier_tin" json:"supplierTin,omitempty"`

	// IsService: services vs goods purchase
	IsService bool `db:"is_service" json:"isService"`

	// ManualWithholdingRate is the bookkeeper-entered withholding
	// percentage. Nil means 0 (no withholding). Not stored as-is; the
	// frozen rate lives in DocumentTotals.
	ManualWithholdingRate *decimal.Decimal `db:"-" json:"manualWithholdingRate,omitempty"`

	// Frozen financial summary
	totals.DocumentTotals

	// Table part: bill lines
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one bill line. Purchase bill lines may carry a
// per-line discount.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Description   string          `db:"description" json:"description"`
	Unit          string          `db:"unit" json:"unit"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice     money.Money     `db:"unit_price" json:"unitPrice"`
	Discount      money.Money     `db:"discount" json:"discount"`
	VATApplicable bool            `db:"vat_applicable" json:"vatApplicable"`

	LineTotal money.Money `db:"line_total" json:"lineTotal"`
}

// New creates a new purchase bill for a tenant.
func New(tenantID string, supplierID id.ID, supplierName string) *PurchaseBill {
	return &PurchaseBill{
		Document:     entity.NewDocument(tenantID),
		SupplierID:   supplierID,
		SupplierName: supplierName,
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a line with an optional discount.
func (b *PurchaseBill) AddLine(description, unit string, quantity decimal.Decimal, unitPrice, discount money.Money, vatApplicable bool) {
	b.Lines = append(b.Lines, Line{
		LineID:        id.New(),
		LineNo:        len(b.Lines) + 1,
		Description:   description,
		Unit:          unit,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Discount:      discount,
		VATApplicable: vatApplicable,
	})
}

// LineItems converts the table part for the totals calculator.
func (b *PurchaseBill) LineItems() []totals.LineItem {
	items := make([]totals.LineItem, len(b.Lines))
	for i, l := range b.Lines {
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

// TaxContext returns the calculator context. Purchase bills always use
// the manual override path; an absent rate means zero.
func (b *PurchaseBill) TaxContext() totals.Context {
	override := decimal.Zero
	if b.ManualWithholdingRate != nil {
		override = *b.ManualWithholdingRate
	}
	return totals.Context{
		IsService:           b.IsService,
		WithholdingOverride: &override,
	}
}

// ApplyTotals freezes the computed summary onto the document.
func (b *PurchaseBill) ApplyTotals(t totals.DocumentTotals) {
	b.DocumentTotals = t
	for i := range b.Lines {
		b.Lines[i].LineTotal = totals.LineItem{
			Quantity:  b.Lines[i].Quantity,
			UnitPrice: b.Lines[i].UnitPrice,
			Discount:  b.Lines[i].Discount,
		}.Total()
	}
}

// Validate implements entity.Validatable.
func (b *PurchaseBill) Validate(ctx context.Context) error {
	if err := b.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(b.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if len(b.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	if b.ManualWithholdingRate != nil && b.ManualWithholdingRate.IsNegative() {
		return apperror.NewValidation("withholding rate must not be negative").
			WithDetail("field", "manualWithholdingRate")
	}

	return nil
}
