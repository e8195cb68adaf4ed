// Package totals converts document line items into a complete financial
// summary: subtotal, VAT, total, withholding and net payable.
//
// Compute is pure and idempotent. Identical inputs produce identical
// DocumentTotals, so stored totals can be compared bit-for-bit against a
// recomputation when a document is explicitly edited.
package totals

import (
	"github.com/shopspring/decimal"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/money"
	"mezgeb/internal/domain/tax"
)

// LineItem is one billable line of a document.
type LineItem struct {
	Description string

	// Unit is the unit of measure ("pcs", "kg", "hrs")
	Unit string

	// Quantity must be strictly positive
	Quantity decimal.Decimal

	// UnitPrice must be non-negative
	UnitPrice money.Money

	// Discount is an absolute amount subtracted from the line total.
	// Zero value means no discount.
	Discount money.Money

	// VATApplicable marks the line as part of the VAT base
	VATApplicable bool
}

// Total returns the canonical line total:
//
//	Round(quantity * unitPrice) - discount, rounded.
//
// The gross amount is rounded before the discount is applied; the same
// formula holds for every document type.
func (li LineItem) Total() money.Money {
	gross := money.Round(li.Quantity.Mul(li.UnitPrice))
	return money.Sub(gross, li.Discount)
}

// Context carries the document-level inputs of the tax rules.
type Context struct {
	// PayerIsCompany: only company payers withhold
	PayerIsCompany bool

	// IsService selects the service withholding threshold; false means goods
	IsService bool

	// WithholdingOverride, when set, is applied against the subtotal
	// instead of deriving withholding from the rules. Purchase bills use
	// this for manual entry; sales invoices always derive.
	WithholdingOverride *decimal.Decimal
}

// DocumentTotals is the frozen financial summary of a document.
// Invariants: Total = Subtotal + VATAmount, Net = Total - WithholdingAmount,
// WithholdingAmount is zero whenever WithholdingRate is zero, and every
// monetary field carries at most 2 fractional digits.
type DocumentTotals struct {
	Subtotal          money.Money     `db:"subtotal" json:"subtotal"`
	VATAmount         money.Money     `db:"vat_amount" json:"vatAmount"`
	Total             money.Money     `db:"total" json:"total"`
	WithholdingRate   decimal.Decimal `db:"withholding_rate" json:"withholdingRate"`
	WithholdingAmount money.Money     `db:"withholding_amount" json:"withholdingAmount"`
	Net               money.Money     `db:"net_amount" json:"net"`
}

// Calculator composes line items with the tax rules engine.
type Calculator struct {
	engine *tax.Engine
}

// NewCalculator creates a calculator bound to a tax engine.
func NewCalculator(engine *tax.Engine) *Calculator {
	return &Calculator{engine: engine}
}

// Compute validates the lines and produces the document totals.
// It rejects bad input before computing anything; there is never a
// partial result.
func (c *Calculator) Compute(lines []LineItem, dctx Context) (DocumentTotals, error) {
	if err := validateLines(lines); err != nil {
		return DocumentTotals{}, err
	}

	subtotal := money.Zero()
	vatable := money.Zero()

	for _, line := range lines {
		lineTotal := line.Total()
		subtotal = money.Add(subtotal, lineTotal)
		if line.VATApplicable {
			vatable = money.Add(vatable, lineTotal)
		}
	}

	vatAmount := c.engine.VAT(vatable)
	total := money.Add(subtotal, vatAmount)

	var withholding tax.WithholdingResult
	if dctx.WithholdingOverride != nil {
		withholding = c.applyOverride(subtotal, *dctx.WithholdingOverride)
	} else {
		withholding = c.engine.Withholding(subtotal, dctx.PayerIsCompany, dctx.IsService)
	}

	return DocumentTotals{
		Subtotal:          subtotal,
		VATAmount:         vatAmount,
		Total:             total,
		WithholdingRate:   withholding.Rate,
		WithholdingAmount: withholding.Amount,
		Net:               money.Sub(total, withholding.Amount),
	}, nil
}

// applyOverride applies a manually entered withholding percentage
// against the subtotal. A zero override means no withholding.
func (c *Calculator) applyOverride(subtotal money.Money, pct decimal.Decimal) tax.WithholdingResult {
	if pct.IsZero() {
		return tax.WithholdingResult{Rate: decimal.Zero, Amount: money.Zero()}
	}
	return tax.WithholdingResult{
		Rate:   pct,
		Amount: money.PercentageOf(subtotal, pct),
	}
}

func validateLines(lines []LineItem) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range lines {
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "quantity").
				WithDetail("line", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "unitPrice").
				WithDetail("line", i+1)
		}
		if line.Discount.IsNegative() {
			return apperror.NewValidation("discount must not be negative").
				WithDetail("field", "discount").
				WithDetail("line", i+1)
		}
	}

	return nil
}
