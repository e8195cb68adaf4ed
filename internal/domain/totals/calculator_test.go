package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/money"
	"mezgeb/internal/domain/tax"
)

func newCalc() *Calculator {
	return NewCalculator(tax.NewDefaultEngine())
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute_VATExample(t *testing.T) {
	// Lines totaling 1000, all VAT-applicable: VAT 150, total 1150.
	lines := []LineItem{
		{Description: "Consulting", Unit: "hrs", Quantity: qty("10"), UnitPrice: money.FromInt(60), VATApplicable: true},
		{Description: "Materials", Unit: "pcs", Quantity: qty("4"), UnitPrice: money.FromInt(100), VATApplicable: true},
	}

	got, err := newCalc().Compute(lines, Context{})
	require.NoError(t, err)

	assert.True(t, got.Subtotal.Equal(money.FromInt(1000)))
	assert.True(t, got.VATAmount.Equal(money.FromInt(150)))
	assert.True(t, got.Total.Equal(money.FromInt(1150)))
	assert.True(t, got.WithholdingRate.IsZero())
	assert.True(t, got.Net.Equal(got.Total))
}

func TestCompute_WithholdingExamples(t *testing.T) {
	// Service document, company payer, subtotal 25000: 3% withholding = 750.
	lines := []LineItem{
		{Description: "Annual maintenance", Unit: "job", Quantity: qty("1"), UnitPrice: money.FromInt(25_000), VATApplicable: true},
	}
	dctx := Context{PayerIsCompany: true, IsService: true}

	got, err := newCalc().Compute(lines, dctx)
	require.NoError(t, err)

	assert.True(t, got.WithholdingRate.Equal(decimal.NewFromInt(3)))
	assert.True(t, got.WithholdingAmount.Equal(money.FromInt(750)))
	assert.True(t, got.Net.Equal(money.Sub(got.Total, money.FromInt(750))))

	// Same conditions at subtotal 15000: no withholding.
	lines[0].UnitPrice = money.FromInt(15_000)
	got, err = newCalc().Compute(lines, dctx)
	require.NoError(t, err)
	assert.True(t, got.WithholdingRate.IsZero())
	assert.True(t, got.WithholdingAmount.IsZero())
	assert.True(t, got.Net.Equal(got.Total))
}

func TestCompute_Invariants(t *testing.T) {
	lines := []LineItem{
		{Description: "A", Quantity: qty("3"), UnitPrice: money.MustParse("1234.56"), Discount: money.MustParse("100.10"), VATApplicable: true},
		{Description: "B", Quantity: qty("0.5"), UnitPrice: money.MustParse("99.99"), VATApplicable: false},
		{Description: "C", Quantity: qty("7"), UnitPrice: money.MustParse("3333.33"), VATApplicable: true},
	}
	got, err := newCalc().Compute(lines, Context{PayerIsCompany: true, IsService: true})
	require.NoError(t, err)

	assert.True(t, money.Sub(got.Total, got.VATAmount).Equal(got.Subtotal),
		"total - vat != subtotal")
	assert.True(t, money.Sub(got.Total, got.WithholdingAmount).Equal(got.Net),
		"total - withholding != net")

	for name, v := range map[string]money.Money{
		"subtotal":    got.Subtotal,
		"vat":         got.VATAmount,
		"total":       got.Total,
		"withholding": got.WithholdingAmount,
		"net":         got.Net,
	} {
		assert.True(t, v.Equal(money.Round(v)), "%s carries more than 2 fractional digits: %s", name, v)
	}
}

func TestCompute_Pure(t *testing.T) {
	lines := []LineItem{
		{Description: "X", Quantity: qty("2.5"), UnitPrice: money.MustParse("19.99"), VATApplicable: true},
	}
	dctx := Context{PayerIsCompany: true, IsService: false}

	first, err := newCalc().Compute(lines, dctx)
	require.NoError(t, err)
	second, err := newCalc().Compute(lines, dctx)
	require.NoError(t, err)

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.VATAmount.String(), second.VATAmount.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, first.WithholdingRate.String(), second.WithholdingRate.String())
	assert.Equal(t, first.WithholdingAmount.String(), second.WithholdingAmount.String())
	assert.Equal(t, first.Net.String(), second.Net.String())
}

func TestCompute_DiscountAfterRounding(t *testing.T) {
	// 3 * 0.335 = 1.005 rounds to 1.01 before the 0.01 discount applies.
	lines := []LineItem{
		{Description: "Bulk item", Quantity: qty("3"), UnitPrice: money.MustParse("0.335"), Discount: money.MustParse("0.01"), VATApplicable: false},
	}
	got, err := newCalc().Compute(lines, Context{})
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(money.MustParse("1.00")))
}

func TestCompute_WithholdingOverride(t *testing.T) {
	lines := []LineItem{
		{Description: "Stock purchase", Quantity: qty("100"), UnitPrice: money.FromInt(10), VATApplicable: true},
	}

	two := decimal.NewFromInt(2)
	got, err := newCalc().Compute(lines, Context{WithholdingOverride: &two})
	require.NoError(t, err)
	assert.True(t, got.WithholdingRate.Equal(two))
	assert.True(t, got.WithholdingAmount.Equal(money.FromInt(20)))

	// Explicit zero override disables derivation even above the threshold.
	lines[0].UnitPrice = money.FromInt(1000) // subtotal 100000
	zero := decimal.Zero
	got, err = newCalc().Compute(lines, Context{PayerIsCompany: true, IsService: true, WithholdingOverride: &zero})
	require.NoError(t, err)
	assert.True(t, got.WithholdingRate.IsZero())
	assert.True(t, got.WithholdingAmount.IsZero())
}

func TestCompute_MixedVATLines(t *testing.T) {
	lines := []LineItem{
		{Description: "Taxable", Quantity: qty("1"), UnitPrice: money.FromInt(600), VATApplicable: true},
		{Description: "Exempt", Quantity: qty("1"), UnitPrice: money.FromInt(400), VATApplicable: false},
	}
	got, err := newCalc().Compute(lines, Context{})
	require.NoError(t, err)

	assert.True(t, got.Subtotal.Equal(money.FromInt(1000)))
	assert.True(t, got.VATAmount.Equal(money.FromInt(90)), "VAT only on the taxable 600")
	assert.True(t, got.Total.Equal(money.FromInt(1090)))
}

func TestCompute_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineItem
	}{
		{"empty_lines", nil},
		{"zero_quantity", []LineItem{{Quantity: decimal.Zero, UnitPrice: money.FromInt(10)}}},
		{"negative_quantity", []LineItem{{Quantity: qty("-1"), UnitPrice: money.FromInt(10)}}},
		{"negative_price", []LineItem{{Quantity: qty("1"), UnitPrice: money.FromInt(-10)}}},
		{"negative_discount", []LineItem{{Quantity: qty("1"), UnitPrice: money.FromInt(10), Discount: money.FromInt(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCalc().Compute(tt.lines, Context{})
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), "want ValidationError, got %v", err)
		})
	}
}
