// Package tax encodes the Ethiopian tax rules applied to every financial
// document: flat-rate VAT and payment withholding.
//
// Rates and thresholds are business rules, not laws of nature; they live
// in a versioned RuleSet so a tax-law change is a configuration change.
// The engine itself is pure: no I/O, no suspension points, deterministic
// for a given RuleSet and inputs.
package tax

import (
	"github.com/shopspring/decimal"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/money"
)

// RuleSet holds the tax rates and thresholds for one regime version.
type RuleSet struct {
	// Version identifies the rule set (e.g. "et-2002-proc-285")
	Version string

	// VATRate is the value-added tax rate in percent
	VATRate decimal.Decimal

	// WithholdingRate is the withholding rate in percent, applied when
	// the subtotal exceeds the relevant threshold
	WithholdingRate decimal.Decimal

	// ServiceThreshold is the withholding threshold for service documents
	ServiceThreshold money.Money

	// GoodsThreshold is the withholding threshold for goods documents
	GoodsThreshold money.Money
}

// DefaultRuleSet returns the Ethiopian rules in force: 15% VAT,
// 3% withholding above 20,000 ETB for services and 30,000 ETB for goods.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Version:          "et-default",
		VATRate:          decimal.NewFromInt(15),
		WithholdingRate:  decimal.NewFromInt(3),
		ServiceThreshold: money.FromInt(20_000),
		GoodsThreshold:   money.FromInt(30_000),
	}
}

// Validate checks the rule set for obviously broken values.
func (r RuleSet) Validate() error {
	if r.VATRate.IsNegative() {
		return apperror.NewValidation("VAT rate must not be negative").
			WithDetail("vat_rate", r.VATRate.String())
	}
	if r.WithholdingRate.IsNegative() {
		return apperror.NewValidation("withholding rate must not be negative").
			WithDetail("withholding_rate", r.WithholdingRate.String())
	}
	if r.ServiceThreshold.IsNegative() || r.GoodsThreshold.IsNegative() {
		return apperror.NewValidation("withholding thresholds must not be negative")
	}
	return nil
}

// WithholdingResult is the outcome of the withholding rule.
// Rate is zero exactly when Amount is zero.
type WithholdingResult struct {
	// Rate is the applied percentage (0 or RuleSet.WithholdingRate)
	Rate decimal.Decimal

	// Amount is Round(subtotal * Rate / 100)
	Amount money.Money
}

// Engine evaluates the tax rules of one RuleSet.
type Engine struct {
	rules RuleSet
}

// NewEngine creates an engine for the given rule set.
func NewEngine(rules RuleSet) *Engine {
	return &Engine{rules: rules}
}

// NewDefaultEngine creates an engine with DefaultRuleSet.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRuleSet())
}

// Rules returns the rule set the engine was built with.
func (e *Engine) Rules() RuleSet {
	return e.rules
}

// VAT computes value-added tax on the VAT-applicable amount.
func (e *Engine) VAT(vatableAmount money.Money) money.Money {
	return money.PercentageOf(vatableAmount, e.rules.VATRate)
}

// Withholding applies the payment withholding rule.
//
// Only company payers withhold. The threshold depends on whether the
// document is for services or goods; withholding applies when the
// subtotal strictly exceeds it.
func (e *Engine) Withholding(subtotal money.Money, payerIsCompany, isService bool) WithholdingResult {
	none := WithholdingResult{Rate: decimal.Zero, Amount: money.Zero()}

	if !payerIsCompany {
		return none
	}

	threshold := e.rules.GoodsThreshold
	if isService {
		threshold = e.rules.ServiceThreshold
	}

	if !subtotal.GreaterThan(threshold) {
		return none
	}

	return WithholdingResult{
		Rate:   e.rules.WithholdingRate,
		Amount: money.PercentageOf(subtotal, e.rules.WithholdingRate),
	}
}
