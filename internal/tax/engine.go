// Package tax implements the household tax engine (C2 of spec.md §2): a
// pure function from a year's income summary to a TaxResult, settled
// against monthly withholding at the December year boundary. Structured in
// the teacher's calculator-struct idiom (rpgo's
// internal/calculation/taxes.go ComprehensiveTaxCalculator), generalized
// from the teacher's fixed PA/MFJ scenario to all filing statuses and all
// 50 states + DC, and extended with NIIT and a simplified AMT the teacher
// does not implement.
package tax

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// Engine computes annual taxes from a YearIncomeSummary.
type Engine struct {
	InflationRate decimal.Decimal
}

// NewEngine creates a tax Engine whose bracket inflation-extrapolation
// uses the given long-run inflation assumption.
func NewEngine(inflationRate decimal.Decimal) *Engine {
	return &Engine{InflationRate: inflationRate}
}

// Settle computes the full-year TaxResult for summary, per spec.md §4.2.
func (e *Engine) Settle(summary domain.YearIncomeSummary) domain.TaxResult {
	brackets := taxtables.Extrapolate(taxtables.FederalOrdinaryBrackets(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)
	stdDeduction := taxtables.ExtrapolateAmount(taxtables.StandardDeduction(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)

	itemized := e.itemizedDeduction(summary)
	deduction := decimal.Max(stdDeduction, itemized)

	taxableOrdinary := summary.OrdinaryIncome.Sub(deduction)
	if taxableOrdinary.LessThan(decimal.Zero) {
		taxableOrdinary = decimal.Zero
	}
	federalOrdinary := taxtables.TaxAtBrackets(taxableOrdinary, brackets)

	ltcgTax := e.longTermGainsTax(summary, taxableOrdinary)

	niit := e.niit(summary)
	amt := decimal.Zero
	if summary.EnableAMT {
		amt = e.amt(summary, federalOrdinary, deduction)
	}
	state := e.state(summary, deduction)
	penalty := summary.EarlyWithdrawalPenaltyBase.Mul(taxtables.EarlyWithdrawalPenaltyRate)

	total := federalOrdinary.Add(ltcgTax).Add(niit).Add(amt).Add(state).Add(penalty).Sub(summary.AmountWithheld)

	return domain.TaxResult{
		FederalOrdinary:        federalOrdinary,
		LongTermGains:          ltcgTax,
		NIIT:                   niit,
		AMT:                    amt,
		State:                  state,
		FICASettled:            decimal.Zero,
		EarlyWithdrawalPenalty: penalty,
		Total:                  total,
	}
}

// itemizedDeduction combines SALT (capped), mortgage interest, and charity.
func (e *Engine) itemizedDeduction(summary domain.YearIncomeSummary) decimal.Decimal {
	salt := decimal.Min(summary.ItemizedSALT, taxtables.SALTCapDefault)
	return salt.Add(summary.ItemizedMortgageInterest).Add(summary.ItemizedCharitable)
}

// longTermGainsTax fills each 0/15/20 LTCG bracket with the gain amount
// that sits above the ordinary-income baseline, per spec.md §4.2.
func (e *Engine) longTermGainsTax(summary domain.YearIncomeSummary, taxableOrdinary decimal.Decimal) decimal.Decimal {
	if summary.LongTermGains.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	brackets := taxtables.Extrapolate(taxtables.LTCGBrackets(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)

	gains := summary.LongTermGains
	tax := decimal.Zero
	stackBase := taxableOrdinary

	for _, b := range brackets {
		if gains.LessThanOrEqual(decimal.Zero) {
			break
		}
		upper := b.Max
		if upper.IsZero() {
			upper = stackBase.Add(gains) // unbounded top bracket: take all remaining gains
		}
		// Room in this bracket above the ordinary-income stack.
		room := upper.Sub(decimal.Max(stackBase, b.Min))
		if room.LessThanOrEqual(decimal.Zero) {
			continue
		}
		amount := decimal.Min(gains, room)
		if amount.GreaterThan(decimal.Zero) {
			tax = tax.Add(amount.Mul(b.Rate))
			gains = gains.Sub(amount)
			stackBase = stackBase.Add(amount)
		}
	}
	return tax
}

// niit computes the 3.8% Net Investment Income Tax, if enabled by the caller
// (summary.InvestmentIncome is left zero by the caller when disabled).
func (e *Engine) niit(summary domain.YearIncomeSummary) decimal.Decimal {
	if summary.InvestmentIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	threshold := taxtables.ExtrapolateAmount(taxtables.NIITThreshold(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)
	excess := decimal.Max(decimal.Zero, summary.AGI.Sub(threshold))
	base := decimal.Min(summary.InvestmentIncome, excess)
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return base.Mul(decimal.NewFromFloat(taxtables.NIITRate))
}

// amt computes a simplified tentative minimum tax and returns the excess
// over the regular federal tax, or zero, per spec.md §4.2.
func (e *Engine) amt(summary domain.YearIncomeSummary, regularFederal, deduction decimal.Decimal) decimal.Decimal {
	// AMTI approximated as AGI plus the SALT addback (itemized state/local
	// taxes are not deductible for AMT purposes).
	amti := summary.AGI.Add(summary.ItemizedSALT)
	exemption := taxtables.ExtrapolateAmount(taxtables.AMTExemption(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)
	phaseoutThreshold := taxtables.ExtrapolateAmount(taxtables.AMTPhaseoutThreshold(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)

	if amti.GreaterThan(phaseoutThreshold) {
		reduction := amti.Sub(phaseoutThreshold).Mul(decimal.NewFromFloat(0.25))
		exemption = decimal.Max(decimal.Zero, exemption.Sub(reduction))
	}

	base := decimal.Max(decimal.Zero, amti.Sub(exemption))
	rateThreshold := taxtables.ExtrapolateAmount(taxtables.AMTRateThreshold(summary.FilingStatus), summary.Year, taxtables.LastBundledYear, e.InflationRate)

	tentative := decimal.Zero
	if base.LessThanOrEqual(rateThreshold) {
		tentative = base.Mul(decimal.NewFromFloat(taxtables.AMTLowRate))
	} else {
		tentative = rateThreshold.Mul(decimal.NewFromFloat(taxtables.AMTLowRate)).
			Add(base.Sub(rateThreshold).Mul(decimal.NewFromFloat(taxtables.AMTHighRate)))
	}

	owed := tentative.Sub(regularFederal)
	if owed.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return owed
}

// state computes state income tax on ordinary income plus long-term gains
// above the federal deduction, using the state's brackets or flat rate. The
// state's RetirementExempt and SocialSecurityExempt flags are not applied,
// and there is no per-plan rate override.
func (e *Engine) state(summary domain.YearIncomeSummary, federalDeduction decimal.Decimal) decimal.Decimal {
	rule := taxtables.StateByCode(summary.PrimaryState)
	taxableIncome := decimal.Max(decimal.Zero, summary.OrdinaryIncome.Add(summary.LongTermGains).Sub(federalDeduction))
	if len(rule.Brackets) > 0 {
		brackets := taxtables.Extrapolate(rule.Brackets, summary.Year, taxtables.LastBundledYear, e.InflationRate)
		return taxtables.TaxAtBrackets(taxableIncome, brackets)
	}
	return taxableIncome.Mul(rule.Rate)
}
