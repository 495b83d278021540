package tax

import (
	"testing"

	"github.com/finplan/simcore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func baseSummary() domain.YearIncomeSummary {
	return domain.YearIncomeSummary{
		Year:           2025,
		FilingStatus:   domain.FilingSingle,
		PrimaryState:   "TX",
		OrdinaryIncome: decimal.NewFromInt(80000),
	}
}

func TestSettle_NoIncomeNoTax(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	result := eng.Settle(domain.YearIncomeSummary{Year: 2025, FilingStatus: domain.FilingSingle})
	assert.True(t, result.FederalOrdinary.IsZero())
	assert.True(t, result.Total.LessThanOrEqual(decimal.Zero))
}

func TestSettle_WithholdingOffsetsOwed(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	summary := baseSummary()

	withoutWithholding := eng.Settle(summary)
	assert.True(t, withoutWithholding.Total.GreaterThan(decimal.Zero))

	summary.AmountWithheld = withoutWithholding.Total
	withWithholding := eng.Settle(summary)
	assert.True(t, withWithholding.Total.IsZero(), "withholding equal to owed tax should net to zero, got %s", withWithholding.Total)
}

func TestSettle_ItemizedVsStandardDeduction(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	summary := baseSummary()
	summary.ItemizedSALT = decimal.NewFromInt(5000)
	summary.ItemizedMortgageInterest = decimal.NewFromInt(20000)
	summary.ItemizedCharitable = decimal.NewFromInt(3000)

	withItemized := eng.Settle(summary)

	summary.ItemizedSALT = decimal.Zero
	summary.ItemizedMortgageInterest = decimal.Zero
	summary.ItemizedCharitable = decimal.Zero
	withStandard := eng.Settle(summary)

	assert.True(t, withItemized.FederalOrdinary.LessThan(withStandard.FederalOrdinary),
		"large itemized deductions should lower ordinary tax below the standard-deduction case")
}

func TestLongTermGainsTax_StacksAboveOrdinaryIncome(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	summary := baseSummary()
	summary.LongTermGains = decimal.NewFromInt(10000)

	result := eng.Settle(summary)
	assert.True(t, result.LongTermGains.GreaterThan(decimal.Zero))
}

func TestNIIT_OnlyAboveThresholdAndWhenEnabled(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	summary := baseSummary()
	summary.OrdinaryIncome = decimal.NewFromInt(500000)
	summary.InvestmentIncome = decimal.NewFromInt(50000)
	summary.AGI = summary.OrdinaryIncome

	result := eng.Settle(summary)
	assert.True(t, result.NIIT.GreaterThan(decimal.Zero))

	summary.InvestmentIncome = decimal.Zero
	result = eng.Settle(summary)
	assert.True(t, result.NIIT.IsZero())
}

func TestSettle_EarlyWithdrawalPenalty(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	summary := baseSummary()
	summary.EarlyWithdrawalPenaltyBase = decimal.NewFromInt(10000)

	result := eng.Settle(summary)
	assert.True(t, result.EarlyWithdrawalPenalty.Equal(decimal.NewFromInt(1000)))
}

func TestAMT_OnlyAppliesWhenEnabled(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))
	summary := baseSummary()
	summary.OrdinaryIncome = decimal.NewFromInt(200000)
	summary.AGI = summary.OrdinaryIncome
	summary.ItemizedSALT = decimal.NewFromInt(100000) // added back to AMTI

	disabled := eng.Settle(summary)
	assert.True(t, disabled.AMT.IsZero(), "AMT must stay zero when the plan has not opted in")

	summary.EnableAMT = true
	enabled := eng.Settle(summary)
	assert.True(t, enabled.AMT.GreaterThan(decimal.Zero), "a large SALT add-back with AMT enabled should owe tentative minimum tax")
}

func TestState_FlatVsNoTax(t *testing.T) {
	eng := NewEngine(decimal.NewFromFloat(0.03))

	flat := baseSummary()
	flat.PrimaryState = "IL" // flat-rate state
	flatResult := eng.Settle(flat)
	assert.True(t, flatResult.State.GreaterThan(decimal.Zero))

	noTax := baseSummary()
	noTax.PrimaryState = "TX" // no income tax
	noTaxResult := eng.Settle(noTax)
	assert.True(t, noTaxResult.State.IsZero())
}
