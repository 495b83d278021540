// Package healthcare computes monthly healthcare costs (C5 of spec.md §2):
// a pre-Medicare phase (a configured premium cost line) and a Medicare phase
// (Part B and Part D base premiums, the supplement premium and out-of-pocket
// allowance, plus IRMAA surcharges from a lagged MAGI lookback).
// Grounded on the teacher's calculation/healthcare.go HealthcareCostCalculator
// and calculation/medicare.go MedicareCalculator/IRMAAThreshold table, with
// the single hard-coded 2025 PA/MFJ scenario generalized to any filing
// status and any configured lookback window.
package healthcare

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// MAGI approximates Modified Adjusted Gross Income for IRMAA purposes:
// ordinary income plus investment income plus 85% of Social Security
// benefits received, grounded on the teacher's CalculateMAGI in
// calculation/irmaa.go.
func MAGI(ordinaryIncome, investmentIncome, socialSecurityBenefits decimal.Decimal) decimal.Decimal {
	return ordinaryIncome.Add(investmentIncome).Add(socialSecurityBenefits.Mul(decimal.NewFromFloat(0.85)))
}

// IRMAASurcharge returns the monthly Part B and Part D surcharges for a
// given lagged MAGI and filing status, per the 2025 tier table.
func IRMAASurcharge(magi decimal.Decimal, status domain.FilingStatus) (partB, partD decimal.Decimal) {
	isJoint := status == domain.FilingMarriedFilingJointly || status == domain.FilingQualifyingSurvingSpouse
	for i := len(taxtables.IRMAATiers2025) - 1; i >= 0; i-- {
		tier := taxtables.IRMAATiers2025[i]
		threshold := tier.IncomeThresholdSingle
		if isJoint {
			threshold = tier.IncomeThresholdMFJ
		}
		if magi.GreaterThanOrEqual(threshold) {
			return tier.PartBSurcharge, tier.PartDSurcharge
		}
	}
	return decimal.Zero, decimal.Zero
}

// MAGILookback selects the MAGI value from `years` ago (spec.md's configured
// IRMAALookbackYears) out of a year->MAGI history, returning zero if history
// has no entry for that year.
func MAGILookback(history map[int]decimal.Decimal, currentYear, lookbackYears int) decimal.Decimal {
	target := currentYear - lookbackYears
	if v, ok := history[target]; ok {
		return v
	}
	return decimal.Zero
}

// MonthlyMedicareCost returns one person's total monthly Medicare-phase
// cost: base Part B premium, base Part D premium, the Medigap/supplement
// premium, and the annual out-of-pocket allowance spread monthly, plus the
// IRMAA-adjusted Part B/D surcharges.
func MonthlyMedicareCost(laggedMAGI decimal.Decimal, status domain.FilingStatus, policy domain.HealthcarePolicy) decimal.Decimal {
	irmaaB, irmaaD := IRMAASurcharge(laggedMAGI, status)
	outOfPocket := policy.AnnualOutOfPocket.Div(decimal.NewFromInt(12))
	return taxtables.MedicarePartBBase2025.
		Add(taxtables.MedicarePartDBase2025).
		Add(policy.MedicareSupplementPremium).
		Add(outOfPocket).
		Add(irmaaB).
		Add(irmaaD)
}

// IsMedicareEligible reports whether a person has reached Medicare
// eligibility, either by turning 65 or by an explicit medicare_start_date
// configured as an alternate trigger (e.g. disability-based eligibility).
func IsMedicareEligible(ageMonths int, ym, startDate domain.YearMonth) bool {
	if startDate.Year != 0 && !ym.Before(startDate) {
		return true
	}
	return ageMonths >= 65*12
}

// MonthlyPreMedicareCost returns the pre-Medicare premium-plus-out-of-pocket
// line for policy, grown from plan start by elapsedYears under its change
// policy. Duplicates domain's CashFlowItem.AmountForMonth growth rule rather
// than exporting it, matching the realassets package's self-contained
// effectiveRate helper.
func MonthlyPreMedicareCost(policy domain.HealthcarePolicy, inflationRate decimal.Decimal, elapsedYears int) decimal.Decimal {
	base := policy.MonthlyPremium.Add(policy.AnnualOutOfPocket.Div(decimal.NewFromInt(12)))
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := effectiveRate(policy.ChangePolicy, policy.ChangeRate, inflationRate)
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(elapsedYears)))
	return base.Mul(factor)
}

func effectiveRate(policy domain.ChangePolicy, explicit, inflation decimal.Decimal) decimal.Decimal {
	switch policy {
	case domain.ChangeMatchInflation:
		return inflation
	case domain.ChangeInflationPlus:
		return inflation.Add(explicit)
	case domain.ChangeInflationMinus:
		return inflation.Sub(explicit)
	case domain.ChangeIncrease:
		return explicit
	case domain.ChangeDecrease:
		return explicit.Neg()
	default:
		return decimal.Zero
	}
}
