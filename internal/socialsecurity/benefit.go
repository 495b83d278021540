// Package socialsecurity implements Social Security claiming-age benefit
// adjustment, COLA, spousal top-up, and benefit taxability (C3 of
// spec.md §2). The claiming-age reduction/credit schedule is grounded on
// the teacher's domain/employee.go FullRetirementAge birth-year switch
// (rpgo), generalized from a FERS-specific MRA/FRA pairing to the general
// Social Security early/delayed claiming formula.
package socialsecurity

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// FullRetirementAgeMonths returns the Social Security full retirement age,
// in whole months past the person's birth month, for the given birth year.
// Grounded on the teacher's FullRetirementAge() switch in domain/employee.go.
func FullRetirementAgeMonths(birthYear int) int {
	switch {
	case birthYear <= 1937:
		return 65 * 12
	case birthYear <= 1942:
		return 65*12 + (birthYear-1937)*2
	case birthYear <= 1954:
		return 66 * 12
	case birthYear <= 1959:
		return 66*12 + (birthYear-1954)*2
	default:
		return 67 * 12
	}
}

// ClaimingFactor returns the multiplier applied to PIA for a person claiming
// at claimingAgeMonths (age in whole months) given a full retirement age of
// fraMonths, per spec.md §4.3: 5/9 of 1% per month for the first 36 months
// early, 5/12 of 1% per month beyond that, and 2/3 of 1% per month delayed
// (capped at age 70).
func ClaimingFactor(fraMonths, claimingAgeMonths int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch {
	case claimingAgeMonths < fraMonths:
		monthsEarly := fraMonths - claimingAgeMonths
		first36 := monthsEarly
		if first36 > 36 {
			first36 = 36
		}
		beyond36 := monthsEarly - first36
		reduction := decimal.NewFromInt(int64(first36)).Mul(decimal.NewFromFloat(5.0 / 9.0 / 100.0)).
			Add(decimal.NewFromInt(int64(beyond36)).Mul(decimal.NewFromFloat(5.0 / 12.0 / 100.0)))
		factor := one.Sub(reduction)
		if factor.LessThan(decimal.Zero) {
			factor = decimal.Zero
		}
		return factor
	case claimingAgeMonths > fraMonths:
		age70Months := fraMonths + (70*12 - fraMonths)
		capped := claimingAgeMonths
		if capped > 70*12 {
			capped = 70 * 12
		}
		monthsDelayed := capped - fraMonths
		if monthsDelayed < 0 {
			monthsDelayed = 0
		}
		_ = age70Months
		increase := decimal.NewFromInt(int64(monthsDelayed)).Mul(decimal.NewFromFloat(2.0 / 3.0 / 100.0))
		return one.Add(increase)
	default:
		return one
	}
}

// MonthlyBenefit returns the claiming-age-adjusted monthly benefit for a
// person, before COLA and spousal top-up.
func MonthlyBenefit(person domain.Person, claimingAgeMonths int) decimal.Decimal {
	fra := FullRetirementAgeMonths(person.BirthDate.Year())
	factor := ClaimingFactor(fra, claimingAgeMonths)
	return person.PIA.Mul(factor)
}

// ApplyCOLA compounds a benefit amount by annual cost-of-living adjustments
// for the given number of full years since claiming.
func ApplyCOLA(benefit decimal.Decimal, colaRate decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 {
		return benefit
	}
	factor := decimal.NewFromInt(1).Add(colaRate).Pow(decimal.NewFromInt(int64(years)))
	return benefit.Mul(factor)
}

// SpousalBenefit returns the larger of the claimant's own adjusted benefit
// or 50% of the spouse's PIA scaled by the claimant's own claiming factor,
// per spec.md §4.3's spousal top-up rule.
func SpousalBenefit(ownBenefit decimal.Decimal, spousePIA decimal.Decimal, ownFactor decimal.Decimal) decimal.Decimal {
	half := spousePIA.Mul(decimal.NewFromFloat(0.5)).Mul(ownFactor)
	return decimal.Max(ownBenefit, half)
}

// TaxableSocialSecurity computes the taxable portion of annual Social
// Security benefits under the two-threshold combined-income rule of
// spec.md §4.3: 0%, up to 50%, or up to 85% taxable depending on combined
// income (other taxable income plus half of the SS benefit).
func TaxableSocialSecurity(annualBenefit, otherIncome decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	if annualBenefit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	half := annualBenefit.Mul(decimal.NewFromFloat(0.5))
	combined := otherIncome.Add(half)
	t1, t2 := taxtables.SocialSecurityTaxationThresholds(status)

	if combined.LessThanOrEqual(t1) {
		return decimal.Zero
	}
	if combined.LessThanOrEqual(t2) {
		tier1 := decimal.Min(half, combined.Sub(t1).Mul(decimal.NewFromFloat(0.5)))
		return tier1
	}

	tier1Max := decimal.Min(half, t2.Sub(t1).Mul(decimal.NewFromFloat(0.5)))
	tier2 := combined.Sub(t2).Mul(decimal.NewFromFloat(0.85))
	taxable := decimal.Min(annualBenefit.Mul(decimal.NewFromFloat(0.85)), tier1Max.Add(tier2))
	return taxable
}
