// Package realassets models real property (C7 of spec.md §2): monthly
// appreciation per a change policy, mortgage amortization, property tax
// accrual, and maintenance expense lines, plus sale with the primary
// residence capital-gains exclusion. Grounded on the teacher's
// domain/employee.go change-policy style fields and
// calculation/taxes.go's bracket-style helper-function decomposition,
// since the teacher has no real-estate module of its own.
package realassets

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// Appreciate applies one month of growth to a real asset's current value
// using the monthly-equivalent of its configured annual ChangeRate.
func Appreciate(asset *domain.RealAsset, inflationRate decimal.Decimal) decimal.Decimal {
	rate := effectiveRate(asset.ChangePolicy, asset.ChangeRate, inflationRate)
	monthlyRate := monthlyEquivalent(rate)
	delta := asset.CurrentValue.Mul(monthlyRate)
	asset.CurrentValue = asset.CurrentValue.Add(delta)
	return delta
}

// AmortizeMortgage applies one month of mortgage payment, returning the
// interest and principal portions. It detaches the mortgage (by zeroing its
// balance) once the remaining balance is paid off.
func AmortizeMortgage(m *domain.Mortgage) (interest, principal decimal.Decimal) {
	if m == nil || m.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	monthlyRate := monthlyEquivalent(m.AnnualRate)
	interest = m.RemainingBalance.Mul(monthlyRate)
	principal = m.MonthlyPayment.Sub(interest)
	if principal.GreaterThan(m.RemainingBalance) {
		principal = m.RemainingBalance
	}
	m.RemainingBalance = m.RemainingBalance.Sub(principal)
	return interest, principal
}

// PropertyTax returns one month's property tax accrual.
func PropertyTax(asset domain.RealAsset) decimal.Decimal {
	return asset.CurrentValue.Mul(asset.PropertyTaxRate).Div(decimal.NewFromInt(12))
}

// MaintenanceCost returns one month's total maintenance expense across all
// of an asset's configured maintenance line items.
func MaintenanceCost(items []domain.MaintenanceItem, inflationRate decimal.Decimal, monthsSinceStart int) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		rate := effectiveRate(item.ChangePolicy, item.ChangeRate, inflationRate)
		years := decimal.NewFromInt(int64(monthsSinceStart)).Div(decimal.NewFromInt(12))
		factor := decimal.NewFromInt(1).Add(rate).Pow(years)
		total = total.Add(item.MonthlyAmount.Mul(factor))
	}
	return total
}

// SaleGain computes the taxable gain from selling an asset, net of the
// primary-residence exclusion when applicable, per spec.md §4.7.
func SaleGain(asset domain.RealAsset, salePrice decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	gain := salePrice.Sub(asset.PurchasePrice)
	if gain.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if asset.PrimaryResidence {
		exclusion := taxtables.PrimaryResidenceExclusion(status)
		gain = gain.Sub(exclusion)
		if gain.LessThan(decimal.Zero) {
			gain = decimal.Zero
		}
	}
	return gain
}

func monthlyEquivalent(annualRate decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return one.Add(annualRate).Pow(decimal.NewFromFloat(1.0 / 12.0)).Sub(one)
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
	default: // fixed
		return decimal.Zero
	}
}
