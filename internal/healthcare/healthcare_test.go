package healthcare

import (
	"testing"

	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMAGI(t *testing.T) {
	got := MAGI(decimal.NewFromInt(60000), decimal.NewFromInt(5000), decimal.NewFromInt(24000))
	want := decimal.NewFromInt(60000).Add(decimal.NewFromInt(5000)).Add(decimal.NewFromInt(24000).Mul(decimal.NewFromFloat(0.85)))
	assert.True(t, got.Equal(want), "want=%s got=%s", want, got)
}

func TestIRMAASurcharge_RisesWithMAGI(t *testing.T) {
	low, lowD := IRMAASurcharge(decimal.NewFromInt(50000), domain.FilingSingle)
	high, highD := IRMAASurcharge(decimal.NewFromInt(600000), domain.FilingSingle)

	assert.True(t, low.IsZero())
	assert.True(t, lowD.IsZero())
	assert.True(t, high.GreaterThan(decimal.Zero))
	assert.True(t, highD.GreaterThan(decimal.Zero))
}

func TestIRMAASurcharge_JointThresholdHigherThanSingle(t *testing.T) {
	magi := decimal.NewFromInt(250000)
	single, _ := IRMAASurcharge(magi, domain.FilingSingle)
	joint, _ := IRMAASurcharge(magi, domain.FilingMarriedFilingJointly)

	assert.True(t, single.GreaterThanOrEqual(joint), "the same MAGI should trigger an equal-or-larger surcharge filing single than jointly")
}

func TestMAGILookback(t *testing.T) {
	history := map[int]decimal.Decimal{
		2023: decimal.NewFromInt(80000),
		2024: decimal.NewFromInt(90000),
	}
	assert.True(t, MAGILookback(history, 2025, 2).Equal(decimal.NewFromInt(80000)))
	assert.True(t, MAGILookback(history, 2026, 2).IsZero(), "missing history year should fall back to zero")
}

func TestMonthlyMedicareCost_IncludesBasePremium(t *testing.T) {
	got := MonthlyMedicareCost(decimal.Zero, domain.FilingSingle, domain.HealthcarePolicy{})
	want := taxtables.MedicarePartBBase2025.Add(taxtables.MedicarePartDBase2025)
	assert.True(t, got.Equal(want), "want=%s got=%s", want, got)
}

func TestMonthlyMedicareCost_IncludesSupplementAndOutOfPocket(t *testing.T) {
	policy := domain.HealthcarePolicy{
		MedicareSupplementPremium: decimal.NewFromInt(200),
		AnnualOutOfPocket:         decimal.NewFromInt(2400),
	}
	got := MonthlyMedicareCost(decimal.Zero, domain.FilingSingle, policy)
	want := taxtables.MedicarePartBBase2025.
		Add(taxtables.MedicarePartDBase2025).
		Add(decimal.NewFromInt(200)).
		Add(decimal.NewFromInt(200)) // 2400/12 out-of-pocket
	assert.True(t, got.Equal(want), "want=%s got=%s", want, got)
}

func TestMonthlyMedicareCost_AddsIRMAASurcharge(t *testing.T) {
	base := MonthlyMedicareCost(decimal.Zero, domain.FilingSingle, domain.HealthcarePolicy{})
	high := MonthlyMedicareCost(decimal.NewFromInt(600000), domain.FilingSingle, domain.HealthcarePolicy{})
	assert.True(t, high.GreaterThan(base))
}

func TestIsMedicareEligible_ByAge(t *testing.T) {
	assert.False(t, IsMedicareEligible(64*12+11, domain.YearMonth{Year: 2025, Month: 1}, domain.YearMonth{}))
	assert.True(t, IsMedicareEligible(65*12, domain.YearMonth{Year: 2025, Month: 1}, domain.YearMonth{}))
}

func TestIsMedicareEligible_ByExplicitStartDate(t *testing.T) {
	start := domain.YearMonth{Year: 2030, Month: 6}
	assert.False(t, IsMedicareEligible(50*12, domain.YearMonth{Year: 2030, Month: 5}, start), "before the configured start date, even an early-eligibility trigger shouldn't apply yet")
	assert.True(t, IsMedicareEligible(50*12, domain.YearMonth{Year: 2030, Month: 6}, start), "an explicit medicare_start_date is an alternate trigger independent of age")
}

func TestMonthlyPreMedicareCost_GrowsUnderChangePolicy(t *testing.T) {
	policy := domain.HealthcarePolicy{
		MonthlyPremium:    decimal.NewFromInt(500),
		AnnualOutOfPocket: decimal.NewFromInt(1200),
		ChangePolicy:      domain.ChangeMatchInflation,
	}
	inflation := decimal.NewFromFloat(0.03)

	base := MonthlyPreMedicareCost(policy, inflation, 0)
	assert.True(t, base.Equal(decimal.NewFromInt(500).Add(decimal.NewFromInt(100))))

	grown := MonthlyPreMedicareCost(policy, inflation, 2)
	want := base.Mul(decimal.NewFromFloat(1.03).Pow(decimal.NewFromInt(2)))
	assert.True(t, grown.Equal(want), "want=%s got=%s", want, grown)
}

func TestMonthlyPreMedicareCost_ZeroPolicyIsZero(t *testing.T) {
	got := MonthlyPreMedicareCost(domain.HealthcarePolicy{}, decimal.NewFromFloat(0.03), 5)
	assert.True(t, got.IsZero())
}
