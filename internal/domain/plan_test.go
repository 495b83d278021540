package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestYearMonth_BeforeAfterEqual(t *testing.T) {
	jan := YearMonth{Year: 2025, Month: 1}
	feb := YearMonth{Year: 2025, Month: 2}
	janNextYear := YearMonth{Year: 2026, Month: 1}

	assert.True(t, jan.Before(feb))
	assert.True(t, feb.After(jan))
	assert.True(t, jan.Before(janNextYear))
	assert.True(t, jan.Equal(YearMonth{Year: 2025, Month: 1}))
	assert.False(t, jan.Equal(feb))
}

func TestYearMonth_InRange(t *testing.T) {
	start := YearMonth{Year: 2025, Month: 1}
	end := YearMonth{Year: 2025, Month: 12}

	assert.True(t, YearMonth{Year: 2025, Month: 6}.InRange(start, end))
	assert.False(t, YearMonth{Year: 2024, Month: 12}.InRange(start, end))
	assert.False(t, YearMonth{Year: 2026, Month: 1}.InRange(start, end))
}

func TestYearMonth_InRangeZeroEndMeansOpenEnded(t *testing.T) {
	start := YearMonth{Year: 2025, Month: 1}
	noEnd := YearMonth{}

	assert.True(t, YearMonth{Year: 2099, Month: 12}.InRange(start, noEnd))
}

func TestYearMonth_Next(t *testing.T) {
	assert.Equal(t, YearMonth{Year: 2025, Month: 2}, YearMonth{Year: 2025, Month: 1}.Next())
	assert.Equal(t, YearMonth{Year: 2026, Month: 1}, YearMonth{Year: 2025, Month: 12}.Next())
}

func TestYearMonth_IsDecember(t *testing.T) {
	assert.True(t, YearMonth{Year: 2025, Month: 12}.IsDecember())
	assert.False(t, YearMonth{Year: 2025, Month: 11}.IsDecember())
}

func TestYearMonth_ElapsedWholeYears(t *testing.T) {
	start := YearMonth{Year: 2025, Month: 6}

	assert.Equal(t, 0, YearMonth{Year: 2025, Month: 6}.ElapsedWholeYears(start))
	assert.Equal(t, 0, YearMonth{Year: 2026, Month: 5}.ElapsedWholeYears(start))
	assert.Equal(t, 1, YearMonth{Year: 2026, Month: 6}.ElapsedWholeYears(start))
	assert.Equal(t, 2, YearMonth{Year: 2027, Month: 7}.ElapsedWholeYears(start))
	assert.Equal(t, 0, YearMonth{Year: 2024, Month: 1}.ElapsedWholeYears(start), "a date before start clamps to zero elapsed years")
}

func TestYearMonth_MonthsBetween(t *testing.T) {
	start := YearMonth{Year: 2025, Month: 1}
	assert.Equal(t, 13, YearMonth{Year: 2026, Month: 2}.MonthsBetween(start))
	assert.Equal(t, -1, YearMonth{Year: 2024, Month: 12}.MonthsBetween(start))
}

func TestPerson_AgeInMonthsAndYears(t *testing.T) {
	p := Person{BirthDate: time.Date(1960, 3, 1, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 65*12, p.AgeInMonths(YearMonth{Year: 2025, Month: 3}))
	assert.Equal(t, 65, p.AgeInYears(YearMonth{Year: 2025, Month: 3}))
	assert.Equal(t, 64, p.AgeInYears(YearMonth{Year: 2025, Month: 2}), "age in completed years before the birth month this year")
}

func TestCashFlowItem_IsActive(t *testing.T) {
	c := CashFlowItem{
		StartDate: YearMonth{Year: 2025, Month: 1},
		EndDate:   YearMonth{Year: 2025, Month: 12},
	}

	assert.True(t, c.IsActive(YearMonth{Year: 2025, Month: 6}))
	assert.False(t, c.IsActive(YearMonth{Year: 2024, Month: 12}))
	assert.False(t, c.IsActive(YearMonth{Year: 2026, Month: 1}))
}

func TestCashFlowItem_AmountForMonth_InactiveIsZero(t *testing.T) {
	c := CashFlowItem{
		StartingAmount: decimal.NewFromInt(500),
		StartDate:      YearMonth{Year: 2025, Month: 1},
		EndDate:        YearMonth{Year: 2025, Month: 12},
	}

	got := c.AmountForMonth(YearMonth{Year: 2026, Month: 1}, decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestCashFlowItem_AmountForMonth_FixedPolicyNoGrowth(t *testing.T) {
	c := CashFlowItem{
		StartingAmount: decimal.NewFromInt(500),
		StartDate:      YearMonth{Year: 2025, Month: 1},
		ChangePolicy:   ChangeFixed,
	}

	got := c.AmountForMonth(YearMonth{Year: 2030, Month: 1}, decimal.NewFromFloat(0.03))
	assert.True(t, got.Equal(decimal.NewFromInt(500)), "fixed change policy should never grow regardless of elapsed years or inflation")
}

func TestCashFlowItem_AmountForMonth_MatchInflationCompounds(t *testing.T) {
	c := CashFlowItem{
		StartingAmount: decimal.NewFromInt(1000),
		StartDate:      YearMonth{Year: 2025, Month: 1},
		ChangePolicy:   ChangeMatchInflation,
	}

	got := c.AmountForMonth(YearMonth{Year: 2027, Month: 1}, decimal.NewFromFloat(0.10))
	want := decimal.NewFromInt(1000).Mul(decimal.NewFromFloat(1.10).Pow(decimal.NewFromInt(2)))
	assert.True(t, got.Equal(want), "want=%s got=%s", want, got)
}

func TestCashFlowItem_AmountForMonth_AnnualFrequencyDividedAcrossMonths(t *testing.T) {
	c := CashFlowItem{
		StartingAmount: decimal.NewFromInt(1200),
		StartDate:      YearMonth{Year: 2025, Month: 1},
		Frequency:      FrequencyAnnual,
		ChangePolicy:   ChangeFixed,
	}

	got := c.AmountForMonth(YearMonth{Year: 2025, Month: 1}, decimal.Zero)
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "an annual amount should be spread evenly across the 12 months")
}

func TestCashFlowItem_AmountForMonth_IncreaseVsDecreasePolicy(t *testing.T) {
	increasing := CashFlowItem{
		StartingAmount: decimal.NewFromInt(1000),
		StartDate:      YearMonth{Year: 2025, Month: 1},
		ChangePolicy:   ChangeIncrease,
		ChangeRate:     decimal.NewFromFloat(0.05),
	}
	decreasing := CashFlowItem{
		StartingAmount: decimal.NewFromInt(1000),
		StartDate:      YearMonth{Year: 2025, Month: 1},
		ChangePolicy:   ChangeDecrease,
		ChangeRate:     decimal.NewFromFloat(0.05),
	}

	gotUp := increasing.AmountForMonth(YearMonth{Year: 2026, Month: 1}, decimal.Zero)
	gotDown := decreasing.AmountForMonth(YearMonth{Year: 2026, Month: 1}, decimal.Zero)

	assert.True(t, gotUp.GreaterThan(decimal.NewFromInt(1000)))
	assert.True(t, gotDown.LessThan(decimal.NewFromInt(1000)))
}

func TestPlan_PersonByOwner(t *testing.T) {
	plan := Plan{People: []Person{
		{Name: "primary", Owner: OwnerPrimary},
		{Name: "spouse", Owner: OwnerSpouse},
	}}

	found := plan.PersonByOwner(OwnerSpouse)
	assert.NotNil(t, found)
	assert.Equal(t, "spouse", found.Name)

	assert.Nil(t, plan.PersonByOwner(OwnerJoint))
}
