package socialsecurity

import (
	"testing"
	"time"

	"github.com/finplan/simcore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFullRetirementAgeMonths(t *testing.T) {
	tests := []struct {
		name      string
		birthYear int
		want      int
	}{
		{"pre-1938", 1935, 65 * 12},
		{"1943-1954 plateau", 1950, 66 * 12},
		{"1960 and later", 1965, 67 * 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullRetirementAgeMonths(tt.birthYear))
		})
	}
}

func TestClaimingFactor(t *testing.T) {
	fra := 67 * 12

	atFRA := ClaimingFactor(fra, fra)
	assert.True(t, atFRA.Equal(decimal.NewFromInt(1)))

	early := ClaimingFactor(fra, 62*12)
	assert.True(t, early.LessThan(decimal.NewFromInt(1)), "claiming at 62 should reduce below 100%%, got %s", early)
	assert.True(t, early.GreaterThan(decimal.Zero))

	delayed := ClaimingFactor(fra, 70*12)
	assert.True(t, delayed.GreaterThan(decimal.NewFromInt(1)), "claiming at 70 should increase above 100%%, got %s", delayed)
}

func TestMonthlyBenefit(t *testing.T) {
	p := domain.Person{
		BirthDate: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
		PIA:       decimal.NewFromInt(2000),
	}
	fra := FullRetirementAgeMonths(p.BirthDate.Year())
	got := MonthlyBenefit(p, fra)
	assert.True(t, got.Equal(decimal.NewFromInt(2000)))
}

func TestApplyCOLA(t *testing.T) {
	benefit := decimal.NewFromInt(1000)

	assert.True(t, ApplyCOLA(benefit, decimal.NewFromFloat(0.02), 0).Equal(benefit))

	grown := ApplyCOLA(benefit, decimal.NewFromFloat(0.02), 3)
	want := benefit.Mul(decimal.NewFromFloat(1.02).Pow(decimal.NewFromInt(3)))
	assert.True(t, grown.Equal(want), "want=%s got=%s", want, grown)
}

func TestSpousalBenefit(t *testing.T) {
	own := decimal.NewFromInt(800)
	spousePIA := decimal.NewFromInt(2400)
	ownFactor := decimal.NewFromFloat(0.9)

	got := SpousalBenefit(own, spousePIA, ownFactor)
	want := spousePIA.Mul(decimal.NewFromFloat(0.5)).Mul(ownFactor)
	assert.True(t, got.Equal(want), "half-spousal should exceed own benefit here: want=%s got=%s", want, got)

	higherOwn := decimal.NewFromInt(5000)
	assert.True(t, SpousalBenefit(higherOwn, spousePIA, ownFactor).Equal(higherOwn))
}

func TestTaxableSocialSecurity(t *testing.T) {
	status := domain.FilingSingle

	none := TaxableSocialSecurity(decimal.NewFromInt(24000), decimal.Zero, status)
	assert.True(t, none.IsZero(), "low combined income should owe no tax on benefits, got %s", none)

	mid := TaxableSocialSecurity(decimal.NewFromInt(24000), decimal.NewFromInt(20000), status)
	assert.True(t, mid.GreaterThan(decimal.Zero))
	assert.True(t, mid.LessThanOrEqual(decimal.NewFromInt(24000).Mul(decimal.NewFromFloat(0.5))))

	high := TaxableSocialSecurity(decimal.NewFromInt(24000), decimal.NewFromInt(100000), status)
	assert.True(t, high.GreaterThan(mid))
	assert.True(t, high.LessThanOrEqual(decimal.NewFromInt(24000).Mul(decimal.NewFromFloat(0.85))))
}
