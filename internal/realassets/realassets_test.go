package realassets

import (
	"testing"

	"github.com/finplan/simcore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppreciate_MatchInflation(t *testing.T) {
	asset := &domain.RealAsset{
		CurrentValue: decimal.NewFromInt(400000),
		ChangePolicy: domain.ChangeMatchInflation,
	}
	delta := Appreciate(asset, decimal.NewFromFloat(0.03))

	assert.True(t, delta.GreaterThan(decimal.Zero))
	assert.True(t, asset.CurrentValue.Equal(decimal.NewFromInt(400000).Add(delta)))
}

func TestAmortizeMortgage_SplitsInterestAndPrincipal(t *testing.T) {
	m := &domain.Mortgage{
		MonthlyPayment:   decimal.NewFromInt(2000),
		RemainingBalance: decimal.NewFromInt(300000),
		AnnualRate:       decimal.NewFromFloat(0.05),
	}

	interest, principal := AmortizeMortgage(m)
	assert.True(t, interest.GreaterThan(decimal.Zero))
	assert.True(t, principal.GreaterThan(decimal.Zero))
	assert.True(t, interest.Add(principal).Equal(decimal.NewFromInt(2000)))
	assert.True(t, m.RemainingBalance.LessThan(decimal.NewFromInt(300000)))
}

func TestAmortizeMortgage_PayoffClampsPrincipal(t *testing.T) {
	m := &domain.Mortgage{
		MonthlyPayment:   decimal.NewFromInt(2000),
		RemainingBalance: decimal.NewFromInt(100),
		AnnualRate:       decimal.NewFromFloat(0.05),
	}

	interest, principal := AmortizeMortgage(m)
	assert.True(t, principal.Equal(decimal.NewFromInt(100)))
	assert.True(t, m.RemainingBalance.IsZero())
	_ = interest
}

func TestAmortizeMortgage_NilOrPaidOff(t *testing.T) {
	interest, principal := AmortizeMortgage(nil)
	assert.True(t, interest.IsZero())
	assert.True(t, principal.IsZero())

	paidOff := &domain.Mortgage{RemainingBalance: decimal.Zero}
	interest, principal = AmortizeMortgage(paidOff)
	assert.True(t, interest.IsZero())
	assert.True(t, principal.IsZero())
}

func TestPropertyTax(t *testing.T) {
	asset := domain.RealAsset{
		CurrentValue:    decimal.NewFromInt(240000),
		PropertyTaxRate: decimal.NewFromFloat(0.012),
	}
	got := PropertyTax(asset)
	want := decimal.NewFromInt(240000).Mul(decimal.NewFromFloat(0.012)).Div(decimal.NewFromInt(12))
	assert.True(t, got.Equal(want))
}

func TestMaintenanceCost_SumsItemsWithGrowth(t *testing.T) {
	items := []domain.MaintenanceItem{
		{Name: "lawn", MonthlyAmount: decimal.NewFromInt(100), ChangePolicy: domain.ChangeFixed},
		{Name: "hvac", MonthlyAmount: decimal.NewFromInt(50), ChangePolicy: domain.ChangeMatchInflation},
	}
	got := MaintenanceCost(items, decimal.NewFromFloat(0.03), 0)
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "at time zero growth factor is 1, got %s", got)

	later := MaintenanceCost(items, decimal.NewFromFloat(0.03), 24)
	assert.True(t, later.GreaterThan(got), "two years on, the inflation-linked item should have grown")
}

func TestSaleGain_PrimaryResidenceExclusion(t *testing.T) {
	asset := domain.RealAsset{PurchasePrice: decimal.NewFromInt(200000), PrimaryResidence: true}

	small := SaleGain(asset, decimal.NewFromInt(250000), domain.FilingSingle)
	assert.True(t, small.IsZero(), "gain under the exclusion should owe nothing, got %s", small)

	asset.PrimaryResidence = false
	noExclusion := SaleGain(asset, decimal.NewFromInt(250000), domain.FilingSingle)
	assert.True(t, noExclusion.Equal(decimal.NewFromInt(50000)))
}

func TestSaleGain_Loss(t *testing.T) {
	asset := domain.RealAsset{PurchasePrice: decimal.NewFromInt(300000)}
	got := SaleGain(asset, decimal.NewFromInt(250000), domain.FilingSingle)
	assert.True(t, got.IsZero())
}
