package rmd

import (
	"testing"

	"github.com/finplan/simcore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRequired_BelowStartAgeIsZero(t *testing.T) {
	cfg := domain.RMDConfig{Accounts: []string{"ira"}}
	balances := map[string]decimal.Decimal{"ira": decimal.NewFromInt(500000)}

	got := Required(balances, cfg, 70)
	assert.True(t, got.IsZero(), "age below 72 should owe no RMD, got %s", got)
}

func TestRequired_AggregatesListedAccounts(t *testing.T) {
	cfg := domain.RMDConfig{Accounts: []string{"ira", "401k"}}
	balances := map[string]decimal.Decimal{
		"ira":       decimal.NewFromInt(300000),
		"401k":      decimal.NewFromInt(200000),
		"brokerage": decimal.NewFromInt(1000000), // not listed, must be excluded
	}

	got := Required(balances, cfg, 75)
	assert.True(t, got.GreaterThan(decimal.Zero))

	soloIRA := Required(map[string]decimal.Decimal{"ira": decimal.NewFromInt(500000)}, cfg, 75)
	assert.True(t, got.Equal(soloIRA), "aggregate of split balances should equal one account holding the combined total")
}

func TestAllocate_ProRataByBalanceShare(t *testing.T) {
	accounts := []string{"ira", "401k"}
	balances := map[string]decimal.Decimal{
		"ira":  decimal.NewFromInt(300000),
		"401k": decimal.NewFromInt(100000),
	}

	allocations := Allocate(decimal.NewFromInt(4000), balances, accounts)
	assert.Len(t, allocations, 2)

	byName := map[string]decimal.Decimal{}
	for _, a := range allocations {
		byName[a.Account] = a.Amount
	}
	assert.True(t, byName["ira"].Equal(decimal.NewFromInt(3000)))
	assert.True(t, byName["401k"].Equal(decimal.NewFromInt(1000)))
}

func TestAllocate_ZeroRequiredOrZeroBalance(t *testing.T) {
	accounts := []string{"ira"}
	assert.Nil(t, Allocate(decimal.Zero, map[string]decimal.Decimal{"ira": decimal.NewFromInt(1000)}, accounts))
	assert.Nil(t, Allocate(decimal.NewFromInt(1000), map[string]decimal.Decimal{"ira": decimal.Zero}, accounts))
}

func TestIsFirstRMDYear(t *testing.T) {
	assert.True(t, IsFirstRMDYear(1950, 73, 2023))
	assert.False(t, IsFirstRMDYear(1950, 73, 2024))
}
