// Package rmd computes Required Minimum Distributions (C4 of spec.md §2):
// a year's required amount from the prior-year-end balance of each listed
// tax-deferred account, distributed in December pro-rata across those
// accounts. Grounded on the divisor table in taxtables.UniformLifetimeDivisor
// (itself sourced from _examples/other_examples's simpleBudget RMD file),
// with the distribution loop shaped after the teacher's ficaOnPerson-style
// per-account accumulation pattern in calculation/taxes.go.
package rmd

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// AccountRequirement is the required distribution amount for one account.
type AccountRequirement struct {
	Account string
	Amount  decimal.Decimal
}

// Required computes the total RMD amount owed by an owner of the given age
// for the given year, against the prior-year-end aggregate balance of the
// accounts named in cfg.Accounts. Returns zero before the owner's first RMD
// year (age < cfg' associated RMDStartAge, checked by the caller).
func Required(priorYearEndBalances map[string]decimal.Decimal, cfg domain.RMDConfig, age int) decimal.Decimal {
	divisor := taxtables.UniformLifetimeDivisor(age)
	if divisor.IsZero() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, acct := range cfg.Accounts {
		if bal, ok := priorYearEndBalances[acct]; ok {
			total = total.Add(bal)
		}
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return total.Div(divisor)
}

// Allocate distributes a required amount pro-rata across the listed
// accounts by their prior-year-end balance share, per spec.md §4.4.
func Allocate(requiredAmount decimal.Decimal, priorYearEndBalances map[string]decimal.Decimal, accounts []string) []AccountRequirement {
	if requiredAmount.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	total := decimal.Zero
	for _, acct := range accounts {
		total = total.Add(priorYearEndBalances[acct])
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	out := make([]AccountRequirement, 0, len(accounts))
	for _, acct := range accounts {
		share := priorYearEndBalances[acct].Div(total)
		out = append(out, AccountRequirement{Account: acct, Amount: requiredAmount.Mul(share)})
	}
	return out
}

// IsFirstRMDYear reports whether year is the first calendar year in which
// the owner reaches startAge, per spec.md §4.4's "first year owner reaches
// rmd_start_age" rule.
func IsFirstRMDYear(birthYear, startAge, year int) bool {
	return year-birthYear == startAge
}
