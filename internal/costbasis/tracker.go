// Package costbasis implements average-cost basis tracking for taxable
// accounts (C6 of spec.md §2): contributions and reinvested dividends raise
// basis, withdrawals and sales reduce it in proportion to the share of the
// balance withdrawn, and the account's gain ratio splits each withdrawal
// into realized gain and return of basis. Grounded on the gain-ratio computation in the teacher's
// internal/sequencing/standard.go (unrealized := balance.Sub(basis);
// gainRatio := unrealized.Div(balance)).
package costbasis

import "github.com/shopspring/decimal"

// Contribute increases basis by amount added to an account (a deposit or a
// reinvested dividend that is not itself a capital gain).
func Contribute(basis decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	return basis.Add(amount)
}

// GainRatio returns the fraction of balance that represents unrealized
// gain, i.e. 1 - basis/balance, clamped to [0, 1]. A zero or negative
// balance returns zero.
func GainRatio(balance, basis decimal.Decimal) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	unrealized := balance.Sub(basis)
	ratio := unrealized.Div(balance)
	if ratio.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio
}

// Withdraw reduces basis proportionally to the amount withdrawn relative to
// the balance before withdrawal, returning the updated basis along with the
// realized gain and return-of-basis portions of the withdrawn amount.
func Withdraw(balanceBefore, basis, amountWithdrawn decimal.Decimal) (newBasis, gainPortion, basisPortion decimal.Decimal) {
	if balanceBefore.LessThanOrEqual(decimal.Zero) || amountWithdrawn.LessThanOrEqual(decimal.Zero) {
		return basis, decimal.Zero, decimal.Zero
	}
	ratio := GainRatio(balanceBefore, basis)
	gainPortion = amountWithdrawn.Mul(ratio)
	basisPortion = amountWithdrawn.Sub(gainPortion)
	basisReduction := basis.Mul(amountWithdrawn).Div(balanceBefore)
	newBasis = basis.Sub(basisReduction)
	if newBasis.LessThan(decimal.Zero) {
		newBasis = decimal.Zero
	}
	return newBasis, gainPortion, basisPortion
}
