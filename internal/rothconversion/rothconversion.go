// Package rothconversion implements Roth conversion programs (C9 of
// spec.md §2): a fixed monthly schedule, and a December bracket-fill
// schedule that converts up to the headroom remaining in a named marginal
// tax bracket. Grounded on the teacher's
// internal/sequencing/bracket_fill.go headroom computation
// (MarginalBracketEdges[last] - CurrentOrdinaryIncome - BracketBufferAmount),
// generalized from the teacher's fixed retirement-bucket model to an
// arbitrary source/destination account pair.
package rothconversion

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// FixedMonthlyAmount returns one month's conversion amount for a fixed
// annual-amount schedule.
func FixedMonthlyAmount(sched domain.RothConversionSchedule) decimal.Decimal {
	return sched.AnnualAmount.Div(decimal.NewFromInt(12))
}

// BracketFillAmount returns the December conversion amount that fills the
// remaining headroom in sched.TargetBracket without crossing its top edge,
// capped by the amount available in the source account.
func BracketFillAmount(sched domain.RothConversionSchedule, year int, ytdOrdinaryIncome, sourceBalance, inflationRate decimal.Decimal) decimal.Decimal {
	brackets := taxtables.Extrapolate(taxtables.FederalOrdinaryBrackets(sched.FilingStatus), year, taxtables.LastBundledYear, inflationRate)
	top, ok := taxtables.BracketTop(brackets, sched.TargetBracket)
	if !ok || top.IsZero() {
		return decimal.Zero
	}
	headroom := top.Sub(ytdOrdinaryIncome)
	if headroom.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.Min(headroom, sourceBalance)
}

// Convert clamps a requested conversion amount to what the source account
// actually holds.
func Convert(requested, sourceBalance decimal.Decimal) decimal.Decimal {
	return decimal.Min(requested, sourceBalance)
}
