// Package taxtables holds bracketed tax-table data (C1 of spec.md §2),
// keyed by (year, filing status), with inflation extrapolation beyond the
// last bundled year. All rates and thresholds are decimal.Decimal, matching
// the teacher calculator-struct convention in rpgo's internal/calculation.
package taxtables

import (
	"github.com/shopspring/decimal"
)

// Bracket is one marginal-rate band: [Min, Max) taxed at Rate.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal // zero means "no upper bound"
	Rate decimal.Decimal
}

// BracketByRate returns the bracket whose Rate matches the given percent
// string (e.g. "22%" -> 0.22), or false if none match exactly.
func BracketByRate(brackets []Bracket, name string) (Bracket, bool) {
	target, ok := ParsePercent(name)
	if !ok {
		return Bracket{}, false
	}
	for _, b := range brackets {
		if b.Rate.Equal(target) {
			return b, true
		}
	}
	return Bracket{}, false
}

// ParsePercent converts "22%" to decimal 0.22.
func ParsePercent(s string) (decimal.Decimal, bool) {
	if len(s) == 0 {
		return decimal.Zero, false
	}
	if s[len(s)-1] == '%' {
		s = s[:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Div(decimal.NewFromInt(100)), true
}

// TaxAtBrackets applies the piecewise bracket schedule to taxableIncome,
// summing each bracket's contribution. Brackets must be sorted ascending by
// Min; a zero Max on the final bracket is treated as unbounded.
func TaxAtBrackets(taxableIncome decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, b := range brackets {
		if taxableIncome.LessThanOrEqual(b.Min) {
			break
		}
		upper := b.Max
		if upper.IsZero() {
			upper = taxableIncome
		}
		amountInBracket := decimal.Min(taxableIncome, upper).Sub(b.Min)
		if amountInBracket.GreaterThan(decimal.Zero) {
			total = total.Add(amountInBracket.Mul(b.Rate))
		}
	}
	return total
}

// BracketTop returns the upper edge of the bracket matching the given rate
// name. Used by Roth bracket-fill (C9) to compute the headroom remaining in
// the named marginal bracket.
func BracketTop(brackets []Bracket, name string) (decimal.Decimal, bool) {
	b, ok := BracketByRate(brackets, name)
	if !ok {
		return decimal.Zero, false
	}
	return b.Max, true
}

// Extrapolate scales every threshold in brackets by
// (1+inflationRate)^(year-lastBundledYear), used beyond the last bundled
// data year per spec.md §4.2.
func Extrapolate(brackets []Bracket, year, lastBundledYear int, inflationRate decimal.Decimal) []Bracket {
	if year <= lastBundledYear {
		out := make([]Bracket, len(brackets))
		copy(out, brackets)
		return out
	}
	factor := decimal.NewFromInt(1).Add(inflationRate).Pow(decimal.NewFromInt(int64(year - lastBundledYear)))
	out := make([]Bracket, len(brackets))
	for i, b := range brackets {
		out[i] = Bracket{Min: b.Min.Mul(factor), Max: b.Max.Mul(factor), Rate: b.Rate}
	}
	return out
}

// ExtrapolateAmount scales a single threshold (e.g. a standard deduction or
// NIIT threshold) the same way Extrapolate scales bracket edges.
func ExtrapolateAmount(amount decimal.Decimal, year, lastBundledYear int, inflationRate decimal.Decimal) decimal.Decimal {
	if year <= lastBundledYear {
		return amount
	}
	factor := decimal.NewFromInt(1).Add(inflationRate).Pow(decimal.NewFromInt(int64(year - lastBundledYear)))
	return amount.Mul(factor)
}
