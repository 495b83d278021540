// Package withdrawal implements the shortfall-draining strategies of C8
// (spec.md §2): given a shortfall amount, drain accounts in a configured
// order, tagging each withdrawal's ordinary/gains/tax-free split and any
// early-withdrawal penalty. Generalized from the teacher's fixed
// taxable/traditional/roth StandardStrategy and BracketFillStrategy in
// internal/sequencing/{standard,bracket_fill}.go into arbitrary
// AccountKind or named-account sequences.
package withdrawal

import (
	"github.com/finplan/simcore/internal/costbasis"
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/shopspring/decimal"
)

// Source describes one drainable account as seen by the withdrawal planner.
type Source struct {
	Name             string
	Kind             domain.AccountKind
	Balance          decimal.Decimal
	Basis            decimal.Decimal // taxable brokerage gain split; Roth/HSA earnings split
	TaxTreatment     domain.TaxTreatment
	AllowWithdrawals bool
	AgeMonths        int // owner's age in months, for the penalty check
}

// Plan drains `need` across sources in the order given by order, returning
// one WithdrawalRecord per account actually drawn from. Accounts with
// AllowWithdrawals false or zero balance are skipped.
func Plan(need decimal.Decimal, sources []Source, order domain.WithdrawalOrder) []domain.WithdrawalRecord {
	if need.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	ordered := orderSources(sources, order)
	return drain(need, ordered)
}

// orderSources returns sources sorted according to order: either an
// explicit account-name sequence, or a kind sequence (accounts of a kind
// not listed are appended in their original relative order at the end).
func orderSources(sources []Source, order domain.WithdrawalOrder) []Source {
	if order.UseAccountSpecific && len(order.AccountSequence) > 0 {
		byName := make(map[string]Source, len(sources))
		for _, s := range sources {
			byName[s.Name] = s
		}
		out := make([]Source, 0, len(sources))
		seen := map[string]bool{}
		for _, name := range order.AccountSequence {
			if s, ok := byName[name]; ok {
				out = append(out, s)
				seen[name] = true
			}
		}
		for _, s := range sources {
			if !seen[s.Name] {
				out = append(out, s)
			}
		}
		return out
	}

	if len(order.KindSequence) > 0 {
		rank := make(map[domain.AccountKind]int, len(order.KindSequence))
		for i, k := range order.KindSequence {
			rank[k] = i
		}
		out := make([]Source, len(sources))
		copy(out, sources)
		// stable insertion sort by rank; unranked kinds sort last, in order seen.
		for i := 1; i < len(out); i++ {
			j := i
			for j > 0 && rankOf(rank, out[j-1].Kind) > rankOf(rank, out[j].Kind) {
				out[j-1], out[j] = out[j], out[j-1]
				j--
			}
		}
		return out
	}

	return sources
}

func rankOf(rank map[domain.AccountKind]int, kind domain.AccountKind) int {
	if r, ok := rank[kind]; ok {
		return r
	}
	return len(rank) + 1
}

// drain withdraws sequentially from ordered sources until need is satisfied
// or sources are exhausted.
func drain(need decimal.Decimal, ordered []Source) []domain.WithdrawalRecord {
	var records []domain.WithdrawalRecord
	remaining := need

	for _, src := range ordered {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if !src.AllowWithdrawals || src.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		gross := decimal.Min(remaining, src.Balance)
		rec := Withdraw(src, gross)
		records = append(records, rec)
		remaining = remaining.Sub(gross)
	}
	return records
}

// Withdraw computes the tax-split WithdrawalRecord for drawing amount from
// one source, per spec.md §4.8. Capital-gains (taxable brokerage) draws are
// never penalized — that money was never tax-deferred. Tax-free (Roth/HSA)
// draws are federal-tax-free regardless of age, but the earnings-beyond-
// contributions portion (tracked the same way as a taxable account's cost
// basis) is penalized when taken before the early-withdrawal age threshold.
// Ordinary-income-treated draws (traditional IRA/401k) are penalized in full
// below the threshold.
func Withdraw(src Source, amount decimal.Decimal) domain.WithdrawalRecord {
	rec := domain.WithdrawalRecord{Account: src.Name, Gross: amount}
	early := src.AgeMonths < taxtables.EarlyWithdrawalPenaltyAge*12+6

	switch src.TaxTreatment {
	case domain.TaxTreatmentTaxFree:
		rec.TaxFreePortion = amount
		if early {
			_, earnings, _ := costbasis.Withdraw(src.Balance, src.Basis, amount)
			rec.Penalty = earnings.Mul(taxtables.EarlyWithdrawalPenaltyRate)
		}
	case domain.TaxTreatmentCapitalGains:
		_, gain, basis := costbasis.Withdraw(src.Balance, src.Basis, amount)
		rec.GainsPortion = gain
		rec.TaxFreePortion = basis
	default: // ordinary income
		rec.OrdinaryPortion = amount
		if early {
			rec.Penalty = rec.OrdinaryPortion.Mul(taxtables.EarlyWithdrawalPenaltyRate)
		}
	}
	return rec
}
