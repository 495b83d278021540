// Package engine implements the central monthly simulation pipeline (C10 of
// spec.md §2): a normatively ordered 21-step advance of PlanState by one
// calendar month, plus the December year-boundary tax settlement. Grounded
// on the teacher's calculation/engine.go CalculationEngine.RunScenario
// orchestration shape (validate once, loop emitting one result per period,
// accumulate into a summary), restructured from the teacher's annual
// cadence to the monthly cadence spec.md §4.10 requires, with each
// sub-step implemented as a private method in call order.
package engine

import (
	"github.com/finplan/simcore/internal/costbasis"
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/healthcare"
	"github.com/finplan/simcore/internal/realassets"
	"github.com/finplan/simcore/internal/rmd"
	"github.com/finplan/simcore/internal/rothconversion"
	"github.com/finplan/simcore/internal/socialsecurity"
	"github.com/finplan/simcore/internal/tax"
	"github.com/finplan/simcore/internal/taxtables"
	"github.com/finplan/simcore/internal/withdrawal"
	"github.com/shopspring/decimal"
)

// ReturnSource supplies one annual (stock, bond) return pair, drawn once per
// simulated calendar year and held fixed across that year's twelve months,
// per spec.md §4.10 step 11.
type ReturnSource interface {
	Next() (stock, bond decimal.Decimal)
}

// Engine advances a PlanState one month at a time. It is not safe for
// concurrent use; each simulation run owns its own Engine and PlanState.
type Engine struct {
	Tax     *tax.Engine
	Returns ReturnSource

	yearStockReturn decimal.Decimal
	yearBondReturn  decimal.Decimal
	yearLoaded      int

	ssClaimStartYear map[string]int
	ssBaseBenefit    map[string]decimal.Decimal
}

// New builds an Engine for a run using taxEngine for the December
// settlement and returnSource for annual market-return draws.
func New(taxEngine *tax.Engine, returnSource ReturnSource) *Engine {
	return &Engine{
		Tax:              taxEngine,
		Returns:          returnSource,
		ssClaimStartYear: map[string]int{},
		ssBaseBenefit:    map[string]decimal.Decimal{},
	}
}

// AdvanceMonth runs the normative 21-step pipeline for state.Current,
// mutating state in place and returning the month's recorded result. The
// caller is responsible for advancing state.Current afterward and invoking
// SettleYear at the December boundary.
func (e *Engine) AdvanceMonth(state *domain.PlanState) domain.MonthResult {
	result := domain.NewMonthResult(state.Current)
	plan := state.Plan
	inflation := plan.Settings.InflationRate

	e.stepAges(state)
	e.stepIncome(state, &result, inflation)
	e.stepPayrollTaxes(state, &result)
	e.stepWithholding(state, &result, inflation)
	e.stepPayrollContributions(state, &result, inflation)
	e.stepEmployerMatch(state, &result, inflation)
	e.stepOtherContributions(state, &result, inflation)
	e.stepTransfers(state, &result, inflation)
	e.stepRothConversions(state, &result, inflation)
	e.stepRMDs(state, &result)
	e.stepGrowth(state, &result)
	e.stepDividends(state, &result)
	e.stepFees(state, &result)
	e.stepRealAssets(state, &result, inflation)
	e.stepTransactions(state, &result)
	e.stepHealthcare(state, &result, inflation)
	e.stepExpenses(state, &result, inflation)
	e.stepWithdrawals(state, &result)
	e.stepPayExpenses(state, &result)
	e.stepCostBasisSync(state)

	result.EndingCash = e.cashAccount(state).Balance
	result.Insolvent = state.Insolvent
	return result
}

// cashAccount returns the plan's designated cash account.
func (e *Engine) cashAccount(state *domain.PlanState) *domain.AccountState {
	for _, a := range state.Accounts {
		if a.Kind == domain.AccountCash {
			return a
		}
	}
	return nil
}

// 1. Ages.
func (e *Engine) stepAges(state *domain.PlanState) {
	for i := range state.Plan.People {
		p := &state.Plan.People[i]
		state.AgesMonths[p.Name] = p.AgeInMonths(state.Current)
	}
}

// 2. Income.
func (e *Engine) stepIncome(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	cash := e.cashAccount(state)
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowIncome || !item.IsActive(state.Current) {
			continue
		}
		if item.IsSocialSecurity {
			continue // handled below via C3, not as a literal cash-flow amount
		}
		amount := item.AmountForMonth(state.Current, inflation)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		result.IncomeItems[item.Name] = amount
		if cash != nil {
			cash.Balance = cash.Balance.Add(amount)
		}
		if item.TaxTreatment == domain.TaxTreatmentIncome {
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
			if owner := state.Plan.PersonByOwner(item.Owner); owner != nil {
				state.YTD.WagesByPerson[owner.Name] = state.YTD.WagesByPerson[owner.Name].Add(amount)
			}
		} else if item.TaxTreatment == domain.TaxTreatmentCapitalGains {
			state.YTD.LongTermGains = state.YTD.LongTermGains.Add(amount)
		}
	}

	for i := range state.Plan.People {
		p := &state.Plan.People[i]
		if p.PIA.LessThanOrEqual(decimal.Zero) || p.SSClaimingAge == 0 {
			continue
		}
		claimMonths := p.SSClaimingAge*12 + p.SSClaimingMonth
		if state.AgesMonths[p.Name] < claimMonths {
			continue
		}
		benefit := e.socialSecurityBenefit(state, p, state.Current, state.Plan.Settings.COLAAssumption)
		if benefit.LessThanOrEqual(decimal.Zero) {
			continue
		}
		result.SocialSecurity[p.Name] = benefit
		state.YTD.SocialSecurityBenefits = state.YTD.SocialSecurityBenefits.Add(benefit)
		if cash != nil {
			cash.Balance = cash.Balance.Add(benefit)
		}
	}
}

// socialSecurityBenefit returns p's COLA-adjusted monthly benefit for ym,
// caching the claiming-age-adjusted base so COLA compounds from the year
// benefits started rather than from the plan start. When p has a spouse with
// a nonzero PIA, the cached base is the larger of p's own adjusted benefit or
// the spousal top-up (half the spouse's PIA scaled by p's own claiming
// factor), per spec.md §4.3.
func (e *Engine) socialSecurityBenefit(state *domain.PlanState, p *domain.Person, ym domain.YearMonth, colaRate decimal.Decimal) decimal.Decimal {
	claimMonths := p.SSClaimingAge*12 + p.SSClaimingMonth
	base, ok := e.ssBaseBenefit[p.Name]
	if !ok {
		own := socialsecurity.MonthlyBenefit(*p, claimMonths)
		base = own
		if spouse := spousePerson(state.Plan, p); spouse != nil && spouse.PIA.GreaterThan(decimal.Zero) {
			fra := socialsecurity.FullRetirementAgeMonths(p.BirthDate.Year())
			ownFactor := socialsecurity.ClaimingFactor(fra, claimMonths)
			base = socialsecurity.SpousalBenefit(own, spouse.PIA, ownFactor)
		}
		e.ssBaseBenefit[p.Name] = base
		e.ssClaimStartYear[p.Name] = ym.Year
	}
	years := ym.Year - e.ssClaimStartYear[p.Name]
	return socialsecurity.ApplyCOLA(base, colaRate, years)
}

// spousePerson returns p's spouse within plan's household, or nil if p has no
// recognized opposite-owner counterpart.
func spousePerson(plan *domain.Plan, p *domain.Person) *domain.Person {
	switch p.Owner {
	case domain.OwnerPrimary:
		return plan.PersonByOwner(domain.OwnerSpouse)
	case domain.OwnerSpouse:
		return plan.PersonByOwner(domain.OwnerPrimary)
	default:
		return nil
	}
}

// 3. Payroll taxes.
func (e *Engine) stepPayrollTaxes(state *domain.PlanState, result *domain.MonthResult) {
	cash := e.cashAccount(state)
	total := decimal.Zero

	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowIncome || !item.IsActive(state.Current) {
			continue
		}
		if item.IsSocialSecurity {
			continue
		}
		wages := item.AmountForMonth(state.Current, state.Plan.Settings.InflationRate)
		if wages.LessThanOrEqual(decimal.Zero) {
			continue
		}
		owner := state.Plan.PersonByOwner(item.Owner)
		if owner == nil {
			continue
		}
		ytdWages := state.YTD.WagesByPerson[owner.Name]

		if item.IsSelfEmployment {
			total = total.Add(wages.Mul(taxtables.SelfEmploymentTaxRate))
			continue
		}

		remainingWageBase := taxtables.SSWageBase2025.Sub(ytdWages)
		if remainingWageBase.LessThan(decimal.Zero) {
			remainingWageBase = decimal.Zero
		}
		oasdiBase := decimal.Min(wages, remainingWageBase)
		total = total.Add(oasdiBase.Mul(taxtables.SSRate))
		total = total.Add(wages.Mul(taxtables.MedicareRate))

		threshold := taxtables.AdditionalMedicareThreshold(state.Plan.Settings.FilingStatus)
		overThreshold := ytdWages.Add(wages).Sub(threshold)
		if overThreshold.GreaterThan(decimal.Zero) {
			taxableExcess := decimal.Min(wages, overThreshold)
			total = total.Add(taxableExcess.Mul(taxtables.AdditionalMedicareRate))
		}
	}

	if total.GreaterThan(decimal.Zero) && cash != nil {
		cash.Balance = cash.Balance.Sub(total)
		state.YTD.FICAWithheld = state.YTD.FICAWithheld.Add(total)
	}
	result.FICAWithheld = total
}

// 4. Income-tax withholding.
func (e *Engine) stepWithholding(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	cash := e.cashAccount(state)
	total := decimal.Zero
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowIncome || item.TaxHandling != domain.TaxHandlingWithhold || !item.IsActive(state.Current) {
			continue
		}
		amount := item.AmountForMonth(state.Current, inflation)
		total = total.Add(amount.Mul(item.WithholdPercent))
	}
	if total.GreaterThan(decimal.Zero) && cash != nil {
		cash.Balance = cash.Balance.Sub(total)
		state.YTD.TaxWithheld = state.YTD.TaxWithheld.Add(total)
	}
	result.TaxWithheld = total
}

// 5. Payroll-sourced contributions.
func (e *Engine) stepPayrollContributions(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowContribution || item.SourceAccount != "income" || !item.IsActive(state.Current) {
			continue
		}
		amount := item.AmountForMonth(state.Current, inflation)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		dest := state.Account(item.DestinationAccount)
		if dest == nil {
			continue
		}
		dest.Balance = dest.Balance.Add(amount)
		if basisTracked(dest.Kind) {
			e.addBasis(state, dest.Name, amount)
		}
		result.Contributions = append(result.Contributions, domain.AccountDelta{Account: dest.Name, Reason: item.Name, Amount: amount})
	}
}

// 6. Employer match.
func (e *Engine) stepEmployerMatch(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowContribution || item.MatchPercent.LessThanOrEqual(decimal.Zero) || !item.IsActive(state.Current) {
			continue
		}
		employeeContribution := item.AmountForMonth(state.Current, inflation)
		salary := e.salaryFor(state, item.MatchSalaryRef, inflation)
		matchFromContribution := employeeContribution.Mul(item.MatchPercent)
		matchCap := salary.Mul(item.MatchUpToPercent)
		match := decimal.Min(matchFromContribution, matchCap)
		if match.LessThanOrEqual(decimal.Zero) {
			continue
		}
		dest := state.Account(item.DestinationAccount)
		if dest == nil {
			continue
		}
		dest.Balance = dest.Balance.Add(match)
		if basisTracked(dest.Kind) {
			e.addBasis(state, dest.Name, match)
		}
		result.EmployerMatches = append(result.EmployerMatches, domain.AccountDelta{Account: dest.Name, Reason: item.Name + " match", Amount: match})
	}
}

func (e *Engine) salaryFor(state *domain.PlanState, name string, inflation decimal.Decimal) decimal.Decimal {
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Name == name && item.IsActive(state.Current) {
			return item.AmountForMonth(state.Current, inflation)
		}
	}
	return decimal.Zero
}

// 7. Other (non-payroll) contributions.
func (e *Engine) stepOtherContributions(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowContribution || item.SourceAccount == "income" || item.SourceAccount == "" || !item.IsActive(state.Current) {
			continue
		}
		amount := item.AmountForMonth(state.Current, inflation)
		src := state.Account(item.SourceAccount)
		dest := state.Account(item.DestinationAccount)
		if src == nil || dest == nil || amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		amount = decimal.Min(amount, src.Balance)
		src.Balance = src.Balance.Sub(amount)
		dest.Balance = dest.Balance.Add(amount)
		if basisTracked(dest.Kind) {
			e.addBasis(state, dest.Name, amount)
		}
		result.Contributions = append(result.Contributions, domain.AccountDelta{Account: dest.Name, Reason: item.Name, Amount: amount})
	}
}

// 8. Recurring transfers.
func (e *Engine) stepTransfers(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowTransfer || !item.IsActive(state.Current) {
			continue
		}
		amount := item.AmountForMonth(state.Current, inflation)
		src := state.Account(item.SourceAccount)
		dest := state.Account(item.DestinationAccount)
		if src == nil || dest == nil || amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		amount = decimal.Min(amount, src.Balance)
		src.Balance = src.Balance.Sub(amount)
		dest.Balance = dest.Balance.Add(amount)
		if item.TaxTreatment == domain.TaxTreatmentIncome {
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
		}
		result.Transfers = append(result.Transfers, domain.AccountDelta{Account: dest.Name, Reason: item.Name, Amount: amount})
	}
}

// 9. Roth conversions.
func (e *Engine) stepRothConversions(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for _, sched := range state.Plan.RothSchedules {
		if !state.Current.InRange(sched.StartDate, sched.EndDate) {
			continue
		}
		src := state.Account(sched.SourceAccount)
		dest := state.Account(sched.DestinationAccount)
		if src == nil || dest == nil {
			continue
		}

		var amount decimal.Decimal
		switch sched.Kind {
		case "fixed":
			amount = rothconversion.FixedMonthlyAmount(sched)
		case "bracket_fill":
			if !state.Current.IsDecember() {
				continue
			}
			amount = rothconversion.BracketFillAmount(sched, state.Current.Year, state.YTD.OrdinaryIncome, src.Balance, inflation)
		}
		amount = rothconversion.Convert(amount, src.Balance)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		src.Balance = src.Balance.Sub(amount)
		dest.Balance = dest.Balance.Add(amount)
		if basisTracked(dest.Kind) {
			e.addBasis(state, dest.Name, amount)
		}
		state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
		state.YTD.RothConversionIncome = state.YTD.RothConversionIncome.Add(amount)
		result.RothConversions = append(result.RothConversions, domain.AccountDelta{Account: dest.Name, Reason: sched.Name, Amount: amount})
	}
}

// 10. RMDs (December only).
func (e *Engine) stepRMDs(state *domain.PlanState, result *domain.MonthResult) {
	if !state.Current.IsDecember() {
		return
	}
	for _, cfg := range state.Plan.RMDs {
		owner := personByName(state.Plan, cfg.OwnerName)
		if owner == nil {
			continue
		}
		age := owner.AgeInYears(state.Current)
		startAge := owner.RMDStartAge
		if startAge == 0 {
			startAge = 73
		}
		if age < startAge {
			continue
		}

		priorBalances := map[string]decimal.Decimal{}
		for _, acct := range cfg.Accounts {
			if bal, ok := state.PriorYearEndBalances[acct]; ok {
				priorBalances[acct] = bal
			} else if a := state.Account(acct); a != nil {
				priorBalances[acct] = a.Balance
			}
		}
		required := rmd.Required(priorBalances, cfg, age)
		if required.LessThanOrEqual(decimal.Zero) {
			continue
		}
		allocations := rmd.Allocate(required, priorBalances, cfg.Accounts)
		dest := state.Account(cfg.DestinationAccount)

		for _, alloc := range allocations {
			src := state.Account(alloc.Account)
			if src == nil {
				continue
			}
			amount := decimal.Min(alloc.Amount, src.Balance)
			src.Balance = src.Balance.Sub(amount)
			if dest != nil {
				dest.Balance = dest.Balance.Add(amount)
			}
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
			result.RMDs = append(result.RMDs, domain.AccountDelta{Account: alloc.Account, Reason: "rmd:" + cfg.OwnerName, Amount: amount.Neg()})
		}
		state.RMDSatisfiedThisYear[cfg.OwnerName] = true
	}
}

func personByName(plan *domain.Plan, name string) *domain.Person {
	for i := range plan.People {
		if plan.People[i].Name == name {
			return &plan.People[i]
		}
	}
	return nil
}

// 11. Account growth.
func (e *Engine) stepGrowth(state *domain.PlanState, result *domain.MonthResult) {
	if state.Current.Year != e.yearLoaded {
		e.yearStockReturn, e.yearBondReturn = e.Returns.Next()
		e.yearLoaded = state.Current.Year
	}
	for _, a := range state.Accounts {
		rate := a.GrowthRate
		if !e.yearStockReturn.IsZero() || !e.yearBondReturn.IsZero() {
			bondShare := a.BondAllocationPct.Div(decimal.NewFromInt(100))
			stockShare := decimal.NewFromInt(1).Sub(bondShare)
			rate = bondShare.Mul(e.yearBondReturn).Add(stockShare.Mul(e.yearStockReturn))
		}
		monthly := monthlyEquivalent(rate)
		delta := a.Balance.Mul(monthly)
		a.Balance = a.Balance.Add(delta)
		if !delta.IsZero() {
			result.GrowthDeltas = append(result.GrowthDeltas, domain.AccountDelta{Account: a.Name, Reason: "growth", Amount: delta})
		}
	}
}

func monthlyEquivalent(annualRate decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return one.Add(annualRate).Pow(decimal.NewFromFloat(1.0 / 12.0)).Sub(one)
}

// 12. Dividends.
func (e *Engine) stepDividends(state *domain.PlanState, result *domain.MonthResult) {
	cash := e.cashAccount(state)
	for _, a := range state.Accounts {
		if a.DividendRate.LessThanOrEqual(decimal.Zero) {
			continue
		}
		monthlyRate := monthlyEquivalent(a.DividendRate)
		amount := a.Balance.Mul(monthlyRate)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if a.DividendReinvest {
			a.Balance = a.Balance.Add(amount)
			if a.Kind == domain.AccountTaxableBrokerage {
				e.addBasis(state, a.Name, amount)
			}
		} else if cash != nil {
			cash.Balance = cash.Balance.Add(amount)
		}

		treatment := a.DividendTaxTreatment
		if treatment == "" {
			treatment = state.Plan.Settings.DefaultDividendTaxTreatment
		}
		switch treatment {
		case domain.TaxTreatmentIncome:
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
			state.YTD.InvestmentIncome = state.YTD.InvestmentIncome.Add(amount)
		case domain.TaxTreatmentCapitalGains:
			state.YTD.LongTermGains = state.YTD.LongTermGains.Add(amount)
			state.YTD.InvestmentIncome = state.YTD.InvestmentIncome.Add(amount)
		}
		result.DividendDeltas = append(result.DividendDeltas, domain.AccountDelta{Account: a.Name, Reason: "dividend", Amount: amount})
	}
}

// 13. Fees.
func (e *Engine) stepFees(state *domain.PlanState, result *domain.MonthResult) {
	for _, a := range state.Accounts {
		if a.FeeRate.LessThanOrEqual(decimal.Zero) {
			continue
		}
		monthlyRate := monthlyEquivalent(a.FeeRate)
		fee := a.Balance.Mul(monthlyRate)
		if fee.LessThanOrEqual(decimal.Zero) {
			continue
		}
		a.Balance = a.Balance.Sub(fee)
		result.FeeDeltas = append(result.FeeDeltas, domain.AccountDelta{Account: a.Name, Reason: "fee", Amount: fee.Neg()})
	}
}

// 14. Real assets.
func (e *Engine) stepRealAssets(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	monthIndex := state.Current.MonthsBetween(state.Plan.Simulation.PlanStart)
	for _, ra := range state.RealAssets {
		delta := realassets.Appreciate(ra, inflation)
		if !delta.IsZero() {
			result.RealAssetDeltas = append(result.RealAssetDeltas, domain.AccountDelta{Account: ra.Name, Reason: "appreciation", Amount: delta})
		}
		if ra.Mortgage != nil {
			interest, principal := realassets.AmortizeMortgage(ra.Mortgage)
			if !interest.IsZero() || !principal.IsZero() {
				state.YTD.ItemizedMortgageInterest = state.YTD.ItemizedMortgageInterest.Add(interest)
				result.RealAssetDeltas = append(result.RealAssetDeltas, domain.AccountDelta{Account: ra.Name, Reason: "mortgage_payment", Amount: interest.Add(principal).Neg()})
			}
			if ra.Mortgage.RemainingBalance.LessThanOrEqual(decimal.Zero) {
				ra.Mortgage = nil
			}
		}
		propertyTax := realassets.PropertyTax(*ra)
		state.YTD.ItemizedSALT = state.YTD.ItemizedSALT.Add(propertyTax)
		result.ExpensesByCategory["property_tax:"+ra.Name] = propertyTax

		maintenance := realassets.MaintenanceCost(ra.Maintenance, inflation, monthIndex)
		if maintenance.GreaterThan(decimal.Zero) {
			result.ExpensesByCategory["maintenance:"+ra.Name] = maintenance
		}
	}
}

// 15. Transactions.
func (e *Engine) stepTransactions(state *domain.PlanState, result *domain.MonthResult) {
	remaining := state.Plan.Transactions[:0:0]
	for _, txn := range state.Plan.Transactions {
		if !txn.ScheduledDate.Equal(state.Current) {
			remaining = append(remaining, txn)
			continue
		}
		e.executeTransaction(state, result, txn)
	}
	state.Plan.Transactions = remaining
}

func (e *Engine) executeTransaction(state *domain.PlanState, result *domain.MonthResult, txn domain.Transaction) {
	acct := state.Account(txn.Account)
	switch txn.Kind {
	case domain.TransactionSellAsset:
		net := txn.Amount.Sub(txn.Fees)
		if acct != nil {
			acct.Balance = acct.Balance.Add(net)
		}
		for idx, ra := range state.RealAssets {
			if ra.Name == txn.AssetName {
				gain := realassets.SaleGain(*ra, txn.Amount, state.Plan.Settings.FilingStatus)
				switch txn.TaxTreatment {
				case domain.TaxTreatmentCapitalGains:
					state.YTD.LongTermGains = state.YTD.LongTermGains.Add(gain)
				case domain.TaxTreatmentIncome:
					state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(gain)
				}
				state.RealAssets = append(state.RealAssets[:idx], state.RealAssets[idx+1:]...)
				break
			}
		}
		result.TransactionDeltas = append(result.TransactionDeltas, domain.AccountDelta{Account: txn.Account, Reason: txn.Name, Amount: net})
	case domain.TransactionBuyAsset:
		if acct != nil {
			acct.Balance = acct.Balance.Sub(txn.Amount)
		}
		state.RealAssets = append(state.RealAssets, &domain.RealAsset{Name: txn.Name, CurrentValue: txn.Amount, PurchasePrice: txn.Amount})
		result.TransactionDeltas = append(result.TransactionDeltas, domain.AccountDelta{Account: txn.Account, Reason: txn.Name, Amount: txn.Amount.Neg()})
	default:
		if acct != nil {
			acct.Balance = acct.Balance.Add(txn.Amount)
		}
		if txn.TaxTreatment == domain.TaxTreatmentIncome {
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(txn.Amount)
		}
		result.TransactionDeltas = append(result.TransactionDeltas, domain.AccountDelta{Account: txn.Account, Reason: txn.Name, Amount: txn.Amount})
	}
}

// 16. Healthcare.
func (e *Engine) stepHealthcare(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for i := range state.Plan.People {
		p := &state.Plan.People[i]
		ageMonths := state.AgesMonths[p.Name]
		var premium decimal.Decimal
		if healthcare.IsMedicareEligible(ageMonths, state.Current, p.Healthcare.MedicareStartDate) {
			lookback := state.Plan.Settings.IRMAALookbackYears
			if lookback == 0 {
				lookback = 2
			}
			magi := healthcare.MAGILookback(state.MAGIHistory, state.Current.Year, lookback)
			premium = healthcare.MonthlyMedicareCost(magi, state.Plan.Settings.FilingStatus, p.Healthcare)
		} else {
			elapsed := state.Current.ElapsedWholeYears(state.Plan.Simulation.PlanStart)
			premium = healthcare.MonthlyPreMedicareCost(p.Healthcare, inflation, elapsed)
		}
		if premium.LessThanOrEqual(decimal.Zero) {
			continue
		}
		result.Healthcare = append(result.Healthcare, domain.HealthcareBreakdown{
			Person: p.Name, Premium: premium, Total: premium,
		})
	}
}

// 17. Non-healthcare expenses.
func (e *Engine) stepExpenses(state *domain.PlanState, result *domain.MonthResult, inflation decimal.Decimal) {
	for i := range state.Plan.CashFlows {
		item := &state.Plan.CashFlows[i]
		if item.Kind != domain.CashFlowExpense || !item.IsActive(state.Current) {
			continue
		}
		amount := item.AmountForMonth(state.Current, inflation)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		result.ExpensesByCategory[item.Name] = amount
		if item.IsCharitable {
			state.YTD.ItemizedCharitable = state.YTD.ItemizedCharitable.Add(amount)
		}
	}
}

// totalOutflow sums this month's healthcare and other expenses.
func totalOutflow(result *domain.MonthResult) decimal.Decimal {
	total := decimal.Zero
	for _, v := range result.ExpensesByCategory {
		total = total.Add(v)
	}
	for _, h := range result.Healthcare {
		total = total.Add(h.Total)
	}
	return total
}

// 18. Shortfall and withdrawals.
func (e *Engine) stepWithdrawals(state *domain.PlanState, result *domain.MonthResult) {
	cash := e.cashAccount(state)
	outflow := totalOutflow(result)
	if cash == nil || cash.Balance.GreaterThanOrEqual(outflow) {
		return
	}
	shortfall := outflow.Sub(cash.Balance)

	sources := e.withdrawalSources(state, cash.Name)
	records := withdrawal.Plan(shortfall, sources, state.Plan.Settings.WithdrawalOrder)
	covered := e.applyWithdrawals(state, records)
	result.Withdrawals = append(result.Withdrawals, records...)
	cash.Balance = cash.Balance.Add(covered)

	if covered.LessThan(shortfall) {
		state.Insolvent = true
		result.UnpaidShortfall = shortfall.Sub(covered)
	}
}

// withdrawalSources builds the withdrawal-eligible account list, excluding
// the named cash account, shared by stepWithdrawals and the December tax
// settlement's shortfall cover.
func (e *Engine) withdrawalSources(state *domain.PlanState, cashName string) []withdrawal.Source {
	var sources []withdrawal.Source
	for _, a := range state.Accounts {
		if !a.AllowWithdrawals || a.Name == cashName {
			continue
		}
		basis := decimal.Zero
		if b := state.Bases[a.Name]; b != nil {
			basis = *b
		}
		ownerAge := state.AgesMonths[string(a.Owner)]
		if p := state.Plan.PersonByOwner(a.Owner); p != nil {
			ownerAge = state.AgesMonths[p.Name]
		}
		treatment := accountTaxTreatment(a.Kind)
		sources = append(sources, withdrawal.Source{
			Name: a.Name, Kind: a.Kind, Balance: a.Balance, Basis: basis,
			TaxTreatment: treatment, AllowWithdrawals: a.AllowWithdrawals, AgeMonths: ownerAge,
		})
	}
	return sources
}

// applyWithdrawals executes records against state's accounts, updating cost
// basis and YTD tax accumulators, and returns the total cash raised.
func (e *Engine) applyWithdrawals(state *domain.PlanState, records []domain.WithdrawalRecord) decimal.Decimal {
	covered := decimal.Zero
	for _, rec := range records {
		a := state.Account(rec.Account)
		if a == nil {
			continue
		}
		a.Balance = a.Balance.Sub(rec.Gross)
		if basisTracked(a.Kind) {
			if b := state.Bases[a.Name]; b != nil {
				newBasis, _, _ := costbasis.Withdraw(a.Balance.Add(rec.Gross), *b, rec.Gross)
				*b = newBasis
			}
		}
		state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(rec.OrdinaryPortion)
		state.YTD.LongTermGains = state.YTD.LongTermGains.Add(rec.GainsPortion)
		state.YTD.EarlyWithdrawalPenalty = state.YTD.EarlyWithdrawalPenalty.Add(rec.Penalty)
		covered = covered.Add(rec.Gross)
	}
	return covered
}

// basisTracked reports whether kind's balance changes should be mirrored
// into state.Bases: taxable brokerage needs it for gain/basis splitting on
// withdrawal, and Roth/HSA accounts need it so early withdrawals can be
// penalized on the earnings-beyond-contributions portion only.
func basisTracked(kind domain.AccountKind) bool {
	switch kind {
	case domain.AccountTaxableBrokerage, domain.AccountRothIRA, domain.AccountHSA:
		return true
	default:
		return false
	}
}

func accountTaxTreatment(kind domain.AccountKind) domain.TaxTreatment {
	switch kind {
	case domain.AccountRothIRA, domain.AccountHSA:
		return domain.TaxTreatmentTaxFree
	case domain.AccountTaxableBrokerage:
		return domain.TaxTreatmentCapitalGains
	default:
		return domain.TaxTreatmentIncome
	}
}

// 19. Pay expenses.
func (e *Engine) stepPayExpenses(state *domain.PlanState, result *domain.MonthResult) {
	cash := e.cashAccount(state)
	if cash == nil {
		return
	}
	outflow := totalOutflow(result)
	paid := decimal.Min(outflow, cash.Balance)
	cash.Balance = cash.Balance.Sub(paid)
}

// 20. Cost basis sync: a no-op pass, since basis is kept in lock-step by
// every step above that moves money into or out of a taxable account.
func (e *Engine) stepCostBasisSync(state *domain.PlanState) {}

func (e *Engine) addBasis(state *domain.PlanState, account string, amount decimal.Decimal) {
	b, ok := state.Bases[account]
	if !ok {
		zero := decimal.Zero
		state.Bases[account] = &zero
		b = state.Bases[account]
	}
	*b = costbasis.Contribute(*b, amount)
}

// SettleYear runs the December year-boundary tax settlement per spec.md
// §4.10: computes the full-year tax, nets it against withholding, and
// resets YTD accumulators for the next year.
func (e *Engine) SettleYear(state *domain.PlanState) domain.TaxResult {
	cash := e.cashAccount(state)

	otherIncome := state.YTD.OrdinaryIncome.Add(state.YTD.LongTermGains).Add(state.YTD.InvestmentIncome)
	taxableSS := socialsecurity.TaxableSocialSecurity(state.YTD.SocialSecurityBenefits, otherIncome, state.Plan.Settings.FilingStatus)
	ordinaryIncome := state.YTD.OrdinaryIncome.Add(taxableSS)

	summary := domain.YearIncomeSummary{
		Year:                       state.Current.Year,
		FilingStatus:               state.Plan.Settings.FilingStatus,
		PrimaryState:               state.Plan.Settings.PrimaryState,
		OrdinaryIncome:             ordinaryIncome,
		LongTermGains:              state.YTD.LongTermGains,
		InvestmentIncome:           state.YTD.InvestmentIncome,
		AGI:                        ordinaryIncome.Add(state.YTD.LongTermGains),
		ItemizedSALT:               state.YTD.ItemizedSALT,
		ItemizedMortgageInterest:   state.YTD.ItemizedMortgageInterest,
		ItemizedCharitable:         state.YTD.ItemizedCharitable,
		EarlyWithdrawalPenaltyBase: state.YTD.EarlyWithdrawalPenalty,
		AmountWithheld:             state.YTD.TaxWithheld,
		EnableAMT:                  state.Plan.Settings.EnableAMT,
	}
	if !state.Plan.Settings.EnableNIIT {
		summary.InvestmentIncome = decimal.Zero
	}

	result := e.Tax.Settle(summary)

	if cash != nil {
		if result.Total.GreaterThan(decimal.Zero) {
			if cash.Balance.LessThan(result.Total) {
				shortfall := result.Total.Sub(cash.Balance)
				cash.Balance = decimal.Zero

				sources := e.withdrawalSources(state, cash.Name)
				records := withdrawal.Plan(shortfall, sources, state.Plan.Settings.WithdrawalOrder)
				covered := e.applyWithdrawals(state, records)
				cash.Balance = cash.Balance.Add(covered)

				if covered.LessThan(shortfall) {
					state.Insolvent = true
					result.UnpaidTax = shortfall.Sub(covered)
				}
			} else {
				cash.Balance = cash.Balance.Sub(result.Total)
			}
		} else {
			cash.Balance = cash.Balance.Sub(result.Total) // negative total = refund, adds to cash
		}
	}

	magi := healthcare.MAGI(state.YTD.OrdinaryIncome, state.YTD.InvestmentIncome, state.YTD.SocialSecurityBenefits)
	state.MAGIHistory[state.Current.Year] = magi

	state.SnapshotYearEndBalances()

	state.YTD.Reset()
	for name := range state.RMDSatisfiedThisYear {
		state.RMDSatisfiedThisYear[name] = false
	}

	return result
}
