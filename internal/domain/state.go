package domain

import (
	"github.com/shopspring/decimal"
)

// AccountState is the mutable, runtime copy of an Account carried in
// PlanState. Cloned from Plan.Accounts when a run begins; PlanState owns it
// exclusively for the run's duration.
type AccountState struct {
	Account
}

// YTDAccumulators are the per-calendar-year running totals the engine needs
// mid-year (for Roth bracket-fill, withholding settlement, and FICA wage
// base tracking). Reset to zero at each December year-boundary.
type YTDAccumulators struct {
	WagesByPerson          map[string]decimal.Decimal
	OrdinaryIncome         decimal.Decimal
	LongTermGains          decimal.Decimal
	InvestmentIncome       decimal.Decimal
	RothConversionIncome   decimal.Decimal
	EarlyWithdrawalPenalty decimal.Decimal
	TaxWithheld            decimal.Decimal
	FICAWithheld           decimal.Decimal
	ItemizedSALT           decimal.Decimal
	ItemizedMortgageInterest decimal.Decimal
	ItemizedCharitable     decimal.Decimal

	// SocialSecurityBenefits is the gross (pre-taxability-rule) Social
	// Security income received this year, accumulated for the combined-income
	// test in SettleYear and for the MAGI calculation's 85%-of-benefits term.
	SocialSecurityBenefits decimal.Decimal
}

// NewYTDAccumulators returns a zeroed accumulator set ready for a new year.
func NewYTDAccumulators() YTDAccumulators {
	return YTDAccumulators{WagesByPerson: map[string]decimal.Decimal{}}
}

// Reset zeroes all accumulators in place, preserving the per-person wage map
// shape but clearing its values (wage-base tracking is per calendar year).
func (y *YTDAccumulators) Reset() {
	for k := range y.WagesByPerson {
		y.WagesByPerson[k] = decimal.Zero
	}
	y.OrdinaryIncome = decimal.Zero
	y.LongTermGains = decimal.Zero
	y.InvestmentIncome = decimal.Zero
	y.RothConversionIncome = decimal.Zero
	y.EarlyWithdrawalPenalty = decimal.Zero
	y.TaxWithheld = decimal.Zero
	y.FICAWithheld = decimal.Zero
	y.ItemizedSALT = decimal.Zero
	y.ItemizedMortgageInterest = decimal.Zero
	y.ItemizedCharitable = decimal.Zero
	y.SocialSecurityBenefits = decimal.Zero
}

// PlanState is the single mutable object threaded through a simulation run.
// It is exclusively owned by the run that created it; nothing outside the
// engine and orchestrator holds a reference to it.
type PlanState struct {
	Plan *Plan

	Accounts    map[string]*AccountState
	Bases       map[string]*decimal.Decimal // per-account cost basis (taxable brokerage, Roth IRA, HSA)
	RealAssets  []*RealAsset

	AgesMonths map[string]int // person name -> age in whole months

	YTD YTDAccumulators

	// MAGIHistory keys by calendar year for IRMAA lookback.
	MAGIHistory map[int]decimal.Decimal

	Insolvent   bool
	Current     YearMonth

	// RMDSatisfiedThisYear tracks, per RMD config owner, whether December's
	// required distribution has already been withdrawn this year.
	RMDSatisfiedThisYear map[string]bool

	// PriorYearEndBalances holds each account's balance as of the prior
	// December's SettleYear snapshot (or the plan's starting balance, for the
	// run's first year). RMDs are computed against this, never against the
	// live in-year balance.
	PriorYearEndBalances map[string]decimal.Decimal
}

// SnapshotYearEndBalances copies the current account balances into
// PriorYearEndBalances, called once at the close of SettleYear so next
// year's RMD step sees a true Dec-31 snapshot instead of a live balance.
func (s *PlanState) SnapshotYearEndBalances() {
	if s.PriorYearEndBalances == nil {
		s.PriorYearEndBalances = map[string]decimal.Decimal{}
	}
	for name, a := range s.Accounts {
		s.PriorYearEndBalances[name] = a.Balance
	}
}

// Account returns the mutable account state by name, or nil.
func (s *PlanState) Account(name string) *AccountState { return s.Accounts[name] }

// TotalBalance sums the balances of every account.
func (s *PlanState) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// NetWorth sums account balances plus real-asset equity (value minus any
// remaining mortgage balance).
func (s *PlanState) NetWorth() decimal.Decimal {
	total := s.TotalBalance()
	for _, ra := range s.RealAssets {
		equity := ra.CurrentValue
		if ra.Mortgage != nil {
			equity = equity.Sub(ra.Mortgage.RemainingBalance)
		}
		total = total.Add(equity)
	}
	return total
}

// AccountDelta records one labeled change to an account's balance during a month.
type AccountDelta struct {
	Account string          `json:"account"`
	Reason  string          `json:"reason"`
	Amount  decimal.Decimal `json:"amount"` // signed: positive = inflow
}

// WithdrawalRecord documents a single account draw during the shortfall step.
type WithdrawalRecord struct {
	Account          string          `json:"account"`
	Gross            decimal.Decimal `json:"gross"`
	OrdinaryPortion  decimal.Decimal `json:"ordinary_portion"`
	GainsPortion     decimal.Decimal `json:"gains_portion"`
	TaxFreePortion   decimal.Decimal `json:"tax_free_portion"`
	Penalty          decimal.Decimal `json:"penalty"`
}

// HealthcareBreakdown is the monthly per-person healthcare cost detail.
type HealthcareBreakdown struct {
	Person      string          `json:"person"`
	Premium     decimal.Decimal `json:"premium"`
	OutOfPocket decimal.Decimal `json:"out_of_pocket"`
	IRMAA       decimal.Decimal `json:"irmaa"`
	Total       decimal.Decimal `json:"total"`
}

// MonthResult records every flow that occurred during one simulated month.
type MonthResult struct {
	Date YearMonth `json:"date"`

	IncomeItems       map[string]decimal.Decimal `json:"income_items"`
	SocialSecurity    map[string]decimal.Decimal `json:"social_security"`
	FICAWithheld      decimal.Decimal            `json:"fica_withheld"`
	TaxWithheld       decimal.Decimal            `json:"tax_withheld"`
	Contributions     []AccountDelta             `json:"contributions"`
	EmployerMatches   []AccountDelta             `json:"employer_matches"`
	Transfers         []AccountDelta             `json:"transfers"`
	RothConversions   []AccountDelta             `json:"roth_conversions"`
	RMDs              []AccountDelta             `json:"rmds"`
	GrowthDeltas       []AccountDelta             `json:"growth_deltas"`
	DividendDeltas     []AccountDelta             `json:"dividend_deltas"`
	FeeDeltas          []AccountDelta             `json:"fee_deltas"`
	RealAssetDeltas    []AccountDelta             `json:"real_asset_deltas"`
	TransactionDeltas  []AccountDelta             `json:"transaction_deltas"`
	Healthcare        []HealthcareBreakdown      `json:"healthcare"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
	Withdrawals       []WithdrawalRecord         `json:"withdrawals"`
	Insolvent         bool                       `json:"insolvent"`
	UnpaidShortfall   decimal.Decimal            `json:"unpaid_shortfall"`
	EndingCash        decimal.Decimal            `json:"ending_cash"`
}

// NewMonthResult returns a zero-valued MonthResult with maps initialized.
func NewMonthResult(date YearMonth) MonthResult {
	return MonthResult{
		Date:               date,
		IncomeItems:        map[string]decimal.Decimal{},
		SocialSecurity:     map[string]decimal.Decimal{},
		ExpensesByCategory: map[string]decimal.Decimal{},
	}
}

// TaxResult is the December settlement's output, per spec.md §4.2.
type TaxResult struct {
	FederalOrdinary        decimal.Decimal `json:"federal_ordinary"`
	LongTermGains          decimal.Decimal `json:"long_term_gains"`
	NIIT                   decimal.Decimal `json:"niit"`
	AMT                    decimal.Decimal `json:"amt"`
	State                  decimal.Decimal `json:"state"`
	FICASettled            decimal.Decimal `json:"fica_settled"` // always zero; FICA settles monthly
	EarlyWithdrawalPenalty decimal.Decimal `json:"early_withdrawal_penalty"`
	Total                  decimal.Decimal `json:"total"` // positive = owed, negative = refund
	UnpaidTax              decimal.Decimal `json:"unpaid_tax,omitempty"`
}

// AnnualResult is twelve MonthResults plus the December tax settlement.
type AnnualResult struct {
	Year            int            `json:"year"`
	Months          [12]MonthResult `json:"months"`
	Tax             TaxResult      `json:"tax"`
	MAGI            decimal.Decimal `json:"magi"`
	EndingBalances  map[string]decimal.Decimal `json:"ending_balances"`
	NetWorth        decimal.Decimal `json:"net_worth"`
	Insolvent       bool           `json:"insolvent"`
}

// TotalIncome sums every income item across the year's months.
func (a *AnnualResult) TotalIncome() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Months {
		for _, v := range m.IncomeItems {
			total = total.Add(v)
		}
		for _, v := range m.SocialSecurity {
			total = total.Add(v)
		}
	}
	return total
}

// TotalExpenses sums every expense category across the year's months.
func (a *AnnualResult) TotalExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Months {
		for _, v := range m.ExpensesByCategory {
			total = total.Add(v)
		}
		for _, h := range m.Healthcare {
			total = total.Add(h.Total)
		}
	}
	return total
}

// PercentileBands holds the 10/25/50/75/90 percentile series across ensemble runs.
type PercentileBands struct {
	P10 []decimal.Decimal `json:"p10"`
	P25 []decimal.Decimal `json:"p25"`
	P50 []decimal.Decimal `json:"p50"`
	P75 []decimal.Decimal `json:"p75"`
	P90 []decimal.Decimal `json:"p90"`
}

// SimulationResult is the top-level output of a run: either one
// deterministic trajectory, or an ensemble's percentile bands.
type SimulationResult struct {
	Mode           SimulationMode   `json:"mode"`
	Seed           int64            `json:"seed"`
	Deterministic  []AnnualResult   `json:"deterministic,omitempty"`
	Runs           int              `json:"runs,omitempty"`
	NetWorthBands  PercentileBands  `json:"net_worth_bands,omitempty"`
	IncomeBands    PercentileBands  `json:"income_bands,omitempty"`
	ExpenseBands   PercentileBands  `json:"expense_bands,omitempty"`
	TaxBands       PercentileBands  `json:"tax_bands,omitempty"`
	SuccessRate    decimal.Decimal  `json:"success_rate,omitempty"`
}
