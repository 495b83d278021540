package domain

import "github.com/shopspring/decimal"

// YearIncomeSummary is the pure-function input to the tax engine (C2). It is
// assembled from a year's twelve MonthResults plus PlanState's YTD
// accumulators; the tax engine never reaches back into PlanState itself.
type YearIncomeSummary struct {
	Year                   int
	FilingStatus           FilingStatus
	PrimaryState           string
	OrdinaryIncome         decimal.Decimal
	LongTermGains          decimal.Decimal
	InvestmentIncome       decimal.Decimal // for NIIT
	AGI                    decimal.Decimal
	ItemizedSALT           decimal.Decimal
	ItemizedMortgageInterest decimal.Decimal
	ItemizedCharitable     decimal.Decimal
	EarlyWithdrawalPenaltyBase decimal.Decimal // dollars subject to the 10% penalty
	AmountWithheld         decimal.Decimal // cumulative monthly withholding (tax, not FICA)
	EnableAMT              bool // mirrors PlanSettings.EnableAMT; gates the tentative-minimum-tax computation
}
