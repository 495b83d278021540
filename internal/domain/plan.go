package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// YearMonth is a calendar year-month pair used throughout the plan as the
// unit of date granularity; the engine never reasons about days.
type YearMonth struct {
	Year  int `yaml:"year" json:"year"`
	Month int `yaml:"month" json:"month"` // 1-12
}

// Before reports whether ym occurs strictly before other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// After reports whether ym occurs strictly after other.
func (ym YearMonth) After(other YearMonth) bool { return other.Before(ym) }

// Equal reports whether ym and other name the same calendar month.
func (ym YearMonth) Equal(other YearMonth) bool { return ym.Year == other.Year && ym.Month == other.Month }

// InRange reports whether ym falls within [start, end] inclusive. A zero
// end value (Year == 0) means "no end date".
func (ym YearMonth) InRange(start, end YearMonth) bool {
	if ym.Before(start) {
		return false
	}
	if end.Year != 0 && ym.After(end) {
		return false
	}
	return true
}

// Next returns the calendar month following ym.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// IsDecember reports whether ym is the final month of its calendar year.
func (ym YearMonth) IsDecember() bool { return ym.Month == 12 }

// ElapsedWholeYears returns the number of whole 12-month periods between
// start and ym (0 if ym is within the first year of start).
func (ym YearMonth) ElapsedWholeYears(start YearMonth) int {
	months := (ym.Year-start.Year)*12 + (ym.Month - start.Month)
	if months < 0 {
		return 0
	}
	return months / 12
}

// MonthsBetween returns the signed whole-month distance from start to ym.
func (ym YearMonth) MonthsBetween(start YearMonth) int {
	return (ym.Year-start.Year)*12 + (ym.Month - start.Month)
}

// ToTime converts ym to a time.Time at the first instant of the month, UTC.
func (ym YearMonth) ToTime() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Person is one member of the household (primary or spouse).
type Person struct {
	Name      string    `yaml:"name" json:"name"`
	Owner     Owner     `yaml:"owner" json:"owner"`
	BirthDate time.Time `yaml:"birth_date" json:"birth_date"`

	// Social Security inputs.
	PIA              decimal.Decimal `yaml:"pia" json:"pia"` // Primary Insurance Amount at FRA, monthly
	SSClaimingAge    int             `yaml:"ss_claiming_age" json:"ss_claiming_age"`
	SSClaimingMonth  int             `yaml:"ss_claiming_month" json:"ss_claiming_month"`

	// Retirement features.
	RMDStartAge       int    `yaml:"rmd_start_age" json:"rmd_start_age"`
	RothConversionRef string `yaml:"-" json:"-"` // set by validator to this person's key

	Healthcare HealthcarePolicy `yaml:"healthcare" json:"healthcare"`
}

// HealthcarePolicy configures a person's pre-Medicare premium line and the
// policy choices that shape the Medicare-phase monthly cost: the shared IRS
// Part B/Part D base premiums and IRMAA surcharge apply to everyone, but the
// Medigap/supplement premium is plan-specific, and MedicareStartDate lets a
// person become Medicare-eligible before (or instead of) age 65 tracking.
type HealthcarePolicy struct {
	MonthlyPremium            decimal.Decimal `yaml:"monthly_premium" json:"monthly_premium"`
	AnnualOutOfPocket         decimal.Decimal `yaml:"annual_out_of_pocket" json:"annual_out_of_pocket"`
	ChangePolicy              ChangePolicy    `yaml:"change_policy" json:"change_policy"`
	ChangeRate                decimal.Decimal `yaml:"change_rate" json:"change_rate"`
	MedicareSupplementPremium decimal.Decimal `yaml:"medicare_supplement_premium" json:"medicare_supplement_premium"`
	MedicareStartDate         YearMonth       `yaml:"medicare_start_date,omitempty" json:"medicare_start_date,omitempty"`
}

// AgeInMonths returns the person's age in whole months as of ym.
func (p *Person) AgeInMonths(ym YearMonth) int {
	birth := YearMonth{Year: p.BirthDate.Year(), Month: int(p.BirthDate.Month())}
	return ym.MonthsBetween(birth)
}

// AgeInYears returns the person's completed age in years as of ym.
func (p *Person) AgeInYears(ym YearMonth) int {
	return p.AgeInMonths(ym) / 12
}

// Mortgage describes an amortizing loan tied to a RealAsset.
type Mortgage struct {
	MonthlyPayment   decimal.Decimal `yaml:"monthly_payment" json:"monthly_payment"`
	RemainingBalance decimal.Decimal `yaml:"remaining_balance" json:"remaining_balance"`
	AnnualRate       decimal.Decimal `yaml:"annual_rate" json:"annual_rate"`
	EndDate          YearMonth       `yaml:"end_date" json:"end_date"`
}

// MaintenanceItem is a recurring upkeep expense tied to a RealAsset.
type MaintenanceItem struct {
	Name           string          `yaml:"name" json:"name"`
	MonthlyAmount  decimal.Decimal `yaml:"monthly_amount" json:"monthly_amount"`
	ChangePolicy   ChangePolicy    `yaml:"change_policy" json:"change_policy"`
	ChangeRate     decimal.Decimal `yaml:"change_rate" json:"change_rate"`
}

// RealAsset is a non-financial asset such as a home, with an optional
// mortgage and maintenance schedule.
type RealAsset struct {
	Name               string            `yaml:"name" json:"name"`
	CurrentValue       decimal.Decimal   `yaml:"current_value" json:"current_value"`
	PurchasePrice      decimal.Decimal   `yaml:"purchase_price" json:"purchase_price"`
	PrimaryResidence   bool              `yaml:"primary_residence" json:"primary_residence"`
	ChangePolicy       ChangePolicy      `yaml:"change_policy" json:"change_policy"`
	ChangeRate         decimal.Decimal   `yaml:"change_rate" json:"change_rate"`
	PropertyTaxRate    decimal.Decimal   `yaml:"property_tax_rate" json:"property_tax_rate"`
	Mortgage           *Mortgage         `yaml:"mortgage,omitempty" json:"mortgage,omitempty"`
	Maintenance        []MaintenanceItem `yaml:"maintenance,omitempty" json:"maintenance,omitempty"`
}

// CashFlowItem is a recurring or one-time income, expense, contribution, or
// transfer. It is active for months within [StartDate, EndDate].
type CashFlowItem struct {
	Name              string          `yaml:"name" json:"name"`
	Kind              CashFlowKind    `yaml:"kind" json:"kind"`
	Owner             Owner           `yaml:"owner" json:"owner"`
	StartingAmount    decimal.Decimal `yaml:"starting_amount" json:"starting_amount"`
	StartDate         YearMonth       `yaml:"start_date" json:"start_date"`
	EndDate           YearMonth       `yaml:"end_date" json:"end_date"` // zero value = no end
	Frequency         Frequency       `yaml:"frequency" json:"frequency"`
	ChangePolicy      ChangePolicy    `yaml:"change_policy" json:"change_policy"`
	ChangeRate        decimal.Decimal `yaml:"change_rate" json:"change_rate"`
	TaxTreatment      TaxTreatment    `yaml:"tax_treatment" json:"tax_treatment"`
	SpendingType      SpendingType    `yaml:"spending_type,omitempty" json:"spending_type,omitempty"`

	// Expense-specific.
	IsCharitable bool `yaml:"is_charitable,omitempty" json:"is_charitable,omitempty"`

	// Income-specific.
	IsSelfEmployment bool            `yaml:"is_self_employment,omitempty" json:"is_self_employment,omitempty"`
	TaxHandling      TaxHandling     `yaml:"tax_handling,omitempty" json:"tax_handling,omitempty"`
	WithholdPercent  decimal.Decimal `yaml:"withhold_percent,omitempty" json:"withhold_percent,omitempty"`
	IsSocialSecurity bool            `yaml:"is_social_security,omitempty" json:"is_social_security,omitempty"`

	// Contribution/transfer-specific.
	SourceAccount      string          `yaml:"source_account,omitempty" json:"source_account,omitempty"`
	DestinationAccount string          `yaml:"destination_account,omitempty" json:"destination_account,omitempty"`
	MatchPercent       decimal.Decimal `yaml:"match_percent,omitempty" json:"match_percent,omitempty"`
	MatchUpToPercent   decimal.Decimal `yaml:"match_up_to_percent,omitempty" json:"match_up_to_percent,omitempty"`
	MatchSalaryRef     string          `yaml:"match_salary_ref,omitempty" json:"match_salary_ref,omitempty"`
}

// IsActive reports whether the item produces a flow during ym.
func (c *CashFlowItem) IsActive(ym YearMonth) bool {
	return ym.InRange(c.StartDate, c.EndDate)
}

// AmountForMonth computes the flow's nominal dollar amount for ym, applying
// its change policy over whole elapsed years since StartDate.
func (c *CashFlowItem) AmountForMonth(ym YearMonth, inflationRate decimal.Decimal) decimal.Decimal {
	if !c.IsActive(ym) {
		return decimal.Zero
	}
	years := ym.ElapsedWholeYears(c.StartDate)
	rate := effectiveChangeRate(c.ChangePolicy, c.ChangeRate, inflationRate)
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	amount := c.StartingAmount.Mul(factor)
	if c.Frequency == FrequencyAnnual {
		return amount.Div(decimal.NewFromInt(12))
	}
	return amount
}

func effectiveChangeRate(policy ChangePolicy, explicit, inflation decimal.Decimal) decimal.Decimal {
	switch policy {
	case ChangeMatchInflation:
		return inflation
	case ChangeInflationPlus:
		return inflation.Add(explicit)
	case ChangeInflationMinus:
		return inflation.Sub(explicit)
	case ChangeIncrease:
		return explicit
	case ChangeDecrease:
		return explicit.Neg()
	default: // ChangeFixed
		return decimal.Zero
	}
}

// RMDConfig describes an RMD rule tied to one owner.
type RMDConfig struct {
	OwnerName          string   `yaml:"owner_name" json:"owner_name"`
	Accounts           []string `yaml:"accounts" json:"accounts"`
	DestinationAccount string   `yaml:"destination_account" json:"destination_account"`
	SatisfiedFirst     bool     `yaml:"rmd_satisfied_first" json:"rmd_satisfied_first"`
}

// RothConversionSchedule describes either a fixed-dollar or bracket-fill
// monthly Roth-conversion program.
type RothConversionSchedule struct {
	Name               string          `yaml:"name" json:"name"`
	SourceAccount      string          `yaml:"source_account" json:"source_account"`
	DestinationAccount string          `yaml:"destination_account" json:"destination_account"`
	Kind               string          `yaml:"kind" json:"kind"` // "fixed" | "bracket_fill"
	AnnualAmount       decimal.Decimal `yaml:"annual_amount,omitempty" json:"annual_amount,omitempty"`
	TargetBracket      string          `yaml:"target_bracket,omitempty" json:"target_bracket,omitempty"` // e.g. "22%"
	FilingStatus       FilingStatus    `yaml:"filing_status,omitempty" json:"filing_status,omitempty"`
	StartDate          YearMonth       `yaml:"start_date" json:"start_date"`
	EndDate            YearMonth       `yaml:"end_date" json:"end_date"`
}

// Transaction is a one-off scheduled event such as a home sale.
type Transaction struct {
	Name            string          `yaml:"name" json:"name"`
	Kind            TransactionKind `yaml:"kind" json:"kind"`
	ScheduledDate   YearMonth       `yaml:"scheduled_date" json:"scheduled_date"`
	AssetName       string          `yaml:"asset_name,omitempty" json:"asset_name,omitempty"`
	Amount          decimal.Decimal `yaml:"amount,omitempty" json:"amount,omitempty"`
	Fees            decimal.Decimal `yaml:"fees,omitempty" json:"fees,omitempty"`
	Account         string          `yaml:"account,omitempty" json:"account,omitempty"`
	TaxTreatment    TaxTreatment    `yaml:"tax_treatment,omitempty" json:"tax_treatment,omitempty"`
}

// WithdrawalOrder configures the C8 shortfall-draining sequence.
type WithdrawalOrder struct {
	UseAccountSpecific bool          `yaml:"use_account_specific" json:"use_account_specific"`
	KindSequence       []AccountKind `yaml:"kind_sequence,omitempty" json:"kind_sequence,omitempty"`
	AccountSequence    []string      `yaml:"account_sequence,omitempty" json:"account_sequence,omitempty"`
}

// PlanSettings holds household-wide toggles and defaults.
type PlanSettings struct {
	InflationRate                 decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
	COLAAssumption                decimal.Decimal `yaml:"cola_assumption" json:"cola_assumption"`
	FilingStatus                  FilingStatus    `yaml:"filing_status" json:"filing_status"`
	PrimaryState                  string          `yaml:"primary_state" json:"primary_state"`
	DefaultDividendTaxTreatment   TaxTreatment    `yaml:"default_dividend_tax_treatment" json:"default_dividend_tax_treatment"`
	SALTCap                       decimal.Decimal `yaml:"salt_cap" json:"salt_cap"`
	EnableNIIT                    bool            `yaml:"enable_niit" json:"enable_niit"`
	EnableAMT                     bool            `yaml:"enable_amt" json:"enable_amt"`
	IRMAALookbackYears            int             `yaml:"irmaa_lookback_years" json:"irmaa_lookback_years"`
	WithdrawalOrder                WithdrawalOrder `yaml:"withdrawal_order" json:"withdrawal_order"`
}

// SimulationSettings configures the orchestrator's projection mode.
type SimulationSettings struct {
	Mode                SimulationMode  `yaml:"mode" json:"mode"`
	Runs                int             `yaml:"runs" json:"runs"`
	Seed                int64           `yaml:"seed" json:"seed"`
	PlanStart           YearMonth       `yaml:"plan_start" json:"plan_start"`
	PlanEnd             YearMonth       `yaml:"plan_end" json:"plan_end"`
	StockMeanReturn     decimal.Decimal `yaml:"stock_mean_return" json:"stock_mean_return"`
	StockStdDev         decimal.Decimal `yaml:"stock_std_dev" json:"stock_std_dev"`
	BondMeanReturn      decimal.Decimal `yaml:"bond_mean_return" json:"bond_mean_return"`
	BondStdDev          decimal.Decimal `yaml:"bond_std_dev" json:"bond_std_dev"`
	StockBondCorrelation decimal.Decimal `yaml:"stock_bond_correlation" json:"stock_bond_correlation"`
	HistoricalStartYear int             `yaml:"historical_start_year,omitempty" json:"historical_start_year,omitempty"`
	HistoricalEndYear   int             `yaml:"historical_end_year,omitempty" json:"historical_end_year,omitempty"`
	UseRollingPeriods   bool            `yaml:"use_rolling_periods" json:"use_rolling_periods"`
}

// Account is a financial account owned by the household.
type Account struct {
	Name              string          `yaml:"name" json:"name"`
	Kind              AccountKind     `yaml:"kind" json:"kind"`
	Owner             Owner           `yaml:"owner" json:"owner"`
	Balance           decimal.Decimal `yaml:"balance" json:"balance"`
	GrowthRate        decimal.Decimal `yaml:"growth_rate" json:"growth_rate"`
	DividendRate      decimal.Decimal `yaml:"dividend_rate" json:"dividend_rate"`
	DividendReinvest  bool            `yaml:"dividend_reinvest" json:"dividend_reinvest"`
	DividendTaxTreatment TaxTreatment `yaml:"dividend_tax_treatment,omitempty" json:"dividend_tax_treatment,omitempty"`
	FeeRate           decimal.Decimal `yaml:"fee_rate" json:"fee_rate"`
	BondAllocationPct decimal.Decimal `yaml:"bond_allocation_pct" json:"bond_allocation_pct"` // 0-100
	AllowWithdrawals  bool            `yaml:"allow_withdrawals" json:"allow_withdrawals"`
}

// Plan is the fully validated, immutable household financial plan.
type Plan struct {
	People       []Person                 `yaml:"people" json:"people"`
	Accounts     []Account                 `yaml:"accounts" json:"accounts"`
	CostBasis    map[string]decimal.Decimal `yaml:"cost_basis,omitempty" json:"cost_basis,omitempty"`
	RealAssets   []RealAsset               `yaml:"real_assets,omitempty" json:"real_assets,omitempty"`
	CashFlows    []CashFlowItem            `yaml:"cash_flows" json:"cash_flows"`
	RMDs         []RMDConfig               `yaml:"rmds,omitempty" json:"rmds,omitempty"`
	RothSchedules []RothConversionSchedule `yaml:"roth_conversions,omitempty" json:"roth_conversions,omitempty"`
	Transactions []Transaction             `yaml:"transactions,omitempty" json:"transactions,omitempty"`
	Settings     PlanSettings              `yaml:"plan_settings" json:"plan_settings"`
	Simulation   SimulationSettings        `yaml:"simulation" json:"simulation"`
}

// PersonByOwner finds the plan's person for the given Owner ("primary"/"spouse").
func (p *Plan) PersonByOwner(o Owner) *Person {
	for i := range p.People {
		if p.People[i].Owner == o {
			return &p.People[i]
		}
	}
	return nil
}
