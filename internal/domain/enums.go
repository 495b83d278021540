package domain

// FilingStatus is the household's federal filing status for a tax year.
type FilingStatus string

const (
	FilingSingle                 FilingStatus = "single"
	FilingMarriedFilingJointly   FilingStatus = "mfj"
	FilingMarriedFilingSeparate  FilingStatus = "mfs"
	FilingHeadOfHousehold        FilingStatus = "hoh"
	FilingQualifyingSurvingSpouse FilingStatus = "qss"
)

// AccountKind distinguishes accounts by tax treatment and liquidity.
type AccountKind string

const (
	AccountCash             AccountKind = "cash"
	AccountTaxableBrokerage AccountKind = "taxable_brokerage"
	Account401k             AccountKind = "401k"
	AccountTraditionalIRA   AccountKind = "traditional_ira"
	AccountRothIRA          AccountKind = "roth_ira"
	AccountHSA              AccountKind = "hsa"
	Account529              AccountKind = "529"
	AccountOther            AccountKind = "other"
)

// Owner identifies which household member (or both) an account/flow belongs to.
type Owner string

const (
	OwnerPrimary Owner = "primary"
	OwnerSpouse  Owner = "spouse"
	OwnerJoint   Owner = "joint"
)

// Frequency describes how often a cash flow item recurs.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAnnual   Frequency = "annual"
	FrequencyOneTime  Frequency = "one_time"
)

// ChangePolicy describes how a dollar amount evolves year over year.
type ChangePolicy string

const (
	ChangeFixed           ChangePolicy = "fixed"
	ChangeIncrease        ChangePolicy = "increase"
	ChangeDecrease        ChangePolicy = "decrease"
	ChangeMatchInflation  ChangePolicy = "match_inflation"
	ChangeInflationPlus   ChangePolicy = "inflation_plus"
	ChangeInflationMinus  ChangePolicy = "inflation_minus"
)

// TaxTreatment classifies how a dollar flow is taxed when recognized.
type TaxTreatment string

const (
	TaxTreatmentTaxFree      TaxTreatment = "tax_free"
	TaxTreatmentIncome       TaxTreatment = "income"
	TaxTreatmentCapitalGains TaxTreatment = "capital_gains"
)

// SpendingType separates expenses that can be cut in a shortfall from those that can't.
type SpendingType string

const (
	SpendingEssential     SpendingType = "essential"
	SpendingDiscretionary SpendingType = "discretionary"
)

// CashFlowKind is the discriminator for a CashFlowItem.
type CashFlowKind string

const (
	CashFlowIncome       CashFlowKind = "income"
	CashFlowExpense      CashFlowKind = "expense"
	CashFlowContribution CashFlowKind = "contribution"
	CashFlowTransfer     CashFlowKind = "transfer"
)

// TaxHandling controls whether an income item withholds tax at source.
type TaxHandling string

const (
	TaxHandlingNone     TaxHandling = "none"
	TaxHandlingWithhold TaxHandling = "withhold"
)

// TransactionKind discriminates a scheduled one-off transaction.
type TransactionKind string

const (
	TransactionSellAsset TransactionKind = "sell_asset"
	TransactionBuyAsset  TransactionKind = "buy_asset"
	TransactionTransfer  TransactionKind = "transfer"
	TransactionOther     TransactionKind = "other"
)

// SimulationMode selects the projection method.
type SimulationMode string

const (
	ModeDeterministic SimulationMode = "deterministic"
	ModeMonteCarlo    SimulationMode = "monte_carlo"
	ModeHistorical    SimulationMode = "historical"
)

// FilingStatusFromString validates and normalizes a raw filing-status string.
func FilingStatusFromString(s string) (FilingStatus, bool) {
	switch FilingStatus(s) {
	case FilingSingle, FilingMarriedFilingJointly, FilingMarriedFilingSeparate, FilingHeadOfHousehold, FilingQualifyingSurvingSpouse:
		return FilingStatus(s), true
	}
	return "", false
}
