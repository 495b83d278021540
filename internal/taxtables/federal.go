package taxtables

import (
	"github.com/finplan/simcore/internal/domain"
	"github.com/shopspring/decimal"
)

// LastBundledYear is the final calendar year for which bracket data is
// bundled verbatim; later years are inflation-extrapolated per spec.md §4.2.
const LastBundledYear = 2025

func d(i int64) decimal.Decimal    { return decimal.NewFromInt(i) }
func pct(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// FederalOrdinaryBrackets returns the 2025 ordinary-income bracket schedule
// for the given filing status. Values are 2025 IRS Revenue Procedure
// figures, the same figures the teacher bundles for MFJ in
// calculation/taxes.go, extended here to every filing status.
func FederalOrdinaryBrackets(status domain.FilingStatus) []Bracket {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return []Bracket{
			{decimal.Zero, d(23850), pct(0.10)},
			{d(23850), d(96950), pct(0.12)},
			{d(96950), d(206700), pct(0.22)},
			{d(206700), d(394600), pct(0.24)},
			{d(394600), d(501050), pct(0.32)},
			{d(501050), d(751600), pct(0.35)},
			{d(751600), decimal.Zero, pct(0.37)},
		}
	case domain.FilingHeadOfHousehold:
		return []Bracket{
			{decimal.Zero, d(17000), pct(0.10)},
			{d(17000), d(64850), pct(0.12)},
			{d(64850), d(103350), pct(0.22)},
			{d(103350), d(197300), pct(0.24)},
			{d(197300), d(250500), pct(0.32)},
			{d(250500), d(626350), pct(0.35)},
			{d(626350), decimal.Zero, pct(0.37)},
		}
	case domain.FilingMarriedFilingSeparate:
		return []Bracket{
			{decimal.Zero, d(11925), pct(0.10)},
			{d(11925), d(48475), pct(0.12)},
			{d(48475), d(103350), pct(0.22)},
			{d(103350), d(197300), pct(0.24)},
			{d(197300), d(250525), pct(0.32)},
			{d(250525), d(375800), pct(0.35)},
			{d(375800), decimal.Zero, pct(0.37)},
		}
	default: // single
		return []Bracket{
			{decimal.Zero, d(11925), pct(0.10)},
			{d(11925), d(48475), pct(0.12)},
			{d(48475), d(103350), pct(0.22)},
			{d(103350), d(197300), pct(0.24)},
			{d(197300), d(250525), pct(0.32)},
			{d(250525), d(626350), pct(0.35)},
			{d(626350), decimal.Zero, pct(0.37)},
		}
	}
}

// LTCGBrackets returns the 0/15/20% long-term capital gains bracket
// schedule, whose edges are defined relative to taxable-income thresholds
// per spec.md §4.2.
func LTCGBrackets(status domain.FilingStatus) []Bracket {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return []Bracket{
			{decimal.Zero, d(96700), decimal.Zero},
			{d(96700), d(600050), pct(0.15)},
			{d(600050), decimal.Zero, pct(0.20)},
		}
	case domain.FilingHeadOfHousehold:
		return []Bracket{
			{decimal.Zero, d(64750), decimal.Zero},
			{d(64750), d(566700), pct(0.15)},
			{d(566700), decimal.Zero, pct(0.20)},
		}
	case domain.FilingMarriedFilingSeparate:
		return []Bracket{
			{decimal.Zero, d(48350), decimal.Zero},
			{d(48350), d(300000), pct(0.15)},
			{d(300000), decimal.Zero, pct(0.20)},
		}
	default:
		return []Bracket{
			{decimal.Zero, d(48350), decimal.Zero},
			{d(48350), d(533400), pct(0.15)},
			{d(533400), decimal.Zero, pct(0.20)},
		}
	}
}

// StandardDeduction returns the 2025 standard deduction for status.
func StandardDeduction(status domain.FilingStatus) decimal.Decimal {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return d(30000)
	case domain.FilingHeadOfHousehold:
		return d(22500)
	case domain.FilingMarriedFilingSeparate:
		return d(15000)
	default:
		return d(15000)
	}
}

// NIITThreshold returns the Net Investment Income Tax AGI threshold for status.
func NIITThreshold(status domain.FilingStatus) decimal.Decimal {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return d(250000)
	case domain.FilingMarriedFilingSeparate:
		return d(125000)
	default:
		return d(200000)
	}
}

const NIITRate = 0.038

// AMTExemption and AMTPhaseoutThreshold implement the simplified AMT of
// spec.md §4.2: a flat exemption phased out above a threshold.
func AMTExemption(status domain.FilingStatus) decimal.Decimal {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return d(137000)
	case domain.FilingMarriedFilingSeparate:
		return d(68650)
	default:
		return d(88100)
	}
}

func AMTPhaseoutThreshold(status domain.FilingStatus) decimal.Decimal {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return d(1252700)
	case domain.FilingMarriedFilingSeparate:
		return d(626350)
	default:
		return d(626350)
	}
}

// AMTRateThreshold is the taxable-AMTI point above which the 28% (vs 26%) rate applies.
func AMTRateThreshold(status domain.FilingStatus) decimal.Decimal {
	if status == domain.FilingMarriedFilingSeparate {
		return d(121650)
	}
	return d(243425)
}

const (
	AMTLowRate  = 0.26
	AMTHighRate = 0.28
)

// SocialSecurityTaxationThresholds are the two "combined income" thresholds
// used to determine what fraction of SS benefits is taxable, per spec.md §4.3.
func SocialSecurityTaxationThresholds(status domain.FilingStatus) (t1, t2 decimal.Decimal) {
	if status == domain.FilingMarriedFilingJointly || status == domain.FilingQualifyingSurvingSpouse {
		return d(32000), d(44000)
	}
	return d(25000), d(34000)
}

// SALTCapDefault is the federal cap on state-and-local-tax itemized deductions.
var SALTCapDefault = d(10000)

// FICA constants, per spec.md §4.10 step 3.
var (
	SSWageBase2025          = d(176100)
	SSRate                  = pct(0.062)
	MedicareRate            = pct(0.0145)
	AdditionalMedicareRate  = pct(0.009)
)

// AdditionalMedicareThreshold returns the filing-status threshold above
// which the 0.9% additional Medicare surtax applies to wages.
func AdditionalMedicareThreshold(status domain.FilingStatus) decimal.Decimal {
	switch status {
	case domain.FilingMarriedFilingJointly, domain.FilingQualifyingSurvingSpouse:
		return d(250000)
	case domain.FilingMarriedFilingSeparate:
		return d(125000)
	default:
		return d(200000)
	}
}

// SelfEmploymentTaxRate approximates combined SS+Medicare self-employment
// tax (employer+employee share) applied to self-employment income items.
var SelfEmploymentTaxRate = pct(0.153)

// EarlyWithdrawalPenaltyRate is the 10% penalty rate of spec.md §4.10 step 18.
var EarlyWithdrawalPenaltyRate = pct(0.10)

// EarlyWithdrawalPenaltyAge is the age (in years) below which penalized
// withdrawals apply.
const EarlyWithdrawalPenaltyAge = 59 // plus the half-year checked by callers via months

// PrimaryResidenceExclusion returns the §121 home-sale gain exclusion for status.
func PrimaryResidenceExclusion(status domain.FilingStatus) decimal.Decimal {
	if status == domain.FilingMarriedFilingJointly || status == domain.FilingQualifyingSurvingSpouse {
		return d(500000)
	}
	return d(250000)
}
