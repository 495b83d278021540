package taxtables

import "github.com/shopspring/decimal"

// IRMAATier is one MAGI band and its associated monthly Part B/D surcharge,
// grounded on the teacher's calculation/medicare.go IRMAAThreshold shape.
type IRMAATier struct {
	IncomeThresholdSingle decimal.Decimal
	IncomeThresholdMFJ    decimal.Decimal
	PartBSurcharge        decimal.Decimal // monthly, per person
	PartDSurcharge        decimal.Decimal // monthly, per person
}

// IRMAATiers2025 are the 2025 Medicare IRMAA brackets (based on 2023 MAGI).
var IRMAATiers2025 = []IRMAATier{
	{d(106000), d(212000), pct(74.80), pct(13.70)},
	{d(133000), d(266000), pct(187.00), pct(35.30)},
	{d(167000), d(334000), pct(299.40), pct(57.00)},
	{d(200000), d(400000), pct(411.60), pct(78.60)},
	{d(500000), d(750000), pct(443.90), pct(85.80)},
}

// MedicarePartBBase2025 is the standard 2025 Part B monthly premium.
var MedicarePartBBase2025 = pct(185.00)

// MedicarePartDBase2025 is the standard 2025 Part D base monthly premium,
// grounded on the teacher's DefaultMedicarePartDCosts().StandardBasePremium.
var MedicarePartDBase2025 = pct(35.00)

// uniformLifetime is the IRS Uniform Lifetime Table (Publication 590-B,
// Table III), literal values grounded on
// _examples/other_examples/44ec23d2_dgallion1-simpleBudget__internal-services-retirement-rmd.go.go.
var uniformLifetime = map[int]decimal.Decimal{
	72: pct(27.4), 73: pct(26.5), 74: pct(25.5), 75: pct(24.6), 76: pct(23.7),
	77: pct(22.9), 78: pct(22.0), 79: pct(21.1), 80: pct(20.2), 81: pct(19.4),
	82: pct(18.5), 83: pct(17.7), 84: pct(16.8), 85: pct(16.0), 86: pct(15.2),
	87: pct(14.4), 88: pct(13.7), 89: pct(12.9), 90: pct(12.2), 91: pct(11.5),
	92: pct(10.8), 93: pct(10.1), 94: pct(9.5), 95: pct(8.9), 96: pct(8.4),
	97: pct(7.8), 98: pct(7.3), 99: pct(6.8), 100: pct(6.4), 101: pct(6.0),
	102: pct(5.6), 103: pct(5.2), 104: pct(4.9), 105: pct(4.6), 106: pct(4.3),
	107: pct(4.1), 108: pct(3.9), 109: pct(3.7), 110: pct(3.5), 111: pct(3.4),
	112: pct(3.3), 113: pct(3.1), 114: pct(3.0), 115: pct(2.9), 116: pct(2.8),
	117: pct(2.7), 118: pct(2.5), 119: pct(2.3), 120: pct(2.0),
}

// UniformLifetimeDivisor returns the Table III divisor for age. Ages below 72
// return zero (no RMD); ages above 120 use the age-120 divisor.
func UniformLifetimeDivisor(age int) decimal.Decimal {
	if age < 72 {
		return decimal.Zero
	}
	if age > 120 {
		age = 120
	}
	return uniformLifetime[age]
}
