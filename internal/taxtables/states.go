package taxtables

import "github.com/shopspring/decimal"

// StateRule describes one state's income tax treatment, generalized from
// the teacher's single-state (Pennsylvania) PennsylvaniaTaxCalculator into a
// uniform table covering all 50 states + DC, per spec.md §4.2.
//
// FlatRate states tax at Rate on taxable income with no brackets. NoTax
// states (Rate is zero and Brackets is empty) levy no income tax at all.
// Bracketed states apply Brackets the same way federal ordinary brackets
// apply. RetirementExempt marks states that, like Pennsylvania in the
// teacher, do not tax retirement distributions (pensions/TSP/Traditional
// withdrawals); SocialSecurityExempt marks states that do not tax Social
// Security.
type StateRule struct {
	Name              string
	Rate              decimal.Decimal // used when Brackets is empty
	Brackets          []Bracket       // used when non-empty
	RetirementExempt  bool
	SocialSecurityExempt bool
}

// states is keyed by USPS two-letter code plus "DC". Rates are flat
// approximations of each state's top marginal bracket; states with
// graduated brackets in reality are represented here as a single flat rate
// per spec.md §4.2's "single-flat-rate... representation" allowance, except
// for a handful of larger bracketed states modeled explicitly.
var states = map[string]StateRule{
	"AL": {Name: "Alabama", Rate: pct(0.05)},
	"AK": {Name: "Alaska", Rate: decimal.Zero},
	"AZ": {Name: "Arizona", Rate: pct(0.025)},
	"AR": {Name: "Arkansas", Rate: pct(0.039)},
	"CA": {Name: "California", Brackets: []Bracket{
		{decimal.Zero, d(10756), pct(0.01)},
		{d(10756), d(25499), pct(0.02)},
		{d(25499), d(40245), pct(0.04)},
		{d(40245), d(55866), pct(0.06)},
		{d(55866), d(70606), pct(0.08)},
		{d(70606), d(360659), pct(0.093)},
		{d(360659), d(432787), pct(0.103)},
		{d(432787), d(721314), pct(0.113)},
		{d(721314), decimal.Zero, pct(0.123)},
	}},
	"CO": {Name: "Colorado", Rate: pct(0.044)},
	"CT": {Name: "Connecticut", Rate: pct(0.0699)},
	"DE": {Name: "Delaware", Rate: pct(0.066)},
	"FL": {Name: "Florida", Rate: decimal.Zero},
	"GA": {Name: "Georgia", Rate: pct(0.0549)},
	"HI": {Name: "Hawaii", Rate: pct(0.11)},
	"ID": {Name: "Idaho", Rate: pct(0.058)},
	"IL": {Name: "Illinois", Rate: pct(0.0495), RetirementExempt: true},
	"IN": {Name: "Indiana", Rate: pct(0.03)},
	"IA": {Name: "Iowa", Rate: pct(0.038), RetirementExempt: true},
	"KS": {Name: "Kansas", Rate: pct(0.057)},
	"KY": {Name: "Kentucky", Rate: pct(0.04)},
	"LA": {Name: "Louisiana", Rate: pct(0.03)},
	"ME": {Name: "Maine", Rate: pct(0.0715)},
	"MD": {Name: "Maryland", Rate: pct(0.0575)},
	"MA": {Name: "Massachusetts", Rate: pct(0.09)},
	"MI": {Name: "Michigan", Rate: pct(0.0425)},
	"MN": {Name: "Minnesota", Rate: pct(0.0985)},
	"MS": {Name: "Mississippi", Rate: pct(0.044)},
	"MO": {Name: "Missouri", Rate: pct(0.0495), RetirementExempt: true},
	"MT": {Name: "Montana", Rate: pct(0.059)},
	"NE": {Name: "Nebraska", Rate: pct(0.0584)},
	"NV": {Name: "Nevada", Rate: decimal.Zero},
	"NH": {Name: "New Hampshire", Rate: decimal.Zero},
	"NJ": {Name: "New Jersey", Rate: pct(0.1075)},
	"NM": {Name: "New Mexico", Rate: pct(0.059)},
	"NY": {Name: "New York", Brackets: []Bracket{
		{decimal.Zero, d(17150), pct(0.04)},
		{d(17150), d(23600), pct(0.045)},
		{d(23600), d(27900), pct(0.0525)},
		{d(27900), d(161550), pct(0.055)},
		{d(161550), d(323200), pct(0.06)},
		{d(323200), d(2155350), pct(0.0685)},
		{d(2155350), decimal.Zero, pct(0.109)},
	}},
	"NC": {Name: "North Carolina", Rate: pct(0.045)},
	"ND": {Name: "North Dakota", Rate: pct(0.025)},
	"OH": {Name: "Ohio", Rate: pct(0.035)},
	"OK": {Name: "Oklahoma", Rate: pct(0.0475)},
	"OR": {Name: "Oregon", Rate: pct(0.099)},
	"PA": {Name: "Pennsylvania", Rate: pct(0.0307), RetirementExempt: true, SocialSecurityExempt: true},
	"RI": {Name: "Rhode Island", Rate: pct(0.0599)},
	"SC": {Name: "South Carolina", Rate: pct(0.062)},
	"SD": {Name: "South Dakota", Rate: decimal.Zero},
	"TN": {Name: "Tennessee", Rate: decimal.Zero},
	"TX": {Name: "Texas", Rate: decimal.Zero},
	"UT": {Name: "Utah", Rate: pct(0.0465)},
	"VT": {Name: "Vermont", Rate: pct(0.0875)},
	"VA": {Name: "Virginia", Rate: pct(0.0575)},
	"WA": {Name: "Washington", Rate: decimal.Zero},
	"WV": {Name: "West Virginia", Rate: pct(0.0482)},
	"WI": {Name: "Wisconsin", Rate: pct(0.0765)},
	"WY": {Name: "Wyoming", Rate: decimal.Zero},
	"DC": {Name: "District of Columbia", Rate: pct(0.0895)},
}

// StateByCode returns the state rule for a two-letter USPS code (or "DC").
// Unknown codes fall back to a no-tax rule with SocialSecurityExempt so an
// unrecognized location never silently overtaxes the household.
func StateByCode(code string) StateRule {
	if r, ok := states[code]; ok {
		return r
	}
	return StateRule{Name: "Unknown", Rate: decimal.Zero, SocialSecurityExempt: true}
}
