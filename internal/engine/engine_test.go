package engine

import (
	"testing"
	"time"

	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/returns"
	"github.com/finplan/simcore/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestState(plan *domain.Plan) *domain.PlanState {
	accounts := map[string]*domain.AccountState{}
	bases := map[string]*decimal.Decimal{}
	for _, a := range plan.Accounts {
		accounts[a.Name] = &domain.AccountState{Account: a}
	}
	for name, b := range plan.CostBasis {
		basis := b
		bases[name] = &basis
	}
	return &domain.PlanState{
		Plan:                 plan,
		Accounts:             accounts,
		Bases:                bases,
		AgesMonths:           map[string]int{},
		YTD:                  domain.NewYTDAccumulators(),
		MAGIHistory:          map[int]decimal.Decimal{},
		Current:              plan.Simulation.PlanStart,
		RMDSatisfiedThisYear: map[string]bool{},
		PriorYearEndBalances: map[string]decimal.Decimal{},
	}
}

func newTestEngine() *Engine {
	taxEngine := tax.NewEngine(decimal.NewFromFloat(0.03))
	return New(taxEngine, returns.Deterministic{Stock: decimal.NewFromFloat(0.07), Bond: decimal.NewFromFloat(0.03)})
}

func basicPlan() *domain.Plan {
	return &domain.Plan{
		People: []domain.Person{
			{
				Name:      "primary",
				Owner:     domain.OwnerPrimary,
				BirthDate: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
				Healthcare: domain.HealthcarePolicy{
					MonthlyPremium:    decimal.NewFromInt(400),
					AnnualOutOfPocket: decimal.NewFromInt(1200),
					ChangePolicy:      domain.ChangeMatchInflation,
				},
			},
		},
		Accounts: []domain.Account{
			{Name: "cash", Kind: domain.AccountCash, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(5000), AllowWithdrawals: true},
			{Name: "brokerage", Kind: domain.AccountTaxableBrokerage, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(100000), AllowWithdrawals: true},
		},
		CostBasis: map[string]decimal.Decimal{"brokerage": decimal.NewFromInt(60000)},
		Settings: domain.PlanSettings{
			FilingStatus:    domain.FilingSingle,
			PrimaryState:    "TX",
			COLAAssumption:  decimal.NewFromFloat(0.02),
			InflationRate:   decimal.NewFromFloat(0.03),
		},
		Simulation: domain.SimulationSettings{PlanStart: domain.YearMonth{Year: 2025, Month: 1}},
	}
}

func TestStepHealthcare_PreMedicarePhase(t *testing.T) {
	plan := basicPlan()
	state := newTestState(plan)
	state.Current = domain.YearMonth{Year: 2025, Month: 6}
	state.AgesMonths["primary"] = 65*12 - 24 // age 63, pre-Medicare

	eng := newTestEngine()
	result := domain.NewMonthResult(state.Current)
	eng.stepHealthcare(state, &result, plan.Settings.InflationRate)

	assert.Len(t, result.Healthcare, 1)
	assert.True(t, result.Healthcare[0].Premium.GreaterThan(decimal.Zero))
}

func TestStepHealthcare_MedicarePhaseUsesIRMAALookback(t *testing.T) {
	plan := basicPlan()
	state := newTestState(plan)
	state.Current = domain.YearMonth{Year: 2027, Month: 6}
	state.AgesMonths["primary"] = 66 * 12
	state.MAGIHistory[2025] = decimal.NewFromInt(500000) // high lagged MAGI -> IRMAA surcharge

	eng := newTestEngine()
	result := domain.NewMonthResult(state.Current)
	eng.stepHealthcare(state, &result, plan.Settings.InflationRate)

	assert.Len(t, result.Healthcare, 1)
	low := domain.NewMonthResult(state.Current)
	state.MAGIHistory[2025] = decimal.Zero
	eng.stepHealthcare(state, &low, plan.Settings.InflationRate)

	assert.True(t, result.Healthcare[0].Premium.GreaterThan(low.Healthcare[0].Premium),
		"a high lagged MAGI should cost more than a zero one via IRMAA")
}

func TestStepExpenses_CharitableFlagsItemizedCharitable(t *testing.T) {
	plan := basicPlan()
	plan.CashFlows = []domain.CashFlowItem{
		{Name: "church", Kind: domain.CashFlowExpense, StartingAmount: decimal.NewFromInt(200), Frequency: domain.FrequencyMonthly, IsCharitable: true, StartDate: domain.YearMonth{Year: 2025, Month: 1}, EndDate: domain.YearMonth{Year: 2030, Month: 12}},
		{Name: "groceries", Kind: domain.CashFlowExpense, StartingAmount: decimal.NewFromInt(600), Frequency: domain.FrequencyMonthly, StartDate: domain.YearMonth{Year: 2025, Month: 1}, EndDate: domain.YearMonth{Year: 2030, Month: 12}},
	}
	state := newTestState(plan)
	state.Current = domain.YearMonth{Year: 2025, Month: 3}

	eng := newTestEngine()
	result := domain.NewMonthResult(state.Current)
	eng.stepExpenses(state, &result, plan.Settings.InflationRate)

	assert.True(t, state.YTD.ItemizedCharitable.Equal(decimal.NewFromInt(200)))
	assert.True(t, result.ExpensesByCategory["groceries"].Equal(decimal.NewFromInt(600)))
}

func TestSettleYear_ShortfallCoveredByWithdrawal(t *testing.T) {
	plan := basicPlan()
	state := newTestState(plan)
	state.Current = domain.YearMonth{Year: 2025, Month: 12}
	state.YTD.OrdinaryIncome = decimal.NewFromInt(300000) // large enough to owe more tax than cash on hand
	state.Account("cash").Balance = decimal.NewFromInt(1000)

	eng := newTestEngine()
	result := eng.SettleYear(state)

	assert.True(t, result.Total.GreaterThan(decimal.NewFromInt(1000)), "tax owed should exceed the cash balance in this fixture")
	assert.True(t, state.Account("brokerage").Balance.LessThan(decimal.NewFromInt(100000)),
		"the brokerage account should have been drawn down to cover the tax shortfall")
	assert.True(t, result.UnpaidTax.IsZero(), "the brokerage balance is large enough that nothing should go unpaid")
}

func TestSettleYear_InsolventWhenNoAccountsCanCoverShortfall(t *testing.T) {
	plan := basicPlan()
	plan.Accounts = []domain.Account{
		{Name: "cash", Kind: domain.AccountCash, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(100), AllowWithdrawals: true},
	}
	state := newTestState(plan)
	state.Current = domain.YearMonth{Year: 2025, Month: 12}
	state.YTD.OrdinaryIncome = decimal.NewFromInt(300000)

	eng := newTestEngine()
	result := eng.SettleYear(state)

	assert.True(t, state.Insolvent)
	assert.True(t, result.UnpaidTax.GreaterThan(decimal.Zero))
}

func TestSocialSecurityBenefit_COLACompoundsFromClaimYear(t *testing.T) {
	plan := basicPlan()
	plan.People[0].PIA = decimal.NewFromInt(2000)
	plan.People[0].SSClaimingAge = 67

	state := newTestState(plan)
	eng := newTestEngine()
	claimYM := domain.YearMonth{Year: 2027, Month: 1}
	first := eng.socialSecurityBenefit(state, &plan.People[0], claimYM, decimal.NewFromFloat(0.02))

	later := eng.socialSecurityBenefit(state, &plan.People[0], domain.YearMonth{Year: 2029, Month: 1}, decimal.NewFromFloat(0.02))
	want := first.Mul(decimal.NewFromFloat(1.02).Pow(decimal.NewFromInt(2)))
	assert.True(t, later.Equal(want), "want=%s got=%s", want, later)
}

func TestSocialSecurityBenefit_SpousalTopUpAppliesWhenLarger(t *testing.T) {
	plan := basicPlan()
	plan.People[0].PIA = decimal.NewFromInt(500)
	plan.People[0].SSClaimingAge = 67
	plan.People = append(plan.People, domain.Person{
		Name:          "spouse",
		Owner:         domain.OwnerSpouse,
		BirthDate:     time.Date(1962, 1, 1, 0, 0, 0, 0, time.UTC),
		PIA:           decimal.NewFromInt(3000),
		SSClaimingAge: 67,
	})

	state := newTestState(plan)
	eng := newTestEngine()
	benefit := eng.socialSecurityBenefit(state, &plan.People[0], domain.YearMonth{Year: 2027, Month: 1}, decimal.Zero)

	assert.True(t, benefit.Equal(decimal.NewFromInt(1500)), "want=1500 (half of spouse's PIA) got=%s", benefit)
}

func TestStepRMDs_UsesPriorYearEndSnapshotNotLiveBalance(t *testing.T) {
	plan := basicPlan()
	plan.People[0].RMDStartAge = 73
	plan.People[0].BirthDate = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	plan.RMDs = []domain.RMDConfig{
		{OwnerName: "primary", Accounts: []string{"brokerage"}, DestinationAccount: "cash"},
	}
	state := newTestState(plan)
	state.Current = domain.YearMonth{Year: 2025, Month: 12}
	state.AgesMonths["primary"] = 75 * 12
	state.PriorYearEndBalances["brokerage"] = decimal.NewFromInt(50000)
	state.Account("brokerage").Balance = decimal.NewFromInt(200000) // grew substantially mid-year

	eng := newTestEngine()
	result := domain.NewMonthResult(state.Current)
	eng.stepRMDs(state, &result)

	assert.Len(t, result.RMDs, 1)
	expected := decimal.NewFromInt(50000).Div(decimal.NewFromFloat(24.6)) // age-75 Uniform Lifetime divisor
	actual := result.RMDs[0].Amount.Neg()
	assert.True(t, actual.Sub(expected).Abs().LessThan(decimal.NewFromFloat(0.01)),
		"RMD should be computed against the prior year-end snapshot, not the grown live balance; want=%s got=%s", expected, actual)
}
