// Package orchestrator builds the initial PlanState, drives the engine
// month by month across the plan horizon, and — for Monte Carlo and
// historical modes — fans out independent runs concurrently and aggregates
// their results into percentile bands (C11 of spec.md §2). Grounded on the
// teacher's calculation/fers_montecarlo.go RunFERSMonteCarlo goroutine/
// buffered-channel fan-out pattern, adapted to spec.md §5's requirement
// that each run own an independent PlanState clone and a sub-seed derived
// from the master seed and run index (the teacher's shared math/rand
// global state is not reused).
package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/engine"
	"github.com/finplan/simcore/internal/returns"
	"github.com/finplan/simcore/internal/tax"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// ProgressFunc is notified after each completed ensemble run with the
// number of runs finished so far and the total scheduled; callers display
// it however they like (a progress bar, a log line, nothing at all).
type ProgressFunc func(completed, total int)

// Run executes the plan's configured simulation mode and returns the
// aggregated SimulationResult, per spec.md §4.11. onProgress, if given, is
// invoked after each ensemble run completes; in deterministic mode, which has
// exactly one run, it is invoked once with (1, 1).
func Run(ctx context.Context, plan *domain.Plan, onProgress ...ProgressFunc) (domain.SimulationResult, error) {
	var progress ProgressFunc
	if len(onProgress) > 0 {
		progress = onProgress[0]
	}
	switch plan.Simulation.Mode {
	case domain.ModeMonteCarlo, domain.ModeHistorical:
		return runEnsemble(ctx, plan, progress)
	default:
		annual, err := runSingle(ctx, plan, plan.Simulation.Seed)
		if err != nil {
			return domain.SimulationResult{}, err
		}
		if progress != nil {
			progress(1, 1)
		}
		return domain.SimulationResult{Mode: domain.ModeDeterministic, Seed: plan.Simulation.Seed, Deterministic: annual}, nil
	}
}

// runSingle drives one full deterministic or seeded pass over the plan
// horizon and returns one AnnualResult per calendar year.
func runSingle(ctx context.Context, plan *domain.Plan, seed int64) ([]domain.AnnualResult, error) {
	state := NewPlanState(plan)
	taxEngine := tax.NewEngine(plan.Settings.InflationRate)
	returnSource := buildReturnSource(plan, seed)
	eng := engine.New(taxEngine, returnSource)

	var results []domain.AnnualResult
	current := &domain.AnnualResult{Year: state.Current.Year, EndingBalances: map[string]decimal.Decimal{}}

	for !state.Current.After(plan.Simulation.PlanEnd) {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		if state.Current.Year != current.Year {
			results = append(results, *current)
			current = &domain.AnnualResult{Year: state.Current.Year, EndingBalances: map[string]decimal.Decimal{}}
		}

		month := eng.AdvanceMonth(state)
		current.Months[state.Current.Month-1] = month

		if state.Current.IsDecember() {
			current.Tax = eng.SettleYear(state)
			current.Insolvent = state.Insolvent
			for name, a := range state.Accounts {
				current.EndingBalances[name] = a.Balance
			}
			current.NetWorth = state.NetWorth()
			current.MAGI = state.MAGIHistory[state.Current.Year]
		}

		state.Current = state.Current.Next()
	}
	results = append(results, *current)
	return results, nil
}

// runEnsemble fans out plan.Simulation.Runs independent runs concurrently,
// each with its own PlanState clone and return-generator sub-seed, then
// aggregates percentile bands across all completed runs.
func runEnsemble(ctx context.Context, plan *domain.Plan, onProgress ProgressFunc) (domain.SimulationResult, error) {
	runs := plan.Simulation.Runs
	if runs <= 0 {
		runs = 1
	}

	type runOutcome struct {
		annual []domain.AnnualResult
		err    error
	}
	outcomes := make([]runOutcome, runs)

	var wg sync.WaitGroup
	var completedMu sync.Mutex
	completed := 0
	sem := make(chan struct{}, 16)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			subSeed := deriveSubSeed(plan.Simulation.Seed, idx)
			annual, err := runSingle(ctx, plan, subSeed)
			outcomes[idx] = runOutcome{annual: annual, err: err}
			if onProgress != nil {
				completedMu.Lock()
				completed++
				n := completed
				completedMu.Unlock()
				onProgress(n, runs)
			}
		}(i)
	}
	wg.Wait()

	var netWorthSeries, incomeSeries, expenseSeries, taxSeries [][]decimal.Decimal
	successes := 0
	for _, o := range outcomes {
		if o.err != nil || len(o.annual) == 0 {
			continue
		}
		nw := make([]decimal.Decimal, len(o.annual))
		inc := make([]decimal.Decimal, len(o.annual))
		exp := make([]decimal.Decimal, len(o.annual))
		tx := make([]decimal.Decimal, len(o.annual))
		insolvent := false
		for i, a := range o.annual {
			nw[i] = a.NetWorth
			inc[i] = a.TotalIncome()
			exp[i] = a.TotalExpenses()
			tx[i] = a.Tax.Total
			if a.Insolvent {
				insolvent = true
			}
		}
		netWorthSeries = append(netWorthSeries, nw)
		incomeSeries = append(incomeSeries, inc)
		expenseSeries = append(expenseSeries, exp)
		taxSeries = append(taxSeries, tx)
		if !insolvent {
			successes++
		}
	}

	total := decimal.NewFromInt(int64(len(outcomes)))
	successRate := decimal.Zero
	if total.GreaterThan(decimal.Zero) {
		successRate = decimal.NewFromInt(int64(successes)).Div(total)
	}

	return domain.SimulationResult{
		Mode:          plan.Simulation.Mode,
		Seed:          plan.Simulation.Seed,
		Runs:          runs,
		NetWorthBands: percentileBands(netWorthSeries),
		IncomeBands:   percentileBands(incomeSeries),
		ExpenseBands:  percentileBands(expenseSeries),
		TaxBands:      percentileBands(taxSeries),
		SuccessRate:   successRate,
	}, nil
}

// deriveSubSeed derives a reproducible per-run seed from the master seed
// and run index, per spec.md §5.
func deriveSubSeed(masterSeed int64, runIndex int) int64 {
	const mixer = 0x9E3779B97F4A7C15 // golden-ratio constant, standard splitmix64 mixer
	s := uint64(masterSeed) + uint64(runIndex+1)*mixer
	s ^= s >> 33
	s *= 0xff51afd7ed558ccd
	s ^= s >> 33
	return int64(s)
}

// percentileBands computes the 10/25/50/75/90 percentile series across
// runs for one metric, aligned by year index. Ordering of the input run
// slices does not affect the result.
func percentileBands(series [][]decimal.Decimal) domain.PercentileBands {
	if len(series) == 0 {
		return domain.PercentileBands{}
	}
	years := 0
	for _, s := range series {
		if len(s) > years {
			years = len(s)
		}
	}

	bands := domain.PercentileBands{}
	for y := 0; y < years; y++ {
		var column []decimal.Decimal
		for _, s := range series {
			if y < len(s) {
				column = append(column, s[y])
			}
		}
		sort.Slice(column, func(i, j int) bool { return column[i].LessThan(column[j]) })
		bands.P10 = append(bands.P10, percentileOf(column, 0.10))
		bands.P25 = append(bands.P25, percentileOf(column, 0.25))
		bands.P50 = append(bands.P50, percentileOf(column, 0.50))
		bands.P75 = append(bands.P75, percentileOf(column, 0.75))
		bands.P90 = append(bands.P90, percentileOf(column, 0.90))
	}
	return bands
}

// percentileOf returns the empirical percentile value from a sorted slice,
// via gonum/stat's CDF-based quantile estimator (the decimal inputs are
// converted to float64 for the lookup only; the returned value is the
// original decimal at the selected rank, so no precision is lost).
func percentileOf(sorted []decimal.Decimal, p float64) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	floats := make([]float64, len(sorted))
	for i, d := range sorted {
		floats[i] = d.InexactFloat64()
	}
	target := stat.Quantile(p, stat.Empirical, floats, nil)
	idx := sort.Search(len(floats), func(i int) bool { return floats[i] >= target })
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// buildReturnSource constructs the per-run return generator appropriate to
// the plan's simulation mode, per spec.md §4.12.
func buildReturnSource(plan *domain.Plan, seed int64) engine.ReturnSource {
	sim := plan.Simulation
	switch sim.Mode {
	case domain.ModeMonteCarlo:
		return returns.NewMonteCarlo(seed, sim.StockMeanReturn, sim.StockStdDev, sim.BondMeanReturn, sim.BondStdDev, sim.StockBondCorrelation)
	case domain.ModeHistorical:
		if sim.UseRollingPeriods {
			return returns.NewHistoricalRolling(returns.USHistoricalReturns, sim.HistoricalStartYear)
		}
		return returns.NewHistoricalResampled(returns.USHistoricalReturns, seed)
	default:
		return returns.Deterministic{Stock: sim.StockMeanReturn, Bond: sim.BondMeanReturn}
	}
}

// NewPlanState clones plan into a fresh, exclusively owned PlanState ready
// to be advanced month by month, per spec.md §5.
func NewPlanState(plan *domain.Plan) *domain.PlanState {
	// Each run gets its own shallow Plan copy with an independent
	// Transactions slice, since the engine consumes transactions as they
	// execute; concurrent ensemble runs must not share that backing array.
	planCopy := *plan
	planCopy.Transactions = append([]domain.Transaction(nil), plan.Transactions...)
	plan = &planCopy

	accounts := make(map[string]*domain.AccountState, len(plan.Accounts))
	bases := make(map[string]*decimal.Decimal, len(plan.CostBasis))
	for _, a := range plan.Accounts {
		accounts[a.Name] = &domain.AccountState{Account: a}
	}
	for name, b := range plan.CostBasis {
		basis := b
		bases[name] = &basis
	}
	realAssets := make([]*domain.RealAsset, len(plan.RealAssets))
	for i, ra := range plan.RealAssets {
		copyAsset := ra
		if ra.Mortgage != nil {
			m := *ra.Mortgage
			copyAsset.Mortgage = &m
		}
		realAssets[i] = &copyAsset
	}

	rmdSatisfied := make(map[string]bool, len(plan.RMDs))
	for _, r := range plan.RMDs {
		rmdSatisfied[r.OwnerName] = false
	}

	// The run's first December's RMD step needs a "prior year-end" balance
	// before any SettleYear has run; the plan's starting balances stand in
	// for that snapshot.
	priorYearEnd := make(map[string]decimal.Decimal, len(plan.Accounts))
	for _, a := range plan.Accounts {
		priorYearEnd[a.Name] = a.Balance
	}

	return &domain.PlanState{
		Plan:                 plan,
		Accounts:             accounts,
		Bases:                bases,
		RealAssets:           realAssets,
		AgesMonths:           map[string]int{},
		YTD:                  domain.NewYTDAccumulators(),
		MAGIHistory:          map[int]decimal.Decimal{},
		Current:              plan.Simulation.PlanStart,
		RMDSatisfiedThisYear: rmdSatisfied,
		PriorYearEndBalances: priorYearEnd,
	}
}
