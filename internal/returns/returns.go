// Package returns supplies annual market-return draws to the engine (C12
// of spec.md §2): a deterministic constant-factor mode, a Monte Carlo mode
// driven by a seed-stable linear congruential generator feeding a
// Box-Muller transform (required to reproduce identically across
// independent implementations, per spec.md §5/§9 — the teacher's
// math/rand-based calculation/fers_montecarlo.go is NOT reused here because
// math/rand's stream is not guaranteed stable across languages), and a
// historical-replay mode drawing from bundled annual US stock/bond return
// series.
package returns

import (
	"math"

	"github.com/shopspring/decimal"
)

// Generator produces one (stockReturn, bondReturn) annual pair per call, in
// simulation order. Implementations are stateful and not safe for
// concurrent use; each ensemble run owns its own Generator.
type Generator interface {
	Next() (stock, bond decimal.Decimal)
}

// Deterministic always returns the same configured annual rates.
type Deterministic struct {
	Stock decimal.Decimal
	Bond  decimal.Decimal
}

func (d Deterministic) Next() (decimal.Decimal, decimal.Decimal) { return d.Stock, d.Bond }

// lcgModulus, lcgMultiplier, and lcgIncrement are the constants of the
// Numerical Recipes LCG, chosen for their wide use as a simple, fully
// reproducible 32-bit stream across language runtimes.
const (
	lcgModulus    = 1 << 32
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// lcg is a seed-stable 32-bit linear congruential generator.
type lcg struct {
	state uint64
}

func newLCG(seed int64) *lcg {
	return &lcg{state: uint64(seed) % lcgModulus}
}

// uniform returns the next pseudo-random value in (0, 1), excluding the
// endpoints so Box-Muller's logarithm never sees zero.
func (g *lcg) uniform() float64 {
	g.state = (lcgMultiplier*g.state + lcgIncrement) % lcgModulus
	v := (float64(g.state) + 1) / (lcgModulus + 1)
	return v
}

// MonteCarlo draws correlated annual stock/bond returns via a seed-stable
// LCG feeding a Box-Muller normal transform, per spec.md §5.
type MonteCarlo struct {
	gen *lcg

	stockMean, stockStd   decimal.Decimal
	bondMean, bondStd     decimal.Decimal
	correlation           decimal.Decimal

	spare     float64
	haveSpare bool
}

// NewMonteCarlo builds a seed-stable Monte Carlo return generator. Same
// seed and parameters always produce the same draw sequence.
func NewMonteCarlo(seed int64, stockMean, stockStd, bondMean, bondStd, correlation decimal.Decimal) *MonteCarlo {
	return &MonteCarlo{
		gen:         newLCG(seed),
		stockMean:   stockMean,
		stockStd:    stockStd,
		bondMean:    bondMean,
		bondStd:     bondStd,
		correlation: correlation,
	}
}

// boxMuller returns one standard-normal draw via the polar-free Box-Muller
// transform, caching the second value the transform produces for free.
func (m *MonteCarlo) boxMuller() float64 {
	if m.haveSpare {
		m.haveSpare = false
		return m.spare
	}
	const twoPi = 6.283185307179586
	u1 := m.gen.uniform()
	u2 := m.gen.uniform()
	r := math.Sqrt(-2 * math.Log(u1))
	z0 := r * math.Cos(twoPi*u2)
	z1 := r * math.Sin(twoPi*u2)
	m.spare = z1
	m.haveSpare = true
	return z0
}

func (m *MonteCarlo) Next() (decimal.Decimal, decimal.Decimal) {
	z1 := m.boxMuller()
	z2 := m.boxMuller()

	corr, _ := m.correlation.Float64()
	// Correlate z2 against z1 via the standard Cholesky construction so the
	// bond draw shares `correlation` worth of the stock draw's shock.
	z2Correlated := corr*z1 + math.Sqrt(1-corr*corr)*z2

	stockMean, _ := m.stockMean.Float64()
	stockStd, _ := m.stockStd.Float64()
	bondMean, _ := m.bondMean.Float64()
	bondStd, _ := m.bondStd.Float64()

	stock := stockMean + stockStd*z1
	bond := bondMean + bondStd*z2Correlated

	return decimal.NewFromFloat(stock), decimal.NewFromFloat(bond)
}

// HistoricalYear is one year's observed total returns.
type HistoricalYear struct {
	Year  int
	Stock decimal.Decimal
	Bond  decimal.Decimal
}

// Historical replays a bundled annual return series, either as a single
// rolling window starting at a chosen year or as independent-year
// resampling driven by the LCG, per spec.md §4.12.
type Historical struct {
	series []HistoricalYear
	gen    *lcg

	rolling  bool
	cursor   int
}

// NewHistoricalRolling replays series in order starting at startYear,
// wrapping back to the earliest year once the series is exhausted.
func NewHistoricalRolling(series []HistoricalYear, startYear int) *Historical {
	idx := 0
	for i, y := range series {
		if y.Year == startYear {
			idx = i
			break
		}
	}
	return &Historical{series: series, rolling: true, cursor: idx}
}

// NewHistoricalResampled draws an i.i.d. random year from series on each
// call, using the seed-stable LCG.
func NewHistoricalResampled(series []HistoricalYear, seed int64) *Historical {
	return &Historical{series: series, rolling: false, gen: newLCG(seed)}
}

func (h *Historical) Next() (decimal.Decimal, decimal.Decimal) {
	if len(h.series) == 0 {
		return decimal.Zero, decimal.Zero
	}
	if h.rolling {
		y := h.series[h.cursor%len(h.series)]
		h.cursor++
		return y.Stock, y.Bond
	}
	idx := int(h.gen.uniform() * float64(len(h.series)))
	if idx >= len(h.series) {
		idx = len(h.series) - 1
	}
	y := h.series[idx]
	return y.Stock, y.Bond
}
