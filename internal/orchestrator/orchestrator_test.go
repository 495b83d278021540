package orchestrator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestPercentileOf_EmptyIsZero(t *testing.T) {
	got := percentileOf(nil, 0.5)
	assert.True(t, got.IsZero())
}

func TestPercentileOf_MonotonicAcrossBands(t *testing.T) {
	sorted := dec(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)

	p10 := percentileOf(sorted, 0.10)
	p50 := percentileOf(sorted, 0.50)
	p90 := percentileOf(sorted, 0.90)

	assert.True(t, p10.LessThanOrEqual(p50), "p10=%s should not exceed p50=%s", p10, p50)
	assert.True(t, p50.LessThanOrEqual(p90), "p50=%s should not exceed p90=%s", p50, p90)
}

func TestPercentileOf_ReturnsValueFromInputSet(t *testing.T) {
	sorted := dec(100, 200, 300)
	got := percentileOf(sorted, 0.5)

	found := false
	for _, v := range sorted {
		if v.Equal(got) {
			found = true
		}
	}
	assert.True(t, found, "percentile result %s should be one of the input values, not interpolated", got)
}

func TestDeriveSubSeed_DeterministicPerIndex(t *testing.T) {
	a := deriveSubSeed(42, 0)
	b := deriveSubSeed(42, 0)
	assert.Equal(t, a, b, "same master seed and index must derive the same sub-seed")

	c := deriveSubSeed(42, 1)
	assert.NotEqual(t, a, c, "different run indices must derive different sub-seeds")
}

func TestDeriveSubSeed_DifferentMasterSeedsDiverge(t *testing.T) {
	a := deriveSubSeed(1, 0)
	b := deriveSubSeed(2, 0)
	assert.NotEqual(t, a, b)
}

func TestPercentileBands_EmptySeriesIsZeroValue(t *testing.T) {
	bands := percentileBands(nil)
	assert.Empty(t, bands.P50)
}

func TestPercentileBands_AlignsByYearIndex(t *testing.T) {
	series := [][]decimal.Decimal{
		dec(100, 200, 300),
		dec(110, 190, 310),
		dec(90, 210, 290),
	}
	bands := percentileBands(series)
	assert.Len(t, bands.P50, 3)
	assert.True(t, bands.P10[0].LessThanOrEqual(bands.P90[0]))
}
