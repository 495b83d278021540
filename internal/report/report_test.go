package report

import (
	"strings"
	"testing"

	"github.com/finplan/simcore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDeterministicResult() *domain.SimulationResult {
	return &domain.SimulationResult{
		Mode: domain.ModeDeterministic,
		Seed: 7,
		Deterministic: []domain.AnnualResult{
			{Year: 2025, NetWorth: decimal.NewFromInt(500000), EndingBalances: map[string]decimal.Decimal{}},
			{Year: 2026, NetWorth: decimal.NewFromInt(520000), EndingBalances: map[string]decimal.Decimal{}},
		},
	}
}

func sampleEnsembleResult() *domain.SimulationResult {
	return &domain.SimulationResult{
		Mode:        domain.ModeMonteCarlo,
		Runs:        1000,
		SuccessRate: decimal.NewFromFloat(0.87),
		NetWorthBands: domain.PercentileBands{
			P10: []decimal.Decimal{decimal.NewFromInt(100000)},
			P25: []decimal.Decimal{decimal.NewFromInt(200000)},
			P50: []decimal.Decimal{decimal.NewFromInt(300000)},
			P75: []decimal.Decimal{decimal.NewFromInt(400000)},
			P90: []decimal.Decimal{decimal.NewFromInt(500000)},
		},
	}
}

func TestCSVFormatter_DeterministicRows(t *testing.T) {
	data, err := CSVFormatter{}.Format(sampleDeterministicResult())
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "year,net_worth,income,expenses,tax_total,insolvent")
	assert.Contains(t, out, "2025,500000.00")
	assert.Contains(t, out, "2026,520000.00")
}

func TestCSVFormatter_EnsembleBands(t *testing.T) {
	data, err := CSVFormatter{}.Format(sampleEnsembleResult())
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "year_index,p10,p25,p50,p75,p90")
	assert.Contains(t, out, "300000.00")
}

func TestTableFormatter_DeterministicHeader(t *testing.T) {
	data, err := TableFormatter{}.Format(sampleDeterministicResult())
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "simulation mode: deterministic"))
	assert.True(t, strings.Contains(out, "net worth"))
}

func TestTableFormatter_EnsembleShowsSuccessRate(t *testing.T) {
	data, err := TableFormatter{}.Format(sampleEnsembleResult())
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "runs: 1000")
	assert.Contains(t, out, "87.0%")
}

func TestPDFFormatter_ProducesNonEmptyPDF(t *testing.T) {
	data, err := PDFFormatter{}.Format(sampleDeterministicResult())
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestFormatterNames(t *testing.T) {
	assert.Equal(t, "csv", CSVFormatter{}.Name())
	assert.Equal(t, "table", TableFormatter{}.Name())
	assert.Equal(t, "pdf", PDFFormatter{}.Name())
}
