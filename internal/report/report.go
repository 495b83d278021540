// Package report renders a SimulationResult to CSV, a plain table, or a
// minimal PDF summary. Grounded on the teacher's internal/output package's
// pluggable Formatter interface (Name()/Format()), reduced to the subset
// this spec needs — the teacher's full HTML/Sankey renderer is explicitly
// out of scope and is not reimplemented here.
package report

import (
	"bytes"
	"fmt"

	"github.com/finplan/simcore/internal/domain"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var decimal100 = decimal.NewFromInt(100)

// Formatter renders a SimulationResult to a byte stream in some format.
type Formatter interface {
	Name() string
	Format(result *domain.SimulationResult) ([]byte, error)
}

// CSVFormatter renders one row per year: net worth, income, expenses, tax.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "year,net_worth,income,expenses,tax_total,insolvent")
	for _, a := range result.Deterministic {
		fmt.Fprintf(&buf, "%d,%s,%s,%s,%s,%t\n",
			a.Year, a.NetWorth.StringFixed(2), a.TotalIncome().StringFixed(2),
			a.TotalExpenses().StringFixed(2), a.Tax.Total.StringFixed(2), a.Insolvent)
	}
	if len(result.Deterministic) == 0 && len(result.NetWorthBands.P50) > 0 {
		fmt.Fprintln(&buf, "year_index,p10,p25,p50,p75,p90")
		for i := range result.NetWorthBands.P50 {
			fmt.Fprintf(&buf, "%d,%s,%s,%s,%s,%s\n", i,
				result.NetWorthBands.P10[i].StringFixed(2), result.NetWorthBands.P25[i].StringFixed(2),
				result.NetWorthBands.P50[i].StringFixed(2), result.NetWorthBands.P75[i].StringFixed(2),
				result.NetWorthBands.P90[i].StringFixed(2))
		}
	}
	return buf.Bytes(), nil
}

// TableFormatter renders a human-readable plain-text summary table.
type TableFormatter struct{}

func (TableFormatter) Name() string { return "table" }

func (TableFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "simulation mode: %s  seed: %d\n", result.Mode, result.Seed)
	if result.Mode == domain.ModeDeterministic {
		fmt.Fprintln(&buf, "\nyear      net worth        income      expenses           tax")
		for _, a := range result.Deterministic {
			fmt.Fprintf(&buf, "%-10d%14s%14s%14s%14s\n", a.Year,
				a.NetWorth.StringFixed(0), a.TotalIncome().StringFixed(0),
				a.TotalExpenses().StringFixed(0), a.Tax.Total.StringFixed(0))
		}
		return buf.Bytes(), nil
	}
	fmt.Fprintf(&buf, "runs: %d  success rate: %s%%\n", result.Runs, result.SuccessRate.Mul(decimal100).StringFixed(1))
	fmt.Fprintln(&buf, "\nyear_index       p10       p25       p50       p75       p90")
	for i := range result.NetWorthBands.P50 {
		fmt.Fprintf(&buf, "%-14d%10s%10s%10s%10s%10s\n", i,
			result.NetWorthBands.P10[i].StringFixed(0), result.NetWorthBands.P25[i].StringFixed(0),
			result.NetWorthBands.P50[i].StringFixed(0), result.NetWorthBands.P75[i].StringFixed(0),
			result.NetWorthBands.P90[i].StringFixed(0))
	}
	return buf.Bytes(), nil
}

// PDFFormatter renders a minimal one-page PDF summary.
type PDFFormatter struct{}

func (PDFFormatter) Name() string { return "pdf" }

func (PDFFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Household Financial Plan Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Mode: %s", result.Mode))
	pdf.Ln(8)

	if result.Mode == domain.ModeDeterministic {
		pdf.Cell(0, 8, "Year       Net Worth      Income    Expenses         Tax")
		pdf.Ln(6)
		for _, a := range result.Deterministic {
			pdf.Cell(0, 6, fmt.Sprintf("%-10d %12s %10s %10s %10s", a.Year,
				a.NetWorth.StringFixed(0), a.TotalIncome().StringFixed(0),
				a.TotalExpenses().StringFixed(0), a.Tax.Total.StringFixed(0)))
			pdf.Ln(6)
		}
	} else {
		pdf.Cell(0, 8, fmt.Sprintf("Runs: %d   Success rate: %s%%", result.Runs, result.SuccessRate.Mul(decimal100).StringFixed(1)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
