package exporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"niftycli/internal/analytics"
	"niftycli/pkg/contracts/domain"
)

// Sheet names of the analytics workbook, in order
const (
	SheetOverview     = "Overview"
	SheetYearly       = "Yearly Returns"
	SheetVolatility   = "Volatility"
	SheetSectors      = "Sectors"
	SheetMonthly      = "Monthly Returns"
	SheetCorrelation  = "Correlation"
	defaultSheetName  = "Sheet1"
	percentFormat     = 10 // 0.00%
	fourDecimalFormat = "0.0000"
)

// ReportSheets lists the workbook sheets in order
var ReportSheets = []string{SheetOverview, SheetYearly, SheetVolatility, SheetSectors, SheetMonthly, SheetCorrelation}

// WriteExcelReport renders res as an analytics workbook. Undefined values are left blank.
func WriteExcelReport(w io.Writer, res *analytics.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheetName, SheetOverview); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range ReportSheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	percent, err := f.NewStyle(&excelize.Style{NumFmt: percentFormat})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	decimal := fourDecimalFormat
	fixed, err := f.NewStyle(&excelize.Style{CustomNumFmt: &decimal})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	writers := []func(*excelize.File) error{
		func(f *excelize.File) error { return writeOverviewSheet(f, res) },
		func(f *excelize.File) error {
			return writeRankedSheet(f, SheetYearly, "Yearly Return", res.TopByYearlyReturn(res.TotalSymbols), percent)
		},
		func(f *excelize.File) error {
			return writeRankedSheet(f, SheetVolatility, "Volatility", res.TopByVolatility(res.TotalSymbols), fixed)
		},
		func(f *excelize.File) error { return writeSectorSheet(f, res.SectorAverages, percent) },
		func(f *excelize.File) error { return writeMonthlySheet(f, res, percent) },
		func(f *excelize.File) error { return writeCorrelationSheet(f, res.Correlation) },
	}
	for _, write := range writers {
		if err := write(f); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// nullCell leaves undefined values blank
func nullCell(v domain.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func writeOverviewSheet(f *excelize.File, res *analytics.Result) error {
	o := res.Overview()
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Symbols", o.TotalSymbols},
		{"Analyzed Symbols", o.AnalyzedSymbols},
		{"Green Symbols", o.GreenSymbols},
		{"Red Symbols", o.RedSymbols},
		{"Insufficient History", len(res.Insufficient)},
	}
	for i, r := range rows {
		if err := setRow(f, SheetOverview, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func writeRankedSheet(f *excelize.File, sheet, label string, ranked []domain.RankedMetric, style int) error {
	if err := setRow(f, sheet, 1, []interface{}{"Rank", "Symbol", "Sector", label}); err != nil {
		return err
	}
	for i, r := range ranked {
		if err := setRow(f, sheet, i+2, []interface{}{r.Rank, r.Symbol, r.Sector, r.Value}); err != nil {
			return err
		}
	}
	return f.SetColStyle(sheet, "D", style)
}

func writeSectorSheet(f *excelize.File, sectors []domain.SectorAverage, style int) error {
	if err := setRow(f, SheetSectors, 1, []interface{}{"Sector", "Average Return", "Symbols"}); err != nil {
		return err
	}
	for i, s := range sectors {
		if err := setRow(f, SheetSectors, i+2, []interface{}{s.Sector, s.AverageReturn, s.Symbols}); err != nil {
			return err
		}
	}
	return f.SetColStyle(SheetSectors, "B", style)
}

// writeMonthlySheet lays out one row per symbol and one column per month
// seen in any symbol
func writeMonthlySheet(f *excelize.File, res *analytics.Result, style int) error {
	symbols := res.Symbols()
	seen := make(map[string]bool)
	var months []string
	for _, symbol := range symbols {
		m, _ := res.Symbol(symbol)
		for key := range m.MonthlyReturns {
			if !seen[key] {
				seen[key] = true
				months = append(months, key)
			}
		}
	}
	sort.Strings(months)

	header := []interface{}{"Symbol"}
	for _, month := range months {
		header = append(header, month)
	}
	if err := setRow(f, SheetMonthly, 1, header); err != nil {
		return err
	}

	for i, symbol := range symbols {
		m, _ := res.Symbol(symbol)
		row := []interface{}{symbol}
		for _, month := range months {
			v, ok := m.MonthlyReturns[month]
			if !ok {
				row = append(row, nil)
				continue
			}
			row = append(row, nullCell(v))
		}
		if err := setRow(f, SheetMonthly, i+2, row); err != nil {
			return err
		}
	}

	if len(months) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(months) + 1)
	if err != nil {
		return err
	}
	return f.SetColStyle(SheetMonthly, "B:"+last, style)
}

func writeCorrelationSheet(f *excelize.File, m domain.CorrelationMatrix) error {
	header := []interface{}{""}
	for _, s := range m.Symbols {
		header = append(header, s)
	}
	if err := setRow(f, SheetCorrelation, 1, header); err != nil {
		return err
	}
	for i, s := range m.Symbols {
		row := []interface{}{s}
		for _, v := range m.Values[i] {
			row = append(row, nullCell(v))
		}
		if err := setRow(f, SheetCorrelation, i+2, row); err != nil {
			return err
		}
	}
	return nil
}
