// Command report computes the dashboard metrics and prints them as text,
// optionally writing the Excel workbook as well.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"niftycli/internal/analytics"
	"niftycli/internal/cli"
	"niftycli/internal/config"
	"niftycli/internal/exporter"
	"niftycli/internal/files"
	"niftycli/internal/services"
	"niftycli/internal/validation"
	"niftycli/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "config file (defaults to config.yaml or $NIFTY_CONFIG)")
	source := fs.String("source", "", "input: records | series (overrides paths.source)")
	excelPath := fs.String("excel", "", "also write the Excel report to this path")
	topN := fs.Int("n", 0, "rows in the ranked tables (overrides analysis.top_n)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}
	if *source != "" && *source != config.SourceRecords && *source != config.SourceSeries {
		return cli.Fail(nil, stderr, &cli.UsageError{Msg: fmt.Sprintf("unknown source %q", *source)})
	}
	if *topN < 0 {
		return cli.Fail(nil, stderr, &cli.UsageError{Msg: "n must be positive"})
	}

	cfg, logger, err := cli.Setup("report", *configFile)
	if err != nil {
		return cli.Fail(nil, stderr, err)
	}
	if *source != "" {
		cfg.Paths.Source = *source
	}
	if *topN > 0 {
		cfg.Analysis.TopN = *topN
	}

	var excelOut string
	if *excelPath != "" {
		excelOut = *excelPath
		if !filepath.IsAbs(excelOut) && cfg.Paths.ReportsDir != "" && filepath.Dir(excelOut) == "." {
			excelOut = cfg.Paths.ReportFile(excelOut)
		}
		if err := validation.NewPathValidator(logger).OutputFile(excelOut, ".xlsx"); err != nil {
			return cli.Fail(logger, stderr, err)
		}
	}

	loaded, err := services.NewPipeline(cfg, nil, logger).Load(ctx, cfg.Paths.Source)
	if err != nil {
		return cli.Fail(logger, stderr, err)
	}
	res := analytics.NewEngine(logger).Compute(ctx, loaded.Series, loaded.Sectors)

	printReport(stdout, res, cfg.Analysis.TopN, cfg.Analysis.CumulativeN)

	if excelOut != "" {
		path := excelOut
		err := files.NewManager("", logger).WriteAtomic(path, func(w io.Writer) error {
			return exporter.WriteExcelReport(w, res)
		})
		if err != nil {
			return cli.Fail(logger, stderr, fmt.Errorf("failed to write excel report: %w", err))
		}
		logger.InfoContext(ctx, "Excel report written", slog.String("path", path))
		fmt.Fprintf(stdout, "\nExcel report written to %s\n", path)
	}
	return cli.ExitOK
}

// printReport renders the dashboard tabs as aligned text tables
func printReport(out io.Writer, res *analytics.Result, topN, cumulativeN int) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	ov := res.Overview()
	fmt.Fprintln(tw, "== Market Overview ==")
	fmt.Fprintf(tw, "Total stocks\t%d\n", ov.TotalSymbols)
	fmt.Fprintf(tw, "Analyzed\t%d\n", ov.AnalyzedSymbols)
	fmt.Fprintf(tw, "Green stocks\t%d\n", ov.GreenSymbols)
	fmt.Fprintf(tw, "Red stocks\t%d\n", ov.RedSymbols)

	section(tw, fmt.Sprintf("Top %d Gainers", topN))
	ranked(tw, res.TopByYearlyReturn(topN), percent)
	section(tw, fmt.Sprintf("Top %d Losers", topN))
	ranked(tw, res.BottomByYearlyReturn(topN), percent)

	section(tw, "Sector Performance")
	fmt.Fprintln(tw, "Sector\tAvg return\tSymbols")
	for _, s := range res.SectorAverages {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Sector, percent(s.AverageReturn), s.Symbols)
	}

	section(tw, fmt.Sprintf("Top %d Most Volatile", topN))
	ranked(tw, res.TopByVolatility(topN), func(v float64) string { return fmt.Sprintf("%.4f", v) })

	section(tw, fmt.Sprintf("Cumulative Return, Top %d Performers", cumulativeN))
	fmt.Fprintln(tw, "Symbol\tFrom\tTo\tCumulative")
	for _, c := range res.CumulativeReturns(cumulativeN) {
		if len(c.Points) == 0 {
			continue
		}
		first, last := c.Points[0], lastDefined(c.Points)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Symbol,
			first.Timestamp.Format("2006-01-02"), last.Timestamp.Format("2006-01-02"), nullPercent(last.Value))
	}

	if len(res.Insufficient) > 0 {
		section(tw, "Insufficient History")
		for _, s := range res.Insufficient {
			fmt.Fprintln(tw, s)
		}
	}
}

// lastDefined returns the latest point with a value, or the last point when
// none has one
func lastDefined(points []domain.DatedValue) domain.DatedValue {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value.Valid {
			return points[i]
		}
	}
	return points[len(points)-1]
}

func section(tw *tabwriter.Writer, title string) {
	fmt.Fprintf(tw, "\n== %s ==\n", title)
}

func ranked(tw *tabwriter.Writer, rows []domain.RankedMetric, format func(float64) string) {
	fmt.Fprintln(tw, "#\tSymbol\tSector\tValue")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", row.Rank, row.Symbol, row.Sector, format(row.Value))
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func nullPercent(v domain.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return percent(v.Float64)
}
