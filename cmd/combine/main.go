// Command combine merges the per-symbol CSVs and the sector table into one file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"niftycli/internal/cli"
	"niftycli/internal/services"
	"niftycli/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("combine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "config file (defaults to config.yaml or $NIFTY_CONFIG)")
	seriesDir := fs.String("series", "", "directory of per-symbol CSVs (overrides paths.series_dir)")
	sectorFile := fs.String("sectors", "", "sector CSV (overrides paths.sector_file)")
	out := fs.String("out", "", "combined output file (overrides paths.combined_file)")
	format := fs.String("format", services.FormatCSV, "output format: csv | parquet")
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}
	if *format != services.FormatCSV && *format != services.FormatParquet {
		return cli.Fail(nil, stderr, &cli.UsageError{Msg: fmt.Sprintf("unknown format %q", *format)})
	}

	cfg, logger, err := cli.Setup("combine", *configFile)
	if err != nil {
		return cli.Fail(nil, stderr, err)
	}
	if *seriesDir != "" {
		cfg.Paths.SeriesDir = *seriesDir
	}
	if *sectorFile != "" {
		cfg.Paths.SectorFile = *sectorFile
	}
	if *out != "" {
		cfg.Paths.CombinedFile = *out
	}

	v := validation.NewPathValidator(logger)
	if err := v.InputDirectory(cfg.Paths.SeriesDir); err != nil {
		return cli.Fail(logger, stderr, err)
	}
	if err := v.OutputFile(cfg.Paths.CombinedFile, "."+*format); err != nil {
		return cli.Fail(logger, stderr, err)
	}

	logger.InfoContext(ctx, "Starting combine",
		slog.String("series_dir", cfg.Paths.SeriesDir),
		slog.String("sector_file", cfg.Paths.SectorFile),
		slog.String("format", *format))

	res, err := services.NewPipeline(cfg, nil, logger).Combine(ctx, *format)
	if err != nil {
		return cli.Fail(logger, stderr, err)
	}

	fmt.Fprintf(stdout, "Combined %d files (%d rows) into %s\n", res.Files, res.Rows, res.Path)
	return cli.ExitOK
}
