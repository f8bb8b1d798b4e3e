// Command convert turns the YAML day folders into one CSV per symbol.
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
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "config file (defaults to config.yaml or $NIFTY_CONFIG)")
	recordsDir := fs.String("records", "", "directory of day folders (overrides paths.records_dir)")
	seriesDir := fs.String("out", "", "output directory for per-symbol CSVs (overrides paths.series_dir)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}

	cfg, logger, err := cli.Setup("convert", *configFile)
	if err != nil {
		return cli.Fail(nil, stderr, err)
	}
	if *recordsDir != "" {
		cfg.Paths.RecordsDir = *recordsDir
	}
	if *seriesDir != "" {
		cfg.Paths.SeriesDir = *seriesDir
	}

	v := validation.NewPathValidator(logger)
	if err := v.InputDirectory(cfg.Paths.RecordsDir); err != nil {
		return cli.Fail(logger, stderr, err)
	}
	if err := v.OutputDirectory(cfg.Paths.SeriesDir); err != nil {
		return cli.Fail(logger, stderr, err)
	}

	logger.InfoContext(ctx, "Starting conversion",
		slog.String("records_dir", cfg.Paths.RecordsDir),
		slog.String("series_dir", cfg.Paths.SeriesDir),
		slog.String("entry_policy", cfg.Analysis.EntryPolicy))

	res, err := services.NewPipeline(cfg, nil, logger).Convert(ctx)
	if err != nil {
		return cli.Fail(logger, stderr, err)
	}

	fmt.Fprintf(stdout, "Processed %d of %d sources (%d empty, %d skipped, %d entries skipped)\n",
		res.Stats.Processed, res.Stats.Sources, res.Stats.Empty, res.Stats.Skipped, res.Stats.EntriesSkipped)
	fmt.Fprintf(stdout, "Created %d files for %d symbols in %s\n",
		res.FilesCreated, res.Symbols, cfg.Paths.SeriesDir)
	return cli.ExitOK
}
