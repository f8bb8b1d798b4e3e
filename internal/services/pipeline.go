package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"niftycli/internal/config"
	"niftycli/internal/dataprocessing"
	apperrors "niftycli/internal/errors"
	"niftycli/internal/exporter"
	"niftycli/internal/files"
	"niftycli/internal/infrastructure"
	"niftycli/pkg/contracts/domain"
)

// Combined export formats
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// LoadResult is the input snapshot of one run
type LoadResult struct {
	Series  []domain.SymbolSeries
	Sectors domain.SectorTable
	Stats   dataprocessing.IngestStats
}

// ConvertResult summarizes a records -> series conversion
type ConvertResult struct {
	Stats        dataprocessing.IngestStats
	Symbols      int
	FilesCreated int
}

// CombineResult summarizes a combined export
type CombineResult struct {
	Files  int
	Rows   int
	Path   string
	Format string
}

// Pipeline wires discovery, normalization, series building and sector
// resolution over the configured paths. Each call reads its inputs afresh.
type Pipeline struct {
	paths      config.PathsConfig
	analysis   config.AnalysisConfig
	normalizer *dataprocessing.Normalizer
	discovery  *files.Discovery
	files      *files.Manager
	store      *exporter.SeriesStore
	metrics    *infrastructure.Metrics
	logger     *slog.Logger
}

// NewPipeline creates a pipeline over cfg's paths and policies. metrics may be nil.
func NewPipeline(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		paths:      cfg.Paths,
		analysis:   cfg.Analysis,
		normalizer: dataprocessing.NewNormalizer(cfg.Analysis.EntryPolicy, logger),
		discovery:  files.NewDiscovery(""),
		files:      files.NewManager("", logger),
		store:      exporter.NewSeriesStore(cfg.Paths.SeriesDir, logger),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "pipeline")),
	}
}

// Store returns the series directory store
func (p *Pipeline) Store() *exporter.SeriesStore {
	return p.store
}

// LoadRecords ingests the YAML record sources and builds the series
func (p *Pipeline) LoadRecords(ctx context.Context) ([]domain.SymbolSeries, dataprocessing.IngestStats, error) {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.load_records",
		attribute.String("records_dir", p.paths.RecordsDir))
	defer span.End()

	sources, err := p.discovery.FindSourceFiles(p.paths.RecordsDir)
	if errors.Is(err, os.ErrNotExist) {
		infrastructure.RecordError(ctx, err)
		return nil, dataprocessing.IngestStats{}, missingInput(p.paths.RecordsDir, err)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, dataprocessing.IngestStats{}, apperrors.NewStorageError("failed to list record sources", err)
	}

	ingestion, err := p.normalizer.Ingest(ctx, sources, p.metrics)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, ingestion.Stats, err
	}

	series := dataprocessing.BuildSeries(ingestion.Records, p.analysis.Duplicates)
	span.SetAttributes(attribute.Int("symbols", len(series)), attribute.Int("records", ingestion.Stats.Records))
	return series, ingestion.Stats, nil
}

// missingInput reports an input directory that does not exist yet as a run
// without data
func missingInput(dir string, cause error) error {
	noData := apperrors.NewNoDataAvailableError(0, 0).WithContext("dir", dir)
	noData.Cause = cause
	return noData
}

// LoadSeries reads the converted per-symbol series directory
func (p *Pipeline) LoadSeries(ctx context.Context) ([]domain.SymbolSeries, error) {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.load_series",
		attribute.String("series_dir", p.paths.SeriesDir))
	defer span.End()

	series, err := p.store.ReadAll(ctx)
	if errors.Is(err, os.ErrNotExist) {
		infrastructure.RecordError(ctx, err)
		return nil, missingInput(p.paths.SeriesDir, err)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apperrors.NewStorageError("failed to read series directory", err)
	}
	if dataprocessing.CountRecords(series) == 0 {
		return nil, fmt.Errorf("load series: %w", apperrors.NewNoDataAvailableError(len(series), 0))
	}
	return series, nil
}

// LoadSectors reads the sector table. A missing file yields an empty table,
// so every symbol resolves to the Unknown sector.
func (p *Pipeline) LoadSectors(ctx context.Context) (domain.SectorTable, error) {
	table, err := dataprocessing.LoadSectorFile(p.paths.SectorFile)
	if err == nil {
		return table, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		p.logger.WarnContext(ctx, "sector table not found, all symbols resolve to Unknown",
			slog.String("source", p.paths.SectorFile))
		return domain.SectorTable{}, nil
	}
	return domain.SectorTable{}, err
}

// Load builds the input snapshot from source (records or series) plus the sector table
func (p *Pipeline) Load(ctx context.Context, source string) (LoadResult, error) {
	var res LoadResult
	var err error

	switch source {
	case config.SourceRecords:
		res.Series, res.Stats, err = p.LoadRecords(ctx)
	case config.SourceSeries:
		res.Series, err = p.LoadSeries(ctx)
		if err == nil {
			res.Stats.Records = dataprocessing.CountRecords(res.Series)
		}
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	if err != nil {
		return res, err
	}

	res.Sectors, err = p.LoadSectors(ctx)
	if err != nil {
		return res, err
	}
	return res, nil
}

// Convert ingests the record sources and writes one series file per symbol
func (p *Pipeline) Convert(ctx context.Context) (ConvertResult, error) {
	start := time.Now()
	var out ConvertResult

	series, stats, err := p.LoadRecords(ctx)
	out.Stats = stats
	if err != nil {
		p.metrics.RecordRun(ctx, time.Since(start), err)
		return out, err
	}

	out.Symbols = len(series)
	out.FilesCreated, err = p.store.WriteAll(ctx, series)
	p.metrics.RecordRun(ctx, time.Since(start), err)
	if err != nil {
		return out, apperrors.NewStorageError("failed to write series files", err)
	}
	p.metrics.SetSymbols(ctx, out.Symbols)
	return out, nil
}

// Combine merges the series directory and sector table into the combined
// file in format (csv or parquet)
func (p *Pipeline) Combine(ctx context.Context, format string) (CombineResult, error) {
	out := CombineResult{Path: p.paths.CombinedFile, Format: format}

	var write func(io.Writer, []exporter.CombinedRow) error
	switch format {
	case FormatCSV:
		write = exporter.WriteCombinedCSV
	case FormatParquet:
		write = exporter.WriteCombinedParquet
	default:
		return out, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	loaded, err := p.Load(ctx, config.SourceSeries)
	if err != nil {
		return out, err
	}

	rows := exporter.CombineSeries(loaded.Series, loaded.Sectors)
	err = p.files.WriteAtomic(out.Path, func(w io.Writer) error {
		return write(w, rows)
	})
	if err != nil {
		return out, apperrors.NewStorageError("failed to write combined file", err)
	}

	out.Files = len(loaded.Series)
	out.Rows = len(rows)
	p.logger.InfoContext(ctx, "combined file written",
		slog.String("path", out.Path),
		slog.String("format", format),
		slog.Int("files", out.Files),
		slog.Int("rows", out.Rows))
	return out, nil
}
