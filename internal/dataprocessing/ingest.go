package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	apperrors "niftycli/internal/errors"
	"niftycli/internal/files"
	"niftycli/internal/infrastructure"
	"niftycli/pkg/contracts/domain"
)

// Source statuses reported to metrics
const (
	SourceStatusOK      = "ok"
	SourceStatusEmpty   = "empty"
	SourceStatusSkipped = "skipped"
)

// IngestStats summarizes one pass over the record sources
type IngestStats struct {
	Sources        int           `json:"sources"`
	Processed      int           `json:"processed"`
	Empty          int           `json:"empty"`
	Skipped        int           `json:"skipped"`
	EntriesSkipped int           `json:"entries_skipped"`
	Records        int           `json:"records"`
	Duration       time.Duration `json:"duration"`
}

// Ingestion is the output of Ingest: all records in ingestion order
type Ingestion struct {
	Records []domain.PriceRecord
	Stats   IngestStats
}

// Ingest reads every source in the given order and normalizes it. Failing
// sources are logged and skipped; the pass fails only when no source yields
// a record, with ErrNoDataAvailable.
func (n *Normalizer) Ingest(ctx context.Context, sources []files.FileInfo, metrics *infrastructure.Metrics) (Ingestion, error) {
	start := time.Now()
	var out Ingestion
	out.Stats.Sources = len(sources)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return Ingestion{}, err
		}

		body, err := os.ReadFile(src.Path)
		if err != nil {
			n.logger.WarnContext(ctx, "skipping unreadable source",
				slog.String("source", src.Path),
				slog.String("error", err.Error()))
			out.Stats.Skipped++
			metrics.RecordSource(ctx, SourceStatusSkipped, 0)
			continue
		}

		result, err := n.NormalizeSource(ctx, src.Name, body)
		switch {
		case apperrors.IsType(err, apperrors.ErrTypeEmptySource):
			n.logger.WarnContext(ctx, "empty source",
				slog.String("source", src.Path))
			out.Stats.Empty++
			metrics.RecordSource(ctx, SourceStatusEmpty, 0)
			continue
		case err != nil:
			n.logger.WarnContext(ctx, "skipping source",
				slog.String("source", src.Path),
				slog.String("error", err.Error()))
			out.Stats.Skipped++
			metrics.RecordSource(ctx, SourceStatusSkipped, 0)
			continue
		}

		out.Records = append(out.Records, result.Records...)
		out.Stats.Processed++
		out.Stats.EntriesSkipped += len(result.SkippedEntries)
		metrics.RecordSource(ctx, SourceStatusOK, len(result.Records))
	}

	out.Stats.Records = len(out.Records)
	out.Stats.Duration = time.Since(start)

	n.logger.InfoContext(ctx, "ingestion complete",
		slog.Int("sources", out.Stats.Sources),
		slog.Int("processed", out.Stats.Processed),
		slog.Int("empty", out.Stats.Empty),
		slog.Int("skipped", out.Stats.Skipped),
		slog.Int("entries_skipped", out.Stats.EntriesSkipped),
		slog.Int("records", out.Stats.Records),
		slog.Duration("duration", out.Stats.Duration))

	if len(out.Records) == 0 {
		return out, fmt.Errorf("ingest: %w",
			apperrors.NewNoDataAvailableError(out.Stats.Sources, out.Stats.Skipped+out.Stats.Empty))
	}
	return out, nil
}
