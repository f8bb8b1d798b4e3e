package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"niftycli/internal/analytics"
	"niftycli/internal/config"
	"niftycli/internal/dataprocessing"
	"niftycli/internal/infrastructure"
	"niftycli/pkg/contracts/domain"
)

// Snapshot is the result of one successful refresh. It is never modified
// after it is published.
type Snapshot struct {
	RunID      string                     `json:"run_id"`
	Source     string                     `json:"source"`
	ComputedAt time.Time                  `json:"computed_at"`
	Duration   time.Duration              `json:"duration"`
	CacheHit   bool                       `json:"cache_hit"`
	Stats      dataprocessing.IngestStats `json:"stats"`
	Result     *analytics.Result          `json:"-"`
}

// PerformersView holds the top and bottom performers by yearly return
type PerformersView struct {
	Gainers []domain.RankedMetric `json:"gainers"`
	Losers  []domain.RankedMetric `json:"losers"`
}

// SymbolSummary is the headline metrics of one analyzed symbol
type SymbolSummary struct {
	Symbol       string             `json:"symbol"`
	Sector       string             `json:"sector"`
	Records      int                `json:"records"`
	YearlyReturn domain.NullFloat64 `json:"yearly_return"`
	Volatility   domain.NullFloat64 `json:"volatility"`
}

// SymbolList lists the analyzed symbols and those without enough history
type SymbolList struct {
	Symbols      []SymbolSummary `json:"symbols"`
	Insufficient []string        `json:"insufficient_history"`
}

// AnalysisService runs the pipeline and serves the latest snapshot.
// Readers see either the previous or the new snapshot, never a partial one.
// Refreshes are serialized; a refresh that finds one running fails with
// ErrRefreshRunning.
type AnalysisService struct {
	pipeline *Pipeline
	memo     *analytics.Memo
	source   string
	metrics  *infrastructure.Metrics
	logger   *slog.Logger

	refreshMu sync.Mutex

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewAnalysisService creates the service. metrics may be nil.
func NewAnalysisService(cfg *config.Config, pipeline *Pipeline, memo *analytics.Memo, metrics *infrastructure.Metrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		pipeline: pipeline,
		memo:     memo,
		source:   cfg.Paths.Source,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "analysis_service")),
	}
}

// Refresh loads the inputs, computes the analytics and publishes a new
// snapshot. On failure the previous snapshot stays in place.
func (s *AnalysisService) Refresh(ctx context.Context) (*Snapshot, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshRunning
	}
	defer s.refreshMu.Unlock()

	ctx, runID := infrastructure.WithRunID(ctx)
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.run",
		attribute.String("run_id", runID),
		attribute.String("source", s.source))
	defer span.End()
	start := time.Now()

	s.logger.InfoContext(ctx, "refresh started", slog.String("source", s.source))

	loaded, err := s.pipeline.Load(ctx, s.source)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordRun(ctx, time.Since(start), err)
		s.logger.ErrorContext(ctx, "refresh failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	res, hit := s.memo.Compute(ctx, loaded.Series, loaded.Sectors)
	snap := &Snapshot{
		RunID:      runID,
		Source:     s.source,
		ComputedAt: time.Now().UTC(),
		Duration:   time.Since(start),
		CacheHit:   hit,
		Stats:      loaded.Stats,
		Result:     res,
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.metrics.RecordRun(ctx, snap.Duration, nil)
	s.metrics.SetSymbols(ctx, res.TotalSymbols)
	span.SetAttributes(attribute.Bool("cache_hit", hit), attribute.Int("symbols", res.TotalSymbols))
	s.logger.InfoContext(ctx, "refresh complete",
		slog.Int("symbols", res.TotalSymbols),
		slog.Int("records", loaded.Stats.Records),
		slog.Bool("cache_hit", hit),
		slog.Duration("duration", snap.Duration))
	return snap, nil
}

// Snapshot returns the latest snapshot or ErrNoSnapshot before the first
// successful refresh
func (s *AnalysisService) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot, nil
}

func (s *AnalysisService) result() (*analytics.Result, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Result, nil
}

// Overview returns the headline counts
func (s *AnalysisService) Overview(ctx context.Context) (domain.MarketOverview, error) {
	res, err := s.result()
	if err != nil {
		return domain.MarketOverview{}, err
	}
	return res.Overview(), nil
}

// Performers returns the n best and n worst symbols by yearly return
func (s *AnalysisService) Performers(ctx context.Context, n int) (PerformersView, error) {
	res, err := s.result()
	if err != nil {
		return PerformersView{}, err
	}
	return PerformersView{
		Gainers: res.TopByYearlyReturn(n),
		Losers:  res.BottomByYearlyReturn(n),
	}, nil
}

// Sectors returns the per-sector average yearly return
func (s *AnalysisService) Sectors(ctx context.Context) ([]domain.SectorAverage, error) {
	res, err := s.result()
	if err != nil {
		return nil, err
	}
	return append([]domain.SectorAverage(nil), res.SectorAverages...), nil
}

// Volatility returns the n most volatile symbols
func (s *AnalysisService) Volatility(ctx context.Context, n int) ([]domain.RankedMetric, error) {
	res, err := s.result()
	if err != nil {
		return nil, err
	}
	return res.TopByVolatility(n), nil
}

// Correlation returns the correlation matrix of the analyzed symbols
func (s *AnalysisService) Correlation(ctx context.Context) (domain.CorrelationMatrix, error) {
	res, err := s.result()
	if err != nil {
		return domain.CorrelationMatrix{}, err
	}
	return res.Correlation, nil
}

// Cumulative returns the cumulative curves of the n best performers
func (s *AnalysisService) Cumulative(ctx context.Context, n int) ([]analytics.CumulativeSeries, error) {
	res, err := s.result()
	if err != nil {
		return nil, err
	}
	return res.CumulativeReturns(n), nil
}

// Symbols lists the analyzed symbols with their headline metrics
func (s *AnalysisService) Symbols(ctx context.Context) (SymbolList, error) {
	res, err := s.result()
	if err != nil {
		return SymbolList{}, err
	}
	out := SymbolList{
		Symbols:      make([]SymbolSummary, 0, len(res.Symbols())),
		Insufficient: append([]string{}, res.Insufficient...),
	}
	for _, symbol := range res.Symbols() {
		m, _ := res.Symbol(symbol)
		out.Symbols = append(out.Symbols, SymbolSummary{
			Symbol:       m.Symbol,
			Sector:       m.Sector,
			Records:      m.Records,
			YearlyReturn: m.YearlyReturn,
			Volatility:   m.Volatility,
		})
	}
	return out, nil
}

// Symbol returns the full metrics of one symbol
func (s *AnalysisService) Symbol(ctx context.Context, symbol string) (*domain.SymbolMetrics, error) {
	res, err := s.result()
	if err != nil {
		return nil, err
	}
	m, ok := res.Symbol(symbol)
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return m, nil
}
