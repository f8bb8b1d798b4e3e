package http

import (
	"context"

	"niftycli/internal/analytics"
	"niftycli/internal/services"
	"niftycli/pkg/contracts/domain"
)

// AnalysisServiceInterface is the read side of the analysis service plus refresh
type AnalysisServiceInterface interface {
	Overview(ctx context.Context) (domain.MarketOverview, error)
	Performers(ctx context.Context, n int) (services.PerformersView, error)
	Sectors(ctx context.Context) ([]domain.SectorAverage, error)
	Volatility(ctx context.Context, n int) ([]domain.RankedMetric, error)
	Correlation(ctx context.Context) (domain.CorrelationMatrix, error)
	Cumulative(ctx context.Context, n int) ([]analytics.CumulativeSeries, error)
	Symbols(ctx context.Context) (services.SymbolList, error)
	Symbol(ctx context.Context, symbol string) (*domain.SymbolMetrics, error)
	Refresh(ctx context.Context) (*services.Snapshot, error)
}
