package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"niftycli/internal/infrastructure"
	"niftycli/pkg/contracts/domain"
)

// MinHistory is the number of records a series needs to be analyzed
const MinHistory = 2

// Engine computes the analytics of a set of series. Compute is a pure
// function of its inputs: identical inputs give identical results.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a metrics engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "analytics"))}
}

// Compute builds the per-symbol metrics and the aggregates. Series shorter
// than MinHistory count toward TotalSymbols but are otherwise excluded.
func (e *Engine) Compute(ctx context.Context, series []domain.SymbolSeries, sectors domain.SectorTable) *Result {
	ctx, span := infrastructure.StartSpan(ctx, "analytics.compute",
		attribute.Int("series", len(series)))
	defer span.End()
	start := time.Now()

	res := &Result{
		TotalSymbols: len(series),
		symbols:      make(map[string]*domain.SymbolMetrics, len(series)),
	}

	for _, s := range series {
		if s.Len() < MinHistory {
			res.Insufficient = append(res.Insufficient, s.Symbol)
			continue
		}
		daily := DailyReturns(s)
		m := &domain.SymbolMetrics{
			Symbol:            s.Symbol,
			Sector:            sectors.Lookup(s.Symbol),
			Records:           s.Len(),
			YearlyReturn:      YearlyReturn(s),
			Volatility:        Volatility(daily),
			DailyReturns:      daily,
			CumulativeReturns: CumulativeReturns(daily),
			MonthlyReturns:    MonthlyReturns(s),
		}
		res.symbols[s.Symbol] = m
		res.order = append(res.order, s.Symbol)
	}
	sort.Strings(res.order)
	sort.Strings(res.Insufficient)

	res.SectorAverages = sectorAverages(res.order, res.symbols)
	res.Correlation = correlationMatrix(res.order, res.symbols)

	span.SetAttributes(
		attribute.Int("analyzed", len(res.order)),
		attribute.Int("insufficient", len(res.Insufficient)))
	e.logger.DebugContext(ctx, "analytics computed",
		slog.Int("total_symbols", res.TotalSymbols),
		slog.Int("analyzed", len(res.order)),
		slog.Int("insufficient_history", len(res.Insufficient)),
		slog.Duration("duration", time.Since(start)))

	return res
}

// sectorAverages averages the defined yearly returns per sector, sorted by sector
func sectorAverages(order []string, symbols map[string]*domain.SymbolMetrics) []domain.SectorAverage {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	for _, symbol := range order {
		m := symbols[symbol]
		if !m.YearlyReturn.Valid {
			continue
		}
		a, ok := groups[m.Sector]
		if !ok {
			a = &acc{}
			groups[m.Sector] = a
		}
		a.sum += m.YearlyReturn.Float64
		a.n++
	}

	out := make([]domain.SectorAverage, 0, len(groups))
	for sector, a := range groups {
		out = append(out, domain.SectorAverage{
			Sector:        sector,
			AverageReturn: a.sum / float64(a.n),
			Symbols:       a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out
}

// correlationMatrix correlates every pair of analyzed symbols on their shared timestamps
func correlationMatrix(order []string, symbols map[string]*domain.SymbolMetrics) domain.CorrelationMatrix {
	axes := make([]returnAxis, len(order))
	for i, symbol := range order {
		axes[i] = newReturnAxis(symbols[symbol].DailyReturns)
	}

	values := make([][]domain.NullFloat64, len(order))
	for i := range values {
		values[i] = make([]domain.NullFloat64, len(order))
	}
	for i := range order {
		for j := i; j < len(order); j++ {
			x, y := overlap(axes[i], axes[j])
			c := pearson(x, y)
			values[i][j] = c
			values[j][i] = c
		}
	}

	return domain.CorrelationMatrix{
		Symbols: append([]string(nil), order...),
		Values:  values,
	}
}
