package analytics

import (
	"sort"

	"niftycli/pkg/contracts/domain"
)

// Result is the immutable output of one Compute. Accessors return fresh
// slices, but the SymbolMetrics they point into must be treated as read-only.
type Result struct {
	TotalSymbols   int
	Insufficient   []string // symbols with fewer than MinHistory records
	SectorAverages []domain.SectorAverage
	Correlation    domain.CorrelationMatrix

	symbols map[string]*domain.SymbolMetrics
	order   []string
}

// CumulativeSeries is the compounded return curve of one symbol
type CumulativeSeries struct {
	Symbol string              `json:"symbol"`
	Points []domain.DatedValue `json:"points"`
}

// Overview counts symbols overall and by the sign of their yearly return.
// Zero counts as red. Symbols with an undefined yearly return are neither.
func (r *Result) Overview() domain.MarketOverview {
	o := domain.MarketOverview{
		TotalSymbols:    r.TotalSymbols,
		AnalyzedSymbols: len(r.order),
	}
	for _, symbol := range r.order {
		y := r.symbols[symbol].YearlyReturn
		switch {
		case !y.Valid:
		case y.Float64 > 0:
			o.GreenSymbols++
		default:
			o.RedSymbols++
		}
	}
	return o
}

// Symbols returns the analyzed symbols in ascending order
func (r *Result) Symbols() []string {
	return append([]string(nil), r.order...)
}

// Symbol returns the metrics of one analyzed symbol
func (r *Result) Symbol(symbol string) (*domain.SymbolMetrics, bool) {
	m, ok := r.symbols[symbol]
	return m, ok
}

// TopByYearlyReturn returns up to n symbols with the highest yearly return
func (r *Result) TopByYearlyReturn(n int) []domain.RankedMetric {
	return r.rank(n, yearly, true)
}

// BottomByYearlyReturn returns up to n symbols with the lowest yearly return
func (r *Result) BottomByYearlyReturn(n int) []domain.RankedMetric {
	return r.rank(n, yearly, false)
}

// TopByVolatility returns up to n symbols with the highest volatility
func (r *Result) TopByVolatility(n int) []domain.RankedMetric {
	return r.rank(n, volatility, true)
}

// CumulativeReturns returns the cumulative curves of the top n performers by yearly return
func (r *Result) CumulativeReturns(n int) []CumulativeSeries {
	top := r.TopByYearlyReturn(n)
	out := make([]CumulativeSeries, len(top))
	for i, t := range top {
		out[i] = CumulativeSeries{
			Symbol: t.Symbol,
			Points: append([]domain.DatedValue(nil), r.symbols[t.Symbol].CumulativeReturns...),
		}
	}
	return out
}

// CumulativeFor returns the cumulative return curve of one analyzed symbol
func (r *Result) CumulativeFor(symbol string) ([]domain.DatedValue, bool) {
	m, ok := r.symbols[symbol]
	if !ok {
		return nil, false
	}
	return append([]domain.DatedValue(nil), m.CumulativeReturns...), true
}

func yearly(m *domain.SymbolMetrics) domain.NullFloat64     { return m.YearlyReturn }
func volatility(m *domain.SymbolMetrics) domain.NullFloat64 { return m.Volatility }

// rank orders the defined values of metric, descending when desc is set.
// Ties are broken by symbol ascending in both directions.
func (r *Result) rank(n int, metric func(*domain.SymbolMetrics) domain.NullFloat64, desc bool) []domain.RankedMetric {
	if n <= 0 {
		return []domain.RankedMetric{}
	}

	rows := make([]domain.RankedMetric, 0, len(r.order))
	for _, symbol := range r.order {
		m := r.symbols[symbol]
		v := metric(m)
		if !v.Valid {
			continue
		}
		rows = append(rows, domain.RankedMetric{Symbol: symbol, Sector: m.Sector, Value: v.Float64})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			if desc {
				return rows[i].Value > rows[j].Value
			}
			return rows[i].Value < rows[j].Value
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
