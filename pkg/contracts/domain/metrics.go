package domain

import (
	"encoding/json"
	"math"
	"time"
)

// NullFloat64 is a float metric that may be undefined.
// An undefined value encodes as JSON null.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// Float wraps a defined value. NaN and infinities are treated as undefined.
func Float(v float64) NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat64{}
	}
	return NullFloat64{Float64: v, Valid: true}
}

// Undefined returns an undefined metric
func Undefined() NullFloat64 {
	return NullFloat64{}
}

// MarshalJSON implements json.Marshaler
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat64{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// DatedValue is one point of a derived time series
type DatedValue struct {
	Timestamp time.Time   `json:"timestamp"`
	Value     NullFloat64 `json:"value"`
}

// SymbolMetrics holds the per-symbol analytics of a run
type SymbolMetrics struct {
	Symbol            string                 `json:"symbol"`
	Sector            string                 `json:"sector"`
	Records           int                    `json:"records"`
	YearlyReturn      NullFloat64            `json:"yearly_return"`
	Volatility        NullFloat64            `json:"volatility"`
	DailyReturns      []DatedValue           `json:"daily_returns"`
	CumulativeReturns []DatedValue           `json:"cumulative_returns"`
	MonthlyReturns    map[string]NullFloat64 `json:"monthly_returns"`
}

// CorrelationMatrix is a symmetric symbol x symbol Pearson matrix.
// Values[i][j] is the correlation of Symbols[i] against Symbols[j].
type CorrelationMatrix struct {
	Symbols []string        `json:"symbols"`
	Values  [][]NullFloat64 `json:"values"`
}

// At returns the correlation between two symbols; ok is false when either is absent
func (m CorrelationMatrix) At(a, b string) (NullFloat64, bool) {
	i, j := -1, -1
	for k, s := range m.Symbols {
		if s == a {
			i = k
		}
		if s == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return NullFloat64{}, false
	}
	return m.Values[i][j], true
}

// SectorAverage is the mean yearly return of one sector
type SectorAverage struct {
	Sector        string  `json:"sector"`
	AverageReturn float64 `json:"average_return"`
	Symbols       int     `json:"symbols"`
}

// RankedMetric is one row of a top/bottom-N table
type RankedMetric struct {
	Rank   int     `json:"rank"`
	Symbol string  `json:"symbol"`
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
}

// MarketOverview holds the headline counts of a run
type MarketOverview struct {
	TotalSymbols    int `json:"total_symbols"`
	AnalyzedSymbols int `json:"analyzed_symbols"`
	GreenSymbols    int `json:"green_symbols"`
	RedSymbols      int `json:"red_symbols"`
}
