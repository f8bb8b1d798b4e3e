package domain

import (
	"time"
)

// PriceRecord is one normalized OHLCV observation for a symbol.
// Timestamp has minute precision and is always UTC.
type PriceRecord struct {
	Symbol    string    `json:"symbol" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// SymbolSeries is the chronologically ordered history of a single symbol.
// Records are non-decreasing by Timestamp and all carry Symbol.
type SymbolSeries struct {
	Symbol  string        `json:"symbol"`
	Records []PriceRecord `json:"records"`
}

// Len returns the number of records in the series
func (s SymbolSeries) Len() int {
	return len(s.Records)
}

// Closes returns the close prices in series order
func (s SymbolSeries) Closes() []float64 {
	closes := make([]float64, len(s.Records))
	for i, r := range s.Records {
		closes[i] = r.Close
	}
	return closes
}

// First returns the earliest record. It panics on an empty series.
func (s SymbolSeries) First() PriceRecord {
	return s.Records[0]
}

// Last returns the latest record. It panics on an empty series.
func (s SymbolSeries) Last() PriceRecord {
	return s.Records[len(s.Records)-1]
}

// IsOrdered reports whether timestamps never decrease
func (s SymbolSeries) IsOrdered() bool {
	for i := 1; i < len(s.Records); i++ {
		if s.Records[i].Timestamp.Before(s.Records[i-1].Timestamp) {
			return false
		}
	}
	return true
}
