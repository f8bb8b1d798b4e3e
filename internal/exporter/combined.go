package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"niftycli/pkg/contracts/domain"
)

// CombinedRow is one record of the combined export. Timestamp is Unix
// milliseconds in UTC.
type CombinedRow struct {
	Timestamp int64   `parquet:"timestamp"`
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
	Ticker    string  `parquet:"ticker"`
	Sector    string  `parquet:"sector"`
}

// Time returns the row timestamp
func (r CombinedRow) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

// CombineSeries flattens series into combined rows in series order, tagging
// every row with the series symbol and its resolved sector.
func CombineSeries(series []domain.SymbolSeries, sectors domain.SectorTable) []CombinedRow {
	var rows []CombinedRow
	for _, s := range series {
		sector := sectors.Lookup(s.Symbol)
		for _, r := range s.Records {
			rows = append(rows, CombinedRow{
				Timestamp: r.Timestamp.UTC().UnixMilli(),
				Open:      r.Open,
				High:      r.High,
				Low:       r.Low,
				Close:     r.Close,
				Volume:    r.Volume,
				Ticker:    s.Symbol,
				Sector:    sector,
			})
		}
	}
	return rows
}

// WriteCombinedCSV writes rows with CombinedHeader
func WriteCombinedCSV(w io.Writer, rows []CombinedRow) error {
	cw, err := NewCSVWriter(w, WriteOptions{Headers: CombinedHeader})
	if err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			formatDate(r.Time()),
			formatFloat(r.Open),
			formatFloat(r.High),
			formatFloat(r.Low),
			formatFloat(r.Close),
			formatInt(r.Volume),
			r.Ticker,
			r.Sector,
		}
		if err := cw.WriteRecord(record); err != nil {
			return err
		}
	}
	return cw.Close()
}

// WriteCombinedParquet writes rows as a Parquet file
func WriteCombinedParquet(w io.Writer, rows []CombinedRow) error {
	if err := parquet.Write(w, rows); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// ReadCombinedParquet loads a combined Parquet file
func ReadCombinedParquet(path string) ([]CombinedRow, error) {
	rows, err := parquet.ReadFile[CombinedRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet %s: %w", path, err)
	}
	return rows, nil
}
