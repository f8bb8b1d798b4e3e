// Package exporter writes and reads the tabular outputs of the pipeline.
//
// Per-symbol series files use the header Date,open,high,low,close,volume,Ticker
// with dates in MM/DD/YYYY H:M form. SeriesStore manages a directory of them.
// The combined export adds a Sector column and can be written as CSV or
// Parquet. WriteExcelReport renders an analytics result as a workbook.
//
// Example usage:
//
//	store := exporter.NewSeriesStore(cfg.Paths.SeriesDir, logger)
//	n, err := store.WriteAll(ctx, series)
//
//	rows := exporter.CombineSeries(series, sectors)
//	err = exporter.WriteCombinedCSV(w, rows)
package exporter
