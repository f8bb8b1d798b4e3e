package exporter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "niftycli/internal/errors"
	"niftycli/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// SeriesHeader is the fixed column order of per-symbol series files
var SeriesHeader = []string{"Date", "open", "high", "low", "close", "volume", "Ticker"}

// CombinedHeader is SeriesHeader plus the resolved sector
var CombinedHeader = append(append([]string(nil), SeriesHeader...), "Sector")

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter streams rows to an io.Writer
type CSVWriter struct {
	writer *csv.Writer
	rows   int
}

// NewCSVWriter writes the optional BOM and the header row to w
func NewCSVWriter(w io.Writer, options WriteOptions) (*CSVWriter, error) {
	if options.BOMPrefix {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &CSVWriter{writer: writer}, nil
}

// WriteRecord writes a single record
func (c *CSVWriter) WriteRecord(record []string) error {
	if err := c.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", c.rows, err)
	}
	c.rows++
	return nil
}

// Rows returns the number of records written, header excluded
func (c *CSVWriter) Rows() int {
	return c.rows
}

// Close flushes buffered rows
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.writer.Error()
}

// recordToCSVRow converts a price record to a series CSV row
func recordToCSVRow(r domain.PriceRecord) []string {
	return []string{
		formatDate(r.Timestamp),
		formatFloat(r.Open),
		formatFloat(r.High),
		formatFloat(r.Low),
		formatFloat(r.Close),
		formatInt(r.Volume),
		r.Symbol,
	}
}

// WriteSeries writes one symbol's history in series CSV form
func WriteSeries(w io.Writer, s domain.SymbolSeries) error {
	cw, err := NewCSVWriter(w, WriteOptions{Headers: SeriesHeader})
	if err != nil {
		return err
	}
	for _, r := range s.Records {
		r.Symbol = s.Symbol
		if err := cw.WriteRecord(recordToCSVRow(r)); err != nil {
			return err
		}
	}
	return cw.Close()
}

// ReadSeries parses a series CSV. symbol names the series and fills rows
// whose Ticker column is empty. A leading BOM is ignored and columns are
// located by header name, case-insensitively.
func ReadSeries(r io.Reader, symbol string) (domain.SymbolSeries, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == utf8BOM {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return domain.SymbolSeries{}, apperrors.NewEmptySourceError(symbol)
	}
	if err != nil {
		return domain.SymbolSeries{}, apperrors.NewMalformedRecordError(symbol, 0, err)
	}
	cols, err := seriesColumns(header)
	if err != nil {
		return domain.SymbolSeries{}, apperrors.NewMalformedRecordError(symbol, 0, err)
	}

	series := domain.SymbolSeries{Symbol: symbol}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.SymbolSeries{}, apperrors.NewMalformedRecordError(symbol, line, err)
		}
		rec, err := cols.record(row)
		if err != nil {
			return domain.SymbolSeries{}, apperrors.NewMalformedRecordError(symbol, line, err)
		}
		if rec.Symbol == "" {
			rec.Symbol = symbol
		}
		series.Records = append(series.Records, rec)
	}
	return series, nil
}

// seriesLayout holds the column index of each SeriesHeader field
type seriesLayout [7]int

func seriesColumns(header []string) (seriesLayout, error) {
	var layout seriesLayout
	for i, name := range SeriesHeader {
		layout[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				layout[i] = j
				break
			}
		}
		if layout[i] < 0 && name != "Ticker" {
			return layout, fmt.Errorf("missing column %q", name)
		}
	}
	return layout, nil
}

func (l seriesLayout) record(row []string) (domain.PriceRecord, error) {
	field := func(i int) string {
		if l[i] < 0 || l[i] >= len(row) {
			return ""
		}
		return row[l[i]]
	}

	var rec domain.PriceRecord
	var err error
	if rec.Timestamp, err = parseDate(field(0)); err != nil {
		return rec, err
	}
	prices := []*float64{&rec.Open, &rec.High, &rec.Low, &rec.Close}
	for i, p := range prices {
		if *p, err = parseFloat(field(i + 1)); err != nil {
			return rec, fmt.Errorf("invalid %s: %w", SeriesHeader[i+1], err)
		}
	}
	if rec.Volume, err = parseInt(field(5)); err != nil {
		return rec, fmt.Errorf("invalid volume: %w", err)
	}
	rec.Symbol = strings.TrimSpace(field(6))
	return rec, nil
}
