package exporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "niftycli/internal/errors"
	"niftycli/pkg/contracts/domain"
)

var day0 = time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)

func testSeries(symbol string, closes ...float64) domain.SymbolSeries {
	s := domain.SymbolSeries{Symbol: symbol}
	for i, c := range closes {
		s.Records = append(s.Records, domain.PriceRecord{
			Symbol:    symbol,
			Timestamp: day0.AddDate(0, 0, i).Add(time.Duration(i) * time.Minute),
			Open:      c - 1,
			High:      c + 1.5,
			Low:       c - 2.25,
			Close:     c,
			Volume:    int64(1000 * (i + 1)),
		})
	}
	return s
}

func TestWriteSeries(t *testing.T) {
	var buf bytes.Buffer
	s := domain.SymbolSeries{Symbol: "ABC", Records: []domain.PriceRecord{
		{Symbol: "ABC", Timestamp: time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), Open: 99, High: 101.5, Low: 98.25, Close: 100, Volume: 1200},
		{Symbol: "ABC", Timestamp: time.Date(2024, 1, 16, 15, 30, 0, 0, time.UTC), Open: 100, High: 111, Low: 100, Close: 110.1, Volume: 900},
	}}

	require.NoError(t, WriteSeries(&buf, s))
	want := "Date,open,high,low,close,volume,Ticker\n" +
		"01/15/2024 9:5,99,101.5,98.25,100,1200,ABC\n" +
		"01/16/2024 15:30,100,111,100,110.1,900,ABC\n"
	assert.Equal(t, want, buf.String())
}

func TestSeries_RoundTrip(t *testing.T) {
	original := testSeries("ABC", 100, 110.123456789, 99, 0.0001, 123456.5)

	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, original))

	parsed, err := ReadSeries(&buf, "ABC")
	require.NoError(t, err)
	require.Len(t, parsed.Records, len(original.Records))
	for i := range original.Records {
		want, got := original.Records[i], parsed.Records[i]
		assert.True(t, want.Timestamp.Equal(got.Timestamp), "record %d timestamp", i)
		want.Timestamp, got.Timestamp = time.Time{}, time.Time{}
		assert.Equal(t, want, got, "record %d", i)
	}
}

func TestReadSeries_Variants(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		symbol string
		want   []domain.PriceRecord
	}{
		{
			name:   "padded time and BOM",
			input:  "\ufeffDate,open,high,low,close,volume,Ticker\n01/15/2024 09:05,1,2,0.5,1.5,10,ABC\n",
			symbol: "ABC",
			want: []domain.PriceRecord{
				{Symbol: "ABC", Timestamp: time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
			},
		},
		{
			name:   "reordered columns without ticker",
			input:  "ticker,close,DATE,Open,High,Low,Volume\n,3,02/01/2024 10:0,1,4,0.5,7\n",
			symbol: "XYZ",
			want: []domain.PriceRecord{
				{Symbol: "XYZ", Timestamp: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), Open: 1, High: 4, Low: 0.5, Close: 3, Volume: 7},
			},
		},
		{
			name:   "header only",
			input:  "Date,open,high,low,close,volume,Ticker\n",
			symbol: "ABC",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadSeries(strings.NewReader(tt.input), tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, s.Symbol)
			assert.Equal(t, tt.want, s.Records)
		})
	}
}

func TestReadSeries_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errType apperrors.ErrorType
	}{
		{name: "empty file", input: "", errType: apperrors.ErrTypeEmptySource},
		{name: "missing column", input: "Date,open,high,low,volume\n", errType: apperrors.ErrTypeMalformedRecord},
		{name: "bad date", input: "Date,open,high,low,close,volume\n2024-01-15,1,1,1,1,1\n", errType: apperrors.ErrTypeMalformedRecord},
		{name: "bad number", input: "Date,open,high,low,close,volume\n01/15/2024 9:5,x,1,1,1,1\n", errType: apperrors.ErrTypeMalformedRecord},
		{name: "fractional volume", input: "Date,open,high,low,close,volume\n01/15/2024 9:5,1,1,1,1,1.5\n", errType: apperrors.ErrTypeMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSeries(strings.NewReader(tt.input), "ABC")
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestCSVWriter_BOM(t *testing.T) {
	var buf bytes.Buffer
	cw, err := NewCSVWriter(&buf, WriteOptions{Headers: []string{"a", "b"}, BOMPrefix: true})
	require.NoError(t, err)
	require.NoError(t, cw.WriteRecord([]string{"1", "x,y"}))
	require.NoError(t, cw.Close())

	assert.Equal(t, 1, cw.Rows())
	assert.Equal(t, "\ufeffa,b\n1,\"x,y\"\n", buf.String())
}
