package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftycli/internal/config"
	apperrors "niftycli/internal/errors"
	"niftycli/internal/infrastructure"
)

func TestParseSourceName(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    time.Time
		wantErr bool
	}{
		{"yaml", "2024-01-15_09-05-00.yaml", time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), false},
		{"seconds discarded", "2024-01-15_09-05-59.yml", time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), false},
		{"no extension", "2024-12-31_23-59-00", time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), false},
		{"double extension", "2024-01-15_09-05-00.backup.yaml", time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), false},
		{"extra suffix", "2024-01-15_09-05-00_nse.yaml", time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), false},
		{"with directory", "records/2024-01-15/2024-01-15_10-30-00.yaml", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), false},
		{"no separator", "foo.yaml", time.Time{}, true},
		{"bad month", "2024-13-01_09-05-00.yaml", time.Time{}, true},
		{"two time fields", "2024-01-15_09-05.yaml", time.Time{}, true},
		{"hour out of range", "2024-01-15_24-00-00.yaml", time.Time{}, true},
		{"minute out of range", "2024-01-15_09-60-00.yaml", time.Time{}, true},
		{"non numeric hour", "2024-01-15_aa-05-00.yaml", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSourceName(tt.source)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrMalformedSourceName)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

const validBody = `
- Ticker: ABC
  open: 100
  high: 105.5
  low: 99
  close: 101.25
  volume: 12000
- Ticker: XYZ
  open: 10
  high: 11
  low: 9.5
  close: 10.5
  volume: 500.9
`

func TestNormalizeSource_Valid(t *testing.T) {
	n := NewNormalizer(config.EntryPolicySkipEntry, infrastructure.NewTestLogger(&bytes.Buffer{}))

	res, err := n.NormalizeSource(context.Background(), "2024-01-15_09-05-00.yaml", []byte(validBody))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.SkippedEntries)

	abc := res.Records[0]
	assert.Equal(t, "ABC", abc.Symbol)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), abc.Timestamp)
	assert.Equal(t, 100.0, abc.Open)
	assert.Equal(t, 105.5, abc.High)
	assert.Equal(t, 99.0, abc.Low)
	assert.Equal(t, 101.25, abc.Close)
	assert.Equal(t, int64(12000), abc.Volume)

	// fractional volume truncates
	assert.Equal(t, int64(500), res.Records[1].Volume)
}

const bodyWithBadEntries = `
- Ticker: ABC
  open: 1
  high: 1
  low: 1
  close: 1
  volume: 1
- Ticker: BAD
  open: 1
  high: 1
  low: 1
  volume: 1
- Ticker: TYPO
  open: 1
  high: 1
  low: 1
  close: abc
  volume: 1
- just a string
- Ticker: XYZ
  open: 2
  high: 2
  low: 2
  close: 2
  volume: 2
`

func TestNormalizeSource_EntryPolicies(t *testing.T) {
	ctx := context.Background()
	logs := &bytes.Buffer{}

	skip := NewNormalizer(config.EntryPolicySkipEntry, infrastructure.NewTestLogger(logs))
	res, err := skip.NormalizeSource(ctx, "2024-01-15_09-05-00.yaml", []byte(bodyWithBadEntries))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "ABC", res.Records[0].Symbol)
	assert.Equal(t, "XYZ", res.Records[1].Symbol)
	require.Len(t, res.SkippedEntries, 3)
	for _, e := range res.SkippedEntries {
		assert.ErrorIs(t, e, apperrors.ErrMalformedRecord)
	}
	assert.Contains(t, logs.String(), `"level":"WARN"`)

	abort := NewNormalizer(config.EntryPolicyAbortSource, infrastructure.NewTestLogger(&bytes.Buffer{}))
	_, err = abort.NormalizeSource(ctx, "2024-01-15_09-05-00.yaml", []byte(bodyWithBadEntries))
	assert.ErrorIs(t, err, apperrors.ErrMalformedRecord)
}

func TestNormalizeSource_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		body   string
		want   error
	}{
		{"empty body", "2024-01-15_09-05-00.yaml", "", apperrors.ErrEmptySource},
		{"null body", "2024-01-15_09-05-00.yaml", "null\n", apperrors.ErrEmptySource},
		{"empty list", "2024-01-15_09-05-00.yaml", "[]\n", apperrors.ErrEmptySource},
		{"mapping body", "2024-01-15_09-05-00.yaml", "Ticker: ABC\n", apperrors.ErrMalformedRecord},
		{"syntax error", "2024-01-15_09-05-00.yaml", "- [unclosed\n", apperrors.ErrMalformedRecord},
		{"bad name", "prices.yaml", validBody, apperrors.ErrMalformedSourceName},
	}

	n := NewNormalizer("", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := n.NormalizeSource(context.Background(), tt.source, []byte(tt.body))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, res.Records)
		})
	}
}

func TestNormalizeSource_Volume(t *testing.T) {
	entry := func(volume string) string {
		return "- Ticker: ABC\n  open: 1\n  high: 1\n  low: 1\n  close: 1\n  volume: " + volume + "\n"
	}
	tests := []struct {
		name   string
		volume string
		want   int64
		valid  bool
	}{
		{"above float precision", "9007199254740993", 9007199254740993, true},
		{"max int64", "9223372036854775807", 9223372036854775807, true},
		{"fraction truncates", "12.75", 12, true},
		{"nan", ".nan", 0, false},
		{"infinity", ".inf", 0, false},
		{"float out of range", "1e19", 0, false},
		{"uint64 out of range", "18446744073709551615", 0, false},
	}

	n := NewNormalizer(config.EntryPolicySkipEntry, infrastructure.NewTestLogger(nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := n.NormalizeSource(context.Background(), "2024-01-15_09-05-00.yaml", []byte(entry(tt.volume)))
			require.NoError(t, err)
			if !tt.valid {
				assert.Empty(t, res.Records)
				require.Len(t, res.SkippedEntries, 1)
				assert.ErrorIs(t, res.SkippedEntries[0], apperrors.ErrMalformedRecord)
				return
			}
			require.Len(t, res.Records, 1)
			assert.Equal(t, tt.want, res.Records[0].Volume)
		})
	}
}

func TestNormalizeSource_TickerPathCharacters(t *testing.T) {
	body := `
- Ticker: ../escaped
  open: 1
  high: 1
  low: 1
  close: 1
  volume: 1
- Ticker: 'A\B'
  open: 1
  high: 1
  low: 1
  close: 1
  volume: 1
- Ticker: BRK.A
  open: 1
  high: 1
  low: 1
  close: 1
  volume: 1
`
	n := NewNormalizer(config.EntryPolicySkipEntry, infrastructure.NewTestLogger(nil))
	res, err := n.NormalizeSource(context.Background(), "2024-01-15_09-05-00.yaml", []byte(body))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "BRK.A", res.Records[0].Symbol)
	assert.Len(t, res.SkippedEntries, 2)
}
