package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"niftycli/internal/config"
	apperrors "niftycli/internal/errors"
	"niftycli/pkg/contracts/domain"
)

// sourceDateLayout is the date half of a source name (YYYY-MM-DD_HH-MM-SS)
const sourceDateLayout = "2006-01-02"

// rawEntry is one YAML entry as written by the price collector. A nil field
// means the key was missing or held a value of the wrong type.
type rawEntry struct {
	Ticker *string  `validate:"required,min=1,excludesall=/\\"`
	Open   *float64 `validate:"required"`
	High   *float64 `validate:"required"`
	Low    *float64 `validate:"required"`
	Close  *float64 `validate:"required"`
	Volume *int64   `validate:"required"`
}

// entryFromFields picks the known keys out of a decoded YAML mapping
func entryFromFields(fields map[string]interface{}) rawEntry {
	var e rawEntry
	if s, ok := fields["Ticker"].(string); ok {
		e.Ticker = &s
	}
	e.Open = numberField(fields, "open")
	e.High = numberField(fields, "high")
	e.Low = numberField(fields, "low")
	e.Close = numberField(fields, "close")
	e.Volume = volumeField(fields, "volume")
	return e
}

// numberField returns the value of key as a float when it is a YAML int or float
func numberField(fields map[string]interface{}, key string) *float64 {
	var f float64
	switch v := fields[key].(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float64:
		f = v
	default:
		return nil
	}
	return &f
}

// volumeField returns the value of key as a share count. Integers are taken
// as is; floats are truncated when finite and within int64 range.
func volumeField(fields map[string]interface{}, key string) *int64 {
	var n int64
	switch v := fields[key].(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > math.MaxInt64 {
			return nil
		}
		n = int64(v)
	case float64:
		if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil
		}
		n = int64(v)
	default:
		return nil
	}
	return &n
}

// SourceResult is the outcome of normalizing one source body
type SourceResult struct {
	Timestamp      time.Time
	Records        []domain.PriceRecord
	SkippedEntries []error // malformed entries dropped under the skip_entry policy
}

// Normalizer turns raw record sources into PriceRecords
type Normalizer struct {
	policy   string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer applying policy (config.EntryPolicySkipEntry
// or config.EntryPolicyAbortSource) to malformed entries.
func NewNormalizer(policy string, logger *slog.Logger) *Normalizer {
	if policy == "" {
		policy = config.EntryPolicySkipEntry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		policy:   policy,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "normalizer")),
	}
}

// ParseSourceName derives the observation timestamp from a source name of the
// form YYYY-MM-DD_HH-MM-SS[.ext]. Hour and minute are kept, seconds are discarded.
func ParseSourceName(name string) (time.Time, error) {
	base := filepath.Base(name)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}

	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return time.Time{}, apperrors.NewMalformedSourceNameError(name,
			fmt.Errorf("expected a date and a time separated by '_'"))
	}

	date, err := time.Parse(sourceDateLayout, parts[0])
	if err != nil {
		return time.Time{}, apperrors.NewMalformedSourceNameError(name, err)
	}

	clock := strings.Split(parts[1], "-")
	if len(clock) != 3 {
		return time.Time{}, apperrors.NewMalformedSourceNameError(name,
			fmt.Errorf("time %q must have three '-' separated fields", parts[1]))
	}

	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, apperrors.NewMalformedSourceNameError(name,
			fmt.Errorf("invalid hour %q", clock[0]))
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, apperrors.NewMalformedSourceNameError(name,
			fmt.Errorf("invalid minute %q", clock[1]))
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC), nil
}

// NormalizeSource decodes one source body and stamps every entry with the
// timestamp of the source name. An empty or null body yields ErrEmptySource.
// Malformed entries are dropped or abort the source depending on the policy.
func (n *Normalizer) NormalizeSource(ctx context.Context, name string, body []byte) (SourceResult, error) {
	ts, err := ParseSourceName(name)
	if err != nil {
		return SourceResult{}, err
	}
	result := SourceResult{Timestamp: ts}

	// Entries are decoded loosely and then checked field by field, so that one
	// ill-typed value only condemns its own entry
	var entries []map[string]interface{}
	if err := yaml.Unmarshal(body, &entries); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) || len(entries) == 0 {
			return SourceResult{}, apperrors.NewMalformedRecordError(name, 0, err)
		}
	}

	if len(entries) == 0 {
		return SourceResult{}, apperrors.NewEmptySourceError(name)
	}

	result.Records = make([]domain.PriceRecord, 0, len(entries))
	for i, fields := range entries {
		entry := entryFromFields(fields)
		if err := n.validate.Struct(entry); err != nil {
			malformed := apperrors.NewMalformedRecordError(name, i, err)
			if n.policy == config.EntryPolicyAbortSource {
				return SourceResult{}, malformed
			}
			n.logger.WarnContext(ctx, "skipping malformed entry",
				slog.String("source", name),
				slog.Int("entry", i),
				slog.String("error", err.Error()))
			result.SkippedEntries = append(result.SkippedEntries, malformed)
			continue
		}

		result.Records = append(result.Records, domain.PriceRecord{
			Symbol:    *entry.Ticker,
			Timestamp: ts,
			Open:      *entry.Open,
			High:      *entry.High,
			Low:       *entry.Low,
			Close:     *entry.Close,
			Volume:    *entry.Volume,
		})
	}

	return result, nil
}
