package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "niftycli/internal/errors"
	"niftycli/internal/files"
	"niftycli/pkg/contracts/domain"
)

// SeriesStore reads and writes the per-symbol series directory, one
// <SYMBOL>.csv file per symbol.
type SeriesStore struct {
	dir       string
	files     *files.Manager
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewSeriesStore creates a store rooted at dir
func NewSeriesStore(dir string, logger *slog.Logger) *SeriesStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesStore{
		dir:       dir,
		files:     files.NewManager("", logger),
		discovery: files.NewDiscovery(""),
		logger:    logger.With(slog.String("component", "series_store")),
	}
}

// Dir returns the series directory
func (s *SeriesStore) Dir() string {
	return s.dir
}

// Path returns the file that holds symbol's series
func (s *SeriesStore) Path(symbol string) string {
	return filepath.Join(s.dir, symbol+".csv")
}

// WriteAll replaces the file of every given series. Each file is written
// atomically; symbols not in series are left untouched.
func (s *SeriesStore) WriteAll(ctx context.Context, series []domain.SymbolSeries) (int, error) {
	if err := s.files.EnsureDirectory(s.dir); err != nil {
		return 0, fmt.Errorf("failed to create series directory: %w", err)
	}

	for _, ser := range series {
		if err := ValidateSymbolFileName(ser.Symbol); err != nil {
			return 0, err
		}
	}

	written := 0
	for _, ser := range series {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		err := s.files.WriteAtomic(s.Path(ser.Symbol), func(w io.Writer) error {
			return WriteSeries(w, ser)
		})
		if err != nil {
			return written, fmt.Errorf("failed to write series for %s: %w", ser.Symbol, err)
		}
		written++
	}

	s.logger.InfoContext(ctx, "Series files written",
		slog.String("dir", s.dir),
		slog.Int("files", written))
	return written, nil
}

// ReadAll loads every series file in the directory, sorted by symbol. The
// symbol is the file name without its extension, and it overrides the Ticker
// column. Unreadable files and files repeating a symbol are skipped with a
// warning.
func (s *SeriesStore) ReadAll(ctx context.Context) ([]domain.SymbolSeries, error) {
	csvFiles, err := s.discovery.FindCSVFiles(s.dir)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SymbolSeries, 0, len(csvFiles))
	seen := make(map[string]string, len(csvFiles))
	for _, f := range csvFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ser, err := s.readFile(f)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping series file",
				slog.String("source", f.Path),
				slog.String("error", err.Error()))
			continue
		}
		if prev, dup := seen[ser.Symbol]; dup {
			s.logger.WarnContext(ctx, "Skipping duplicate series file",
				slog.String("source", f.Path),
				slog.String("symbol", ser.Symbol),
				slog.String("first", prev))
			continue
		}
		seen[ser.Symbol] = f.Path
		out = append(out, ser)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *SeriesStore) readFile(f files.FileInfo) (domain.SymbolSeries, error) {
	symbol := SymbolFromFileName(f.Name)
	file, err := os.Open(f.Path)
	if err != nil {
		return domain.SymbolSeries{}, fmt.Errorf("failed to open series file: %w", err)
	}
	defer file.Close()

	ser, err := ReadSeries(file, symbol)
	if err != nil {
		return domain.SymbolSeries{}, err
	}
	for i := range ser.Records {
		ser.Records[i].Symbol = symbol
	}
	if !ser.IsOrdered() {
		sort.SliceStable(ser.Records, func(i, j int) bool {
			return ser.Records[i].Timestamp.Before(ser.Records[j].Timestamp)
		})
	}
	return ser, nil
}

// SymbolFromFileName returns the base name without its extension, so
// BRK.A.csv holds BRK.A
func SymbolFromFileName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidateSymbolFileName rejects symbols that cannot name a file inside the
// series directory
func ValidateSymbolFileName(symbol string) error {
	if symbol == "" || symbol == "." || symbol == ".." ||
		strings.ContainsAny(symbol, `/\`+"\x00") || filepath.Base(symbol) != symbol {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("symbol %q cannot be used as a series file name", symbol)).
			WithContext("symbol", symbol)
	}
	return nil
}
