package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "niftycli/internal/errors"
	"niftycli/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// Column names required in a sector table
const (
	SectorSymbolColumn = "Symbol"
	SectorColumn       = "sector"
)

// NormalizeSymbol strips an exchange prefix ("NSE:ABC" -> "ABC") and surrounding whitespace
func NormalizeSymbol(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// LoadSectorTable reads a CSV sector table with at least Symbol and sector
// columns. Header names are matched ignoring case, surrounding whitespace and
// a UTF-8 BOM. Rows with an empty symbol are skipped; for a repeated symbol
// the first row wins.
func LoadSectorTable(r io.Reader) (domain.SectorTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return domain.SectorTable{}, apperrors.NewParsingError("sector table is empty", nil)
	}
	if err != nil {
		return domain.SectorTable{}, apperrors.NewParsingError("failed to read sector table header", err)
	}

	symbolIdx, sectorIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		switch {
		case strings.EqualFold(name, SectorSymbolColumn) && symbolIdx < 0:
			symbolIdx = i
		case strings.EqualFold(name, SectorColumn) && sectorIdx < 0:
			sectorIdx = i
		}
	}
	if symbolIdx < 0 || sectorIdx < 0 {
		return domain.SectorTable{}, apperrors.NewParsingError(
			fmt.Sprintf("sector table needs %q and %q columns, got %v", SectorSymbolColumn, SectorColumn, header), nil)
	}

	sectors := make(map[string]string)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.SectorTable{}, apperrors.NewParsingError(
				fmt.Sprintf("failed to read sector table line %d", line), err)
		}
		if symbolIdx >= len(row) || sectorIdx >= len(row) {
			continue
		}

		symbol := NormalizeSymbol(row[symbolIdx])
		if symbol == "" {
			continue
		}
		if _, seen := sectors[symbol]; seen {
			continue
		}
		sectors[symbol] = strings.TrimSpace(row[sectorIdx])
	}

	return domain.NewSectorTable(sectors), nil
}

// LoadSectorFile opens path and loads it with LoadSectorTable
func LoadSectorFile(path string) (domain.SectorTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SectorTable{}, apperrors.NewStorageError("failed to open sector table", err)
	}
	defer f.Close()

	table, err := LoadSectorTable(f)
	if err != nil {
		return domain.SectorTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
