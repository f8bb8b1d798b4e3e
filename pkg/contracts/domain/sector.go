package domain

import (
	"sort"
)

// UnknownSector is the label returned for symbols missing from a sector table
const UnknownSector = "Unknown"

// SectorTable maps normalized symbols to sector labels.
// The zero value is an empty table where every lookup resolves to UnknownSector.
type SectorTable struct {
	sectors map[string]string
}

// NewSectorTable builds a table from an already normalized symbol -> sector map.
// The map is copied.
func NewSectorTable(m map[string]string) SectorTable {
	sectors := make(map[string]string, len(m))
	for symbol, sector := range m {
		sectors[symbol] = sector
	}
	return SectorTable{sectors: sectors}
}

// Lookup returns the sector for symbol, or UnknownSector when absent
func (t SectorTable) Lookup(symbol string) string {
	if sector, ok := t.sectors[symbol]; ok {
		return sector
	}
	return UnknownSector
}

// Len returns the number of symbols in the table
func (t SectorTable) Len() int {
	return len(t.sectors)
}

// Symbols returns the table's symbols in ascending order
func (t SectorTable) Symbols() []string {
	symbols := make([]string, 0, len(t.sectors))
	for symbol := range t.sectors {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
