package dataprocessing

import (
	"sort"

	"niftycli/internal/config"
	"niftycli/pkg/contracts/domain"
)

// BuildSeries groups records by symbol and orders each group chronologically.
// The sort is stable, so records sharing a timestamp keep their ingestion
// order. With the "last" duplicates policy only the last ingested record per
// timestamp survives. Series are returned sorted by symbol and are never empty.
func BuildSeries(records []domain.PriceRecord, duplicates string) []domain.SymbolSeries {
	groups := make(map[string][]domain.PriceRecord)
	for _, r := range records {
		groups[r.Symbol] = append(groups[r.Symbol], r)
	}

	symbols := make([]string, 0, len(groups))
	for symbol := range groups {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	series := make([]domain.SymbolSeries, 0, len(symbols))
	for _, symbol := range symbols {
		group := groups[symbol]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		if duplicates == config.DuplicatesLast {
			group = keepLastPerTimestamp(group)
		}
		series = append(series, domain.SymbolSeries{Symbol: symbol, Records: group})
	}
	return series
}

// keepLastPerTimestamp collapses runs of equal timestamps to their last element
func keepLastPerTimestamp(sorted []domain.PriceRecord) []domain.PriceRecord {
	out := sorted[:0]
	for i, r := range sorted {
		if i+1 < len(sorted) && sorted[i+1].Timestamp.Equal(r.Timestamp) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CountRecords returns the total number of records across series
func CountRecords(series []domain.SymbolSeries) int {
	total := 0
	for _, s := range series {
		total += s.Len()
	}
	return total
}
