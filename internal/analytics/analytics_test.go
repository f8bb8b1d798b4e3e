package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftycli/pkg/contracts/domain"
)

var day0 = time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)

// series builds a symbol history with one record per day starting at start
func series(symbol string, start time.Time, closes ...float64) domain.SymbolSeries {
	s := domain.SymbolSeries{Symbol: symbol}
	for i, c := range closes {
		s.Records = append(s.Records, domain.PriceRecord{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 100,
		})
	}
	return s
}

func values(points []domain.DatedValue) []domain.NullFloat64 {
	out := make([]domain.NullFloat64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func assertNull(t *testing.T, want []interface{}, got []domain.NullFloat64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		if w == nil {
			assert.False(t, got[i].Valid, "index %d should be undefined", i)
			continue
		}
		require.True(t, got[i].Valid, "index %d should be defined", i)
		assert.InDelta(t, w.(float64), got[i].Float64, 1e-12, "index %d", i)
	}
}

func TestReturns_ABC(t *testing.T) {
	abc := series("ABC", day0, 100, 110, 99)

	daily := DailyReturns(abc)
	assertNull(t, []interface{}{nil, 0.10, -0.10}, values(daily))

	assertNull(t, []interface{}{0.0, 0.10, -0.01}, values(CumulativeReturns(daily)))

	y := YearlyReturn(abc)
	require.True(t, y.Valid)
	assert.InDelta(t, -0.01, y.Float64, 1e-12)

	v := Volatility(daily)
	require.True(t, v.Valid)
	assert.InDelta(t, 0.1414213562373095, v.Float64, 1e-12)

	for i, d := range daily {
		assert.Equal(t, abc.Records[i].Timestamp, d.Timestamp)
	}
}

func TestReturns_ZeroClose(t *testing.T) {
	s := series("ZRO", day0, 0, 10, 11)

	daily := DailyReturns(s)
	assertNull(t, []interface{}{nil, nil, 0.10}, values(daily))
	assertNull(t, []interface{}{0.0, nil, 0.10}, values(CumulativeReturns(daily)))
	assert.False(t, YearlyReturn(s).Valid)
	assert.False(t, Volatility(daily).Valid)
}

func TestCumulativeReturns_SkipsUndefinedFactor(t *testing.T) {
	s := series("GAP", day0, 100, 0, 50, 55)

	daily := DailyReturns(s)
	// 100->0 is -100%, 0->50 divides by zero, 50->55 is +10%
	assertNull(t, []interface{}{nil, -1.0, nil, 0.10}, values(daily))
	assertNull(t, []interface{}{0.0, -1.0, nil, -1.0}, values(CumulativeReturns(daily)))
}

func TestYearlyReturn_ShortSeries(t *testing.T) {
	assert.False(t, YearlyReturn(series("ONE", day0, 10)).Valid)
}

func TestMonthlyReturns(t *testing.T) {
	s := domain.SymbolSeries{Symbol: "ABC", Records: []domain.PriceRecord{
		{Symbol: "ABC", Timestamp: time.Date(2024, 1, 30, 9, 0, 0, 0, time.UTC), Close: 100},
		{Symbol: "ABC", Timestamp: time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC), Close: 110},
		{Symbol: "ABC", Timestamp: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), Close: 99},
		{Symbol: "ABC", Timestamp: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), Close: 120},
		{Symbol: "ABC", Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Close: 0},
		{Symbol: "ABC", Timestamp: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), Close: 5},
		{Symbol: "ABC", Timestamp: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), Close: 7},
	}}

	monthly := MonthlyReturns(s)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04"}, MonthKeys(monthly))
	assert.InDelta(t, 0.10, monthly["2024-01"].Float64, 1e-12)
	assert.InDelta(t, 21.0/99.0, monthly["2024-02"].Float64, 1e-12)
	assert.False(t, monthly["2024-03"].Valid)
	assert.True(t, monthly["2024-04"].Valid)
	assert.Equal(t, 0.0, monthly["2024-04"].Float64)
}

func TestEngine_Compute(t *testing.T) {
	sectors := domain.NewSectorTable(map[string]string{"ABC": "IT", "DEF": "IT", "XYZ": "Energy"})
	input := []domain.SymbolSeries{
		series("ABC", day0, 100, 110, 99),
		series("DEF", day0, 50, 55, 60.5),
		series("ONE", day0, 10),
		series("UNK", day0, 20, 30),
		series("XYZ", day0, 10, 9, 8),
	}

	res := NewEngine(nil).Compute(context.Background(), input, sectors)

	assert.Equal(t, 5, res.TotalSymbols)
	assert.Equal(t, []string{"ONE"}, res.Insufficient)
	assert.Equal(t, []string{"ABC", "DEF", "UNK", "XYZ"}, res.Symbols())

	_, ok := res.Symbol("ONE")
	assert.False(t, ok)

	abc, ok := res.Symbol("ABC")
	require.True(t, ok)
	assert.Equal(t, "IT", abc.Sector)
	assert.Equal(t, 3, abc.Records)
	unk, _ := res.Symbol("UNK")
	assert.Equal(t, domain.UnknownSector, unk.Sector)

	assert.Equal(t, domain.MarketOverview{TotalSymbols: 5, AnalyzedSymbols: 4, GreenSymbols: 2, RedSymbols: 2}, res.Overview())

	require.Len(t, res.SectorAverages, 3)
	assert.Equal(t, "Energy", res.SectorAverages[0].Sector)
	assert.InDelta(t, -0.2, res.SectorAverages[0].AverageReturn, 1e-12)
	assert.Equal(t, "IT", res.SectorAverages[1].Sector)
	assert.InDelta(t, (-0.01+0.21)/2, res.SectorAverages[1].AverageReturn, 1e-12)
	assert.Equal(t, 2, res.SectorAverages[1].Symbols)
	assert.Equal(t, domain.UnknownSector, res.SectorAverages[2].Sector)

	// the one-record symbol is not part of the matrix
	_, ok = res.Correlation.At("ONE", "ABC")
	assert.False(t, ok)
	assert.Len(t, res.Correlation.Values, 4)
}

func TestEngine_Deterministic(t *testing.T) {
	input := []domain.SymbolSeries{
		series("ABC", day0, 100, 110, 99, 101, 97.5),
		series("DEF", day0, 50, 55, 60.5, 58, 59),
	}
	e := NewEngine(nil)
	a := e.Compute(context.Background(), input, domain.SectorTable{})
	b := e.Compute(context.Background(), input, domain.SectorTable{})
	assert.Equal(t, a, b)
}

func TestCorrelation(t *testing.T) {
	later := day0.AddDate(0, 1, 0)
	input := []domain.SymbolSeries{
		series("AAA", day0, 100, 110, 99, 120),
		series("BBB", day0, 10, 11, 9.9, 12),     // same returns as AAA
		series("CCC", day0, 100, 90, 99, 80),     // opposite direction
		series("DSJ", later, 10, 11, 12, 13),     // disjoint dates
		series("FLT", day0, 10, 20, 40, 80),       // constant returns
	}
	m := NewEngine(nil).Compute(context.Background(), input, domain.SectorTable{}).Correlation

	ab, ok := m.At("AAA", "BBB")
	require.True(t, ok)
	require.True(t, ab.Valid)
	assert.InDelta(t, 1.0, ab.Float64, 1e-9)

	ac, _ := m.At("AAA", "CCC")
	require.True(t, ac.Valid)
	assert.Less(t, ac.Float64, 0.0)

	ad, _ := m.At("AAA", "DSJ")
	assert.False(t, ad.Valid)

	af, _ := m.At("AAA", "FLT")
	assert.False(t, af.Valid)
	ff, _ := m.At("FLT", "FLT")
	assert.False(t, ff.Valid)

	aa, _ := m.At("AAA", "AAA")
	require.True(t, aa.Valid)
	assert.InDelta(t, 1.0, aa.Float64, 1e-9)

	// symmetric
	for i := range m.Symbols {
		for j := range m.Symbols {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
		}
	}
}

func TestCorrelation_SinglePointOverlap(t *testing.T) {
	input := []domain.SymbolSeries{
		series("AAA", day0, 100, 110, 99),
		series("BBB", day0.AddDate(0, 0, 1), 10, 11, 12), // overlaps AAA on one return
	}
	m := NewEngine(nil).Compute(context.Background(), input, domain.SectorTable{}).Correlation
	c, ok := m.At("AAA", "BBB")
	require.True(t, ok)
	assert.False(t, c.Valid)
}

func TestRankings(t *testing.T) {
	input := []domain.SymbolSeries{
		series("AAA", day0, 100, 110),    // +10%
		series("BBB", day0, 100, 110),    // +10%, tie with AAA
		series("CCC", day0, 100, 90),     // -10%
		series("DDD", day0, 100, 150),    // +50%
		series("ZER", day0, 0, 10),       // undefined yearly
		series("EEE", day0, 100, 100, 1), // -99%
	}
	res := NewEngine(nil).Compute(context.Background(), input, domain.SectorTable{})

	top := res.TopByYearlyReturn(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"DDD", "AAA", "BBB"}, []string{top[0].Symbol, top[1].Symbol, top[2].Symbol})
	assert.Equal(t, []int{1, 2, 3}, []int{top[0].Rank, top[1].Rank, top[2].Rank})
	assert.Equal(t, domain.UnknownSector, top[0].Sector)

	bottom := res.BottomByYearlyReturn(10)
	require.Len(t, bottom, 5)
	assert.Equal(t, "EEE", bottom[0].Symbol)
	assert.Equal(t, "CCC", bottom[1].Symbol)
	assert.Equal(t, "AAA", bottom[2].Symbol)

	vol := res.TopByVolatility(10)
	require.Len(t, vol, 1)
	assert.Equal(t, "EEE", vol[0].Symbol)

	assert.Empty(t, res.TopByYearlyReturn(0))

	cum := res.CumulativeReturns(2)
	require.Len(t, cum, 2)
	assert.Equal(t, "DDD", cum[0].Symbol)
	require.Len(t, cum[0].Points, 2)
	assert.InDelta(t, 0.5, cum[0].Points[1].Value.Float64, 1e-12)
}

func TestOverview_ZeroIsRed(t *testing.T) {
	res := NewEngine(nil).Compute(context.Background(), []domain.SymbolSeries{
		series("FLAT", day0, 10, 10),
		series("UP", day0, 10, 11),
		series("ZER", day0, 0, 1),
	}, domain.SectorTable{})

	assert.Equal(t, domain.MarketOverview{TotalSymbols: 3, AnalyzedSymbols: 3, GreenSymbols: 1, RedSymbols: 1}, res.Overview())
}

func TestCumulativeFor(t *testing.T) {
	res := NewEngine(nil).Compute(context.Background(), []domain.SymbolSeries{
		series("ABC", day0, 100, 110, 99),
		series("ONE", day0, 5),
	}, domain.SectorTable{})

	points, ok := res.CumulativeFor("ABC")
	require.True(t, ok)
	assertNull(t, []interface{}{0.0, 0.10, -0.01}, values(points))

	_, ok = res.CumulativeFor("ONE")
	assert.False(t, ok)
}
