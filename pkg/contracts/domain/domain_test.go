package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloat64_JSON(t *testing.T) {
	tests := []struct {
		name  string
		value NullFloat64
		want  string
	}{
		{name: "defined value", value: Float(0.1), want: "0.1"},
		{name: "undefined value", value: Undefined(), want: "null"},
		{name: "NaN is undefined", value: Float(math.NaN()), want: "null"},
		{name: "infinity is undefined", value: Float(math.Inf(1)), want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var decoded NullFloat64
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestSectorTable_Lookup(t *testing.T) {
	table := NewSectorTable(map[string]string{"ABC": "IT", "DEF": "Banking"})

	assert.Equal(t, "IT", table.Lookup("ABC"))
	assert.Equal(t, "Banking", table.Lookup("DEF"))
	assert.Equal(t, UnknownSector, table.Lookup("XYZ"))
	assert.Equal(t, []string{"ABC", "DEF"}, table.Symbols())
	assert.Equal(t, 2, table.Len())

	var empty SectorTable
	assert.Equal(t, UnknownSector, empty.Lookup("ABC"))
	assert.Zero(t, empty.Len())
}

func TestSymbolSeries_IsOrdered(t *testing.T) {
	base := time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)
	ordered := SymbolSeries{Symbol: "ABC", Records: []PriceRecord{
		{Symbol: "ABC", Timestamp: base, Close: 100},
		{Symbol: "ABC", Timestamp: base, Close: 101},
		{Symbol: "ABC", Timestamp: base.Add(time.Minute), Close: 102},
	}}
	assert.True(t, ordered.IsOrdered())
	assert.Equal(t, []float64{100, 101, 102}, ordered.Closes())
	assert.Equal(t, 100.0, ordered.First().Close)
	assert.Equal(t, 102.0, ordered.Last().Close)

	unordered := SymbolSeries{Symbol: "ABC", Records: []PriceRecord{
		{Symbol: "ABC", Timestamp: base.Add(time.Hour)},
		{Symbol: "ABC", Timestamp: base},
	}}
	assert.False(t, unordered.IsOrdered())
}

func TestCorrelationMatrix_At(t *testing.T) {
	m := CorrelationMatrix{
		Symbols: []string{"ABC", "XYZ"},
		Values: [][]NullFloat64{
			{Float(1), Undefined()},
			{Undefined(), Float(1)},
		},
	}

	v, ok := m.At("ABC", "ABC")
	require.True(t, ok)
	assert.Equal(t, Float(1), v)

	v, ok = m.At("ABC", "XYZ")
	require.True(t, ok)
	assert.False(t, v.Valid)

	_, ok = m.At("ABC", "MISSING")
	assert.False(t, ok)
}
