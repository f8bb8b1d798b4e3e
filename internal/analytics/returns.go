package analytics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"niftycli/pkg/contracts/domain"
)

// MonthKeyLayout formats the calendar month buckets of MonthlyReturns
const MonthKeyLayout = "2006-01"

// simpleReturn is (to-from)/from, undefined when from is zero
func simpleReturn(from, to float64) domain.NullFloat64 {
	if from == 0 {
		return domain.Undefined()
	}
	return domain.Float((to - from) / from)
}

// DailyReturns returns the close-to-close return at every record. The first
// point and any point whose previous close is zero are undefined.
func DailyReturns(s domain.SymbolSeries) []domain.DatedValue {
	out := make([]domain.DatedValue, len(s.Records))
	for i, r := range s.Records {
		out[i].Timestamp = r.Timestamp
		if i == 0 {
			continue
		}
		out[i].Value = simpleReturn(s.Records[i-1].Close, r.Close)
	}
	return out
}

// CumulativeReturns compounds daily returns: the product of (1+r) over every
// defined return so far, minus one. The first point is 0. A point whose own
// daily return is undefined is undefined; later points skip that factor.
func CumulativeReturns(daily []domain.DatedValue) []domain.DatedValue {
	out := make([]domain.DatedValue, len(daily))
	growth := 1.0
	for i, d := range daily {
		out[i].Timestamp = d.Timestamp
		switch {
		case i == 0:
			out[i].Value = domain.Float(0)
		case d.Value.Valid:
			growth *= 1 + d.Value.Float64
			out[i].Value = domain.Float(growth - 1)
		}
	}
	return out
}

// YearlyReturn is the total return from the first to the last close of the series
func YearlyReturn(s domain.SymbolSeries) domain.NullFloat64 {
	if s.Len() < 2 {
		return domain.Undefined()
	}
	return simpleReturn(s.First().Close, s.Last().Close)
}

// Volatility is the sample standard deviation (N-1) of the defined daily
// returns; it needs at least two of them.
func Volatility(daily []domain.DatedValue) domain.NullFloat64 {
	values := definedValues(daily)
	if len(values) < 2 {
		return domain.Undefined()
	}
	return domain.Float(stat.StdDev(values, nil))
}

// MonthlyReturns computes, per calendar month, the return from the first to
// the last close of that month, keyed "YYYY-MM".
func MonthlyReturns(s domain.SymbolSeries) map[string]domain.NullFloat64 {
	type bounds struct{ first, last float64 }
	months := make(map[string]*bounds)
	for _, r := range s.Records {
		key := r.Timestamp.UTC().Format(MonthKeyLayout)
		if b, ok := months[key]; ok {
			b.last = r.Close
		} else {
			months[key] = &bounds{first: r.Close, last: r.Close}
		}
	}

	out := make(map[string]domain.NullFloat64, len(months))
	for key, b := range months {
		out[key] = simpleReturn(b.first, b.last)
	}
	return out
}

// MonthKeys returns the keys of a monthly return map in chronological order
func MonthKeys(m map[string]domain.NullFloat64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func definedValues(points []domain.DatedValue) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Value.Valid {
			values = append(values, p.Value.Float64)
		}
	}
	return values
}

// returnAxis is a symbol's defined daily returns on a sorted time axis.
// For a repeated timestamp the later return wins.
type returnAxis struct {
	times  []time.Time
	values []float64
}

func newReturnAxis(daily []domain.DatedValue) returnAxis {
	var axis returnAxis
	for _, d := range daily {
		if !d.Value.Valid {
			continue
		}
		if n := len(axis.times); n > 0 && axis.times[n-1].Equal(d.Timestamp) {
			axis.values[n-1] = d.Value.Float64
			continue
		}
		axis.times = append(axis.times, d.Timestamp)
		axis.values = append(axis.values, d.Value.Float64)
	}
	return axis
}

// overlap returns the paired values of a and b at the timestamps both define
func overlap(a, b returnAxis) (x, y []float64) {
	i, j := 0, 0
	for i < len(a.times) && j < len(b.times) {
		switch {
		case a.times[i].Before(b.times[j]):
			i++
		case b.times[j].Before(a.times[i]):
			j++
		default:
			x = append(x, a.values[i])
			y = append(y, b.values[j])
			i++
			j++
		}
	}
	return x, y
}

// pearson is the correlation of x and y; undefined with fewer than two points
// or when either side has zero variance
func pearson(x, y []float64) domain.NullFloat64 {
	if len(x) < 2 || constant(x) || constant(y) {
		return domain.Undefined()
	}
	return domain.Float(stat.Correlation(x, y, nil))
}

func constant(v []float64) bool {
	for _, f := range v[1:] {
		if f != v[0] {
			return false
		}
	}
	return true
}
