package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayout parses series dates. The hour and minute fields accept one or
// two digits, so both "01/15/2024 9:5" and "01/15/2024 09:05" are read.
const dateLayout = "01/02/2006 15:4"

// formatFloat writes the shortest representation that parses back to f
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDate renders t as MM/DD/YYYY H:M, hour and minute without a leading zero
func formatDate(t time.Time) string {
	t = t.UTC()
	return t.Format("01/02/2006") + fmt.Sprintf(" %d:%d", t.Hour(), t.Minute())
}

// parseDate reads a MM/DD/YYYY H:M date as UTC
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
