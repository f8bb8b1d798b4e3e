package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"niftycli/internal/config"
)

func entry(ticker, close string) string {
	return "- Ticker: " + ticker + "\n  open: 1\n  high: 2\n  low: 0.5\n  close: " + close + "\n  volume: 10\n"
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

// testConfig lays out a small data tree: ABC closes 100, 110, 99 and XYZ
// closes 10, 11, 12 over three days, ABC mapped to IT
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = root
	cfg.Paths.RecordsDir = filepath.Join(root, "records")
	cfg.Paths.SeriesDir = filepath.Join(root, "series")
	cfg.Paths.SectorFile = filepath.Join(root, "sectors.csv")
	cfg.Paths.CombinedFile = filepath.Join(root, "out", "combined.csv")
	cfg.Paths.ReportsDir = filepath.Join(root, "reports")
	cfg.Paths.LogsDir = filepath.Join(root, "logs")

	days := []struct{ day, abc, xyz string }{
		{"2024-01-15", "100", "10"},
		{"2024-01-16", "110", "11"},
		{"2024-01-17", "99", "12"},
	}
	for _, d := range days {
		writeFile(t, filepath.Join(cfg.Paths.RecordsDir, d.day, d.day+"_09-15-00.yaml"),
			entry("ABC", d.abc)+entry("XYZ", d.xyz))
	}
	writeFile(t, cfg.Paths.SectorFile, "Symbol,sector\nNSE:ABC,IT\n")
	return cfg
}
