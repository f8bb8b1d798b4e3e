package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("NIFTY_PATHS_BASE_DIR", base)

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, EntryPolicySkipEntry, cfg.Analysis.EntryPolicy)
	assert.Equal(t, DuplicatesKeep, cfg.Analysis.Duplicates)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 5, cfg.Analysis.CumulativeN)
	assert.Equal(t, SourceRecords, cfg.Paths.Source)
	assert.Equal(t, filepath.Join(base, "records"), cfg.Paths.RecordsDir)
	assert.Equal(t, filepath.Join(base, "sectors.csv"), cfg.Paths.SectorFile)
	assert.Equal(t, filepath.Join(base, "logs/app.log"), cfg.Logging.FilePath)
}

func TestLoadFrom_Precedence(t *testing.T) {
	base := t.TempDir()
	path := writeConfigFile(t, `
server:
  port: 9000
  read_timeout: 5s
analysis:
  entry_policy: abort_source
  top_n: 20
paths:
  records_dir: /data/yaml
`)
	t.Setenv("NIFTY_PATHS_BASE_DIR", base)
	t.Setenv("NIFTY_ANALYSIS_TOP_N", "15")
	t.Setenv("NIFTY_ANALYSIS_DUPLICATES", "last")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	// file over defaults
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, EntryPolicyAbortSource, cfg.Analysis.EntryPolicy)
	assert.Equal(t, "/data/yaml", cfg.Paths.RecordsDir)
	// env over file
	assert.Equal(t, 15, cfg.Analysis.TopN)
	assert.Equal(t, DuplicatesLast, cfg.Analysis.Duplicates)
	// untouched defaults survive
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, filepath.Join(base, "series"), cfg.Paths.SeriesDir)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad entry policy", body: "analysis:\n  entry_policy: ignore\n"},
		{name: "bad duplicates", body: "analysis:\n  duplicates: first\n"},
		{name: "bad port", body: "server:\n  port: 70000\n"},
		{name: "bad source", body: "paths:\n  source: database\n"},
		{name: "bad yaml", body: "server: [\n"},
		{name: "bad env value", env: map[string]string{"NIFTY_SERVER_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NIFTY_PATHS_BASE_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.body != "" {
				path = writeConfigFile(t, tt.body)
			}

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPathsConfig_Resolve(t *testing.T) {
	base := t.TempDir()
	p := PathsConfig{
		BaseDir:      base,
		RecordsDir:   "in",
		SeriesDir:    "/abs/series",
		CombinedFile: "out/combined/all.csv",
		ReportsDir:   "out/reports",
	}
	require.NoError(t, p.resolve())

	assert.Equal(t, filepath.Join(base, "in"), p.RecordsDir)
	assert.Equal(t, "/abs/series", p.SeriesDir)
	assert.Equal(t, filepath.Join(base, "out/combined/all.csv"), p.CombinedFile)
	assert.Empty(t, p.SectorFile)
	assert.NoDirExists(t, filepath.Join(base, "in"))
	assert.Equal(t, filepath.Join(base, "out/reports", "x.xlsx"), p.ReportFile("x.xlsx"))
}
