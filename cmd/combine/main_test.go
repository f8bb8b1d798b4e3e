package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftycli/internal/exporter"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func setup(t *testing.T) (root, configPath string) {
	t.Helper()
	root = t.TempDir()
	writeFile(t, filepath.Join(root, "series", "ABC.csv"),
		"Date,open,high,low,close,volume,Ticker\n01/15/2024 9:15,1,2,0.5,100,10,ABC\n")
	writeFile(t, filepath.Join(root, "series", "XYZ.csv"),
		"Date,open,high,low,close,volume,Ticker\n01/15/2024 9:15,1,2,0.5,10,5,XYZ\n")
	writeFile(t, filepath.Join(root, "sectors.csv"), "Symbol,sector\nNSE:ABC,IT\n")
	configPath = filepath.Join(root, "config.yaml")
	writeFile(t, configPath, "paths:\n  base_dir: "+root+"\n")
	return root, configPath
}

func TestRun_CombineCSV(t *testing.T) {
	root, configPath := setup(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Combined 2 files (2 rows)")

	data, err := os.ReadFile(filepath.Join(root, "combined.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Date,open,high,low,close,volume,Ticker,Sector\n"+
		"01/15/2024 9:15,1,2,0.5,100,10,ABC,IT\n"+
		"01/15/2024 9:15,1,2,0.5,10,5,XYZ,Unknown\n", string(data))
}

func TestRun_CombineParquet(t *testing.T) {
	root, configPath := setup(t)
	out := filepath.Join(root, "combined.parquet")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, "-format", "parquet", "-out", out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	rows, err := exporter.ReadCombinedParquet(out)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ABC", rows[0].Ticker)
	assert.Equal(t, "IT", rows[0].Sector)
	assert.Equal(t, "Unknown", rows[1].Sector)
}

func TestRun_UnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-format", "xml"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "unknown format")
}
