package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogCapture(t *testing.T) {
	logger, logs := NewLogger(t)

	logger.With(slog.String("component", "store")).Warn("skipping file", slog.String("source", "BAD.csv"))
	logger.WithGroup("run").Info("done", slog.Int("records", 3))

	rec := AssertLogged(t, logs, slog.LevelWarn, "skipping")
	assert.Equal(t, "store", rec.Attrs["component"])
	assert.Equal(t, "BAD.csv", rec.Attrs["source"])

	info, ok := logs.Find(slog.LevelInfo, "done")
	assert.True(t, ok)
	assert.Equal(t, int64(3), info.Attrs["run.records"])

	assert.Len(t, logs.Records(), 2)
	assert.Empty(t, logs.AtLevel(slog.LevelError))
	AssertNoErrors(t, logs)
}
