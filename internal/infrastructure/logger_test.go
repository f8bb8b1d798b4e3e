package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftycli/internal/config"
)

func readLastLogLine(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.FileExists(t, logFile)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	entry := readLastLogLine(t, logFile)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestTraceIDInjection(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() context.Context
		want string
	}{
		{
			name: "trace id",
			ctx:  func() context.Context { return WithTraceID(context.Background(), "test-trace-123") },
			want: "test-trace-123",
		},
		{
			name: "trace id wins over run id",
			ctx: func() context.Context {
				ctx, _ := WithRunID(context.Background())
				return WithTraceID(ctx, "req-1")
			},
			want: "req-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewTestLogger(&buf)
			logger.InfoContext(tt.ctx(), "with trace")

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.want, entry["trace_id"])
		})
	}
}

func TestRunIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	ctx, runID := WithRunID(context.Background())
	require.NotEmpty(t, runID)
	assert.Equal(t, runID, GetRunID(ctx))
	assert.Equal(t, runID, GetTraceID(ctx))

	logger.WarnContext(ctx, "skipped source", "source", "bad.yaml")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, runID, entry["trace_id"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "bad.yaml", entry["source"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		logDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warning", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "test.log")
			logger, err := NewCLILogger(config.LoggingConfig{Level: tt.level, Output: "file", FilePath: logFile})
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Error("error line")
			require.NoError(t, CloseLogFile())

			content, err := os.ReadFile(logFile)
			require.NoError(t, err)
			assert.Equal(t, tt.logDebug, strings.Contains(string(content), "debug line"))
			assert.Contains(t, string(content), "error line")
		})
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := ContextWithTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEmpty(t, GetTraceID(EnsureTraceID(context.Background())))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	WithComponent(logger, "normalizer").Info("component test")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "normalizer", entry["component"])

	buf.Reset()
	WithError(logger, os.ErrNotExist).Info("error test")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry["error"], "file does not exist")

	assert.Same(t, logger, WithError(logger, nil))
}
