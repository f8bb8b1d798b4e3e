// Package cli holds the bootstrap shared by the command line tools.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"niftycli/internal/config"
	apperrors "niftycli/internal/errors"
	"niftycli/internal/infrastructure"
)

// Exit statuses of the tools
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Setup loads the configuration, from configFile when set, and builds a
// stderr logger tagged with the tool name
func Setup(tool, configFile string) (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.NewCLILogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger.With(slog.String("tool", tool)), nil
}

// Fail logs err, prints it to stderr and returns the exit status
func Fail(logger *slog.Logger, stderr io.Writer, err error) int {
	if logger != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
	}
	if apperrors.IsType(err, apperrors.ErrTypeNoDataAvailable) {
		fmt.Fprintf(stderr, "no data available: %v\n", err)
	} else {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitError
}

// UsageError reports invalid command line arguments
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }
