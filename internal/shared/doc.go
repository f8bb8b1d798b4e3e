// Package shared holds helpers used by more than one package.
//
// testutil provides a capturing slog handler so tests can assert on the
// warnings emitted for skipped sources, series files and missing inputs.
package shared
