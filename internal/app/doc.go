// Package app wires the dashboard server together and manages its lifecycle.
//
// NewApplication loads configuration, initializes logging and OpenTelemetry,
// builds the ingestion pipeline and the analysis service, and mounts the
// chi router. Start computes the first snapshot, serves HTTP and, when
// analysis.refresh_cron is set, refreshes on that schedule. Missing input
// data at startup is not fatal: the API answers 503 until a refresh finds
// records.
//
// Run stops on SIGINT or SIGTERM. Shutdown waits for a running scheduled
// refresh, drains the HTTP server and flushes telemetry.
package app
