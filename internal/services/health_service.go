package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"niftycli/internal/config"
)

// SnapshotSource exposes the latest snapshot to health checks
type SnapshotSource interface {
	Snapshot() (*Snapshot, error)
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     config.PathsConfig
	analysis  SnapshotSource
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version string, paths config.PathsConfig, analysis SnapshotSource, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("source", paths.Source))

	return &HealthService{
		version:   version,
		paths:     paths,
		analysis:  analysis,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck is ready once an analysis snapshot exists and the input
// directory is present
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"analysis": hs.checkAnalysisHealth(),
			"data":     hs.checkDataHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkAnalysisHealth() ServiceHealth {
	if hs.analysis == nil {
		return ServiceHealth{Status: "not_ready", Message: "analysis service not initialized"}
	}
	snap, err := hs.analysis.Snapshot()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("snapshot %s computed at %s", snap.RunID, snap.ComputedAt.Format(time.RFC3339)),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkDataHealth checks that the configured input directory exists
func (hs *HealthService) checkDataHealth() ServiceHealth {
	dir := hs.paths.RecordsDir
	if hs.paths.Source == config.SourceSeries {
		dir = hs.paths.SeriesDir
	}
	if _, err := os.Stat(dir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data directory not found: %s", dir),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Data directory is accessible"}
}
