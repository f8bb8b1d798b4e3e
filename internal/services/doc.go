// Package services implements the pipeline and the business logic behind the
// command line tools and the dashboard API.
//
// Pipeline wires source discovery, normalization, series building and
// sector resolution over the configured paths, and provides the convert and
// combine operations. AnalysisService runs the pipeline on demand or on a
// schedule, memoizes the analytics and publishes immutable snapshots that
// HTTP handlers read concurrently. HealthService reports liveness and
// readiness.
//
//	pipeline := services.NewPipeline(cfg, metrics, logger)
//	svc := services.NewAnalysisService(cfg, pipeline, memo, metrics, logger)
//	snap, err := svc.Refresh(ctx)
package services
