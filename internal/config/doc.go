// Package config provides centralized configuration for the nifty tool set.
//
// # Configuration Sources
//
// Configuration is layered in the following order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (NIFTY_CONFIG, config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NIFTY_<SECTION>_<FIELD>:
//
//	NIFTY_SERVER_PORT=8050
//	NIFTY_PATHS_RECORDS_DIR=/data/records
//	NIFTY_ANALYSIS_ENTRY_POLICY=abort_source
//	NIFTY_ANALYSIS_REFRESH_CRON="*/15 * * * *"
//
// # Paths
//
// Relative paths are resolved against paths.base_dir (the working directory
// when unset). Nothing is created here; each writer creates its own output
// directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
