package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. NIFTY_SERVER_PORT
const EnvPrefix = "NIFTY"

// ConfigFileEnv names the variable that points at an explicit config file
const ConfigFileEnv = "NIFTY_CONFIG"

// Entry policies for malformed records inside a source
const (
	EntryPolicySkipEntry   = "skip_entry"
	EntryPolicyAbortSource = "abort_source"
)

// Duplicate timestamp policies for the series builder
const (
	DuplicatesKeep = "keep"
	DuplicatesLast = "last"
)

// Dashboard input sources
const (
	SourceRecords = "records"
	SourceSeries  = "series"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system locations. Relative entries resolve against BaseDir.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RecordsDir   string `yaml:"records_dir" envconfig:"RECORDS_DIR" validate:"required"`
	SeriesDir    string `yaml:"series_dir" envconfig:"SERIES_DIR" validate:"required"`
	SectorFile   string `yaml:"sector_file" envconfig:"SECTOR_FILE" validate:"required"`
	CombinedFile string `yaml:"combined_file" envconfig:"COMBINED_FILE" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	Source       string `yaml:"source" envconfig:"SOURCE" validate:"oneof=records series"`
}

// AnalysisConfig controls ingestion policies and dashboard computation
type AnalysisConfig struct {
	EntryPolicy string        `yaml:"entry_policy" envconfig:"ENTRY_POLICY" validate:"oneof=skip_entry abort_source"`
	Duplicates  string        `yaml:"duplicates" envconfig:"DUPLICATES" validate:"oneof=keep last"`
	TopN        int           `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=100"`
	CumulativeN int           `yaml:"cumulative_n" envconfig:"CUMULATIVE_N" validate:"min=1,max=100"`
	CacheTTL    time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" validate:"gte=0"`
	RefreshCron string        `yaml:"refresh_cron" envconfig:"REFRESH_CRON"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; no default tags, so unset ones leave the field alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Paths.resolve(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the keys present in the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// JSON is the only log format emitted
	c.Logging.Format = "json"

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, "app.log")
	} else if !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(c.Paths.BaseDir, c.Logging.FilePath)
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			RecordsDir:   "records",
			SeriesDir:    "series",
			SectorFile:   "sectors.csv",
			CombinedFile: "combined.csv",
			ReportsDir:   "reports",
			LogsDir:      "logs",
			Source:       SourceRecords,
		},
		Analysis: AnalysisConfig{
			EntryPolicy: EntryPolicySkipEntry,
			Duplicates:  DuplicatesKeep,
			TopN:        10,
			CumulativeN: 5,
			CacheTTL:    30 * time.Minute,
		},
	}
}
