package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Booking timezones must resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the device service.
// All configuration is loaded from YAML and can be overridden by environment variables.
//
// The four top-level keys (host, port, firstStartupRegisterDevices, apiKey)
// are camelCase; section keys are snake_case.
type Config struct {
	Host                        string   `yaml:"host"`
	Port                        int      `yaml:"port"`
	FirstStartupRegisterDevices []string `yaml:"firstStartupRegisterDevices"`
	APIKey                      string   `yaml:"apiKey"`

	Database   DatabaseConfig   `yaml:"database"`
	TLS        TLSConfig        `yaml:"tls"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
	Booking    BookingConfig    `yaml:"booking"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path         string `yaml:"path"`
	WALMode      bool   `yaml:"wal_mode"`
	BusyTimeout  int    `yaml:"busy_timeout"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// TLSConfig contains TLS certificate settings for the primary listener.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// TimeoutConfig contains HTTP timeout settings (seconds).
type TimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// BookingConfig contains booking core settings.
type BookingConfig struct {
	// Timezone is the IANA zone every booking timestamp is captured in.
	// It should be a zone without daylight saving so the stored offset stays fixed.
	Timezone string `yaml:"timezone"`
}

// EnrichmentConfig contains settings for the capability lookup pipeline.
type EnrichmentConfig struct {
	DatasetPath    string `yaml:"dataset_path"`
	CacheSize      int    `yaml:"cache_size"`
	RequestTimeout int    `yaml:"request_timeout"`
	APIHost        string `yaml:"api_host"`
	BaseURL        string `yaml:"base_url"`

	// FailureTTL is how long (seconds) a failed remote lookup is answered
	// as absent before the API is asked again.
	FailureTTL int `yaml:"failure_ttl"`

	// Concurrency bounds the parallel lookups of one list request.
	Concurrency int `yaml:"concurrency"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DEVICESERVICE_SECTION_KEY
// For example: DEVICESERVICE_DATABASE_PATH, DEVICESERVICE_API_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: 8345,
		Database: DatabaseConfig{
			Path:         "var/db/database.db",
			WALMode:      true,
			BusyTimeout:  5,
			MaxOpenConns: 4,
		},
		TLS: TLSConfig{
			Enabled:  true,
			CertFile: "var/certs/server.crt",
			KeyFile:  "var/certs/server.key",
		},
		Timeouts: TimeoutConfig{
			Read:  30,
			Write: 30,
			Idle:  60,
		},
		Booking: BookingConfig{
			Timezone: "Asia/Dubai",
		},
		Enrichment: EnrichmentConfig{
			DatasetPath:    "var/gsmarena_data/gsmarena_dataset.csv",
			CacheSize:      1000,
			RequestTimeout: 5,
			APIHost:        "mobile-phone-specs-database.p.rapidapi.com",
			BaseURL:        "https://mobile-phone-specs-database.p.rapidapi.com",
			FailureTTL:     60,
			Concurrency:    8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEVICESERVICE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("DEVICESERVICE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}

	// API key for the remote specs database. Prefer this over the file in production.
	if v := os.Getenv("DEVICESERVICE_API_KEY"); v != "" {
		cfg.APIKey = v
	}

	if v := os.Getenv("DEVICESERVICE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DEVICESERVICE_DATASET_PATH"); v != "" {
		cfg.Enrichment.DatasetPath = v
	}

	if v := os.Getenv("DEVICESERVICE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// maxPort is the highest valid TCP port. The auxiliary listener binds port+1,
// so the primary port must leave room for it.
const maxPort = 65535

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port >= maxPort {
		errs = append(errs, "port must be between 1 and 65534 (port+1 is bound for plain HTTP)")
	}

	for i, name := range c.FirstStartupRegisterDevices {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Sprintf("firstStartupRegisterDevices[%d] must not be empty", i))
		}
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, "database.max_open_conns must be at least 1")
	}

	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		errs = append(errs, "tls.cert_file and tls.key_file are required when tls.enabled is true")
	}

	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("booking.timezone %q is not a known zone", c.Booking.Timezone))
	}

	if c.Enrichment.DatasetPath == "" {
		errs = append(errs, "enrichment.dataset_path is required")
	}
	if c.Enrichment.CacheSize < 1 {
		errs = append(errs, "enrichment.cache_size must be at least 1")
	}
	if c.Enrichment.RequestTimeout < 1 {
		errs = append(errs, "enrichment.request_timeout must be at least 1 second")
	}
	if c.Enrichment.FailureTTL < 1 {
		errs = append(errs, "enrichment.failure_ttl must be at least 1 second")
	}
	if c.Enrichment.Concurrency < 1 {
		errs = append(errs, "enrichment.concurrency must be at least 1")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// HasAPIKey reports whether the remote specs API is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// AuxiliaryPort returns the plain-HTTP port bound next to the primary port.
func (c *Config) AuxiliaryPort() int {
	return c.Port + 1
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}

// GetRequestTimeout returns the remote specs request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Enrichment.RequestTimeout) * time.Second
}

// GetFailureTTL returns how long a failed remote lookup stays cached.
func (c *Config) GetFailureTTL() time.Duration {
	return time.Duration(c.Enrichment.FailureTTL) * time.Second
}

// GetBookingLocation resolves the booking timezone.
func (c *Config) GetBookingLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading booking timezone: %w", err)
	}
	return loc, nil
}
