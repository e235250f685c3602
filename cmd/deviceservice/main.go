// Device Service - shared device lab booking
//
// This is the main entry point for the device service. It tracks a pool of
// physical phones kept in a shared lab, lets people book and return them,
// and enriches device records with cellular network capabilities from a
// reference dataset and, when an API key is configured, a remote
// specifications API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/achomutovskij/deviceservice/migrations"

	"github.com/achomutovskij/deviceservice/internal/api"
	"github.com/achomutovskij/deviceservice/internal/device"
	"github.com/achomutovskij/deviceservice/internal/gsm"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/config"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/database"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/influxdb"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "var/conf/conf.yml"

// devicesTable is the table whose absence marks a first startup.
const devicesTable = "devices"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on a clean shutdown once ctx is cancelled.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting device service",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:         cfg.Database.Path,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", db.Path())

	// The table check must run before migrating, which creates the table.
	existed, err := db.TableExists(ctx, devicesTable)
	if err != nil {
		return fmt.Errorf("inspecting database: %w", err)
	}
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	loc, err := cfg.GetBookingLocation()
	if err != nil {
		return err
	}
	registry := device.NewRegistry(device.NewSQLiteRepository(db.DB, loc), device.NewClock(loc))
	registry.SetLogger(log.Component("registry"))

	if !existed {
		ids, seedErr := registry.Seed(ctx, cfg.FirstStartupRegisterDevices)
		if seedErr != nil {
			return fmt.Errorf("registering initial devices: %w", seedErr)
		}
		log.Info("first startup", "devices_registered", len(ids))
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		registry.SetRecorder(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", influxClient.Bucket(),
		)
	}

	resolver, err := buildResolver(cfg, influxClient, log)
	if err != nil {
		return err
	}

	server, err := api.New(api.Deps{
		Config:   cfg,
		Logger:   log.Component("api"),
		Registry: registry,
		Resolver: resolver,
		DB:       db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal",
		"port", cfg.Port,
		"auxiliary_port", cfg.AuxiliaryPort(),
		"tls", cfg.TLS.Enabled,
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API listeners
	// 2. InfluxDB (if enabled)
	// 3. Database

	return nil
}

// buildResolver loads the reference dataset and, with an API key, the
// remote specs client.
func buildResolver(cfg *config.Config, influxClient *influxdb.Client, log *logging.Logger) (*gsm.Resolver, error) {
	dataset, err := gsm.LoadDataset(cfg.Enrichment.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("loading reference dataset: %w", err)
	}
	log.Info("reference dataset loaded",
		"path", cfg.Enrichment.DatasetPath,
		"devices", dataset.Len(),
		"skipped_rows", dataset.Skipped(),
	)

	enrichLog := log.Component("enrichment")
	opts := []gsm.ResolverOption{
		gsm.WithLogger(enrichLog),
		gsm.WithConcurrency(cfg.Enrichment.Concurrency),
	}
	if influxClient != nil {
		opts = append(opts, gsm.WithRecorder(influxClient))
	}

	if cfg.HasAPIKey() {
		client, err := gsm.NewSpecsClient(gsm.SpecsClientConfig{
			APIKey:     cfg.APIKey,
			APIHost:    cfg.Enrichment.APIHost,
			BaseURL:    cfg.Enrichment.BaseURL,
			Timeout:    cfg.GetRequestTimeout(),
			CacheSize:  cfg.Enrichment.CacheSize,
			FailureTTL: cfg.GetFailureTTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("creating specs client: %w", err)
		}
		client.SetLogger(enrichLog)
		opts = append(opts, gsm.WithRemote(client))
		log.Info("remote specs client enabled", "host", cfg.Enrichment.APIHost)
	} else {
		log.Info("no API key configured, using reference dataset only")
	}

	return gsm.NewResolver(dataset, opts...), nil
}

// getConfigPath returns the configuration file path.
// Uses DEVICESERVICE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DEVICESERVICE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when metrics are disabled.
func healthCheck(ctx context.Context, db *database.DB, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
