// gearbook - shared equipment registration service
//
// This is the main entry point for the gearbook service. gearbook keeps
// a catalogue of shared devices, their reference photos, and which user
// currently holds each device. State lives in a single registry
// document persisted through a pluggable store (JSON file or SQLite),
// with photos in a local directory or S3-compatible bucket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearbook/internal/api"
	"gearbook/internal/blob"
	"gearbook/internal/docstore"
	"gearbook/internal/infrastructure/config"
	"gearbook/internal/infrastructure/database"
	"gearbook/internal/infrastructure/influxdb"
	"gearbook/internal/infrastructure/logging"
	"gearbook/internal/infrastructure/mqtt"
	"gearbook/internal/registry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting gearbook",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the document store
	store, closeStore, err := openDocumentStore(cfg, log)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer closeStore()

	// Open the photo store
	photos, err := openPhotoStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening photo store: %w", err)
	}

	// Initialise the registry and load the document
	reg := registry.New(store)
	reg.SetLogger(log)
	if loadErr := reg.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading registry: %w", loadErr)
	}
	log.Info("registry loaded",
		"devices", reg.DeviceCount(),
		"users", reg.UserCount(),
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		reg.SetEvents(&mqttEvents{client: mqttClient, log: log})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		reg.SetUsageRecorder(&usageRecorder{client: influxClient})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Registry: reg,
		Photos:   photos,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server listening",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, server, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Document store

	log.Info("gearbook stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GEARBOOK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GEARBOOK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all started components are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, server *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// openDocumentStore builds the configured registry document store.
// The returned cleanup function closes the underlying database for the
// sqlite driver and is a no-op for the file driver.
func openDocumentStore(cfg *config.Config, log *logging.Logger) (registry.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		db, err := database.Open(cfg.Storage.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		store, err := docstore.NewSQLiteStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("document store ready", "driver", "sqlite", "path", db.Path())
		closeDB := func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}
		return store, closeDB, nil

	case "file", "":
		store, err := docstore.NewFileStore(cfg.Storage.File.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("document store ready", "driver", "file", "path", store.Path())
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// openPhotoStore builds the configured photo blob store.
func openPhotoStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (blob.Store, error) {
	switch cfg.Photos.Driver {
	case "s3":
		store, err := blob.NewS3Store(ctx, cfg.Photos.S3)
		if err != nil {
			return nil, err
		}
		log.Info("photo store ready", "driver", "s3", "bucket", cfg.Photos.S3.Bucket)
		return store, nil

	case "local", "":
		store, err := blob.NewLocalStore(cfg.Photos.Local.Path)
		if err != nil {
			return nil, err
		}
		log.Info("photo store ready", "driver", "local", "path", store.Root())
		return store, nil

	default:
		return nil, fmt.Errorf("unknown photo driver %q", cfg.Photos.Driver)
	}
}

// usageRecorder feeds assignment changes into InfluxDB as usage points.
type usageRecorder struct {
	client *influxdb.Client
}

func (r *usageRecorder) RecordUsage(identifier, login string, inUse bool) {
	r.client.WriteUsagePoint(identifier, login, inUse)
}

// mqttEvents announces registry changes on the MQTT event topics.
// Publish failures are logged and swallowed: the registry mutation has
// already been persisted, so a missed announcement must not fail it.
type mqttEvents struct {
	client *mqtt.Client
	log    *logging.Logger
}

func (e *mqttEvents) DeviceCreated(identifier string) {
	e.publish("device_created", map[string]string{"identifier": identifier})
}

func (e *mqttEvents) DeviceUpdated(identifier string) {
	e.publish("device_updated", map[string]string{"identifier": identifier})
}

func (e *mqttEvents) DeviceDeleted(identifier string) {
	e.publish("device_deleted", map[string]string{"identifier": identifier})
}

func (e *mqttEvents) DeviceAssigned(identifier, login string) {
	e.publish("device_assigned", map[string]string{"identifier": identifier, "login": login})
}

func (e *mqttEvents) DeviceUnassigned(identifier, login string) {
	e.publish("device_unassigned", map[string]string{"identifier": identifier, "login": login})
}

func (e *mqttEvents) UserCreated(login string) {
	e.publish("user_created", map[string]string{"login": login})
}

func (e *mqttEvents) publish(eventType string, fields map[string]string) {
	payload := map[string]string{
		"event":     eventType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		payload[k] = v
	}

	data, err := json.Marshal(payload)
	if err != nil {
		e.log.Error("encoding event payload", "event", eventType, "error", err)
		return
	}
	if pubErr := e.client.PublishEvent(eventType, data); pubErr != nil {
		e.log.Warn("event publish failed", "event", eventType, "error", pubErr)
	}
}
