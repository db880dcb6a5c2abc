package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for gearbook.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Storage  StorageConfig  `yaml:"storage"`
	Photos   PhotosConfig   `yaml:"photos"`
	API      APIConfig      `yaml:"api"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig identifies this gearbook instance.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StorageConfig selects and configures the document store backend.
type StorageConfig struct {
	// Driver selects the document store backend: "file" or "sqlite".
	Driver string        `yaml:"driver"`
	File   FileStoreConfig   `yaml:"file"`
	SQLite SQLiteStoreConfig `yaml:"sqlite"`
}

// FileStoreConfig contains settings for the JSON file document store.
type FileStoreConfig struct {
	// Path is the filesystem path to the registry document.
	Path string `yaml:"path"`
}

// SQLiteStoreConfig contains settings for the SQLite document store.
type SQLiteStoreConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// PhotosConfig selects and configures the photo blob store.
type PhotosConfig struct {
	// Driver selects the blob store backend: "local" or "s3".
	Driver string          `yaml:"driver"`
	Local  LocalBlobConfig `yaml:"local"`
	S3     S3BlobConfig    `yaml:"s3"`
}

// LocalBlobConfig contains settings for the local filesystem blob store.
type LocalBlobConfig struct {
	// Path is the directory uploaded photos are stored under.
	Path string `yaml:"path"`
}

// S3BlobConfig contains settings for the S3-compatible blob store.
type S3BlobConfig struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	// MaxUploadSize is the maximum accepted photo upload size in bytes.
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// MQTTConfig contains MQTT broker connection settings for event announcements.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for usage history.
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
// Environment variables follow the pattern: GEARBOOK_SECTION_KEY
// For example: GEARBOOK_STORAGE_DRIVER, GEARBOOK_API_PORT
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

// Default returns the built-in configuration without reading any file.
// Used by tests and for running with a zero-config layout.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "gearbook-001",
			Name: "gearbook",
		},
		Storage: StorageConfig{
			Driver: "file",
			File: FileStoreConfig{
				Path: "./data/registry.json",
			},
			SQLite: SQLiteStoreConfig{
				Path:        "./data/gearbook.db",
				WALMode:     true,
				BusyTimeout: 5,
			},
		},
		Photos: PhotosConfig{
			Driver: "local",
			Local: LocalBlobConfig{
				Path: "./data/photos",
			},
			S3: S3BlobConfig{
				Region: "us-east-1",
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			MaxUploadSize: 16 << 20,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "gearbook",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GEARBOOK_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEARBOOK_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("GEARBOOK_STORAGE_FILE_PATH"); v != "" {
		cfg.Storage.File.Path = v
	}
	if v := os.Getenv("GEARBOOK_STORAGE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}

	if v := os.Getenv("GEARBOOK_PHOTOS_DRIVER"); v != "" {
		cfg.Photos.Driver = v
	}
	if v := os.Getenv("GEARBOOK_PHOTOS_LOCAL_PATH"); v != "" {
		cfg.Photos.Local.Path = v
	}
	if v := os.Getenv("GEARBOOK_PHOTOS_S3_BUCKET"); v != "" {
		cfg.Photos.S3.Bucket = v
	}
	if v := os.Getenv("GEARBOOK_PHOTOS_S3_ENDPOINT"); v != "" {
		cfg.Photos.S3.Endpoint = v
	}

	if v := os.Getenv("GEARBOOK_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GEARBOOK_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("GEARBOOK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GEARBOOK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GEARBOOK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("GEARBOOK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	switch c.Storage.Driver {
	case "file":
		if c.Storage.File.Path == "" {
			errs = append(errs, "storage.file.path is required")
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, "storage.sqlite.path is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q is not recognised (use file or sqlite)", c.Storage.Driver))
	}

	switch c.Photos.Driver {
	case "local":
		if c.Photos.Local.Path == "" {
			errs = append(errs, "photos.local.path is required")
		}
	case "s3":
		if c.Photos.S3.Bucket == "" {
			errs = append(errs, "photos.s3.bucket is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("photos.driver %q is not recognised (use local or s3)", c.Photos.Driver))
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.MaxUploadSize <= 0 {
		errs = append(errs, "api.max_upload_size must be positive")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
