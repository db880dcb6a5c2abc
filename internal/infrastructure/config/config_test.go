package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "service:\n  id: test-001\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Driver != "file" {
		t.Errorf("Storage.Driver = %q, want file", cfg.Storage.Driver)
	}
	if cfg.API.Port != 8000 {
		t.Errorf("API.Port = %d, want 8000", cfg.API.Port)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: sqlite
  sqlite:
    path: /tmp/test.db
api:
  port: 9000
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.SQLite.Path != "/tmp/test.db" {
		t.Errorf("Storage.SQLite.Path = %q", cfg.Storage.SQLite.Path)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() with missing file should fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with invalid YAML should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEARBOOK_STORAGE_DRIVER", "sqlite")
	t.Setenv("GEARBOOK_API_PORT", "8123")
	t.Setenv("GEARBOOK_MQTT_HOST", "broker.internal")

	path := writeConfig(t, "service:\n  id: env-test\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.API.Port != 8123 {
		t.Errorf("API.Port = %d, want 8123", cfg.API.Port)
	}
	if cfg.MQTT.Broker.Host != "broker.internal" {
		t.Errorf("MQTT.Broker.Host = %q", cfg.MQTT.Broker.Host)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "postgres" },
			wantErr: "storage.driver",
		},
		{
			name:    "file driver requires path",
			mutate:  func(c *Config) { c.Storage.File.Path = "" },
			wantErr: "storage.file.path",
		},
		{
			name:    "unknown photos driver",
			mutate:  func(c *Config) { c.Photos.Driver = "gcs" },
			wantErr: "photos.driver",
		},
		{
			name: "s3 driver requires bucket",
			mutate: func(c *Config) {
				c.Photos.Driver = "s3"
				c.Photos.S3.Bucket = ""
			},
			wantErr: "photos.s3.bucket",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name: "mqtt enabled validates qos",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.QoS = 7
			},
			wantErr: "mqtt.qos",
		},
		{
			name: "influxdb enabled requires url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Bucket = "usage"
			},
			wantErr: "influxdb.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
