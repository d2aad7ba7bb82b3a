// Package config loads climadash settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "climadash.yaml"

// Config is the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
	Influx  InfluxConfig  `yaml:"influx"`
}

// DataConfig locates the climate CSV.
type DataConfig struct {
	Path  string `yaml:"path" validate:"required"`
	Watch bool   `yaml:"watch"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	// ExportPerMinute caps export requests; 0 disables the limit.
	ExportPerMinute int `yaml:"export_per_minute" validate:"gte=0"`
}

// ExportConfig sets where the CLI writes exports.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format" validate:"oneof=csv xlsx"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// TracingConfig toggles OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" validate:"required_if=Enabled true"`
}

// InfluxConfig addresses the InfluxDB bucket used by the push command.
type InfluxConfig struct {
	URL         string `yaml:"url" validate:"omitempty,url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement" validate:"required"`
	BatchSize   int    `yaml:"batch_size" validate:"gt=0"`
}

// Enabled reports whether enough is set to open a client.
func (c InfluxConfig) Enabled() bool {
	return c.URL != "" && c.Org != "" && c.Bucket != ""
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Data: DataConfig{Path: "update_temperature.csv"},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			ExportPerMinute: 30,
		},
		Export:  ExportConfig{Dir: ".", Format: "csv"},
		Log:     LogConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{ServiceName: "climadash"},
		Influx:  InfluxConfig{Measurement: "climate", BatchSize: 500},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto the file values.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Data.Path, "CLIMADASH_DATA")
	set(&c.Server.Addr, "CLIMADASH_ADDR")
	set(&c.Influx.URL, "INFLUXDB_URL")
	set(&c.Influx.Token, "INFLUXDB_TOKEN")
	set(&c.Influx.Org, "INFLUXDB_ORG")
	set(&c.Influx.Bucket, "INFLUXDB_BUCKET")
}

// Validate checks struct tags and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
