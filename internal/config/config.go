// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Table source providers.
const (
	ProviderGCS      = "gcs"
	ProviderLocal    = "local"
	ProviderPostgres = "postgres"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" json:"server"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
	Source  SourceConfig  `mapstructure:"source" json:"source"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int `mapstructure:"port" json:"port"`
	ReadHeaderTimeoutSecs  int `mapstructure:"read_header_timeout_seconds" json:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development" json:"development"`
	Level       string `mapstructure:"level" json:"level"`
}

// SourceConfig selects where the code table is loaded from.
type SourceConfig struct {
	Provider           string         `mapstructure:"provider" json:"provider"`
	Object             string         `mapstructure:"object" json:"object"`
	LoadTimeoutSeconds int            `mapstructure:"load_timeout_seconds" json:"load_timeout_seconds"`
	GCS                GCSConfig      `mapstructure:"gcs" json:"gcs"`
	Local              LocalConfig    `mapstructure:"local" json:"local"`
	Postgres           PostgresConfig `mapstructure:"postgres" json:"postgres"`
}

// GCSConfig names the bucket holding the CSV export.
type GCSConfig struct {
	Bucket   string `mapstructure:"bucket" json:"bucket"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
}

// LocalConfig points at a directory containing the CSV export.
type LocalConfig struct {
	BaseDir string `mapstructure:"base_dir" json:"base_dir"`
}

// PostgresConfig controls the Postgres table source.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn" json:"dsn"`
	Table    string `mapstructure:"table" json:"table"`
	MaxConns int32  `mapstructure:"max_conns" json:"max_conns"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// Load builds a Config from disk/environment. Environment variables use the
// HSN_ prefix (HSN_SOURCE_PROVIDER=local); PORT is honored for server.port.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HSN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "HSN_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout_seconds", 5)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("source.provider", ProviderGCS)
	v.SetDefault("source.object", "hsn_lookup.csv")
	v.SetDefault("source.load_timeout_seconds", 30)
	v.SetDefault("source.gcs.bucket", "hsn_csv")
	v.SetDefault("source.gcs.endpoint", "")
	v.SetDefault("source.local.base_dir", "")
	v.SetDefault("source.postgres.dsn", "")
	v.SetDefault("source.postgres.table", "hsn_codes")
	v.SetDefault("source.postgres.max_conns", 4)
	v.SetDefault("metrics.enabled", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Source),
	)
}

// Validate implements validation.Validatable.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.ReadHeaderTimeoutSecs, validation.Required, validation.Min(1)),
		validation.Field(&s.ShutdownTimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

// Validate implements validation.Validatable.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate implements validation.Validatable.
func (s SourceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Provider,
			validation.Required,
			validation.In(ProviderGCS, ProviderLocal, ProviderPostgres),
		),
		validation.Field(&s.LoadTimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&s.Object,
			validation.When(s.Provider == ProviderGCS || s.Provider == ProviderLocal, validation.Required),
		),
		validation.Field(&s.GCS, validation.When(s.Provider == ProviderGCS, validation.By(func(any) error {
			return validation.ValidateStruct(&s.GCS,
				validation.Field(&s.GCS.Bucket, validation.Required),
			)
		}))),
		validation.Field(&s.Local, validation.When(s.Provider == ProviderLocal, validation.By(func(any) error {
			return validation.ValidateStruct(&s.Local,
				validation.Field(&s.Local.BaseDir, validation.Required),
			)
		}))),
		validation.Field(&s.Postgres, validation.When(s.Provider == ProviderPostgres, validation.By(func(any) error {
			return validation.ValidateStruct(&s.Postgres,
				validation.Field(&s.Postgres.DSN, validation.Required),
				validation.Field(&s.Postgres.Table, validation.Match(tableNamePattern)),
			)
		}))),
	)
}

// LoadTimeout is the upper bound on the startup table load.
func (c Config) LoadTimeout() time.Duration {
	return time.Duration(c.Source.LoadTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful HTTP shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// ReadHeaderTimeout is applied to the http.Server.
func (c Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.Server.ReadHeaderTimeoutSecs) * time.Second
}
