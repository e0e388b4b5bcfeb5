package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/database"
	sharelinkhttp "github.com/sagarc03/sharelink/http"
	"github.com/sagarc03/sharelink/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for sharelink.
type Config struct {
	Env      string                   `mapstructure:"env" validate:"required,oneof=dev prod"`
	Server   ServerConfig             `mapstructure:"server"`
	Service  ServiceConfig            `mapstructure:"service"`
	Database database.Config          `mapstructure:"database"`
	Storage  StorageConfig            `mapstructure:"storage"`
	Links    LinksConfig              `mapstructure:"links"`
	Cache    CacheConfig              `mapstructure:"cache"`
	Metrics  MetricsConfig            `mapstructure:"metrics"`
	CORS     sharelinkhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig                `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	CleanupTimeout int `mapstructure:"cleanup_timeout" validate:"min=1"`
}

// CleanupTimeoutDuration returns the cleanup timeout as a duration.
func (c ServiceConfig) CleanupTimeoutDuration() time.Duration {
	return time.Duration(c.CleanupTimeout) * time.Second
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path          string `mapstructure:"path" validate:"required"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=1"`
}

// LinksConfig holds the link lifetime bounds and the signing secret.
type LinksConfig struct {
	MinTTLSeconds int64                   `mapstructure:"min_ttl_seconds" validate:"min=1"`
	MaxTTLSeconds int64                   `mapstructure:"max_ttl_seconds" validate:"gtefield=MinTTLSeconds"`
	Secret        keybackend.SecretConfig `mapstructure:"secret"`
}

// Policy returns the configured ttl bounds.
func (c LinksConfig) Policy() sharelink.TTLPolicy {
	return sharelink.TTLPolicy{MinSeconds: c.MinTTLSeconds, MaxSeconds: c.MaxTTLSeconds}
}

// CacheConfig holds the file record cache configuration.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Size       int  `mapstructure:"size" validate:"min=1"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"min=1"`
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"env":             "env",
	"db-type":         "database.type",
	"db-dsn":          "database.dsn",
	"storage-path":    "storage.path",
	"max-upload-size": "storage.max_upload_size",
	"port":            "server.port",
	"public-url":      "server.public_url",
	"secret-file":     "links.secret.file",
	"log-level":       "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key gets a default, even an empty one, so that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.public_url", "")

	v.SetDefault("service.cleanup_timeout", 30) // seconds

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "sharelink.db")
	v.SetDefault("database.tables.files", "sharelink_files")
	v.SetDefault("database.tables.link_audit", "sharelink_link_audit")

	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.max_upload_size", 50<<20)

	v.SetDefault("links.min_ttl_seconds", 30)
	v.SetDefault("links.max_ttl_seconds", 86400)
	v.SetDefault("links.secret.inline", "")
	v.SetDefault("links.secret.file", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl_seconds", 300)

	v.SetDefault("metrics.enabled", false)

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
//
// The signing secret is not required here; commands that sign or verify
// links load it with keybackend.LoadSecret.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SHARELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
