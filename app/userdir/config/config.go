// Package config assembles the service configuration from struct tag
// defaults, an optional YAML file and USERDIR_* environment variables, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrazmi/userdir/core/repositories/usersrepo/stores/usersredisstore"
	"github.com/jrazmi/userdir/infrastructure/databases/postgresdb"
	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/environment"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/jrazmi/userdir/sdk/telemetry"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment key, e.g. USERDIR_PORT.
const EnvPrefix = "USERDIR"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Service struct {
	Name        string `yaml:"name" env:"SERVICE_NAME" default:"userdir"`
	Environment string `yaml:"environment" env:"SERVICE_ENVIRONMENT" default:"development"`
}

// Config is the full service configuration.
type Config struct {
	Service   Service                 `yaml:"service"`
	Server    web.ServerConfig        `yaml:"server"`
	Database  postgresdb.Options      `yaml:"database"`
	Log       logger.Options          `yaml:"log"`
	Telemetry telemetry.Options       `yaml:"telemetry"`
	Metrics   metrics.Options         `yaml:"metrics"`
	Cache     usersredisstore.Options `yaml:"cache"`
}

// Load builds a Config. An empty path skips the file layer.
func Load(path string) (Config, error) {
	var cfg Config
	if err := environment.ApplyDefaults(&cfg); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := environment.OverrideFromEnv(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.DatabaseURL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Database.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("database.query_timeout must be positive, got %s", c.Database.QueryTimeout))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}
	if !telemetry.ValidOutput(c.Telemetry.Output) {
		errs = append(errs, fmt.Errorf("telemetry.output %q is not one of none, stdout, grpc, http", c.Telemetry.Output))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if c.Cache.Enabled && c.Cache.TombstoneTTL <= 2*c.Database.QueryTimeout {
		errs = append(errs, fmt.Errorf("cache.tombstone_ttl must exceed twice database.query_timeout, got %s", c.Cache.TombstoneTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
