// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Individual values in the file can be overridden by environment
// variables (see the env:"..." tags below).
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers accepted in storage_driver.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StorageDriver picks the record store: "memory" keeps students for the
	// lifetime of the process, "sqlite" keeps them in StoragePath.
	StorageDriver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"memory"`

	// StoragePath is the filesystem path to the SQLite .db file.
	// Only read when StorageDriver is "sqlite".
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	// DisableSeed skips loading the sample students into an empty store.
	DisableSeed bool `yaml:"disable_seed" env:"DISABLE_SEED"`

	// APIVersion is sent in the X-API-Version header of every response.
	APIVersion string `yaml:"api_version" env:"API_VERSION" env-default:"1.0"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads the YAML file at path, applies env overrides and defaults, and
// checks cross-field constraints cleanenv cannot express.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.StoragePath == "" {
			return errors.New("storage_path is required when storage_driver is sqlite")
		}
	default:
		return fmt.Errorf("unknown storage_driver %q: want %q or %q",
			c.StorageDriver, DriverMemory, DriverSQLite)
	}
	return nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure. If this
// function returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
