// Package config loads the sitecache process configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendBigCache  = "bigcache"
	BackendRistretto = "ristretto"

	CodecJSON    = "json"
	CodecCBOR    = "cbor"
	CodecMsgpack = "msgpack"

	LogJSON   = "json"
	LogText   = "text"
	LogZap    = "zap"
	LogLogrus = "logrus"
)

type Config struct {
	Addr string `env:"SITECACHE_ADDR" envDefault:":8080"`

	Backend     string `env:"SITECACHE_BACKEND" envDefault:"sqlite"`
	SQLitePath  string `env:"SITECACHE_SQLITE_PATH" envDefault:"sitecache.db"`
	RedisAddr   string `env:"SITECACHE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string `env:"SITECACHE_REDIS_PREFIX" envDefault:"sitecache:"`

	StorageKey   string `env:"SITECACHE_STORAGE_KEY" envDefault:"priority-cache"`
	Version      string `env:"SITECACHE_VERSION" envDefault:"1.0.0"`
	BlobCodec    string `env:"SITECACHE_BLOB_CODEC" envDefault:"json"`
	MaxBlobBytes int    `env:"SITECACHE_MAX_BLOB_BYTES" envDefault:"4194304"`

	RemoteURL     string        `env:"SITECACHE_REMOTE_URL"`
	RemoteTimeout time.Duration `env:"SITECACHE_REMOTE_TIMEOUT" envDefault:"10s"`
	PollInterval  time.Duration `env:"SITECACHE_POLL_INTERVAL" envDefault:"30s"`

	LogFormat string `env:"SITECACHE_LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"SITECACHE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the process configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendSQLite, BackendRedis, BackendBigCache, BackendRistretto:
	default:
		errs = append(errs, fmt.Errorf("SITECACHE_BACKEND: unknown backend %q", c.Backend))
	}
	switch c.BlobCodec {
	case CodecJSON, CodecCBOR, CodecMsgpack:
	default:
		errs = append(errs, fmt.Errorf("SITECACHE_BLOB_CODEC: unknown codec %q", c.BlobCodec))
	}
	switch c.LogFormat {
	case LogJSON, LogText, LogZap, LogLogrus:
	default:
		errs = append(errs, fmt.Errorf("SITECACHE_LOG_FORMAT: unknown format %q", c.LogFormat))
	}
	if c.RemoteURL == "" {
		errs = append(errs, errors.New("SITECACHE_REMOTE_URL is required"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("SITECACHE_POLL_INTERVAL must be positive"))
	}
	if c.MaxBlobBytes < 0 {
		errs = append(errs, errors.New("SITECACHE_MAX_BLOB_BYTES must not be negative"))
	}
	return errors.Join(errs...)
}
