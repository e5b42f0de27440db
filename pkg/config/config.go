// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting the API process needs.
type Config struct {
	HTTPAddr string
	TLSCert  string
	TLSKey   string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	RedisAddr       string
	SessionTTL      time.Duration
	ProductCacheTTL time.Duration

	OTELHost         string
	OTELExporter     string
	TraceProbability float64

	LogLevel string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// TLS reports whether both certificate and key are configured.
func (c Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPAddr:      get("HTTP_ADDR", ":8443"),
		TLSCert:       get("TLS_CERT", ""),
		TLSKey:        get("TLS_KEY", ""),
		StoreDriver:   get("STORE_DRIVER", DriverMongo),
		MongoURI:      get("MONGO_URI", "mongodb://localhost:27017/?directConnection=true"),
		MongoDatabase: get("MONGO_DATABASE", "shop_db"),
		DatabaseURL:   get("DATABASE_URL", ""),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		OTELHost:      get("OTEL_HOST", ""),
		OTELExporter:  get("OTEL_EXPORTER", ""),
		LogLevel:      get("LOG_LEVEL", "info"),
		AdminName:     get("ADMIN_NAME", "Admin"),
		AdminEmail:    get("ADMIN_EMAIL", ""),
		AdminPassword: get("ADMIN_PASSWORD", ""),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "1h")); err != nil {
		return Config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL: must be positive")
	}
	if cfg.ProductCacheTTL, err = time.ParseDuration(get("PRODUCT_CACHE_TTL", "30s")); err != nil {
		return Config{}, fmt.Errorf("PRODUCT_CACHE_TTL: %w", err)
	}
	if cfg.TraceProbability, err = strconv.ParseFloat(get("TRACE_PROBABILITY", "1.0"), 64); err != nil {
		return Config{}, fmt.Errorf("TRACE_PROBABILITY: %w", err)
	}
	if cfg.TraceProbability < 0 || cfg.TraceProbability > 1 {
		return Config{}, fmt.Errorf("TRACE_PROBABILITY: %v out of range [0,1]", cfg.TraceProbability)
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL: required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}
