package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends for the durable enrichment tier.
const (
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

// Config is the full process configuration.
type Config struct {
	Server     Server
	Registry   RegistryConfig
	Provider   ProviderConfig
	Cache      CacheConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Comparable ComparableConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string
}

// RegistryConfig points at the government open-data service.
type RegistryConfig struct {
	BaseURL           string
	AppToken          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	TaxRateFloorYear  int
	// State is appended to registry addresses, which omit it.
	State    string
	Datasets Datasets
}

// Datasets holds the open-data dataset ids the registry client queries.
type Datasets struct {
	Location   string
	SingleUnit string
	MultiUnit  string
	Assessed   string
	Sales      string
	TaxRates   string
}

// ProviderConfig configures the quota-limited secondary provider. An empty
// APIKey disables every network call to it.
type ProviderConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MonthlyCeiling    int
	SearchRadiusMiles float64
	SearchMax         int
	FailureThreshold  int
	Cooldown          time.Duration
}

// Enabled reports whether a credential is configured.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

// CacheConfig selects the durable enrichment store.
type CacheConfig struct {
	Backend string
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the database/sql pool.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// ComparableConfig tunes the matching engine.
type ComparableConfig struct {
	BatchSize      int
	DefaultLimit   int
	MaxLimit       int
	RecencyMonths  int
	LivingAreaPct  float64
	YearBuiltYears int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:     envString("COMPS_ADDR", ":8080"),
			LogLevel: envString("LOG_LEVEL", "info"),
		},
		Registry: RegistryConfig{
			BaseURL:           strings.TrimRight(envString("REGISTRY_BASE_URL", "https://datacatalog.cookcountyil.gov"), "/"),
			AppToken:          os.Getenv("REGISTRY_APP_TOKEN"),
			Timeout:           envDuration("REGISTRY_TIMEOUT", 15*time.Second),
			RequestsPerSecond: envFloat("REGISTRY_RPS", 5),
			Burst:             envInt("REGISTRY_BURST", 5),
			TaxRateFloorYear:  envInt("REGISTRY_TAX_RATE_FLOOR_YEAR", 2006),
			State:             strings.ToUpper(envString("REGISTRY_STATE", "IL")),
			Datasets: Datasets{
				Location:   envString("REGISTRY_DATASET_LOCATION", "pabr-t5kh"),
				SingleUnit: envString("REGISTRY_DATASET_SINGLE_UNIT", "x54s-btds"),
				MultiUnit:  envString("REGISTRY_DATASET_MULTI_UNIT", "3r7i-mrz4"),
				Assessed:   envString("REGISTRY_DATASET_ASSESSED", "uzyt-m557"),
				Sales:      envString("REGISTRY_DATASET_SALES", "wvhk-k5uv"),
				TaxRates:   envString("REGISTRY_DATASET_TAX_RATES", "tx2p-k2g9"),
			},
		},
		Provider: ProviderConfig{
			BaseURL:           strings.TrimRight(envString("PROVIDER_BASE_URL", "https://api.gateway.attomdata.com/propertyapi/v1.0.0"), "/"),
			APIKey:            os.Getenv("PROVIDER_API_KEY"),
			Timeout:           envDuration("PROVIDER_TIMEOUT", 10*time.Second),
			MonthlyCeiling:    envInt("PROVIDER_MONTHLY_CEILING", 100),
			SearchRadiusMiles: envFloat("PROVIDER_SEARCH_RADIUS_MILES", 1.0),
			SearchMax:         envInt("PROVIDER_SEARCH_MAX", 25),
			FailureThreshold:  envInt("PROVIDER_FAILURE_THRESHOLD", 3),
			Cooldown:          envDuration("PROVIDER_COOLDOWN", time.Minute),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(envString("CACHE_BACKEND", CacheBackendMemory)),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Comparable: ComparableConfig{
			BatchSize:      envInt("ENRICH_BATCH_SIZE", 5),
			DefaultLimit:   envInt("COMPS_DEFAULT_LIMIT", 10),
			MaxLimit:       envInt("COMPS_MAX_LIMIT", 50),
			RecencyMonths:  envInt("COMPS_RECENCY_MONTHS", 24),
			LivingAreaPct:  envFloat("COMPS_LIVING_AREA_PCT", 25),
			YearBuiltYears: envInt("COMPS_YEAR_BUILT_YEARS", 10),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}
