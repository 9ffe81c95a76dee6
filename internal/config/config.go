package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the record store factory.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Realtime RealtimeConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	AllowedOrigin         string
}

// RealtimeConfig controls the websocket room server.
type RealtimeConfig struct {
	Host          string
	Port          string
	AllowedOrigin string
	SendBuffer    int
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	RankingCache bool
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// CatalogConfig points at the YAML problem catalog used for seeding.
type CatalogConfig struct {
	Path        string
	SeedOnStart bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	frontend := getEnv("FRONTEND_URL", "http://localhost:3000")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "code-arena"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			AllowedOrigin:         frontend,
		},
		Realtime: RealtimeConfig{
			Host:          getEnv("REALTIME_HOST", "0.0.0.0"),
			Port:          getEnv("REALTIME_PORT", "5001"),
			AllowedOrigin: getEnv("REALTIME_ALLOWED_ORIGIN", frontend),
			SendBuffer:    getEnvAsInt("REALTIME_SEND_BUFFER", 64),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", "")),
			SQLitePath: getEnv("SQLITE_PATH", "code-arena.db"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           redisDB,
			RankingCache: getEnvAsBool("REDIS_RANKING_CACHE", true),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: strings.ToLower(getEnv("LOG_ENCODING", "json")),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Catalog: CatalogConfig{
			Path:        getEnv("CATALOG_PATH", ""),
			SeedOnStart: getEnvAsBool("CATALOG_SEED_ON_START", false),
		},
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverMemory
		if cfg.Postgres.DSN != "" {
			cfg.Store.Driver = StoreDriverPostgres
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return fmt.Errorf("STORE_DRIVER=sqlite requires SQLITE_PATH")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Realtime.SendBuffer <= 0 {
		c.Realtime.SendBuffer = 64
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Addr returns the websocket bind address.
func (r RealtimeConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
