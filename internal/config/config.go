package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	FoodCache FoodCacheConfig `yaml:"food_cache"`
	Provider  ProviderConfig  `yaml:"provider"`
	Auth      AuthConfig      `yaml:"auth"`
	Stats     StatsConfig     `yaml:"stats"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// SearchRatePerMinute caps /foods/search calls per user (or per IP for
	// anonymous callers). 0 disables the limiter.
	SearchRatePerMinute int `yaml:"search_rate_per_minute" env:"SERVER_SEARCH_RATE_PER_MINUTE" env-default:"60"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// Storage drivers for meals and goals.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Food cache backends.
const (
	CacheBackendPostgres = "postgres"
	CacheBackendSQLite   = "sqlite"
	CacheBackendMemory   = "memory"
)

// StorageConfig selects the persistence driver for user-owned data.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

// FoodCacheConfig holds nutrition cache settings.
type FoodCacheConfig struct {
	Backend     string `yaml:"backend"      env:"FOOD_CACHE_BACKEND"      env-default:"postgres"`
	SQLitePath  string `yaml:"sqlite_path"  env:"FOOD_CACHE_SQLITE_PATH"  env-default:"./data/foodcache.db"`
	SearchLimit int    `yaml:"search_limit" env:"FOOD_CACHE_SEARCH_LIMIT" env-default:"10"`
	// Hit increments are coalesced into batches of at most HitBatchSize ids
	// collected over HitBatchWait.
	HitBatchWait    time.Duration `yaml:"hit_batch_wait"    env:"FOOD_CACHE_HIT_BATCH_WAIT"    env-default:"50ms"`
	HitBatchSize    int           `yaml:"hit_batch_size"    env:"FOOD_CACHE_HIT_BATCH_SIZE"    env-default:"100"`
	HitWriteTimeout time.Duration `yaml:"hit_write_timeout" env:"FOOD_CACHE_HIT_WRITE_TIMEOUT" env-default:"5s"`
	// PayloadCompression is "zstd" or "none". Rows written either way stay
	// readable.
	PayloadCompression string `yaml:"payload_compression" env:"FOOD_CACHE_PAYLOAD_COMPRESSION" env-default:"zstd"`
}

// Payload compression modes.
const (
	PayloadCompressionZstd = "zstd"
	PayloadCompressionNone = "none"
)

// CompressPayloads reports whether raw provider payloads are stored
// compressed.
func (f FoodCacheConfig) CompressPayloads() bool {
	return f.PayloadCompression != PayloadCompressionNone
}

// ProviderConfig holds external nutrition provider settings. The provider
// tier is skipped entirely when APIKey is empty.
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key"      env:"SPOONACULAR_API_KEY"`
	BaseURL     string        `yaml:"base_url"     env:"PROVIDER_BASE_URL"     env-default:"https://api.spoonacular.com"`
	Timeout     time.Duration `yaml:"timeout"      env:"PROVIDER_TIMEOUT"      env-default:"8s"`
	SearchLimit int           `yaml:"search_limit" env:"PROVIDER_SEARCH_LIMIT" env-default:"10"`
	DetailLimit int           `yaml:"detail_limit" env:"PROVIDER_DETAIL_LIMIT" env-default:"5"`
}

// Enabled reports whether the provider tier is configured.
func (c ProviderConfig) Enabled() bool {
	return c.APIKey != ""
}

// AuthConfig holds access token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"macrotrack"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// StatsConfig holds daily rollup settings. An empty Timezone means the
// server's local time zone.
type StatsConfig struct {
	Timezone     string `yaml:"timezone"       env:"STATS_TIMEZONE"`
	MaxRangeDays int    `yaml:"max_range_days" env:"STATS_MAX_RANGE_DAYS" env-default:"92"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
