package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of postgres, memory (got %q)", c.Storage.Driver)
	}

	if err := c.FoodCache.validate(); err != nil {
		return fmt.Errorf("food_cache: %w", err)
	}

	if c.NeedsPostgres() && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when postgres is used")
	}

	if err := c.Provider.validate(); err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	if err := c.Stats.validate(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

// NeedsPostgres reports whether any configured component stores data in
// PostgreSQL.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.Driver == DriverPostgres || c.FoodCache.Backend == CacheBackendPostgres
}

func (f *FoodCacheConfig) validate() error {
	switch f.Backend {
	case CacheBackendPostgres, CacheBackendMemory:
	case CacheBackendSQLite:
		if f.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("backend must be one of postgres, sqlite, memory (got %q)", f.Backend)
	}
	if f.SearchLimit <= 0 {
		return fmt.Errorf("search_limit must be > 0 (got %d)", f.SearchLimit)
	}
	if f.HitBatchSize <= 0 {
		return fmt.Errorf("hit_batch_size must be > 0 (got %d)", f.HitBatchSize)
	}
	switch f.PayloadCompression {
	case "", PayloadCompressionZstd, PayloadCompressionNone:
	default:
		return fmt.Errorf("payload_compression must be one of zstd, none (got %q)", f.PayloadCompression)
	}
	return nil
}

func (p *ProviderConfig) validate() error {
	if !p.Enabled() {
		return nil
	}
	if p.BaseURL == "" {
		return fmt.Errorf("base_url is required when api_key is set")
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", p.Timeout)
	}
	if p.DetailLimit <= 0 || p.DetailLimit > p.SearchLimit {
		return fmt.Errorf("detail_limit must be in [1, search_limit] (got %d)", p.DetailLimit)
	}
	return nil
}

func (s *StatsConfig) validate() error {
	if s.MaxRangeDays <= 0 {
		return fmt.Errorf("max_range_days must be > 0 (got %d)", s.MaxRangeDays)
	}
	loc, err := ParseTimezone(s.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	s.Location = loc
	return nil
}

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Empty values are allowed: the logger treats them as info level and text format.
func (l *LogConfig) validate() error {
	if lvl := strings.TrimSpace(l.Level); lvl != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("level must be one of debug, info, warn, error (got %q)", l.Level)
		}
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "", LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("format must be one of json, text (got %q)", l.Format)
	}
	return nil
}

// ParseTimezone resolves an IANA zone name. An empty name yields the
// server's local zone.
func ParseTimezone(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid zone %q: %w", name, err)
	}
	return loc, nil
}
