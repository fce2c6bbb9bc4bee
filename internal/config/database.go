package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/LeJamon/goAMMd/internal/storage"
	"github.com/LeJamon/goAMMd/internal/storage/relationaldb"
)

// LedgerConfig represents the [ledger] section: where balances and records
// are stored.
type LedgerConfig struct {
	Backend   string `toml:"backend" mapstructure:"backend"`
	Path      string `toml:"path" mapstructure:"path"`
	CacheSize int    `toml:"cache_size" mapstructure:"cache_size"`

	RedisAddr     string `toml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `toml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `toml:"redis_db" mapstructure:"redis_db"`
}

// Validate performs validation on the ledger configuration
func (l *LedgerConfig) Validate() error {
	if !slices.Contains(storage.Backends, l.Backend) {
		return fmt.Errorf("unknown backend %q (valid options: %v)", l.Backend, storage.Backends)
	}
	switch l.Backend {
	case storage.BackendMemory:
	case storage.BackendRedis:
		if l.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required when backend=redis")
		}
	default:
		if l.Path == "" {
			return fmt.Errorf("path is required when backend=%s", l.Backend)
		}
	}
	if l.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0")
	}
	return nil
}

// StorageOptions converts the section for storage.Open.
func (l *LedgerConfig) StorageOptions() storage.Options {
	return storage.Options{
		Backend:       l.Backend,
		Path:          l.Path,
		RedisAddr:     l.RedisAddr,
		RedisPassword: l.RedisPassword,
		RedisDB:       l.RedisDB,
	}
}

// JournalConfig represents the [journal] section: the SQL log of committed
// operations.
type JournalConfig struct {
	Enabled        bool          `toml:"enabled" mapstructure:"enabled"`
	Driver         string        `toml:"driver" mapstructure:"driver"`
	DSN            string        `toml:"dsn" mapstructure:"dsn"`
	MaxOpenConns   int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns   int           `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
	DefaultTimeout time.Duration `toml:"default_timeout" mapstructure:"default_timeout"`
}

// Relational converts the section for relationaldb.Open.
func (j *JournalConfig) Relational() *relationaldb.Config {
	return &relationaldb.Config{
		Driver:         j.Driver,
		DSN:            j.DSN,
		MaxOpenConns:   j.MaxOpenConns,
		MaxIdleConns:   j.MaxIdleConns,
		DefaultTimeout: j.DefaultTimeout,
	}
}

// Validate performs validation on the journal configuration
func (j *JournalConfig) Validate() error {
	if !j.Enabled {
		return nil
	}
	return j.Relational().Validate()
}
