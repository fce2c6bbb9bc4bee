package relationaldb

import (
	"fmt"
	"time"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config contains database configuration settings
type Config struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// NewConfig returns a Config for an in-memory SQLite journal.
func NewConfig() *Config {
	return SQLiteConfig(":memory:")
}

// SQLiteConfig creates a SQLite configuration for the database file at path.
func SQLiteConfig(path string) *Config {
	return &Config{
		Driver:          DriverSQLite,
		DSN:             path,
		MaxOpenConns:    1, // SQLite limitation
		MaxIdleConns:    1,
		ConnMaxLifetime: 0,
		DefaultTimeout:  30 * time.Second,
	}
}

// Validate checks the configuration and normalizes the driver name.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite", "sqlite3":
		c.Driver = DriverSQLite
		// every connection to :memory: would see its own database
		c.MaxOpenConns = 1
		if c.MaxIdleConns > 1 {
			c.MaxIdleConns = 1
		}
	case "postgres", "postgresql":
		c.Driver = DriverPostgres
	case "mysql", "mariadb":
		c.Driver = DriverMySQL
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Driver)
	}

	if c.DSN == "" {
		return ErrMissingDSN
	}
	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.MaxIdleConns < 0 {
		return ErrInvalidMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return ErrMaxIdleExceedsMaxOpen
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
