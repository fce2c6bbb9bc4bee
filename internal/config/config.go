package config

import (
	"fmt"
	"path/filepath"
)

// Config represents the complete ammd configuration
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Ledger  LedgerConfig  `toml:"ledger" mapstructure:"ledger"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Auth    AuthConfig    `toml:"auth" mapstructure:"auth"`

	configPath string
}

// ConfigPath returns the file the configuration was loaded from, if any.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// ResolvePath makes a relative path relative to the config file's
// directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.configPath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.configPath), path)
}

// String returns a one-line summary for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("rpc=%s grpc=%s backend=%s journal=%s log=%s",
		c.Server.RPCAddress, c.Server.GRPCAddress, c.Ledger.Backend, c.Journal.Driver, c.Log.Level)
}
