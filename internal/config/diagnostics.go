package config

import "fmt"

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (valid options: debug, info, warn, error)", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (valid options: text, json)", l.Format)
	}
	return nil
}
