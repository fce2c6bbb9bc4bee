package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.rpc_address", "127.0.0.1:5005")
	v.SetDefault("server.grpc_address", "127.0.0.1:50051")
	v.SetDefault("server.websocket", true)
	v.SetDefault("server.websocket_ping_frequency", 30*time.Second)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	// Ledger defaults
	v.SetDefault("ledger.backend", "memory")
	v.SetDefault("ledger.path", "")
	v.SetDefault("ledger.cache_size", 4096)
	v.SetDefault("ledger.redis_addr", "")
	v.SetDefault("ledger.redis_password", "")
	v.SetDefault("ledger.redis_db", 0)

	// Journal defaults
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", ":memory:")
	v.SetDefault("journal.max_open_conns", 1)
	v.SetDefault("journal.max_idle_conns", 1)
	v.SetDefault("journal.default_timeout", 30*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Auth defaults
	v.SetDefault("auth.require_signatures", true)
	v.SetDefault("auth.operators", []string{})
}
