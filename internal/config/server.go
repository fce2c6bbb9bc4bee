package config

import (
	"fmt"
	"net"
	"time"
)

// ServerConfig represents the [server] section
type ServerConfig struct {
	// RPCAddress serves JSON-RPC, the websocket stream and /health.
	RPCAddress string `toml:"rpc_address" mapstructure:"rpc_address"`
	// GRPCAddress serves the gRPC health service; empty disables it.
	GRPCAddress string `toml:"grpc_address" mapstructure:"grpc_address"`

	Websocket              bool          `toml:"websocket" mapstructure:"websocket"`
	WebsocketPingFrequency time.Duration `toml:"websocket_ping_frequency" mapstructure:"websocket_ping_frequency"`

	ReadTimeout     time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Validate performs validation on the server configuration
func (s *ServerConfig) Validate() error {
	if err := validateAddress(s.RPCAddress); err != nil {
		return fmt.Errorf("rpc_address: %w", err)
	}
	if s.GRPCAddress != "" {
		if err := validateAddress(s.GRPCAddress); err != nil {
			return fmt.Errorf("grpc_address: %w", err)
		}
		if s.GRPCAddress == s.RPCAddress {
			return fmt.Errorf("grpc_address must differ from rpc_address")
		}
	}
	if s.Websocket && s.WebsocketPingFrequency <= 0 {
		return fmt.Errorf("websocket_ping_frequency must be positive")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}

func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is required")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if port == "" {
		return fmt.Errorf("invalid address %q: missing port", addr)
	}
	return nil
}
