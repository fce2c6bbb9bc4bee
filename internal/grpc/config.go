// Package grpc runs the daemon's gRPC endpoint. It serves the standard
// health service so orchestrators can probe liveness.
package grpc

import (
	"errors"
	"fmt"
	"net"
)

// ServerConfig configures Server.
type ServerConfig struct {
	// Address to listen on, host:port.
	Address string

	// Message size limits in bytes.
	MaxRecvMsgSize int
	MaxSendMsgSize int

	// MaxConcurrentStreams caps streams per client connection; 0 leaves
	// the grpc default.
	MaxConcurrentStreams uint32
}

// DefaultServerConfig listens on the loopback health port with 1MB
// message limits; health probes are tiny.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:              "127.0.0.1:50051",
		MaxRecvMsgSize:       1 << 20,
		MaxSendMsgSize:       1 << 20,
		MaxConcurrentStreams: 64,
	}
}

// Validate reports the first invalid field.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return errors.New("grpc: address is required")
	}
	if _, port, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("grpc: invalid address %q: %w", c.Address, err)
	} else if port == "" {
		return fmt.Errorf("grpc: address %q has no port", c.Address)
	}
	if c.MaxRecvMsgSize <= 0 || c.MaxSendMsgSize <= 0 {
		return errors.New("grpc: message size limits must be positive")
	}
	return nil
}
