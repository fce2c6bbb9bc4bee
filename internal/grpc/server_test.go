package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/LeJamon/goAMMd/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ServerConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *ServerConfig) {}},
		{name: "missing address", mutate: func(c *ServerConfig) { c.Address = "" }, wantErr: true},
		{name: "no port", mutate: func(c *ServerConfig) { c.Address = "localhost" }, wantErr: true},
		{name: "any interface", mutate: func(c *ServerConfig) { c.Address = ":50051" }},
		{name: "zero recv size", mutate: func(c *ServerConfig) { c.MaxRecvMsgSize = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultServerConfig()
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}

func TestHealthServing(t *testing.T) {
	srv, err := NewServer(DefaultServerConfig(), logging.Discard())
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(lis) }()
	require.Eventually(t, srv.IsRunning, time.Second, 10*time.Millisecond)
	assert.Equal(t, lis.Addr().String(), srv.Address())

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := healthpb.NewHealthClient(conn)
	for _, name := range []string{"", ServiceName} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	}

	srv.Stop()
	require.NoError(t, <-done)
	assert.False(t, srv.IsRunning())
}
