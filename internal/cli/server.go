package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LeJamon/goAMMd/internal/config"
	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	ammgrpc "github.com/LeJamon/goAMMd/internal/grpc"
	"github.com/LeJamon/goAMMd/internal/logging"
	"github.com/LeJamon/goAMMd/internal/rpc"
	"github.com/LeJamon/goAMMd/internal/service"
	"github.com/LeJamon/goAMMd/internal/storage"
	"github.com/LeJamon/goAMMd/internal/storage/database"
	"github.com/LeJamon/goAMMd/internal/storage/relationaldb"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// serverCmd represents the serve command (default action)
var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AMM daemon",
	Long: `Start the ammd server which provides:
- HTTP JSON-RPC API
- WebSocket stream of committed operations (/ws)
- Health check endpoint (/health)
- gRPC health service

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set serve as the default command
	rootCmd.RunE = runServer
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	logger := logging.NewLogger(level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Run(ctx)
}

// daemon owns every long-lived component of a running server.
type daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	db      database.DB
	ledger  *ledger.Manager
	journal *relationaldb.Journal
	hub     *rpc.Hub

	httpServer   *http.Server
	httpListener net.Listener
	grpcServer   *ammgrpc.Server
	grpcListener net.Listener
}

// newDaemon opens storage and binds the listeners. Nothing is served
// until Run.
func newDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *daemon, err error) {
	d := &daemon{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			for _, l := range []net.Listener{d.httpListener, d.grpcListener} {
				if l != nil {
					l.Close()
				}
			}
			d.Close()
		}
	}()

	logger.Info("starting ammd", "config", cfg.String(), "file", cfg.ConfigPath())

	d.db, err = storage.Open(ctx, cfg.Ledger.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger storage: %w", err)
	}
	d.ledger, err = ledger.NewManager(d.db, ledger.ManagerConfig{CacheSize: cfg.Ledger.CacheSize}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Journal.Enabled {
		d.journal, err = relationaldb.Open(ctx, cfg.Journal.Relational())
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
	}

	operators, err := cfg.Auth.OperatorIDs()
	if err != nil {
		return nil, err
	}

	var publisher service.EventPublisher = service.NoOpPublisher{}
	if cfg.Server.Websocket {
		d.hub = rpc.NewHub(cfg.Server.WebsocketPingFrequency, logger)
		publisher = d.hub
	}

	svc := service.New(d.ledger, service.Config{
		Authorizer: auth.NewPolicy(operators),
		Journal:    d.journal,
		Publisher:  publisher,
		Logger:     logger,
	})
	rpcServer := rpc.NewServer(svc, rpc.Options{
		RequireSignatures: cfg.Auth.RequireSignatures,
		Timeout:           cfg.Server.WriteTimeout,
		Logger:            logger,
	})
	if !cfg.Auth.RequireSignatures {
		logger.Warn("request signatures are not required; callers are trusted")
	}

	d.httpListener, err = net.Listen("tcp", cfg.Server.RPCAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on rpc_address: %w", err)
	}
	d.httpServer = &http.Server{
		Handler:      rpcServer.Handler(d.hub),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Server.GRPCAddress != "" {
		gcfg := ammgrpc.DefaultServerConfig()
		gcfg.Address = cfg.Server.GRPCAddress
		d.grpcServer, err = ammgrpc.NewServer(gcfg, logger)
		if err != nil {
			return nil, err
		}
		d.grpcListener, err = net.Listen("tcp", gcfg.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on grpc_address: %w", err)
		}
	}
	return d, nil
}

// Run serves until ctx is cancelled or a server fails, then shuts every
// server down.
func (d *daemon) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.logger.Info("rpc server listening", "address", d.httpListener.Addr().String())
		if err := d.httpServer.Serve(d.httpListener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("rpc server: %w", err)
		}
		return nil
	})

	if d.grpcServer != nil {
		g.Go(func() error {
			if err := d.grpcServer.Serve(d.grpcListener); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		d.logger.Info("shutting down")
		return d.shutdown()
	})

	return g.Wait()
}

func (d *daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Server.ShutdownTimeout)
	defer cancel()

	if d.grpcServer != nil {
		d.grpcServer.Stop()
	}
	if d.hub != nil {
		d.hub.Close()
	}
	return d.httpServer.Shutdown(ctx)
}

// Close releases storage. It is safe on a partially built daemon.
func (d *daemon) Close() {
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			d.logger.Warn("failed to close journal", "error", err)
		}
	}
	if d.ledger != nil {
		if err := d.ledger.Close(); err != nil {
			d.logger.Warn("failed to close ledger", "error", err)
		}
	} else if d.db != nil {
		d.db.Close()
	}
}
