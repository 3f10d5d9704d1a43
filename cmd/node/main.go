package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"chorddfs/internal/bootstrap"
	"chorddfs/internal/config"
	"chorddfs/internal/httpapi"
	"chorddfs/internal/logger"
	zapfactory "chorddfs/internal/logger/zap"
	"chorddfs/internal/node"
	"chorddfs/internal/ring"
	"chorddfs/internal/storage"
	"chorddfs/internal/telemetry"
	"chorddfs/internal/transport/httprpc"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	// Validate configuration
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize logger
	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()   // flush logger buffers before exit
		lgr = zapfactory.NewZapAdapter(zapLog) // adapt zap.Logger to logger.Logger
	} else {
		lgr = &logger.NopLogger{} // no-op logger
	}
	// Log loaded configuration at DEBUG level
	cfg.LogConfig(lgr)

	// Initialize listener (to determine server address and port)
	lis, advertised, err := httpapi.Listen("private", cfg.Node.Bind, cfg.Node.Host, cfg.Node.Port)
	if err != nil {
		lgr.Error("fatal: failed to initialize listener", logger.F("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = lis.Close() }()
	lgr.Debug("create listener", logger.F("addr", advertised))

	// Initialize the identifier space
	space, err := ring.NewSpace(cfg.Chord.MBits)
	if err != nil {
		lgr.Error("failed to initialize identifier space", logger.F("err", err.Error()))
		os.Exit(1)
	}
	lgr.Debug("identifier space initialized", logger.F("bits", space.Bits), logger.F("r", space.R))

	// Initialize the local node's identity
	var id ring.ID
	if cfg.Node.Id == "" {
		id = space.HashString(advertised) // derive ID from advertised address
	} else {
		v, err := strconv.ParseUint(cfg.Node.Id, 16, 64)
		if err != nil {
			lgr.Error("invalid node id in configuration", logger.F("err", err.Error()))
			os.Exit(1)
		}
		id = space.Mod(v)
	}
	self := ring.Node{ID: id, Address: advertised}
	lgr.Debug("generated node id", logger.F("id", strconv.FormatUint(uint64(id), 16)))
	lgr = lgr.Named("node")
	lgr.Info("new node initializing", logger.FPeer("self", uint64(self.ID), self.Address))

	// Initialize telemetry (if enabled)
	shutdownTracer := telemetry.InitTracer(cfg.Telemetry, "chorddfs-node", id)
	defer shutdownTracer(context.Background())

	// Initialize the routing table
	rt := ring.New(self, space, ring.WithLogger(lgr.Named("ring")))
	lgr.Debug("initialized routing table")

	// Initialize the storage backend
	var store storage.Backend
	switch cfg.Storage.Backend {
	case "disk":
		store, err = storage.NewDiskBackend(cfg.Storage.Path, lgr.Named("storage"))
		if err != nil {
			lgr.Error("failed to initialize disk storage", logger.F("err", err.Error()))
			os.Exit(1)
		}
	default:
		store = storage.NewMemoryBackend(lgr.Named("storage"))
	}
	lgr.Debug("initialized storage backend", logger.F("backend", cfg.Storage.Backend))

	// Initialize the outbound transport
	tr := httprpc.New(
		httprpc.WithLogger(lgr.Named("transport")),
		httprpc.WithTimeout(cfg.Chord.RPCTimeout),
	)

	// Initialize the node
	n := node.New(rt, store, tr,
		node.WithLogger(lgr),
		node.WithRPCTimeout(cfg.Chord.RPCTimeout),
	)
	lgr.Debug("initialized node")

	// Initialize the HTTP boundary server
	httpSrv := &http.Server{Handler: httpapi.New(n, lgr.Named("httpapi")).Handler()}

	// Run server in background
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpSrv.Serve(lis) }()
	lgr.Debug("server started")

	// Resolve peer discovery
	disco, err := bootstrap.New(cfg.Bootstrap, lgr.Named("bootstrap"))
	if err != nil {
		lgr.Error("failed to initialize bootstrap discovery", logger.F("err", err.Error()))
		// cleanup before exit
		_ = httpSrv.Close()
		os.Exit(1)
	}

	// Join an existing ring or bootstrap a new one
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := disco.Discover(ctx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err.Error()))
		// cleanup before exit
		_ = httpSrv.Close()
		os.Exit(1)
	}
	lgr.Info("resolved bootstrap peers", logger.F("peers", peers))
	if len(peers) != 0 {
		joinCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := n.Join(joinCtx, peers[0])
		cancel()
		if err != nil {
			lgr.Error("failed to join ring", logger.F("err", err.Error()))
			// cleanup before exit
			_ = httpSrv.Close()
			os.Exit(1)
		}
		lgr.Debug("joined ring", logger.F("bootstrap", peers[0]))
	} else {
		n.Bootstrap()
		lgr.Debug("bootstrapped new ring")
	}

	// Register node presence with the discovery mechanism
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = disco.Register(ctx, self)
	cancel()
	if err != nil {
		lgr.Error("failed to register node", logger.F("err", err.Error()))
	} else {
		lgr.Info("node registered successfully")
		defer func() {
			// Deregister node on shutdown
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := disco.Deregister(ctx, self)
			cancel()
			if err != nil {
				lgr.Warn("failed to deregister node", logger.F("err", err.Error()))
			}
		}()
	}

	// Setup signal handler for graceful shutdown
	ctx, stabilizerStop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Start the stabilization loop (runs until ctx is canceled)
	n.StartStabilizing(ctx, cfg.Chord.StabilizePeriod)
	lgr.Debug("stabilization loop started")

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, stopping server gracefully...")

		stabilizerStop() // stop stabilization loop

		// Allow some time for graceful stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			lgr.Warn("graceful stop timed out, forcing shutdown", logger.F("err", err.Error()))
			_ = httpSrv.Close()
		} else {
			lgr.Info("server stopped gracefully")
		}

	case err := <-serveErr:
		lgr.Error("http server terminated unexpectedly", logger.F("err", err.Error()))
		stabilizerStop()
		os.Exit(1)
	}
}
