package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chorddfs/internal/bootstrap"
	"chorddfs/internal/loadgen"
	"chorddfs/internal/loadgen/writer"
	"chorddfs/internal/logger"
	zapfactory "chorddfs/internal/logger/zap"
)

var defaultConfigPath = "config/loadgen/config.yaml"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := loadgen.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	// Validate configuration
	if err := cfg.Validate(); err != nil {
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
	// Log loaded configuration at INFO level
	cfg.LogConfig(lgr)

	// initialize writer
	var w writer.Writer
	if cfg.CSV.Enabled {
		w, err = writer.NewCSVWriter(cfg.CSV.Path)
		if err != nil {
			lgr.Error("failed to initialize CSV writer", logger.F("err", err.Error()))
			return
		}
	} else {
		w = writer.NopWriter{}
	}
	defer w.Close()

	// initialize bootstrap
	boot, err := bootstrap.New(cfg.Bootstrap, lgr.Named("bootstrap"))
	if err != nil {
		lgr.Error("failed to initialize bootstrap discovery", logger.F("err", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle termination signals for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		lgr.Warn("received termination signal", logger.F("signal", sig.String()))
		cancel()
	}()

	// Initialize and run the load generator
	runner := loadgen.New(cfg, lgr.Named("runner"), w, boot)
	start := time.Now()
	if err := runner.Run(ctx); err != nil {
		lgr.Error("load generator run failed", logger.F("err", err.Error()))
	}
	lgr.Info("load generator finished", logger.F("elapsed", time.Since(start).String()))
}
