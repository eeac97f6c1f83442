// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Sysroute-service answers destination queries for management calls
// over a Unix socket. It loads its configuration from --config or
// SYSROUTE_CONFIG, publishes the configured topology file as a
// snapshot, reloads the file periodically, and serves four actions:
//
//   - resolve: the destination of one call
//   - status: the current snapshot's fingerprint and shape
//   - methods: every management method with its routing class
//   - history: recently published snapshots, when history.path is set
//
// A reload that fails keeps the previous snapshot. SIGINT or SIGTERM
// stops the server after in-flight requests complete.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/lib/clock"
	"github.com/sysroute/sysroute/lib/config"
	"github.com/sysroute/sysroute/lib/history"
	"github.com/sysroute/sysroute/lib/process"
	"github.com/sysroute/sysroute/lib/service"
	"github.com/sysroute/sysroute/lib/topology"
	"github.com/sysroute/sysroute/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flags := pflag.NewFlagSet("sysroute-service", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to sysroute.yaml (default: $"+config.EnvVar+")")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("sysroute-service %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ownSubnet, err := cfg.Routing.OwnSubnetID()
	if err != nil {
		return fmt.Errorf("routing.own_subnet: %w", err)
	}
	interval, err := cfg.Topology.Interval()
	if err != nil {
		return fmt.Errorf("topology.reload_interval: %w", err)
	}

	ctx, stop := process.SignalContext(context.Background())
	defer stop()

	clk := clock.Real()
	store := topology.NewStore(nil)

	var snapshots *history.Store
	if cfg.History.Enabled() {
		snapshots, err = history.Open(history.Config{
			Path:   cfg.History.Path,
			Retain: cfg.History.Retain,
			Logger: logger,
		})
		if err != nil {
			return err
		}
		defer snapshots.Close()
	}

	resolverService := &ResolverService{
		store:     store,
		history:   snapshots,
		ownSubnet: ownSubnet,
		clock:     clk,
		startedAt: clk.Now(),
		logger:    logger,
	}

	watcher, err := topology.NewWatcher(topology.WatcherConfig{
		Path:     cfg.Topology.Path,
		Interval: max(interval, 1),
		Notify:   cfg.Topology.NotifyEnabled(),
		Store:    store,
		Clock:    clk,
		Logger:   logger,
		OnReload: func(snapshot *topology.Snapshot, _ error) {
			resolverService.recordSnapshot(ctx, snapshot)
		},
	})
	if err != nil {
		return err
	}
	// The initial load must succeed; later reload failures keep the
	// previous snapshot.
	initial, err := watcher.Reload()
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}
	resolverService.recordSnapshot(ctx, initial)

	watcherDone := make(chan error, 1)
	if interval > 0 {
		go func() {
			watcherDone <- watcher.Run(ctx)
		}()
	} else {
		logger.Info("topology reload disabled")
		watcherDone <- nil
	}

	socketServer := service.NewSocketServer(cfg.Service.SocketPath, logger)
	resolverService.registerActions(socketServer)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- socketServer.Serve(ctx)
	}()

	logger.Info("resolver service running",
		"version", version.Short(),
		"environment", cfg.Environment,
		"socket", cfg.Service.SocketPath,
		"own_subnet", ownSubnet,
		"topology", cfg.Topology.Path,
		"reload_interval", interval,
		"notify", interval > 0 && cfg.Topology.NotifyEnabled(),
		"history", cfg.History.Path,
	)

	select {
	case <-ctx.Done():
	case err := <-socketDone:
		// The server stopped on its own: it could not listen.
		return fmt.Errorf("socket server: %w", err)
	}
	logger.Info("shutting down")

	if err := <-socketDone; err != nil {
		logger.Error("socket server error", "error", err)
	}
	if err := <-watcherDone; err != nil {
		logger.Error("topology watcher error", "error", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func newLogger(logging config.LoggingConfig) (*slog.Logger, error) {
	level, err := logging.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	options := &slog.HandlerOptions{Level: level}
	if logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, options)), nil
}
