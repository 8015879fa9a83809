package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerrooms/internal/fileutil"
	"github.com/lox/pokerrooms/internal/randutil"
	"github.com/lox/pokerrooms/internal/server"
	"github.com/lox/pokerrooms/internal/store"
)

// ServerCmd runs the WebSocket server. Flags override the config file.
type ServerCmd struct {
	Config   string `short:"c" default:"pokerrooms.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to (overrides config)"`
	Port     int    `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	DB       string `help:"SQLite database path, or :memory: (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Server.LogLevel)

	rng := randutil.NewRuntime()
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		rng = randutil.New(*c.Seed)
	}

	if cfg.Server.DBPath != store.MemoryPath {
		if err := fileutil.EnsureParentDir(cfg.Server.DBPath); err != nil {
			return err
		}
	}
	opts := cfg.StoreOptions()
	opts.Logger = logger
	st, err := store.Open(cfg.Server.DBPath, opts)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := server.NewServer(logger)
	gs := server.NewGameService(st, srv, cfg.ServiceConfig(), randutil.NewLocked(rng), quartz.NewReal(), logger)
	srv.SetGameService(gs)
	defer gs.Stop()

	logger.Info("Starting pokerrooms",
		"version", version,
		"addr", cfg.GetServerAddress(),
		"db", cfg.Server.DBPath,
		"room_ttl", cfg.Server.RoomTTL,
		"blinds", fmt.Sprintf("%d/%d", cfg.RoomDefaults.SmallBlind, cfg.RoomDefaults.BigBlind))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx, cfg.GetServerAddress())
	})
	g.Go(func() error {
		return st.Run(ctx)
	})
	return g.Wait()
}

func (c *ServerCmd) apply(cfg *server.ServerConfig) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.DB != "" {
		cfg.Server.DBPath = c.DB
	}
}
