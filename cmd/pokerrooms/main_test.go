package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/server"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("pokerrooms"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestServerFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cli, ctx := parse(t, "server", "--port", "9001", "--log-level", "debug", "--db", ":memory:")
	assert.Equal(t, "server", ctx.Command())

	cfg := server.DefaultServerConfig()
	cli.Server.apply(cfg)
	assert.Equal(t, "localhost:9001", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, ":memory:", cfg.Server.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestConfigInitWritesLoadableFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "conf", "pokerrooms.hcl")
	_, ctx := parse(t, "config", "init", path)
	require.NoError(t, ctx.Run())

	cfg, err := server.LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, server.DefaultServerConfig(), cfg)

	_, ctx = parse(t, "config", "init", path)
	assert.ErrorContains(t, ctx.Run(), "already exists")

	_, ctx = parse(t, "config", "init", "--force", path)
	assert.NoError(t, ctx.Run())

	_, ctx = parse(t, "config", "check", path)
	assert.NoError(t, ctx.Run())
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, "warn")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, log.InfoLevel, newLogger(&buf, "nonsense").GetLevel())
}
