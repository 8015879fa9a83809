package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pokerrooms.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  address  = "0.0.0.0"
  port     = 9000
  db_path  = "/var/lib/pokerrooms/rooms.db"
  ai_delay = "500ms"
}

room_defaults {
  starting_chips  = 2000
  small_blind     = 25
  big_blind       = 50
  turn_time_limit = 30
  allow_buy_back  = false
  ai_players      = 3
}
`)
	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "info", cfg.Server.LogLevel, "defaults fill the gaps")
	assert.Equal(t, "2h0m0s", cfg.Server.RoomTTL)

	svc := cfg.ServiceConfig()
	assert.Equal(t, 500*time.Millisecond, svc.AIDelay)
	assert.Equal(t, 3, svc.AIPlayers)
	assert.Equal(t, 2000, svc.Defaults.StartingChips)
	assert.Equal(t, 30, svc.Defaults.TurnTimeLimit)
	assert.False(t, svc.Defaults.AllowBuyBack)
	assert.Equal(t, 2000, svc.Defaults.BuyBackAmount, "buy-back defaults to the starting stack")

	opts := cfg.StoreOptions()
	assert.Equal(t, 2*time.Hour, opts.TTL)
	assert.Equal(t, 5*time.Minute, opts.JanitorInterval)
}

func TestLoadServerConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadServerConfig(writeConfig(t, `server { port = "eighty" `))
	assert.Error(t, err, "syntax error")

	_, err = LoadServerConfig(writeConfig(t, `server { colour = "blue" }`))
	assert.Error(t, err, "unknown attribute")
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*ServerConfig)
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"bad log level", func(c *ServerConfig) { c.Server.LogLevel = "chatty" }},
		{"bad duration", func(c *ServerConfig) { c.Server.AIDelay = "soon" }},
		{"negative ttl", func(c *ServerConfig) { c.Server.RoomTTL = "-1h" }},
		{"bad blinds", func(c *ServerConfig) { c.RoomDefaults.BigBlind = 1 }},
		{"too many ai", func(c *ServerConfig) { c.RoomDefaults.AIPlayers = 8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultServerConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestServerConfigEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	cfg.Server.Port = 9999
	cfg.RoomDefaults.SmallBlind = 5
	cfg.RoomDefaults.BigBlind = 10

	path := writeConfig(t, string(cfg.Encode()))
	loaded, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
