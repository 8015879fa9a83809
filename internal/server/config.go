package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lox/pokerrooms/internal/room"
	"github.com/lox/pokerrooms/internal/store"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server       *ServerSettings `hcl:"server,block"`
	RoomDefaults *RoomDefaults   `hcl:"room_defaults,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address         string `hcl:"address,optional"`
	Port            int    `hcl:"port,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	DBPath          string `hcl:"db_path,optional"`
	RoomTTL         string `hcl:"room_ttl,optional"`
	AIDelay         string `hcl:"ai_delay,optional"`
	JanitorInterval string `hcl:"janitor_interval,optional"`
}

// RoomDefaults are the settings of a room whose creator does not override
// them.
type RoomDefaults struct {
	StartingChips int  `hcl:"starting_chips,optional"`
	SmallBlind    int  `hcl:"small_blind,optional"`
	BigBlind      int  `hcl:"big_blind,optional"`
	TurnTimeLimit int  `hcl:"turn_time_limit,optional"`
	AllowBuyBack  bool `hcl:"allow_buy_back,optional"`
	MaxBuyBacks   int  `hcl:"max_buy_backs,optional"`
	BuyBackAmount int  `hcl:"buy_back_amount,optional"`
	AIPlayers     int  `hcl:"ai_players,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	defaults := room.DefaultSettings()
	return &ServerConfig{
		Server: &ServerSettings{
			Address:         "localhost",
			Port:            8080,
			LogLevel:        "info",
			DBPath:          "pokerrooms.db",
			RoomTTL:         store.DefaultTTL.String(),
			AIDelay:         DefaultAIDelay.String(),
			JanitorInterval: store.DefaultJanitorInterval.String(),
		},
		RoomDefaults: &RoomDefaults{
			StartingChips: defaults.StartingChips,
			SmallBlind:    defaults.SmallBlind,
			BigBlind:      defaults.BigBlind,
			TurnTimeLimit: defaults.TurnTimeLimit,
			AllowBuyBack:  defaults.AllowBuyBack,
			MaxBuyBacks:   defaults.MaxBuyBacks,
			BuyBackAmount: defaults.BuyBackAmount,
			AIPlayers:     1,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills zero values. allow_buy_back keeps whatever the file
// says, since false is a meaningful choice once the block is present.
func (c *ServerConfig) applyDefaults() {
	def := DefaultServerConfig()

	if c.Server == nil {
		c.Server = def.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = def.Server.DBPath
	}
	if c.Server.RoomTTL == "" {
		c.Server.RoomTTL = def.Server.RoomTTL
	}
	if c.Server.AIDelay == "" {
		c.Server.AIDelay = def.Server.AIDelay
	}
	if c.Server.JanitorInterval == "" {
		c.Server.JanitorInterval = def.Server.JanitorInterval
	}

	if c.RoomDefaults == nil {
		c.RoomDefaults = def.RoomDefaults
		return
	}
	rd := c.RoomDefaults
	if rd.StartingChips == 0 {
		rd.StartingChips = def.RoomDefaults.StartingChips
	}
	if rd.SmallBlind == 0 {
		rd.SmallBlind = def.RoomDefaults.SmallBlind
	}
	if rd.BigBlind == 0 {
		rd.BigBlind = def.RoomDefaults.BigBlind
	}
	if rd.BuyBackAmount == 0 {
		rd.BuyBackAmount = rd.StartingChips
	}
	if rd.AIPlayers == 0 {
		rd.AIPlayers = def.RoomDefaults.AIPlayers
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server == nil || c.RoomDefaults == nil {
		return fmt.Errorf("server and room_defaults must be set")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.Server.LogLevel, err)
	}
	for name, value := range map[string]string{
		"room_ttl":         c.Server.RoomTTL,
		"ai_delay":         c.Server.AIDelay,
		"janitor_interval": c.Server.JanitorInterval,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if err := c.RoomSettings().Validate(); err != nil {
		return fmt.Errorf("room_defaults: %w", err)
	}
	if c.RoomDefaults.AIPlayers < 1 || c.RoomDefaults.AIPlayers > room.MaxPlayers-1 {
		return fmt.Errorf("room_defaults: ai_players must be between 1 and %d", room.MaxPlayers-1)
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomSettings converts room_defaults into room settings.
func (c *ServerConfig) RoomSettings() room.Settings {
	rd := c.RoomDefaults
	return room.Settings{
		StartingChips: rd.StartingChips,
		SmallBlind:    rd.SmallBlind,
		BigBlind:      rd.BigBlind,
		TurnTimeLimit: rd.TurnTimeLimit,
		AllowBuyBack:  rd.AllowBuyBack,
		MaxBuyBacks:   rd.MaxBuyBacks,
		BuyBackAmount: rd.BuyBackAmount,
	}
}

// ServiceConfig returns the game service configuration. Call Validate first;
// unparseable durations fall back to their defaults.
func (c *ServerConfig) ServiceConfig() ServiceConfig {
	return ServiceConfig{
		AIDelay:   parseDuration(c.Server.AIDelay, DefaultAIDelay),
		Defaults:  c.RoomSettings(),
		AIPlayers: c.RoomDefaults.AIPlayers,
	}
}

// StoreOptions returns the expiry settings of the room store.
func (c *ServerConfig) StoreOptions() store.Options {
	return store.Options{
		TTL:             parseDuration(c.Server.RoomTTL, store.DefaultTTL),
		JanitorInterval: parseDuration(c.Server.JanitorInterval, store.DefaultJanitorInterval),
	}
}

// Encode renders the configuration as HCL.
func (c *ServerConfig) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return f.Bytes()
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
