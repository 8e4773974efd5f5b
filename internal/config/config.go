// Package config loads game settings. Sources are applied in order, later
// ones winning: built-in defaults, an optional HCL file, PIG_* environment
// variables, then command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pigforbots/internal/game"
)

// DefaultTimeLimit is the time limit for timed games.
const DefaultTimeLimit = 60 * time.Second

// Config is the complete game configuration.
type Config struct {
	Game    GameSettings
	Players []PlayerSetting
}

// fileConfig is the shape of a config file. Both blocks are optional.
type fileConfig struct {
	Game    *GameSettings   `hcl:"game,block"`
	Players []PlayerSetting `hcl:"player,block"`
}

// GameSettings holds rules and run settings.
type GameSettings struct {
	TargetScore int    `hcl:"target_score,optional" env:"PIG_TARGET_SCORE"`
	TimeLimit   string `hcl:"time_limit,optional" env:"PIG_TIME_LIMIT"`
	Timed       bool   `hcl:"timed,optional" env:"PIG_TIMED"`
	Seed        int64  `hcl:"seed,optional" env:"PIG_SEED"`
	HoldAt      int    `hcl:"hold_at,optional" env:"PIG_HOLD_AT"`
	AdaptiveCap int    `hcl:"adaptive_cap,optional" env:"PIG_ADAPTIVE_CAP"`
}

// PlayerSetting declares one seat. Seats play in file order.
type PlayerSetting struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`
}

// envOverrides mirrors the player kinds for the two default seats, which
// are the only ones that can be set from the environment.
type envOverrides struct {
	Player1 string `env:"PIG_PLAYER1"`
	Player2 string `env:"PIG_PLAYER2"`
}

// Default returns the built-in configuration: Player 1 is a person,
// Player 2 the adaptive computer, untimed, first to 100.
func Default() *Config {
	return &Config{
		Game: GameSettings{
			TargetScore: game.DefaultTargetScore,
			TimeLimit:   DefaultTimeLimit.String(),
			HoldAt:      game.DefaultHoldAt,
			AdaptiveCap: game.DefaultAdaptiveCap,
		},
		Players: []PlayerSetting{
			{Name: "Player 1", Kind: string(game.KindHuman)},
			{Name: "Player 2", Kind: string(game.KindComputer)},
		},
	}
}

// Load reads filename if it exists, applies defaults for anything unset and
// then overlays the environment. An empty filename or a missing file yields
// the defaults.
func Load(filename string) (*Config, error) {
	cfg, err := loadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &Config{Players: fc.Players}
	if fc.Game != nil {
		cfg.Game = *fc.Game
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Game.TargetScore == 0 {
		c.Game.TargetScore = def.Game.TargetScore
	}
	if c.Game.TimeLimit == "" {
		c.Game.TimeLimit = def.Game.TimeLimit
	}
	if c.Game.HoldAt == 0 {
		c.Game.HoldAt = def.Game.HoldAt
	}
	if c.Game.AdaptiveCap == 0 {
		c.Game.AdaptiveCap = def.Game.AdaptiveCap
	}
	if len(c.Players) == 0 {
		c.Players = def.Players
	}
}

func (c *Config) applyEnv() error {
	if err := env.Parse(&c.Game); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	var seats envOverrides
	if err := env.Parse(&seats); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.SetPlayerKind(0, seats.Player1)
	c.SetPlayerKind(1, seats.Player2)
	return nil
}

// SetPlayerKind overrides the kind of the seat at index. Empty kinds and
// seats that do not exist are ignored.
func (c *Config) SetPlayerKind(index int, kind string) {
	if kind == "" || index < 0 || index >= len(c.Players) {
		return
	}
	c.Players[index].Kind = kind
}

// Limit returns the parsed time limit.
func (c *Config) Limit() (time.Duration, error) {
	d, err := time.ParseDuration(c.Game.TimeLimit)
	if err != nil {
		return 0, &game.ConfigurationError{Field: "time limit", Value: c.Game.TimeLimit, Reason: err.Error()}
	}
	return d, nil
}

// Validate checks every setting, returning the first *game.ConfigurationError.
func (c *Config) Validate() error {
	if err := c.ValidateGame(); err != nil {
		return err
	}
	return c.validatePlayers()
}

// ValidateGame checks the game block only. Callers that seat their own
// players, such as the simulator, use it instead of Validate.
func (c *Config) ValidateGame() error {
	if c.Game.TargetScore <= 0 {
		return &game.ConfigurationError{Field: "target score", Value: fmt.Sprint(c.Game.TargetScore), Reason: "must be positive"}
	}
	if c.Game.HoldAt <= 0 {
		return &game.ConfigurationError{Field: "hold_at", Value: fmt.Sprint(c.Game.HoldAt), Reason: "must be positive"}
	}
	if c.Game.AdaptiveCap <= 0 {
		return &game.ConfigurationError{Field: "adaptive_cap", Value: fmt.Sprint(c.Game.AdaptiveCap), Reason: "must be positive"}
	}
	limit, err := c.Limit()
	if err != nil {
		return err
	}
	if limit <= 0 {
		return &game.ConfigurationError{Field: "time limit", Value: c.Game.TimeLimit, Reason: "must be positive"}
	}
	return nil
}

func (c *Config) validatePlayers() error {
	if len(c.Players) < 2 {
		return &game.ConfigurationError{Field: "players", Value: fmt.Sprint(len(c.Players)), Reason: "need at least two"}
	}

	names := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if p.Name == "" {
			return &game.ConfigurationError{Field: "player name", Reason: "must not be empty"}
		}
		if names[p.Name] {
			return &game.ConfigurationError{Field: "player name", Value: p.Name, Reason: "duplicate"}
		}
		names[p.Name] = true
		if _, err := game.ParsePolicyKind(p.Kind); err != nil {
			return err
		}
	}
	return nil
}

// BuildPlayers validates the player kinds and creates the players in seat
// order. It builds nothing if any seat is invalid.
func (c *Config) BuildPlayers(factory game.PlayerFactory) ([]*game.Player, error) {
	for _, p := range c.Players {
		if _, err := game.ParsePolicyKind(p.Kind); err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
	}

	factory.HoldAt = c.Game.HoldAt
	factory.AdaptiveCap = c.Game.AdaptiveCap

	players := make([]*game.Player, 0, len(c.Players))
	for _, p := range c.Players {
		player, err := factory.Create(p.Name, p.Kind)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
		players = append(players, player)
	}
	return players, nil
}
