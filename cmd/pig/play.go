package main

import (
	"os"

	"github.com/lox/pigforbots/internal/config"
	"github.com/lox/pigforbots/internal/console"
	"github.com/lox/pigforbots/internal/dice"
	"github.com/lox/pigforbots/internal/game"
	"github.com/lox/pigforbots/internal/randutil"
)

type PlayCmd struct {
	Player1    string `name:"player1" help:"Player 1 type (human, computer, baseline)" placeholder:"TYPE"`
	Player2    string `name:"player2" help:"Player 2 type (human, computer, baseline)" placeholder:"TYPE"`
	Timed      bool   `help:"End the game when the time limit is reached; the leader wins"`
	TimeLimit  string `help:"Time limit for --timed games (default 1m)" placeholder:"DURATION"`
	Seed       int64  `help:"Dice seed; 0 picks a random seed and logs it"`
	Target     int    `help:"Score that wins the game (default 100)"`
	NoColor    bool   `help:"Disable coloured output"`
	Scoreboard bool   `help:"Print every player's score at the end"`
}

// apply overlays flags that were set on the command line.
func (c *PlayCmd) apply(cfg *config.Config) {
	cfg.SetPlayerKind(0, c.Player1)
	cfg.SetPlayerKind(1, c.Player2)
	if c.Timed {
		cfg.Game.Timed = true
	}
	if c.TimeLimit != "" {
		cfg.Game.TimeLimit = c.TimeLimit
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	if c.Target != 0 {
		cfg.Game.TargetScore = c.Target
	}
}

func (c *PlayCmd) Run(g *Globals) error {
	logger, closeLog, err := g.SetupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := SetupSignalHandler(logger)
	defer stop()
	defer g.SetupTracing(ctx, logger)()

	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	limit, err := cfg.Limit()
	if err != nil {
		return err
	}

	seed, err := randutil.Resolve(cfg.Game.Seed)
	if err != nil {
		return err
	}
	logger.Info("Dice seeded", "seed", seed)

	con := console.New(os.Stdin, os.Stdout, logger, console.Options{
		NoColor:    c.NoColor,
		Formatting: game.FormattingOptions{ShowScoreboard: c.Scoreboard},
	})
	bus := game.NewEventBus()
	bus.Subscribe(con)

	players, err := cfg.BuildPlayers(game.PlayerFactory{
		Prompter: con,
		Events:   bus,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	opts := []game.Option{
		game.WithEventBus(bus),
		game.WithTargetScore(cfg.Game.TargetScore),
	}
	if cfg.Game.Timed {
		opts = append(opts, game.WithTimeLimit(limit))
	}

	engine, err := game.NewEngine(players, dice.New(randutil.New(seed)), logger, opts...)
	if err != nil {
		return err
	}

	_, err = engine.Play(ctx)
	return err
}
