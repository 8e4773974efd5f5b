package main

import (
	"os"

	"github.com/lox/pigforbots/internal/config"
	"github.com/lox/pigforbots/internal/randutil"
	"github.com/lox/pigforbots/internal/simulator"
)

type SimulateCmd struct {
	Games   int    `help:"Number of games to play" default:"1000"`
	Player1 string `name:"player1" help:"Player 1 strategy (computer, baseline)" default:"computer"`
	Player2 string `name:"player2" help:"Player 2 strategy (computer, baseline)" default:"baseline"`
	Seed    int64  `help:"Base seed; game i uses seed+i. 0 picks a random seed"`
	Target  int    `help:"Score that wins each game (default from config)"`
	Out     string `help:"Also write the results as JSON to this file" type:"path"`
}

// apply overlays flags on the game settings and validates them. The seats
// come from the flags, so the config file's player blocks are not checked.
func (c *SimulateCmd) apply(cfg *config.Config) error {
	if c.Target != 0 {
		cfg.Game.TargetScore = c.Target
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	return cfg.ValidateGame()
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger, closeLog, err := g.SetupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := SetupSignalHandler(logger)
	defer stop()

	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	if err := c.apply(cfg); err != nil {
		return err
	}

	seed, err := randutil.Resolve(cfg.Game.Seed)
	if err != nil {
		return err
	}
	logger.Info("Simulating", "games", c.Games, "seed", seed, "player1", c.Player1, "player2", c.Player2)

	sim, err := simulator.New(simulator.Config{
		Games:       c.Games,
		Kinds:       [2]string{c.Player1, c.Player2},
		Seed:        seed,
		TargetScore: cfg.Game.TargetScore,
		HoldAt:      cfg.Game.HoldAt,
		AdaptiveCap: cfg.Game.AdaptiveCap,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	sim.PrintSummary(os.Stdout, stats)

	if c.Out != "" {
		if err := sim.WriteReport(c.Out, stats); err != nil {
			return err
		}
		logger.Info("Wrote results", "file", c.Out)
	}
	return nil
}
