// Package game implements the rules of Pig: a player's turn state machine,
// the decision policies that drive it, and the engine that rotates turns
// until someone reaches the target score or the time limit runs out.
//
// # Basic Usage
//
// Build players from policy kinds and hand them to an engine:
//
//	factory := game.PlayerFactory{Prompter: prompter, Events: bus}
//	p1, _ := factory.Create("Player 1", "human")
//	p2, _ := factory.Create("Player 2", "computer")
//	engine, _ := game.NewEngine([]*game.Player{p1, p2}, dice.NewSeeded(seed), logger,
//	    game.WithEventBus(bus))
//	result, err := engine.Play(ctx)
//
// # Timed Games
//
// WithTimeLimit bounds a game by wall-clock time. The limit is checked only
// between turns, so a turn that is under way when the limit passes finishes
// normally. The clock is injected with WithClock; tests use quartz.NewMock.
//
// # Deterministic Testing
//
// The engine takes a dice.Roller, so tests can pass dice.NewSequence to
// script every roll, or dice.NewSeeded for a reproducible random game.
//
// # Output
//
// Everything a player would see is published as a GameEvent on the engine's
// EventBus. EventFormatter turns events into the console lines; subscribers
// decide where they go.
package game
