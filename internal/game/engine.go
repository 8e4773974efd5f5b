package game

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lox/pigforbots/internal/dice"
	"github.com/lox/pigforbots/internal/gameid"
	"github.com/lox/pigforbots/internal/telemetry"
)

// Engine owns the player sequence and drives a game from the first turn to
// the winner announcement. It is not safe for concurrent use; a game runs on
// a single goroutine.
type Engine struct {
	players []*Player
	current int // index into players, -1 before the first turn
	roller  dice.Roller
	events  EventBus
	logger  *log.Logger
	clock   quartz.Clock
	tracer  trace.Tracer

	gameID    string
	target    int
	timeLimit time.Duration // zero means untimed
	started   bool
	startTime time.Time
	turns     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventBus sets the bus that receives every game event.
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) { e.events = bus }
}

// WithClock sets the clock used for timed games.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithTimeLimit bounds the game by wall-clock time, measured from the start
// of Play. Zero disables the limit.
func WithTimeLimit(limit time.Duration) Option {
	return func(e *Engine) { e.timeLimit = limit }
}

// WithTargetScore changes the score that ends the game.
func WithTargetScore(target int) Option {
	return func(e *Engine) { e.target = target }
}

// WithGameID overrides the generated game id.
func WithGameID(id string) Option {
	return func(e *Engine) { e.gameID = id }
}

// WithTracer sets the tracer for game and turn spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// NewEngine creates an engine for a fixed player sequence. Turn order is the
// order of players.
func NewEngine(players []*Player, roller dice.Roller, logger *log.Logger, opts ...Option) (*Engine, error) {
	if len(players) < 2 {
		return nil, ErrTooFewPlayers
	}
	if roller == nil {
		return nil, ErrNilRoller
	}
	if logger == nil {
		logger = log.Default()
	}

	e := &Engine{
		players: players,
		current: -1,
		roller:  roller,
		target:  DefaultTargetScore,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.events == nil {
		e.events = NewEventBus()
	}
	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.tracer == nil {
		e.tracer = telemetry.Tracer("game")
	}
	if e.gameID == "" {
		e.gameID = gameid.Generate()
	}
	if e.target <= 0 {
		return nil, &ConfigurationError{Field: "target score", Value: fmt.Sprint(e.target), Reason: "must be positive"}
	}
	if e.timeLimit < 0 {
		return nil, &ConfigurationError{Field: "time limit", Value: e.timeLimit.String(), Reason: "must not be negative"}
	}
	e.logger = logger.WithPrefix("engine").With("game", e.gameID)

	return e, nil
}

// GameID returns the id carried on this game's events and logs.
func (e *Engine) GameID() string {
	return e.gameID
}

// Players returns the player sequence in turn order.
func (e *Engine) Players() []*Player {
	return e.players
}

// EventBus returns the bus for subscribing to game events
func (e *Engine) EventBus() EventBus {
	return e.events
}

// CurrentPlayer returns the player whose turn it is, or nil before the first
// turn.
func (e *Engine) CurrentPlayer() *Player {
	if e.current < 0 {
		return nil
	}
	return e.players[e.current]
}

// Turns returns how many turns have been played.
func (e *Engine) Turns() int {
	return e.turns
}

// AdvanceOneTurn moves to the next player round robin, wrapping after the
// last, and plays that player's whole turn. The first call selects the first
// player.
func (e *Engine) AdvanceOneTurn(ctx context.Context) (TurnResult, error) {
	e.markStarted()

	e.current = (e.current + 1) % len(e.players)
	e.turns++
	player := e.players[e.current]

	ctx, span := e.tracer.Start(ctx, "game.turn", trace.WithAttributes(
		attribute.String("game.id", e.gameID),
		attribute.String("player.name", player.Name),
		attribute.String("player.kind", player.Kind.String()),
		attribute.Int("turn", e.turns),
	))
	defer span.End()

	e.events.Publish(TurnStartEvent{Player: player.Name, Turn: e.turns, TotalScore: player.TotalScore})

	result, err := player.TakeTurn(ctx, e.roller, e.events, e.target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("turn %d (%s): %w", e.turns, player.Name, err)
	}

	span.SetAttributes(
		attribute.Int("turn.rolls", len(result.Rolls)),
		attribute.Int("turn.banked", result.Banked),
		attribute.Bool("turn.bust", result.Bust),
		attribute.Int("player.score", player.TotalScore),
	)
	e.logger.Debug("Turn complete",
		"turn", e.turns,
		"player", player.Name,
		"rolls", result.Rolls,
		"banked", result.Banked,
		"bust", result.Bust,
		"score", player.TotalScore)

	return result, nil
}

// IsOver reports whether any player has reached the target score.
func (e *Engine) IsOver() bool {
	for _, p := range e.players {
		if p.TotalScore >= e.target {
			return true
		}
	}
	return false
}

// Winner returns the player with the highest score. Ties go to the player
// earliest in turn order.
func (e *Engine) Winner() *Player {
	winner := e.players[0]
	for _, p := range e.players[1:] {
		if p.TotalScore > winner.TotalScore {
			winner = p
		}
	}
	return winner
}

// Elapsed returns the time since the game started, or zero before it has.
func (e *Engine) Elapsed() time.Duration {
	if !e.started {
		return 0
	}
	return e.clock.Now().Sub(e.startTime)
}

// TimeUp reports whether a time limit is set and has been reached.
func (e *Engine) TimeUp() bool {
	return e.timeLimit > 0 && e.Elapsed() >= e.timeLimit
}

// ShouldContinue reports whether another turn should be played: nobody has
// reached the target and the time limit, if any, has not been reached.
func (e *Engine) ShouldContinue() bool {
	return !e.IsOver() && !e.TimeUp()
}

// Result is the outcome of a finished game.
type Result struct {
	GameID  string
	Winner  *Player
	Score   int
	TimeUp  bool
	Turns   int
	Elapsed time.Duration
}

// Play runs turns until ShouldContinue is false and announces the winner.
// Both the win condition and the time limit are checked between turns
// only; a turn in progress always completes. The context is also checked
// between turns.
func (e *Engine) Play(ctx context.Context) (*Result, error) {
	e.markStarted()

	ctx, span := e.tracer.Start(ctx, "game.play", trace.WithAttributes(
		attribute.String("game.id", e.gameID),
		attribute.Int("game.players", len(e.players)),
		attribute.Int("game.target", e.target),
		attribute.Int64("game.time_limit_ms", e.timeLimit.Milliseconds()),
	))
	defer span.End()

	names := make([]string, len(e.players))
	for i, p := range e.players {
		names[i] = p.Name
	}
	e.logger.Info("Starting game", "players", names, "target", e.target, "timeLimit", e.timeLimit)
	e.events.Publish(GameStartEvent{
		GameID:      e.gameID,
		Players:     names,
		TargetScore: e.target,
		TimeLimit:   e.timeLimit,
	})

	for e.ShouldContinue() {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("game interrupted: %w", err)
		}
		if _, err := e.AdvanceOneTurn(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	winner := e.Winner()
	result := &Result{
		GameID:  e.gameID,
		Winner:  winner,
		Score:   winner.TotalScore,
		TimeUp:  e.TimeUp(),
		Turns:   e.turns,
		Elapsed: e.Elapsed(),
	}

	scores := make([]PlayerScore, len(e.players))
	for i, p := range e.players {
		scores[i] = PlayerScore{Player: p.Name, Score: p.TotalScore}
	}
	e.events.Publish(GameEndEvent{
		GameID: e.gameID,
		Winner: winner.Name,
		Score:  winner.TotalScore,
		TimeUp: result.TimeUp,
		Turns:  e.turns,
		Scores: scores,
	})

	span.SetAttributes(
		attribute.String("game.winner", winner.Name),
		attribute.Int("game.winning_score", winner.TotalScore),
		attribute.Bool("game.time_up", result.TimeUp),
		attribute.Int("game.turns", e.turns),
	)
	e.logger.Info("Game complete",
		"winner", winner.Name,
		"score", winner.TotalScore,
		"turns", e.turns,
		"timeUp", result.TimeUp,
		"elapsed", result.Elapsed)

	return result, nil
}

func (e *Engine) markStarted() {
	if e.started {
		return
	}
	e.started = true
	e.startTime = e.clock.Now()
}
