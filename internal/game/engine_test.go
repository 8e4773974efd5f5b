package game

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/lox/pigforbots/internal/dice"
	"github.com/lox/pigforbots/internal/gameid"
)

// alwaysHold banks immediately, so scores never move.
type alwaysHold struct{}

func (alwaysHold) Decide(context.Context, TurnState) (Decision, error) { return Hold, nil }

// ticking advances a mock clock on every decision before delegating.
type ticking struct {
	clock *quartz.Mock
	step  time.Duration
	next  Policy
}

func (p ticking) Decide(ctx context.Context, state TurnState) (Decision, error) {
	p.clock.Advance(p.step)
	return p.next.Decide(ctx, state)
}

func TestNewEngineValidation(t *testing.T) {
	one := []*Player{mustPlayer(t, "A", KindBaseline, alwaysHold{})}
	two := []*Player{
		mustPlayer(t, "A", KindBaseline, alwaysHold{}),
		mustPlayer(t, "B", KindBaseline, alwaysHold{}),
	}

	_, err := NewEngine(one, dice.NewSequence(1), testLogger())
	assert.ErrorIs(t, err, ErrTooFewPlayers)

	_, err = NewEngine(two, nil, testLogger())
	assert.ErrorIs(t, err, ErrNilRoller)

	var cfgErr *ConfigurationError
	_, err = NewEngine(two, dice.NewSequence(1), testLogger(), WithTargetScore(-5))
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewEngine(two, dice.NewSequence(1), testLogger(), WithTimeLimit(-time.Second))
	assert.ErrorAs(t, err, &cfgErr)

	e, err := NewEngine(two, dice.NewSequence(1), nil)
	require.NoError(t, err)
	assert.NoError(t, gameid.Validate(e.GameID()))
}

func TestAdvanceOneTurnRoundRobin(t *testing.T) {
	players := []*Player{
		mustPlayer(t, "A", KindBaseline, alwaysHold{}),
		mustPlayer(t, "B", KindBaseline, alwaysHold{}),
		mustPlayer(t, "C", KindBaseline, alwaysHold{}),
	}
	engine, _ := newTestEngine(t, players, dice.NewSequence(2))
	assert.Nil(t, engine.CurrentPlayer())

	var order []string
	for i := 0; i < 7; i++ {
		result, err := engine.AdvanceOneTurn(context.Background())
		require.NoError(t, err)
		order = append(order, result.Player)
		assert.Equal(t, result.Player, engine.CurrentPlayer().Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C", "A"}, order)
	assert.Equal(t, 7, engine.Turns())
}

func TestIsOver(t *testing.T) {
	a := mustPlayer(t, "A", KindBaseline, alwaysHold{})
	b := mustPlayer(t, "B", KindBaseline, alwaysHold{})
	engine, _ := newTestEngine(t, []*Player{a, b}, dice.NewSequence(2))

	assert.False(t, engine.IsOver())
	b.TotalScore = 99
	assert.False(t, engine.IsOver())
	b.TotalScore = 100
	assert.True(t, engine.IsOver())
	b.TotalScore = 112
	assert.True(t, engine.IsOver())
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   string
	}{
		{"clear leader first", []int{100, 97}, "A"},
		{"clear leader second", []int{97, 100}, "B"},
		{"tie goes to earlier player", []int{100, 100}, "A"},
		{"all zero", []int{0, 0, 0}, "A"},
		{"tie among later players", []int{10, 40, 40}, "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := make([]*Player, len(tt.scores))
			for i, s := range tt.scores {
				players[i] = mustPlayer(t, string(rune('A'+i)), KindBaseline, alwaysHold{})
				players[i].TotalScore = s
			}
			engine, _ := newTestEngine(t, players, dice.NewSequence(2))
			assert.Equal(t, tt.want, engine.Winner().Name)
		})
	}
}

func TestPlayStopsAfterTargetReached(t *testing.T) {
	a := mustPlayer(t, "Player 1", KindBaseline, ThresholdPolicy{HoldAt: 5})
	b := mustPlayer(t, "Player 2", KindBaseline, ThresholdPolicy{HoldAt: 5})
	a.TotalScore = 95
	b.TotalScore = 99

	engine, rec := newTestEngine(t, []*Player{a, b}, dice.NewSequence(6))
	result, err := engine.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Player 1", result.Winner.Name)
	assert.Equal(t, 101, result.Score)
	assert.Equal(t, 1, result.Turns)
	assert.False(t, result.TimeUp)

	// Player 2 never gets another turn once the threshold is crossed.
	assert.Len(t, rec.ofType(EventTypeTurnStart), 1)
	assert.Equal(t, 99, b.TotalScore)
}

func TestPlayChecksWinAfterEveryTurnWithManyPlayers(t *testing.T) {
	players := []*Player{
		mustPlayer(t, "A", KindBaseline, alwaysHold{}),
		mustPlayer(t, "B", KindBaseline, ThresholdPolicy{HoldAt: 6}),
		mustPlayer(t, "C", KindBaseline, ThresholdPolicy{HoldAt: 6}),
	}
	players[1].TotalScore = 94

	engine, rec := newTestEngine(t, players, dice.NewSequence(6))
	result, err := engine.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "B", result.Winner.Name)
	assert.Equal(t, 2, result.Turns)
	starts := rec.ofType(EventTypeTurnStart)
	require.Len(t, starts, 2)
	assert.Equal(t, "B", starts[1].(TurnStartEvent).Player)
	assert.Zero(t, players[2].TotalScore)
}

func TestPlayTranscript(t *testing.T) {
	bus := NewEventBus()
	rec := &recorder{}
	bus.Subscribe(rec)

	prompter := &scriptedPrompter{answers: []string{"r", "x", "h"}}
	p1 := mustPlayer(t, "Player 1", KindHuman, NewInteractivePolicy(prompter, bus, testLogger()))
	p2 := mustPlayer(t, "Player 2", KindComputer, AdaptivePolicy{Cap: 25})
	p2.TotalScore = 96

	engine, err := NewEngine([]*Player{p1, p2}, dice.NewSequence(4, 2, 3), testLogger(),
		WithEventBus(bus), WithGameID("01h455vb4pex5vsknk084sn02q"))
	require.NoError(t, err)

	result, err := engine.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Player 2", result.Winner.Name)
	assert.Equal(t, 101, result.Score)

	assert.Equal(t, []string{
		"Pig Game Starting!",
		"It's Player 1's turn.",
		"Player 1 rolled a 4",
		"Turn total is 4 and total score is 0",
		"Invalid choice. Please enter 'r' to roll or 'h' to hold.",
		"Player 1 holds. Total score is 4",
		"It's Player 2's turn.",
		"Player 2 chooses to roll.",
		"Player 2 rolled a 2",
		"Turn total is 2 and total score is 96",
		"Player 2 chooses to roll.",
		"Player 2 rolled a 3",
		"Turn total is 5 and total score is 96",
		"Player 2 chooses to hold.",
		"Player 2 holds. Total score is 101",
		"Player 2 wins with a score of 101!",
	}, rec.lines(FormattingOptions{}))
}

func TestPlayTimedStopsBetweenTurns(t *testing.T) {
	clock := quartz.NewMock(t)
	players := []*Player{
		mustPlayer(t, "Player 1", KindBaseline, ticking{clock: clock, step: 25 * time.Second, next: alwaysHold{}}),
		mustPlayer(t, "Player 2", KindBaseline, ticking{clock: clock, step: 25 * time.Second, next: alwaysHold{}}),
	}

	engine, rec := newTestEngine(t, players, dice.NewSequence(3),
		WithClock(clock), WithTimeLimit(60*time.Second))
	result, err := engine.Play(context.Background())
	require.NoError(t, err)

	// 25s, 50s, 75s: the third turn crosses the limit and is the last.
	assert.Equal(t, 3, result.Turns)
	assert.True(t, result.TimeUp)
	assert.Equal(t, 75*time.Second, result.Elapsed)
	assert.Equal(t, "Player 1", result.Winner.Name)

	lines := rec.lines(FormattingOptions{})
	assert.Equal(t, "Pig Game Starting! (1m0s time limit)", lines[0])
	assert.Equal(t, "Time's up! Player 1 wins with a score of 0!", lines[len(lines)-1])
}

func TestPlayTimedLetsTurnInProgressFinish(t *testing.T) {
	clock := quartz.NewMock(t)
	slow := ticking{
		clock: clock,
		step:  40 * time.Second,
		next:  &decisionScript{decisions: []Decision{Roll, Roll, Hold}},
	}
	players := []*Player{
		mustPlayer(t, "Player 1", KindBaseline, slow),
		mustPlayer(t, "Player 2", KindBaseline, alwaysHold{}),
	}

	engine, _ := newTestEngine(t, players, dice.NewSequence(5, 4),
		WithClock(clock), WithTimeLimit(60*time.Second))
	result, err := engine.Play(context.Background())
	require.NoError(t, err)

	// The deadline passed during the first turn, which still banked its 9.
	assert.Equal(t, 1, result.Turns)
	assert.True(t, result.TimeUp)
	assert.Equal(t, 9, players[0].TotalScore)
	assert.Equal(t, "Player 1", result.Winner.Name)
	assert.Equal(t, 9, result.Score)
}

func TestPlayTimedReportsLeader(t *testing.T) {
	clock := quartz.NewMock(t)
	players := []*Player{
		mustPlayer(t, "Player 1", KindBaseline, ticking{clock: clock, step: 10 * time.Second, next: alwaysHold{}}),
		mustPlayer(t, "Player 2", KindBaseline, ticking{clock: clock, step: 10 * time.Second, next: ThresholdPolicy{HoldAt: 1}}),
	}
	engine, _ := newTestEngine(t, players, dice.NewSequence(6),
		WithClock(clock), WithTimeLimit(30*time.Second))

	result, err := engine.Play(context.Background())
	require.NoError(t, err)
	assert.True(t, result.TimeUp)
	assert.Equal(t, "Player 2", result.Winner.Name)
	assert.Equal(t, 6, result.Score)
}

func TestPlayUntimedIgnoresClock(t *testing.T) {
	clock := quartz.NewMock(t)
	players := []*Player{
		mustPlayer(t, "Player 1", KindBaseline, ticking{clock: clock, step: time.Hour, next: ThresholdPolicy{HoldAt: 20}}),
		mustPlayer(t, "Player 2", KindBaseline, ThresholdPolicy{HoldAt: 20}),
	}
	engine, _ := newTestEngine(t, players, dice.NewSeeded(7), WithClock(clock))

	result, err := engine.Play(context.Background())
	require.NoError(t, err)
	assert.False(t, result.TimeUp)
	assert.GreaterOrEqual(t, result.Score, DefaultTargetScore)
}

func TestPlaySeededGameIsReproducible(t *testing.T) {
	play := func() *Result {
		players := []*Player{
			mustPlayer(t, "Player 1", KindComputer, AdaptivePolicy{Cap: 25}),
			mustPlayer(t, "Player 2", KindBaseline, ThresholdPolicy{HoldAt: 20}),
		}
		engine, _ := newTestEngine(t, players, dice.NewSeeded(31337))
		result, err := engine.Play(context.Background())
		require.NoError(t, err)
		return result
	}

	first, second := play(), play()
	assert.Equal(t, first.Winner.Name, second.Winner.Name)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Turns, second.Turns)
	assert.GreaterOrEqual(t, first.Score, DefaultTargetScore)
}

func TestPlayScoresNeverDecrease(t *testing.T) {
	players := []*Player{
		mustPlayer(t, "Player 1", KindComputer, AdaptivePolicy{Cap: 25}),
		mustPlayer(t, "Player 2", KindBaseline, ThresholdPolicy{HoldAt: 20}),
	}
	engine, rec := newTestEngine(t, players, dice.NewSeeded(99))
	_, err := engine.Play(context.Background())
	require.NoError(t, err)

	last := map[string]int{}
	for _, ev := range rec.ofType(EventTypeHold) {
		hold := ev.(HoldEvent)
		assert.Equal(t, last[hold.Player]+hold.Banked, hold.TotalScore)
		last[hold.Player] = hold.TotalScore
	}
	for _, p := range players {
		assert.Equal(t, last[p.Name], p.TotalScore)
	}
}

func TestPlayCancelledContext(t *testing.T) {
	players := []*Player{
		mustPlayer(t, "A", KindBaseline, alwaysHold{}),
		mustPlayer(t, "B", KindBaseline, alwaysHold{}),
	}
	engine, rec := newTestEngine(t, players, dice.NewSequence(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.ofType(EventTypeTurnStart))
	assert.Empty(t, rec.ofType(EventTypeGameEnd))
}

func TestPlayPropagatesInputErrors(t *testing.T) {
	players := []*Player{
		mustPlayer(t, "Player 1", KindHuman, NewInteractivePolicy(&scriptedPrompter{answers: []string{"r"}}, nil, testLogger())),
		mustPlayer(t, "Player 2", KindComputer, AdaptivePolicy{Cap: 25}),
	}
	engine, _ := newTestEngine(t, players, dice.NewSequence(4))

	_, err := engine.Play(context.Background())
	require.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "turn 1 (Player 1)")
}

func TestPlayRecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	players := []*Player{
		mustPlayer(t, "Player 1", KindBaseline, ThresholdPolicy{HoldAt: 20}),
		mustPlayer(t, "Player 2", KindComputer, AdaptivePolicy{Cap: 25}),
	}
	engine, _ := newTestEngine(t, players, dice.NewSeeded(5), WithTracer(tp.Tracer("test")))
	result, err := engine.Play(context.Background())
	require.NoError(t, err)

	turns, plays := 0, 0
	for _, span := range sr.Ended() {
		switch span.Name() {
		case "game.turn":
			turns++
			assert.True(t, span.Parent().IsValid(), "turn spans are children of the game span")
		case "game.play":
			plays++
		}
	}
	assert.Equal(t, 1, plays)
	assert.Equal(t, result.Turns, turns)
}
