package game

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/pigforbots/internal/dice"
	"github.com/lox/pigforbots/internal/telemetry"
)

// recorder captures every published event.
type recorder struct {
	events []GameEvent
}

func (r *recorder) OnEvent(event GameEvent) {
	r.events = append(r.events, event)
}

// ofType returns the recorded events of one type, in order.
func (r *recorder) ofType(t EventType) []GameEvent {
	var out []GameEvent
	for _, e := range r.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

// lines formats the recorded events the way the console would.
func (r *recorder) lines(opts FormattingOptions) []string {
	f := NewEventFormatter(opts)
	var out []string
	for _, e := range r.events {
		if line, ok := f.Format(e); ok {
			out = append(out, line)
		}
	}
	return out
}

// scriptedPrompter answers prompts from a fixed list of lines and fails with
// io.EOF once they run out.
type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (s *scriptedPrompter) Prompt(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	line := s.answers[0]
	s.answers = s.answers[1:]
	return line, nil
}

// decisionScript is a Policy that replays fixed decisions.
type decisionScript struct {
	decisions []Decision
	seen      []TurnState
}

func (d *decisionScript) Decide(_ context.Context, state TurnState) (Decision, error) {
	d.seen = append(d.seen, state)
	if len(d.decisions) == 0 {
		return Hold, nil
	}
	next := d.decisions[0]
	d.decisions = d.decisions[1:]
	return next, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func mustPlayer(t *testing.T, name string, kind PolicyKind, policy Policy) *Player {
	t.Helper()
	p, err := NewPlayer(name, kind, policy)
	require.NoError(t, err)
	return p
}

// newTestEngine builds an engine with a recording bus, a no-op tracer and a
// fixed game id.
func newTestEngine(t *testing.T, players []*Player, roller dice.Roller, opts ...Option) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)

	base := []Option{
		WithEventBus(bus),
		WithGameID("01h455vb4pex5vsknk084sn02q"),
		WithTracer(telemetry.NoopTracer()),
	}
	engine, err := NewEngine(players, roller, testLogger(), append(base, opts...)...)
	require.NoError(t, err)
	return engine, rec
}
