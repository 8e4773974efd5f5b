package game

import (
	"fmt"
	"strings"
)

// FormattingOptions selects the optional console lines.
type FormattingOptions struct {
	ShowHumanDecisions bool // Echo decisions typed by people, not just automatic ones
	ShowScoreboard     bool // List every player's score under the winner line
}

// EventFormatter turns game events into the lines printed to players.
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter returns a formatter using opts.
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format returns the console text for an event. The boolean is false for
// events that produce no output under the current options.
func (ef *EventFormatter) Format(event GameEvent) (string, bool) {
	switch e := event.(type) {
	case GameStartEvent:
		return ef.FormatGameStart(e), true
	case TurnStartEvent:
		return fmt.Sprintf("It's %s's turn.", e.Player), true
	case DecisionEvent:
		if !e.Automatic && !ef.opts.ShowHumanDecisions {
			return "", false
		}
		return fmt.Sprintf("%s chooses to %s.", e.Player, e.Decision), true
	case RollEvent:
		return fmt.Sprintf("%s rolled a %d", e.Player, e.Value), true
	case TurnProgressEvent:
		return fmt.Sprintf("Turn total is %d and total score is %d", e.TurnTotal, e.TotalScore), true
	case BustEvent:
		return "No points added, your turn is over.", true
	case HoldEvent:
		return fmt.Sprintf("%s holds. Total score is %d", e.Player, e.TotalScore), true
	case InvalidChoiceEvent:
		return fmt.Sprintf("Invalid choice. Please enter '%s' to roll or '%s' to hold.", RollToken, HoldToken), true
	case GameEndEvent:
		return ef.FormatGameEnd(e), true
	default:
		return "", false
	}
}

// FormatGameStart formats the banner printed before the first turn.
func (ef *EventFormatter) FormatGameStart(event GameStartEvent) string {
	if event.TimeLimit > 0 {
		return fmt.Sprintf("Pig Game Starting! (%s time limit)", event.TimeLimit)
	}
	return "Pig Game Starting!"
}

// FormatGameEnd formats the winner announcement.
func (ef *EventFormatter) FormatGameEnd(event GameEndEvent) string {
	var b strings.Builder
	if event.TimeUp {
		b.WriteString("Time's up! ")
	}
	fmt.Fprintf(&b, "%s wins with a score of %d!", event.Winner, event.Score)

	if ef.opts.ShowScoreboard {
		for _, s := range event.Scores {
			fmt.Fprintf(&b, "\n  %s: %d", s.Player, s.Score)
		}
	}
	return b.String()
}
