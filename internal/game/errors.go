package game

import "fmt"

// GameError is a sentinel error raised by the engine and its collaborators.
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

const (
	ErrTooFewPlayers   GameError = "game needs at least two players"
	ErrNilRoller       GameError = "dice roller cannot be nil"
	ErrNilPolicy       GameError = "policy cannot be nil"
	ErrNilPrompter     GameError = "interactive players need a prompter"
	ErrUnknownDecision GameError = "policy returned an unknown decision"
)

// ConfigurationError reports a setting that cannot be used to build a game.
// It is raised before any game state exists and is not recoverable within
// the run.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
