package game

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// PromptFormat is the question put to interactive players.
const PromptFormat = "%s, would you like to roll or hold? (%s/%s): "

// Prompter is the input side of the console: it shows a prompt and blocks
// until a line of input arrives.
type Prompter interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, prompt string) (string, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// InteractivePolicy asks a person for every decision. Unrecognised input is
// answered with an InvalidChoiceEvent and the question is asked again, with
// no retry limit.
type InteractivePolicy struct {
	prompter Prompter
	events   EventBus
	logger   *log.Logger
}

// NewInteractivePolicy creates a policy reading decisions from prompter.
func NewInteractivePolicy(prompter Prompter, events EventBus, logger *log.Logger) *InteractivePolicy {
	if events == nil {
		events = NewEventBus()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &InteractivePolicy{
		prompter: prompter,
		events:   events,
		logger:   logger.WithPrefix("interactive"),
	}
}

// Decide implements Policy. It only fails when the prompter does, for
// example on end of input or a cancelled context.
func (p *InteractivePolicy) Decide(ctx context.Context, state TurnState) (Decision, error) {
	prompt := fmt.Sprintf(PromptFormat, state.PlayerName, RollToken, HoldToken)
	for {
		if err := ctx.Err(); err != nil {
			return Roll, err
		}

		line, err := p.prompter.Prompt(ctx, prompt)
		if err != nil {
			return Roll, fmt.Errorf("reading decision for %s: %w", state.PlayerName, err)
		}

		if decision, ok := ParseDecision(line); ok {
			return decision, nil
		}

		p.logger.Debug("Rejected input", "player", state.PlayerName, "input", line)
		p.events.Publish(NewInvalidChoiceEvent(state.PlayerName, line))
	}
}
