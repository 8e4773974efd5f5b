package game

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/pigforbots/internal/dice"
)

// Player holds a player's identity and scores. Name and Kind never change
// after construction; TotalScore only ever grows, and only on a hold.
type Player struct {
	Name       string
	Kind       PolicyKind
	TurnTotal  int
	TotalScore int

	policy Policy
}

// NewPlayer creates a player driven by policy.
func NewPlayer(name string, kind PolicyKind, policy Policy) (*Player, error) {
	if policy == nil {
		return nil, ErrNilPolicy
	}
	return &Player{Name: name, Kind: kind, policy: policy}, nil
}

// TurnResult summarises one completed turn.
type TurnResult struct {
	Player string
	Rolls  []int
	Banked int  // points added to TotalScore; zero on a bust
	Bust   bool // the turn ended on a 1
}

// TakeTurn plays one full turn: ask the policy, roll or hold, repeat until
// the player holds or rolls a 1. A roll of 1 discards the whole turn total.
// A nil events bus drops events; a nil roller is ErrNilRoller. Otherwise the
// only error source is the policy.
func (p *Player) TakeTurn(ctx context.Context, roller dice.Roller, events EventBus, target int) (TurnResult, error) {
	result := TurnResult{Player: p.Name}
	if roller == nil {
		return result, ErrNilRoller
	}
	if events == nil {
		events = NewEventBus()
	}
	p.TurnTotal = 0

	for {
		decision, err := p.policy.Decide(ctx, p.state(target))
		if err != nil {
			return result, err
		}
		events.Publish(DecisionEvent{
			Player:    p.Name,
			Decision:  decision,
			Automatic: p.Kind.Automatic(),
			TurnTotal: p.TurnTotal,
		})

		switch decision {
		case Hold:
			p.TotalScore += p.TurnTotal
			result.Banked = p.TurnTotal
			events.Publish(HoldEvent{Player: p.Name, Banked: p.TurnTotal, TotalScore: p.TotalScore})
			return result, nil

		case Roll:
			value := roller.Roll()
			result.Rolls = append(result.Rolls, value)
			events.Publish(RollEvent{Player: p.Name, Value: value})

			if value == 1 {
				lost := p.TurnTotal
				p.TurnTotal = 0
				result.Bust = true
				events.Publish(BustEvent{Player: p.Name, Lost: lost, TotalScore: p.TotalScore})
				return result, nil
			}

			p.TurnTotal += value
			events.Publish(TurnProgressEvent{Player: p.Name, TurnTotal: p.TurnTotal, TotalScore: p.TotalScore})

		default:
			return result, fmt.Errorf("%w: %d", ErrUnknownDecision, decision)
		}
	}
}

func (p *Player) state(target int) TurnState {
	return TurnState{
		PlayerName:  p.Name,
		TurnTotal:   p.TurnTotal,
		TotalScore:  p.TotalScore,
		TargetScore: target,
	}
}

// PlayerFactory builds players from policy kind tokens.
type PlayerFactory struct {
	Prompter    Prompter // required for human players
	Events      EventBus // receives invalid-choice notices
	Logger      *log.Logger
	HoldAt      int // baseline threshold; DefaultHoldAt if zero
	AdaptiveCap int // computer cap; DefaultAdaptiveCap if zero
}

// Create parses kind and returns a fresh player. An unknown kind is a
// *ConfigurationError.
func (f PlayerFactory) Create(name, kind string) (*Player, error) {
	k, err := ParsePolicyKind(kind)
	if err != nil {
		return nil, err
	}
	policy, err := f.Policy(k)
	if err != nil {
		return nil, err
	}
	return NewPlayer(name, k, policy)
}

// Policy returns the policy for a kind.
func (f PlayerFactory) Policy(kind PolicyKind) (Policy, error) {
	switch kind {
	case KindHuman:
		if f.Prompter == nil {
			return nil, ErrNilPrompter
		}
		return NewInteractivePolicy(f.Prompter, f.Events, f.Logger), nil
	case KindComputer:
		return AdaptivePolicy{Cap: orDefault(f.AdaptiveCap, DefaultAdaptiveCap)}, nil
	case KindBaseline:
		return ThresholdPolicy{HoldAt: orDefault(f.HoldAt, DefaultHoldAt)}, nil
	default:
		return nil, &ConfigurationError{Field: "player type", Value: string(kind), Reason: "no policy registered"}
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
