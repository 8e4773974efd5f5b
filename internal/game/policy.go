package game

import (
	"context"
	"strings"
)

// Default policy parameters.
const (
	DefaultTargetScore = 100
	DefaultHoldAt      = 20
	DefaultAdaptiveCap = 25
)

// TurnState is the read-only view a policy decides from.
type TurnState struct {
	PlayerName  string
	TurnTotal   int
	TotalScore  int
	TargetScore int
}

// Policy decides whether the player keeps rolling. Policies never mutate
// game state; the player applies the decision.
type Policy interface {
	Decide(ctx context.Context, state TurnState) (Decision, error)
}

// PolicyKind names a built-in policy.
type PolicyKind string

const (
	KindHuman    PolicyKind = "human"
	KindComputer PolicyKind = "computer"
	KindBaseline PolicyKind = "baseline"
)

// PolicyKinds lists every valid kind, in the order shown to users.
var PolicyKinds = []PolicyKind{KindHuman, KindComputer, KindBaseline}

// ParsePolicyKind validates a player type token.
func ParsePolicyKind(s string) (PolicyKind, error) {
	for _, k := range PolicyKinds {
		if string(k) == s {
			return k, nil
		}
	}
	names := make([]string, len(PolicyKinds))
	for i, k := range PolicyKinds {
		names[i] = string(k)
	}
	return "", &ConfigurationError{
		Field:  "player type",
		Value:  s,
		Reason: "expected one of " + strings.Join(names, ", "),
	}
}

// Automatic reports whether the kind decides without asking anyone.
func (k PolicyKind) Automatic() bool {
	return k != KindHuman
}

func (k PolicyKind) String() string {
	return string(k)
}

// ThresholdPolicy rolls until the turn total reaches HoldAt, whatever the
// banked score.
type ThresholdPolicy struct {
	HoldAt int
}

// Decide implements Policy.
func (p ThresholdPolicy) Decide(_ context.Context, state TurnState) (Decision, error) {
	if state.TurnTotal >= p.HoldAt {
		return Hold, nil
	}
	return Roll, nil
}

// AdaptivePolicy holds once the turn total covers the points still needed to
// win, but never risks more than Cap points in one turn.
type AdaptivePolicy struct {
	Cap int
}

// Decide implements Policy.
func (p AdaptivePolicy) Decide(_ context.Context, state TurnState) (Decision, error) {
	if state.TurnTotal >= AdaptiveThreshold(state.TotalScore, state.TargetScore, p.Cap) {
		return Hold, nil
	}
	return Roll, nil
}

// AdaptiveThreshold returns min(limit, target-totalScore).
func AdaptiveThreshold(totalScore, target, limit int) int {
	return min(limit, target-totalScore)
}
