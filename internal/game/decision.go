package game

import "strings"

// Decision is a choice made at the start of each step of a turn.
type Decision int

const (
	Roll Decision = iota
	Hold
)

// Tokens accepted from interactive players.
const (
	RollToken = "r"
	HoldToken = "h"
)

// String returns the lower-case verb for the decision.
func (d Decision) String() string {
	switch d {
	case Roll:
		return "roll"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}

// ParseDecision maps an input line to a decision. Only the exact tokens
// RollToken and HoldToken are accepted; the line terminator is ignored but
// any other whitespace or case difference is not.
func ParseDecision(line string) (Decision, bool) {
	switch strings.TrimRight(line, "\r\n") {
	case RollToken:
		return Roll, true
	case HoldToken:
		return Hold, true
	default:
		return Roll, false
	}
}
