// Package dice provides the six-sided die used by the game.
package dice

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pigforbots/internal/randutil"
)

// Faces is the number of faces on a standard die.
const Faces = 6

// Roller produces die rolls. The engine only depends on this interface so
// tests can script exact sequences.
type Roller interface {
	Roll() int
}

// Die is a fair six-sided die backed by an injected random source.
type Die struct {
	rng   *rand.Rand
	value int
}

// New creates a die that draws from rng.
func New(rng *rand.Rand) *Die {
	return &Die{rng: rng}
}

// NewSeeded creates a die with its own deterministic source.
func NewSeeded(seed int64) *Die {
	return New(randutil.New(seed))
}

// Roll returns a uniformly distributed value in [1, Faces].
func (d *Die) Roll() int {
	d.value = d.rng.IntN(Faces) + 1
	return d.value
}

// Value returns the most recent roll, or 0 if the die has not been rolled.
func (d *Die) Value() int {
	return d.value
}

// Sequence is a Roller that replays fixed values in order. Rolling past the
// end panics, so a test that scripts too few rolls fails at the extra roll.
type Sequence struct {
	values []int
	next   int
}

// NewSequence returns a Roller replaying values. It panics if values is empty
// or holds a value outside [1, Faces].
func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		panic("dice: empty sequence")
	}
	for _, v := range values {
		if v < 1 || v > Faces {
			panic("dice: sequence value out of range")
		}
	}
	return &Sequence{values: values}
}

// Roll returns the next value in the sequence.
func (s *Sequence) Roll() int {
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("dice: sequence exhausted after %d rolls", len(s.values)))
	}
	v := s.values[s.next]
	s.next++
	return v
}

// Remaining reports how many scripted values have not been rolled.
func (s *Sequence) Remaining() int {
	return len(s.values) - s.next
}

// Rolled reports how many values have been consumed.
func (s *Sequence) Rolled() int {
	return s.next
}
