package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Seats is the number of players in a simulated series.
const Seats = 2

// GameResult represents the outcome of a single simulated game
type GameResult struct {
	Seed      int64 // RNG seed for this game (for replay)
	FirstSeat int   // Seat that took the first turn
	Winner    int   // Winning seat
	Margin    int   // Winner's score minus the loser's
	Turns     int   // Turns played across both seats
}

// Statistics tracks win ratios and game lengths for a two-seat series
type Statistics struct {
	Games     int
	Wins      [Seats]int
	SumTurns  float64
	SumTurns2 float64 // Sum of squares for variance calculation
	Turns     []int   // Store all lengths for median/percentile calculation

	FirstMoverWins int // Games won by the seat that rolled first
	SumMargin      int
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	s.Games++
	if result.Winner >= 0 && result.Winner < Seats {
		s.Wins[result.Winner]++
	}
	if result.Winner == result.FirstSeat {
		s.FirstMoverWins++
	}
	s.SumMargin += result.Margin

	turns := float64(result.Turns)
	s.SumTurns += turns
	s.SumTurns2 += turns * turns
	s.Turns = append(s.Turns, result.Turns)
}

// WinRate returns the fraction of games won by seat
func (s *Statistics) WinRate(seat int) float64 {
	if s.Games == 0 || seat < 0 || seat >= Seats {
		return 0
	}
	return float64(s.Wins[seat]) / float64(s.Games)
}

// Ratio formats a seat's wins as "wins/games (pct%)".
func (s *Statistics) Ratio(seat int) string {
	wins := 0
	if seat >= 0 && seat < Seats {
		wins = s.Wins[seat]
	}
	return fmt.Sprintf("%d/%d (%0.1f%%)", wins, s.Games, s.WinRate(seat)*100)
}

// WinRateInterval95 returns the normal-approximation 95% confidence interval
// for a seat's win rate, clamped to [0, 1].
func (s *Statistics) WinRateInterval95(seat int) (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	p := s.WinRate(seat)
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Games))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// FirstMoverRate returns the fraction of games won by whoever rolled first
func (s *Statistics) FirstMoverRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.FirstMoverWins) / float64(s.Games)
}

// MeanMargin returns the average winning margin in points
func (s *Statistics) MeanMargin() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.SumMargin) / float64(s.Games)
}

// MeanTurns returns the average game length in turns
func (s *Statistics) MeanTurns() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumTurns / float64(s.Games)
}

// TurnsVariance returns the sample variance of game lengths
func (s *Statistics) TurnsVariance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.MeanTurns()
	return (s.SumTurns2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// TurnsStdDev returns the sample standard deviation of game lengths
func (s *Statistics) TurnsStdDev() float64 {
	return math.Sqrt(s.TurnsVariance())
}

// MedianTurns returns the median game length
func (s *Statistics) MedianTurns() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the game length at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Turns) == 0 {
		return 0
	}
	sorted := make([]int, len(s.Turns))
	copy(sorted, s.Turns)
	sort.Ints(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return float64(sorted[len(sorted)-1])
	}

	weight := index - float64(lower)
	return float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	totalWins := 0
	for _, w := range s.Wins {
		totalWins += w
	}
	if totalWins != s.Games {
		return fmt.Errorf("total wins (%d) does not match games played (%d)", totalWins, s.Games)
	}

	if len(s.Turns) != s.Games {
		return fmt.Errorf("turns array length (%d) does not match games count (%d)",
			len(s.Turns), s.Games)
	}

	if s.FirstMoverWins > s.Games {
		return fmt.Errorf("first mover wins (%d) exceeds games played (%d)", s.FirstMoverWins, s.Games)
	}

	return nil
}
