// Package simulator plays series of silent games between automatic
// strategies and reports how often each one wins.
package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/pigforbots/internal/dice"
	"github.com/lox/pigforbots/internal/fileutil"
	"github.com/lox/pigforbots/internal/game"
	"github.com/lox/pigforbots/internal/randutil"
	"github.com/lox/pigforbots/internal/statistics"
	"github.com/lox/pigforbots/internal/telemetry"
)

// Config holds configuration for running simulations
type Config struct {
	Games       int
	Kinds       [statistics.Seats]string // policy kind per seat
	Seed        int64
	TargetScore int
	HoldAt      int
	AdaptiveCap int
	Logger      *log.Logger
}

// Simulator runs strategy-vs-strategy series
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration. Only automatic
// kinds can be simulated.
func New(config Config) (*Simulator, error) {
	if config.Games <= 0 {
		return nil, &game.ConfigurationError{Field: "games", Value: fmt.Sprint(config.Games), Reason: "must be positive"}
	}
	for _, k := range config.Kinds {
		kind, err := game.ParsePolicyKind(k)
		if err != nil {
			return nil, err
		}
		if !kind.Automatic() {
			return nil, &game.ConfigurationError{Field: "player type", Value: k, Reason: "simulated players must be automatic"}
		}
	}
	if config.TargetScore <= 0 {
		config.TargetScore = game.DefaultTargetScore
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}

	return &Simulator{
		config: config,
		logger: config.Logger.WithPrefix("simulator"),
	}, nil
}

// SeatName returns the display name of a seat.
func (s *Simulator) SeatName(seat int) string {
	return fmt.Sprintf("Player %d (%s)", seat+1, s.config.Kinds[seat])
}

// Run plays the configured number of games. Game i uses seed Seed+i, and the
// seat that rolls first alternates so neither strategy keeps the first-move
// advantage.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}
	quiet := log.New(io.Discard)

	for i := 0; i < s.config.Games; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted after %d games: %w", i, err)
		}

		result, err := s.playGame(ctx, s.config.Seed+int64(i), i%statistics.Seats, quiet)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		stats.Add(result)
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Debug("Simulation complete",
		"games", stats.Games,
		"wins", stats.Wins,
		"meanTurns", stats.MeanTurns())

	return stats, nil
}

// playGame plays one game with first taking the opening turn.
func (s *Simulator) playGame(ctx context.Context, seed int64, first int, quiet *log.Logger) (statistics.GameResult, error) {
	factory := game.PlayerFactory{
		Logger:      quiet,
		HoldAt:      s.config.HoldAt,
		AdaptiveCap: s.config.AdaptiveCap,
	}

	seats := make([]*game.Player, statistics.Seats)
	for i, kind := range s.config.Kinds {
		p, err := factory.Create(s.SeatName(i), kind)
		if err != nil {
			return statistics.GameResult{}, err
		}
		seats[i] = p
	}

	order := make([]*game.Player, 0, statistics.Seats)
	for i := range seats {
		order = append(order, seats[(first+i)%statistics.Seats])
	}

	engine, err := game.NewEngine(order, dice.New(randutil.New(seed)), quiet,
		game.WithTargetScore(s.config.TargetScore),
		game.WithTracer(telemetry.NoopTracer()),
	)
	if err != nil {
		return statistics.GameResult{}, err
	}

	res, err := engine.Play(ctx)
	if err != nil {
		return statistics.GameResult{}, err
	}

	winner := 0
	if res.Winner == seats[1] {
		winner = 1
	}
	s.logger.Debug("Game complete", "seed", seed, "winner", res.Winner.Name, "turns", res.Turns)

	return statistics.GameResult{
		Seed:      seed,
		FirstSeat: first,
		Winner:    winner,
		Margin:    seats[winner].TotalScore - seats[1-winner].TotalScore,
		Turns:     res.Turns,
	}, nil
}

// PrintSummary writes the win ratios and game length figures for a series.
func (s *Simulator) PrintSummary(w io.Writer, stats *statistics.Statistics) {
	fmt.Fprintf(w, "Games played: %d (target %d)\n", stats.Games, s.config.TargetScore)
	for seat := range statistics.Seats {
		low, high := stats.WinRateInterval95(seat)
		fmt.Fprintf(w, "%s: %s  95%% CI [%.1f%%, %.1f%%]\n",
			s.SeatName(seat), stats.Ratio(seat), low*100, high*100)
	}
	fmt.Fprintf(w, "First mover won %.1f%% of games\n", stats.FirstMoverRate()*100)
	fmt.Fprintf(w, "Turns per game: mean %.1f, median %.1f, std dev %.1f, P95 %.0f\n",
		stats.MeanTurns(), stats.MedianTurns(), stats.TurnsStdDev(), stats.Percentile(0.95))
	fmt.Fprintf(w, "Mean winning margin: %.1f points\n", stats.MeanMargin())
}

// SeatReport is one seat's line in a Report.
type SeatReport struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
	CILow   float64 `json:"ci95_low"`
	CIHigh  float64 `json:"ci95_high"`
}

// Report is the machine-readable summary of a series.
type Report struct {
	Games          int          `json:"games"`
	Seed           int64        `json:"seed"`
	TargetScore    int          `json:"target_score"`
	Seats          []SeatReport `json:"seats"`
	FirstMoverRate float64      `json:"first_mover_rate"`
	MeanTurns      float64      `json:"mean_turns"`
	MedianTurns    float64      `json:"median_turns"`
	MeanMargin     float64      `json:"mean_margin"`
}

// Report summarises stats for writing to disk.
func (s *Simulator) Report(stats *statistics.Statistics) Report {
	r := Report{
		Games:          stats.Games,
		Seed:           s.config.Seed,
		TargetScore:    s.config.TargetScore,
		FirstMoverRate: stats.FirstMoverRate(),
		MeanTurns:      stats.MeanTurns(),
		MedianTurns:    stats.MedianTurns(),
		MeanMargin:     stats.MeanMargin(),
	}
	for seat := range statistics.Seats {
		low, high := stats.WinRateInterval95(seat)
		r.Seats = append(r.Seats, SeatReport{
			Name:    s.SeatName(seat),
			Kind:    s.config.Kinds[seat],
			Wins:    stats.Wins[seat],
			WinRate: stats.WinRate(seat),
			CILow:   low,
			CIHigh:  high,
		})
	}
	return r
}

// WriteReport writes the series summary to filename as JSON, replacing any
// existing file atomically.
func (s *Simulator) WriteReport(filename string, stats *statistics.Statistics) error {
	return fileutil.WriteJSONAtomic(filename, s.Report(stats), 0o644)
}
