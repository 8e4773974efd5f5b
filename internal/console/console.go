// Package console is the terminal front end for a game: it reads decisions
// for interactive players and prints one line per game event.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/pigforbots/internal/game"
)

// Options configures a Console.
type Options struct {
	NoColor    bool
	Formatting game.FormattingOptions
}

// Styles holds the styling for each kind of output line.
type Styles struct {
	Banner  lipgloss.Style
	Prompt  lipgloss.Style
	Turn    lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Winner  lipgloss.Style
}

// NewStyles builds the default palette on renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Banner:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Bold(true),
		Prompt:  r.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Turn:    r.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		Winner:  r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
	}
}

// Console reads lines from in and writes styled lines to out. It implements
// game.Prompter and game.EventSubscriber.
type Console struct {
	in        *bufio.Reader
	out       io.Writer
	styles    Styles
	formatter *game.EventFormatter
	logger    *log.Logger
}

var (
	_ game.Prompter        = (*Console)(nil)
	_ game.EventSubscriber = (*Console)(nil)
)

// New creates a console. Colour is detected from out unless NoColor is set.
func New(in io.Reader, out io.Writer, logger *log.Logger, opts Options) *Console {
	renderer := lipgloss.NewRenderer(out)
	if opts.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Console{
		in:        bufio.NewReader(in),
		out:       out,
		styles:    NewStyles(renderer),
		formatter: game.NewEventFormatter(opts.Formatting),
		logger:    logger.WithPrefix("console"),
	}
}

// Prompt writes prompt and blocks until a full line is read. The line
// terminator is stripped. A final line without a terminator is returned
// as-is; io.EOF is only returned when no input remains.
func (c *Console) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(c.out, c.styles.Prompt.Render(prompt)); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			// Keep the next output off the prompt line.
			fmt.Fprintln(c.out)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// OnEvent prints the event, if it produces any output.
func (c *Console) OnEvent(event game.GameEvent) {
	text, ok := c.formatter.Format(event)
	if !ok {
		return
	}

	style := c.styleFor(event)
	// Styles are applied per line; lipgloss pads multi-line blocks to a
	// common width.
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintln(c.out, style.Render(line)); err != nil {
			c.logger.Warn("Failed to write output", "error", err, "event", event.EventType())
			return
		}
	}
}

func (c *Console) styleFor(event game.GameEvent) lipgloss.Style {
	switch event.EventType() {
	case game.EventTypeGameStart:
		return c.styles.Banner
	case game.EventTypeTurnStart:
		return c.styles.Turn
	case game.EventTypeBust:
		return c.styles.Error
	case game.EventTypeHold:
		return c.styles.Success
	case game.EventTypeInvalidChoice:
		return c.styles.Warning
	case game.EventTypeGameEnd:
		return c.styles.Winner
	default:
		return c.styles.Info
	}
}
