package display

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
)

// StatuslineOptions configures the watch-mode status line.
type StatuslineOptions struct {
	NoColor bool
	// Width is the target line width; 0 means detect from the terminal.
	Width int
}

// Statusline renders the single-line widget text shown in watch mode:
// the summary, a utilization bar when a percentage is known, and the age
// of the data. The line is truncated to the terminal width.
func Statusline(text string, pct *float64, fetchedAt time.Time, isError bool, opts StatuslineOptions) string {
	var parts []string
	parts = append(parts, RenderStatus(text, isError, opts.NoColor))

	if pct != nil && !opts.NoColor {
		parts = append(parts, RenderBar(*pct, 10, UtilizationColor(*pct)))
	}

	if !fetchedAt.IsZero() {
		age := formatAge(time.Since(fetchedAt)) + " ago"
		if opts.NoColor {
			parts = append(parts, age)
		} else {
			parts = append(parts, dimStyle.Render(age))
		}
	}

	line := strings.Join(parts, "  ")

	width := opts.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	return truncateLine(line, width)
}

// TerminalWidth returns the current terminal width, or 80 as a fallback.
func TerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// truncateLine cuts a line to width runes, counting printable runes only so
// ANSI sequences don't eat into the budget.
func truncateLine(line string, width int) string {
	visible := 0
	inEscape := false
	for i, r := range line {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			visible++
			if visible > width {
				return line[:i]
			}
		}
	}
	return line
}
