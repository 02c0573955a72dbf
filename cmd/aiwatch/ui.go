package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	textColor    = lipgloss.Color("#F8FAFC")
	mutedColor   = lipgloss.Color("#94A3B8")

	baseStyle = lipgloss.NewStyle().Foreground(textColor)

	panelStyle = baseStyle.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			Margin(1, 0)

	headerStyle = baseStyle.Foreground(primaryColor).Bold(true)

	thinkingStyle = baseStyle.Foreground(warningColor)
	successStyle  = baseStyle.Foreground(accentColor).Bold(true)
	failStyle     = baseStyle.Foreground(errorColor).Bold(true)
	mutedStyle    = baseStyle.Foreground(mutedColor)
)

// turnRecord is one line of the scrolling ai:turn-complete history.
type turnRecord struct {
	playerID string
	strategy string
	summary  string
	success  bool
}

// dashboard renders the rolling view of bot thinking/turn-complete
// events for one game, grounded on the teacher's cmd/cli UI split
// between connection logic and rendering.
type dashboard struct {
	gameID    string
	thinking  map[string]bool
	history   []turnRecord
	maxRows   int
	termWidth int
}

func newDashboard(gameID string, maxRows int) *dashboard {
	d := &dashboard{gameID: gameID, thinking: make(map[string]bool), maxRows: maxRows}
	d.updateTerminalWidth()
	return d
}

func (d *dashboard) updateTerminalWidth() {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		width = 80
	}
	d.termWidth = width
}

func (d *dashboard) onThinking(playerID string) {
	d.thinking[playerID] = true
}

func (d *dashboard) onTurnComplete(playerID, strategy, summary string, success bool) {
	delete(d.thinking, playerID)
	d.history = append(d.history, turnRecord{playerID: playerID, strategy: strategy, summary: summary, success: success})
	if len(d.history) > d.maxRows {
		d.history = d.history[len(d.history)-d.maxRows:]
	}
}

func (d *dashboard) render() string {
	d.updateTerminalWidth()

	title := headerStyle.Render(fmt.Sprintf("🚆 aiwatch — game %s", d.gameID))

	var lines []string
	lines = append(lines, title, "")

	if len(d.thinking) == 0 {
		lines = append(lines, mutedStyle.Render("no bot currently thinking"))
	} else {
		for playerID := range d.thinking {
			lines = append(lines, thinkingStyle.Render(fmt.Sprintf("⏳ %s is planning a turn...", playerID)))
		}
	}

	lines = append(lines, "", mutedStyle.Render(strings.Repeat("─", min(d.termWidth, 100))), "")

	if len(d.history) == 0 {
		lines = append(lines, mutedStyle.Render("waiting for the first ai:turn-complete event"))
	}
	for i := len(d.history) - 1; i >= 0; i-- {
		lines = append(lines, d.renderRecord(d.history[i]))
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (d *dashboard) renderRecord(r turnRecord) string {
	status := successStyle.Render("✅")
	if !r.success {
		status = failStyle.Render("❌")
	}
	return fmt.Sprintf("%s %-12s [%s] %s", status, r.playerID, r.strategy, r.summary)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}
