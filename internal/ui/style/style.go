package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Buys
	Red     = lipgloss.Color("#FF5555") // Sells
	Base01  = lipgloss.Color("#6C7280") // Muted text
	Base2   = lipgloss.Color("#ECEFF4") // Primary text
)

// Styles groups the styles the CLI renders with.
type Styles struct {
	Box   lipgloss.Style
	Title lipgloss.Style
	Key   lipgloss.Style
	Value lipgloss.Style
	Muted lipgloss.Style
	Buy   lipgloss.Style
	Sell  lipgloss.Style
	Event lipgloss.Style
	Warn  lipgloss.Style
}

// DefaultStyles returns the CLI styles.
func DefaultStyles() Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		Key: lipgloss.NewStyle().
			Foreground(Base01),
		Value: lipgloss.NewStyle().
			Foreground(Base2),
		Muted: lipgloss.NewStyle().
			Foreground(Base01),
		Buy: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),
		Sell: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),
		Event: lipgloss.NewStyle().
			Foreground(Magenta).
			Bold(true),
		Warn: lipgloss.NewStyle().
			Foreground(Yellow),
	}
}

// Row is one key/value line of a panel.
type Row struct {
	Key   string
	Value string
}

// Panel renders a titled bordered block of aligned key/value rows.
func (s Styles) Panel(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Key))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, s.Title.Render(title))
	for _, r := range rows {
		key := s.Key.Width(width + 2).Render(r.Key)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, key, s.Value.Render(r.Value)))
	}
	return s.Box.Render(strings.Join(lines, "\n"))
}

// Side renders a trade direction label.
func (s Styles) Side(isBuy bool) string {
	if isBuy {
		return s.Buy.Render("BUY ")
	}
	return s.Sell.Render("SELL")
}
