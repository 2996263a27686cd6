package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan: headings
	colorAccent     = lipgloss.Color("#FFD700") // Gold: scores
	colorSuccess    = lipgloss.Color("#00E676") // Green: valid batches
	colorDanger     = lipgloss.Color("#FF5252") // Red: rejections
	colorMuted      = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray: explanations
)

// Status icons.
const (
	iconOK     = "✓"
	iconFailed = "✗"
	iconTask   = "◆"
	iconArrow  = " → "
)

// styles binds the palette to one renderer so color output follows the
// destination writer rather than stdout.
type styles struct {
	heading lipgloss.Style
	rank    lipgloss.Style
	score   lipgloss.Style
	id      lipgloss.Style
	detail  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Foreground(colorPrimary).Bold(true),
		rank:    r.NewStyle().Foreground(colorMuted).Width(4).Align(lipgloss.Right),
		score:   r.NewStyle().Foreground(colorAccent).Bold(true).Width(7).Align(lipgloss.Right),
		id:      r.NewStyle().Bold(true),
		detail:  r.NewStyle().Foreground(colorMutedLight),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		danger:  r.NewStyle().Foreground(colorDanger).Bold(true),
	}
}
