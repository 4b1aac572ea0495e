package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorMuted   = lipgloss.Color("#565f89")
	colorBgLight = lipgloss.Color("#24283b")
	colorFg      = lipgloss.Color("#c0caf5")
)

var (
	paneFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(colorPrimary)

	paneUnfocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true).
			Underline(true)

	rowSelectedStyle = lipgloss.NewStyle().
				Background(colorBgLight)

	cellSelectedStyle = lipgloss.NewStyle().
				Reverse(true)

	readOnlyStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	dirtyStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
