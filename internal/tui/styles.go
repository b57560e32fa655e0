package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#0071CE", Dark: "#4DA3FF"}
	muted  = lipgloss.AdaptiveColor{Light: "#7B8794", Dark: "#9AA5B1"}
	danger = lipgloss.AdaptiveColor{Light: "#B42318", Dark: "#F97066"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mentorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC220"))
	noticeStyle = lipgloss.NewStyle().Foreground(danger)
	helpStyle   = lipgloss.NewStyle().Foreground(muted)

	spinnerStyle = lipgloss.NewStyle().Foreground(accent)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	buttonBusyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1)
)
