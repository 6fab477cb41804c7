package tui

import "github.com/charmbracelet/lipgloss"

// Tokyonight-ish palette shared across the TUI
var (
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorAccent  = lipgloss.Color("#bb9af7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorError   = lipgloss.Color("#f7768e")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	userTextStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			PaddingLeft(2)

	citationStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			PaddingLeft(2)

	metricsStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true).
			PaddingLeft(2)

	feedbackStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Padding(0, 1)

	inputBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorTextDim)
)
