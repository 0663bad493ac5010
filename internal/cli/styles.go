package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Primary = lipgloss.Color("#00ADD8")
	Success = lipgloss.Color("#00D9A5")
	Error   = lipgloss.Color("#FF5A87")
	Muted   = lipgloss.Color("#6B7B8C")

	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	DoneStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Strikethrough(true)

	PendingStyle = lipgloss.NewStyle().
			Bold(true)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(Muted).
				PaddingLeft(6)

	IDStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)
