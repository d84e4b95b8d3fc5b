// Package theme holds the colours and lipgloss styles shared by all screens.
package theme

import "charm.land/lipgloss/v2"

// Palette. Chalk colours on a dark slate board.
var (
	Primary   = lipgloss.Color("#38BDF8") // Sky
	Secondary = lipgloss.Color("#A3E635") // Lime
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // Chalk white
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Board
	Border    = lipgloss.Color("#334155") // Frame
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	// Section headings in generated material.
	Heading = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true).
		Underline(true)
)

// Header and footer bars.
var Bar = lipgloss.NewStyle().
	Background(BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Warning flags degraded output, e.g. a test that could not be parsed.
	Warning = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().Foreground(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Foreground(Border)

	Tab       = lipgloss.NewStyle().Foreground(TextDim).Padding(0, 1)
	TabActive = lipgloss.NewStyle().Foreground(BgCard).Background(Primary).Bold(true).Padding(0, 1)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgCard).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
