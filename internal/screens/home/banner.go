package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/ui/components"
	"github.com/abhisek/eduai/internal/ui/theme"
)

const titleFull = ` ███████╗██████╗ ██╗   ██╗ █████╗ ██╗
 ██╔════╝██╔══██╗██║   ██║██╔══██╗██║
 █████╗  ██║  ██║██║   ██║███████║██║
 ██╔══╝  ██║  ██║██║   ██║██╔══██║██║
 ███████╗██████╔╝╚██████╔╝██║  ██║██║
 ╚══════╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝`

const titleCompact = "E · D · U · A · I"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

func renderModelNote(model string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render("model: " + model)
}

// renderLLMBanner renders a warning banner when no LLM API key is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key to generate material (see eduai --help)")
}

func renderMenu(m components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(m.View())
}

// renderFrame wraps content in a double border, centered in the given area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
