// Package layout frames a screen between the header and the key-hint footer.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/ui/theme"
)

// Smallest terminal the frame is drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below MinWidth x MinHeight.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Width(width).
		Height(height).
		Render(theme.Warning.Render("Terminal too small") + "\n\n" +
			theme.Body.Render(fmt.Sprintf("Need %dx%d, have %dx%d", MinWidth, MinHeight, width, height)))
}

// RenderHeader draws the app name on the left, the screen title in the
// middle and the curriculum scope on the right. scope may be empty.
func RenderHeader(title, scope string, width int) string {
	inner := max(width-4, 0)
	left := theme.Selected.Render(" eduai")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(scope)
	center := theme.Body.Render(title)

	line := spread(inner, left, center, right)
	return theme.Bar.Width(width).Render(line)
}

// spread lays out three segments so the middle one sits near the centre
// and every gap is at least one column.
func spread(width int, left, center, right string) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gap1 := max((width-cw)/2-lw, 1)
	gap2 := max(width-lw-gap1-cw-rw, 1)
	return left + strings.Repeat(" ", gap1) + center + strings.Repeat(" ", gap2) + right
}

// RenderFooter draws the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = theme.Body.Bold(true).Render(h.Key) + " " + theme.Dim.Render(h.Description)
	}
	return theme.Bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Scope joins the non-empty parts of a curriculum position for display,
// e.g. "ICSE · Class 8 · Physics".
func Scope(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}

// Window returns the [start, end) range of a list of n rows that keeps the
// cursor visible in a viewport of the given height.
func Window(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := min(max(cursor-height/2, 0), n-height)
	return start, start + height
}
