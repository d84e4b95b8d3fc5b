package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/ui/theme"
)

// ProgressBar shows how many of a fixed number of steps are done, e.g.
// generated study sections or answered questions.
type ProgressBar struct {
	Label     string
	Done      int
	Total     int
	ShowCount bool
	Width     int
}

// NewProgressBar creates a progress bar for done of total steps.
func NewProgressBar(label string, done, total int, showCount bool, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, ShowCount: showCount, Width: width}
}

// Fraction returns Done/Total clamped to [0, 1]. An empty bar reads 0.
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

// View renders the bar.
func (p ProgressBar) View() string {
	var head, tail string
	if p.Label != "" {
		head = theme.Body.Render(p.Label) + "  "
	}
	if p.ShowCount {
		tail = theme.Dim.Render(fmt.Sprintf("  %d/%d", p.Done, p.Total))
	}

	barWidth := max(p.Width-lipgloss.Width(head)-lipgloss.Width(tail), 4)
	filled := int(float64(barWidth) * p.Fraction())

	return head +
		theme.ProgressFilled.Render(strings.Repeat("█", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		tail
}
