// Package style provides a functional API for composing lipgloss styles in CLI output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/reelplay/reel/color"
)

// New returns an empty lipgloss.Style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a rendering function that applies the foreground color.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Tag returns a rendering function that wraps a string in a padded colored block.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(fg).Background(bg).Padding(0, 1).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)

// Box renders a titled message inside a rounded border, used for fatal CLI errors.
func Box(title, body string) string {
	box := New().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	return box.Render(lipgloss.JoinVertical(lipgloss.Left,
		New().Bold(true).Foreground(color.HiRed).Render(title),
		"",
		body,
	))
}
