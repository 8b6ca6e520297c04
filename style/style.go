// Package style composes lipgloss styles into plain string renderers.
package style

import "github.com/charmbracelet/lipgloss"

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored returns a style with the given foreground and background.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer that paints its input with c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

// Truncate returns a renderer that wraps its input to max columns.
func Truncate(max int) func(string) string {
	return func(s string) string { return New().Width(max).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)

// Title renders a padded banner.
var Title = func(s string) string {
	return Colored(lipgloss.Color("230"), lipgloss.Color("62")).Padding(0, 1).Render(s)
}

// ErrorTitle renders a padded banner in the error color.
var ErrorTitle = func(s string) string {
	return Colored(lipgloss.Color("230"), Red).Padding(0, 1).Render(s)
}

// Tag renders its input as a small colored badge.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(fg, bg).Padding(0, 1).Render(s) }
}
