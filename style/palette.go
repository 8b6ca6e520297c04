package style

import "github.com/charmbracelet/lipgloss"

// Base palette.
var (
	Base    = lipgloss.Color("#1e1e2e")
	Text    = lipgloss.Color("#cdd6f4")
	Subtext = lipgloss.Color("#a6adc8")
	Overlay = lipgloss.Color("#6c7086")
	Surface = lipgloss.Color("#313244")

	Mauve    = lipgloss.Color("#cba6f7")
	Peach    = lipgloss.Color("#fab387")
	Teal     = lipgloss.Color("#94e2d5")
	Lavender = lipgloss.Color("#b4befe")
)

// ANSI colors for CLI output, where the terminal theme should win.
var (
	Red    = lipgloss.Color("1")
	Green  = lipgloss.Color("2")
	Yellow = lipgloss.Color("3")
	Blue   = lipgloss.Color("4")
	Purple = lipgloss.Color("5")
	Cyan   = lipgloss.Color("6")
	HiRed  = lipgloss.Color("9")
)

// Semantic roles.
var (
	AccentColor  = Mauve
	SuccessColor = lipgloss.Color("#a6e3a1")
	WarningColor = lipgloss.Color("#f9e2af")
	ErrorColor   = lipgloss.Color("#f38ba8")
	FaintColor   = Overlay
)
