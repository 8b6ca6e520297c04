// Package tui is the interactive host: search for a video, pick one and
// watch it in a player window while the playback controller reports
// progress.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/provider"
)

type Options struct {
	// Providers are searched together.
	Providers []*provider.Provider

	// Query starts a search immediately.
	Query string

	// MediaBase resolves relative descriptor URLs.
	MediaBase string

	// NewWindow creates the player window for a video.
	NewWindow func() (player.Window, error)

	// Guard options; the observer is always the UI.
	Guard []playback.Option
}

func Run(options *Options) error {
	bubble := newBubble(options)
	defer bubble.stopPlayback()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
