package tui

import (
	"strings"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/internal/ui"
	"github.com/coursecast/coursecast/query"
)

var notify = ui.Notify

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case playbackLoadingMsg, playbackReadyMsg, playbackFatalMsg, playbackTransitionMsg:
		return b, tea.Batch(append(cmds, b.handlePlayback(msg), b.waitForPlayback())...)
	case playerExitedMsg:
		if msg.window == b.window {
			b.guard.Destroy()
			b.window = nil
			if b.state == playState || b.state == errorState {
				b.setState(videosState)
			}
			cmds = append(cmds, notify("player closed"))
		}
		return b, tea.Batch(cmds...)
	case error:
		b.stopLoading()
		b.raiseError(msg)
		return b, tea.Batch(cmds...)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			b.stopPlayback()
			b.cancel()
			return b, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch b.state {
	case searchState:
		cmd = b.updateSearch(msg)
	case loadingState:
		cmd = b.updateLoading(msg)
	case videosState:
		cmd = b.updateVideos(msg)
	case playState:
		cmd = b.updatePlay(msg)
	case errorState:
		cmd = b.updateError(msg)
	}

	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateSearch(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.confirm) {
		q := strings.TrimSpace(b.inputC.Value())
		if q == "" {
			return nil
		}

		b.startLoading("Searching for " + q)
		b.newState(loadingState)
		return tea.Batch(b.searchVideos(q), b.spinnerC.Tick)
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case videosFoundMsg:
		b.stopLoading()

		if len(msg) == 0 {
			b.setState(searchState)
			return notify(icon.Get(icon.Fail) + " no videos found")
		}

		b.inputC.SetSuggestions(query.SuggestMany(""))
		b.setState(videosState)
		return b.setVideos(msg)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.back) {
			b.stopLoading()
			b.setState(searchState)
		}
		return nil
	}

	var cmd tea.Cmd
	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateVideos(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.videosC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			return b.play(item.video)
		case bubblesKey.Matches(msg, b.keymap.back):
			b.setState(searchState)
			return nil
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.stopPlayback()
			b.cancel()
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	b.videosC, cmd = b.videosC.Update(msg)
	return cmd
}

func (b *statefulBubble) updatePlay(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.playPause):
			if b.window != nil {
				if err := b.window.TogglePause(); err != nil {
					return notify(err.Error())
				}
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.replay):
			if b.window == nil {
				return nil
			}
			return b.attach()
		case bubblesKey.Matches(msg, b.keymap.back):
			b.stopPlayback()
			b.setState(videosState)
			return nil
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.stopPlayback()
			b.cancel()
			return tea.Quit
		}
		return nil
	}

	if !b.playbackLoading {
		return nil
	}

	var cmd tea.Cmd
	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.replay):
			if b.window == nil || b.selectedVideo == nil {
				return nil
			}
			return b.attach()
		case bubblesKey.Matches(msg, b.keymap.back):
			b.stopPlayback()
			b.lastError = nil
			b.previousState()
			if b.state == playState {
				b.setState(videosState)
			}
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.stopPlayback()
			b.cancel()
			return tea.Quit
		}
	}
	return nil
}
