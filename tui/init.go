package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, b.waitForPlayback()}

	if query := b.inputC.Value(); query != "" {
		b.startLoading("Searching for " + query)
		b.newState(loadingState)
		cmds = append(cmds, b.searchVideos(query), b.spinnerC.Tick)
	}

	return tea.Batch(cmds...)
}
