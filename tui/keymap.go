package tui

import (
	"github.com/coursecast/coursecast/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm,
	back,
	up, down, left, right,
	top, bottom,
	playPause, replay,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(style.Peach)("enter"), style.Fg(style.Peach)("confirm")),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case searchState:
		return to2(h(withDescription(k.confirm, "search"), k.forceQuit))
	case loadingState:
		return to2(h(k.back, k.forceQuit))
	case videosState:
		play := withDescription(k.confirm, "play")
		return h(play, k.back), h(play, k.up, k.down, k.top, k.bottom, k.back, k.quit)
	case playState:
		return to2(h(k.playPause, k.replay, k.back, k.quit))
	case errorState:
		return to2(h(k.replay, k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:      k.up,
		CursorDown:    k.down,
		NextPage:      k.right,
		PrevPage:      k.left,
		GoToStart:     k.top,
		GoToEnd:       k.bottom,
		ShowFullHelp:  k.showHelp,
		CloseFullHelp: k.showHelp,
		Quit:          k.quit,
		ForceQuit:     k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
