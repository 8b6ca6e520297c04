package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/internal/ui"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/query"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/util"
)

type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	spinnerC spinner.Model
	inputC   textinput.Model
	videosC  list.Model
	helpC    help.Model

	ctx    context.Context
	cancel context.CancelFunc

	guard           *playback.Guard
	playbackChannel chan any
	window          player.Window

	selectedVideo   *source.Video
	selectedSource  source.VideoSource
	strategy        playback.Strategy
	playbackLoading bool

	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if b.state != loadingState && b.state != errorState {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	b.videosC.SetSize(width-xx, height-yy)
	b.videosC.Help.Width = width - xx

	b.width = width - x
	b.height = height - y
	b.helpC.Width = width - xx
}

func (b *statefulBubble) startLoading(status string) {
	b.loading = true
	b.progressStatus = status
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
	b.progressStatus = ""
}

// stopPlayback tears the session down before the window it plays in.
func (b *statefulBubble) stopPlayback() {
	b.guard.Destroy()

	if b.window != nil {
		if err := b.window.Close(); err != nil {
			log.Warnf("close player: %v", err)
		}
		b.window = nil
	}

	b.strategy = playback.NoStrategy
	b.playbackLoading = false
}

func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	ctx, cancel := context.WithCancel(context.Background())

	bubble := &statefulBubble{
		statesHistory:   util.Stack[state]{},
		keymap:          keymap,
		ctx:             ctx,
		cancel:          cancel,
		playbackChannel: make(chan any, 64),
		notifier:        &ui.Model{},
		options:         options,
	}

	guardOptions := append([]playback.Option{}, options.Guard...)
	guardOptions = append(guardOptions, playback.WithObserver(bubble.observer()))
	bubble.guard = playback.NewGuard(guardOptions...)

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("Search videos (v%s)", constant.Version)
	bubble.inputC.CharLimit = 80
	bubble.inputC.Prompt = "> "
	bubble.inputC.ShowSuggestions = true
	bubble.inputC.SetSuggestions(query.SuggestMany(""))
	bubble.inputC.Focus()

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.videosC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.videosC.KeyMap = keymap.forList()
	bubble.videosC.AdditionalShortHelpKeys = keymap.ShortHelp
	bubble.videosC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return keymap.FullHelp()[0]
	}
	bubble.videosC.Title = "Videos"
	bubble.videosC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.Lavender).Padding(0, 1)
	bubble.videosC.Styles.NoItems = paddingStyle
	bubble.videosC.SetShowStatusBar(false)
	bubble.videosC.SetFilteringEnabled(false)
	bubble.videosC.SetStatusBarItemName("video", "videos")

	bubble.setState(searchState)
	if options.Query != "" {
		bubble.inputC.SetValue(options.Query)
	}

	return bubble
}
