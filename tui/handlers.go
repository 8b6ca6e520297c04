package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/provider"
	"github.com/coursecast/coursecast/query"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/util"
	"github.com/samber/lo"
)

type (
	videosFoundMsg []*source.Video

	playbackLoadingMsg    bool
	playbackReadyMsg      playback.Strategy
	playbackFatalMsg      struct{ err *playback.Error }
	playbackTransitionMsg playback.Transition

	playerExitedMsg struct{ window player.Window }
)

// observer forwards controller events to the update loop. Loading, ready
// and fatal events are always delivered; transitions are dropped when the
// update loop falls behind.
func (b *statefulBubble) observer() playback.Observer {
	send := func(msg any) {
		select {
		case b.playbackChannel <- msg:
		case <-b.ctx.Done():
		}
	}

	trySend := func(msg any) {
		select {
		case b.playbackChannel <- msg:
		default:
			log.Debugf("tui: dropped playback event %T", msg)
		}
	}

	return playback.ObserverFuncs{
		Loading:    func(loading bool) { send(playbackLoadingMsg(loading)) },
		Ready:      func(strategy playback.Strategy) { send(playbackReadyMsg(strategy)) },
		Fatal:      func(err *playback.Error) { send(playbackFatalMsg{err: err}) },
		Transition: func(t playback.Transition) { trySend(playbackTransitionMsg(t)) },
	}
}

func (b *statefulBubble) waitForPlayback() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.playbackChannel:
			return msg
		case <-b.ctx.Done():
			return nil
		}
	}
}

func waitForExit(window player.Window) tea.Cmd {
	return func() tea.Msg {
		<-window.Wait()
		return playerExitedMsg{window: window}
	}
}

func (b *statefulBubble) searchVideos(q string) tea.Cmd {
	providers := b.options.Providers

	return func() tea.Msg {
		results, err := provider.SearchAll(b.ctx, providers, q)
		if err != nil {
			return err
		}

		videos := lo.FlatMap(results, func(r provider.Result, _ int) []*source.Video {
			return r.Videos
		})
		if len(videos) > 0 {
			if err := query.Remember(q, 1); err != nil {
				log.Warnf("remember query: %v", err)
			}
		}

		return videosFoundMsg(videos)
	}
}

func (b *statefulBubble) setVideos(videos []*source.Video) tea.Cmd {
	items := lo.Map(videos, func(v *source.Video, _ int) list.Item {
		return &listItem{video: v}
	})

	b.videosC.Title = fmt.Sprintf("%s %s", icon.Get(icon.Search), util.Quantify(len(items), "video", "videos"))
	b.videosC.ResetSelected()
	return b.videosC.SetItems(items)
}

// play attaches video to the player window, opening the window on first use.
func (b *statefulBubble) play(video *source.Video) tea.Cmd {
	src, err := video.VideoSource(b.options.MediaBase)
	if err != nil {
		b.raiseError(err)
		return nil
	}

	var cmds []tea.Cmd

	if b.window == nil {
		window, err := b.options.NewWindow()
		if err != nil {
			b.raiseError(err)
			return nil
		}

		if err := window.Open(video.String()); err != nil {
			b.raiseError(fmt.Errorf("open player: %w", err))
			return nil
		}

		window.OnMediaError(b.guard.MediaError)
		b.window = window
		cmds = append(cmds, waitForExit(window))
	}

	b.selectedVideo = video
	b.selectedSource = src

	cmds = append(cmds, b.attach())
	return tea.Batch(cmds...)
}

// attach (re)binds the selected source to the open window.
func (b *statefulBubble) attach() tea.Cmd {
	b.strategy = playback.NoStrategy
	b.lastError = nil

	if err := b.guard.Attach(b.ctx, b.window, b.selectedSource); err != nil {
		b.raiseError(err)
		return nil
	}

	if b.state == errorState {
		b.setState(playState)
	} else {
		b.newState(playState)
	}
	return b.spinnerC.Tick
}

func (b *statefulBubble) handlePlayback(msg any) tea.Cmd {
	switch msg := msg.(type) {
	case playbackLoadingMsg:
		b.playbackLoading = bool(msg)
		if b.playbackLoading {
			return b.spinnerC.Tick
		}
	case playbackReadyMsg:
		b.strategy = playback.Strategy(msg)
	case playbackTransitionMsg:
		if msg.To == playback.Degraded {
			return notify(fmt.Sprintf("%s fell back to %s", icon.Get(icon.Degraded), msg.Strategy))
		}
	case playbackFatalMsg:
		b.raiseError(msg.err)
	}
	return nil
}

func strategyIcon(s playback.Strategy) string {
	if s == playback.Progressive {
		return icon.Get(icon.Film)
	}
	return icon.Get(icon.Stream)
}
