package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/style"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case searchState:
		output = b.viewSearch()
	case loadingState:
		output = b.viewLoading()
	case videosState:
		output = listExtraPaddingStyle.Render(b.videosC.View())
	case playState:
		output = b.viewPlay()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewSearch() string {
	return b.renderLines(true, []string{
		style.Title("Search Videos"),
		"",
		b.inputC.View(),
	})
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(true, []string{
		style.Title("Loading"),
		"",
		b.spinnerC.View() + " " + b.progressStatus,
	})
}

func (b *statefulBubble) viewPlay() string {
	var title string
	if b.selectedVideo != nil {
		title = b.selectedVideo.String()
	}

	var status string
	switch {
	case b.playbackLoading:
		status = b.spinnerC.View() + " Loading"
	case b.strategy != playback.NoStrategy:
		status = fmt.Sprintf("%s Playing via %s %s", icon.Get(icon.Success), strategyIcon(b.strategy), style.Fg(style.Teal)(b.strategy.String()))
	default:
		status = style.Faint("Idle")
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(icon.Get(icon.Progress) + " " + style.Fg(style.Mauve)(title)),
		"",
		status,
	}

	if snapshot, ok := b.guard.Snapshot(); ok && len(snapshot.Attempted) > 1 {
		attempted := lo.Map(snapshot.Attempted, func(s playback.Strategy, _ int) string { return s.String() })
		lines = append(lines, "", style.Faint("tried "+strings.Join(attempted, " → ")))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewError() string {
	var message string
	heading := "Something went wrong:"
	if b.lastError != nil {
		message = b.lastError.Error()

		var perr *playback.Error
		if errors.As(b.lastError, &perr) {
			heading = "Playback failed:"
		}
	}

	body := style.Fg(style.ErrorColor)(wrap.String(message, max(b.width, 20)))

	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " " + heading,
		"",
		body,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
