package tui

import (
	"strings"
	"time"

	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/style"
)

type listItem struct {
	video *source.Video
}

func (t *listItem) Title() string {
	return t.video.Title
}

// Description shows the course, length and which deliveries the
// descriptor offers.
func (t *listItem) Description() string {
	var parts []string

	if t.video.Course != "" {
		parts = append(parts, t.video.Course)
	}
	if length := t.video.Length(); length > 0 {
		parts = append(parts, length.Round(time.Second).String())
	}

	var delivery []string
	if t.video.ManifestURL != "" {
		delivery = append(delivery, icon.Get(icon.Stream))
	}
	if t.video.ProgressiveURL != "" {
		delivery = append(delivery, icon.Get(icon.Film))
	}
	if len(delivery) > 0 {
		parts = append(parts, strings.Join(delivery, " "))
	}

	if t.video.Source != nil {
		parts = append(parts, style.Faint(t.video.Source.Name()))
	}

	return strings.Join(parts, " · ")
}

func (t *listItem) FilterValue() string {
	return t.video.String()
}
