package inline

import (
	"encoding/json"
	"io"
	"os"

	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/source"
	"golang.org/x/term"
)

// Plan is what the player would do with one video.
type Plan struct {
	// Source is the provider name.
	Source string        `json:"source"`
	Video  *source.Video `json:"video"`

	// Manifest and Progressive are the resolved absolute URLs.
	Manifest    string `json:"manifest,omitempty"`
	Progressive string `json:"progressive,omitempty"`

	// Order lists the strategies in the order they would be attempted.
	Order []playback.Strategy `json:"order,omitempty"`

	// NativeManifest is the capability verdict, present only when the
	// video has a manifest.
	NativeManifest *bool `json:"native_manifest,omitempty"`

	// Error explains why the video cannot be played.
	Error string `json:"error,omitempty"`
}

type Output struct {
	Query  string  `json:"query,omitempty"`
	Result []*Plan `json:"result"`
}

// writeJson indents when out is a terminal.
func writeJson(out io.Writer, output *Output) error {
	encoder := json.NewEncoder(out)
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(output)
}
