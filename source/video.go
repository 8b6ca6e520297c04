package source

import (
	"fmt"
	"time"
)

// Video is a descriptor as returned by the metadata API or a provider script.
// URLs may be relative to the media base URL.
type Video struct {
	ID             string  `json:"id" jsonschema:"description=Video identifier"`
	Title          string  `json:"title"`
	Course         string  `json:"course,omitempty"`
	Duration       float64 `json:"duration,omitempty" jsonschema:"description=Duration in seconds"`
	ManifestURL    string  `json:"manifest_url,omitempty" jsonschema:"description=HLS master or media playlist"`
	ProgressiveURL string  `json:"progressive_url,omitempty" jsonschema:"description=Single progressive media file"`

	Source Source `json:"-"`
}

func (v *Video) String() string {
	if v.Course != "" {
		return fmt.Sprintf("%s / %s", v.Course, v.Title)
	}
	if v.Title != "" {
		return v.Title
	}
	return v.ID
}

// Length returns the duration as a time.Duration.
func (v *Video) Length() time.Duration {
	return time.Duration(v.Duration * float64(time.Second))
}

// VideoSource resolves the descriptor URLs against base and validates the result.
func (v *Video) VideoSource(base string) (VideoSource, error) {
	manifest, err := ResolveURL(base, v.ManifestURL)
	if err != nil {
		return VideoSource{}, fmt.Errorf("video %s: manifest url: %w", v.ID, err)
	}

	progressive, err := ResolveURL(base, v.ProgressiveURL)
	if err != nil {
		return VideoSource{}, fmt.Errorf("video %s: progressive url: %w", v.ID, err)
	}

	src := NewVideoSource(manifest, progressive)
	if err := src.Validate(); err != nil {
		return VideoSource{}, fmt.Errorf("video %s: %w", v.ID, err)
	}

	return src, nil
}
