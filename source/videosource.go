package source

import (
	"errors"
	"net/url"
	"strings"

	"github.com/samber/mo"
)

// ErrInvalidSource is returned for a VideoSource with neither URL present.
var ErrInvalidSource = errors.New("video source has neither a manifest nor a progressive url")

// VideoSource holds the delivery URLs of one video. It is a value and
// never changes after construction.
type VideoSource struct {
	Manifest    mo.Option[string] `json:"manifest"`
	Progressive mo.Option[string] `json:"progressive"`
}

// NewVideoSource treats blank URLs as absent.
func NewVideoSource(manifest, progressive string) VideoSource {
	return VideoSource{
		Manifest:    present(manifest),
		Progressive: present(progressive),
	}
}

func present(s string) mo.Option[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return mo.None[string]()
	}
	return mo.Some(s)
}

// Validate reports ErrInvalidSource when both URLs are absent.
func (s VideoSource) Validate() error {
	if s.Manifest.IsAbsent() && s.Progressive.IsAbsent() {
		return ErrInvalidSource
	}
	return nil
}

func (s VideoSource) String() string {
	var parts []string
	if m, ok := s.Manifest.Get(); ok {
		parts = append(parts, "manifest="+m)
	}
	if p, ok := s.Progressive.Get(); ok {
		parts = append(parts, "progressive="+p)
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " ")
}

// ResolveURL resolves ref against base. An empty ref resolves to "".
// Absolute refs are returned unchanged and base may be empty for them.
func ResolveURL(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}

	if base == "" {
		return "", errors.New("relative url " + ref + " without a media base url")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	return baseURL.ResolveReference(parsed).String(), nil
}
