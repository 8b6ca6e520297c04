// Package playback binds video sources to media elements.
//
// A Guard owns at most one session. Each session resolves an ordered list of
// delivery strategies for its source, attaches the first one, and degrades to
// the next one if the first fails fatally. All session state changes run on
// the Guard's serial executor, so callers never need locks of their own.
package playback

import (
	"fmt"

	"github.com/coursecast/coursecast/source"
)

// Strategy is a way of delivering a source to an element.
type Strategy int

const (
	NoStrategy Strategy = iota
	// Progressive plays a single media file.
	Progressive
	// NativeManifest hands the HLS manifest to the element directly.
	NativeManifest
	// EngineManifest plays the HLS manifest through a streaming engine.
	EngineManifest
)

func (s Strategy) String() string {
	switch s {
	case Progressive:
		return "progressive"
	case NativeManifest:
		return "native-manifest"
	case EngineManifest:
		return "engine-manifest"
	default:
		return "none"
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	for _, candidate := range Strategies() {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q", text)
}

// Strategies lists every strategy, best first.
func Strategies() []Strategy {
	return []Strategy{NativeManifest, EngineManifest, Progressive}
}

// ResolveStrategyOrder returns the strategies to try for src, best first.
// nativeManifest is called at most once, and only when src has a manifest.
func ResolveStrategyOrder(src source.VideoSource, nativeManifest func() bool) ([]Strategy, error) {
	if err := src.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalidSource, Err: err}
	}

	if src.Manifest.IsAbsent() {
		return []Strategy{Progressive}, nil
	}

	manifest := EngineManifest
	if nativeManifest != nil && nativeManifest() {
		manifest = NativeManifest
	}

	if src.Progressive.IsAbsent() {
		return []Strategy{manifest}, nil
	}
	return []Strategy{manifest, Progressive}, nil
}

// url returns the source URL the strategy plays.
func (s Strategy) url(src source.VideoSource) string {
	if s == Progressive {
		return src.Progressive.OrEmpty()
	}
	return src.Manifest.OrEmpty()
}
