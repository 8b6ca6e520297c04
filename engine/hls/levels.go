package hls

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Eyevinn/hls-m3u8/m3u8"
	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/source"
)

var errNoHeader = errors.New("missing #EXTM3U header")

// decode parses a playlist after checking it is one at all; the decoder
// itself is lenient about garbage input.
func decode(body []byte) (m3u8.Playlist, m3u8.ListType, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	if !bytes.HasPrefix(trimmed, []byte("#EXTM3U")) {
		return nil, 0, errNoHeader
	}
	return m3u8.DecodeFrom(bytes.NewReader(trimmed), false)
}

// parseLevels turns a master or media playlist into levels. A media
// playlist is a single level at manifestURL itself.
func parseLevels(manifestURL string, body []byte) ([]engine.Level, *engine.Error) {
	playlist, listType, err := decode(body)
	if err != nil {
		return nil, &engine.Error{Type: engine.NetworkError, Details: engine.ManifestParsingError, Fatal: true, Err: err}
	}

	if listType == m3u8.MEDIA {
		return []engine.Level{{URL: manifestURL}}, nil
	}

	master, ok := playlist.(*m3u8.MasterPlaylist)
	if !ok {
		return nil, &engine.Error{Type: engine.NetworkError, Details: engine.ManifestParsingError, Fatal: true,
			Err: fmt.Errorf("unexpected playlist type %T", playlist)}
	}

	var levels []engine.Level
	for _, variant := range master.Variants {
		if variant == nil || variant.Iframe || variant.URI == "" {
			continue
		}

		uri, err := source.ResolveURL(manifestURL, variant.URI)
		if err != nil {
			continue
		}

		width, height := parseResolution(variant.Resolution)
		levels = append(levels, engine.Level{
			URL:       uri,
			Bandwidth: variant.Bandwidth,
			Width:     width,
			Height:    height,
		})
	}

	if len(levels) == 0 {
		return nil, &engine.Error{Type: engine.NetworkError, Details: engine.LevelEmptyError, Fatal: true,
			Err: errors.New("master playlist has no playable variants")}
	}

	return levels, nil
}

func parseResolution(resolution string) (int, int) {
	w, h, ok := strings.Cut(strings.ToLower(resolution), "x")
	if !ok {
		return 0, 0
	}
	width, _ := strconv.Atoi(strings.TrimSpace(w))
	height, _ := strconv.Atoi(strings.TrimSpace(h))
	return width, height
}

// selectLevel picks the starting level. A forced StartLevel wins; otherwise
// the highest bandwidth level that fits the viewport, or the lowest
// bandwidth level if none fits. viewportHeight <= 0 means unknown.
func selectLevel(levels []engine.Level, cfg engine.Config, viewportHeight int) int {
	if cfg.StartLevel >= 0 && cfg.StartLevel < len(levels) {
		return cfg.StartLevel
	}

	capped := cfg.CapLevelToPlayerSize && viewportHeight > 0

	best, lowest := -1, 0
	for i, level := range levels {
		if level.Bandwidth < levels[lowest].Bandwidth {
			lowest = i
		}
		if capped && level.Height > viewportHeight {
			continue
		}
		if best < 0 || level.Bandwidth > levels[best].Bandwidth {
			best = i
		}
	}

	if best < 0 {
		return lowest
	}
	return best
}

// rewriteMediaPlaylist makes every segment and init section URI absolute
// against levelURL so the element can fetch them without the relay.
func rewriteMediaPlaylist(levelURL string, body []byte) ([]byte, *engine.Error) {
	playlist, listType, err := decode(body)
	if err != nil {
		return nil, &engine.Error{Type: engine.NetworkError, Details: engine.ManifestParsingError, Fatal: true, Err: err}
	}

	media, ok := playlist.(*m3u8.MediaPlaylist)
	if listType != m3u8.MEDIA || !ok {
		return nil, &engine.Error{Type: engine.NetworkError, Details: engine.LevelEmptyError, Fatal: true,
			Err: errors.New("level is not a media playlist")}
	}

	segments := 0
	for _, segment := range media.Segments {
		if segment == nil {
			continue
		}
		if uri, err := source.ResolveURL(levelURL, segment.URI); err == nil {
			segment.URI = uri
		}
		segments++
	}

	if segments == 0 {
		return nil, &engine.Error{Type: engine.NetworkError, Details: engine.LevelEmptyError, Fatal: true,
			Err: errors.New("media playlist has no segments")}
	}

	if media.Map != nil && media.Map.URI != "" {
		if uri, err := source.ResolveURL(levelURL, media.Map.URI); err == nil {
			media.Map.URI = uri
		}
	}

	return media.Encode().Bytes(), nil
}
