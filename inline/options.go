package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/util"
	"github.com/samber/mo"
)

// VideoPicker chooses one video from search results, or nil.
type VideoPicker func([]*source.Video) *source.Video

type Options struct {
	Out     io.Writer
	Sources []source.Source

	// Query searches every source. VideoID looks up one video in the
	// first source that has it and takes precedence over Query.
	Query   string
	VideoID string

	Picker mo.Option[VideoPicker]
	Json   bool

	// MediaBase resolves relative descriptor URLs.
	MediaBase string

	// Element and Probe decide the native manifest verdict. Without an
	// element every manifest plan uses the engine.
	Element player.Element
	Probe   playback.CapabilityProbe
}

// ParseVideoPicker understands first, last, an index from 0, or an exact
// id or title.
func ParseVideoPicker(description string) (VideoPicker, error) {
	switch description {
	case "":
		return nil, fmt.Errorf("empty video selector")
	case "first":
		return func(videos []*source.Video) *source.Video {
			if len(videos) == 0 {
				return nil
			}
			return videos[0]
		}, nil
	case "last":
		return func(videos []*source.Video) *source.Video {
			if len(videos) == 0 {
				return nil
			}
			return videos[len(videos)-1]
		}, nil
	}

	if idx, err := strconv.ParseUint(description, 10, 16); err == nil {
		return func(videos []*source.Video) *source.Video {
			if len(videos) == 0 {
				return nil
			}
			return videos[util.Min(idx, uint64(len(videos)-1))]
		}, nil
	}

	return func(videos []*source.Video) *source.Video {
		for _, v := range videos {
			if v.ID == description || strings.EqualFold(v.Title, description) {
				return v
			}
		}
		return nil
	}, nil
}
