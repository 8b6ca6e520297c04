// Package inline is the non-interactive mode: it looks videos up and
// prints how each one would be played, without opening a player.
package inline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/source"
	"github.com/samber/lo"
)

func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	videos, err := find(ctx, options)
	if err != nil {
		return err
	}

	if picker, ok := options.Picker.Get(); ok {
		if choice := picker(videos); choice != nil {
			videos = []*source.Video{choice}
		} else {
			videos = nil
		}
	}

	plans := lo.Map(videos, func(v *source.Video, _ int) *Plan {
		return plan(v, options)
	})

	if options.Json {
		return writeJson(options.Out, &Output{Query: options.Query, Result: plans})
	}

	for _, p := range plans {
		if p.Error != "" {
			fmt.Fprintf(options.Out, "%s\t%s\terror: %s\n", p.Video.ID, p.Video.Title, p.Error)
			continue
		}

		order := lo.Map(p.Order, func(s playback.Strategy, _ int) string { return s.String() })
		fmt.Fprintf(options.Out, "%s\t%s\t%s\n", p.Video.ID, p.Video.Title, strings.Join(order, ","))
	}

	return nil
}

func find(ctx context.Context, options *Options) ([]*source.Video, error) {
	if len(options.Sources) == 0 {
		return nil, errors.New("no sources")
	}

	if options.VideoID != "" {
		var errs []error
		for _, src := range options.Sources {
			video, err := src.VideoOf(ctx, options.VideoID)
			if err == nil {
				return []*source.Video{video}, nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
		}
		return nil, errors.Join(errs...)
	}

	var videos []*source.Video
	for _, src := range options.Sources {
		found, err := src.Search(ctx, options.Query)
		if err != nil {
			return nil, fmt.Errorf("search failed for %s: %w", src.Name(), err)
		}
		log.Infof("%s: %d videos for %q", src.Name(), len(found), options.Query)
		videos = append(videos, found...)
	}

	return videos, nil
}

func plan(video *source.Video, options *Options) *Plan {
	p := &Plan{Video: video}
	if video.Source != nil {
		p.Source = video.Source.Name()
	}

	src, err := video.VideoSource(options.MediaBase)
	if err != nil {
		p.Error = err.Error()
		return p
	}

	p.Manifest = src.Manifest.OrEmpty()
	p.Progressive = src.Progressive.OrEmpty()

	probe := func() bool {
		verdict := false
		if options.Element != nil && options.Probe != nil {
			verdict = options.Probe(options.Element)
		}
		p.NativeManifest = &verdict
		return verdict
	}

	order, err := playback.ResolveStrategyOrder(src, probe)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Order = order

	return p
}
