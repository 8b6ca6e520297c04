// Package version checks for newer coursecast releases.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/network"
	"github.com/coursecast/coursecast/util"
	"github.com/coursecast/coursecast/where"
	"github.com/metafates/gache"
)

// ReleasesURL answers with the latest GitHub release.
var ReleasesURL = "https://api.github.com/repos/coursecast/coursecast/releases/latest"

var (
	cacherOnce sync.Once
	cacher     *gache.Cache[string]
)

func versionCacher() *gache.Cache[string] {
	cacherOnce.Do(func() {
		cacher = gache.New[string](&gache.Options{
			Path:       filepath.Join(where.Cache(), "version.json"),
			Lifetime:   48 * time.Hour,
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return cacher
}

// Latest returns the newest released version without the leading v. The
// answer is cached for two days.
func Latest(ctx context.Context) (string, error) {
	if cached, expired, err := versionCacher().Get(); err == nil && !expired && cached != "" {
		return cached, nil
	}

	resp, err := network.Get(ctx, nil, ReleasesURL, map[string]string{
		constant.HeaderAccept: "application/vnd.github+json",
	})
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	version := strings.TrimPrefix(release.TagName, "v")
	if version == "" {
		return "", errors.New("empty tag name")
	}

	_ = versionCacher().Set(version)
	return version, nil
}
