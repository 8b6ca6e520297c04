package custom

import (
	"errors"
	"strconv"

	"github.com/coursecast/coursecast/source"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, keys ...string) string {
	for _, key := range keys {
		switch val := table.RawGetString(key).(type) {
		case lua.LString:
			return string(val)
		case lua.LNumber:
			return val.String()
		}
	}
	return ""
}

func getNumber(table *lua.LTable, key string) float64 {
	switch val := table.RawGetString(key).(type) {
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		n, _ := strconv.ParseFloat(string(val), 64)
		return n
	}
	return 0
}

// videoFromTable reads a descriptor. Only id is required; whether the URLs
// are playable is decided when the source is attached.
func videoFromTable(table *lua.LTable) (*source.Video, error) {
	id := getString(table, "id")
	if id == "" {
		return nil, errors.New("video must have an id")
	}

	video := &source.Video{
		ID:             id,
		Title:          getString(table, "title", "name"),
		Course:         getString(table, "course"),
		Duration:       getNumber(table, "duration"),
		ManifestURL:    getString(table, "manifest_url", "manifest"),
		ProgressiveURL: getString(table, "progressive_url", "progressive"),
	}
	if video.Title == "" {
		video.Title = id
	}

	return video, nil
}
