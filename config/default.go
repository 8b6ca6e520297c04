package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a registered configuration entry with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Coursecast + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Env         string `json:"env"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Env:         f.Env(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(k string, v any, desc string) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}
	Default[k] = Field{Key: k, Value: v, Description: desc}
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.ProvidersDefault, "catalog", "Descriptor provider to use.\nType \"coursecast providers list\" to show available providers")

	register(key.SearchQuerySuggestions, true, "Suggest past searches while typing")

	register(key.CatalogBaseURL, "http://localhost:8000/api", "Base URL of the video metadata API")
	register(key.CatalogMediaBaseURL, "", "Base URL that relative media URLs are resolved against.\nFalls back to the catalog base URL when empty")
	register(key.CatalogCacheTTL, 10, "Minutes to keep video descriptors cached")
	register(key.CatalogSearchLimit, 20, "Maximum number of search results to show")

	register(key.Player, "mpv", "Media element to use (mpv, iina)")
	register(key.PlaybackNativeManifest, "auto", "Whether HLS manifests go straight to the player.\nauto asks the player, never routes them through the built-in engine\nwhich caps quality to the window and bounds the buffer.\nAvailable options are: auto, always, never")

	register(key.EngineBackBufferLength, 90, "Seconds of already played media to keep buffered")
	register(key.EngineMaxBufferLength, 30, "Seconds of media to buffer ahead")
	register(key.EngineMaxBufferSize, 60, "Maximum buffer size in megabytes")
	register(key.EngineCapLevelToPlayerSize, true, "Never start on a quality level taller than the player viewport")
	register(key.EngineStartLevel, -1, "Index of the quality level to start on. -1 picks automatically")
	register(key.EngineManifestMaxRetry, 2, "Retries for a failed manifest request before the error becomes fatal")
	register(key.EngineLevelMaxRetry, 3, "Retries for a failed level playlist request before the error becomes fatal")
	register(key.EngineRetryDelay, 500, "Milliseconds to wait between engine retries")
	register(key.EngineLoadTimeout, 15, "Seconds to wait for the streaming engine to load")

	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.LogsMaxSize, 10, "Megabytes a log file may grow to before it is rotated")
	register(key.LogsMaxBackups, 3, "Rotated log files to keep")

	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Check for a newer release on startup")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(style.Purple),
	"blue":     style.Fg(style.Blue),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(style.Green)(b)
			}
			return style.Fg(style.Red)(b)
		case string:
			return style.Fg(style.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
