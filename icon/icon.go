// Package icon renders UI symbols in the user's chosen variant.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares.
package icon

import (
	"github.com/coursecast/coursecast/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants lists every supported variant name.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Lua Icon = iota + 1
	Go
	Success
	Fail
	Progress
	Search
	Link
	Stream
	Film
	Degraded
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]*iconDef{
	Lua:      {emoji: "🌙", nerd: "", plain: "Lua", kaomoji: "(=^･ω･^=)", squares: "◧"},
	Go:       {emoji: "🐹", nerd: "", plain: "Go", kaomoji: "ʕ•ᴥ•ʔ", squares: "◨"},
	Success:  {emoji: "🎉", nerd: "", plain: "Success", kaomoji: "(ᵔ◡ᵔ)", squares: "▣"},
	Fail:     {emoji: "💀", nerd: "", plain: "Fail", kaomoji: "(×_×)", squares: "▨"},
	Progress: {emoji: "👾", nerd: "", plain: "...", kaomoji: "┬─┬ノ( º _ ºノ)", squares: "▦"},
	Search:   {emoji: "🔍", nerd: "", plain: "?", kaomoji: "⌐■-■", squares: "◫"},
	Link:     {emoji: "🔗", nerd: "", plain: "", kaomoji: "", squares: "◈"},
	Stream:   {emoji: "📡", nerd: "", plain: "HLS", kaomoji: "~(˘▾˘~)", squares: "◩"},
	Film:     {emoji: "🎞", nerd: "", plain: "File", kaomoji: "[ ▶ ]", squares: "◪"},
	Degraded: {emoji: "🩹", nerd: "", plain: "!", kaomoji: "(；一_一)", squares: "◬"},
}

// Get returns the rendered symbol for i.
func Get(i Icon) string {
	return icons[i].Get()
}
