// Package icon renders status symbols in the variant selected by the icons.variant setting.
package icon

import (
	"github.com/reelplay/reel/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns every supported icon variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Fail Icon = iota
	Success
	Play
	Pause
	Stop
	Buffer
	Load
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]iconDef{
	Fail:    {emoji: "💀", nerd: "\uf00d", plain: "x"},
	Success: {emoji: "🎉", nerd: "\uf00c", plain: "ok"},
	Play:    {emoji: "▶️", nerd: "\uf04b", plain: ">"},
	Pause:   {emoji: "⏸️", nerd: "\uf04c", plain: "||"},
	Stop:    {emoji: "⏹️", nerd: "\uf04d", plain: "[]"},
	Buffer:  {emoji: "⏳", nerd: "\uf252", plain: "~"},
	Load:    {emoji: "📂", nerd: "\uf07c", plain: "..."},
}

// Get returns the symbol for i in the configured variant, or an empty string for an unknown variant.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}

	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return def.emoji
	case nerd:
		return def.nerd
	case plain:
		return def.plain
	default:
		return ""
	}
}
