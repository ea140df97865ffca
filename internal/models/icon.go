package models

import "strings"

// Icon is the closed set of glyphs a category card can show.
type Icon string

const (
	IconDisc        Icon = "disc"
	IconWrench      Icon = "wrench"
	IconZap         Icon = "zap"
	IconDroplets    Icon = "droplets"
	IconBattery     Icon = "battery"
	IconThermometer Icon = "thermometer"
	IconBox         Icon = "box"
)

// Icons lists the enumeration in menu order.
var Icons = []Icon{IconDisc, IconWrench, IconZap, IconDroplets, IconBattery, IconThermometer, IconBox}

// DefaultIcon is used for any value outside the enumeration.
const DefaultIcon = IconBox

var iconGlyphs = map[Icon]string{
	IconDisc:        "⛭",
	IconWrench:      "🔧",
	IconZap:         "⚡",
	IconDroplets:    "💧",
	IconBattery:     "🔋",
	IconThermometer: "🌡",
	IconBox:         "📦",
}

// ParseIcon normalises a stored icon name ("Disc", "disc") into the
// enumeration, returning DefaultIcon for unknown names.
func ParseIcon(name string) Icon {
	ic := Icon(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := iconGlyphs[ic]; ok {
		return ic
	}
	return DefaultIcon
}

// Resolve returns the icon itself if known, DefaultIcon otherwise.
func (i Icon) Resolve() Icon {
	return ParseIcon(string(i))
}

// Glyph returns the symbol rendered for the icon.
func (i Icon) Glyph() string {
	return iconGlyphs[i.Resolve()]
}
