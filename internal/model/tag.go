package model

import (
	"strings"
	"time"
)

// TagColor is one of the named tag palette colors.
type TagColor string

const (
	ColorBlue   TagColor = "blue"
	ColorGreen  TagColor = "green"
	ColorYellow TagColor = "yellow"
	ColorOrange TagColor = "orange"
	ColorRed    TagColor = "red"
	ColorPurple TagColor = "purple"
	ColorPink   TagColor = "pink"
	ColorCyan   TagColor = "cyan"
	ColorTeal   TagColor = "teal"
	ColorIndigo TagColor = "indigo"
)

// DefaultTagColor is used when a tag has no color or an unknown one.
const DefaultTagColor = ColorBlue

// TagColors is the palette in display order.
var TagColors = []TagColor{
	ColorBlue, ColorGreen, ColorYellow, ColorOrange, ColorRed,
	ColorPurple, ColorPink, ColorCyan, ColorTeal, ColorIndigo,
}

var tagColorHex = map[TagColor]string{
	ColorBlue:   "#3B82F6",
	ColorGreen:  "#10B981",
	ColorYellow: "#F59E0B",
	ColorOrange: "#F97316",
	ColorRed:    "#EF4444",
	ColorPurple: "#A855F7",
	ColorPink:   "#EC4899",
	ColorCyan:   "#06B6D4",
	ColorTeal:   "#14B8A6",
	ColorIndigo: "#6366F1",
}

// Hex returns the color's hex value, falling back to the default color.
func (c TagColor) Hex() string {
	if hex, ok := tagColorHex[c]; ok {
		return hex
	}
	return tagColorHex[DefaultTagColor]
}

// Valid reports whether c is a palette color.
func (c TagColor) Valid() bool {
	_, ok := tagColorHex[c]
	return ok
}

// Name returns the capitalized color name.
func (c TagColor) Name() string {
	if !c.Valid() {
		return DefaultTagColor.Name()
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseTagColor resolves a color name or hex value onto the palette.
// Older snapshots stored hex values; "#8B5CF6" is the old purple.
func ParseTagColor(s string) TagColor {
	s = strings.TrimSpace(s)
	if c := TagColor(strings.ToLower(s)); c.Valid() {
		return c
	}
	if strings.EqualFold(s, "#8B5CF6") {
		return ColorPurple
	}
	for c, hex := range tagColorHex {
		if strings.EqualFold(hex, s) {
			return c
		}
	}
	return DefaultTagColor
}

// Tag is a global label that tasks reference by id.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     TagColor  `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTag is the creation payload for a tag.
type NewTag struct {
	Name  string
	Color TagColor
}
