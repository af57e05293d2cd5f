// Package theme holds the fixed colour palettes for the text view and
// its gutter.
package theme

import (
	"github.com/jesedit/gutter/draw"
)

// Palette colours the text view.
type Palette struct {
	TextColBack draw.Color
	TextColHigh draw.Color
	TextColText draw.Color
	TickColor   draw.Color
}

// GutterPalette colours the gutter. Highlight and Unfocused are
// translucent and are drawn over whatever is already on screen.
type GutterPalette struct {
	Background draw.Color // Paint fills it only in dark mode.
	Dim        draw.Color
	Foreground draw.Color
	Mark       draw.Color
	Highlight  draw.Color
	Unfocused  draw.Color
}

var (
	darkMode bool
	current  = lightPalette
)

var lightPalette = Palette{
	TextColBack: draw.White,
	TextColHigh: 0xA5CDFFFF,
	TextColText: draw.Black,
	TickColor:   draw.Black,
}

var darkPalette = Palette{
	TextColBack: 0x232526FF,
	TextColHigh: 0x3E4451FF,
	TextColText: 0xEEEEEEFF,
	TickColor:   draw.White,
}

var gutterLight = GutterPalette{
	Background: draw.White,
	Dim:        0x404040FF,
	Foreground: draw.Black,
	Mark:       0x00FF00FF,
	Highlight:  draw.WithAlpha(draw.Black, 12),
	Unfocused:  draw.WithAlpha(draw.Black, 40),
}

var gutterDark = GutterPalette{
	Background: 0x232526FF,
	Dim:        0x575C5EFF,
	Foreground: 0xA5A9B2FF,
	Mark:       0x00FF00FF,
	Highlight:  draw.WithAlpha(draw.White, 15),
	Unfocused:  draw.WithAlpha(draw.Black, 70),
}

// SetDarkMode selects between the light and dark palettes.
func SetDarkMode(enabled bool) {
	darkMode = enabled
	if enabled {
		current = darkPalette
	} else {
		current = lightPalette
	}
}

// IsDarkMode reports the current mode.
func IsDarkMode() bool { return darkMode }

// Current returns the active colour palette.
func Current() Palette { return current }

// Gutter returns the gutter palette for the given mode. Gutters carry
// their own mode so this does not consult SetDarkMode.
func Gutter(dark bool) GutterPalette {
	if dark {
		return gutterDark
	}
	return gutterLight
}
