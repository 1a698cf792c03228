package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BoxMarkerTheme provides a custom theme for the application.
type BoxMarkerTheme struct{}

var _ fyne.Theme = (*BoxMarkerTheme)(nil)

func (t *BoxMarkerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF} // Blue for selection accents
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xFF, G: 0xB3, B: 0x00, A: 0x80} // Amber for the active box
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF} // Visible gray scrollbar
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *BoxMarkerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *BoxMarkerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *BoxMarkerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16 // Wider scrollbar for easier grabbing
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
