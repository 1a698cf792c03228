// Package colorutil provides shared color utilities for the annotator.
package colorutil

import (
	"image/color"
	"math"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 50, B: 50, A: 255}
	Orange  = color.RGBA{R: 200, G: 100, B: 50, A: 255}
	Cyan    = color.RGBA{R: 100, G: 200, B: 200, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// HSVToRGB converts HSV (H 0-360, S 0-1, V 0-1) to an RGBA color.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}

// ClassColor returns a deterministic, well-separated color for a class id.
// Successive ids step around the hue wheel by the golden angle so that
// neighboring ids stay visually distinct.
func ClassColor(id int) color.RGBA {
	if id < 0 {
		return Orange
	}
	hue := math.Mod(float64(id)*137.508, 360)
	return HSVToRGB(hue, 0.75, 0.95)
}
