// Package canvas provides drawing primitives for the annotation canvas.
package canvas

import (
	"fmt"
	"image"
	"image/color"

	"box-marker/pkg/colorutil"
	"box-marker/pkg/geometry"
)

const (
	boxOutline      = 2 // pixels
	selectedOutline = 3
	handleSize      = 8
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and the
// symbols class names commonly carry.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	':': {0b000, 0b010, 0b000, 0b010, 0b000},
	'_': {0b000, 0b000, 0b000, 0b000, 0b111},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// drawImage composites the active image scaled by zoom, nearest
// neighbor.
func (bc *BoxCanvas) drawImage(output *image.RGBA, w, h int) {
	src := bc.state.Image
	srcBounds := src.Bounds()

	for y := 0; y < h; y++ {
		srcY := int(float64(y)/bc.zoom) + srcBounds.Min.Y
		if srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
			continue
		}
		for x := 0; x < w; x++ {
			srcX := int(float64(x)/bc.zoom) + srcBounds.Min.X
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X {
				continue
			}
			output.Set(x, y, src.At(srcX, srcY))
		}
	}
}

// drawBoxes outlines every box in stacking order, bottom first, so the
// topmost box is painted last. The selected box gets a thicker outline
// and corner handles.
func (bc *BoxCanvas) drawBoxes(output *image.RGBA) {
	set := bc.state.Editor.Annotations()
	sel := bc.state.Editor.Selection()
	m := bc.Mapper()

	for i := 0; i < set.Len(); i++ {
		box := set.At(i)
		r := m.RectToScreen(box.Rect())
		col := colorutil.ClassColor(box.ClassID)

		thickness := boxOutline
		if i == sel.Index {
			thickness = selectedOutline
		}
		bc.drawRectOutline(output, r, col, thickness)

		if bc.showLabels {
			label := fmt.Sprintf("%d:%s", box.ClassID, bc.state.Classes.Name(box.ClassID))
			bc.drawText(output, label, int(r.X)+4, int(r.Y)+4, col)
		}
	}

	if sel.Active() && sel.Index < set.Len() {
		r := m.RectToScreen(set.At(sel.Index).Rect())
		for _, corner := range r.Corners() {
			bc.drawHandle(output, corner)
		}
	}
}

// drawRubberBand draws the dashed preview of a creation drag.
func (bc *BoxCanvas) drawRubberBand(output *image.RGBA, r geometry.Rect) {
	col := color.RGBA{R: 255, G: 255, B: 0, A: 255}
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	bounds := output.Bounds()

	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			output.Set(x, y1, col)
		}
		if (x+y2)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y2 >= bounds.Min.Y && y2 < bounds.Max.Y {
			output.Set(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 && x1 >= bounds.Min.X && x1 < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x1, y, col)
		}
		if (x2+y)%4 < 2 && x2 >= bounds.Min.X && x2 < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x2, y, col)
		}
	}
}

// drawRectOutline draws a rectangle outline of the given thickness.
func (bc *BoxCanvas) drawRectOutline(output *image.RGBA, r geometry.Rect, col color.RGBA, thickness int) {
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	bounds := output.Bounds()

	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X {
				if y1+t >= bounds.Min.Y && y1+t < bounds.Max.Y {
					output.Set(x, y1+t, col)
				}
				if y2-t >= bounds.Min.Y && y2-t < bounds.Max.Y {
					output.Set(x, y2-t, col)
				}
			}
		}
		for y := y1; y <= y2; y++ {
			if y >= bounds.Min.Y && y < bounds.Max.Y {
				if x1+t >= bounds.Min.X && x1+t < bounds.Max.X {
					output.Set(x1+t, y, col)
				}
				if x2-t >= bounds.Min.X && x2-t < bounds.Max.X {
					output.Set(x2-t, y, col)
				}
			}
		}
	}
}

// drawHandle draws a filled white square centered on a corner.
func (bc *BoxCanvas) drawHandle(output *image.RGBA, p geometry.Point2D) {
	bounds := output.Bounds()
	half := handleSize / 2
	cx, cy := int(p.X), int(p.Y)

	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			px, py := cx+dx, cy+dy
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				continue
			}
			if dx == -half || dx == half || dy == -half || dy == half {
				output.Set(px, py, colorutil.Black)
			} else {
				output.Set(px, py, colorutil.White)
			}
		}
	}
}

// drawText draws a string at the given top-left position with the 3x5
// bitmap font, scaled with zoom.
func (bc *BoxCanvas) drawText(output *image.RGBA, text string, startX, startY int, col color.RGBA) {
	scale := int(bc.zoom * 2)
	if scale < 1 {
		scale = 1
	}
	if scale > 6 {
		scale = 6
	}

	charWidth := 3 * scale
	spacing := scale
	bounds := output.Bounds()

	for i, ch := range text {
		pattern := getCharPattern(ch)
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := startY + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.Set(px, py, col)
						}
					}
				}
			}
		}
	}
}
