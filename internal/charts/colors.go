package charts

import "image/color"

var (
	blue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	silver = color.RGBA{R: 192, G: 192, B: 192, A: 255}
	gold   = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	grey   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	red    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	green  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	nanRGB = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// categoryColors fixes the bar colors of the branch and payment charts.
var categoryColors = map[string]color.Color{
	"A":           blue,
	"B":           silver,
	"C":           gold,
	"Ewallet":     blue,
	"Cash":        silver,
	"Credit card": gold,
}

// CategoryColor returns the fixed color of a category, grey when it has none.
func CategoryColor(v string) color.Color {
	if c, ok := categoryColors[v]; ok {
		return c
	}
	return grey
}

// fixedPalette is a palette.Palette over an explicit color list.
type fixedPalette []color.Color

func (p fixedPalette) Colors() []color.Color { return p }

// missingPalette maps 0 (present) and 1 (missing).
var missingPalette = fixedPalette{
	color.RGBA{R: 68, G: 1, B: 84, A: 255},
	color.RGBA{R: 253, G: 231, B: 37, A: 255},
}
