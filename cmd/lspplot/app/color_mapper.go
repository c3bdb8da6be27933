package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for amplitude visualization.
type ColorTheme string

const (
	DefaultTheme   ColorTheme = "default"   // Black to blue to cyan to yellow to red
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256 // Default number of colors in the map
)

var noDataColor = color.Black

// ColorMapper provides amplitude-to-color mapping over pre-computed colors
type ColorMapper struct {
	colorMap    []color.Color
	theme       func(float64) color.Color
	themeName   ColorTheme
	size        int
	ampPerIndex float64 // Amplitude range per index step
	boundsMin   float64
}

// NewColorMapper creates a new color mapper with specified theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme ColorTheme, bounds AmplitudeBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
func NewColorMapperWithSize(theme ColorTheme, bounds AmplitudeBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	for i := 0; i < cm.size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1))
	}

	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds updates the amplitude range mapped onto the colors
func (cm *ColorMapper) UpdateBounds(bounds AmplitudeBounds) {
	cm.boundsMin = bounds.Min
	cm.ampPerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)
}

// GetColor returns a color for the given amplitude
func (cm *ColorMapper) GetColor(amplitude *float64) color.Color {
	if amplitude == nil {
		return noDataColor
	}
	if cm.ampPerIndex <= 0 {
		return cm.colorMap[0]
	}

	index := int((*amplitude - cm.boundsMin) / cm.ampPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}

// hsv builds a color from hue in degrees and saturation and value in [0,1].
func hsv(h, s, v float64) color.Color {
	return colorful.Hsv(math.Mod(h, 360), clamp01(s), clamp01(v)).Clamped()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Color theme implementations
func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(a float64) color.Color {
			return hsv(240-(a*240), 0.9+(a*0.1), math.Pow(a, 0.7))
		}

	case GrayscaleTheme:
		return func(a float64) color.Color {
			v := uint8(math.Pow(a, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}

	case JungleTheme:
		return func(a float64) color.Color {
			return hsv(120-(a*60), 1.0, 0.3+(math.Pow(a, 0.6)*0.7))
		}

	case ThermalTheme:
		return func(a float64) color.Color {
			switch {
			case a < 0.33:
				return color.RGBA{R: uint8(clamp01(a*3) * 255), A: 255}
			case a < 0.66:
				return color.RGBA{R: 255, G: uint8(clamp01((a-0.33)*3) * 255), A: 255}
			default:
				return color.RGBA{R: 255, G: 255, B: uint8(clamp01((a-0.66)*3) * 255), A: 255}
			}
		}

	case MarineTheme:
		return func(a float64) color.Color {
			return hsv(240-(a*60), 1.0-(a*0.8), 0.3+(math.Pow(a, 0.6)*0.7))
		}

	default:
		return func(a float64) color.Color {
			a = clamp01(a)
			enhanced := math.Pow(a, 0.7)

			switch {
			case a < 0.25:
				return hsv(240, 1.0, enhanced*4)
			case a < 0.5:
				return hsv(240-((a-0.25)*240), 1.0, enhanced*1.5)
			case a < 0.75:
				return hsv(180-((a-0.5)*4*120), 1.0, enhanced*1.5)
			default:
				return hsv(60-((a-0.75)*4*60), 1.0, 1.0)
			}
		}
	}
}
