package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 96.0
	fontSize       = 9.0
	tickMarkHeight = 5
	pixelsPerLabel = 100.0

	// Default border sizes in pixels
	defaultTopBorder    = 30
	defaultLeftBorder   = 150
	defaultBottomBorder = 30
	defaultRightBorder  = 20

	defaultDatetimeFormat = time.DateTime
)

var (
	peakColor     = color.White
	rejectedColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// BorderConfig defines the sizes of white space around the plot
type BorderConfig struct {
	Top    int // Space for reflector height scale
	Left   int // Space for arc labels
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for periodogram visualization
type RenderConfig struct {
	DatetimeFormat string
	Location       *time.Location

	FontSize     float64
	ColorTheme   ColorTheme
	ColorMapSize int

	// Overrides the bounds tracked from the data
	MinAmplitude *float64
	MaxAmplitude *float64

	NoAnnotations bool
	BorderConfig  BorderConfig
}

// PeriodogramRenderer renders resampled periodograms as a heat map
type PeriodogramRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

func NewPeriodogramRenderer(config RenderConfig) (*PeriodogramRenderer, error) {
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	if config.MinAmplitude != nil && config.MaxAmplitude != nil && *config.MinAmplitude >= *config.MaxAmplitude {
		return nil, fmt.Errorf("invalid amplitude range: %g..%g", *config.MinAmplitude, *config.MaxAmplitude)
	}

	return &PeriodogramRenderer{config: config}, nil
}

// Bounds returns the amplitude range mapped onto the color theme.
func (r *PeriodogramRenderer) Bounds(data *PeriodogramData) AmplitudeBounds {
	bounds := data.BoundsTracker.Bounds()
	if r.config.MinAmplitude != nil {
		bounds.Min = *r.config.MinAmplitude
	}
	if r.config.MaxAmplitude != nil {
		bounds.Max = *r.config.MaxAmplitude
	}
	return bounds
}

// Render creates an image of the periodograms with annotations
func (r *PeriodogramRenderer) Render(data *PeriodogramData) (*image.RGBA, error) {
	if data.Len() == 0 || len(data.Rows) != data.Len() {
		return nil, ErrNoPeriodograms
	}

	borders := r.config.BorderConfig
	fullWidth := data.Width + borders.Left + borders.Right
	fullHeight := data.Height + borders.Top + borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plotArea := image.Rect(
		borders.Left,
		borders.Top,
		borders.Left+data.Width,
		borders.Top+data.Height,
	)

	bounds := r.Bounds(data)
	if r.colorMap == nil {
		r.colorMap = NewColorMapperWithSize(r.config.ColorTheme, bounds, r.config.ColorMapSize)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			DatetimeFormat: r.config.DatetimeFormat,
			Location:       r.config.Location,
			FontSize:       r.config.FontSize,
			Borders:        borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, data, bounds); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderPeriodograms(img, plotArea, data)
	return img, nil
}

// renderPeriodograms draws the amplitude rows and marks every peak
func (r *PeriodogramRenderer) renderPeriodograms(img *image.RGBA, area image.Rectangle, data *PeriodogramData) {
	for i, row := range data.Rows {
		top := area.Min.Y + i*data.RowHeight
		for x, amplitude := range row {
			c := r.colorMap.GetColor(amplitude)
			for y := top; y < top+data.RowHeight; y++ {
				img.Set(area.Min.X+x, y, c)
			}
		}

		var marker color.Color = peakColor
		if !data.Arcs[i].Accepted {
			marker = rejectedColor
		}
		if x := data.Column(data.Arcs[i].PeakRH); x >= 0 && x < data.Width {
			for y := top; y < top+data.RowHeight; y++ {
				img.Set(area.Min.X+x, y, marker)
			}
		}
	}
}

type annotatorConfig struct {
	DatetimeFormat string
	Location       *time.Location
	FontSize       float64
	Borders        BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, data *PeriodogramData, bounds AmplitudeBounds) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawHeightScale(img, data); err != nil {
		return fmt.Errorf("drawing height scale: %w", err)
	}
	if err := a.drawArcLabels(img, data); err != nil {
		return fmt.Errorf("drawing arc labels: %w", err)
	}
	if err := a.drawInfoBar(img, data, bounds); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawHeightScale(img *image.RGBA, data *PeriodogramData) error {
	step := calculateNiceHeightStep(data.RHMax-data.RHMin, data.Width)
	textY := a.config.Borders.Top - tickMarkHeight - a.fontFace.Metrics().Descent.Round()

	for rh := math.Ceil(data.RHMin/step) * step; rh <= data.RHMax; rh += step {
		x := a.config.Borders.Left + data.Column(rh)

		for y := a.config.Borders.Top - tickMarkHeight; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatHeight(rh)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing height label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawArcLabels(img *image.RGBA, data *PeriodogramData) error {
	fontHeight := a.fontHeight()
	every := max(1, int(math.Ceil(float64(fontHeight)/float64(data.RowHeight))))
	descent := a.fontFace.Metrics().Descent.Round()

	for i := 0; i < data.Len(); i += every {
		rowY := a.config.Borders.Top + i*data.RowHeight

		for x := a.config.Borders.Left - tickMarkHeight; x < a.config.Borders.Left; x++ {
			img.Set(x, rowY, color.Black)
		}

		textY := rowY + fontHeight/2 - descent
		pt := freetype.Pt(3, textY)
		if _, err := a.context.DrawString(data.Arcs[i].Label, pt); err != nil {
			return fmt.Errorf("drawing arc label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, data *PeriodogramData, bounds AmplitudeBounds) error {
	var sb strings.Builder

	if data.Run != nil {
		sb.WriteString(fmt.Sprintf("%s %s; ",
			data.Run.Station,
			data.Run.StartTime.In(a.config.Location).Format(a.config.DatetimeFormat)))
	}
	sb.WriteString(fmt.Sprintf("RH: %s - %s; ", formatHeight(data.RHMin), formatHeight(data.RHMax)))
	sb.WriteString(fmt.Sprintf("Arcs: %s; ", humanize.Comma(int64(data.Len()))))
	sb.WriteString(fmt.Sprintf("Amplitude: %0.1f - %0.1f; ", bounds.Min, bounds.Max))
	sb.WriteString(fmt.Sprintf("1px = %s", formatHeight(data.Resolution())))

	metrics := a.fontFace.Metrics()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-a.fontHeight())/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

func calculateNiceHeightStep(span float64, width int) float64 {
	// Standard step sizes in metres
	steps := []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10}

	desiredSteps := float64(width) / pixelsPerLabel
	targetStep := span / desiredSteps

	for _, step := range steps {
		if step >= targetStep {
			if span/step >= 2 {
				return step
			}
			break
		}
	}

	return span / 2
}

func formatHeight(m float64) string {
	value, prefix := humanize.ComputeSI(m)
	return fmt.Sprintf("%0.2f %sm", value, prefix)
}
