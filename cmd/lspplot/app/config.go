package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"

	defaultWidth     = 800
	defaultRowHeight = 6
)

type ImageFormat string

type Config struct {
	DBPath        string
	RunID         *uuid.UUID // Latest run when nil
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	Band          *gnss.Band
	AcceptedOnly  bool
	MinAmplitude  *float64
	MaxAmplitude  *float64
	Width         int
	RowHeight     int
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

var validThemes = map[ColorTheme]struct{}{
	DefaultTheme:   {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

func NewConfig() *Config {
	return &Config{
		Format:    ImagePNG,
		Theme:     DefaultTheme,
		Width:     defaultWidth,
		RowHeight: defaultRowHeight,
	}
}

// NewConfigFromCLI parses the command line arguments, without the program name.
func NewConfigFromCLI(args []string) (*Config, error) {
	c := NewConfig()

	fs := flag.NewFlagSet("lspplot", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var runID, imageFormat, theme string
	var band int
	var minAmplitude, maxAmplitude float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.StringVar(&runID, "r", "", "Run ID, defaults to the latest run")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(DefaultTheme), "Color theme. [default, classic, grayscale, jungle, thermal, marine]")
	fs.IntVar(&band, "band", 0, "Plot a single band code only, e.g. 1 for GPS L1")
	fs.BoolVar(&c.AcceptedOnly, "accepted", false, "Plot accepted retrievals only")
	fs.Float64Var(&minAmplitude, "min-amp", 0, "Define a manual minimum amplitude (format nn.n)")
	fs.Float64Var(&maxAmplitude, "max-amp", 0, "Define a manual maximum amplitude (format nn.n)")
	fs.IntVar(&c.Width, "w", defaultWidth, "Width of the plot area in pixels")
	fs.IntVar(&c.RowHeight, "row", defaultRowHeight, "Height of an arc row in pixels")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as height scale and arc labels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)
	theme = strings.ToLower(theme)

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-amp":
			c.MinAmplitude = &minAmplitude
		case "max-amp":
			c.MaxAmplitude = &maxAmplitude
		case "band":
			var b gnss.Band
			if b, err = gnss.ParseBand(band); err == nil {
				c.Band = &b
			}
		case "r":
			var id uuid.UUID
			if id, err = uuid.Parse(runID); err != nil {
				err = fmt.Errorf("invalid run id: %w", err)
			} else {
				c.RunID = &id
			}
		}
	})

	switch {
	case err != nil:
	case c.DBPath == "":
		err = errors.New("db path is required")
	case c.OutputFile == "":
		err = errors.New("output file is required")
	case c.Width < 2:
		err = fmt.Errorf("invalid width: %d", c.Width)
	case c.RowHeight < 1:
		err = fmt.Errorf("invalid row height: %d", c.RowHeight)
	case c.MinAmplitude != nil && c.MaxAmplitude != nil && *c.MinAmplitude >= *c.MaxAmplitude:
		err = fmt.Errorf("invalid amplitude range: %g..%g", *c.MinAmplitude, *c.MaxAmplitude)
	}
	if err == nil {
		if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
			err = fmt.Errorf("invalid image format: %s", imageFormat)
		} else if _, ok = validThemes[ColorTheme(theme)]; !ok {
			err = fmt.Errorf("invalid color theme: %s", theme)
		}
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
