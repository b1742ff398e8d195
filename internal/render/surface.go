// Package render defines the 2D drawing surface the plot layer paints on and
// provides its implementations: a raster surface backed by gogpu/gg, an SVG
// surface and a Recorder that logs operations.
//
// Surfaces follow canvas semantics: BeginPath starts an empty path, Stroke
// and Fill paint the current path without consuming it.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gg"
)

// Align is the horizontal anchor of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// StrokeStyle describes how a path outline is painted.
type StrokeStyle struct {
	Color gg.RGBA
	Width float64
	Dash  []float64 // nil for solid lines
}

// TextStyle describes a text run. Y is the baseline.
type TextStyle struct {
	Color    gg.RGBA
	Size     float64
	Align    Align
	Vertical bool // rotated -90 degrees about the anchor
}

// Surface is the capability set the plot layer depends on.
type Surface interface {
	// Size returns the canvas size in pixels.
	Size() (width, height int)

	// Clear fills the whole canvas with col and drops the current path.
	Clear(col gg.RGBA)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Circle adds a closed circular sub-path.
	Circle(x, y, r float64)
	ClosePath()

	Stroke(style StrokeStyle) error
	Fill(col gg.RGBA) error

	Text(s string, x, y float64, style TextStyle)

	// Encode writes the finished drawing in the surface's native format.
	Encode(w io.Writer) error
	// ContentType is the MIME type produced by Encode.
	ContentType() string
}

// Format names an image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrUnknownFormat is returned for an unsupported image format.
var ErrUnknownFormat = errors.New("render: unknown image format")

// ParseFormat maps a user-supplied name to a Format. Empty means PNG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// New creates a surface producing the given format.
func New(format Format, width, height int) (Surface, error) {
	switch format {
	case FormatPNG:
		r, err := NewRaster(width, height)
		if err != nil {
			return nil, err
		}
		return r, nil
	case FormatSVG:
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("render: invalid svg size %dx%d", width, height)
		}
		return NewSVG(width, height), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
