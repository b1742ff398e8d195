package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

// loadFont parses the embedded Go Regular font once per process.
func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("render: load font: %w", fontErr)
		}
	})
	return fontSource, fontErr
}

// Raster is a Surface backed by a gogpu/gg software context. Encode writes PNG.
// A Raster is owned by a single draw; it is not safe for concurrent use.
type Raster struct {
	dc    *gg.Context
	font  *text.FontSource
	faces map[float64]text.Face
}

// NewRaster allocates a width×height raster surface.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid raster size %dx%d", width, height)
	}
	src, err := loadFont()
	if err != nil {
		return nil, err
	}
	return &Raster{
		dc:    gg.NewContext(width, height),
		font:  src,
		faces: make(map[float64]text.Face),
	}, nil
}

func (r *Raster) Size() (int, int) { return r.dc.Width(), r.dc.Height() }

func (r *Raster) Clear(col gg.RGBA) {
	r.dc.ClearPath()
	r.dc.ClearWithColor(col)
}

func (r *Raster) BeginPath()          { r.dc.ClearPath() }
func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }
func (r *Raster) ClosePath()          { r.dc.ClosePath() }

func (r *Raster) Circle(x, y, radius float64) {
	r.dc.DrawCircle(x, y, radius)
}

func (r *Raster) Stroke(style StrokeStyle) error {
	r.dc.SetColor(style.Color.Color())
	r.dc.SetLineWidth(style.Width)
	if len(style.Dash) > 0 {
		r.dc.SetDash(style.Dash...)
	} else {
		r.dc.ClearDash()
	}
	err := r.dc.StrokePreserve()
	r.dc.ClearDash()
	return err
}

func (r *Raster) Fill(col gg.RGBA) error {
	r.dc.SetColor(col.Color())
	return r.dc.FillPreserve()
}

func (r *Raster) Text(s string, x, y float64, style TextStyle) {
	if s == "" {
		return
	}
	face := r.face(style.Size)
	if style.Vertical {
		r.verticalText(s, x, y, face, style)
		return
	}
	r.dc.SetFont(face)
	r.dc.SetColor(style.Color.Color())
	w, _ := r.dc.MeasureString(s)
	r.dc.DrawString(s, x-anchorOffset(w, style.Align), y)
}

// verticalText draws s reading bottom to top with its baseline on x. The run
// is rendered upright on a scratch context and rotated into place.
func (r *Raster) verticalText(s string, x, y float64, face text.Face, style TextStyle) {
	m := face.Metrics()
	tw := math.Ceil(face.Advance(s))
	th := math.Ceil(m.LineHeight())
	if tw <= 0 || th <= 0 {
		return
	}

	scratch := gg.NewContext(int(tw), int(th))
	defer scratch.Close()
	scratch.ClearWithColor(gg.Transparent)
	scratch.SetFont(face)
	scratch.SetColor(style.Color.Color())
	scratch.DrawString(s, 0, m.Ascent)

	src := scratch.Image()
	rotated := image.NewRGBA(image.Rect(0, 0, int(th), int(tw)))
	// Quarter turn counter-clockwise: (sx, sy) -> (sy, tw - sx).
	s2d := f64.Aff3{0, 1, 0, -1, 0, tw}
	draw.BiLinear.Transform(rotated, s2d, src, src.Bounds(), draw.Over, nil)

	var top float64
	switch style.Align {
	case AlignCenter:
		top = y - tw/2
	case AlignRight:
		top = y
	default:
		top = y - tw
	}
	r.dc.DrawImage(gg.ImageBufFromImage(rotated), x-m.Ascent, top)
}

func (r *Raster) face(size float64) text.Face {
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := r.font.Face(size)
	r.faces[size] = f
	return f
}

// Image returns the rendered pixels.
func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) Encode(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

func (r *Raster) ContentType() string { return "image/png" }

// Close releases the underlying context.
func (r *Raster) Close() error { return r.dc.Close() }

func anchorOffset(width float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return width / 2
	case AlignRight:
		return width
	default:
		return 0
	}
}
