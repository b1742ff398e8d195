package plot

import (
	"math"
	"strconv"

	"github.com/gogpu/gg"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/render"
)

// CurveStep is the quantity interval between curve samples.
const CurveStep = 2.0

// Plotter paints one diagram. It is created per draw with a fresh Mapper for
// the surface's current size and is not reused across draws.
//
// Surface errors never interrupt a draw; the first one is kept and reported
// by Err.
type Plotter struct {
	surface render.Surface
	mapper  Mapper
	style   *config.Style
	err     error
}

// New creates a plotter for surface using the style's domain bounds.
func New(surface render.Surface, style *config.Style) *Plotter {
	w, h := surface.Size()
	return &Plotter{
		surface: surface,
		mapper:  NewMapper(style.Bounds(), style.Viewport(w, h)),
		style:   style,
	}
}

func (p *Plotter) Mapper() Mapper          { return p.mapper }
func (p *Plotter) Style() *config.Style    { return p.style }
func (p *Plotter) Surface() render.Surface { return p.surface }

// Err returns the first surface error seen during the draw.
func (p *Plotter) Err() error { return p.err }

func (p *Plotter) keep(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

// Clear wipes the canvas to the background color.
func (p *Plotter) Clear() {
	p.surface.Clear(p.style.Colors.Background)
}

// Curve samples f over [0, MaxQuantity] every CurveStep and strokes the
// samples whose price lies in [0, MaxPrice]. A sample outside that band
// breaks the line; the curve is truncated, never clamped.
func (p *Plotter) Curve(f model.PriceFunc, col gg.RGBA) {
	p.CurveWidth(f, col, p.style.Graph.LineWidth)
}

// CurveWidth is Curve with an explicit line width.
func (p *Plotter) CurveWidth(f model.PriceFunc, col gg.RGBA, width float64) {
	b := p.mapper.Bounds()
	s := p.surface

	s.BeginPath()
	penDown := false
	for i := 0; ; i++ {
		q := float64(i) * CurveStep
		if q > b.MaxQuantity {
			break
		}
		price := f(q)
		if !(price >= 0 && price <= b.MaxPrice) {
			penDown = false
			continue
		}
		x, y := p.mapper.X(q), p.mapper.Y(price)
		if penDown {
			s.LineTo(x, y)
		} else {
			s.MoveTo(x, y)
			penDown = true
		}
	}
	p.keep(s.Stroke(render.StrokeStyle{Color: col, Width: width}))
}

// Region fills a closed polygon given in domain coordinates. Fewer than three
// vertices draws nothing. A zero border color (alpha 0) skips the outline.
func (p *Plotter) Region(poly model.Polygon, fill, border gg.RGBA) {
	if len(poly) < 3 {
		return
	}
	s := p.surface
	s.BeginPath()
	s.MoveTo(p.mapper.XY(poly[0]))
	for _, v := range poly[1:] {
		s.LineTo(p.mapper.XY(v))
	}
	s.ClosePath()
	p.keep(s.Fill(fill))
	if border.A > 0 {
		p.keep(s.Stroke(render.StrokeStyle{Color: border, Width: 1}))
	}
}

// Point draws a filled dot at (q, price).
func (p *Plotter) Point(q, price float64, col gg.RGBA) {
	p.PointRadius(q, price, col, p.style.Graph.PointRadius)
}

// PointRadius is Point with an explicit radius.
func (p *Plotter) PointRadius(q, price float64, col gg.RGBA, radius float64) {
	s := p.surface
	s.BeginPath()
	s.Circle(p.mapper.X(q), p.mapper.Y(price), radius)
	p.keep(s.Fill(col))
}

// DashedHLine draws a dashed line at price across the plot width.
func (p *Plotter) DashedHLine(price float64, col gg.RGBA) {
	v := p.mapper.Viewport()
	y := p.mapper.Y(price)
	p.dashed(v.Padding, y, v.Width-v.Padding, y, col)
}

// DashedVLine draws a dashed line at quantity across the plot height.
func (p *Plotter) DashedVLine(q float64, col gg.RGBA) {
	v := p.mapper.Viewport()
	x := p.mapper.X(q)
	p.dashed(x, v.Padding, x, v.Height-v.Padding, col)
}

func (p *Plotter) dashed(x1, y1, x2, y2 float64, col gg.RGBA) {
	s := p.surface
	s.BeginPath()
	s.MoveTo(x1, y1)
	s.LineTo(x2, y2)
	p.keep(s.Stroke(render.StrokeStyle{Color: col, Width: 1, Dash: p.style.DashPattern}))
}

// Label writes text up and to the right of an anchor. The anchor is in domain
// coordinates unless pixelSpace is set. Overlapping labels are not resolved.
func (p *Plotter) Label(x, y float64, text string, col gg.RGBA, pixelSpace bool) {
	if !pixelSpace {
		x, y = p.mapper.X(x), p.mapper.Y(y)
	}
	p.surface.Text(text, x+10, y-10, render.TextStyle{
		Color: col,
		Size:  p.style.LabelSize,
		Align: render.AlignLeft,
	})
}

// Round formats v rounded to the nearest integer with halves rounded up.
// Non-finite values are spelled out so broken inputs stay visible.
func Round(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	r := math.Floor(v + 0.5)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}
