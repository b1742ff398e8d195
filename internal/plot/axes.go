package plot

import (
	"github.com/econviz/diagram-engine/internal/render"
)

// axisDivisions is the number of grid cells and tick intervals per axis.
const axisDivisions = 5

// tickLength is the tick mark length in pixels.
const tickLength = 5

// Axes draws the optional grid, both axes, tick marks with rounded values and
// the axis titles.
func (p *Plotter) Axes(xLabel, yLabel string) {
	s := p.surface
	st := p.style
	v := p.mapper.Viewport()
	b := p.mapper.Bounds()
	pad := v.Padding

	if st.Graph.GridLines {
		grid := render.StrokeStyle{Color: st.Colors.Grid, Width: 1}
		for i := 0; i <= axisDivisions; i++ {
			x := pad + float64(i)*((v.Width-2*pad)/axisDivisions)
			s.BeginPath()
			s.MoveTo(x, pad)
			s.LineTo(x, v.Height-pad)
			p.keep(s.Stroke(grid))
		}
		for i := 0; i <= axisDivisions; i++ {
			y := pad + float64(i)*((v.Height-2*pad)/axisDivisions)
			s.BeginPath()
			s.MoveTo(pad, y)
			s.LineTo(v.Width-pad, y)
			p.keep(s.Stroke(grid))
		}
	}

	axis := render.StrokeStyle{Color: st.Colors.Axis, Width: st.Graph.AxisWidth}

	s.BeginPath()
	s.MoveTo(pad, pad)
	s.LineTo(pad, v.Height-pad)
	p.keep(s.Stroke(axis))

	s.BeginPath()
	s.MoveTo(pad, v.Height-pad)
	s.LineTo(v.Width-pad, v.Height-pad)
	p.keep(s.Stroke(axis))

	title := render.TextStyle{Color: st.Colors.Axis, Size: st.TitleSize, Align: render.AlignCenter}
	vertical := title
	vertical.Vertical = true
	s.Text(yLabel, 15, v.Height/2, vertical)
	s.Text(xLabel, v.Width/2, v.Height-10, title)

	tick := render.TextStyle{Color: st.Colors.Axis, Size: st.TickSize, Align: render.AlignRight}
	for i := 0; i <= axisDivisions; i++ {
		price := float64(i) * (b.MaxPrice / axisDivisions)
		y := p.mapper.Y(price)
		s.BeginPath()
		s.MoveTo(pad-tickLength, y)
		s.LineTo(pad, y)
		p.keep(s.Stroke(axis))
		s.Text(Round(price), pad-8, y+4, tick)
	}

	tick.Align = render.AlignCenter
	for i := 0; i <= axisDivisions; i++ {
		q := float64(i) * (b.MaxQuantity / axisDivisions)
		x := p.mapper.X(q)
		s.BeginPath()
		s.MoveTo(x, v.Height-pad)
		s.LineTo(x, v.Height-pad+tickLength)
		p.keep(s.Stroke(axis))
		s.Text(Round(q), x, v.Height-pad+18, tick)
	}
}
