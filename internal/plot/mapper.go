// Package plot is the shared drawing layer every diagram is built on. It maps
// economic coordinates to pixels and paints axes, curves, shaded regions and
// annotations onto a render.Surface.
package plot

import "github.com/econviz/diagram-engine/internal/model"

// Mapper is the affine transform from (quantity, price) to pixel space.
// Pixel rows grow downward, so price is inverted. Values outside the domain
// map outside the plot area and are not rejected.
type Mapper struct {
	bounds   model.Bounds
	viewport model.Viewport
}

// NewMapper builds a mapper for one draw.
func NewMapper(bounds model.Bounds, viewport model.Viewport) Mapper {
	return Mapper{bounds: bounds, viewport: viewport}
}

// X maps a quantity to a pixel column.
func (m Mapper) X(quantity float64) float64 {
	v := m.viewport
	return v.Padding + (quantity/m.bounds.MaxQuantity)*(v.Width-2*v.Padding)
}

// Y maps a price to a pixel row.
func (m Mapper) Y(price float64) float64 {
	v := m.viewport
	return v.Height - v.Padding - (price/m.bounds.MaxPrice)*(v.Height-2*v.Padding)
}

// XY maps a domain point.
func (m Mapper) XY(p model.Point) (x, y float64) {
	return m.X(p.Quantity), m.Y(p.Price)
}

func (m Mapper) Bounds() model.Bounds     { return m.bounds }
func (m Mapper) Viewport() model.Viewport { return m.viewport }
