// Package model defines the core domain types shared across the diagram engine.
// Economic space is (quantity, price); pixel space belongs to the render layer.
// All values are float64 so that degenerate inputs surface as NaN/Inf instead
// of errors.
package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidBounds is returned when a domain bound is not positive.
	ErrInvalidBounds = errors.New("model: domain bounds must be positive")

	// ErrInvalidViewport is returned when the canvas cannot hold a plot area.
	ErrInvalidViewport = errors.New("model: invalid viewport")
)

// Bounds is the visible economic space: quantity on X, price on Y.
type Bounds struct {
	MaxQuantity float64 `json:"max_quantity"`
	MaxPrice    float64 `json:"max_price"`
}

// Validate reports whether both bounds are strictly positive.
func (b Bounds) Validate() error {
	if !(b.MaxQuantity > 0) || !(b.MaxPrice > 0) {
		return fmt.Errorf("%w: quantity=%v price=%v", ErrInvalidBounds, b.MaxQuantity, b.MaxPrice)
	}
	return nil
}

// Viewport is the pixel canvas and the margin kept around the plot area.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// Validate checks that the padding leaves a non-empty plot area.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: size %vx%v", ErrInvalidViewport, v.Width, v.Height)
	}
	if v.Padding < 0 || v.Padding >= math.Min(v.Width, v.Height)/2 {
		return fmt.Errorf("%w: padding %v too large for %vx%v", ErrInvalidViewport, v.Padding, v.Width, v.Height)
	}
	return nil
}

// PriceFunc maps a quantity to a price.
type PriceFunc func(quantity float64) float64

// AffineCurve is price = Intercept + Slope*quantity.
// Demand curves carry a negative slope and supply curves a positive one.
type AffineCurve struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// Price evaluates the curve at q.
func (c AffineCurve) Price(q float64) float64 {
	return c.Intercept + c.Slope*q
}

// Shift returns the curve moved vertically by delta.
func (c AffineCurve) Shift(delta float64) AffineCurve {
	return AffineCurve{Intercept: c.Intercept + delta, Slope: c.Slope}
}

// Func returns the curve as a PriceFunc.
func (c AffineCurve) Func() PriceFunc {
	return c.Price
}

// Point is a location in (quantity, price) space.
type Point struct {
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Pt is shorthand for Point{q, p}.
func Pt(q, p float64) Point {
	return Point{Quantity: q, Price: p}
}

// Equilibrium is the crossing point of a demand and a supply curve.
type Equilibrium = Point

// Polygon is an implicitly closed sequence of domain-space vertices.
type Polygon []Point

// Params is the flat parameter record for one diagram, keyed by field name.
type Params map[string]float64

// Get returns the named value, or 0 when absent.
func (p Params) Get(name string) float64 {
	return p[name]
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Snapshot is an immutable archived export: the diagram kind, the parameter
// record it was drawn from and the figures it produced. Figures are rounded
// decimals; non-finite results are not archived.
type Snapshot struct {
	ID        string                     `json:"id" db:"id"`
	Kind      string                     `json:"kind" db:"kind"`
	Params    Params                     `json:"parameters" db:"params"`
	Figures   map[string]decimal.Decimal `json:"figures" db:"figures"`
	CreatedAt time.Time                  `json:"created_at" db:"created_at"`
}
