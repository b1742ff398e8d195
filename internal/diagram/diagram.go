// Package diagram implements the five economics diagrams. Each diagram is a
// stateless value that turns a parameter record into draw calls on a
// plot.Plotter and a Result of the computed economic figures.
//
// Diagrams never validate their input. Degenerate parameters such as a zero
// reference quantity in the elasticity diagram propagate NaN and Inf into
// the drawing and the Result. Range checks belong to the caller; see
// Validate.
package diagram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/plot"
	"github.com/econviz/diagram-engine/internal/render"
)

// Kind is the registry key of a diagram.
type Kind string

// Supported diagram kinds.
const (
	KindSupplyDemand  Kind = "supply-demand"
	KindSubsidyTariff Kind = "subsidy-tariff"
	KindElasticity    Kind = "elasticity"
	KindMonopoly      Kind = "monopoly"
	KindTaxIncidence  Kind = "tax-incidence"
)

var ErrUnknownKind = errors.New("diagram: unknown diagram kind")

// Diagram is the capability set shared by every diagram kind.
type Diagram interface {
	Kind() Kind
	Title() string
	// Explanation is a short plain-text description of the economics shown.
	Explanation() string
	// Fields lists the parameters in display order with their ranges and
	// defaults.
	Fields() []Field
	// AxisTitles returns the quantity and price axis titles.
	AxisTitles() (x, y string)
	// Draw paints the diagram-specific layers. The canvas is already cleared
	// and the axes drawn.
	Draw(p *plot.Plotter, params model.Params) Result
}

var registry = map[Kind]Diagram{}

// order is the display order used by All.
var order []Kind

func register(d Diagram) {
	registry[d.Kind()] = d
	order = append(order, d.Kind())
}

func init() {
	register(SupplyDemand{})
	register(SubsidyTariff{})
	register(Elasticity{})
	register(Monopoly{})
	register(TaxIncidence{})
}

// ParseKind resolves a kind name. Matching ignores case and surrounding
// space, and accepts underscores in place of hyphens.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-"))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Lookup returns the diagram registered for kind.
func Lookup(kind Kind) (Diagram, error) {
	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return d, nil
}

// All returns every diagram in display order.
func All() []Diagram {
	out := make([]Diagram, 0, len(order))
	for _, k := range order {
		out = append(out, registry[k])
	}
	return out
}

// Render draws d onto surface with missing parameters filled from the
// diagram's defaults. The returned error is the first surface failure, if
// any; the Result is complete either way.
func Render(d Diagram, surface render.Surface, style *config.Style, params model.Params) (Result, error) {
	p := plot.New(surface, style)
	p.Clear()
	x, y := d.AxisTitles()
	p.Axes(x, y)

	res := d.Draw(p, WithDefaults(d, params))
	if err := p.Err(); err != nil {
		return res, fmt.Errorf("diagram: draw %s: %w", d.Kind(), err)
	}
	return res, nil
}
