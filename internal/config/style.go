// Package config holds the process-wide settings of the diagram engine: the
// immutable drawing style shared by every renderer and the server settings
// read from the environment.
package config

import (
	"github.com/gogpu/gg"

	"github.com/econviz/diagram-engine/internal/model"
)

// Graph holds plot geometry and the visible economic domain.
type Graph struct {
	Padding     float64
	AxisWidth   float64
	LineWidth   float64
	PointRadius float64
	MaxPrice    float64
	MaxQuantity float64
	GridLines   bool
}

// Colors is the named palette used by the diagrams.
type Colors struct {
	Background           gg.RGBA
	Demand               gg.RGBA
	Supply               gg.RGBA
	SubsidizedSupply     gg.RGBA
	TariffedSupply       gg.RGBA
	Equilibrium          gg.RGBA
	NewEquilibrium       gg.RGBA
	DeadweightLoss       gg.RGBA
	DeadweightLossBorder gg.RGBA
	Grid                 gg.RGBA
	Axis                 gg.RGBA
	ElasticDemand        gg.RGBA
	InelasticDemand      gg.RGBA
	MonopolyMC           gg.RGBA
	MonopolyMR           gg.RGBA
	MonopolyAC           gg.RGBA
	ConsumerSurplus      gg.RGBA
	ProducerSurplus      gg.RGBA
	GovernmentRevenue    gg.RGBA
}

// Style is built once at startup and shared read-only by every component.
// Nothing mutates a Style after construction; pass it by pointer.
type Style struct {
	Graph  Graph
	Colors Colors

	// Font sizes in pixels.
	LabelSize float64
	TitleSize float64
	TickSize  float64

	// DashPattern is used by the dashed reference lines.
	DashPattern []float64
}

// DefaultStyle returns the stock palette and geometry.
func DefaultStyle() *Style {
	return &Style{
		Graph: Graph{
			Padding:     40,
			AxisWidth:   2,
			LineWidth:   2,
			PointRadius: 5,
			MaxPrice:    300,
			MaxQuantity: 200,
			GridLines:   true,
		},
		Colors: Colors{
			Background:           gg.White,
			Demand:               gg.Hex("#3498db"),
			Supply:               gg.Hex("#e74c3c"),
			SubsidizedSupply:     gg.Hex("#2ecc71"),
			TariffedSupply:       gg.Hex("#9b59b6"),
			Equilibrium:          gg.Hex("#000000"),
			NewEquilibrium:       gg.Hex("#f39c12"),
			DeadweightLoss:       rgba(243, 156, 18, 0.3),
			DeadweightLossBorder: gg.Hex("#f39c12"),
			Grid:                 gg.Hex("#eeeeee"),
			Axis:                 gg.Hex("#666666"),
			ElasticDemand:        gg.Hex("#2980b9"),
			InelasticDemand:      gg.Hex("#1abc9c"),
			MonopolyMC:           gg.Hex("#e67e22"),
			MonopolyMR:           gg.Hex("#9b59b6"),
			MonopolyAC:           gg.Hex("#3498db"),
			ConsumerSurplus:      rgba(46, 204, 113, 0.3),
			ProducerSurplus:      rgba(52, 152, 219, 0.3),
			GovernmentRevenue:    rgba(155, 89, 182, 0.3),
		},
		LabelSize:   12,
		TitleSize:   14,
		TickSize:    14,
		DashPattern: []float64{5, 3},
	}
}

// Bounds returns the economic domain drawn by every diagram.
func (s *Style) Bounds() model.Bounds {
	return model.Bounds{MaxQuantity: s.Graph.MaxQuantity, MaxPrice: s.Graph.MaxPrice}
}

// Viewport returns the viewport for a canvas of the given pixel size.
func (s *Style) Viewport(width, height int) model.Viewport {
	return model.Viewport{Width: float64(width), Height: float64(height), Padding: s.Graph.Padding}
}

func rgba(r, g, b uint8, a float64) gg.RGBA {
	return gg.RGBA2(float64(r)/255, float64(g)/255, float64(b)/255, a)
}
