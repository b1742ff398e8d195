package diagram

import (
	"fmt"

	"github.com/gogpu/gg"

	"github.com/econviz/diagram-engine/internal/equilibrium"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/plot"
)

// SupplyDemand is the competitive market: one demand and one supply line,
// their equilibrium, and the consumer and producer surplus triangles.
type SupplyDemand struct{}

func (SupplyDemand) Kind() Kind    { return KindSupplyDemand }
func (SupplyDemand) Title() string { return "Supply and Demand" }

func (SupplyDemand) Explanation() string {
	return "The supply and demand model shows how price and quantity are set in a competitive market. " +
		"The demand curve slopes down: as price rises, quantity demanded falls. " +
		"The supply curve slopes up: as price rises, quantity supplied rises. " +
		"Where the curves cross the market clears, giving the equilibrium price and quantity. " +
		"The shaded triangles are consumer surplus above the price and producer surplus below it."
}

func (SupplyDemand) Fields() []Field { return marketFields("", 1.0) }

func (SupplyDemand) AxisTitles() (string, string) { return "Quantity", "Price" }

func (d SupplyDemand) Draw(p *plot.Plotter, params model.Params) Result {
	c := p.Style().Colors
	r := newResult(d, params)

	demand, supply := demandCurve(params), supplyCurve(params)
	p.Curve(demand.Func(), c.Demand)
	p.Curve(supply.Func(), c.Supply)

	eq := r.solve(p, demand.Func(), supply.Func())
	p.Point(eq.Quantity, eq.Price, c.Equilibrium)
	p.DashedHLine(eq.Price, c.Equilibrium)
	p.DashedVLine(eq.Quantity, c.Equilibrium)
	p.Label(eq.Quantity, eq.Price,
		fmt.Sprintf("Equilibrium (Q=%s, P=%s)", plot.Round(eq.Quantity), plot.Round(eq.Price)),
		c.Equilibrium, false)

	p.Region(model.Polygon{
		model.Pt(0, demand.Intercept),
		model.Pt(eq.Quantity, demand.Intercept),
		model.Pt(eq.Quantity, eq.Price),
	}, c.ConsumerSurplus, gg.Transparent)
	p.Region(model.Polygon{
		model.Pt(0, supply.Intercept),
		model.Pt(eq.Quantity, supply.Intercept),
		model.Pt(eq.Quantity, eq.Price),
	}, c.ProducerSurplus, gg.Transparent)

	r.addPoint("equilibrium", eq)
	r.addScalar("consumer_surplus", eq.Quantity*(demand.Intercept-eq.Price)/2)
	r.addScalar("producer_surplus", eq.Quantity*(eq.Price-supply.Intercept)/2)
	return *r
}

func demandCurve(params model.Params) model.AffineCurve {
	return model.AffineCurve{Intercept: params.Get("demandIntercept"), Slope: params.Get("demandSlope")}
}

func supplyCurve(params model.Params) model.AffineCurve {
	return model.AffineCurve{Intercept: params.Get("supplyIntercept"), Slope: params.Get("supplySlope")}
}

// solve runs the equilibrium solver over the plotter's quantity domain and
// keeps the run for instrumentation.
func (r *Result) solve(p *plot.Plotter, demand, supply model.PriceFunc) model.Equilibrium {
	sol := equilibrium.SolveWithin(p.Mapper().Bounds(), demand, supply)
	r.Solutions = append(r.Solutions, sol)
	return sol.Equilibrium
}

// priceLabel writes text next to the price axis at the given price.
func priceLabel(p *plot.Plotter, price float64, text string, col gg.RGBA) {
	p.Label(30, p.Mapper().Y(price), text, col, true)
}
