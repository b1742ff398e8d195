package diagram

import (
	"fmt"

	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/plot"
)

// Monopoly draws a single seller facing linear demand with constant marginal
// cost. Output is set where marginal revenue equals marginal cost and the
// price is read off the demand curve. Both quantities are closed form; the
// solver is not used.
type Monopoly struct{}

func (Monopoly) Kind() Kind    { return KindMonopoly }
func (Monopoly) Title() string { return "Monopoly Pricing and Output" }

func (Monopoly) Explanation() string {
	return "A monopoly is the single seller in a market and faces the whole demand curve, so it can move price by changing output. " +
		"It maximizes profit by producing where marginal revenue equals marginal cost " +
		"and charges the price the demand curve gives at that quantity. " +
		"Under perfect competition output would expand until price equals marginal cost. " +
		"The shaded triangle is the deadweight loss from monopoly pricing."
}

func (Monopoly) Fields() []Field {
	return []Field{
		{Name: "demandIntercept", Label: "Demand Intercept", Group: "Demand", Min: 100, Max: 300, Step: 10, Default: 200},
		{Name: "demandSlope", Label: "Demand Slope", Group: "Demand", Min: -2, Max: -0.1, Step: 0.1, Default: -0.5},
		{Name: "fixedCost", Label: "Fixed Cost", Group: "Cost", Min: 0, Max: 3000, Step: 100, Default: 1000},
		{Name: "marginalCost", Label: "Marginal Cost", Group: "Cost", Min: 0, Max: 150, Step: 5, Default: 50},
	}
}

func (Monopoly) AxisTitles() (string, string) { return "Quantity", "Price/Cost" }

func (d Monopoly) Draw(p *plot.Plotter, params model.Params) Result {
	c := p.Style().Colors
	maxPrice := p.Mapper().Bounds().MaxPrice
	r := newResult(d, params)

	demand := demandCurve(params)
	mr := model.AffineCurve{Intercept: demand.Intercept, Slope: 2 * demand.Slope}
	mc := params.Get("marginalCost")
	fixed := params.Get("fixedCost")

	p.Curve(demand.Func(), c.Demand)
	p.Curve(mr.Func(), c.MonopolyMR)
	p.Curve(func(float64) float64 { return mc }, c.MonopolyMC)
	// Average cost is unbounded near zero output; below one unit it is
	// pinned to the top of the frame.
	p.Curve(func(q float64) float64 {
		if q < 1 {
			return maxPrice
		}
		return mc + fixed/q
	}, c.MonopolyAC)

	qm := (demand.Intercept - mc) / (-2 * demand.Slope)
	pm := demand.Price(qm)
	qc := (demand.Intercept - mc) / -demand.Slope

	p.Point(qm, pm, c.Equilibrium)
	p.DashedHLine(pm, c.Equilibrium)
	p.DashedVLine(qm, c.Equilibrium)
	p.Point(qm, mc, c.MonopolyMR)

	p.Label(qm, pm, fmt.Sprintf("Monopoly Price: %s", plot.Round(pm)), c.Equilibrium, false)
	p.Label(qm, mc-10, fmt.Sprintf("MC = MR at Q = %s", plot.Round(qm)), c.MonopolyMR, false)

	p.Region(model.Polygon{
		model.Pt(qm, pm),
		model.Pt(qm, mc),
		model.Pt(qc, mc),
	}, c.DeadweightLoss, c.DeadweightLossBorder)

	revenue := pm * qm
	cost := fixed + mc*qm

	r.addPoint("monopoly", model.Pt(qm, pm))
	r.addPoint("competitive", model.Pt(qc, mc))
	r.addScalar("profit", revenue-cost)
	r.addScalar("deadweight_loss", (qc-qm)*(pm-mc)/2)
	return *r
}
