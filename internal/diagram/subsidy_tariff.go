package diagram

import (
	"fmt"

	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/plot"
)

// SubsidyTariff compares a per-unit subsidy, which lowers the supply curve,
// with a per-unit tariff, which raises it. Either policy is drawn only when
// its amount is positive; both can be active at once.
type SubsidyTariff struct{}

func (SubsidyTariff) Kind() Kind    { return KindSubsidyTariff }
func (SubsidyTariff) Title() string { return "Subsidy vs Tariff: Economic Impact Comparison" }

func (SubsidyTariff) Explanation() string {
	return "A subsidy is a government payment to producers that shifts the supply curve down. " +
		"Market price falls and quantity rises, at a cost to the government of subsidy times quantity. " +
		"A tariff is a tax on imports that shifts the supply curve up. " +
		"Market price rises and quantity falls, raising revenue of tariff times quantity. " +
		"The shaded triangles show the deadweight loss each policy introduces."
}

func (SubsidyTariff) Fields() []Field {
	return append(marketFields("Demand & Supply", 1.0),
		Field{Name: "subsidyAmount", Label: "Subsidy Amount", Group: "Policy", Min: 0, Max: 100, Step: 5, Default: 0},
		Field{Name: "tariffAmount", Label: "Tariff Amount", Group: "Policy", Min: 0, Max: 100, Step: 5, Default: 0},
	)
}

func (SubsidyTariff) AxisTitles() (string, string) { return "Quantity", "Price" }

func (d SubsidyTariff) Draw(p *plot.Plotter, params model.Params) Result {
	c := p.Style().Colors
	r := newResult(d, params)

	demand, supply := demandCurve(params), supplyCurve(params)
	orig := r.solve(p, demand.Func(), supply.Func())

	p.Curve(demand.Func(), c.Demand)
	p.Curve(supply.Func(), c.Supply)
	p.Point(orig.Quantity, orig.Price, c.Equilibrium)
	r.addPoint("original", orig)

	if s := params.Get("subsidyAmount"); s > 0 {
		subsidized := supply.Shift(-s)
		p.Curve(subsidized.Func(), c.SubsidizedSupply)

		eq := r.solve(p, demand.Func(), subsidized.Func())
		p.Point(eq.Quantity, eq.Price, c.NewEquilibrium)

		producerPrice := eq.Price + s
		p.DashedHLine(eq.Price, c.SubsidizedSupply)
		p.DashedHLine(producerPrice, c.Supply)
		p.DashedVLine(eq.Quantity, c.NewEquilibrium)
		priceLabel(p, eq.Price, fmt.Sprintf("Consumer Price: %s", plot.Round(eq.Price)), c.SubsidizedSupply)
		priceLabel(p, producerPrice, fmt.Sprintf("Producer Price: %s", plot.Round(producerPrice)), c.Supply)

		p.Region(model.Polygon{
			model.Pt(orig.Quantity, supply.Price(orig.Quantity)),
			model.Pt(eq.Quantity, supply.Price(eq.Quantity)),
			model.Pt(eq.Quantity, subsidized.Price(eq.Quantity)),
		}, c.DeadweightLoss, c.DeadweightLossBorder)

		r.addPoint("subsidized", eq)
		r.addScalar("subsidy_producer_price", producerPrice)
		r.addScalar("total_subsidy_cost", s*eq.Quantity)
		r.addScalar("subsidy_deadweight_loss", (eq.Quantity-orig.Quantity)*s/2)
	}

	if t := params.Get("tariffAmount"); t > 0 {
		tariffed := supply.Shift(t)
		p.Curve(tariffed.Func(), c.TariffedSupply)

		eq := r.solve(p, demand.Func(), tariffed.Func())
		p.Point(eq.Quantity, eq.Price, c.NewEquilibrium)

		producerPrice := eq.Price - t
		p.DashedHLine(eq.Price, c.TariffedSupply)
		p.DashedHLine(producerPrice, c.Supply)
		p.DashedVLine(eq.Quantity, c.NewEquilibrium)
		priceLabel(p, eq.Price, fmt.Sprintf("Consumer Price: %s", plot.Round(eq.Price)), c.TariffedSupply)
		priceLabel(p, producerPrice, fmt.Sprintf("Producer Price: %s", plot.Round(producerPrice)), c.Supply)

		p.Region(model.Polygon{
			model.Pt(eq.Quantity, tariffed.Price(eq.Quantity)),
			model.Pt(orig.Quantity, tariffed.Price(orig.Quantity)),
			model.Pt(orig.Quantity, supply.Price(orig.Quantity)),
		}, c.DeadweightLoss, c.DeadweightLossBorder)

		r.addPoint("tariffed", eq)
		r.addScalar("tariff_producer_price", producerPrice)
		r.addScalar("total_tariff_revenue", t*eq.Quantity)
		r.addScalar("tariff_deadweight_loss", (orig.Quantity-eq.Quantity)*t/2)
	}

	return *r
}
