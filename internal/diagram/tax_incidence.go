package diagram

import (
	"fmt"

	"github.com/gogpu/gg"

	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/plot"
)

// TaxIncidence shows how a per-unit tax levied on sellers is split between
// buyers and sellers. The tax shifts supply up by its amount; consumers pay
// the rise in market price and producers absorb the rest.
//
// The elasticityRatio field is carried in the parameter record for display
// only; the split follows from the curve slopes.
type TaxIncidence struct{}

func (TaxIncidence) Kind() Kind    { return KindTaxIncidence }
func (TaxIncidence) Title() string { return "Tax Incidence: Who Bears the Tax Burden?" }

func (TaxIncidence) Explanation() string {
	return "Tax incidence is who ultimately bears a tax, whoever it is levied on. " +
		"It depends on the relative price elasticities of supply and demand. " +
		"When demand is more elastic than supply, producers bear most of the burden; when supply is more elastic, consumers do. " +
		"The green band is the burden on consumers, the rise in the price they pay. " +
		"The blue band is the burden on producers, the fall in the price they keep."
}

func (TaxIncidence) Fields() []Field {
	return append(marketFields("Market", 0.8),
		Field{Name: "taxAmount", Label: "Tax Amount", Group: "Tax", Min: 0, Max: 100, Step: 5, Default: 0},
		Field{Name: "elasticityRatio", Label: "Elasticity Ratio (Es/Ed)", Group: "Tax", Min: 0.1, Max: 2, Step: 0.1, Default: 0.5},
	)
}

func (TaxIncidence) AxisTitles() (string, string) { return "Quantity", "Price" }

func (d TaxIncidence) Draw(p *plot.Plotter, params model.Params) Result {
	c := p.Style().Colors
	r := newResult(d, params)

	demand, supply := demandCurve(params), supplyCurve(params)
	orig := r.solve(p, demand.Func(), supply.Func())

	p.Curve(demand.Func(), c.Demand)
	p.Curve(supply.Func(), c.Supply)
	p.Point(orig.Quantity, orig.Price, c.Equilibrium)
	r.addPoint("original", orig)

	t := params.Get("taxAmount")
	if t <= 0 {
		return *r
	}

	taxed := supply.Shift(t)
	p.Curve(taxed.Func(), c.TariffedSupply)

	eq := r.solve(p, demand.Func(), taxed.Func())
	p.Point(eq.Quantity, eq.Price, c.NewEquilibrium)
	producerPrice := eq.Price - t

	p.DashedHLine(eq.Price, c.TariffedSupply)
	p.DashedHLine(producerPrice, c.Supply)
	p.DashedHLine(orig.Price, c.Equilibrium)
	p.DashedVLine(eq.Quantity, c.NewEquilibrium)

	priceLabel(p, eq.Price, fmt.Sprintf("Consumer Price: %s", plot.Round(eq.Price)), c.TariffedSupply)
	priceLabel(p, producerPrice, fmt.Sprintf("Producer Price: %s", plot.Round(producerPrice)), c.Supply)
	priceLabel(p, orig.Price, fmt.Sprintf("Original Price: %s", plot.Round(orig.Price)), c.Equilibrium)

	consumerBurden := eq.Price - orig.Price
	producerBurden := orig.Price - producerPrice

	p.Region(model.Polygon{
		model.Pt(0, orig.Price),
		model.Pt(eq.Quantity, orig.Price),
		model.Pt(eq.Quantity, eq.Price),
		model.Pt(0, eq.Price),
	}, c.ConsumerSurplus, gg.Transparent)
	p.Region(model.Polygon{
		model.Pt(0, producerPrice),
		model.Pt(eq.Quantity, producerPrice),
		model.Pt(eq.Quantity, orig.Price),
		model.Pt(0, orig.Price),
	}, c.ProducerSurplus, gg.Transparent)
	p.Region(model.Polygon{
		model.Pt(eq.Quantity, eq.Price),
		model.Pt(orig.Quantity, orig.Price),
		model.Pt(eq.Quantity, producerPrice),
	}, c.DeadweightLoss, c.DeadweightLossBorder)

	r.addPoint("taxed", eq)
	r.addScalar("producer_price", producerPrice)
	r.addScalar("consumer_burden", consumerBurden)
	r.addScalar("producer_burden", producerBurden)
	r.addScalar("consumer_share", consumerBurden/t*100)
	r.addScalar("producer_share", producerBurden/t*100)
	r.addScalar("tax_revenue", t*eq.Quantity)
	r.addScalar("deadweight_loss", (orig.Quantity-eq.Quantity)*t/2)
	return *r
}
