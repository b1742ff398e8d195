package diagram

import (
	"fmt"
	"strconv"

	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/plot"
)

// PriceShock is the relative price increase simulated by the elasticity
// diagram.
const PriceShock = 0.10

// Elasticity draws an elastic and an inelastic demand line through a shared
// reference point and shows how each responds to a 10% price increase.
//
// Each line has slope coefficient*price/quantity. A zero reference quantity
// is not guarded: the slopes become infinite and the figures NaN.
type Elasticity struct{}

func (Elasticity) Kind() Kind    { return KindElasticity }
func (Elasticity) Title() string { return "Price Elasticity of Demand" }

func (Elasticity) Explanation() string {
	return "Price elasticity of demand measures how responsive quantity demanded is to a change in price: " +
		"the percentage change in quantity divided by the percentage change in price. " +
		"Demand is elastic when the coefficient exceeds 1 in absolute value, typical of luxuries and goods with many substitutes. " +
		"It is inelastic below 1, typical of necessities. " +
		"The same 10% price increase cuts quantity far more along the elastic line."
}

func (Elasticity) Fields() []Field {
	return []Field{
		{Name: "price", Label: "Price", Group: "Reference Point", Min: 50, Max: 200, Step: 5, Default: 100},
		{Name: "quantity", Label: "Quantity", Group: "Reference Point", Min: 50, Max: 200, Step: 5, Default: 100},
		{Name: "elasticCoefficient", Label: "Elastic Coefficient", Group: "Elasticity Coefficients", Min: -5, Max: -1.1, Step: 0.1, Default: -2.0},
		{Name: "inelasticCoefficient", Label: "Inelastic Coefficient", Group: "Elasticity Coefficients", Min: -0.9, Max: -0.1, Step: 0.1, Default: -0.5},
	}
}

func (Elasticity) AxisTitles() (string, string) { return "Quantity", "Price" }

// pointSlope returns the demand line through (q, price) with the given
// point elasticity.
func pointSlope(q, price, coefficient float64) model.AffineCurve {
	slope := coefficient * (price / q)
	return model.AffineCurve{Intercept: price - slope*q, Slope: slope}
}

func (d Elasticity) Draw(p *plot.Plotter, params model.Params) Result {
	c := p.Style().Colors
	r := newResult(d, params)

	price, q := params.Get("price"), params.Get("quantity")
	elastic := pointSlope(q, price, params.Get("elasticCoefficient"))
	inelastic := pointSlope(q, price, params.Get("inelasticCoefficient"))

	p.Curve(elastic.Func(), c.ElasticDemand)
	p.Curve(inelastic.Func(), c.InelasticDemand)

	p.Point(q, price, c.Equilibrium)
	p.Label(q, price, fmt.Sprintf("Reference Point (Q=%s, P=%s)", num(q), num(price)), c.Equilibrium, false)

	newPrice := price * (1 + PriceShock)
	elasticQ := (newPrice - elastic.Intercept) / elastic.Slope
	inelasticQ := (newPrice - inelastic.Intercept) / inelastic.Slope
	elasticPct := (elasticQ - q) / q * 100
	inelasticPct := (inelasticQ - q) / q * 100

	p.DashedHLine(newPrice, c.Equilibrium)
	priceLabel(p, newPrice, fmt.Sprintf("New Price: %s (+10%%)", plot.Round(newPrice)), c.Equilibrium)

	p.DashedVLine(elasticQ, c.ElasticDemand)
	p.DashedVLine(inelasticQ, c.InelasticDemand)
	p.Label(elasticQ, newPrice-20,
		fmt.Sprintf("Elastic: Q=%s (%s%%)", plot.Round(elasticQ), plot.Round(elasticPct)), c.ElasticDemand, false)
	p.Label(inelasticQ, newPrice+20,
		fmt.Sprintf("Inelastic: Q=%s (%s%%)", plot.Round(inelasticQ), plot.Round(inelasticPct)), c.InelasticDemand, false)

	r.addPoint("reference", model.Pt(q, price))
	r.addScalar("new_price", newPrice)
	r.addPoint("elastic", model.Pt(elasticQ, newPrice))
	r.addScalar("elastic_coefficient", params.Get("elasticCoefficient"))
	r.addScalar("elastic_percent_change", elasticPct)
	r.addPoint("inelastic", model.Pt(inelasticQ, newPrice))
	r.addScalar("inelastic_coefficient", params.Get("inelasticCoefficient"))
	r.addScalar("inelastic_percent_change", inelasticPct)
	return *r
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
