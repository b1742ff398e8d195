package diagram

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/render"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func draw(t *testing.T, kind Kind, params model.Params) (Result, *render.Recorder) {
	t.Helper()
	d, err := Lookup(kind)
	if err != nil {
		t.Fatalf("lookup %s: %v", kind, err)
	}
	rec := render.NewRecorder(800, 500)
	res, err := Render(d, rec, config.DefaultStyle(), params)
	if err != nil {
		t.Fatalf("render %s: %v", kind, err)
	}
	return res, rec
}

func mustPoint(t *testing.T, r Result, name string) model.Point {
	t.Helper()
	p, ok := r.Point(name)
	if !ok {
		t.Fatalf("result has no point %q", name)
	}
	return p
}

func mustScalar(t *testing.T, r Result, name string) float64 {
	t.Helper()
	v, ok := r.Scalar(name)
	if !ok {
		t.Fatalf("result has no scalar %q", name)
	}
	return v
}

func hasText(rec *render.Recorder, s string) bool {
	for _, txt := range rec.Texts() {
		if txt == s {
			return true
		}
	}
	return false
}

// --- Registry ---

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"supply-demand", KindSupplyDemand},
		{"Subsidy-Tariff", KindSubsidyTariff},
		{" elasticity ", KindElasticity},
		{"tax_incidence", KindTaxIncidence},
		{"MONOPOLY", KindMonopoly},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, err := ParseKind("oligopoly")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := Lookup("oligopoly"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind from Lookup, got %v", err)
	}
}

func TestAll_DisplayOrder(t *testing.T) {
	want := []Kind{KindSupplyDemand, KindSubsidyTariff, KindElasticity, KindMonopoly, KindTaxIncidence}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("expected %d diagrams, got %d", len(want), len(all))
	}
	for i, d := range all {
		if d.Kind() != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, d.Kind(), want[i])
		}
		if d.Title() == "" || d.Explanation() == "" {
			t.Errorf("%s: missing title or explanation", d.Kind())
		}
		for _, f := range d.Fields() {
			if f.Default < f.Min || f.Default > f.Max {
				t.Errorf("%s.%s: default %v outside [%v, %v]", d.Kind(), f.Name, f.Default, f.Min, f.Max)
			}
		}
	}
}

// --- Parameters ---

func TestWithDefaults(t *testing.T) {
	d := SupplyDemand{}
	got := WithDefaults(d, model.Params{"demandIntercept": 300})
	if got["demandIntercept"] != 300 {
		t.Errorf("set value overwritten: %v", got["demandIntercept"])
	}
	if got["demandSlope"] != -1.5 || got["supplyIntercept"] != 50 || got["supplySlope"] != 1.0 {
		t.Errorf("defaults not filled: %v", got)
	}

	reset := WithDefaults(d, nil)
	if len(reset) != 4 {
		t.Errorf("reset should yield 4 fields, got %v", reset)
	}
}

func TestWithDefaults_DoesNotMutateInput(t *testing.T) {
	in := model.Params{"taxAmount": 10}
	_ = WithDefaults(TaxIncidence{}, in)
	if len(in) != 1 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestDefaults_Monopoly(t *testing.T) {
	got := Defaults(Monopoly{})
	want := model.Params{"demandIntercept": 200, "demandSlope": -0.5, "fixedCost": 1000, "marginalCost": 50}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		d       Diagram
		params  model.Params
		wantErr error
	}{
		{"defaults", SubsidyTariff{}, Defaults(SubsidyTariff{}), nil},
		{"partial", SupplyDemand{}, model.Params{"supplySlope": 2}, nil},
		{"at max", SupplyDemand{}, model.Params{"demandIntercept": 400}, nil},
		{"above max", SupplyDemand{}, model.Params{"demandIntercept": 410}, ErrOutOfRange},
		{"monopoly narrower range", Monopoly{}, model.Params{"demandIntercept": 50}, ErrOutOfRange},
		{"zero reference quantity", Elasticity{}, model.Params{"quantity": 0}, ErrOutOfRange},
		{"nan", SupplyDemand{}, model.Params{"supplySlope": math.NaN()}, ErrOutOfRange},
		{"unknown", SupplyDemand{}, model.Params{"taxAmount": 5}, ErrUnknownParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.d, tt.params)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// --- Supply and demand ---

func TestSupplyDemand_Equilibrium(t *testing.T) {
	res, rec := draw(t, KindSupplyDemand, nil)

	eq := mustPoint(t, res, "equilibrium")
	if !approx(eq.Quantity, 80, 0.01) || !approx(eq.Price, 130, 0.01) {
		t.Errorf("equilibrium = (%f, %f), want (80, 130)", eq.Quantity, eq.Price)
	}
	if cs := mustScalar(t, res, "consumer_surplus"); !approx(cs, 4800, 1) {
		t.Errorf("consumer surplus = %f, want ~4800", cs)
	}
	if ps := mustScalar(t, res, "producer_surplus"); !approx(ps, 3200, 1) {
		t.Errorf("producer surplus = %f, want ~3200", ps)
	}
	if !hasText(rec, "Equilibrium (Q=80, P=130)") {
		t.Errorf("equilibrium label missing, texts: %v", rec.Texts())
	}
	if len(res.Solutions) != 1 || !res.Solutions[0].Converged {
		t.Errorf("expected one converged solve, got %+v", res.Solutions)
	}
	// Two surplus regions.
	if got := rec.Count("fill"); got != 3 {
		t.Errorf("expected 3 fills (point + 2 regions), got %d", got)
	}
}

// --- Subsidy and tariff ---

func TestSubsidyTariff_OppositeSides(t *testing.T) {
	for _, s := range []float64{5, 20, 50, 100} {
		res, _ := draw(t, KindSubsidyTariff, model.Params{"subsidyAmount": s, "tariffAmount": s})

		orig := mustPoint(t, res, "original")
		sub := mustPoint(t, res, "subsidized")
		tar := mustPoint(t, res, "tariffed")
		if !(sub.Quantity > orig.Quantity && orig.Quantity > tar.Quantity) {
			t.Errorf("s=%v: expected subsidized %f > original %f > tariffed %f",
				s, sub.Quantity, orig.Quantity, tar.Quantity)
		}
	}
}

func TestSubsidyTariff_Figures(t *testing.T) {
	res, rec := draw(t, KindSubsidyTariff, model.Params{"subsidyAmount": 20, "tariffAmount": 20})

	sub := mustPoint(t, res, "subsidized")
	if !approx(sub.Quantity, 88, 0.01) || !approx(sub.Price, 118, 0.02) {
		t.Errorf("subsidized = (%f, %f), want (88, 118)", sub.Quantity, sub.Price)
	}
	if pp := mustScalar(t, res, "subsidy_producer_price"); !approx(pp, sub.Price+20, 1e-9) {
		t.Errorf("subsidy producer price = %f", pp)
	}
	if cost := mustScalar(t, res, "total_subsidy_cost"); !approx(cost, 20*sub.Quantity, 1e-9) {
		t.Errorf("subsidy cost = %f", cost)
	}

	tar := mustPoint(t, res, "tariffed")
	if !approx(tar.Quantity, 72, 0.01) || !approx(tar.Price, 142, 0.02) {
		t.Errorf("tariffed = (%f, %f), want (72, 142)", tar.Quantity, tar.Price)
	}
	if rev := mustScalar(t, res, "total_tariff_revenue"); !approx(rev, 20*tar.Quantity, 1e-9) {
		t.Errorf("tariff revenue = %f", rev)
	}
	if !hasText(rec, "Producer Price: 138") || !hasText(rec, "Producer Price: 122") {
		t.Errorf("producer price labels missing, texts: %v", rec.Texts())
	}
}

func TestSubsidyTariff_NoPolicy(t *testing.T) {
	res, rec := draw(t, KindSubsidyTariff, nil)
	if len(res.Points) != 1 || len(res.Scalars) != 0 {
		t.Errorf("expected only the original equilibrium, got %+v", res)
	}
	// No deadweight-loss regions: only the original point is filled.
	if got := rec.Count("fill"); got != 1 {
		t.Errorf("expected 1 fill, got %d", got)
	}
}

// --- Elasticity ---

func TestElasticity_PriceShock(t *testing.T) {
	res, rec := draw(t, KindElasticity, nil)

	if np := mustScalar(t, res, "new_price"); !approx(np, 110, 1e-9) {
		t.Errorf("new price = %f, want 110", np)
	}
	if q := mustPoint(t, res, "elastic").Quantity; !approx(q, 95, 1e-9) {
		t.Errorf("elastic quantity = %f, want 95", q)
	}
	if pct := mustScalar(t, res, "elastic_percent_change"); !approx(pct, -5, 1e-9) {
		t.Errorf("elastic change = %f, want -5", pct)
	}
	if q := mustPoint(t, res, "inelastic").Quantity; !approx(q, 80, 1e-9) {
		t.Errorf("inelastic quantity = %f, want 80", q)
	}
	if pct := mustScalar(t, res, "inelastic_percent_change"); !approx(pct, -20, 1e-9) {
		t.Errorf("inelastic change = %f, want -20", pct)
	}
	if !hasText(rec, "Reference Point (Q=100, P=100)") || !hasText(rec, "New Price: 110 (+10%)") {
		t.Errorf("labels missing, texts: %v", rec.Texts())
	}
	if len(res.Solutions) != 0 {
		t.Errorf("elasticity should not call the solver")
	}
}

func TestElasticity_ZeroQuantityPropagatesNaN(t *testing.T) {
	res, rec := draw(t, KindElasticity, model.Params{"quantity": 0})

	q := mustPoint(t, res, "elastic").Quantity
	if !math.IsNaN(q) {
		t.Errorf("expected NaN elastic quantity, got %f", q)
	}
	if !hasText(rec, "Elastic: Q=NaN (NaN%)") {
		t.Errorf("broken figures should stay visible, texts: %v", rec.Texts())
	}

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"elastic":{"quantity":null`) {
		t.Errorf("non-finite values should encode as null: %s", b)
	}
}

// --- Monopoly ---

func TestMonopoly_ClosedForm(t *testing.T) {
	res, rec := draw(t, KindMonopoly, nil)

	m := mustPoint(t, res, "monopoly")
	if m.Quantity != 150 || m.Price != 125 {
		t.Errorf("monopoly = (%f, %f), want (150, 125)", m.Quantity, m.Price)
	}
	c := mustPoint(t, res, "competitive")
	if c.Quantity != 300 || c.Price != 50 {
		t.Errorf("competitive = (%f, %f), want (300, 50)", c.Quantity, c.Price)
	}
	if profit := mustScalar(t, res, "profit"); profit != 10250 {
		t.Errorf("profit = %f, want 10250", profit)
	}
	if dwl := mustScalar(t, res, "deadweight_loss"); dwl != 5625 {
		t.Errorf("deadweight loss = %f, want 5625", dwl)
	}
	if !hasText(rec, "Price/Cost") || !hasText(rec, "Monopoly Price: 125") || !hasText(rec, "MC = MR at Q = 150") {
		t.Errorf("labels missing, texts: %v", rec.Texts())
	}
}

// --- Tax incidence ---

func TestTaxIncidence_BurdenIdentity(t *testing.T) {
	for _, tax := range []float64{5, 15, 40, 75, 100} {
		res, _ := draw(t, KindTaxIncidence, model.Params{"taxAmount": tax})

		cb := mustScalar(t, res, "consumer_burden")
		pb := mustScalar(t, res, "producer_burden")
		if !approx(cb+pb, tax, 1e-9) {
			t.Errorf("tax=%v: burdens %f + %f != %v", tax, cb, pb, tax)
		}
		cs := mustScalar(t, res, "consumer_share")
		ps := mustScalar(t, res, "producer_share")
		if !approx(cs+ps, 100, 1e-9) {
			t.Errorf("tax=%v: shares %f + %f != 100", tax, cs, ps)
		}

		orig := mustPoint(t, res, "original")
		taxed := mustPoint(t, res, "taxed")
		if want := (orig.Quantity - taxed.Quantity) * tax / 2; mustScalar(t, res, "deadweight_loss") != want {
			t.Errorf("tax=%v: deadweight loss mismatch", tax)
		}
		if rev := mustScalar(t, res, "tax_revenue"); !approx(rev, tax*taxed.Quantity, 1e-9) {
			t.Errorf("tax=%v: revenue %f", tax, rev)
		}
	}
}

func TestTaxIncidence_NoTax(t *testing.T) {
	res, rec := draw(t, KindTaxIncidence, model.Params{"taxAmount": 0})
	if _, ok := res.Point("taxed"); ok {
		t.Error("zero tax should not produce a taxed equilibrium")
	}
	if hasText(rec, "Original Price: 0") {
		t.Error("tax labels drawn without a tax")
	}
}

// --- Result ---

func TestResult_MarshalJSONOrder(t *testing.T) {
	res, _ := draw(t, KindSupplyDemand, nil)
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"kind":"supply-demand","parameters":{"demandIntercept":250,"demandSlope":-1.5,"supplyIntercept":50,"supplySlope":1},"equilibrium":{`
	if !strings.HasPrefix(string(b), want) {
		t.Errorf("unexpected JSON prefix: %s", b)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("result JSON is not valid: %v", err)
	}
	if _, ok := decoded["consumer_surplus"]; !ok {
		t.Error("scalar missing from JSON")
	}
}

func TestResult_Figures(t *testing.T) {
	r := Result{
		Points:  []NamedPoint{{Name: "equilibrium", Point: model.Pt(80, 130)}},
		Scalars: []Scalar{{Name: "tax_revenue", Value: 12}},
	}
	got := r.Figures()
	want := []Scalar{{"equilibrium_price", 130}, {"equilibrium_quantity", 80}, {"tax_revenue", 12}}
	if len(got) != len(want) {
		t.Fatalf("figures = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("figure %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRender_SVG(t *testing.T) {
	for _, d := range All() {
		svg := render.NewSVG(640, 400)
		if _, err := Render(d, svg, config.DefaultStyle(), nil); err != nil {
			t.Errorf("%s: %v", d.Kind(), err)
		}
		if !strings.Contains(svg.String(), "<svg") {
			t.Errorf("%s: no svg output", d.Kind())
		}
	}
}
