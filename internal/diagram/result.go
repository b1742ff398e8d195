package diagram

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/econviz/diagram-engine/internal/equilibrium"
	"github.com/econviz/diagram-engine/internal/model"
)

// NamedPoint is a labelled point in a Result, such as "equilibrium".
type NamedPoint struct {
	Name string
	model.Point
}

// Scalar is a labelled derived figure in a Result, such as "tax_revenue".
type Scalar struct {
	Name  string
	Value float64
}

// Result is the record produced by one draw: the parameters it was drawn
// from plus the computed points and figures, in the order the diagram
// produced them. It is built fresh per draw and not modified afterwards.
type Result struct {
	Kind    Kind
	Params  model.Params
	Points  []NamedPoint
	Scalars []Scalar

	// ParamNames is the display order of Params.
	ParamNames []string
	// Solutions holds every solver run made during the draw.
	Solutions []equilibrium.Solution

	// seq records the order points and scalars were added in.
	seq []entry
}

type entry struct {
	point bool
	index int
}

func newResult(d Diagram, params model.Params) *Result {
	r := &Result{Kind: d.Kind(), Params: params.Clone()}
	seen := make(map[string]bool, len(params))
	for _, f := range d.Fields() {
		if _, ok := params[f.Name]; ok {
			r.ParamNames = append(r.ParamNames, f.Name)
			seen[f.Name] = true
		}
	}
	var extra []string
	for name := range params {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	r.ParamNames = append(r.ParamNames, extra...)
	return r
}

func (r *Result) addPoint(name string, pt model.Point) {
	r.seq = append(r.seq, entry{point: true, index: len(r.Points)})
	r.Points = append(r.Points, NamedPoint{Name: name, Point: pt})
}

func (r *Result) addScalar(name string, v float64) {
	r.seq = append(r.seq, entry{index: len(r.Scalars)})
	r.Scalars = append(r.Scalars, Scalar{Name: name, Value: v})
}

// order returns the entries in the order they were added. A Result built
// by hand lists its points before its scalars.
func (r Result) order() []entry {
	if len(r.seq) == len(r.Points)+len(r.Scalars) {
		return r.seq
	}
	out := make([]entry, 0, len(r.Points)+len(r.Scalars))
	for i := range r.Points {
		out = append(out, entry{point: true, index: i})
	}
	for i := range r.Scalars {
		out = append(out, entry{index: i})
	}
	return out
}

// Point returns the named point.
func (r Result) Point(name string) (model.Point, bool) {
	for _, p := range r.Points {
		if p.Name == name {
			return p.Point, true
		}
	}
	return model.Point{}, false
}

// Scalar returns the named figure.
func (r Result) Scalar(name string) (float64, bool) {
	for _, s := range r.Scalars {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Figures flattens the points and scalars into name/value pairs in result
// order. A point named "x" expands to "x_price" then "x_quantity".
func (r Result) Figures() []Scalar {
	out := make([]Scalar, 0, 2*len(r.Points)+len(r.Scalars))
	for _, e := range r.order() {
		if !e.point {
			out = append(out, r.Scalars[e.index])
			continue
		}
		p := r.Points[e.index]
		out = append(out,
			Scalar{Name: p.Name + "_price", Value: p.Price},
			Scalar{Name: p.Name + "_quantity", Value: p.Quantity},
		)
	}
	return out
}

// MarshalJSON writes the result as one flat object in result order:
//
//	{"kind":"supply-demand","parameters":{...},"equilibrium":{"quantity":80,"price":130},...}
//
// Non-finite numbers are written as null.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	writeString(&buf, string(r.Kind))

	buf.WriteString(`,"parameters":{`)
	for i, name := range r.ParamOrder() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, name)
		buf.WriteByte(':')
		writeNumber(&buf, r.Params[name])
	}
	buf.WriteByte('}')

	for _, e := range r.order() {
		buf.WriteByte(',')
		if !e.point {
			s := r.Scalars[e.index]
			writeString(&buf, s.Name)
			buf.WriteByte(':')
			writeNumber(&buf, s.Value)
			continue
		}
		p := r.Points[e.index]
		writeString(&buf, p.Name)
		buf.WriteString(`:{"quantity":`)
		writeNumber(&buf, p.Quantity)
		buf.WriteString(`,"price":`)
		writeNumber(&buf, p.Price)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParamOrder returns the parameter names in display order.
func (r Result) ParamOrder() []string {
	if len(r.ParamNames) == len(r.Params) {
		return r.ParamNames
	}
	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func writeNumber(buf *bytes.Buffer, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		buf.WriteString("null")
		return
	}
	buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}
