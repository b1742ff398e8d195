package diagram

import (
	"errors"
	"fmt"
	"math"

	"github.com/econviz/diagram-engine/internal/model"
)

var (
	// ErrUnknownParam is returned when a parameter record names a field the
	// diagram does not have.
	ErrUnknownParam = errors.New("diagram: unknown parameter")

	// ErrOutOfRange is returned when a parameter lies outside its field's
	// [Min, Max] range or is not a finite number.
	ErrOutOfRange = errors.New("diagram: parameter out of range")
)

// Field describes one adjustable parameter.
type Field struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Group   string  `json:"group"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Defaults returns the default parameter record of d.
func Defaults(d Diagram) model.Params {
	fields := d.Fields()
	out := make(model.Params, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Default
	}
	return out
}

// WithDefaults returns a copy of params with every field of d that params
// does not set filled from its default. Keys d does not know are kept.
// A nil params is a reset to defaults.
func WithDefaults(d Diagram, params model.Params) model.Params {
	out := params.Clone()
	for _, f := range d.Fields() {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Default
		}
	}
	return out
}

// Validate checks params against the field ranges of d. Missing fields are
// allowed; they take defaults at draw time.
func Validate(d Diagram, params model.Params) error {
	fields := make(map[string]Field, len(d.Fields()))
	for _, f := range d.Fields() {
		fields[f.Name] = f
	}

	for name, v := range params {
		f, ok := fields[name]
		if !ok {
			return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParam, d.Kind(), name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrOutOfRange, name, v)
		}
		if v < f.Min || v > f.Max {
			return fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfRange, name, v, f.Min, f.Max)
		}
	}
	return nil
}

// Shared field definitions. The monopoly diagram narrows the demand ranges.
var (
	fieldDemandIntercept = Field{Name: "demandIntercept", Label: "Demand Intercept", Group: "Demand", Min: 50, Max: 400, Step: 10, Default: 250}
	fieldDemandSlope     = Field{Name: "demandSlope", Label: "Demand Slope", Group: "Demand", Min: -3, Max: -0.1, Step: 0.1, Default: -1.5}
	fieldSupplyIntercept = Field{Name: "supplyIntercept", Label: "Supply Intercept", Group: "Supply", Min: 0, Max: 200, Step: 10, Default: 50}
	fieldSupplySlope     = Field{Name: "supplySlope", Label: "Supply Slope", Group: "Supply", Min: 0.1, Max: 3, Step: 0.1, Default: 1.0}
)

func marketFields(group string, supplySlope float64) []Field {
	fs := []Field{fieldDemandIntercept, fieldDemandSlope, fieldSupplyIntercept, fieldSupplySlope}
	fs[3].Default = supplySlope
	if group != "" {
		for i := range fs {
			fs[i].Group = group
		}
	}
	return fs
}
