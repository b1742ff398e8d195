// Package export turns a drawn diagram into its downloadable forms: a
// parameter CSV, a PNG or SVG image, and an HTML embed snippet that carries
// the parameter record in a hidden payload.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"

	"github.com/econviz/diagram-engine/internal/diagram"
)

// CSVFilename is the suggested download name for WriteCSV output.
const CSVFilename = "economic_graph_data.csv"

// WriteCSV writes the result as two-column Parameter,Value rows: the
// parameters in field order, then every point as <name>_price and
// <name>_quantity, then the derived figures.
func WriteCSV(w io.Writer, res diagram.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Parameter", "Value"}); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	for _, name := range res.ParamOrder() {
		if err := cw.Write([]string{name, FormatNumber(res.Params[name])}); err != nil {
			return fmt.Errorf("export: write csv: %w", err)
		}
	}
	for _, f := range res.Figures() {
		if err := cw.Write([]string{f.Name, FormatNumber(f.Value)}); err != nil {
			return fmt.Errorf("export: write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}

// FormatNumber writes v in plain decimal notation with the shortest digits
// that round-trip. Non-finite values are spelled NaN, Infinity and
// -Infinity.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).String()
}
