package export

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/model"
)

// FigurePlaces is the number of decimal places kept for archived figures.
const FigurePlaces = 4

// NewSnapshot archives a result under a fresh ID. Figures are rounded to
// FigurePlaces; non-finite figures are left out.
func NewSnapshot(res diagram.Result) *model.Snapshot {
	figs := res.Figures()
	figures := make(map[string]decimal.Decimal, len(figs))
	for _, f := range figs {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			continue
		}
		figures[f.Name] = decimal.NewFromFloat(f.Value).Round(FigurePlaces)
	}
	return &model.Snapshot{
		ID:        uuid.New().String(),
		Kind:      string(res.Kind),
		Params:    res.Params.Clone(),
		Figures:   figures,
		CreatedAt: time.Now().UTC(),
	}
}
