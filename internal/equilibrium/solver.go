// Package equilibrium locates market equilibrium: the quantity at which a
// demand curve and a supply curve cross.
//
// The solver is a bounded bisection. It assumes demand is non-increasing and
// supply non-decreasing over the search interval. That precondition is not
// checked; if it does not hold the result is meaningless but still returned.
//
// Solve never fails. When the iteration budget runs out before the curves
// agree within tolerance, it returns the last midpoint with the average of
// the two prices as a best-effort estimate.
package equilibrium

import (
	"math"

	"github.com/econviz/diagram-engine/internal/model"
)

const (
	// DefaultTolerance is the price gap at which the curves count as crossed.
	DefaultTolerance = 0.01

	// DefaultMaxIterations bounds the number of bisection steps.
	DefaultMaxIterations = 100
)

// Solution is the solver's output.
type Solution struct {
	model.Equilibrium

	// Iterations is the number of midpoints evaluated.
	Iterations int
	// Converged is false when the iteration budget ran out.
	Converged bool
}

type options struct {
	low, high     float64
	tolerance     float64
	maxIterations int
}

// Option configures Solve.
type Option func(*options)

// WithBounds sets the quantity interval searched.
func WithBounds(low, high float64) Option {
	return func(o *options) {
		o.low, o.high = low, high
	}
}

// WithTolerance sets the convergence threshold on |demand - supply|.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithMaxIterations sets the iteration budget. Values below 1 are raised to 1.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.maxIterations = n
	}
}

// Solve bisects [low, high] for the crossing of demand and supply.
//
// Invariant per step: the crossing stays inside [low, high]. If demand is
// above supply at the midpoint there is excess demand, so the crossing lies
// to the right and low moves up; otherwise high moves down.
//
// Cost is O(log((high-low)/tolerance)) evaluations of each function.
func Solve(demand, supply model.PriceFunc, opts ...Option) Solution {
	o := options{
		low:           0,
		high:          0,
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&o)
	}

	low, high := o.low, o.high
	var q, dp, sp float64

	for i := 1; i <= o.maxIterations; i++ {
		q = (low + high) / 2
		dp = demand(q)
		sp = supply(q)

		if math.Abs(dp-sp) < o.tolerance {
			return Solution{
				Equilibrium: model.Pt(q, dp),
				Iterations:  i,
				Converged:   true,
			}
		}

		if dp > sp {
			low = q
		} else {
			high = q
		}
	}

	return Solution{
		Equilibrium: model.Pt(q, (dp+sp)/2),
		Iterations:  o.maxIterations,
		Converged:   false,
	}
}

// SolveWithin searches [0, bounds.MaxQuantity] with default tolerance and
// iteration budget.
func SolveWithin(bounds model.Bounds, demand, supply model.PriceFunc) Solution {
	return Solve(demand, supply, WithBounds(0, bounds.MaxQuantity))
}
