// Package solver drives sketch constraints to zero with damped
// Newton-Raphson iteration. Each step solves the linearized system
// J dx = -F in the least-squares sense, so under-constrained sketches
// take the minimum-norm step and redundant-but-consistent constraint
// sets still converge.
package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chamfer/chamfer/pkg/sketch"
)

// Reason explains a failed solve.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMaxIterations
	ReasonSingular
	ReasonDiverged
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMaxIterations:
		return "max-iterations"
	case ReasonSingular:
		return "singular-jacobian"
	case ReasonDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// Config tunes the iteration.
type Config struct {
	MaxIterations int
	// Tolerance is the convergence bound on the largest residual.
	Tolerance float64
	// Damping scales each Newton step; 1 is a full step.
	Damping float64
	// ConditionLimit is the largest acceptable ratio of singular
	// values before the Jacobian counts as singular.
	ConditionLimit float64
}

// DefaultConfig returns the standard solver settings.
func DefaultConfig() Config {
	return Config{
		MaxIterations:  100,
		Tolerance:      1e-9,
		Damping:        1.0,
		ConditionLimit: 1e12,
	}
}

// Result reports the outcome of a solve.
type Result struct {
	Converged  bool
	Iterations int
	// Residual is the largest constraint residual at exit.
	Residual float64
	Reason   Reason
}

// Solve iterates the sketch's points toward satisfying all its
// constraints. On success the sketch points hold the solution; on
// failure the sketch is left exactly as it was.
func Solve(sk *sketch.Sketch, cfg Config) Result {
	if cfg.MaxIterations <= 0 {
		cfg = DefaultConfig()
	}

	// Column layout: two variables per free point.
	cols := make(map[[2]int]int)
	for pi, p := range sk.Points {
		if p.Fixed {
			continue
		}
		cols[[2]int{pi, 0}] = len(cols)
		cols[[2]int{pi, 1}] = len(cols)
	}

	rows := 0
	for _, c := range sk.Constraints {
		rows += c.Arity(sk)
	}
	if rows == 0 || len(cols) == 0 {
		return Result{Converged: residualMax(sk, rows) <= cfg.Tolerance, Residual: residualMax(sk, rows)}
	}

	saved := savePositions(sk)
	initial := residualMax(sk, rows)
	divergeLimit := 1e6 * (initial + 1)

	res := Result{}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		f := residuals(sk, rows)
		res.Residual = maxAbs(f)
		res.Iterations = iter
		if res.Residual <= cfg.Tolerance {
			res.Converged = true
			return res
		}
		if math.IsNaN(res.Residual) || res.Residual > divergeLimit {
			restorePositions(sk, saved)
			res.Reason = ReasonDiverged
			return res
		}

		jac := mat.NewDense(rows, len(cols), nil)
		row := 0
		for _, c := range sk.Constraints {
			m := c.Arity(sk)
			if m == 0 {
				continue
			}
			base := row
			c.Jacobian(sk, func(eq int, p sketch.PointID, axis int, d float64) {
				if col, ok := cols[[2]int{int(p), axis}]; ok {
					jac.Set(base+eq, col, jac.At(base+eq, col)+d)
				}
			})
			row += m
		}

		step, ok := leastSquaresStep(jac, f, cfg.ConditionLimit)
		if !ok {
			restorePositions(sk, saved)
			res.Reason = ReasonSingular
			return res
		}
		for key, col := range cols {
			d := cfg.Damping * step.AtVec(col)
			if key[1] == 0 {
				sk.Points[key[0]].Pos.X -= d
			} else {
				sk.Points[key[0]].Pos.Y -= d
			}
		}
	}

	res.Residual = residualMax(sk, rows)
	res.Iterations = cfg.MaxIterations
	if res.Residual <= cfg.Tolerance {
		res.Converged = true
		return res
	}
	restorePositions(sk, saved)
	res.Reason = ReasonMaxIterations
	return res
}

// leastSquaresStep solves J s = f by SVD pseudo-inverse. Returns
// false when the Jacobian is rank deficient beyond the condition
// limit.
func leastSquaresStep(jac *mat.Dense, f []float64, condLimit float64) (*mat.VecDense, bool) {
	var svd mat.SVD
	if !svd.Factorize(jac, mat.SVDThin) {
		return nil, false
	}
	vals := svd.Values(nil)
	if len(vals) == 0 || vals[0] < 1e-300 {
		return nil, false
	}
	if vals[len(vals)-1] <= 0 || vals[0]/vals[len(vals)-1] > condLimit {
		return nil, false
	}

	_, n := jac.Dims()
	b := mat.NewVecDense(len(f), f)
	var sol mat.Dense
	svd.SolveTo(&sol, b, len(vals))
	step := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		step.SetVec(i, sol.At(i, 0))
	}
	return step, true
}

func residuals(sk *sketch.Sketch, rows int) []float64 {
	out := make([]float64, rows)
	row := 0
	for _, c := range sk.Constraints {
		m := c.Arity(sk)
		if m == 0 {
			continue
		}
		c.Residuals(sk, out[row:row+m])
		row += m
	}
	return out
}

func residualMax(sk *sketch.Sketch, rows int) float64 {
	return maxAbs(residuals(sk, rows))
}

func maxAbs(f []float64) float64 {
	var m float64
	for _, v := range f {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func savePositions(sk *sketch.Sketch) []sketch.Point2 {
	out := make([]sketch.Point2, len(sk.Points))
	for i, p := range sk.Points {
		out[i] = p.Pos
	}
	return out
}

func restorePositions(sk *sketch.Sketch, saved []sketch.Point2) {
	for i := range sk.Points {
		sk.Points[i].Pos = saved[i]
	}
}
