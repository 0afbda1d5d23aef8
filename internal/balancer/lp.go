package balancer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/iwvelando/recipe-science/pkg/mathutil"
)

const (
	simplexTolerance = 1e-9
	// changeWeight is the objective cost of moving one gram, per gram of
	// batch. It only breaks ties between equally good allocations in favour
	// of the one closest to the original recipe.
	changeWeight = 1e-4
)

// lpSolution is the outcome of the simplex stage.
type lpSolution struct {
	grams     []float64
	objective float64
}

// solveLP finds the unlocked grams minimising the weighted absolute
// deviation from every target while keeping the batch mass fixed. The sum
// is minimised, not the largest single deviation that decides success, so
// when the targets cannot all be met the answer may trade one target far
// off for several close ones; Balance then also tries the heuristic.
//
// gonum's Simplex takes the standard form min cᵀx s.t. Ax = b, x ≥ 0, so
// with y_i = g_i - lo_i and u_i = hi_i - lo_i the model is
//
//	y_i + s_i               = u_i                     (upper bounds)
//	y_i - p_i + q_i         = y0_i                    (distance from original)
//	Σ_i y_i·c_ik/M - d⁺_k + d⁻_k = t_k - base_k       (one row per target)
//	Σ_i y_i                 = M - locked - Σ lo_i     (batch mass)
//
// minimising Σ_k w_k(d⁺_k + d⁻_k) + ε/M·Σ_i (p_i + q_i). Every row owns a
// column no other row uses except the mass row, which only has y columns,
// so A has full row rank and no zero columns. Rows with a negative right
// hand side are negated because the solver needs b ≥ 0.
func solveLP(pr *problem) (lpSolution, error) {
	n, k := len(pr.vars), len(pr.targets)
	if n == 0 {
		return lpSolution{}, fmt.Errorf("no unlocked ingredients to optimise")
	}

	var (
		yCol     = func(i int) int { return i }
		sCol     = func(i int) int { return n + i }
		pCol     = func(i int) int { return 2*n + i }
		qCol     = func(i int) int { return 3*n + i }
		plusCol  = func(j int) int { return 4*n + j }
		minusCol = func(j int) int { return 4*n + k + j }
	)
	cols := 4*n + 2*k
	rows := 2*n + k + 1

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	lowSum := 0.0
	for i, v := range pr.vars {
		lowSum += v.lo
		upper := math.Max(v.hi-v.lo, 0)
		start := mathutil.Clamp(v.original-v.lo, 0, upper)

		a.Set(i, yCol(i), 1)
		a.Set(i, sCol(i), 1)
		b[i] = upper

		r := n + i
		a.Set(r, yCol(i), 1)
		a.Set(r, pCol(i), -1)
		a.Set(r, qCol(i), 1)
		b[r] = start

		c[pCol(i)] = changeWeight / pr.mass
		c[qCol(i)] = changeWeight / pr.mass
	}

	for j, t := range pr.targets {
		r := 2*n + j
		base := pr.fixed[j]
		for i, v := range pr.vars {
			base += v.lo * v.coeff[j]
			a.Set(r, yCol(i), v.coeff[j]/pr.mass)
		}
		a.Set(r, plusCol(j), -1)
		a.Set(r, minusCol(j), 1)
		b[r] = t.value - base/pr.mass

		c[plusCol(j)] = t.weight
		c[minusCol(j)] = t.weight
	}

	massRow := 2*n + k
	for i := range pr.vars {
		a.Set(massRow, yCol(i), 1)
	}
	b[massRow] = math.Max(pr.freeMass()-lowSum, 0)

	for r := 0; r < rows; r++ {
		if b[r] >= 0 {
			continue
		}
		b[r] = -b[r]
		for col := 0; col < cols; col++ {
			if v := a.At(r, col); v != 0 {
				a.Set(r, col, -v)
			}
		}
	}

	objective, x, err := lp.Simplex(c, a, b, simplexTolerance, nil)
	if err != nil {
		return lpSolution{}, fmt.Errorf("simplex: %w", err)
	}

	grams := make([]float64, n)
	for i, v := range pr.vars {
		grams[i] = mathutil.Clamp(v.lo+x[yCol(i)], v.lo, v.hi)
	}
	return lpSolution{grams: grams, objective: objective}, nil
}
