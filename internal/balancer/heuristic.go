package balancer

import (
	"math"

	"github.com/iwvelando/recipe-science/pkg/mathutil"
)

const (
	// minTransfer is the smallest transfer, in grams, worth making.
	minTransfer = 1e-6
	// minImprovement is the smallest drop in weighted deviation that makes
	// an exchange worth applying.
	minImprovement = 1e-12
)

// heuristicResult is the outcome of the fallback solver.
type heuristicResult struct {
	grams      []float64
	iterations int
	converged  bool
}

// solveHeuristic exchanges mass between pairs of unlocked rows until every
// target is within tolerance, no exchange lowers the weighted deviation, or
// the iteration budget is spent. Every applied exchange lowers the weighted
// sum of absolute deviations, so the search cannot cycle. Mass moves
// pairwise so the batch total is unchanged; a renormalisation after every
// iteration removes accumulated drift.
func solveHeuristic(pr *problem, tolerance float64, maxIterations, innerPasses int) heuristicResult {
	g := initialGrams(pr)
	res := heuristicResult{grams: g}
	if len(pr.vars) == 0 || len(pr.targets) == 0 {
		res.converged = len(pr.targets) == 0 || pr.maxDeviation(g) <= tolerance
		return res
	}

	goal := tolerance / 10
	for iter := 0; iter < maxIterations; iter++ {
		res.iterations = iter + 1
		moved := 0.0
		for pass := 0; pass < innerPasses; pass++ {
			for k, t := range pr.targets {
				values := pr.values(g)
				if math.Abs(t.value-values[k]) <= goal {
					continue
				}
				moved += exchange(pr, g, values, k)
			}
		}
		renormalize(pr, g)

		if pr.maxDeviation(g) <= goal {
			res.converged = true
			break
		}
		if moved < minTransfer {
			break
		}
	}
	if !res.converged {
		res.converged = pr.maxDeviation(g) <= tolerance
	}
	return res
}

// exchange applies the best transfer that moves target k towards its value:
// among the receiver and donor pairs whose difference in k points the right
// way, the one whose line search ends at the lowest weighted deviation. It
// returns the grams moved.
func exchange(pr *problem, g, values []float64, k int) float64 {
	dev := pr.targets[k].value - values[k]
	receiver, donor, amount := -1, -1, 0.0
	bestScore := pr.weightedDeviation(values) - minImprovement
	for r, rv := range pr.vars {
		room := rv.hi - g[r]
		if room <= minTransfer {
			continue
		}
		for d, dv := range pr.vars {
			if d == r {
				continue
			}
			limit := math.Min(room, g[d]-dv.lo)
			if limit <= minTransfer {
				continue
			}
			diff := rv.coeff[k] - dv.coeff[k]
			if diff == 0 || math.Signbit(diff) != math.Signbit(dev) {
				continue
			}
			a, score := lineSearch(pr, values, r, d, limit)
			if score < bestScore {
				receiver, donor, amount, bestScore = r, d, a, score
			}
		}
	}
	if receiver < 0 || amount < minTransfer {
		return 0
	}
	g[receiver] += amount
	g[donor] -= amount
	return amount
}

// lineSearch returns the grams, up to limit, to move from donor d to
// receiver r that minimise the weighted deviation, and that deviation. The
// deviation is piecewise linear in the amount, so its minimum lies at the
// limit or where one of the targets is hit exactly.
func lineSearch(pr *problem, values []float64, r, d int, limit float64) (float64, float64) {
	best, bestScore := limit, shiftedDeviation(pr, values, r, d, limit)
	for j, t := range pr.targets {
		slope := pr.vars[r].coeff[j] - pr.vars[d].coeff[j]
		if slope == 0 {
			continue
		}
		a := (t.value - values[j]) * pr.mass / slope
		if a <= 0 || a >= limit {
			continue
		}
		if score := shiftedDeviation(pr, values, r, d, a); score < bestScore {
			best, bestScore = a, score
		}
	}
	return best, bestScore
}

// shiftedDeviation is the weighted deviation after moving amount grams from
// donor d to receiver r.
func shiftedDeviation(pr *problem, values []float64, r, d int, amount float64) float64 {
	total := 0.0
	for j, t := range pr.targets {
		v := values[j] + amount*(pr.vars[r].coeff[j]-pr.vars[d].coeff[j])/pr.mass
		total += t.weight * math.Abs(v-t.value)
	}
	return total
}

// initialGrams clamps the original grams into their bounds and spreads any
// mass difference over the rows in proportion to their remaining room.
func initialGrams(pr *problem) []float64 {
	g := make([]float64, len(pr.vars))
	for i, v := range pr.vars {
		g[i] = mathutil.Clamp(v.original, v.lo, v.hi)
	}
	renormalize(pr, g)
	return g
}

// renormalize restores Σ g = free mass by spreading the difference over the
// rows in proportion to how far each can still move in that direction.
func renormalize(pr *problem, g []float64) {
	total := 0.0
	for _, v := range g {
		total += v
	}
	diff := pr.freeMass() - total
	if math.Abs(diff) < minTransfer {
		return
	}

	room := 0.0
	for i, v := range pr.vars {
		if diff > 0 {
			room += v.hi - g[i]
		} else {
			room += g[i] - v.lo
		}
	}
	if room <= 0 {
		return
	}
	share := math.Min(math.Abs(diff)/room, 1)
	for i, v := range pr.vars {
		if diff > 0 {
			g[i] += share * (v.hi - g[i])
		} else {
			g[i] -= share * (g[i] - v.lo)
		}
	}
}
