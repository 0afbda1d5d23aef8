package balancer

import (
	"fmt"
	"math"

	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
	"github.com/iwvelando/recipe-science/pkg/constants"
)

// variable is an unlocked row the solvers may move.
type variable struct {
	row      int
	lo, hi   float64
	original float64
	coeff    []float64 // pure ingredient value per target
}

// target is a parameter the solvers aim for.
type target struct {
	param  recipe.Parameter
	value  float64
	weight float64
}

// problem is the linear model shared by both solvers: the value of target
// k is (fixed[k] + Σ g_i·coeff_ik) / mass.
type problem struct {
	mass       float64
	lockedMass float64
	fixed      []float64
	vars       []variable
	targets    []target
}

func buildProblem(rows []recipe.RecipeRow, targets recipe.Targets, bands science.ProductBand, multiplier float64) (*problem, error) {
	pr := &problem{mass: recipe.TotalGrams(rows)}
	for _, p := range targets.Ordered() {
		pr.targets = append(pr.targets, target{param: p, value: targets[p], weight: weightFor(p, targets[p], bands)})
	}
	pr.fixed = make([]float64, len(pr.targets))

	profiles := make(map[string][]float64)
	for i, row := range rows {
		coeff, ok := profiles[row.Ingredient.ID]
		if !ok {
			m, err := composition.IngredientProfile(row.Ingredient)
			if err != nil {
				return nil, err
			}
			coeff = make([]float64, len(pr.targets))
			for k, t := range pr.targets {
				coeff[k] = m.Value(t.param)
			}
			profiles[row.Ingredient.ID] = coeff
		}
		if row.Locked {
			pr.lockedMass += row.Grams
			for k := range pr.targets {
				pr.fixed[k] += row.Grams * coeff[k]
			}
			continue
		}
		lo, hi := row.Bounds(multiplier)
		pr.vars = append(pr.vars, variable{row: i, lo: lo, hi: hi, original: row.Grams, coeff: coeff})
	}
	return pr, nil
}

// weightFor scales a target's deviation by the inverse of its acceptable
// span so that parameters with narrow bands are matched more closely.
func weightFor(p recipe.Parameter, value float64, bands science.ProductBand) float64 {
	if band, ok := bands[p]; ok && band.Acceptable.Span() > 0 {
		return 1 / band.Acceptable.Span()
	}
	return 1 / math.Max(math.Abs(value)*0.2, 1)
}

// freeMass is the mass the unlocked rows must share.
func (pr *problem) freeMass() float64 {
	return pr.mass - pr.lockedMass
}

// massReason explains why the bounds cannot hold the batch, or returns "".
func (pr *problem) massReason() string {
	lo, hi := 0.0, 0.0
	for _, v := range pr.vars {
		lo += v.lo
		hi += v.hi
	}
	free := pr.freeMass()
	if lo > free+constants.MassTolerance {
		return fmt.Sprintf("locked and minimum quantities total %.2f g, more than the %.2f g batch", pr.lockedMass+lo, pr.mass)
	}
	if hi < free-constants.MassTolerance {
		return fmt.Sprintf("maximum quantities total %.2f g, less than the %.2f g batch", pr.lockedMass+hi, pr.mass)
	}
	return ""
}

// values returns the target parameter values for unlocked grams g.
func (pr *problem) values(g []float64) []float64 {
	out := make([]float64, len(pr.targets))
	for k := range pr.targets {
		total := pr.fixed[k]
		for i, v := range pr.vars {
			total += g[i] * v.coeff[k]
		}
		out[k] = total / pr.mass
	}
	return out
}

// maxDeviation returns the largest |value - target| for unlocked grams g.
func (pr *problem) maxDeviation(g []float64) float64 {
	worst := 0.0
	for k, v := range pr.values(g) {
		if d := math.Abs(v - pr.targets[k].value); d > worst {
			worst = d
		}
	}
	return worst
}

// weightedDeviation is Σ w_k·|value_k - target_k|, the measure both
// solvers minimise.
func (pr *problem) weightedDeviation(values []float64) float64 {
	total := 0.0
	for k, v := range values {
		total += pr.targets[k].weight * math.Abs(v-pr.targets[k].value)
	}
	return total
}

// apply writes unlocked grams back into a copy of rows.
func (pr *problem) apply(rows []recipe.RecipeRow, g []float64) []recipe.RecipeRow {
	out := recipe.CloneRows(rows)
	for i, v := range pr.vars {
		out[v.row].Grams = g[i]
	}
	return out
}
