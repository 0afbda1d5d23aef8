package composition

import (
	"fmt"
	"math"

	"github.com/iwvelando/recipe-science/internal/freezing"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/chemistry"
	"github.com/iwvelando/recipe-science/pkg/constants"
	"github.com/iwvelando/recipe-science/pkg/mathutil"
)

// sugarBehaviour is how one gram of an ingredient's SugarsPct behaves.
type sugarBehaviour struct {
	se   float64 // sucrose equivalents per gram
	pod  float64 // sweetness per gram, sucrose = 1
	mono float64 // monosaccharide share
}

// behaviourOf resolves the sugar behaviour of an ingredient. An explicit
// split wins, then a dextrose equivalent, then the legacy coefficients, and
// plain sucrose is assumed otherwise.
func behaviourOf(ing recipe.Ingredient) sugarBehaviour {
	if ing.SugarSplit != nil && ing.SugarSplit.Total() > 0 {
		fractions := ing.SugarSplit.Fractions()
		total := ing.SugarSplit.Total()
		var b sugarBehaviour
		for _, s := range chemistry.Sugars {
			share := fractions[s] / total
			props := chemistry.MustLookup(s)
			b.se += share * props.SE
			b.pod += share * props.POD / 100
			if props.Monosaccharide {
				b.mono += share
			}
		}
		return b
	}
	if ing.DE != nil {
		dex, oligo := chemistry.DESplit(*ing.DE)
		d := chemistry.MustLookup(chemistry.Dextrose)
		o := chemistry.MustLookup(chemistry.Oligosaccharides)
		return sugarBehaviour{
			se:   dex*d.SE + oligo*o.SE,
			pod:  (dex*d.POD + oligo*o.POD) / 100,
			mono: dex,
		}
	}
	if ing.PACCoeff != nil || ing.SPCoeff != nil {
		b := sugarBehaviour{se: 1, pod: 1}
		if ing.PACCoeff != nil {
			b.se = *ing.PACCoeff
		}
		if ing.SPCoeff != nil {
			b.pod = *ing.SPCoeff
		}
		return b
	}
	s := chemistry.MustLookup(chemistry.Sucrose)
	return sugarBehaviour{se: s.SE, pod: s.POD / 100}
}

type totals struct {
	mass        float64
	water       float64
	addedSugars float64
	fat         float64
	msnf        float64
	other       float64
	se          float64
	sweetness   float64
	mono        float64
	cost        float64
}

func accumulate(rows []recipe.RecipeRow) totals {
	var t totals
	for _, row := range rows {
		g := row.Grams
		ing := row.Ingredient
		t.mass += g
		t.water += mathutil.ApplyPercentage(g, ing.WaterPct)
		t.fat += mathutil.ApplyPercentage(g, ing.FatPct)
		t.msnf += mathutil.ApplyPercentage(g, ing.MSNFPct)
		t.other += mathutil.ApplyPercentage(g, ing.OtherSolidsPct)
		t.cost += g / 1000 * ing.CostPerKg

		sugars := mathutil.ApplyPercentage(g, ing.SugarsPct)
		t.addedSugars += sugars
		if sugars > 0 {
			b := behaviourOf(ing)
			t.se += sugars * b.se
			t.sweetness += sugars * b.pod
			t.mono += sugars * b.mono
		}
	}

	lactose := t.msnf * chemistry.LactoseFraction
	lac := chemistry.MustLookup(chemistry.Lactose)
	t.se += lactose * lac.SE
	t.sweetness += lactose * lac.POD / 100
	return t
}

// Calculate computes the Metrics of a mix. The product only selects which
// warning thresholds apply; the arithmetic is identical for every product.
// Invalid rows (negative or non-finite grams, unresolved ingredients) are
// rejected with an error wrapping recipe.ErrInvalidInput.
func Calculate(rows []recipe.RecipeRow, product recipe.Product) (Metrics, error) {
	limits, ok := ThresholdsFor(product)
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %q", recipe.ErrUnknownProduct, product)
	}
	if err := recipe.ValidateRows(rows); err != nil {
		return Metrics{}, err
	}

	t := accumulate(rows)
	m := Metrics{TotalGrams: t.mass, Warnings: []string{}}
	if t.mass == 0 {
		m.Warnings = append(m.Warnings, "recipe has no mass: all composition figures are zero")
		return m, nil
	}

	m.FatPct = mathutil.CalculatePercentage(t.fat, t.mass)
	m.AddedSugarsPct = mathutil.CalculatePercentage(t.addedSugars, t.mass)
	m.MSNFPct = mathutil.CalculatePercentage(t.msnf, t.mass)
	m.ProteinPct = m.MSNFPct * chemistry.ProteinFraction
	m.LactosePct = m.MSNFPct * chemistry.LactoseFraction
	m.TotalSugarsPct = m.AddedSugarsPct + m.LactosePct
	m.OtherSolidsPct = mathutil.CalculatePercentage(t.other, t.mass)
	m.TotalSolidsPct = m.FatPct + m.AddedSugarsPct + m.MSNFPct + m.OtherSolidsPct
	m.WaterPct = mathutil.CalculatePercentage(t.water, t.mass)

	m.SEGrams = t.se
	m.SP = mathutil.CalculatePercentage(t.sweetness, t.mass)
	m.PAC = mathutil.CalculatePercentage(t.se, t.mass)
	sugarGrams := t.addedSugars + t.msnf*chemistry.LactoseFraction
	if sugarGrams > 0 {
		m.PODIndex = t.sweetness / sugarGrams * 100
		m.MonosaccharideFraction = t.mono / sugarGrams
	}

	switch {
	case t.water > 0:
		m.SEPer100gWater = t.se / t.water * 100
		depression, err := freezing.DepressionFromSE(m.SEPer100gWater)
		if err != nil {
			return Metrics{}, err
		}
		m.FPDSE = depression.FPDSE
		m.ClampedLeighton = depression.Clamped
		m.FPDSA = m.MSNFPct * chemistry.SaltsFactor / m.WaterPct
	case t.se > 0:
		// Sugars with no water at all lie beyond any tabulated concentration.
		depression, err := freezing.DepressionFromSE(freezing.MaxSE() + 1)
		if err != nil {
			return Metrics{}, err
		}
		m.FPDSE = depression.FPDSE
		m.ClampedLeighton = depression.Clamped
	}
	m.FPDT = m.FPDSE + m.FPDSA

	m.CostTotal = t.cost
	m.CostPerKg = t.cost / (t.mass / 1000)

	m.Warnings = append(m.Warnings, warnings(m, product, limits)...)
	return m, nil
}

func warnings(m Metrics, product recipe.Product, limits Thresholds) []string {
	var out []string
	if m.LactosePct >= limits.LactoseMax {
		out = append(out, fmt.Sprintf("lactose %.1f%% is at or above %.0f%%: lactose crystallization (sandiness) risk",
			m.LactosePct, limits.LactoseMax))
	}
	if m.ProteinPct >= limits.ProteinMax {
		out = append(out, fmt.Sprintf("protein %.1f%% is at or above %.0f%%: chewy, gummy texture risk",
			m.ProteinPct, limits.ProteinMax))
	}
	// A larger depression leaves more water unfrozen at the serving
	// temperature, so a high FPDT scoops soft and a low one scoops hard.
	if m.FPDT > limits.FPDTMax {
		out = append(out, fmt.Sprintf("%s FPDT %.2f°C is above %.1f°C: too soft at serving temperature",
			product.Label(), m.FPDT, limits.FPDTMax))
	} else if m.FPDT < limits.FPDTMin {
		out = append(out, fmt.Sprintf("%s FPDT %.2f°C is below %.1f°C: too hard at serving temperature",
			product.Label(), m.FPDT, limits.FPDTMin))
	}
	if m.MonosaccharideFraction > chemistry.MonosaccharideShareLimit {
		out = append(out, fmt.Sprintf("monosaccharides are %.0f%% of total sugars (limit %.0f%%): sugar spectrum imbalance",
			m.MonosaccharideFraction*100, chemistry.MonosaccharideShareLimit*100))
	}
	if w := identityWarning(m); w != "" {
		out = append(out, w)
	}
	if m.ClampedLeighton {
		out = append(out, fmt.Sprintf("sucrose equivalents exceed the freezing point table (max %.0f g/100 g water): depression clamped",
			freezing.MaxSE()))
	}
	return out
}

// identityWarning reports when total solids and water do not add up to the
// batch. Ingredient validation keeps every composition within the same
// tolerance of 100%, so rows that passed validation never trigger it; it
// guards mixes whose ingredients bypassed that check.
func identityWarning(m Metrics) string {
	sum := m.TotalSolidsPct + m.WaterPct
	if math.Abs(sum-100) <= constants.IdentityTolerance {
		return ""
	}
	return fmt.Sprintf("composition identity check failed: solids %.2f%% + water %.2f%% = %.2f%%",
		m.TotalSolidsPct, m.WaterPct, sum)
}

// IngredientProfile returns the metrics of 100 g of a single ingredient.
// Every linear parameter of a mix is the mass weighted mean of its
// ingredients' profile values.
func IngredientProfile(ing recipe.Ingredient) (Metrics, error) {
	return Calculate([]recipe.RecipeRow{{Ingredient: ing, Grams: 100}}, recipe.ProductGelato)
}
