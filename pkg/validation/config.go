package validation

import (
	"fmt"

	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
)

// ValidateTarget checks a target against the acceptable band of the product.
// It returns a warning when the target lies outside the band and nothing
// when the band does not track the parameter.
func ValidateTarget(product recipe.Product, param recipe.Parameter, target float64, bands science.ProductBand) string {
	band, ok := bands[param]
	if !ok || band.Acceptable.Contains(target) {
		return ""
	}
	return fmt.Sprintf("Target %s %.2f is outside the acceptable %s range (%.2f-%.2f)",
		param.Label(), target, product, band.Acceptable.Min, band.Acceptable.Max)
}

// ValidateCosts warns about ingredients without a cost when others have one,
// since the batch cost would be understated.
func ValidateCosts(rows []recipe.RecipeRow) []string {
	costed := 0
	for _, row := range rows {
		if row.Ingredient.CostPerKg > 0 {
			costed++
		}
	}
	if costed == 0 || costed == len(rows) {
		return nil
	}

	var warnings []string
	for _, row := range rows {
		if row.Ingredient.CostPerKg <= 0 && row.Grams > 0 {
			warnings = append(warnings, fmt.Sprintf("Ingredient '%s' has no cost per kg - batch cost is understated",
				row.Ingredient.Name))
		}
	}
	return warnings
}

// RecipeValidator collects non-fatal warnings about a recipe before it is
// analyzed or balanced.
type RecipeValidator struct {
	Name    string
	Product recipe.Product
	Rows    []recipe.RecipeRow
	Targets recipe.Targets
	Bands   science.ProductBand
}

// ValidateAll validates the entire recipe and returns warnings
func (rv *RecipeValidator) ValidateAll() []string {
	var warnings []string

	name := rv.Name
	if name == "" {
		name = "recipe"
	}

	if recipe.TotalGrams(rv.Rows) <= 0 {
		warnings = append(warnings, fmt.Sprintf("Recipe '%s' has no mass", name))
	}

	// Targets the product's bands would never accept
	for _, param := range rv.Targets.Ordered() {
		if w := ValidateTarget(rv.Product, param, rv.Targets[param], rv.Bands); w != "" {
			warnings = append(warnings, w)
		}
	}

	// Nothing can move when every row is locked
	if len(rv.Targets) > 0 && len(rv.Rows) > 0 {
		locked := 0
		for _, row := range rv.Rows {
			if row.Locked {
				locked++
			}
		}
		if locked == len(rv.Rows) {
			warnings = append(warnings, fmt.Sprintf("Recipe '%s' has every ingredient locked - balancing cannot change it", name))
		}
	}

	warnings = append(warnings, ValidateCosts(rv.Rows)...)
	return warnings
}
