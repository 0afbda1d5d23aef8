package recipe

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/recipe-science/pkg/constants"
	"github.com/iwvelando/recipe-science/pkg/mathutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateIngredientStruct, Ingredient{})
	v.RegisterStructValidation(validateRowStruct, RecipeRow{})
	return v
}

func validateIngredientStruct(sl validator.StructLevel) {
	ing := sl.Current().Interface().(Ingredient)
	if math.Abs(ing.CompositionTotal()-100) > constants.CompositionSumTolerance {
		sl.ReportError(ing.WaterPct, "WaterPct", "WaterPct", "composition_sum", fmt.Sprintf("%.2f", ing.CompositionTotal()))
	}
	if ing.SugarSplit != nil && ing.SugarsPct > 0 {
		if math.Abs(ing.SugarSplit.Total()-1) > constants.SugarSplitTolerance {
			sl.ReportError(ing.SugarSplit, "SugarSplit", "SugarSplit", "sugar_split", fmt.Sprintf("%.3f", ing.SugarSplit.Total()))
		}
	}
}

func validateRowStruct(sl validator.StructLevel) {
	row := sl.Current().Interface().(RecipeRow)
	if !mathutil.IsFinite(row.Grams) {
		sl.ReportError(row.Grams, "Grams", "Grams", "finite", "")
	}
	if row.Min != nil && row.Max != nil && *row.Min > *row.Max {
		sl.ReportError(row.Min, "Min", "Min", "ltefield", "Max")
	}
}

// ValidateIngredient checks an ingredient record for missing identity,
// negative or oversized composition fields and composition that does not
// add up to 100%.
func ValidateIngredient(ing Ingredient) error {
	if err := validate.Struct(ing); err != nil {
		return fmt.Errorf("%w: ingredient %q: %s", ErrInvalidInput, ing.Name, describe(err))
	}
	return nil
}

// ValidateRows checks every row of a recipe. Rows with negative, NaN or
// infinite grams, invalid bounds or an invalid ingredient are rejected.
func ValidateRows(rows []RecipeRow) error {
	for i, row := range rows {
		if err := validate.Struct(row); err != nil {
			return fmt.Errorf("%w: row %d (%s): %s", ErrInvalidInput, i, rowName(row), describe(err))
		}
	}
	return nil
}

func rowName(row RecipeRow) string {
	if row.Ingredient.Name != "" {
		return row.Ingredient.Name
	}
	if row.Ingredient.ID != "" {
		return row.Ingredient.ID
	}
	return "unnamed ingredient"
}

// describe turns validator errors into a compact message.
func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		case "finite":
			messages = append(messages, fmt.Sprintf("%s must be a finite number", field))
		case "ltefield":
			messages = append(messages, fmt.Sprintf("%s must not exceed %s", field, e.Param()))
		case "composition_sum":
			messages = append(messages, fmt.Sprintf("composition sums to %s%%, expected 100%%", e.Param()))
		case "sugar_split":
			messages = append(messages, fmt.Sprintf("sugar split sums to %s, expected 1", e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(messages, "; ")
}
