// Package testutil provides common ingredient fixtures for testing.
package testutil

import (
	"fmt"

	"github.com/iwvelando/recipe-science/internal/recipe"
)

// Fixture ingredient IDs.
const (
	WholeMilk    = "whole-milk"
	Cream35      = "cream-35"
	SMP          = "skim-milk-powder"
	Sucrose      = "sucrose"
	Dextrose     = "dextrose"
	Fructose     = "fructose"
	GlucoseDE60  = "glucose-syrup-de60"
	Butter       = "butter"
	Water        = "water"
	Strawberry   = "strawberry"
	Inulin       = "inulin"
	LemonJuice   = "lemon-juice"
	CondensedMlk = "sweetened-condensed-milk"
)

func ptr(v float64) *float64 {
	return &v
}

// Ingredients returns the fixture ingredient records.
func Ingredients() []recipe.Ingredient {
	return []recipe.Ingredient{
		{ID: WholeMilk, Name: "Whole milk", Category: "dairy", WaterPct: 88.5, FatPct: 3.25, MSNFPct: 8.25, CostPerKg: 1.1},
		{ID: Cream35, Name: "Cream 35%", Category: "dairy", WaterPct: 60, FatPct: 35, MSNFPct: 5, CostPerKg: 4.5},
		{ID: SMP, Name: "Skim milk powder", Category: "dairy", WaterPct: 3, FatPct: 1, MSNFPct: 95, OtherSolidsPct: 1, CostPerKg: 3.2},
		{ID: Sucrose, Name: "Sucrose", Category: "sugar", SugarsPct: 100, SugarSplit: &recipe.SugarSplit{Sucrose: 1}, CostPerKg: 1.0},
		{ID: Dextrose, Name: "Dextrose", Category: "sugar", SugarsPct: 100, SugarSplit: &recipe.SugarSplit{Dextrose: 1}, CostPerKg: 1.4},
		{ID: Fructose, Name: "Fructose", Category: "sugar", SugarsPct: 100, SugarSplit: &recipe.SugarSplit{Fructose: 1}, CostPerKg: 2.6},
		{ID: GlucoseDE60, Name: "Glucose syrup DE60", Category: "sugar", WaterPct: 20, SugarsPct: 80, DE: ptr(60), CostPerKg: 1.8},
		{ID: Butter, Name: "Butter", Category: "dairy", WaterPct: 16, FatPct: 82, MSNFPct: 2, CostPerKg: 8},
		{ID: Water, Name: "Water", Category: "other", WaterPct: 100},
		{ID: Strawberry, Name: "Strawberry", Category: "fruit", WaterPct: 91, SugarsPct: 6, OtherSolidsPct: 3,
			SugarSplit: &recipe.SugarSplit{Fructose: 0.4, Dextrose: 0.35, Sucrose: 0.25}, CostPerKg: 4},
		{ID: Inulin, Name: "Inulin", Category: "stabilizer", WaterPct: 5, OtherSolidsPct: 95, CostPerKg: 9},
		{ID: LemonJuice, Name: "Lemon juice", Category: "fruit", WaterPct: 92, SugarsPct: 2.5, OtherSolidsPct: 5.5, CostPerKg: 3},
		{ID: CondensedMlk, Name: "Sweetened condensed milk", Category: "dairy", WaterPct: 27, SugarsPct: 45, FatPct: 8, MSNFPct: 20,
			SugarSplit: &recipe.SugarSplit{Sucrose: 1}, CostPerKg: 3.5},
	}
}

// Catalog returns a catalog of the fixture ingredients. It panics on
// validation failure since fixtures are static.
func Catalog() *recipe.Catalog {
	catalog, err := recipe.NewCatalog(Ingredients())
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid fixture catalog: %v", err))
	}
	return catalog
}

// CatalogOf returns a catalog restricted to the given fixture IDs.
func CatalogOf(ids ...string) *recipe.Catalog {
	var subset []recipe.Ingredient
	for _, id := range ids {
		subset = append(subset, Ingredient(id))
	}
	catalog, err := recipe.NewCatalog(subset)
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid fixture catalog: %v", err))
	}
	return catalog
}

// Ingredient returns the fixture ingredient with the given ID.
func Ingredient(id string) recipe.Ingredient {
	for _, ing := range Ingredients() {
		if ing.ID == id {
			return ing
		}
	}
	panic("testutil: unknown fixture ingredient " + id)
}

// Row builds a recipe row for a fixture ingredient.
func Row(id string, grams float64) recipe.RecipeRow {
	return recipe.RecipeRow{Ingredient: Ingredient(id), Grams: grams}
}

// LockedRow builds a locked recipe row for a fixture ingredient.
func LockedRow(id string, grams float64) recipe.RecipeRow {
	row := Row(id, grams)
	row.Locked = true
	return row
}

// GelatoRows returns the reference 1 kg gelato base: milk 650 g, cream
// 150 g, skim milk powder 60 g, sucrose 120 g and dextrose 20 g.
func GelatoRows() []recipe.RecipeRow {
	return []recipe.RecipeRow{
		Row(WholeMilk, 650),
		Row(Cream35, 150),
		Row(SMP, 60),
		Row(Sucrose, 120),
		Row(Dextrose, 20),
	}
}

// FindRow returns the first row using the given ingredient ID, or nil.
func FindRow(rows []recipe.RecipeRow, id string) *recipe.RecipeRow {
	for i := range rows {
		if rows[i].Ingredient.ID == id {
			return &rows[i]
		}
	}
	return nil
}
