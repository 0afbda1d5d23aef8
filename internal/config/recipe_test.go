package config

import (
	"errors"
	"testing"

	"github.com/iwvelando/recipe-science/internal/recipe"
)

func testCatalog(t *testing.T) *recipe.Catalog {
	t.Helper()
	ingredients, err := LoadCatalogFile("../../test/catalog.yaml")
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}
	catalog, err := recipe.NewCatalog(ingredients)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

func TestLoadRecipe(t *testing.T) {
	file, err := LoadRecipe("../../test/recipes/gelato.yaml")
	if err != nil {
		t.Fatalf("LoadRecipe() error = %v", err)
	}
	if file.Name != "Fior di latte" {
		t.Errorf("Expected recipe name, got %q", file.Name)
	}

	resolved, err := file.Resolve(testCatalog(t), recipe.ProductSorbet)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Product != recipe.ProductGelato {
		t.Errorf("Expected file product to win over the default, got %q", resolved.Product)
	}
	if len(resolved.Rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(resolved.Rows))
	}
	if resolved.Rows[1].Ingredient.ID != "cream-35" {
		t.Errorf("Expected cream to resolve by name, got %q", resolved.Rows[1].Ingredient.ID)
	}
	if !resolved.Rows[3].Locked {
		t.Errorf("Expected sucrose row to be locked")
	}
	if resolved.Rows[4].Max == nil || *resolved.Rows[4].Max != 60 {
		t.Errorf("Expected dextrose max bound of 60, got %v", resolved.Rows[4].Max)
	}
	if recipe.TotalGrams(resolved.Rows) != 1000 {
		t.Errorf("Expected a 1000 g batch, got %v", recipe.TotalGrams(resolved.Rows))
	}
	if len(resolved.Targets) != 3 || resolved.Targets[recipe.ParamTotalSugars] != 20 {
		t.Errorf("Expected three targets including total sugars 20, got %v", resolved.Targets)
	}
}

func TestResolveAddsRecipeIngredients(t *testing.T) {
	file, err := LoadRecipe("../../test/recipes/strawberry-sorbet.yaml")
	if err != nil {
		t.Fatalf("LoadRecipe() error = %v", err)
	}
	catalog := testCatalog(t)
	resolved, err := file.Resolve(catalog, recipe.ProductGelato)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Product != recipe.ProductSorbet {
		t.Errorf("Expected sorbet, got %q", resolved.Product)
	}
	if _, ok := resolved.Catalog.Get("strawberry"); !ok {
		t.Errorf("Expected the recipe catalog to include the recipe's own ingredient")
	}
	if _, ok := catalog.Get("strawberry"); ok {
		t.Errorf("Resolve must not modify the base catalog")
	}
	if len(resolved.Targets) != 0 {
		t.Errorf("Expected no targets, got %v", resolved.Targets)
	}
}

func TestResolveDefaultProduct(t *testing.T) {
	file, err := ParseRecipe([]byte("rows:\n  - ingredient: water\n    grams: 100\n"))
	if err != nil {
		t.Fatalf("ParseRecipe() error = %v", err)
	}
	resolved, err := file.Resolve(testCatalog(t), recipe.ProductKulfi)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Product != recipe.ProductKulfi {
		t.Fatalf("Expected default product kulfi, got %q", resolved.Product)
	}
}

func TestParseRecipeErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		target  error
	}{
		{name: "no rows", content: "name: empty\n", target: recipe.ErrInvalidInput},
		{name: "malformed yaml", content: "rows: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRecipe([]byte(tc.content))
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		target  error
	}{
		{
			name:    "unknown ingredient",
			content: "rows:\n  - ingredient: mystery\n    grams: 100\n",
			target:  recipe.ErrUnknownIngredient,
		},
		{
			name:    "unknown product",
			content: "product: frozen-yogurt\nrows:\n  - ingredient: water\n    grams: 100\n",
			target:  recipe.ErrUnknownProduct,
		},
		{
			name:    "unknown parameter",
			content: "rows:\n  - ingredient: water\n    grams: 100\ntargets:\n  overrun: 30\n",
			target:  recipe.ErrUnknownParameter,
		},
		{
			name:    "negative grams",
			content: "rows:\n  - ingredient: water\n    grams: -1\n",
			target:  recipe.ErrInvalidInput,
		},
	}

	catalog := testCatalog(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			file, err := ParseRecipe([]byte(tc.content))
			if err != nil {
				t.Fatalf("ParseRecipe() error = %v", err)
			}
			_, err = file.Resolve(catalog, recipe.ProductGelato)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
		})
	}
}
