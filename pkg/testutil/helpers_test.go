package testutil

import (
	"math"
	"testing"
)

func TestFixturesFormAValidCatalog(t *testing.T) {
	catalog := Catalog()
	if catalog.Len() != len(Ingredients()) {
		t.Fatalf("expected %d catalog entries, got %d", len(Ingredients()), catalog.Len())
	}
	for _, ing := range Ingredients() {
		if math.Abs(ing.CompositionTotal()-100) > 0.5 {
			t.Errorf("fixture %s composition sums to %.2f", ing.ID, ing.CompositionTotal())
		}
	}
}

func TestFindRow(t *testing.T) {
	rows := GelatoRows()

	tests := []struct {
		name          string
		id            string
		expectFound   bool
		expectedGrams float64
	}{
		{name: "Find milk", id: WholeMilk, expectFound: true, expectedGrams: 650},
		{name: "Find dextrose", id: Dextrose, expectFound: true, expectedGrams: 20},
		{name: "Missing butter", id: Butter, expectFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := FindRow(rows, tt.id)
			if !tt.expectFound {
				if row != nil {
					t.Errorf("expected no row for %s", tt.id)
				}
				return
			}
			if row == nil {
				t.Fatalf("expected row for %s", tt.id)
			}
			if row.Grams != tt.expectedGrams {
				t.Errorf("expected %.0f g, got %.2f g", tt.expectedGrams, row.Grams)
			}
		})
	}
}

func TestCatalogOf(t *testing.T) {
	catalog := CatalogOf(WholeMilk)
	if catalog.Len() != 1 {
		t.Fatalf("expected single ingredient catalog, got %d", catalog.Len())
	}
	if _, ok := catalog.Get(Cream35); ok {
		t.Errorf("cream should not be in a milk-only catalog")
	}
}

func TestIngredientPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unknown fixture")
		}
	}()
	_ = Ingredient("unobtainium")
}
