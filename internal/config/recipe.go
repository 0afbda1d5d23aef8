package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iwvelando/recipe-science/internal/recipe"
)

// RecipeFile is the on-disk form of a recipe: rows naming catalog
// ingredients, optional targets and optional extra ingredients.
type RecipeFile struct {
	Name        string              `yaml:"name,omitempty"`
	Product     string              `yaml:"product,omitempty"`
	Rows        []recipe.RowRef     `yaml:"rows"`
	Targets     map[string]float64  `yaml:"targets,omitempty"`
	Ingredients []recipe.Ingredient `yaml:"ingredients,omitempty"`
}

// Recipe is a recipe file resolved against a catalog.
type Recipe struct {
	Name    string
	Product recipe.Product
	Rows    []recipe.RecipeRow
	Targets recipe.Targets
	// Catalog is the catalog the rows were resolved against, including the
	// file's own ingredients.
	Catalog *recipe.Catalog
}

// catalogFile is the on-disk form of an ingredient catalog.
type catalogFile struct {
	Ingredients []recipe.Ingredient `yaml:"ingredients"`
}

// LoadCatalogFile reads a YAML file holding an "ingredients" list.
func LoadCatalogFile(path string) ([]recipe.Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return file.Ingredients, nil
}

// LoadRecipe reads and parses a recipe file.
func LoadRecipe(path string) (*RecipeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}
	file, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("recipe file %s: %w", path, err)
	}
	return file, nil
}

// ParseRecipe decodes a YAML recipe document.
func ParseRecipe(data []byte) (*RecipeFile, error) {
	var file RecipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if len(file.Rows) == 0 {
		return nil, fmt.Errorf("%w: recipe has no rows", recipe.ErrInvalidInput)
	}
	return &file, nil
}

// Resolve binds the file's rows to catalog ingredients. The file's own
// ingredients are added to the catalog first. An empty product falls back
// to defaultProduct.
func (f *RecipeFile) Resolve(catalog *recipe.Catalog, defaultProduct recipe.Product) (*Recipe, error) {
	if len(f.Ingredients) > 0 {
		merged, err := recipe.NewCatalog(append(catalog.All(), f.Ingredients...))
		if err != nil {
			return nil, err
		}
		catalog = merged
	}

	product := defaultProduct
	if f.Product != "" {
		p, err := recipe.ParseProduct(f.Product)
		if err != nil {
			return nil, err
		}
		product = p
	}

	rows, err := catalog.Resolve(f.Rows)
	if err != nil {
		return nil, err
	}
	targets, err := recipe.ParseTargets(f.Targets)
	if err != nil {
		return nil, err
	}
	return &Recipe{Name: f.Name, Product: product, Rows: rows, Targets: targets, Catalog: catalog}, nil
}
