package recipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// catalogNamespace seeds name based IDs for catalog entries that arrive
// without one, so the same name always maps to the same ID.
var catalogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("recipe-science/catalog"))

// Catalog is a read-only, validated set of ingredients.
type Catalog struct {
	items  []Ingredient
	byID   map[string]int
	byName map[string]int
}

// IngredientID returns the stable ID assigned to an ingredient name.
func IngredientID(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	return uuid.NewSHA1(catalogNamespace, []byte(key)).String()
}

// NewCatalog validates the ingredients and builds a catalog. Entries without
// an ID receive a deterministic one derived from their name.
func NewCatalog(ingredients []Ingredient) (*Catalog, error) {
	c := &Catalog{
		items:  make([]Ingredient, 0, len(ingredients)),
		byID:   make(map[string]int, len(ingredients)),
		byName: make(map[string]int, len(ingredients)),
	}
	for _, ing := range ingredients {
		if strings.TrimSpace(ing.ID) == "" && strings.TrimSpace(ing.Name) != "" {
			ing.ID = IngredientID(ing.Name)
		}
		if err := ValidateIngredient(ing); err != nil {
			return nil, err
		}
		if _, exists := c.byID[ing.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIngredient, ing.ID)
		}
		c.byID[ing.ID] = len(c.items)
		name := strings.ToLower(strings.TrimSpace(ing.Name))
		if _, exists := c.byName[name]; !exists {
			c.byName[name] = len(c.items)
		}
		c.items = append(c.items, ing)
	}
	return c, nil
}

// Len returns the number of ingredients in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// All returns a copy of the catalog ingredients sorted by name.
func (c *Catalog) All() []Ingredient {
	if c == nil {
		return nil
	}
	out := make([]Ingredient, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Get returns the ingredient with the given ID.
func (c *Catalog) Get(id string) (Ingredient, bool) {
	if c == nil {
		return Ingredient{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return Ingredient{}, false
	}
	return c.items[idx], true
}

// Lookup finds an ingredient by ID, falling back to a case-insensitive
// name match.
func (c *Catalog) Lookup(ref string) (Ingredient, bool) {
	if ing, ok := c.Get(ref); ok {
		return ing, true
	}
	if c == nil {
		return Ingredient{}, false
	}
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(ref))]
	if !ok {
		return Ingredient{}, false
	}
	return c.items[idx], true
}

// Resolve turns serialized rows into recipe rows. Unknown ingredients are a
// hard error.
func (c *Catalog) Resolve(refs []RowRef) ([]RecipeRow, error) {
	rows := make([]RecipeRow, 0, len(refs))
	for i, ref := range refs {
		ing, ok := c.Lookup(ref.Ingredient)
		if !ok {
			return nil, fmt.Errorf("%w: row %d references %q", ErrUnknownIngredient, i, ref.Ingredient)
		}
		rows = append(rows, RecipeRow{
			Ingredient: ing,
			Grams:      ref.Grams,
			Min:        ref.Min,
			Max:        ref.Max,
			Locked:     ref.Locked,
		})
	}
	if err := ValidateRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}
