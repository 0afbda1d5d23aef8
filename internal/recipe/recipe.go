// Package recipe defines the ingredient and recipe row data structures shared
// by the composition model, the validator and the balancer.
package recipe

import "github.com/iwvelando/recipe-science/pkg/chemistry"

// SugarSplit is the fractional breakdown of an ingredient's SugarsPct among
// sugar species. Fractions sum to 1.
type SugarSplit struct {
	Sucrose          float64 `json:"sucrose,omitempty" yaml:"sucrose,omitempty" mapstructure:"sucrose" validate:"gte=0,lte=1"`
	Dextrose         float64 `json:"dextrose,omitempty" yaml:"dextrose,omitempty" mapstructure:"dextrose" validate:"gte=0,lte=1"`
	Fructose         float64 `json:"fructose,omitempty" yaml:"fructose,omitempty" mapstructure:"fructose" validate:"gte=0,lte=1"`
	Invert           float64 `json:"invert,omitempty" yaml:"invert,omitempty" mapstructure:"invert" validate:"gte=0,lte=1"`
	Lactose          float64 `json:"lactose,omitempty" yaml:"lactose,omitempty" mapstructure:"lactose" validate:"gte=0,lte=1"`
	Oligosaccharides float64 `json:"oligosaccharides,omitempty" yaml:"oligosaccharides,omitempty" mapstructure:"oligosaccharides" validate:"gte=0,lte=1"`
}

// Total returns the sum of all fractions.
func (s SugarSplit) Total() float64 {
	return s.Sucrose + s.Dextrose + s.Fructose + s.Invert + s.Lactose + s.Oligosaccharides
}

// Fractions returns the split keyed by sugar species.
func (s SugarSplit) Fractions() map[chemistry.Sugar]float64 {
	return map[chemistry.Sugar]float64{
		chemistry.Sucrose:          s.Sucrose,
		chemistry.Dextrose:         s.Dextrose,
		chemistry.Fructose:         s.Fructose,
		chemistry.Invert:           s.Invert,
		chemistry.Lactose:          s.Lactose,
		chemistry.Oligosaccharides: s.Oligosaccharides,
	}
}

// Ingredient is an immutable catalog record. Composition fields are
// percentages of the ingredient's mass. SugarsPct excludes the lactose that
// is carried inside MSNFPct.
type Ingredient struct {
	ID             string      `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Name           string      `json:"name" yaml:"name" mapstructure:"name" validate:"required,max=200"`
	Category       string      `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
	WaterPct       float64     `json:"water_pct" yaml:"water_pct" mapstructure:"water_pct" validate:"gte=0,lte=100"`
	SugarsPct      float64     `json:"sugars_pct" yaml:"sugars_pct" mapstructure:"sugars_pct" validate:"gte=0,lte=100"`
	FatPct         float64     `json:"fat_pct" yaml:"fat_pct" mapstructure:"fat_pct" validate:"gte=0,lte=100"`
	MSNFPct        float64     `json:"msnf_pct" yaml:"msnf_pct" mapstructure:"msnf_pct" validate:"gte=0,lte=100"`
	OtherSolidsPct float64     `json:"other_solids_pct" yaml:"other_solids_pct" mapstructure:"other_solids_pct" validate:"gte=0,lte=100"`
	SugarSplit     *SugarSplit `json:"sugar_split,omitempty" yaml:"sugar_split,omitempty" mapstructure:"sugar_split" validate:"omitempty"`
	DE             *float64    `json:"de,omitempty" yaml:"de,omitempty" mapstructure:"de" validate:"omitempty,gte=0,lte=100"`
	SPCoeff        *float64    `json:"sp_coeff,omitempty" yaml:"sp_coeff,omitempty" mapstructure:"sp_coeff" validate:"omitempty,gte=0"`
	PACCoeff       *float64    `json:"pac_coeff,omitempty" yaml:"pac_coeff,omitempty" mapstructure:"pac_coeff" validate:"omitempty,gte=0"`
	CostPerKg      float64     `json:"cost_per_kg,omitempty" yaml:"cost_per_kg,omitempty" mapstructure:"cost_per_kg" validate:"gte=0"`
}

// CompositionTotal returns the sum of the five composition fields.
func (i Ingredient) CompositionTotal() float64 {
	return i.WaterPct + i.SugarsPct + i.FatPct + i.MSNFPct + i.OtherSolidsPct
}

// RecipeRow is one line of a recipe: an ingredient, its quantity and the
// bounds the balancer must respect.
type RecipeRow struct {
	Ingredient Ingredient `json:"ingredient"`
	Grams      float64    `json:"grams" validate:"gte=0"`
	Min        *float64   `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max        *float64   `json:"max,omitempty" validate:"omitempty,gte=0"`
	Locked     bool       `json:"locked,omitempty"`
}

// Bounds returns the balancer bounds of the row. Missing bounds default to
// [0, multiplier*Grams]. A locked row is pinned to its current grams.
func (r RecipeRow) Bounds(multiplier float64) (float64, float64) {
	if r.Locked {
		return r.Grams, r.Grams
	}
	lo := 0.0
	hi := r.Grams * multiplier
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// CloneRows returns a deep copy of rows so callers can never observe
// modifications made by the engine.
func CloneRows(rows []RecipeRow) []RecipeRow {
	if rows == nil {
		return nil
	}
	out := make([]RecipeRow, len(rows))
	for i, row := range rows {
		out[i] = row
		if row.Min != nil {
			v := *row.Min
			out[i].Min = &v
		}
		if row.Max != nil {
			v := *row.Max
			out[i].Max = &v
		}
	}
	return out
}

// TotalGrams sums the grams of all rows.
func TotalGrams(rows []RecipeRow) float64 {
	total := 0.0
	for _, row := range rows {
		total += row.Grams
	}
	return total
}

// RowRef is the serialized form of a recipe row: the ingredient is named by
// catalog ID or name and resolved through a Catalog.
type RowRef struct {
	Ingredient string   `json:"ingredient" yaml:"ingredient"`
	Grams      float64  `json:"grams" yaml:"grams"`
	Min        *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Locked     bool     `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// Ref converts a resolved row back to its serialized form.
func (r RecipeRow) Ref() RowRef {
	return RowRef{
		Ingredient: r.Ingredient.ID,
		Grams:      r.Grams,
		Min:        r.Min,
		Max:        r.Max,
		Locked:     r.Locked,
	}
}
