// Package composition computes the aggregate composition and freezing
// behaviour of a frozen dessert mix from its recipe rows.
package composition

import (
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/chemistry"
)

// Metrics holds every figure computed for a mix. Percentages are of the
// total mix mass; SP and PAC are grams per 100 g of mix.
type Metrics struct {
	TotalGrams float64 `json:"total_g"`

	FatPct         float64 `json:"fat_pct"`
	TotalSugarsPct float64 `json:"total_sugars_pct"`
	AddedSugarsPct float64 `json:"added_sugars_pct"`
	MSNFPct        float64 `json:"msnf_pct"`
	ProteinPct     float64 `json:"protein_pct"`
	LactosePct     float64 `json:"lactose_pct"`
	OtherSolidsPct float64 `json:"other_solids_pct"`
	TotalSolidsPct float64 `json:"ts_pct"`
	WaterPct       float64 `json:"water_pct"`

	SEGrams         float64 `json:"se_g"`
	SEPer100gWater  float64 `json:"se_per_100g_water"`
	FPDSE           float64 `json:"fpdse"`
	FPDSA           float64 `json:"fpdsa"`
	FPDT            float64 `json:"fpdt"`
	ClampedLeighton bool    `json:"clamped_leighton"`

	PODIndex               float64 `json:"pod_index"`
	SP                     float64 `json:"sp"`
	PAC                    float64 `json:"pac"`
	MonosaccharideFraction float64 `json:"monosaccharide_fraction"`

	CostTotal float64 `json:"cost_total"`
	CostPerKg float64 `json:"cost_per_kg"`

	Warnings []string `json:"warnings"`
}

// Value returns the metric backing a tracked parameter.
func (m Metrics) Value(p recipe.Parameter) float64 {
	switch p {
	case recipe.ParamTotalSolids:
		return m.TotalSolidsPct
	case recipe.ParamFat:
		return m.FatPct
	case recipe.ParamMSNF:
		return m.MSNFPct
	case recipe.ParamTotalSugars:
		return m.TotalSugarsPct
	case recipe.ParamSP:
		return m.SP
	case recipe.ParamPAC:
		return m.PAC
	case recipe.ParamFPDT:
		return m.FPDT
	default:
		return 0
	}
}

// Thresholds are the product specific limits behind calculator warnings.
type Thresholds struct {
	FPDTMin    float64
	FPDTMax    float64
	LactoseMax float64
	ProteinMax float64
}

var thresholds = map[recipe.Product]Thresholds{
	recipe.ProductGelato:      {FPDTMin: 2.5, FPDTMax: 3.5, LactoseMax: chemistry.LactoseCrystallizationPct, ProteinMax: chemistry.ProteinChewinessPct},
	recipe.ProductIceCream:    {FPDTMin: 2.5, FPDTMax: 3.5, LactoseMax: chemistry.LactoseCrystallizationPct, ProteinMax: chemistry.ProteinChewinessPct},
	recipe.ProductSorbet:      {FPDTMin: 3.0, FPDTMax: 4.5, LactoseMax: chemistry.LactoseCrystallizationPct, ProteinMax: chemistry.ProteinChewinessPct},
	recipe.ProductKulfi:       {FPDTMin: 2.0, FPDTMax: 3.0, LactoseMax: 13, ProteinMax: 6},
	recipe.ProductFruitGelato: {FPDTMin: 2.8, FPDTMax: 3.8, LactoseMax: chemistry.LactoseCrystallizationPct, ProteinMax: chemistry.ProteinChewinessPct},
}

// ThresholdsFor returns the warning limits applied to a product.
func ThresholdsFor(p recipe.Product) (Thresholds, bool) {
	t, ok := thresholds[p]
	return t, ok
}
