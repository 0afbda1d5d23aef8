// Package science grades computed mix metrics against per-product
// composition bands and condenses the grades into a quality score.
package science

import (
	"fmt"

	"github.com/iwvelando/recipe-science/internal/recipe"
)

// Range is a closed interval of parameter values.
type Range struct {
	Min float64 `json:"min" yaml:"min" mapstructure:"min"`
	Max float64 `json:"max" yaml:"max" mapstructure:"max"`
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Span returns the width of the range.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Mid returns the centre of the range.
func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// Distance returns how far v lies outside the range, or 0 inside it.
func (r Range) Distance(v float64) float64 {
	switch {
	case v < r.Min:
		return r.Min - v
	case v > r.Max:
		return v - r.Max
	default:
		return 0
	}
}

// Band is the optimal and acceptable window of one parameter.
type Band struct {
	Optimal    Range   `json:"optimal" yaml:"optimal" mapstructure:"optimal"`
	Acceptable Range   `json:"acceptable" yaml:"acceptable" mapstructure:"acceptable"`
	Weight     float64 `json:"weight" yaml:"weight" mapstructure:"weight"`
}

// ProductBand holds the bands of every tracked parameter of one product.
type ProductBand map[recipe.Parameter]Band

// BandSet maps products onto their bands. It is passed explicitly to the
// validator and the balancer; DefaultBands builds a fresh copy each call.
type BandSet map[recipe.Product]ProductBand

// Tracked lists the parameters graded by the validator, in order.
var Tracked = []recipe.Parameter{
	recipe.ParamTotalSolids,
	recipe.ParamFat,
	recipe.ParamMSNF,
	recipe.ParamTotalSugars,
	recipe.ParamSP,
	recipe.ParamFPDT,
}

var defaultWeights = map[recipe.Parameter]float64{
	recipe.ParamTotalSolids: 0.20,
	recipe.ParamFat:         0.20,
	recipe.ParamMSNF:        0.15,
	recipe.ParamTotalSugars: 0.15,
	recipe.ParamSP:          0.10,
	recipe.ParamFPDT:        0.20,
}

type window struct {
	optLo, optHi, accLo, accHi float64
}

var defaultWindows = map[recipe.Product]map[recipe.Parameter]window{
	recipe.ProductGelato: {
		recipe.ParamTotalSolids: {36, 40, 32, 42},
		recipe.ParamFat:         {6, 9, 4, 10},
		recipe.ParamMSNF:        {9, 11.5, 7, 12.5},
		recipe.ParamTotalSugars: {16, 22, 14, 24},
		recipe.ParamSP:          {16, 20, 14, 22},
		recipe.ParamFPDT:        {2.5, 3.5, 2.2, 4.0},
	},
	recipe.ProductIceCream: {
		recipe.ParamTotalSolids: {36, 42, 32, 45},
		recipe.ParamFat:         {10, 16, 8, 20},
		recipe.ParamMSNF:        {9, 12, 7, 13},
		recipe.ParamTotalSugars: {14, 20, 12, 22},
		recipe.ParamSP:          {14, 18, 12, 20},
		recipe.ParamFPDT:        {2.4, 3.2, 2.0, 3.6},
	},
	recipe.ProductSorbet: {
		recipe.ParamTotalSolids: {28, 34, 25, 38},
		recipe.ParamFat:         {0, 1, 0, 2},
		recipe.ParamMSNF:        {0, 0.5, 0, 1},
		recipe.ParamTotalSugars: {24, 32, 20, 35},
		recipe.ParamSP:          {22, 30, 18, 34},
		recipe.ParamFPDT:        {3.0, 4.5, 2.5, 5.5},
	},
	recipe.ProductKulfi: {
		recipe.ParamTotalSolids: {38, 45, 34, 48},
		recipe.ParamFat:         {6, 10, 4, 12},
		recipe.ParamMSNF:        {13, 18, 11, 20},
		recipe.ParamTotalSugars: {16, 22, 14, 25},
		recipe.ParamSP:          {14, 20, 12, 22},
		recipe.ParamFPDT:        {2.0, 3.0, 1.6, 3.4},
	},
	recipe.ProductFruitGelato: {
		recipe.ParamTotalSolids: {32, 38, 28, 42},
		recipe.ParamFat:         {3, 7, 1, 9},
		recipe.ParamMSNF:        {6, 10, 4, 11},
		recipe.ParamTotalSugars: {20, 26, 16, 30},
		recipe.ParamSP:          {18, 24, 15, 27},
		recipe.ParamFPDT:        {2.8, 3.8, 2.4, 4.4},
	},
}

// DefaultBands returns the built-in bands for every product.
func DefaultBands() BandSet {
	set := make(BandSet, len(defaultWindows))
	for product, windows := range defaultWindows {
		pb := make(ProductBand, len(windows))
		for param, w := range windows {
			pb[param] = Band{
				Optimal:    Range{Min: w.optLo, Max: w.optHi},
				Acceptable: Range{Min: w.accLo, Max: w.accHi},
				Weight:     defaultWeights[param],
			}
		}
		set[product] = pb
	}
	return set
}

// For returns the bands of a product.
func (s BandSet) For(product recipe.Product) (ProductBand, error) {
	pb, ok := s[product]
	if !ok || len(pb) == 0 {
		return nil, fmt.Errorf("%w: no bands for %q", recipe.ErrUnknownProduct, product)
	}
	return pb, nil
}

// Merge returns a copy of s with every band in overrides replacing the
// corresponding entry. Neither input is modified.
func (s BandSet) Merge(overrides BandSet) BandSet {
	out := make(BandSet, len(s))
	for product, pb := range s {
		cp := make(ProductBand, len(pb))
		for param, band := range pb {
			cp[param] = band
		}
		out[product] = cp
	}
	for product, pb := range overrides {
		if out[product] == nil {
			out[product] = make(ProductBand, len(pb))
		}
		for param, band := range pb {
			out[product][param] = band
		}
	}
	return out
}

// Validate checks that every band is well formed: ranges ordered, the
// optimal range inside the acceptable one and a non-negative weight.
func (s BandSet) Validate() error {
	for _, product := range recipe.Products {
		for _, param := range Tracked {
			band, ok := s[product][param]
			if !ok {
				continue
			}
			if err := band.validate(); err != nil {
				return fmt.Errorf("bands %s/%s: %w", product, param, err)
			}
		}
	}
	return nil
}

func (b Band) validate() error {
	if b.Optimal.Min > b.Optimal.Max {
		return fmt.Errorf("optimal min %.2f exceeds max %.2f", b.Optimal.Min, b.Optimal.Max)
	}
	if b.Acceptable.Min > b.Acceptable.Max {
		return fmt.Errorf("acceptable min %.2f exceeds max %.2f", b.Acceptable.Min, b.Acceptable.Max)
	}
	if b.Optimal.Min < b.Acceptable.Min || b.Optimal.Max > b.Acceptable.Max {
		return fmt.Errorf("optimal range %.2f-%.2f is not inside acceptable range %.2f-%.2f",
			b.Optimal.Min, b.Optimal.Max, b.Acceptable.Min, b.Acceptable.Max)
	}
	if b.Weight < 0 {
		return fmt.Errorf("weight %.2f must not be negative", b.Weight)
	}
	return nil
}

// ParseBandSet converts name keyed bands, as read from configuration, into
// a BandSet.
func ParseBandSet(raw map[string]map[string]Band) (BandSet, error) {
	set := make(BandSet, len(raw))
	for productName, params := range raw {
		product, err := recipe.ParseProduct(productName)
		if err != nil {
			return nil, err
		}
		pb := make(ProductBand, len(params))
		for paramName, band := range params {
			param, err := recipe.ParseParameter(paramName)
			if err != nil {
				return nil, err
			}
			pb[param] = band
		}
		set[product] = pb
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
