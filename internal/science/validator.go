package science

import (
	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/recipe"
)

// Severity grades a parameter value against its band.
type Severity string

const (
	SeverityOptimal    Severity = "optimal"
	SeverityAcceptable Severity = "acceptable"
	SeverityWarning    Severity = "warning"
	SeverityCritical   Severity = "critical"
)

// warningMargin is how far outside the acceptable range, as a share of its
// span, a value may lie and still be graded a warning.
const warningMargin = 0.25

// Result is the grade of one parameter.
type Result struct {
	Parameter      recipe.Parameter `json:"parameter"`
	Value          float64          `json:"value"`
	Optimal        Range            `json:"optimal"`
	Acceptable     Range            `json:"acceptable"`
	Weight         float64          `json:"weight"`
	Severity       Severity         `json:"severity"`
	Recommendation string           `json:"recommendation,omitempty"`
}

// Validate grades every tracked parameter of the metrics against the
// product's bands. Parameters without a band are skipped.
func Validate(m composition.Metrics, product recipe.Product, bands BandSet) ([]Result, error) {
	pb, err := bands.For(product)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(Tracked))
	for _, param := range Tracked {
		band, ok := pb[param]
		if !ok {
			continue
		}
		value := m.Value(param)
		severity := Classify(value, band)
		result := Result{
			Parameter:  param,
			Value:      value,
			Optimal:    band.Optimal,
			Acceptable: band.Acceptable,
			Weight:     band.Weight,
			Severity:   severity,
		}
		if severity != SeverityOptimal {
			result.Recommendation = recommend(param, value < band.Optimal.Min)
		}
		results = append(results, result)
	}
	return results, nil
}

// Classify grades a single value against a band.
func Classify(value float64, band Band) Severity {
	switch {
	case band.Optimal.Contains(value):
		return SeverityOptimal
	case band.Acceptable.Contains(value):
		return SeverityAcceptable
	case band.Acceptable.Distance(value) <= warningMargin*band.Acceptable.Span():
		return SeverityWarning
	default:
		return SeverityCritical
	}
}

type advice struct {
	raise, lower string
}

var recommendations = map[recipe.Parameter]advice{
	recipe.ParamTotalSolids: {
		raise: "increase total solids: add milk powder, sugars or fibre such as inulin",
		lower: "reduce total solids: add water or milk to dilute the mix",
	},
	recipe.ParamFat: {
		raise: "increase fat: add cream or another high-fat dairy ingredient",
		lower: "reduce fat: replace part of the cream with milk",
	},
	recipe.ParamMSNF: {
		raise: "increase MSNF: add skim milk powder",
		lower: "reduce MSNF: use less milk powder to avoid sandiness",
	},
	recipe.ParamTotalSugars: {
		raise: "increase sugars: add sucrose or dextrose",
		lower: "reduce sugars: cut sucrose and replace the solids with milk powder or fibre",
	},
	recipe.ParamSP: {
		raise: "increase sweetness: add sucrose or a little fructose",
		lower: "reduce sweetness: swap part of the sucrose for glucose syrup",
	},
	recipe.ParamFPDT: {
		raise: "increase freezing point depression for a softer scoop: add dextrose or invert sugar",
		lower: "reduce freezing point depression for a firmer scoop: replace dextrose with sucrose or glucose syrup",
	},
}

func recommend(param recipe.Parameter, low bool) string {
	a, ok := recommendations[param]
	if !ok {
		return ""
	}
	if low {
		return a.raise
	}
	return a.lower
}
