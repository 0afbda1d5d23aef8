package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/feasibility"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
	"github.com/iwvelando/recipe-science/pkg/optimization"
)

var (
	milk    = recipe.Ingredient{ID: "whole-milk", Name: "Whole milk", Category: "dairy", WaterPct: 88.5, FatPct: 3.25, MSNFPct: 8.25, CostPerKg: 1.1}
	cream   = recipe.Ingredient{ID: "cream-35", Name: "Cream 35%", Category: "dairy", WaterPct: 60, FatPct: 35, MSNFPct: 5, CostPerKg: 4.5}
	sucrose = recipe.Ingredient{ID: "sucrose", Name: "Sucrose", SugarsPct: 100, CostPerKg: 1}
	butter  = recipe.Ingredient{ID: "butter", Name: "Butter", Category: "dairy", WaterPct: 16, FatPct: 82, MSNFPct: 2, CostPerKg: 8}
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func render(t *testing.T, format string, fn func(*Printer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	pr, err := NewPrinter(&buf, format)
	require.NoError(t, err)
	require.NoError(t, fn(pr))
	return buf.Bytes()
}

func sampleAnalysis() engine.Analysis {
	return engine.Analysis{
		Product: recipe.ProductGelato,
		Metrics: composition.Metrics{
			TotalGrams:     1000,
			TotalSolidsPct: 33.5,
			WaterPct:       66.5,
			FatPct:         7.5,
			MSNFPct:        11.75,
			ProteinPct:     4.25,
			LactosePct:     6.5,
			TotalSugarsPct: 20.5,
			AddedSugarsPct: 14,
			SP:             16.5,
			PAC:            27.25,
			FPDT:           2.25,
			CostTotal:      1.75,
			CostPerKg:      1.75,
			Warnings:       []string{"too hard at serving temperature"},
		},
		Validation: engine.Validation{
			Results: []science.Result{
				{Parameter: recipe.ParamFat, Value: 7.5, Optimal: science.Range{Min: 6, Max: 9},
					Acceptable: science.Range{Min: 4, Max: 10}, Weight: 0.2, Severity: science.SeverityOptimal},
				{Parameter: recipe.ParamSP, Value: 16.5, Optimal: science.Range{Min: 16, Max: 19},
					Acceptable: science.Range{Min: 14, Max: 21}, Weight: 0.1, Severity: science.SeverityOptimal},
				{Parameter: recipe.ParamFPDT, Value: 2.25, Optimal: science.Range{Min: 2.5, Max: 3.5},
					Acceptable: science.Range{Min: 2, Max: 4}, Weight: 0.2, Severity: science.SeverityAcceptable,
					Recommendation: "increase freezing point depression for a softer scoop: add dextrose or invert sugar"},
			},
			Score: science.Score{Score: 91.5, Grade: "A", Color: "success"},
		},
	}
}

func sampleReport() feasibility.Report {
	return feasibility.Report{
		Feasible:   false,
		Reason:     "fat target 20.00% is outside the reachable range",
		BatchGrams: 1000,
		Ranges: []feasibility.ParameterRange{
			{Parameter: recipe.ParamFat, Target: 20, Current: &feasibility.Range{Min: 3.25, Max: 3.25},
				WithAdditions: &feasibility.Range{Min: 3.25, Max: 25}, NeedsAddition: true},
			{Parameter: recipe.ParamMSNF, Target: 8, WithAdditions: &feasibility.Range{Min: 2.5, Max: 8.25},
				Reachable: true, NeedsAddition: true},
		},
		Additions: []feasibility.Addition{
			{Ingredient: butter, MaxGrams: 300, Parameters: []recipe.Parameter{recipe.ParamFat}},
		},
		Suggestions: []string{"add a high-fat ingredient such as cream or butter, or lower the fat target to at most 3.25%"},
	}
}

func sampleResult() balancer.Result {
	return balancer.Result{
		Rows: []recipe.RecipeRow{
			{Ingredient: milk, Grams: 650.25},
			{Ingredient: cream, Grams: 229.75},
			{Ingredient: sucrose, Grams: 120, Locked: true},
		},
		Success:  true,
		Strategy: balancer.StrategyLP,
		States:   []balancer.State{balancer.StateIdle, balancer.StateLPSolve, balancer.StateDone},
		Deviations: []optimization.Deviation{
			{Parameter: "fat", Target: 8, Achieved: 8.25, Deviation: 0.25},
			{Parameter: "msnf", Target: 11, Achieved: 10.75, Deviation: -0.25},
		},
		Diagnostics: optimization.Diagnostics{Iterations: 1, Converged: true, MaxDeviation: 0.25},
		Validation: []science.Result{
			{Parameter: recipe.ParamMSNF, Value: 10.75, Severity: science.SeverityAcceptable,
				Recommendation: "increase MSNF: add skim milk powder"},
		},
		Score: &science.Score{Score: 87.5, Grade: "B", Color: "success"},
		Adjustments: []optimization.Adjustment{
			{IngredientID: "cream-35", Ingredient: "Cream 35%", Action: optimization.ActionIncrease,
				Original: 150, Value: 229.75, Delta: 79.75, Priority: optimization.PriorityHigh},
			{IngredientID: "whole-milk", Ingredient: "Whole milk", Action: optimization.ActionDecrease,
				Original: 730, Value: 650.25, Delta: -79.75, Priority: optimization.PriorityHigh},
		},
	}
}

func TestNewPrinterRejectsUnknownFormat(t *testing.T) {
	_, err := NewPrinter(&bytes.Buffer{}, "xml")
	assert.Error(t, err)
}

func TestAnalysisGolden(t *testing.T) {
	g := newGoldie(t)
	g.Assert(t, "analysis_pretty", render(t, "pretty", func(p *Printer) error { return p.Analysis(sampleAnalysis()) }))
	g.Assert(t, "analysis_csv", render(t, "csv", func(p *Printer) error { return p.Analysis(sampleAnalysis()) }))
}

func TestFeasibilityGolden(t *testing.T) {
	g := newGoldie(t)
	g.Assert(t, "feasibility_pretty", render(t, "pretty", func(p *Printer) error { return p.Feasibility(sampleReport()) }))
	g.Assert(t, "feasibility_csv", render(t, "csv", func(p *Printer) error { return p.Feasibility(sampleReport()) }))
}

func TestBalanceGolden(t *testing.T) {
	g := newGoldie(t)
	g.Assert(t, "balance_pretty", render(t, "pretty", func(p *Printer) error { return p.Balance(sampleResult()) }))
	g.Assert(t, "balance_csv", render(t, "csv", func(p *Printer) error { return p.Balance(sampleResult()) }))
}

func TestCatalogGolden(t *testing.T) {
	ingredients := []recipe.Ingredient{milk, sucrose}
	g := newGoldie(t)
	g.Assert(t, "catalog_pretty", render(t, "pretty", func(p *Printer) error { return p.Catalog(ingredients) }))
	g.Assert(t, "catalog_csv", render(t, "csv", func(p *Printer) error { return p.Catalog(ingredients) }))
}

func TestJSONOutput(t *testing.T) {
	out := render(t, "json", func(p *Printer) error { return p.Balance(sampleResult()) })

	var decoded balancer.Result
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, balancer.StrategyLP, decoded.Strategy)
	assert.Len(t, decoded.Rows, 3)
	assert.Equal(t, byte('\n'), out[len(out)-1])

	out = render(t, "json", func(p *Printer) error { return p.Catalog(nil) })
	assert.JSONEq(t, `{"ingredients": []}`, string(out))
}

func TestPrettyAnalysisWithoutValidation(t *testing.T) {
	a := sampleAnalysis()
	a.Validation = engine.Validation{}
	a.Metrics.Warnings = nil
	out := string(render(t, "pretty", func(p *Printer) error { return p.Analysis(a) }))

	assert.Contains(t, out, "Batch: 1,000.00 g")
	assert.NotContains(t, out, "Score:")
	assert.NotContains(t, out, "Warnings:")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestWriteErrorsPropagate(t *testing.T) {
	for _, format := range []string{"pretty", "csv", "json"} {
		pr, err := NewPrinter(failingWriter{}, format)
		require.NoError(t, err)
		assert.Error(t, pr.Balance(sampleResult()), format)
	}
}
