package integration

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/config"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
	"github.com/iwvelando/recipe-science/internal/server"
)

// loadRecipe loads the test configuration and a recipe exactly as the CLI
// does and returns an engine over the recipe's catalog.
func loadRecipe(t testing.TB, path string) (*config.Configuration, *config.Recipe, *engine.Engine) {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	catalog, err := conf.BuildCatalog()
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	bands, err := conf.BandSet()
	if err != nil {
		t.Fatalf("BandSet() error = %v", err)
	}

	file, err := config.LoadRecipe(path)
	if err != nil {
		t.Fatalf("LoadRecipe() error = %v", err)
	}
	r, err := file.Resolve(catalog, conf.Balancer.Options().Product)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return conf, r, engine.New(logger, r.Catalog, bands)
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// TestGelatoAnalysisBaseline checks the composition of the gelato recipe
// against values worked out from the test catalog.
func TestGelatoAnalysisBaseline(t *testing.T) {
	_, r, eng := loadRecipe(t, "../recipes/gelato.yaml")

	analysis, err := eng.Analyze(r.Rows, r.Product)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analysis.Product != recipe.ProductGelato {
		t.Errorf("Expected product gelato, got %s", analysis.Product)
	}

	m := analysis.Metrics
	baselineChecks := []struct {
		name     string
		actual   float64
		expected float64
	}{
		{"total grams", m.TotalGrams, 1000},
		{"fat", m.FatPct, 7.4225},
		{"msnf", m.MSNFPct, 11.8125},
		{"water", m.WaterPct, 66.705},
		{"total solids", m.TotalSolidsPct, 33.295},
		{"cost", m.CostTotal, 1.73},
		{"cost per kg", m.CostPerKg, 1.73},
	}
	for _, check := range baselineChecks {
		if !approxEqual(check.actual, check.expected, 1e-6) {
			t.Errorf("%s: expected %.4f, got %.4f", check.name, check.expected, check.actual)
		}
	}

	if len(analysis.Validation.Results) != 6 {
		t.Fatalf("Expected 6 validation results, got %d", len(analysis.Validation.Results))
	}
	for _, result := range analysis.Validation.Results {
		// The configuration narrows the gelato fat band to 7-9.
		if result.Parameter == recipe.ParamFat {
			if result.Optimal.Min != 7 || result.Optimal.Max != 9 {
				t.Errorf("Expected configured fat band 7-9, got %.2f-%.2f", result.Optimal.Min, result.Optimal.Max)
			}
			if result.Severity != science.SeverityOptimal {
				t.Errorf("Expected fat to be optimal, got %s", result.Severity)
			}
		}
	}
	if score := analysis.Validation.Score.Score; score < 0 || score > 100 {
		t.Errorf("Score out of range: %.2f", score)
	}
}

// TestSorbetRecipeIngredients checks that ingredients declared by a recipe
// file are resolved for that recipe only.
func TestSorbetRecipeIngredients(t *testing.T) {
	conf, r, eng := loadRecipe(t, "../recipes/strawberry-sorbet.yaml")

	m, err := eng.ComputeMetrics(r.Rows, r.Product)
	if err != nil {
		t.Fatalf("ComputeMetrics() error = %v", err)
	}
	if r.Product != recipe.ProductSorbet {
		t.Errorf("Expected product sorbet, got %s", r.Product)
	}
	if !approxEqual(m.TotalGrams, 1000, 1e-9) {
		t.Errorf("Expected 1000 g, got %.2f", m.TotalGrams)
	}
	if m.FatPct != 0 {
		t.Errorf("Expected a fat free sorbet, got %.2f%%", m.FatPct)
	}

	catalog, err := conf.BuildCatalog()
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	if _, ok := catalog.Get("strawberry"); ok {
		t.Errorf("Recipe ingredient leaked into the configured catalog")
	}
}

// TestGelatoFeasibility checks reachable and unreachable targets.
func TestGelatoFeasibility(t *testing.T) {
	conf, r, eng := loadRecipe(t, "../recipes/gelato.yaml")
	opts := conf.Balancer.Options()
	opts.Product = r.Product

	report, err := eng.CheckFeasibility(r.Rows, recipe.Targets{recipe.ParamFat: 40}, engine.FeasibilityOptions(opts))
	if err != nil {
		t.Fatalf("CheckFeasibility() error = %v", err)
	}
	if report.Feasible {
		t.Errorf("Expected 40%% fat to be unreachable even with butter")
	}
	if len(report.Suggestions) == 0 {
		t.Errorf("Expected suggestions for an unreachable target")
	}

	report, err = eng.CheckFeasibility(r.Rows, recipe.Targets{recipe.ParamFat: 7.5}, engine.FeasibilityOptions(opts))
	if err != nil {
		t.Fatalf("CheckFeasibility() error = %v", err)
	}
	if !report.Feasible {
		t.Errorf("Expected 7.5%% fat to be reachable: %s", report.Reason)
	}
}

// TestGelatoBalance runs the balancer with the configured defaults.
func TestGelatoBalance(t *testing.T) {
	conf, r, eng := loadRecipe(t, "../recipes/gelato.yaml")
	opts := conf.Balancer.Options()
	opts.Product = r.Product

	result, err := eng.Balance(r.Rows, r.Targets, opts)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if len(result.Rows) != len(r.Rows) {
		t.Fatalf("Expected %d rows, got %d", len(r.Rows), len(result.Rows))
	}
	if len(result.Deviations) != 3 {
		t.Errorf("Expected 3 deviations, got %d", len(result.Deviations))
	}

	total := recipe.TotalGrams(result.Rows)
	if !approxEqual(total, 1000, 1.0) {
		t.Errorf("Expected the batch mass to be kept, got %.2f g", total)
	}
	for _, row := range result.Rows {
		if row.Ingredient.ID == "sucrose" && row.Grams != 120 {
			t.Errorf("Locked sucrose moved to %.2f g", row.Grams)
		}
		if row.Grams < 0 {
			t.Errorf("Negative quantity for %s: %.2f", row.Ingredient.Name, row.Grams)
		}
	}
}

// TestServerValidateRoundTrip drives the HTTP surface with an engine built
// from the test configuration.
func TestServerValidateRoundTrip(t *testing.T) {
	conf, r, eng := loadRecipe(t, "../recipes/gelato.yaml")
	handler := server.NewHandler(zap.NewNop(), eng, server.HandlerOptions{
		Defaults: conf.Balancer.Options(),
	})

	refs := make([]recipe.RowRef, 0, len(r.Rows))
	for _, row := range r.Rows {
		refs = append(refs, row.Ref())
	}
	body, err := json.Marshal(map[string]interface{}{
		"product": "gelato",
		"rows":    refs,
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var analysis engine.Analysis
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !approxEqual(analysis.Metrics.FatPct, 7.4225, 1e-6) {
		t.Errorf("Expected fat 7.4225%%, got %.4f%%", analysis.Metrics.FatPct)
	}
}
