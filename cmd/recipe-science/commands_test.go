package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/recipe"
)

var (
	testConfig   = filepath.Join("..", "..", "test", "test_config.yaml")
	gelatoRecipe = filepath.Join("..", "..", "test", "recipes", "gelato.yaml")
	sorbetRecipe = filepath.Join("..", "..", "test", "recipes", "strawberry-sorbet.yaml")
)

func TestCatalogCommand(t *testing.T) {
	out, err := execute(t, "catalog", "--config", testConfig, "--output-format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,category"))
	assert.Contains(t, out, "inulin,Inulin,stabilizer")
}

func TestCatalogCommandCategory(t *testing.T) {
	out, err := execute(t, "catalog", "--config", testConfig, "--category", "Stabilizer")
	require.NoError(t, err)

	// The test configuration renders JSON by default.
	var decoded struct {
		Ingredients []recipe.Ingredient `json:"ingredients"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Ingredients, 1)
	assert.Equal(t, "inulin", decoded.Ingredients[0].ID)
}

func TestMetricsCommand(t *testing.T) {
	out, err := execute(t, "metrics", "--config", testConfig, "--recipe", gelatoRecipe)
	require.NoError(t, err)

	var analysis engine.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, recipe.ProductGelato, analysis.Product)
	assert.InDelta(t, 1000.0, analysis.Metrics.TotalGrams, 1e-9)
	assert.Empty(t, analysis.Validation.Results)
}

func TestMetricsCommandRecipeIngredients(t *testing.T) {
	// The sorbet recipe brings its own strawberry ingredient.
	out, err := execute(t, "metrics", "--config", testConfig, "-r", sorbetRecipe)
	require.NoError(t, err)

	var analysis engine.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, recipe.ProductSorbet, analysis.Product)
	assert.InDelta(t, 1000.0, analysis.Metrics.TotalGrams, 1e-9)
	assert.Zero(t, analysis.Metrics.FatPct)
}

func TestValidateCommandPretty(t *testing.T) {
	out, err := execute(t, "validate", "--config", testConfig, "--recipe", gelatoRecipe, "--output-format", "pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "--- Gelato analysis ---")
	assert.Contains(t, out, "Batch: 1,000.00 g")
	assert.Contains(t, out, "Score:")
}

func TestFeasibilityCommandUnreachableTarget(t *testing.T) {
	out, err := execute(t, "feasibility", "--config", testConfig, "--recipe", gelatoRecipe,
		"--target", "fat=40", "--output-format", "pretty")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Feasible: no")
}

func TestFeasibilityCommandRequiresTargets(t *testing.T) {
	_, err := execute(t, "feasibility", "--config", testConfig, "--recipe", sorbetRecipe)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBalanceCommand(t *testing.T) {
	out, err := execute(t, "balance", "--config", testConfig, "--recipe", gelatoRecipe, "--lp")
	if err != nil {
		assert.Equal(t, ExitFailure, GetExitCode(err))
	}

	var result balancer.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Rows, 5)

	total := 0.0
	for _, row := range result.Rows {
		total += row.Grams
		if row.Ingredient.ID == "sucrose" {
			assert.True(t, row.Locked)
			assert.InDelta(t, 120.0, row.Grams, 1e-9)
		}
	}
	assert.InDelta(t, 1000.0, total, 1.0)
	assert.Equal(t, err == nil, result.Success)
}

func TestRecipeCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing recipe flag", []string{"metrics", "--config", testConfig}},
		{"missing recipe file", []string{"metrics", "--config", testConfig, "--recipe", "missing.yaml"}},
		{"missing config", []string{"metrics", "--config", "missing.yaml", "--recipe", gelatoRecipe}},
		{"bad target value", []string{"balance", "--config", testConfig, "--recipe", gelatoRecipe, "--target", "fat=lots"}},
		{"unknown target", []string{"balance", "--config", testConfig, "--recipe", gelatoRecipe, "--target", "color=2"}},
		{"bad log level", []string{"catalog", "--config", testConfig, "--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestFilterCategory(t *testing.T) {
	ingredients := []recipe.Ingredient{
		{ID: "a", Category: "Sugar"},
		{ID: "b", Category: "dairy"},
	}
	assert.Len(t, filterCategory(ingredients, ""), 2)
	assert.Len(t, filterCategory(ingredients, " sugar "), 1)
	assert.Empty(t, filterCategory(ingredients, "fruit"))
}
