package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/recipe"
)

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	start := time.Now()
	conf, r, eng := loadRecipe(t, "../recipes/gelato.yaml")
	loadTime := time.Since(start)

	start = time.Now()
	if _, err := eng.Analyze(r.Rows, r.Product); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	analyzeTime := time.Since(start)

	opts := conf.Balancer.Options()
	opts.Product = r.Product
	opts.UseLPSolver = true

	start = time.Now()
	if _, err := eng.Balance(r.Rows, r.Targets, opts); err != nil {
		t.Fatalf("Balance (lp) failed: %v", err)
	}
	lpTime := time.Since(start)

	opts.UseLPSolver = false
	start = time.Now()
	if _, err := eng.Balance(r.Rows, r.Targets, opts); err != nil {
		t.Fatalf("Balance (heuristic) failed: %v", err)
	}
	heuristicTime := time.Since(start)

	totalTime := loadTime + analyzeTime + lpTime + heuristicTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config and recipe: %v", loadTime)
	t.Logf("  Analyze: %v", analyzeTime)
	t.Logf("  Balance (lp): %v", lpTime)
	t.Logf("  Balance (heuristic): %v", heuristicTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", totalTime)
	}
}

// TestDataConsistency validates that repeated runs produce identical results
func TestDataConsistency(t *testing.T) {
	var first balancer.Result

	for run := 0; run < 3; run++ {
		conf, r, eng := loadRecipe(t, "../recipes/gelato.yaml")
		opts := conf.Balancer.Options()
		opts.Product = r.Product

		result, err := eng.Balance(r.Rows, r.Targets, opts)
		if err != nil {
			t.Fatalf("Balance failed on run %d: %v", run, err)
		}

		if run == 0 {
			first = result
			continue
		}

		if result.Strategy != first.Strategy || result.Success != first.Success {
			t.Errorf("Run %d: strategy %s/%v differs from %s/%v",
				run, result.Strategy, result.Success, first.Strategy, first.Success)
		}
		if len(result.Rows) != len(first.Rows) {
			t.Fatalf("Run %d: got %d rows, expected %d", run, len(result.Rows), len(first.Rows))
		}
		for i, row := range result.Rows {
			if row.Ingredient.ID != first.Rows[i].Ingredient.ID || row.Grams != first.Rows[i].Grams {
				t.Errorf("Run %d, row %d: %s %.2f g != %s %.2f g", run, i,
					row.Ingredient.ID, row.Grams, first.Rows[i].Ingredient.ID, first.Rows[i].Grams)
			}
		}
	}
}

func BenchmarkComputeMetrics(b *testing.B) {
	_, r, eng := loadRecipe(b, "../recipes/gelato.yaml")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.ComputeMetrics(r.Rows, r.Product); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkBalance(b *testing.B, useLP bool) {
	conf, r, eng := loadRecipe(b, "../recipes/gelato.yaml")
	opts := conf.Balancer.Options()
	opts.Product = r.Product
	opts.UseLPSolver = useLP
	targets := recipe.Targets{recipe.ParamFat: 8.5, recipe.ParamMSNF: 10.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.Balance(r.Rows, targets, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBalanceLP(b *testing.B) {
	benchmarkBalance(b, true)
}

func BenchmarkBalanceHeuristic(b *testing.B) {
	benchmarkBalance(b, false)
}
