// Package engine is the entry point to the recipe science calculations: it
// binds a catalog and a band set once and exposes metrics, validation,
// feasibility and balancing on top of them.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/feasibility"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
)

// Validation bundles the per parameter verdicts of a mix with its score.
type Validation struct {
	Results []science.Result `json:"results"`
	Score   science.Score    `json:"score"`
}

// Analysis is the metrics of a recipe together with their validation.
type Analysis struct {
	Product    recipe.Product      `json:"product"`
	Metrics    composition.Metrics `json:"metrics"`
	Validation Validation          `json:"validation"`
}

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	logger   *zap.Logger
	catalog  *recipe.Catalog
	bands    science.BandSet
	checker  *feasibility.Checker
	balancer *balancer.Balancer
}

// New returns an Engine. A nil logger is replaced by a no-op logger and nil
// bands by the defaults. A nil catalog is treated as empty.
func New(logger *zap.Logger, catalog *recipe.Catalog, bands science.BandSet) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bands == nil {
		bands = science.DefaultBands()
	}
	if catalog == nil {
		catalog, _ = recipe.NewCatalog(nil)
	}
	return &Engine{
		logger:   logger,
		catalog:  catalog,
		bands:    bands,
		checker:  feasibility.NewChecker(logger, catalog),
		balancer: balancer.New(logger, catalog, bands),
	}
}

// Catalog returns the ingredient catalog the engine was built with.
func (e *Engine) Catalog() *recipe.Catalog {
	return e.catalog
}

// Bands returns the band set used for validation and target weighting.
func (e *Engine) Bands() science.BandSet {
	return e.bands
}

// ComputeMetrics derives the composition metrics of rows for a product.
func (e *Engine) ComputeMetrics(rows []recipe.RecipeRow, product recipe.Product) (composition.Metrics, error) {
	m, err := composition.Calculate(rows, product)
	if err != nil {
		return composition.Metrics{}, err
	}
	e.logger.Debug("computed recipe metrics",
		zap.String("op", "engine.ComputeMetrics"),
		zap.String("product", string(product)),
		zap.Int("rows", len(rows)),
		zap.Float64("totalGrams", m.TotalGrams),
		zap.Int("warnings", len(m.Warnings)),
	)
	return m, nil
}

// Validate grades metrics against the engine's bands for a product.
func (e *Engine) Validate(m composition.Metrics, product recipe.Product) (Validation, error) {
	results, err := science.Validate(m, product, e.bands)
	if err != nil {
		return Validation{}, err
	}
	score := science.QualityScore(results)
	e.logger.Debug("validated recipe metrics",
		zap.String("op", "engine.Validate"),
		zap.String("product", string(product)),
		zap.Float64("score", score.Score),
		zap.String("grade", score.Grade),
	)
	return Validation{Results: results, Score: score}, nil
}

// Analyze computes and validates a recipe in one step.
func (e *Engine) Analyze(rows []recipe.RecipeRow, product recipe.Product) (Analysis, error) {
	m, err := e.ComputeMetrics(rows, product)
	if err != nil {
		return Analysis{}, err
	}
	v, err := e.Validate(m, product)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{Product: product, Metrics: m, Validation: v}, nil
}

// CheckFeasibility reports whether targets can be reached from rows, with
// catalog additions considered.
func (e *Engine) CheckFeasibility(rows []recipe.RecipeRow, targets recipe.Targets, opts feasibility.Options) (feasibility.Report, error) {
	return e.checker.Check(rows, targets, opts)
}

// Balance adjusts rows towards targets.
func (e *Engine) Balance(rows []recipe.RecipeRow, targets recipe.Targets, opts balancer.Options) (balancer.Result, error) {
	result, err := e.balancer.Balance(rows, targets, opts)
	if err != nil {
		return balancer.Result{}, fmt.Errorf("balance failed: %w", err)
	}
	return result, nil
}

// FeasibilityOptions derives the feasibility options matching balancer
// options, so that a standalone check agrees with the one Balance runs.
func FeasibilityOptions(opts balancer.Options) feasibility.Options {
	opts.Normalize()
	return feasibility.Options{
		BoundMultiplier: opts.BoundMultiplier,
		AdditionCap:     opts.AdditionCap,
		Tolerance:       opts.Tolerance,
	}
}
