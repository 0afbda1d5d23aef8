// Package balancer adjusts ingredient quantities so that a recipe meets its
// composition targets while keeping the batch mass and honouring locks and
// bounds. A linear program is tried first; a bounded heuristic takes over
// when the solver is disabled, fails or misses the tolerance.
package balancer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/feasibility"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
	"github.com/iwvelando/recipe-science/pkg/constants"
	"github.com/iwvelando/recipe-science/pkg/mathutil"
	"github.com/iwvelando/recipe-science/pkg/optimization"
)

// Strategy names how a result was produced.
type Strategy string

const (
	StrategyLP        Strategy = "lp"
	StrategyHeuristic Strategy = "heuristic"
	StrategyUnchanged Strategy = "unchanged"
	StrategyNone      Strategy = "none"
)

// State is a stage of a balancing run.
type State string

const (
	StateIdle              State = "idle"
	StateFeasibilityCheck  State = "feasibility_check"
	StateLPSolve           State = "lp_solve"
	StateHeuristicFallback State = "heuristic_fallback"
	StateValidate          State = "validate"
	StateDone              State = "done"
)

// Result is the outcome of Balance. Rows is always a fresh slice.
type Result struct {
	Rows        []recipe.RecipeRow         `json:"rows"`
	Metrics     composition.Metrics        `json:"metrics"`
	Success     bool                       `json:"success"`
	Strategy    Strategy                   `json:"strategy"`
	States      []State                    `json:"states"`
	Message     string                     `json:"message,omitempty"`
	Deviations  []optimization.Deviation   `json:"deviations"`
	Diagnostics optimization.Diagnostics   `json:"diagnostics"`
	Validation  []science.Result           `json:"validation,omitempty"`
	Score       *science.Score             `json:"score,omitempty"`
	Adjustments []optimization.Adjustment  `json:"adjustments"`
	Feasibility *feasibility.Report        `json:"feasibility,omitempty"`
}

// Balancer runs balancing against a catalog and a band set. It holds no
// mutable state and is safe for concurrent use.
type Balancer struct {
	logger  *zap.Logger
	catalog *recipe.Catalog
	bands   science.BandSet
	checker *feasibility.Checker
	lp      func(*problem) (lpSolution, error)
}

// New returns a Balancer. A nil logger is replaced by a no-op logger and
// nil bands by the defaults. A nil catalog disables catalog additions.
func New(logger *zap.Logger, catalog *recipe.Catalog, bands science.BandSet) *Balancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bands == nil {
		bands = science.DefaultBands()
	}
	return &Balancer{
		logger:  logger,
		catalog: catalog,
		bands:   bands,
		checker: feasibility.NewChecker(logger, catalog),
		lp:      solveLP,
	}
}

// Balance is a convenience wrapper using the default bands and no logging.
func Balance(rows []recipe.RecipeRow, targets recipe.Targets, catalog *recipe.Catalog, opts Options) (Result, error) {
	return New(nil, catalog, nil).Balance(rows, targets, opts)
}

// run carries the working state of one Balance call.
type run struct {
	result Result
	opts   Options
}

func (r *run) enter(s State) {
	r.result.States = append(r.result.States, s)
}

// Balance adjusts the unlocked rows towards the targets. The input rows are
// never modified. Only invalid input yields an error; infeasible or
// unconverged runs are reported through Result.Success.
func (b *Balancer) Balance(rows []recipe.RecipeRow, targets recipe.Targets, opts Options) (Result, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: balancer options: %w", recipe.ErrInvalidInput, err)
	}
	if err := recipe.ValidateRows(rows); err != nil {
		return Result{}, err
	}
	if err := validateTargets(targets); err != nil {
		return Result{}, err
	}
	bands, err := b.bands.For(opts.Product)
	if err != nil {
		return Result{}, err
	}

	r := &run{opts: opts, result: Result{
		Rows:        recipe.CloneRows(rows),
		Strategy:    StrategyNone,
		Deviations:  []optimization.Deviation{},
		Adjustments: []optimization.Adjustment{},
	}}
	r.enter(StateIdle)

	before, err := composition.Calculate(rows, opts.Product)
	if err != nil {
		return Result{}, err
	}
	r.result.Metrics = before
	r.result.Deviations = deviations(before, targets)
	r.result.Diagnostics.MaxDeviation = optimization.MaxAbsDeviation(r.result.Deviations)

	if before.TotalGrams <= 0 {
		return b.finish(r, "recipe has no mass to balance")
	}
	if r.result.Diagnostics.MaxDeviation <= opts.Tolerance {
		r.result.Strategy = StrategyUnchanged
		r.result.Success = true
		r.result.Diagnostics.Converged = true
		if err := b.validate(r); err != nil {
			return Result{}, err
		}
		return b.finish(r, "all targets already within tolerance")
	}

	working := recipe.CloneRows(rows)
	if opts.EnableFeasibilityCheck {
		r.enter(StateFeasibilityCheck)
		report, err := b.checker.Check(working, targets, feasibility.Options{
			BoundMultiplier: opts.BoundMultiplier,
			AdditionCap:     opts.AdditionCap,
			Tolerance:       opts.Tolerance,
		})
		if err != nil {
			return Result{}, err
		}
		r.result.Feasibility = &report
		if !report.Feasible {
			return b.finish(r, "targets are infeasible: "+report.Reason)
		}
		if len(report.Additions) > 0 {
			if !opts.AllowAdditions {
				return b.finish(r, "targets need catalog additions; allow additions to add "+additionNames(report.Additions))
			}
			working = appendAdditions(working, report.Additions, before.TotalGrams*opts.AdditionCap)
			r.result.Diagnostics.Notes = append(r.result.Diagnostics.Notes, "added "+additionNames(report.Additions)+" from the catalog")
		}
	}

	pr, err := buildProblem(working, targets, bands, opts.BoundMultiplier)
	if err != nil {
		return Result{}, err
	}
	if len(pr.vars) == 0 {
		r.result.Rows = working
		return b.finish(r, "every ingredient is locked; nothing can be adjusted")
	}
	if reason := pr.massReason(); reason != "" {
		return b.finish(r, "targets are infeasible: "+reason)
	}

	grams := roundGrams(pr, b.solve(r, pr))
	optimized := pr.apply(working, grams)
	after, err := composition.Calculate(optimized, opts.Product)
	if err != nil {
		return Result{}, err
	}

	r.result.Rows = optimized
	r.result.Metrics = after
	r.result.Deviations = deviations(after, targets)
	r.result.Diagnostics.MaxDeviation = optimization.MaxAbsDeviation(r.result.Deviations)
	r.result.Success = r.result.Diagnostics.MaxDeviation <= opts.Tolerance
	r.result.Adjustments = adjustments(rows, optimized, pr, before)

	if err := b.validate(r); err != nil {
		return Result{}, err
	}
	if !r.result.Success {
		return b.finish(r, fmt.Sprintf("largest deviation %.2f exceeds the tolerance of %.2f",
			r.result.Diagnostics.MaxDeviation, opts.Tolerance))
	}
	return b.finish(r, "")
}

// solve runs the LP stage and, when needed, the heuristic fallback. The LP
// minimises the weighted sum of deviations while success is judged on the
// largest one, so an LP answer outside tolerance is compared against the
// heuristic and the answer with the smaller largest deviation wins.
func (b *Balancer) solve(r *run, pr *problem) []float64 {
	var lpGrams []float64
	lpDeviation := 0.0
	if r.opts.UseLPSolver {
		r.enter(StateLPSolve)
		sol, err := b.lp(pr)
		if err == nil {
			r.result.Strategy = StrategyLP
			r.result.Diagnostics.Iterations = 1
			r.result.Diagnostics.Converged = true
			r.result.Diagnostics.Objective = sol.objective
			lpDeviation = pr.maxDeviation(sol.grams)
			if lpDeviation <= r.opts.Tolerance {
				return sol.grams
			}
			lpGrams = sol.grams
		} else {
			b.logger.Warn("lp solver failed, falling back to heuristic",
				zap.String("op", "balancer.Balance"),
				zap.Error(err),
			)
			r.result.Diagnostics.Notes = append(r.result.Diagnostics.Notes, "lp solver failed: "+err.Error())
		}
	}

	r.enter(StateHeuristicFallback)
	h := solveHeuristic(pr, r.opts.Tolerance, r.opts.MaxIterations, r.opts.InnerPasses)
	if lpGrams != nil {
		hDeviation := pr.maxDeviation(h.grams)
		if hDeviation >= lpDeviation-1.0/constants.DecimalPrecision {
			r.result.Diagnostics.Notes = append(r.result.Diagnostics.Notes,
				fmt.Sprintf("heuristic reached a largest deviation of %.2f, no closer than the lp answer", hDeviation))
			return lpGrams
		}
		r.result.Diagnostics.Notes = append(r.result.Diagnostics.Notes,
			fmt.Sprintf("lp answer missed the tolerance with a largest deviation of %.2f; kept the heuristic answer", lpDeviation))
	}
	r.result.Strategy = StrategyHeuristic
	r.result.Diagnostics.Iterations = h.iterations
	r.result.Diagnostics.Converged = h.converged
	if !h.converged {
		r.result.Diagnostics.Notes = append(r.result.Diagnostics.Notes,
			fmt.Sprintf("heuristic stopped after %d iterations without converging", h.iterations))
	}
	return h.grams
}

func (b *Balancer) validate(r *run) error {
	if !r.opts.EnableScienceValidation {
		return nil
	}
	r.enter(StateValidate)
	results, err := science.Validate(r.result.Metrics, r.opts.Product, b.bands)
	if err != nil {
		return err
	}
	score := science.QualityScore(results)
	r.result.Validation = results
	r.result.Score = &score
	return nil
}

func (b *Balancer) finish(r *run, message string) (Result, error) {
	r.enter(StateDone)
	r.result.Message = message
	b.logger.Info("balance complete",
		zap.String("op", "balancer.Balance"),
		zap.String("product", string(r.opts.Product)),
		zap.String("strategy", string(r.result.Strategy)),
		zap.Bool("success", r.result.Success),
		zap.Int("iterations", r.result.Diagnostics.Iterations),
		zap.Bool("converged", r.result.Diagnostics.Converged),
		zap.Float64("maxDeviation", r.result.Diagnostics.MaxDeviation),
		zap.Int("adjustments", len(r.result.Adjustments)),
		zap.String("message", message),
	)
	return r.result, nil
}

func validateTargets(targets recipe.Targets) error {
	for _, p := range targets.Ordered() {
		if !p.Linear() {
			return fmt.Errorf("%w: %s cannot be targeted, it is not a mass weighted average", recipe.ErrInvalidInput, p.Label())
		}
		if !mathutil.IsFinite(targets[p]) {
			return fmt.Errorf("%w: target for %s must be a finite number", recipe.ErrInvalidInput, p.Label())
		}
	}
	return nil
}

func deviations(m composition.Metrics, targets recipe.Targets) []optimization.Deviation {
	out := make([]optimization.Deviation, 0, len(targets))
	for _, p := range targets.Ordered() {
		achieved := m.Value(p)
		out = append(out, optimization.Deviation{
			Parameter: string(p),
			Target:    targets[p],
			Achieved:  achieved,
			Deviation: achieved - targets[p],
		})
	}
	return out
}

func additionNames(additions []feasibility.Addition) string {
	names := make([]string, 0, len(additions))
	for _, a := range additions {
		names = append(names, a.Ingredient.Name)
	}
	return strings.Join(names, ", ")
}

// appendAdditions adds each catalog ingredient as a zero gram row bounded
// by the addition cap.
func appendAdditions(rows []recipe.RecipeRow, additions []feasibility.Addition, capGrams float64) []recipe.RecipeRow {
	for _, a := range additions {
		limit := capGrams
		rows = append(rows, recipe.RecipeRow{Ingredient: a.Ingredient, Grams: 0, Max: &limit})
	}
	return rows
}

// roundGrams rounds every unlocked quantity to 0.01 g inside its bounds and
// hands the rounding residual to the largest unlocked row that can take it
// without leaving its bounds.
func roundGrams(pr *problem, grams []float64) []float64 {
	out := make([]float64, len(grams))
	total := 0.0
	for i, g := range grams {
		out[i] = roundWithin(g, pr.vars[i].lo, pr.vars[i].hi)
		total += out[i]
	}
	if len(out) == 0 {
		return out
	}
	residual := mathutil.Round(pr.freeMass() - total)
	if residual == 0 {
		return out
	}

	receiver := -1
	for i, v := range pr.vars {
		next := out[i] + residual
		if next < v.lo-boundSlack || next > v.hi+boundSlack {
			continue
		}
		if receiver < 0 || out[i] > out[receiver] {
			receiver = i
		}
	}
	if receiver < 0 {
		return out
	}
	out[receiver] = roundWithin(out[receiver]+residual, pr.vars[receiver].lo, pr.vars[receiver].hi)
	return out
}

// boundSlack absorbs floating point noise when comparing against bounds.
const boundSlack = 1e-9

// roundWithin rounds g to 0.01 g, stepping back inside [lo, hi] when the
// rounding crosses a bound.
func roundWithin(g, lo, hi float64) float64 {
	r := mathutil.Round(g)
	if r > hi+boundSlack {
		r = math.Floor(hi*constants.DecimalPrecision) / constants.DecimalPrecision
	}
	if r < lo-boundSlack {
		r = math.Ceil(lo*constants.DecimalPrecision) / constants.DecimalPrecision
	}
	return mathutil.Clamp(r, lo, hi)
}

// adjustments lists per ingredient changes between the original and the
// optimised rows, largest change first.
func adjustments(original, optimized []recipe.RecipeRow, pr *problem, before composition.Metrics) []optimization.Adjustment {
	out := []optimization.Adjustment{}
	for _, v := range pr.vars {
		row := optimized[v.row]
		originalGrams := 0.0
		if v.row < len(original) {
			originalGrams = original[v.row].Grams
		}
		adj, ok := optimization.NewAdjustment(row.Ingredient.ID, row.Ingredient.Name, originalGrams, row.Grams)
		if !ok {
			continue
		}
		adj.Reason = reasonFor(v, adj.Delta, pr, before)
		out = append(out, adj)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Delta) > math.Abs(out[j].Delta)
	})
	return out
}

// reasonFor names the target a change helps most: adding an ingredient
// pulls each parameter towards the ingredient's own value.
func reasonFor(v variable, delta float64, pr *problem, before composition.Metrics) string {
	best, bestGain := -1, 0.0
	for k, t := range pr.targets {
		current := before.Value(t.param)
		need := t.value - current
		if math.Abs(need) <= constants.DefaultTolerance/10 {
			continue
		}
		gain := delta * (v.coeff[k] - current) * math.Copysign(1, need) * t.weight
		if gain > bestGain {
			best, bestGain = k, gain
		}
	}
	if best < 0 {
		return "keeps the batch mass constant"
	}
	t := pr.targets[best]
	return fmt.Sprintf("moves %s from %.2f%s towards the %.2f%s target",
		t.param.Label(), before.Value(t.param), t.param.Unit(), t.value, t.param.Unit())
}
