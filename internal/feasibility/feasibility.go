// Package feasibility decides whether composition targets can be reached by
// reallocating a recipe's batch mass within its bounds, optionally helped by
// catalog ingredients the recipe does not use yet.
package feasibility

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/constants"
)

// Options tune a feasibility check. Zero values take the defaults.
type Options struct {
	// BoundMultiplier sets the default upper bound of an unbounded row as a
	// multiple of its current grams.
	BoundMultiplier float64
	// AdditionCap limits a catalog addition to this share of the batch.
	AdditionCap float64
	// Tolerance widens every achievable range when comparing targets.
	Tolerance float64
}

func (o Options) normalize() Options {
	if o.BoundMultiplier <= 0 {
		o.BoundMultiplier = constants.DefaultBoundMultiplier
	}
	if o.AdditionCap <= 0 || o.AdditionCap > 1 {
		o.AdditionCap = constants.DefaultAdditionCap
	}
	if o.Tolerance <= 0 {
		o.Tolerance = constants.DefaultTolerance
	}
	return o
}

// Range is the achievable interval of a parameter.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v, tol float64) bool {
	return v >= r.Min-tol && v <= r.Max+tol
}

// ParameterRange reports how one target relates to what can be reached.
type ParameterRange struct {
	Parameter recipe.Parameter `json:"parameter"`
	Target    float64          `json:"target"`
	// Current is reachable with the recipe's own ingredients; it is nil when
	// the recipe rows alone cannot hold the batch mass.
	Current *Range `json:"current,omitempty"`
	// WithAdditions also lets catalog ingredients take up to the addition
	// cap each.
	WithAdditions *Range `json:"with_additions,omitempty"`
	Reachable     bool   `json:"reachable"`
	NeedsAddition bool   `json:"needs_addition"`
}

// Addition is a catalog ingredient the recipe needs to reach its targets.
type Addition struct {
	Ingredient recipe.Ingredient  `json:"ingredient"`
	MaxGrams   float64            `json:"max_grams"`
	Parameters []recipe.Parameter `json:"parameters"`
}

// Report is the outcome of a feasibility check.
type Report struct {
	Feasible    bool             `json:"feasible"`
	Reason      string           `json:"reason,omitempty"`
	BatchGrams  float64          `json:"batch_g"`
	Ranges      []ParameterRange `json:"ranges"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Additions   []Addition       `json:"additions,omitempty"`
}

// item is one allocatable ingredient: its bounds and its per parameter
// coefficients, i.e. the parameter value of the pure ingredient.
type item struct {
	ingredient recipe.Ingredient
	lo, hi     float64
	coeff      map[recipe.Parameter]float64
	extra      bool
}

// problem is the fixed mass allocation the targets are checked against.
type problem struct {
	mass       float64
	lockedMass float64
	fixed      map[recipe.Parameter]float64 // Σ g·c of locked rows
	items      []item
}

// Checker runs feasibility checks against a catalog.
type Checker struct {
	logger  *zap.Logger
	catalog *recipe.Catalog
}

// NewChecker returns a Checker. A nil logger is replaced by a no-op logger
// and a nil catalog disables catalog additions.
func NewChecker(logger *zap.Logger, catalog *recipe.Catalog) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{logger: logger, catalog: catalog}
}

// Check is a convenience wrapper for a one-off check without logging.
func Check(rows []recipe.RecipeRow, targets recipe.Targets, catalog *recipe.Catalog, opts Options) (Report, error) {
	return NewChecker(nil, catalog).Check(rows, targets, opts)
}

// Check computes, per targeted parameter, the range achievable with the
// fixed batch mass and reports whether every target lies inside it.
// Only linear parameters can be targeted.
func (c *Checker) Check(rows []recipe.RecipeRow, targets recipe.Targets, opts Options) (Report, error) {
	opts = opts.normalize()
	if err := recipe.ValidateRows(rows); err != nil {
		return Report{}, err
	}
	params := targets.Ordered()
	for _, p := range params {
		if !p.Linear() {
			return Report{}, fmt.Errorf("%w: %s cannot be targeted, it is not a mass weighted average", recipe.ErrInvalidInput, p.Label())
		}
		if v := targets[p]; math.IsNaN(v) || math.IsInf(v, 0) {
			return Report{}, fmt.Errorf("%w: target for %s must be a finite number", recipe.ErrInvalidInput, p.Label())
		}
	}

	report := Report{BatchGrams: recipe.TotalGrams(rows), Ranges: []ParameterRange{}}
	if report.BatchGrams <= 0 {
		report.Reason = "recipe has no mass to reallocate"
		return report, nil
	}
	if len(params) == 0 {
		report.Feasible = true
		return report, nil
	}

	current, err := c.buildProblem(rows, params, opts, false)
	if err != nil {
		return Report{}, err
	}
	augmented, err := c.buildProblem(rows, params, opts, true)
	if err != nil {
		return Report{}, err
	}

	currentOK := current.massReason() == ""
	if reason := augmented.massReason(); reason != "" {
		report.Reason = reason
		report.Suggestions = append(report.Suggestions, "loosen the min/max bounds or unlock ingredients so the batch mass can be met")
		c.logger.Info("feasibility check failed on mass bounds",
			zap.String("op", "feasibility.Check"),
			zap.Float64("batchGrams", report.BatchGrams),
			zap.String("reason", reason),
		)
		return report, nil
	}

	report.Feasible = true
	additions := make(map[string]*Addition)
	var additionOrder []string
	var reasons []string

	for _, p := range params {
		target := targets[p]
		pr := ParameterRange{Parameter: p, Target: target}
		if currentOK {
			r := current.extremes(p)
			pr.Current = &r
			pr.Reachable = r.contains(target, opts.Tolerance)
		}
		aug := augmented.extremes(p)
		pr.WithAdditions = &aug

		switch {
		case pr.Reachable:
		case aug.contains(target, opts.Tolerance):
			pr.NeedsAddition = true
			for _, it := range augmented.additionsFor(p, target, opts.Tolerance) {
				a, ok := additions[it.ingredient.ID]
				if !ok {
					a = &Addition{Ingredient: it.ingredient, MaxGrams: it.hi}
					additions[it.ingredient.ID] = a
					additionOrder = append(additionOrder, it.ingredient.ID)
				}
				a.Parameters = append(a.Parameters, p)
			}
		default:
			report.Feasible = false
			reasons = append(reasons, fmt.Sprintf("%s target %s is outside the achievable range %s",
				p.Label(), formatValue(p, target), formatRange(p, aug)))
			report.Suggestions = append(report.Suggestions, suggestion(p, target, aug))
		}
		report.Ranges = append(report.Ranges, pr)
	}

	for _, id := range additionOrder {
		report.Additions = append(report.Additions, *additions[id])
	}
	if len(report.Additions) > 0 {
		names := make([]string, 0, len(report.Additions))
		for _, a := range report.Additions {
			names = append(names, a.Ingredient.Name)
		}
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("add %s from the catalog to reach the targets", strings.Join(names, ", ")))
	}
	if !report.Feasible {
		report.Reason = strings.Join(reasons, "; ")
	}

	c.logger.Debug("feasibility check complete",
		zap.String("op", "feasibility.Check"),
		zap.Float64("batchGrams", report.BatchGrams),
		zap.Int("targets", len(params)),
		zap.Int("additions", len(report.Additions)),
		zap.Bool("feasible", report.Feasible),
	)
	return report, nil
}

func (c *Checker) buildProblem(rows []recipe.RecipeRow, params []recipe.Parameter, opts Options, withCatalog bool) (*problem, error) {
	mass := recipe.TotalGrams(rows)
	pr := &problem{mass: mass, fixed: make(map[recipe.Parameter]float64, len(params))}
	present := make(map[string]bool, len(rows))
	profiles := make(map[string]composition.Metrics)

	profile := func(ing recipe.Ingredient) (composition.Metrics, error) {
		if m, ok := profiles[ing.ID]; ok {
			return m, nil
		}
		m, err := composition.IngredientProfile(ing)
		if err != nil {
			return composition.Metrics{}, err
		}
		profiles[ing.ID] = m
		return m, nil
	}

	for _, row := range rows {
		present[row.Ingredient.ID] = true
		m, err := profile(row.Ingredient)
		if err != nil {
			return nil, err
		}
		if row.Locked {
			pr.lockedMass += row.Grams
			for _, p := range params {
				pr.fixed[p] += row.Grams * m.Value(p)
			}
			continue
		}
		lo, hi := row.Bounds(opts.BoundMultiplier)
		pr.items = append(pr.items, newItem(row.Ingredient, lo, hi, m, params, false))
	}

	if withCatalog && c.catalog != nil {
		for _, ing := range c.catalog.All() {
			if present[ing.ID] {
				continue
			}
			m, err := profile(ing)
			if err != nil {
				return nil, err
			}
			pr.items = append(pr.items, newItem(ing, 0, opts.AdditionCap*mass, m, params, true))
		}
	}
	return pr, nil
}

func newItem(ing recipe.Ingredient, lo, hi float64, m composition.Metrics, params []recipe.Parameter, extra bool) item {
	coeff := make(map[recipe.Parameter]float64, len(params))
	for _, p := range params {
		coeff[p] = m.Value(p)
	}
	return item{ingredient: ing, lo: lo, hi: hi, coeff: coeff, extra: extra}
}

func (pr *problem) minimumMass() float64 {
	total := pr.lockedMass
	for _, it := range pr.items {
		total += it.lo
	}
	return total
}

func (pr *problem) maximumMass() float64 {
	total := pr.lockedMass
	for _, it := range pr.items {
		total += it.hi
	}
	return total
}

// massReason explains why the bounds cannot hold the batch mass, or returns
// an empty string when they can.
func (pr *problem) massReason() string {
	if lo := pr.minimumMass(); lo > pr.mass+constants.MassTolerance {
		return fmt.Sprintf("locked and minimum quantities total %.2f g, more than the %.2f g batch", lo, pr.mass)
	}
	if hi := pr.maximumMass(); hi < pr.mass-constants.MassTolerance {
		return fmt.Sprintf("maximum quantities total %.2f g, less than the %.2f g batch", hi, pr.mass)
	}
	return ""
}

// extremes solves the two fractional knapsacks of a parameter: the free
// mass above the lower bounds goes to the highest (or lowest) coefficient
// items first.
func (pr *problem) extremes(p recipe.Parameter) Range {
	return Range{
		Min: pr.fill(p, pr.items, false) / pr.mass,
		Max: pr.fill(p, pr.items, true) / pr.mass,
	}
}

// fill returns Σ g·c of the greedy allocation over items.
func (pr *problem) fill(p recipe.Parameter, items []item, highest bool) float64 {
	order := make([]item, len(items))
	copy(order, items)
	sortItems(order, p, highest)

	total := pr.fixed[p]
	free := pr.mass - pr.lockedMass
	for _, it := range order {
		total += it.lo * it.coeff[p]
		free -= it.lo
	}
	for _, it := range order {
		if free <= 0 {
			break
		}
		take := math.Min(it.hi-it.lo, free)
		total += take * it.coeff[p]
		free -= take
	}
	return total
}

// additionsFor returns the smallest greedy prefix of catalog ingredients
// that brings the target inside the achievable range.
func (pr *problem) additionsFor(p recipe.Parameter, target, tol float64) []item {
	var base []item
	var extras []item
	for _, it := range pr.items {
		if it.extra {
			extras = append(extras, it)
		} else {
			base = append(base, it)
		}
	}
	raise := target > pr.fill(p, base, true)/pr.mass
	sortItems(extras, p, raise)

	var chosen []item
	for _, it := range extras {
		if raise && it.coeff[p] <= 0 {
			break
		}
		chosen = append(chosen, it)
		candidate := append(append([]item{}, base...), chosen...)
		capacity := pr.lockedMass
		for _, c := range candidate {
			capacity += c.hi
		}
		if capacity < pr.mass-constants.MassTolerance {
			continue
		}
		r := Range{Min: pr.fill(p, candidate, false) / pr.mass, Max: pr.fill(p, candidate, true) / pr.mass}
		if r.contains(target, tol) {
			return chosen
		}
	}
	return chosen
}

func sortItems(items []item, p recipe.Parameter, highest bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if highest {
			return items[i].coeff[p] > items[j].coeff[p]
		}
		return items[i].coeff[p] < items[j].coeff[p]
	})
}

func formatValue(p recipe.Parameter, v float64) string {
	return fmt.Sprintf("%.2f%s", v, p.Unit())
}

func formatRange(p recipe.Parameter, r Range) string {
	return fmt.Sprintf("%.2f-%.2f%s", r.Min, r.Max, p.Unit())
}

var raiseHints = map[recipe.Parameter]string{
	recipe.ParamFat:         "cream or butter",
	recipe.ParamMSNF:        "skim milk powder",
	recipe.ParamTotalSolids: "milk powder, sugars or inulin",
	recipe.ParamTotalSugars: "sucrose or dextrose",
	recipe.ParamSP:          "sucrose or fructose",
	recipe.ParamPAC:         "dextrose or invert sugar",
}

func suggestion(p recipe.Parameter, target float64, r Range) string {
	if target > r.Max {
		hint := raiseHints[p]
		if hint == "" {
			hint = "a concentrated source"
		}
		return fmt.Sprintf("add a high-%s ingredient such as %s, or lower the %s target to at most %s",
			p.Label(), hint, p.Label(), formatValue(p, r.Max))
	}
	return fmt.Sprintf("add a low-%s ingredient such as water or fruit, or raise the %s target to at least %s",
		p.Label(), p.Label(), formatValue(p, r.Min))
}
