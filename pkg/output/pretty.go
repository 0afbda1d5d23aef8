package output

import (
	"strings"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/feasibility"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
)

// writer collects the first error of a run of prints.
type writer struct {
	pr  *Printer
	err error
}

func (w *writer) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = w.pr.p.Fprintf(w.pr.w, format, args...)
}

func (w *writer) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	w.printf("%s:\n", title)
	for _, item := range items {
		w.printf("- %s\n", item)
	}
}

func (pr *Printer) value(param recipe.Parameter, v float64) string {
	switch unit := param.Unit(); unit {
	case "":
		return pr.p.Sprintf("%.2f", v)
	case "%":
		return pr.p.Sprintf("%.2f%%", v)
	default:
		return pr.p.Sprintf("%.2f %s", v, unit)
	}
}

func (pr *Printer) span(param recipe.Parameter, lo, hi float64) string {
	return pr.p.Sprintf("%.2f-", lo) + pr.value(param, hi)
}

func (pr *Printer) signed(v float64) string {
	if v < 0 {
		return pr.p.Sprintf("%.2f", v)
	}
	return pr.p.Sprintf("+%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (pr *Printer) prettyAnalysis(a engine.Analysis) error {
	m := a.Metrics
	w := &writer{pr: pr}
	w.printf("--- %s analysis ---\n", a.Product.Label())
	w.printf("Batch: %.2f g\n", m.TotalGrams)
	w.printf("Metric | Value\n")
	w.printf("______ | _____\n")
	w.printf("Total solids | %.2f%%\n", m.TotalSolidsPct)
	w.printf("Water | %.2f%%\n", m.WaterPct)
	w.printf("Fat | %.2f%%\n", m.FatPct)
	w.printf("MSNF | %.2f%%\n", m.MSNFPct)
	w.printf("Protein | %.2f%%\n", m.ProteinPct)
	w.printf("Lactose | %.2f%%\n", m.LactosePct)
	w.printf("Total sugars | %.2f%%\n", m.TotalSugarsPct)
	w.printf("Added sugars | %.2f%%\n", m.AddedSugarsPct)
	w.printf("SP | %.2f\n", m.SP)
	w.printf("PAC | %.2f\n", m.PAC)
	w.printf("FPDT | %.2f °C\n", m.FPDT)
	w.printf("Cost | %.2f (%.2f per kg)\n", m.CostTotal, m.CostPerKg)

	if len(a.Validation.Results) > 0 {
		w.printf("\nParameter | Value | Optimal | Acceptable | Severity\n")
		w.printf("_________ | _____ | _______ | __________ | ________\n")
		var recommendations []string
		for _, r := range a.Validation.Results {
			w.printf("%s | %s | %s | %s | %s\n",
				r.Parameter.Label(),
				pr.value(r.Parameter, r.Value),
				pr.span(r.Parameter, r.Optimal.Min, r.Optimal.Max),
				pr.span(r.Parameter, r.Acceptable.Min, r.Acceptable.Max),
				r.Severity)
			if r.Recommendation != "" {
				recommendations = append(recommendations, r.Recommendation)
			}
		}
		w.printf("Score: %.2f (grade %s)\n", a.Validation.Score.Score, a.Validation.Score.Grade)
		w.list("Recommendations", recommendations)
	}
	w.list("Warnings", m.Warnings)
	return w.err
}

func (pr *Printer) prettyFeasibility(r feasibility.Report) error {
	w := &writer{pr: pr}
	w.printf("--- Feasibility ---\n")
	w.printf("Batch: %.2f g\n", r.BatchGrams)
	w.printf("Feasible: %s\n", yesNo(r.Feasible))
	if r.Reason != "" {
		w.printf("Reason: %s\n", r.Reason)
	}
	if len(r.Ranges) > 0 {
		w.printf("Parameter | Target | Current range | With additions | Reachable\n")
		w.printf("_________ | ______ | _____________ | ______________ | _________\n")
		for _, rng := range r.Ranges {
			w.printf("%s | %s | %s | %s | %s\n",
				rng.Parameter.Label(),
				pr.value(rng.Parameter, rng.Target),
				pr.optionalRange(rng.Parameter, rng.Current),
				pr.optionalRange(rng.Parameter, rng.WithAdditions),
				yesNo(rng.Reachable))
		}
	}
	if len(r.Additions) > 0 {
		additions := make([]string, 0, len(r.Additions))
		for _, a := range r.Additions {
			params := make([]string, 0, len(a.Parameters))
			for _, p := range a.Parameters {
				params = append(params, p.Label())
			}
			additions = append(additions, pr.p.Sprintf("%s (up to %.2f g) for %s",
				a.Ingredient.Name, a.MaxGrams, strings.Join(params, ", ")))
		}
		w.list("Additions", additions)
	}
	w.list("Suggestions", r.Suggestions)
	return w.err
}

func (pr *Printer) optionalRange(param recipe.Parameter, r *feasibility.Range) string {
	if r == nil {
		return "n/a"
	}
	return pr.span(param, r.Min, r.Max)
}

func (pr *Printer) prettyBalance(r balancer.Result) error {
	w := &writer{pr: pr}
	w.printf("--- Balance (%s) ---\n", r.Strategy)
	w.printf("Success: %s\n", yesNo(r.Success))
	if r.Message != "" {
		w.printf("Message: %s\n", r.Message)
	}

	w.printf("Ingredient | Grams | Locked\n")
	w.printf("__________ | _____ | ______\n")
	for _, row := range r.Rows {
		w.printf("%s | %.2f | %s\n", row.Ingredient.Name, row.Grams, yesNo(row.Locked))
	}

	if len(r.Deviations) > 0 {
		w.printf("\nTarget | Wanted | Achieved | Deviation\n")
		w.printf("______ | ______ | ________ | _________\n")
		for _, d := range r.Deviations {
			w.printf("%s | %.2f | %.2f | %s\n", d.Parameter, d.Target, d.Achieved, pr.signed(d.Deviation))
		}
	}

	if len(r.Adjustments) > 0 {
		w.printf("\nAdjustment | Action | Original | Balanced | Change | Priority\n")
		w.printf("__________ | ______ | ________ | ________ | ______ | ________\n")
		for _, a := range r.Adjustments {
			w.printf("%s | %s | %.2f | %.2f | %s | %s\n",
				a.Ingredient, a.Action, a.Original, a.Value, pr.signed(a.Delta), a.Priority)
		}
	}

	d := r.Diagnostics
	w.printf("Diagnostics: %d iterations, converged %s, max deviation %.2f\n",
		d.Iterations, yesNo(d.Converged), d.MaxDeviation)
	w.list("Notes", d.Notes)
	if r.Score != nil {
		w.printf("Score: %.2f (grade %s)\n", r.Score.Score, r.Score.Grade)
	}
	w.list("Recommendations", recommendationsOf(r.Validation))
	w.list("Warnings", r.Metrics.Warnings)
	return w.err
}

func recommendationsOf(results []science.Result) []string {
	var out []string
	for _, r := range results {
		if r.Recommendation != "" {
			out = append(out, r.Recommendation)
		}
	}
	return out
}

func (pr *Printer) prettyCatalog(ingredients []recipe.Ingredient) error {
	w := &writer{pr: pr}
	w.printf("Ingredient | Category | Water | Sugars | Fat | MSNF | Other solids | Cost per kg\n")
	w.printf("__________ | ________ | _____ | ______ | ___ | ____ | ____________ | ___________\n")
	for _, ing := range ingredients {
		category := ing.Category
		if category == "" {
			category = "-"
		}
		w.printf("%s | %s | %.2f%% | %.2f%% | %.2f%% | %.2f%% | %.2f%% | %.2f\n",
			ing.Name, category, ing.WaterPct, ing.SugarsPct, ing.FatPct, ing.MSNFPct, ing.OtherSolidsPct, ing.CostPerKg)
	}
	return w.err
}
