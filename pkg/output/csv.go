package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/feasibility"
	"github.com/iwvelando/recipe-science/internal/recipe"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// csvAnalysis writes one record per figure in long form:
// section, name, value, detail.
func csvAnalysis(w io.Writer, a engine.Analysis) error {
	m := a.Metrics
	records := [][]string{{"section", "name", "value", "detail"}}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"total_g", m.TotalGrams},
		{"ts_pct", m.TotalSolidsPct},
		{"water_pct", m.WaterPct},
		{"fat_pct", m.FatPct},
		{"msnf_pct", m.MSNFPct},
		{"protein_pct", m.ProteinPct},
		{"lactose_pct", m.LactosePct},
		{"total_sugars_pct", m.TotalSugarsPct},
		{"added_sugars_pct", m.AddedSugarsPct},
		{"sp", m.SP},
		{"pac", m.PAC},
		{"fpdt", m.FPDT},
		{"cost_total", m.CostTotal},
	} {
		records = append(records, []string{"composition", f.name, num(f.value), ""})
	}
	for _, r := range a.Validation.Results {
		records = append(records, []string{"validation", string(r.Parameter), num(r.Value), string(r.Severity)})
	}
	if len(a.Validation.Results) > 0 {
		records = append(records, []string{"score", "score", num(a.Validation.Score.Score), a.Validation.Score.Grade})
	}
	for _, warning := range m.Warnings {
		records = append(records, []string{"warning", "", "", warning})
	}
	return writeAll(w, records)
}

func csvFeasibility(w io.Writer, r feasibility.Report) error {
	records := [][]string{{"parameter", "target", "current_min", "current_max",
		"with_additions_min", "with_additions_max", "reachable", "needs_addition"}}
	for _, rng := range r.Ranges {
		record := []string{string(rng.Parameter), num(rng.Target)}
		record = append(record, rangeFields(rng.Current)...)
		record = append(record, rangeFields(rng.WithAdditions)...)
		record = append(record, strconv.FormatBool(rng.Reachable), strconv.FormatBool(rng.NeedsAddition))
		records = append(records, record)
	}
	return writeAll(w, records)
}

func rangeFields(r *feasibility.Range) []string {
	if r == nil {
		return []string{"", ""}
	}
	return []string{num(r.Min), num(r.Max)}
}

// csvBalance writes the balanced recipe rows.
func csvBalance(w io.Writer, r balancer.Result) error {
	records := [][]string{{"ingredient_id", "ingredient", "grams", "locked"}}
	for _, row := range r.Rows {
		records = append(records, []string{
			row.Ingredient.ID,
			row.Ingredient.Name,
			strconv.FormatFloat(row.Grams, 'f', 2, 64),
			strconv.FormatBool(row.Locked),
		})
	}
	return writeAll(w, records)
}

func csvCatalog(w io.Writer, ingredients []recipe.Ingredient) error {
	records := [][]string{{"id", "name", "category", "water_pct", "sugars_pct",
		"fat_pct", "msnf_pct", "other_solids_pct", "cost_per_kg"}}
	for _, ing := range ingredients {
		records = append(records, []string{
			ing.ID, ing.Name, ing.Category,
			num(ing.WaterPct), num(ing.SugarsPct), num(ing.FatPct),
			num(ing.MSNFPct), num(ing.OtherSolidsPct), num(ing.CostPerKg),
		})
	}
	return writeAll(w, records)
}
