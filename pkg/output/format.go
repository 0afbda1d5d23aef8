// Package output provides utilities for formatting and displaying engine
// results.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/feasibility"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/constants"
	"github.com/iwvelando/recipe-science/pkg/validation"
)

// Printer renders results in one output format.
type Printer struct {
	w      io.Writer
	format string
	p      *message.Printer
}

// NewPrinter returns a Printer writing to w. The format must be one of the
// supported output formats.
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	if err := validation.ValidateOutputFormat(format); err != nil {
		return nil, err
	}
	return &Printer{w: w, format: format, p: message.NewPrinter(language.English)}, nil
}

// Analysis renders the metrics and validation of a recipe.
func (pr *Printer) Analysis(a engine.Analysis) error {
	switch pr.format {
	case constants.OutputFormatPretty:
		return pr.prettyAnalysis(a)
	case constants.OutputFormatCSV:
		return csvAnalysis(pr.w, a)
	default:
		return pr.json(a)
	}
}

// Feasibility renders a feasibility report.
func (pr *Printer) Feasibility(r feasibility.Report) error {
	switch pr.format {
	case constants.OutputFormatPretty:
		return pr.prettyFeasibility(r)
	case constants.OutputFormatCSV:
		return csvFeasibility(pr.w, r)
	default:
		return pr.json(r)
	}
}

// Balance renders a balancing result.
func (pr *Printer) Balance(r balancer.Result) error {
	switch pr.format {
	case constants.OutputFormatPretty:
		return pr.prettyBalance(r)
	case constants.OutputFormatCSV:
		return csvBalance(pr.w, r)
	default:
		return pr.json(r)
	}
}

// Catalog renders a list of ingredients.
func (pr *Printer) Catalog(ingredients []recipe.Ingredient) error {
	switch pr.format {
	case constants.OutputFormatPretty:
		return pr.prettyCatalog(ingredients)
	case constants.OutputFormatCSV:
		return csvCatalog(pr.w, ingredients)
	default:
		if ingredients == nil {
			ingredients = []recipe.Ingredient{}
		}
		return pr.json(map[string][]recipe.Ingredient{"ingredients": ingredients})
	}
}

func (pr *Printer) json(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = pr.w.Write(data)
	return err
}
