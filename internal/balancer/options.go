package balancer

import (
	"errors"
	"fmt"

	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/constants"
)

// Options control a balancing run.
type Options struct {
	Product                 recipe.Product `json:"product" yaml:"product" mapstructure:"product"`
	UseLPSolver             bool           `json:"use_lp_solver" yaml:"useLPSolver" mapstructure:"useLPSolver"`
	EnableFeasibilityCheck  bool           `json:"enable_feasibility_check" yaml:"enableFeasibilityCheck" mapstructure:"enableFeasibilityCheck"`
	EnableScienceValidation bool           `json:"enable_science_validation" yaml:"enableScienceValidation" mapstructure:"enableScienceValidation"`
	AllowAdditions          bool           `json:"allow_additions" yaml:"allowAdditions" mapstructure:"allowAdditions"`
	// Tolerance is the largest deviation from a target, in the target's own
	// unit, that still counts as reached.
	Tolerance float64 `json:"tolerance" yaml:"tolerance" mapstructure:"tolerance"`
	// AdditionCap bounds an ingredient added from the catalog to this share
	// of the batch mass.
	AdditionCap float64 `json:"addition_cap" yaml:"additionCap" mapstructure:"additionCap"`
	// BoundMultiplier sets the default upper bound of an unbounded row as a
	// multiple of its current grams.
	BoundMultiplier float64 `json:"bound_multiplier" yaml:"boundMultiplier" mapstructure:"boundMultiplier"`
	MaxIterations   int     `json:"max_iterations" yaml:"maxIterations" mapstructure:"maxIterations"`
	InnerPasses     int     `json:"inner_passes" yaml:"innerPasses" mapstructure:"innerPasses"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Product:                 recipe.ProductGelato,
		UseLPSolver:             true,
		EnableFeasibilityCheck:  true,
		EnableScienceValidation: true,
		Tolerance:               constants.DefaultTolerance,
		AdditionCap:             constants.DefaultAdditionCap,
		BoundMultiplier:         constants.DefaultBoundMultiplier,
		MaxIterations:           constants.DefaultMaxIterations,
		InnerPasses:             constants.DefaultInnerPasses,
	}
}

// Normalize fills unset numeric fields with their defaults. Switches are
// left alone since false is a meaningful choice.
func (o *Options) Normalize() {
	if o == nil {
		return
	}
	if o.Product == "" {
		o.Product = recipe.ProductGelato
	}
	if o.Tolerance == 0 {
		o.Tolerance = constants.DefaultTolerance
	}
	if o.AdditionCap == 0 {
		o.AdditionCap = constants.DefaultAdditionCap
	}
	if o.BoundMultiplier == 0 {
		o.BoundMultiplier = constants.DefaultBoundMultiplier
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = constants.DefaultMaxIterations
	}
	if o.InnerPasses == 0 {
		o.InnerPasses = constants.DefaultInnerPasses
	}
}

// Validate ensures the options are coherent.
func (o Options) Validate() error {
	var errs []error
	if !o.Product.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", recipe.ErrUnknownProduct, o.Product))
	}
	if o.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %v", o.Tolerance))
	}
	if o.AdditionCap <= 0 || o.AdditionCap > 1 {
		errs = append(errs, fmt.Errorf("additionCap must be within (0, 1], got %v", o.AdditionCap))
	}
	if o.BoundMultiplier < 1 {
		errs = append(errs, fmt.Errorf("boundMultiplier must be at least 1, got %v", o.BoundMultiplier))
	}
	if o.MaxIterations < 1 || o.MaxIterations > constants.MaxIterationsLimit {
		errs = append(errs, fmt.Errorf("maxIterations must be within [1, %d], got %d", constants.MaxIterationsLimit, o.MaxIterations))
	}
	if o.InnerPasses < 1 || o.InnerPasses > constants.MaxInnerPassesLimit {
		errs = append(errs, fmt.Errorf("innerPasses must be within [1, %d], got %d", constants.MaxInnerPassesLimit, o.InnerPasses))
	}
	return errors.Join(errs...)
}
