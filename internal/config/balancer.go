package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/constants"
)

// BalancerConfig defines the default options of a balancing run. Switches
// are pointers so that an omitted key keeps its default of true.
type BalancerConfig struct {
	Product                 string   `yaml:"product,omitempty" mapstructure:"product"`
	UseLPSolver             *bool    `yaml:"useLPSolver,omitempty" mapstructure:"useLPSolver"`
	EnableFeasibilityCheck  *bool    `yaml:"enableFeasibilityCheck,omitempty" mapstructure:"enableFeasibilityCheck"`
	EnableScienceValidation *bool    `yaml:"enableScienceValidation,omitempty" mapstructure:"enableScienceValidation"`
	AllowAdditions          bool     `yaml:"allowAdditions,omitempty" mapstructure:"allowAdditions"`
	Tolerance               float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	AdditionCap             float64  `yaml:"additionCap,omitempty" mapstructure:"additionCap"`
	BoundMultiplier         float64  `yaml:"boundMultiplier,omitempty" mapstructure:"boundMultiplier"`
	MaxIterations           int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
	InnerPasses             int      `yaml:"innerPasses,omitempty" mapstructure:"innerPasses"`
}

func boolPtr(value bool) *bool {
	return &value
}

// Normalize ensures defaults and canonical values are applied before validation.
func (b *BalancerConfig) Normalize() {
	if b == nil {
		return
	}
	b.Product = strings.TrimSpace(b.Product)
	if b.Product == "" {
		b.Product = string(recipe.ProductGelato)
	} else if p, err := recipe.ParseProduct(b.Product); err == nil {
		b.Product = string(p)
	}

	if b.UseLPSolver == nil {
		b.UseLPSolver = boolPtr(true)
	}
	if b.EnableFeasibilityCheck == nil {
		b.EnableFeasibilityCheck = boolPtr(true)
	}
	if b.EnableScienceValidation == nil {
		b.EnableScienceValidation = boolPtr(true)
	}
	if b.Tolerance <= 0 {
		b.Tolerance = constants.DefaultTolerance
	}
	if b.AdditionCap <= 0 {
		b.AdditionCap = constants.DefaultAdditionCap
	}
	if b.BoundMultiplier <= 0 {
		b.BoundMultiplier = constants.DefaultBoundMultiplier
	}
	if b.MaxIterations <= 0 {
		b.MaxIterations = constants.DefaultMaxIterations
	}
	if b.InnerPasses <= 0 {
		b.InnerPasses = constants.DefaultInnerPasses
	}
}

// Validate returns an error when the balancer configuration is unsupported.
func (b *BalancerConfig) Validate() error {
	if b == nil {
		return fmt.Errorf("balancer configuration cannot be nil")
	}

	b.Normalize()

	if _, err := recipe.ParseProduct(b.Product); err != nil {
		return fmt.Errorf("balancer product: %w", err)
	}
	if b.AdditionCap > 1 {
		return fmt.Errorf("balancer additionCap %.2f must not exceed 1", b.AdditionCap)
	}
	if b.BoundMultiplier < 1 {
		return fmt.Errorf("balancer boundMultiplier %.2f must be at least 1", b.BoundMultiplier)
	}
	if b.MaxIterations > constants.MaxIterationsLimit {
		return fmt.Errorf("balancer maxIterations %d exceeds the limit of %d", b.MaxIterations, constants.MaxIterationsLimit)
	}
	if b.InnerPasses > constants.MaxInnerPassesLimit {
		return fmt.Errorf("balancer innerPasses %d exceeds the limit of %d", b.InnerPasses, constants.MaxInnerPassesLimit)
	}
	return nil
}

// Options converts the configuration into balancer options.
func (b BalancerConfig) Options() balancer.Options {
	b.Normalize()
	return balancer.Options{
		Product:                 recipe.Product(b.Product),
		UseLPSolver:             *b.UseLPSolver,
		EnableFeasibilityCheck:  *b.EnableFeasibilityCheck,
		EnableScienceValidation: *b.EnableScienceValidation,
		AllowAdditions:          b.AllowAdditions,
		Tolerance:               b.Tolerance,
		AdditionCap:             b.AdditionCap,
		BoundMultiplier:         b.BoundMultiplier,
		MaxIterations:           b.MaxIterations,
		InnerPasses:             b.InnerPasses,
	}
}
