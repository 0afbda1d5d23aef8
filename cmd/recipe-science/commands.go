package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/recipe"
)

// recipeOptions are the flags shared by commands that read a recipe file.
type recipeOptions struct {
	recipePath string
	targets    map[string]string
}

func (o *recipeOptions) bind(cmd *cobra.Command, withTargets bool) {
	cmd.Flags().StringVarP(&o.recipePath, "recipe", "r", "", "path to recipe file (required)")
	if withTargets {
		cmd.Flags().StringToStringVarP(&o.targets, "target", "t", nil, "target override, e.g. --target fat=8 (repeatable)")
	}
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &recipeOptions{}
	cmd := &cobra.Command{
		Use:           "metrics",
		Short:         "Compute the composition metrics of a recipe",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(rootOpts, opts, cmd, false)
		},
	}
	opts.bind(cmd, false)
	return cmd
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &recipeOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a recipe against the science bands of its product",
		Long: `Compute the composition of a recipe and grade each tracked parameter
against the optimal and acceptable bands of the product, with a quality score
and recommendations.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(rootOpts, opts, cmd, true)
		},
	}
	opts.bind(cmd, false)
	return cmd
}

func runAnalysis(rootOpts *RootOptions, opts *recipeOptions, cmd *cobra.Command, validate bool) error {
	s, err := openSession(rootOpts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.close()

	r, err := s.loadRecipe(opts.recipePath, nil)
	if err != nil {
		return err
	}
	eng, err := s.engineFor(r.Catalog)
	if err != nil {
		return err
	}

	analysis := engine.Analysis{Product: r.Product}
	if validate {
		analysis, err = eng.Analyze(r.Rows, r.Product)
	} else {
		analysis.Metrics, err = eng.ComputeMetrics(r.Rows, r.Product)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to analyze recipe", err)
	}
	return s.printer.Analysis(analysis)
}

// NewFeasibilityCommand creates the feasibility command.
func NewFeasibilityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &recipeOptions{}
	cmd := &cobra.Command{
		Use:   "feasibility",
		Short: "Check whether the targets of a recipe are reachable",
		Long: `Compute the range each targeted parameter can reach by moving the
unlocked ingredients within their bounds and with catalog additions.
Exits with status 1 when a target cannot be reached.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.close()

			r, err := s.loadRecipe(opts.recipePath, opts.targets)
			if err != nil {
				return err
			}
			if len(r.Targets) == 0 {
				return NewExitError(ExitCommandError, "at least one target is required")
			}
			eng, err := s.engineFor(r.Catalog)
			if err != nil {
				return err
			}

			feasibilityOpts := engine.FeasibilityOptions(s.conf.Balancer.Options())
			report, err := eng.CheckFeasibility(r.Rows, r.Targets, feasibilityOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to check feasibility", err)
			}
			if err := s.printer.Feasibility(report); err != nil {
				return err
			}
			if !report.Feasible {
				return NewExitError(ExitFailure, "targets are not reachable")
			}
			return nil
		},
	}
	opts.bind(cmd, true)
	return cmd
}

// balanceFlags are the balancer settings that can be overridden per run.
type balanceFlags struct {
	lp             bool
	allowAdditions bool
	tolerance      float64
	maxIterations  int
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &recipeOptions{}
	flags := &balanceFlags{}
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Rebalance ingredient quantities to hit the recipe targets",
		Long: `Adjust the unlocked ingredient quantities of a recipe so its composition
meets the targets, keeping the batch mass. Uses the linear programming solver
and falls back to the iterative heuristic. Exits with status 1 when the
targets are not met within tolerance.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(rootOpts, opts, flags, cmd)
		},
	}
	opts.bind(cmd, true)
	cmd.Flags().BoolVar(&flags.lp, "lp", true, "use the linear programming solver before the heuristic")
	cmd.Flags().BoolVar(&flags.allowAdditions, "allow-additions", false, "allow adding catalog ingredients that are not in the recipe")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "accepted deviation per target, in parameter units")
	cmd.Flags().IntVar(&flags.maxIterations, "max-iterations", 0, "heuristic iteration limit")
	return cmd
}

func runBalance(rootOpts *RootOptions, opts *recipeOptions, flags *balanceFlags, cmd *cobra.Command) error {
	s, err := openSession(rootOpts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.close()

	r, err := s.loadRecipe(opts.recipePath, opts.targets)
	if err != nil {
		return err
	}
	eng, err := s.engineFor(r.Catalog)
	if err != nil {
		return err
	}

	// Configured defaults, then recipe product, then flags.
	balancerOpts := s.conf.Balancer.Options()
	balancerOpts.Product = r.Product
	if cmd.Flags().Changed("lp") {
		balancerOpts.UseLPSolver = flags.lp
	}
	if cmd.Flags().Changed("allow-additions") {
		balancerOpts.AllowAdditions = flags.allowAdditions
	}
	if flags.tolerance > 0 {
		balancerOpts.Tolerance = flags.tolerance
	}
	if flags.maxIterations > 0 {
		balancerOpts.MaxIterations = flags.maxIterations
	}

	result, err := eng.Balance(r.Rows, r.Targets, balancerOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to balance recipe", err)
	}
	s.logger.Info("balanced recipe",
		zap.String("op", "main.runBalance"),
		zap.String("recipe", r.Name),
		zap.String("strategy", string(result.Strategy)),
		zap.Bool("success", result.Success),
		zap.Float64("maxDeviation", result.Diagnostics.MaxDeviation),
	)
	if err := s.printer.Balance(result); err != nil {
		return err
	}
	if !result.Success {
		msg := "targets not met within tolerance"
		if result.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, result.Message)
		}
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "List the configured ingredient catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.close()
			return s.printer.Catalog(filterCategory(s.catalog.All(), category))
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list ingredients of this category")
	return cmd
}

func filterCategory(ingredients []recipe.Ingredient, category string) []recipe.Ingredient {
	category = strings.TrimSpace(category)
	if category == "" {
		return ingredients
	}
	filtered := make([]recipe.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if strings.EqualFold(ing.Category, category) {
			filtered = append(filtered, ing)
		}
	}
	return filtered
}
