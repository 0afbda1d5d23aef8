package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/config"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/constants"
	"github.com/iwvelando/recipe-science/pkg/output"
	"github.com/iwvelando/recipe-science/pkg/validation"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath   string
	OutputFormat string
	LogLevel     string
}

// NewRootCommand creates the root command for the recipe-science CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recipe-science",
		Short: "Frozen dessert recipe science engine",
		Long: `Compute the composition of gelato, ice cream and sorbet mixes, validate
them against per-product science bands, check whether targets are reachable
and rebalance ingredient quantities to hit them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.OutputFormat == "" {
				return nil
			}
			if err := validation.ValidateOutputFormat(opts.OutputFormat); err != nil {
				return WrapExitError(ExitCommandError, "invalid --output-format", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.OutputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(NewMetricsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFeasibilityCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// session is everything a command needs once configuration is loaded.
type session struct {
	conf    *config.Configuration
	logger  *zap.Logger
	catalog *recipe.Catalog
	printer *output.Printer
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// engineFor builds an engine over catalog with the configured bands.
func (s *session) engineFor(catalog *recipe.Catalog) (*engine.Engine, error) {
	bands, err := s.conf.BandSet()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid bands configuration", err)
	}
	return engine.New(s.logger, catalog, bands), nil
}

func loadConfiguration(opts *RootOptions) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to load configuration at %s", opts.ConfigPath), err)
	}
	return conf, nil
}

// openSession loads configuration, the logger, the catalog and a printer
// writing to w.
func openSession(opts *RootOptions, w io.Writer) (*session, error) {
	conf, err := loadConfiguration(opts)
	if err != nil {
		return nil, err
	}

	logger, err := initializeLogger(conf.Logging, opts.LogLevel)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}

	// CLI override takes precedence over config
	format := conf.Output.Format
	if opts.OutputFormat != "" {
		format = opts.OutputFormat
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	printer, err := output.NewPrinter(w, format)
	if err != nil {
		_ = logger.Sync()
		return nil, WrapExitError(ExitCommandError, "invalid output format", err)
	}

	catalog, err := conf.BuildCatalog()
	if err != nil {
		_ = logger.Sync()
		return nil, WrapExitError(ExitCommandError, "failed to load ingredient catalog", err)
	}

	logger.Debug("configuration loaded",
		zap.String("op", "main.openSession"),
		zap.String("config", opts.ConfigPath),
		zap.Int("ingredients", catalog.Len()),
		zap.String("outputFormat", format),
	)

	return &session{conf: conf, logger: logger, catalog: catalog, printer: printer}, nil
}

// loadRecipe reads a recipe file and resolves it against the session
// catalog. Targets given on the command line replace those of the file.
func (s *session) loadRecipe(path string, targetFlags map[string]string) (*config.Recipe, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "--recipe is required")
	}
	file, err := config.LoadRecipe(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load recipe", err)
	}
	r, err := file.Resolve(s.catalog, s.conf.Balancer.Options().Product)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to resolve recipe %s", path), err)
	}

	overrides, err := parseTargetFlags(targetFlags)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --target", err)
	}
	if len(overrides) > 0 {
		if r.Targets == nil {
			r.Targets = make(recipe.Targets, len(overrides))
		}
		for p, v := range overrides {
			r.Targets[p] = v
		}
	}

	if bands, err := s.conf.BandSet(); err == nil {
		if productBands, err := bands.For(r.Product); err == nil {
			rv := validation.RecipeValidator{
				Name:    r.Name,
				Product: r.Product,
				Rows:    r.Rows,
				Targets: r.Targets,
				Bands:   productBands,
			}
			for _, warning := range rv.ValidateAll() {
				s.logger.Warn("Recipe warning: "+warning,
					zap.String("op", "main.loadRecipe"),
				)
			}
		}
	}
	return r, nil
}

func parseTargetFlags(flags map[string]string) (recipe.Targets, error) {
	raw := make(map[string]float64, len(flags))
	for name, value := range flags {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: target %s=%q is not a number", recipe.ErrInvalidInput, name, value)
		}
		raw[name] = v
	}
	return recipe.ParseTargets(raw)
}
