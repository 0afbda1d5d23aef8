// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/internal/science"
)

// Configuration holds all configuration for recipe-science.
type Configuration struct {
	Logging  LoggingConfig                      `yaml:"logging,omitempty" mapstructure:"logging"`
	Output   OutputConfig                       `yaml:"output,omitempty" mapstructure:"output"`
	Balancer BalancerConfig                     `yaml:"balancer,omitempty" mapstructure:"balancer"`
	Bands    map[string]map[string]science.Band `yaml:"bands,omitempty" mapstructure:"bands"`
	Catalog  CatalogConfig                      `yaml:"catalog,omitempty" mapstructure:"catalog"`

	// path is the file the configuration was read from; relative catalog
	// files resolve against its directory.
	path string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// CatalogConfig lists ingredients inline and/or points at a catalog file.
type CatalogConfig struct {
	File        string              `yaml:"file,omitempty" mapstructure:"file"`
	Ingredients []recipe.Ingredient `yaml:"ingredients,omitempty" mapstructure:"ingredients"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("RECIPE_SCIENCE")
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.path = configPath

	configuration.Balancer.Normalize()
	if err := configuration.Balancer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid balancer configuration: %w", err)
	}
	if _, err := configuration.BandSet(); err != nil {
		return nil, fmt.Errorf("invalid bands configuration: %w", err)
	}

	return &configuration, nil
}

// BandSet returns the default bands with the configured overrides applied.
func (c *Configuration) BandSet() (science.BandSet, error) {
	bands := science.DefaultBands()
	if len(c.Bands) == 0 {
		return bands, nil
	}
	overrides, err := science.ParseBandSet(c.Bands)
	if err != nil {
		return nil, err
	}
	merged := bands.Merge(overrides)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// BuildCatalog assembles the ingredient catalog from the catalog file, when
// one is configured, followed by the inline ingredients.
func (c *Configuration) BuildCatalog() (*recipe.Catalog, error) {
	var ingredients []recipe.Ingredient
	if c.Catalog.File != "" {
		path := c.Catalog.File
		if !filepath.IsAbs(path) && c.path != "" {
			path = filepath.Join(filepath.Dir(c.path), path)
		}
		fromFile, err := LoadCatalogFile(path)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, fromFile...)
	}
	ingredients = append(ingredients, c.Catalog.Ingredients...)

	catalog, err := recipe.NewCatalog(ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to build ingredient catalog: %w", err)
	}
	return catalog, nil
}
