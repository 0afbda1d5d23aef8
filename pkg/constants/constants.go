// Package constants provides shared constants for the recipe-science application.
package constants

// Composition constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for gram rounding (2 decimal places)
	DecimalPrecision = 100

	// CompositionSumTolerance is how far an ingredient's composition may drift
	// from 100% before it is rejected.
	CompositionSumTolerance = 0.5

	// IdentityTolerance is the allowed drift of total solids plus water from
	// 100% before the calculator warns.
	IdentityTolerance = 0.5

	// SugarSplitTolerance is how far a sugar split may drift from 1.0.
	SugarSplitTolerance = 0.01

	// MassTolerance is the largest batch mass drift, in grams, a successful
	// balance may introduce.
	MassTolerance = 1.0
)

// Balancer defaults
const (
	// DefaultTolerance is the default allowed deviation from a target, in
	// percentage points.
	DefaultTolerance = 0.5

	// DefaultMaxIterations is the heuristic outer iteration budget.
	DefaultMaxIterations = 150

	// DefaultInnerPasses is the number of parameter sweeps per heuristic iteration.
	DefaultInnerPasses = 2

	// MaxIterationsLimit caps the heuristic iteration budget a caller may ask for.
	MaxIterationsLimit = 5000

	// MaxInnerPassesLimit caps the parameter sweeps per heuristic iteration.
	MaxInnerPassesLimit = 10

	// DefaultBoundMultiplier sets the default upper bound of an unlocked row
	// as a multiple of its original grams.
	DefaultBoundMultiplier = 2.0

	// DefaultAdditionCap is the largest share of the batch a single catalog
	// ingredient added by the balancer may take.
	DefaultAdditionCap = 0.3
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the RPC surface
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimit is the default sustained request rate per second
	DefaultRateLimit = 50.0

	// DefaultRateBurst is the default request burst size
	DefaultRateBurst = 100
)
