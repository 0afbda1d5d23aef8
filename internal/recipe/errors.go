package recipe

import "errors"

var (
	// ErrInvalidInput marks rows or ingredients the engine refuses to compute.
	ErrInvalidInput = errors.New("invalid recipe input")
	// ErrUnknownIngredient is returned when a row references an ingredient
	// missing from the catalog.
	ErrUnknownIngredient = errors.New("unknown ingredient")
	// ErrUnknownProduct is returned for product names outside the closed set.
	ErrUnknownProduct = errors.New("unknown product type")
	// ErrUnknownParameter is returned for parameter names outside the closed set.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrDuplicateIngredient is returned when a catalog holds the same ID twice.
	ErrDuplicateIngredient = errors.New("duplicate ingredient")
)
