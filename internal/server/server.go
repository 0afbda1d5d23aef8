// Package server exposes the recipe science engine as a synchronous JSON RPC
// surface over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iwvelando/recipe-science/internal/balancer"
	"github.com/iwvelando/recipe-science/internal/composition"
	"github.com/iwvelando/recipe-science/internal/engine"
	"github.com/iwvelando/recipe-science/internal/recipe"
	"github.com/iwvelando/recipe-science/pkg/constants"
)

// HandlerOptions configure NewHandler. Zero values take the defaults.
type HandlerOptions struct {
	MaxUploadSize int64
	Version       string
	RateLimit     float64
	Burst         int
	// Defaults are the balancer options a request's own options overlay.
	Defaults balancer.Options
	Metrics  *Metrics
}

type handler struct {
	logger        *zap.Logger
	engine        *engine.Engine
	maxUploadSize int64
	version       string
	defaults      balancer.Options
	metrics       *Metrics
}

// NewHandler constructs the HTTP handler serving the RPC endpoints and the
// Prometheus metrics.
func NewHandler(logger *zap.Logger, eng *engine.Engine, opts HandlerOptions) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		eng = engine.New(logger, nil, nil)
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = constants.DefaultRateLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = constants.DefaultRateBurst
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Defaults == (balancer.Options{}) {
		opts.Defaults = balancer.DefaultOptions()
	}
	opts.Defaults.Normalize()

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:        logger,
		engine:        eng,
		maxUploadSize: opts.MaxUploadSize,
		version:       version,
		defaults:      opts.Defaults,
		metrics:       opts.Metrics,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", opts.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)))

		r.Post("/metrics", h.instrument("metrics", h.handleMetrics))
		r.Post("/validate", h.instrument("validate", h.handleValidate))
		r.Post("/feasibility", h.instrument("feasibility", h.handleFeasibility))
		r.Post("/balance", h.instrument("balance", h.handleBalance))
		r.Get("/catalog", h.instrument("catalog", h.handleCatalog))
		r.Get("/version", h.instrument("version", h.handleVersion))
	})

	return r
}

// recipeRequest is the body shared by every recipe endpoint. Rows name
// catalog ingredients; Ingredients extend the catalog for this request.
type recipeRequest struct {
	Product     string              `json:"product"`
	Rows        []recipe.RowRef     `json:"rows"`
	Ingredients []recipe.Ingredient `json:"ingredients,omitempty"`
	Targets     map[string]float64  `json:"targets,omitempty"`
	Options     json.RawMessage     `json:"options,omitempty"`
}

// resolvedRequest is a recipe request bound to an engine.
type resolvedRequest struct {
	engine  *engine.Engine
	product recipe.Product
	rows    []recipe.RecipeRow
	targets recipe.Targets
	options balancer.Options
}

type metricsResponse struct {
	Product recipe.Product      `json:"product"`
	Metrics composition.Metrics `json:"metrics"`
}

type catalogResponse struct {
	Ingredients []recipe.Ingredient `json:"ingredients"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMetrics"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	m, err := req.engine.ComputeMetrics(req.rows, req.product)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, metricsResponse{Product: req.product, Metrics: m})
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleValidate"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	analysis, err := req.engine.Analyze(req.rows, req.product)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *handler) handleFeasibility(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFeasibility"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	if len(req.targets) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "at least one target is required", op)
		return
	}
	report, err := req.engine.CheckFeasibility(req.rows, req.targets, engine.FeasibilityOptions(req.options))
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBalance"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	result, err := req.engine.Balance(req.rows, req.targets, req.options)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.metrics.strategies.WithLabelValues(string(result.Strategy), strconv.FormatBool(result.Success)).Inc()
	h.logger.Info("balanced recipe",
		zap.String("op", op),
		zap.String("product", string(req.product)),
		zap.String("strategy", string(result.Strategy)),
		zap.Bool("success", result.Success),
		zap.Float64("maxDeviation", result.Diagnostics.MaxDeviation),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ingredients := h.engine.Catalog().All()
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filtered := make([]recipe.Ingredient, 0, len(ingredients))
		for _, ing := range ingredients {
			if strings.EqualFold(ing.Category, category) {
				filtered = append(filtered, ing)
			}
		}
		ingredients = filtered
	}
	if ingredients == nil {
		ingredients = []recipe.Ingredient{}
	}
	h.writeJSON(w, http.StatusOK, catalogResponse{Ingredients: ingredients})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a recipe request and resolves it against the catalog. On
// failure the error response has been written and ok is false.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, op string) (resolvedRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var body recipeRequest
	if err := dec.Decode(&body); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
		case errors.Is(err, io.EOF):
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		default:
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		}
		return resolvedRequest{}, false
	}

	resolved, err := h.resolve(body)
	if err != nil {
		h.respondEngineError(w, err, op)
		return resolvedRequest{}, false
	}
	return resolved, true
}

func (h *handler) resolve(body recipeRequest) (resolvedRequest, error) {
	opts := h.defaults
	if len(body.Options) > 0 {
		if err := json.Unmarshal(body.Options, &opts); err != nil {
			return resolvedRequest{}, fmt.Errorf("%w: options: %v", recipe.ErrInvalidInput, err)
		}
	}
	if body.Product != "" {
		product, err := recipe.ParseProduct(body.Product)
		if err != nil {
			return resolvedRequest{}, err
		}
		opts.Product = product
	}
	opts.Normalize()
	if !opts.Product.Valid() {
		return resolvedRequest{}, fmt.Errorf("%w: %q", recipe.ErrUnknownProduct, opts.Product)
	}
	if err := opts.Validate(); err != nil {
		return resolvedRequest{}, fmt.Errorf("%w: options: %w", recipe.ErrInvalidInput, err)
	}

	eng := h.engine
	if len(body.Ingredients) > 0 {
		catalog, err := recipe.NewCatalog(append(eng.Catalog().All(), body.Ingredients...))
		if err != nil {
			return resolvedRequest{}, err
		}
		eng = engine.New(h.logger, catalog, eng.Bands())
	}

	rows, err := eng.Catalog().Resolve(body.Rows)
	if err != nil {
		return resolvedRequest{}, err
	}
	targets, err := recipe.ParseTargets(body.Targets)
	if err != nil {
		return resolvedRequest{}, err
	}

	return resolvedRequest{
		engine:  eng,
		product: opts.Product,
		rows:    rows,
		targets: targets,
		options: opts,
	}, nil
}

// statusFor maps engine errors onto HTTP status codes: bad input is the
// caller's fault, anything else is ours.
func statusFor(err error) int {
	for _, target := range []error{
		recipe.ErrInvalidInput,
		recipe.ErrUnknownIngredient,
		recipe.ErrUnknownProduct,
		recipe.ErrUnknownParameter,
		recipe.ErrDuplicateIngredient,
	} {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (h *handler) respondEngineError(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("recipe request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
