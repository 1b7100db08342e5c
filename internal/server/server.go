// Package server exposes the projection engine over a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/iwvelando/etf-forecast/internal/config"
	"github.com/iwvelando/etf-forecast/internal/forecast"
	"github.com/iwvelando/etf-forecast/internal/optimizer"
	"github.com/iwvelando/etf-forecast/internal/sweep"
	"github.com/iwvelando/etf-forecast/pkg/constants"
	"github.com/iwvelando/etf-forecast/pkg/mathutil"
	"github.com/iwvelando/etf-forecast/pkg/output"
	"github.com/iwvelando/etf-forecast/pkg/projection"
	"github.com/iwvelando/etf-forecast/pkg/withdrawal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(h.handleNotFound)
	router.MethodNotAllowedHandler = h.methodNotAllowed()

	api := router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = router.NotFoundHandler
	api.MethodNotAllowedHandler = router.MethodNotAllowedHandler

	// Single projection from JSON parameters
	h.route(api, "/projection", http.MethodPost, h.handleProjection)

	// Full scenario forecast from an uploaded YAML configuration
	h.route(api, "/forecast", http.MethodPost, h.handleForecast)

	// Sensitivity sweep over return and inflation rates
	h.route(api, "/sweep", http.MethodPost, h.handleSweep)

	// Version endpoint for client metadata
	h.route(api, "/version", http.MethodGet, h.handleVersion)

	return requestIDMiddleware(logger)(router)
}

// route registers fn for method on path, plus a catch-all on the same path
// that answers 405 so a wrong method never falls through to 404.
func (h *handler) route(r *mux.Router, path, method string, fn http.HandlerFunc) {
	r.HandleFunc(path, fn).Methods(method)
	r.Handle(path, h.methodNotAllowed(method))
}

func (h *handler) methodNotAllowed(allowed ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error": fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
		})
	})
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, map[string]string{
		"error": fmt.Sprintf("no route for %s", r.URL.Path),
	})
}

// NewServer wires the handler into an http.Server using the server config.
func NewServer(logger *zap.Logger, cfg *Config, version string) *http.Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           NewHandler(logger, cfg.UploadSizeBytes(), version),
		ReadTimeout:       cfg.ReadTimeoutDuration(),
		ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
	}
}

type projectionResponse struct {
	Config     projection.Config         `json:"config"`
	Snapshots  []projection.YearSnapshot `json:"snapshots"`
	Withdrawal *withdrawal.Estimate      `json:"withdrawal,omitempty"`
	Duration   string                    `json:"duration"`
}

type forecastResponse struct {
	Scenarios  []forecast.Forecast `json:"scenarios"`
	CSV        string              `json:"csv"`
	Warnings   []string            `json:"warnings,omitempty"`
	Duration   string              `json:"duration"`
	ConfigYAML string              `json:"configYaml,omitempty"`
}

type sweepRequest struct {
	Parameters     config.Parameters `json:"parameters"`
	ReturnRates    []float64         `json:"returnRates"`
	InflationRates []float64         `json:"inflationRates"`
	Workers        int               `json:"workers,omitempty"`
}

type sweepResponse struct {
	Points   []sweep.Point `json:"points"`
	Duration string        `json:"duration"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	start := time.Now()
	var params config.Parameters
	if err := h.decodeJSON(w, r, &params); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode parameters: %v", err), op)
		return
	}

	result, err := forecast.Project("request", params)
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.Int("years", len(result.Snapshots)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, projectionResponse{
		Config:     result.Config,
		Snapshots:  result.Snapshots,
		Withdrawal: result.Metrics.Withdrawal,
		Duration:   elapsed.String(),
	})
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if coerceBool(r.URL.Query().Get("optimize")) {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
			return
		}
		optimizationResult, err = runner.Run()
		if err != nil {
			h.respondErrorWithOp(w, statusForError(err), fmt.Sprintf("optimizer execution failed: %v", err), op)
			return
		}
	}

	results, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}
	if optimizationResult != nil && !optimizationResult.Empty() {
		optimizationResult.Apply(results)
	}

	configYAML, err := yaml.Marshal(cfg)
	if err != nil {
		h.logger.Warn("failed to marshal configuration",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, forecastResponse{
		Scenarios:  results,
		CSV:        output.CsvString(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configYAML),
	})
}

func (h *handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSweep"
	start := time.Now()
	var req sweepRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode sweep request: %v", err), op)
		return
	}

	base, err := req.Parameters.ProjectionConfig()
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), err.Error(), op)
		return
	}

	points, err := sweep.Run(r.Context(), h.logger, base, sweep.Grid{
		ReturnRates:    percentsToDecimals(req.ReturnRates),
		InflationRates: percentsToDecimals(req.InflationRates),
		Workers:        req.Workers,
	})
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, sweepResponse{Points: points, Duration: time.Since(start).String()})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// statusForError maps engine validation failures to 400 and everything else
// to 500.
func statusForError(err error) int {
	var invalid *projection.InvalidConfigError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func percentsToDecimals(percents []float64) []float64 {
	if len(percents) == 0 {
		return nil
	}
	rates := make([]float64, len(percents))
	for i, p := range percents {
		rates[i] = mathutil.PercentToDecimal(p)
	}
	return rates
}

func coerceBool(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	parsed, err := strconv.ParseBool(trimmed)
	return err == nil && parsed
}
