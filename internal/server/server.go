// Package server exposes the estimator over HTTP. Each request builds its
// own session, so nothing is shared between callers.
package server

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/summary"
)

const maxBodySize = 64 << 10

// EstimateResponse is returned by POST /estimate.
type EstimateResponse struct {
	calculator.Snapshot
	Summary string `json:"summary"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Handler serves the estimate API.
type Handler struct {
	base calculator.Scenario
	log  zerolog.Logger
}

// NewHandler creates a handler whose requests start from base. Fields a
// request omits keep base's values.
func NewHandler(base calculator.Scenario, log zerolog.Logger) *Handler {
	return &Handler{base: base, log: log}
}

// Handle routes a request.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		if !ctx.IsGet() && !ctx.IsHead() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case "/estimate":
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleEstimate(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (h *Handler) handleEstimate(ctx *fasthttp.RequestCtx) {
	sc := h.base
	// Lists in the body replace the defaults rather than merging into them.
	sc.Inputs.AddOns, sc.Inputs.Cohorts = nil, nil
	sc.Inputs.CohortCount = 0
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &sc); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	snap := calculator.Estimate(sc)
	h.log.Debug().
		Int("roles", snap.Inputs.RolesToMap).
		Int64("total_cost", snap.Results.TotalCost).
		Int("weeks", snap.Results.TotalWeeks).
		Msg("estimate served")
	writeJSON(ctx, fasthttp.StatusOK, EstimateResponse{
		Snapshot: snap,
		Summary:  summary.Text(snap.Results, snap.Assumptions.Currency, snap.Inputs.ClientName),
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"status":500,"message":"encode response"}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h *Handler) error {
	srv := &fasthttp.Server{
		Handler:            h.Handle,
		Name:               "swp-planner",
		MaxRequestBodySize: maxBodySize,
	}
	errCh := make(chan error, 1)
	go func() {
		h.log.Info().Str("addr", addr).Msg("estimate server listening")
		errCh <- srv.ListenAndServe(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
