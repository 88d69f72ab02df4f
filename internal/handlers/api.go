package handlers

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"tienda-dashboard/internal/errors"
	"tienda-dashboard/internal/observability"
	"tienda-dashboard/internal/render"
	"tienda-dashboard/internal/services"
)

const cacheControl = "no-cache"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleChart returns the chart spec for the control state in the query.
func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	st, err := stateFromQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	spec, err := h.analytics.Chart(r.Context(), services.ChartID(r.PathValue("chart")), st)
	if err != nil {
		errors.WriteError(w, h.logger, lookupError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, spec, map[string]string{"Cache-Control": cacheControl})
}

// HandleChartSVG renders the same chart as HandleChart as an SVG image.
func (h *APIHandlers) HandleChartSVG(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	st, err := stateFromQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	spec, err := h.analytics.Chart(r.Context(), services.ChartID(r.PathValue("chart")), st)
	if err != nil {
		errors.WriteError(w, h.logger, lookupError(err), requestID)
		return
	}

	var buf bytes.Buffer
	if err := render.SVG(&buf, spec); err != nil {
		errors.WriteError(w, h.logger, errors.RenderWrap(err, "chart could not be rendered"), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *APIHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.Records(page), map[string]string{
		"Cache-Control": "public, max-age=300",
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"records":   h.analytics.Dataset().Len(),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func lookupError(err error) error {
	switch {
	case stderrors.Is(err, services.ErrUnknownChart):
		return errors.NotFoundWrap(err, "unknown chart")
	case stderrors.Is(err, services.ErrUnknownControl):
		return errors.NotFoundWrap(err, "unknown control")
	default:
		return err
	}
}
