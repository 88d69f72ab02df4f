package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"tienda-dashboard/internal/errors"
	"tienda-dashboard/internal/models"
	"tienda-dashboard/internal/observability"
	"tienda-dashboard/internal/render"
	"tienda-dashboard/internal/services"
	"tienda-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleControl recomputes only the charts bound to the changed control and
// patches their elements.
func (h *SSEHandlers) HandleControl(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	signals, err := readSignals(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	st, err := signals.State()
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	specs, err := h.analytics.Dispatch(r.Context(), services.ControlID(r.PathValue("control")), st)
	if err != nil {
		errors.WriteError(w, h.logger, lookupError(err), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchCharts(r.Context(), sse, specs)
}

// HandleRefreshAll recomputes every chart for the current signals along with
// the data table. The page fires it once on load.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	signals, err := readSignals(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	st, err := signals.State()
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	specs, err := h.analytics.AllCharts(r.Context(), st)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	sse := datastar.NewSSE(w, r)
	if !h.patchCharts(r.Context(), sse, specs) {
		return
	}
	h.patchTable(r.Context(), sse, signals.Page)
}

func (h *SSEHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	signals, err := readSignals(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchTable(r.Context(), sse, signals.Page)
}

func (h *SSEHandlers) patchCharts(ctx context.Context, sse *datastar.ServerSentEventGenerator, specs []models.ChartSpec) bool {
	for _, spec := range specs {
		html, err := chartHTML(ctx, spec)
		if err != nil {
			h.logger.Error("render chart", "chart", spec.ID, "error", err)
			return false
		}
		if err := sse.PatchElements(html); err != nil {
			h.logger.Warn("patch chart", "chart", spec.ID, "error", err)
			return false
		}
	}
	return true
}

func (h *SSEHandlers) patchTable(ctx context.Context, sse *datastar.ServerSentEventGenerator, page int) {
	records := h.clampedPage(page)

	html, err := templ.ToGoHTML(ctx, templates.RecordsTable(records, h.analytics.Locale()))
	if err != nil {
		h.logger.Error("render records table", "error", err)
		return
	}
	if err := sse.PatchElements(string(html)); err != nil {
		h.logger.Warn("patch records table", "error", err)
		return
	}

	// Keep the client's page signal in step with the clamped page.
	signals, err := json.Marshal(map[string]any{"page": records.Page})
	if err != nil {
		h.logger.Error("marshal page signal", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch page signal", "error", err)
	}
}

func (h *SSEHandlers) clampedPage(page int) models.RecordPage {
	records := h.analytics.Records(max(page, 1))
	if records.TotalPages > 0 && records.Page > records.TotalPages {
		records = h.analytics.Records(records.TotalPages)
	}
	return records
}

func chartHTML(ctx context.Context, spec models.ChartSpec) (string, error) {
	svg, err := render.SVGString(spec)
	if err != nil {
		return "", err
	}
	html, err := templ.ToGoHTML(ctx, templates.Chart(templates.ChartPanel{
		ID:    spec.ID,
		Title: spec.Title,
		SVG:   template.HTML(svg),
	}))
	if err != nil {
		return "", err
	}
	return string(html), nil
}
