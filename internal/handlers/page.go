package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"tienda-dashboard/internal/errors"
	"tienda-dashboard/internal/models"
	"tienda-dashboard/internal/observability"
	"tienda-dashboard/internal/render"
	"tienda-dashboard/internal/services"
	"tienda-dashboard/internal/ui/templates"
)

const dashboardTitle = "TiendaEUR Informes"

type PageHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleDashboard renders the full page with every chart computed for the
// default control state, so the page is usable before the first SSE round trip.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	specs, err := h.analytics.AllCharts(r.Context(), models.DefaultState())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	panels := make([]templates.ChartPanel, 0, len(specs))
	for _, spec := range specs {
		svg, err := render.SVGString(spec)
		if err != nil {
			errors.WriteError(w, h.logger, errors.RenderWrap(err, "chart could not be rendered"), requestID)
			return
		}
		panels = append(panels, templates.ChartPanel{
			ID:    spec.ID,
			Title: spec.Title,
			SVG:   template.HTML(svg),
		})
	}

	ds := h.analytics.Dataset()
	view := templates.DashboardView{
		Title:      dashboardTitle,
		Categories: ds.Categories(),
		Countries:  ds.Countries(),
		Charts:     panels,
		Records:    h.analytics.Records(1),
		Locale:     h.analytics.Locale(),
	}
	if daily := ds.Daily(); len(daily) > 0 {
		view.LastIndex = len(daily) - 1
		view.FirstDay = daily[0].Date.Format(time.DateOnly)
		view.LastDay = daily[len(daily)-1].Date.Format(time.DateOnly)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(view).Render(r.Context(), w); err != nil {
		h.logger.Error("render dashboard", "error", err, "request_id", requestID)
	}
}
