package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tienda-dashboard/internal/dataset"
	"tienda-dashboard/internal/format"
	"tienda-dashboard/internal/models"
	"tienda-dashboard/internal/observability"
)

const maxWorkers = 4

// Analytics binds the immutable dataset to the dispatcher for the HTTP layer.
type Analytics struct {
	data       *dataset.Dataset
	dispatcher *Dispatcher
	locale     format.Locale
	pageSize   int
	logger     *slog.Logger
}

type Options struct {
	PageSize               int
	Locale                 string
	EmptySelectionMeansAll bool
}

func NewAnalytics(data *dataset.Dataset, opts Options, logger *slog.Logger) (*Analytics, error) {
	locale := format.NewLocale(opts.Locale)
	dispatcher, err := NewDashboardDispatcher(DispatcherOptions{
		Locale:                 locale,
		EmptySelectionMeansAll: opts.EmptySelectionMeansAll,
	})
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Analytics{
		data:       data,
		dispatcher: dispatcher,
		locale:     locale,
		pageSize:   opts.PageSize,
		logger:     logger,
	}, nil
}

func (a *Analytics) Dataset() *dataset.Dataset {
	return a.data
}

func (a *Analytics) Dispatcher() *Dispatcher {
	return a.dispatcher
}

func (a *Analytics) Locale() format.Locale {
	return a.locale
}

func (a *Analytics) PageSize() int {
	return a.pageSize
}

func (a *Analytics) Chart(ctx context.Context, id ChartID, st models.ControlState) (models.ChartSpec, error) {
	_, span := observability.StartSpan(ctx, "recompute")
	span.SetAttr("chart", string(id))
	defer span.End(ctx, a.logger)

	spec, err := a.dispatcher.Chart(a.data, id, st)
	if err != nil {
		span.SetError(err)
		return models.ChartSpec{}, err
	}
	span.SetAttr("rows", spec.Rows)
	return spec, nil
}

// Dispatch recomputes the charts driven by control.
func (a *Analytics) Dispatch(ctx context.Context, control ControlID, st models.ControlState) ([]models.ChartSpec, error) {
	_, span := observability.StartSpan(ctx, "dispatch")
	span.SetAttr("control", string(control))
	defer span.End(ctx, a.logger)

	specs, err := a.dispatcher.Dispatch(a.data, control, st)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetAttr("charts", len(specs))
	return specs, nil
}

// AllCharts recomputes every registered chart concurrently. The dataset is
// read-only, so the recomputes share it without locking.
func (a *Analytics) AllCharts(ctx context.Context, st models.ControlState) ([]models.ChartSpec, error) {
	ids := a.dispatcher.ChartIDs()
	specs := make([]models.ChartSpec, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			spec, err := a.Chart(gctx, id, st)
			if err != nil {
				return err
			}
			specs[i] = spec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return specs, nil
}

func (a *Analytics) Records(page int) models.RecordPage {
	return a.data.Page(page, a.pageSize)
}

func (a *Analytics) Stats() map[string]any {
	daily := a.data.Daily()
	stats := map[string]any{
		"record_count": a.data.Len(),
		"loaded_at":    a.data.LoadedAt(),
		"source":       a.data.Source(),
		"categories":   len(a.data.Categories()),
		"countries":    len(a.data.Countries()),
		"device_types": len(a.data.DeviceTypes()),
		"days":         len(daily),
		"charts":       len(a.dispatcher.ChartIDs()),
		"locale":       a.locale.String(),
	}
	if len(daily) > 0 {
		stats["first_day"] = daily[0].Date
		stats["last_day"] = daily[len(daily)-1].Date
	}
	return stats
}
