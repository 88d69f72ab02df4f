package services

import (
	"errors"
	"fmt"
	"slices"

	"tienda-dashboard/internal/dataset"
	"tienda-dashboard/internal/format"
	"tienda-dashboard/internal/models"
)

type ControlID string

type ChartID string

const (
	ControlDevice    ControlID = "filter_device"
	ControlCategory  ControlID = "filter_category"
	ControlCountries ControlID = "filter_countries"
	ControlDate      ControlID = "filter_date"
	ControlPeriod    ControlID = "filter_period"
)

var (
	ErrUnknownChart     = errors.New("unknown chart")
	ErrUnknownControl   = errors.New("unknown control")
	ErrDuplicateChart   = errors.New("chart registered twice")
	ErrDuplicateControl = errors.New("control bound twice")
)

// Dispatcher is the callback graph of the dashboard: each control id names
// the charts that must be recomputed when it changes.
type Dispatcher struct {
	charts        map[ChartID]Recompute
	chartOrder    []ChartID
	controls      map[ControlID][]ChartID
	controlOrder  []ControlID
	emptyMeansAll bool
}

type DispatcherOptions struct {
	Locale format.Locale
	// EmptySelectionMeansAll widens an explicit empty country selection to
	// every country before recomputing.
	EmptySelectionMeansAll bool
}

// NewDispatcher returns an empty dispatcher. Use NewDashboardDispatcher for
// the standard wiring.
func NewDispatcher(emptyMeansAll bool) *Dispatcher {
	return &Dispatcher{
		charts:        make(map[ChartID]Recompute),
		controls:      make(map[ControlID][]ChartID),
		emptyMeansAll: emptyMeansAll,
	}
}

// NewDashboardDispatcher wires the four dashboard charts to their controls.
func NewDashboardDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	d := NewDispatcher(opts.EmptySelectionMeansAll)

	charts := []struct {
		id ChartID
		fn Recompute
	}{
		{ChartProfitCountry, ProfitByCountry},
		{ChartCostDevice, CostByDevice},
		{ChartCostProfit, CostVsProfit},
		{ChartCostTime, CostOverTime(opts.Locale)},
	}
	for _, c := range charts {
		if err := d.RegisterChart(c.id, c.fn); err != nil {
			return nil, err
		}
	}

	bindings := []struct {
		control ControlID
		charts  []ChartID
	}{
		{ControlDevice, []ChartID{ChartProfitCountry}},
		{ControlCategory, []ChartID{ChartCostDevice}},
		{ControlCountries, []ChartID{ChartCostProfit}},
		{ControlDate, []ChartID{ChartCostTime}},
		{ControlPeriod, []ChartID{ChartCostTime}},
	}
	for _, b := range bindings {
		if err := d.Bind(b.control, b.charts...); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Dispatcher) RegisterChart(id ChartID, fn Recompute) error {
	if _, exists := d.charts[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChart, id)
	}
	d.charts[id] = fn
	d.chartOrder = append(d.chartOrder, id)
	return nil
}

// Bind declares which charts a control drives. Each control may be bound
// once and only to registered charts.
func (d *Dispatcher) Bind(control ControlID, charts ...ChartID) error {
	if _, exists := d.controls[control]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateControl, control)
	}
	for _, id := range charts {
		if _, ok := d.charts[id]; !ok {
			return fmt.Errorf("bind %s: %w: %s", control, ErrUnknownChart, id)
		}
	}
	d.controls[control] = slices.Clone(charts)
	d.controlOrder = append(d.controlOrder, control)
	return nil
}

func (d *Dispatcher) ChartIDs() []ChartID {
	return slices.Clone(d.chartOrder)
}

func (d *Dispatcher) Controls() []ControlID {
	return slices.Clone(d.controlOrder)
}

// Targets returns the charts driven by control.
func (d *Dispatcher) Targets(control ControlID) ([]ChartID, error) {
	charts, ok := d.controls[control]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownControl, control)
	}
	return slices.Clone(charts), nil
}

func (d *Dispatcher) Chart(ds *dataset.Dataset, id ChartID, st models.ControlState) (models.ChartSpec, error) {
	fn, ok := d.charts[id]
	if !ok {
		return models.ChartSpec{}, fmt.Errorf("%w: %s", ErrUnknownChart, id)
	}
	return fn(ds, d.normalize(st)), nil
}

// Dispatch recomputes every chart driven by control, in binding order.
func (d *Dispatcher) Dispatch(ds *dataset.Dataset, control ControlID, st models.ControlState) ([]models.ChartSpec, error) {
	targets, err := d.Targets(control)
	if err != nil {
		return nil, err
	}

	specs := make([]models.ChartSpec, 0, len(targets))
	for _, id := range targets {
		spec, err := d.Chart(ds, id, st)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (d *Dispatcher) normalize(st models.ControlState) models.ControlState {
	st.Countries = st.Countries.Resolve(d.emptyMeansAll)
	return st
}
