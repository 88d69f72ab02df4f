package services

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"tienda-dashboard/internal/dataset"
	"tienda-dashboard/internal/format"
	"tienda-dashboard/internal/models"
)

const (
	ChartProfitCountry ChartID = "profit_country"
	ChartCostDevice    ChartID = "cost_device"
	ChartCostProfit    ChartID = "cost_profit"
	ChartCostTime      ChartID = "cost_time"
)

const PrimaryColor = "#A1343C"

// Plotly's sequential RdBu scale.
var RdBu = []string{
	"#67001F", "#B2182B", "#D6604D", "#F4A582", "#FDDBC7", "#F7F7F7",
	"#D1E5F0", "#92C5DE", "#4393C3", "#2166AC", "#053061",
}

// Recompute maps the dataset and a control snapshot to a chart. It must not
// mutate either argument and must return equal specs for equal inputs.
type Recompute func(ds *dataset.Dataset, st models.ControlState) models.ChartSpec

// ProfitByCountry sums profit per country for the selected device type.
func ProfitByCountry(ds *dataset.Dataset, st models.ControlState) models.ChartSpec {
	spec := models.ChartSpec{
		ID:        string(ChartProfitCountry),
		Kind:      models.ChartBar,
		Title:     "Ganancias por país",
		XField:    "country",
		YField:    "profit",
		Aggregate: models.AggregateSum,
		Colors:    []string{PrimaryColor},
	}

	rows := ds.Filter(func(r models.Record) bool {
		return matches(st.Device, r.DeviceType)
	})

	spec.Rows = len(rows)
	spec.Points = sumBy(rows,
		func(r models.Record) string { return r.Country },
		func(r models.Record) float64 { return r.Profit },
	)
	return spec
}

// CostByDevice sums cost per device type for the selected category.
func CostByDevice(ds *dataset.Dataset, st models.ControlState) models.ChartSpec {
	spec := models.ChartSpec{
		ID:        string(ChartCostDevice),
		Kind:      models.ChartPie,
		Title:     "Costos según dispositivo",
		XField:    "device_type",
		YField:    "cost",
		Aggregate: models.AggregateSum,
		Colors:    slices.Clone(RdBu),
	}

	rows := ds.Filter(func(r models.Record) bool {
		return matches(st.Category, r.Category)
	})

	spec.Rows = len(rows)
	spec.Points = sumBy(rows,
		func(r models.Record) string { return r.DeviceType },
		func(r models.Record) float64 { return r.Cost },
	)
	return spec
}

// CostVsProfit plots one point per record of the selected countries.
func CostVsProfit(ds *dataset.Dataset, st models.ControlState) models.ChartSpec {
	spec := models.ChartSpec{
		ID:        string(ChartCostProfit),
		Kind:      models.ChartScatter,
		Title:     "Costo frente a ganancia",
		XField:    "cost",
		YField:    "profit",
		Aggregate: models.AggregateNone,
		Colors:    []string{PrimaryColor},
	}

	rows := ds.Filter(func(r models.Record) bool {
		return st.Countries.Contains(r.Country)
	})

	spec.Rows = len(rows)
	spec.Points = make([]models.Point, 0, len(rows))
	for _, r := range rows {
		spec.Points = append(spec.Points, models.Point{Label: r.Country, X: r.Cost, Y: r.Profit})
	}
	return spec
}

// CostOverTime builds the cost line chart. For PeriodAll the per-day series
// is cut at the day selected by DateIndex (out of range means the last day);
// other periods sum the per-day series by calendar year, quarter or month.
func CostOverTime(locale format.Locale) Recompute {
	return func(ds *dataset.Dataset, st models.ControlState) models.ChartSpec {
		spec := models.ChartSpec{
			ID:        string(ChartCostTime),
			Kind:      models.ChartLine,
			Title:     "Costos en el tiempo",
			XField:    "date",
			YField:    "cost",
			Aggregate: models.AggregateSum,
			Colors:    []string{PrimaryColor},
			Points:    []models.Point{},
		}

		daily := ds.Daily()
		if len(daily) == 0 {
			return spec
		}

		switch st.Period {
		case models.PeriodAll:
			idx := st.DateIndex
			if idx < 0 || idx >= len(daily) {
				idx = len(daily) - 1
			}
			cutoff := daily[idx].Date
			for _, d := range daily[:idx+1] {
				spec.Points = append(spec.Points, models.Point{
					Label: d.Date.Format(time.DateOnly),
					X:     float64(d.Date.Unix()),
					Y:     d.Cost,
				})
			}
			spec.Rows = len(ds.Filter(func(r models.Record) bool {
				return !truncateDay(r.Date).After(cutoff)
			}))

		case models.PeriodYear:
			spec.XField = "year"
			spec.Points = groupDaily(daily, func(t time.Time) (int, string) {
				return t.Year(), fmt.Sprint(t.Year())
			})
			spec.Rows = ds.Len()

		case models.PeriodQuarter:
			spec.XField = "quarter"
			spec.Points = groupDaily(daily, func(t time.Time) (int, string) {
				q := (int(t.Month())-1)/3 + 1
				return q, fmt.Sprintf("Q%d", q)
			})
			spec.Rows = ds.Len()

		case models.PeriodMonth:
			spec.XField = "month"
			spec.Points = groupDaily(daily, func(t time.Time) (int, string) {
				return int(t.Month()), locale.Month(t.Month())
			})
			spec.Rows = ds.Len()
		}

		return spec
	}
}

func matches(selector, value string) bool {
	return selector == models.All || selector == value
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sumBy groups rows by key and sums value, ordered by key.
func sumBy(rows []models.Record, key func(models.Record) string, value func(models.Record) float64) []models.Point {
	sums := make(map[string]float64)
	for _, r := range rows {
		sums[key(r)] += value(r)
	}

	points := make([]models.Point, 0, len(sums))
	for label, total := range sums {
		points = append(points, models.Point{Label: label, Y: total})
	}
	slices.SortFunc(points, func(a, b models.Point) int {
		return cmp.Compare(a.Label, b.Label)
	})
	for i := range points {
		points[i].X = float64(i)
	}
	return points
}

// groupDaily sums the per-day series into buckets ordered by bucket number.
func groupDaily(daily []models.DailyCost, bucket func(time.Time) (int, string)) []models.Point {
	sums := make(map[int]float64)
	labels := make(map[int]string)
	for _, d := range daily {
		n, label := bucket(d.Date)
		sums[n] += d.Cost
		labels[n] = label
	}

	points := make([]models.Point, 0, len(sums))
	for n, total := range sums {
		points = append(points, models.Point{Label: labels[n], X: float64(n), Y: total})
	}
	slices.SortFunc(points, func(a, b models.Point) int {
		return cmp.Compare(a.X, b.X)
	})
	return points
}
