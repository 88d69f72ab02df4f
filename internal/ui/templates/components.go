package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"tienda-dashboard/internal/format"
	"tienda-dashboard/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

var chartTemplate = template.Must(template.New("chart").Parse(
	`<div id="chart-{{.ID}}" class="chart">{{.SVG}}</div>`))

var recordsTemplate = template.Must(template.New("records").Funcs(template.FuncMap{
	"day": func(t time.Time) string { return t.Format(time.DateOnly) },
}).Parse(`
<div id="records-table">
<table class="data-table">
<thead><tr><th>Fecha</th><th>País</th><th>Categoría</th><th>Dispositivo</th><th>Pedido (EUR)</th><th>Costo</th><th>Ganancia</th></tr></thead>
<tbody>
{{range .Page.Records}}<tr>
<td>{{day .Date}}</td>
<td>{{.Country}}</td>
<td>{{.Category}}</td>
<td>{{.DeviceType}}</td>
<td>{{call $.Amount .OrderValue}}</td>
<td>{{call $.Amount .Cost}}</td>
<td>{{call $.Amount .Profit}}</td>
</tr>{{end}}
</tbody>
</table>
<div class="pager">
<button data-on:click="$page = Math.max(1, $page - 1); @get('/sse/records')">&lsaquo;</button>
<span>Página {{.Page.Page}} de {{.Page.TotalPages}} ({{.Page.TotalRows}} filas)</span>
<button data-on:click="$page = Math.min({{.Page.TotalPages}}, $page + 1); @get('/sse/records')">&rsaquo;</button>
</div>
</div>`))

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.View.Title}}</title>
<script type="module" src="{{.Script}}"></script>
<style>
body { background: #333333; color: #ffffff; font-family: "Segoe UI", sans-serif; margin: 0 auto; max-width: 1400px; padding: 16px; }
h1, h2 { text-align: center; }
.controls { display: flex; flex-wrap: wrap; gap: 16px; justify-content: center; margin-bottom: 16px; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(560px, 1fr)); gap: 16px; }
.panel { border: 2px solid #ffffff; border-radius: 15px; padding: 8px; background: #ffffff; color: #000000; }
.data-table { width: 100%; border-collapse: collapse; overflow-x: auto; }
.data-table th, .data-table td { border-bottom: 1px solid #555555; padding: 4px 8px; text-align: left; }
.pager { display: flex; gap: 8px; justify-content: center; align-items: center; margin-top: 8px; }
</style>
</head>
<body data-signals="{{.Signals}}" data-init="@get('/sse/refresh-all')">
<h1>{{.View.Title}}</h1>
<div class="controls">
<fieldset id="filter_device">
<legend>Dispositivo</legend>
{{range .Devices}}<label><input type="radio" name="device" value="{{.Value}}" data-bind="device" data-on:change="@get('/sse/controls/filter_device')">{{.Label}}</label>
{{end}}</fieldset>
<label>Categoría
<select id="filter_category" data-bind="category" data-on:change="@get('/sse/controls/filter_category')">
{{range .Categories}}<option value="{{.Value}}">{{.Label}}</option>
{{end}}</select>
</label>
<label>Países
<select id="filter_countries" multiple size="4" data-bind="countries" data-on:change="@get('/sse/controls/filter_countries')">
{{range .Countries}}<option value="{{.Value}}">{{.Label}}</option>
{{end}}</select>
</label>
<label>Hasta el día <span data-text="$dateIndex"></span>
<input id="filter_date" type="range" min="0" max="{{.View.LastIndex}}" data-bind="dateIndex" data-on:change="@get('/sse/controls/filter_date')">
<small>{{.View.FirstDay}} – {{.View.LastDay}}</small>
</label>
<label>Periodo
<select id="filter_period" data-bind="period" data-on:change="@get('/sse/controls/filter_period')">
{{range .Periods}}<option value="{{.Value}}">{{.Label}}</option>
{{end}}</select>
</label>
</div>
<div class="panel">{{.Table}}</div>
<div class="grid">
{{range .Charts}}<section class="panel">
<h2>{{.Title}}</h2>
{{.HTML}}
</section>
{{end}}</div>
</body>
</html>`))

type recordsData struct {
	Page   models.RecordPage
	Amount func(float64) string
}

type chartSlot struct {
	Title string
	HTML  template.HTML
}

type dashboardData struct {
	Lang       string
	Script     string
	Signals    string
	View       DashboardView
	Devices    []Option
	Categories []Option
	Countries  []Option
	Periods    []Option
	Table      template.HTML
	Charts     []chartSlot
}

// Chart wraps a rendered chart in its patch target element.
func Chart(panel ChartPanel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return chartTemplate.Execute(w, panel)
	})
}

// RecordsTable renders one page of the data table with pager controls.
func RecordsTable(page models.RecordPage, locale format.Locale) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return recordsTemplate.Execute(w, recordsData{Page: page, Amount: locale.Amount})
	})
}

func Dashboard(view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(map[string]any{
			"device":    models.All,
			"category":  models.All,
			"countries": []string{models.All},
			"dateIndex": view.LastIndex,
			"period":    string(models.PeriodAll),
			"page":      view.Records.Page,
		})
		if err != nil {
			return err
		}

		table, err := templ.ToGoHTML(ctx, RecordsTable(view.Records, view.Locale))
		if err != nil {
			return err
		}

		charts := make([]chartSlot, 0, len(view.Charts))
		for _, panel := range view.Charts {
			html, err := templ.ToGoHTML(ctx, Chart(panel))
			if err != nil {
				return err
			}
			charts = append(charts, chartSlot{Title: panel.Title, HTML: html})
		}

		return dashboardTemplate.Execute(w, dashboardData{
			Lang:       view.Locale.String(),
			Script:     datastarScript,
			Signals:    string(signals),
			View:       view,
			Devices:    DeviceOptions,
			Categories: CategoryOptions(view.Categories),
			Countries:  CountryOptions(view.Countries),
			Periods:    PeriodOptions,
			Table:      table,
			Charts:     charts,
		})
	})
}
