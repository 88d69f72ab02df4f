package templates

import (
	"html/template"

	"tienda-dashboard/internal/format"
	"tienda-dashboard/internal/models"
)

type Option struct {
	Label string
	Value string
}

var DeviceOptions = []Option{
	{Label: "Todos", Value: models.All},
	{Label: "PC", Value: "PC"},
	{Label: "Móviles", Value: "Mobile"},
	{Label: "Tabletas", Value: "Tablet"},
}

var PeriodOptions = []Option{
	{Label: "Todo", Value: string(models.PeriodAll)},
	{Label: "Año", Value: string(models.PeriodYear)},
	{Label: "Trimestre", Value: string(models.PeriodQuarter)},
	{Label: "Mes", Value: string(models.PeriodMonth)},
}

// ChartPanel is one chart slot of the page. SVG must come from the render
// package, which escapes every label and title it draws.
type ChartPanel struct {
	ID    string
	Title string
	SVG   template.HTML
}

type DashboardView struct {
	Title      string
	Categories []string
	Countries  []string
	LastIndex  int
	FirstDay   string
	LastDay    string
	Charts     []ChartPanel
	Records    models.RecordPage
	Locale     format.Locale
}

func CategoryOptions(categories []string) []Option {
	opts := make([]Option, 0, len(categories)+1)
	opts = append(opts, Option{Label: "Todos", Value: models.All})
	for _, c := range categories {
		opts = append(opts, Option{Label: c, Value: c})
	}
	return opts
}

// CountryOptions leads with a "Todos" entry. Selecting it, alone or with
// other countries, lifts the country filter; deselecting everything is an
// explicit empty selection.
func CountryOptions(countries []string) []Option {
	opts := make([]Option, 0, len(countries)+1)
	opts = append(opts, Option{Label: "Todos", Value: models.All})
	for _, c := range countries {
		opts = append(opts, Option{Label: c, Value: c})
	}
	return opts
}
