package dataset

import (
	"slices"
	"time"

	"tienda-dashboard/internal/models"
)

// Dataset is the immutable, normalised order table. It is built once by Parse
// and only read afterwards, so it is safe to share between goroutines.
type Dataset struct {
	records    []models.Record
	categories []string
	countries  []string
	devices    []string
	daily      []models.DailyCost
	loadedAt   time.Time
	source     string
}

// New builds a Dataset from already-normalised records. Profit is derived
// here so every construction path upholds Profit == OrderValue - Cost.
func New(records []models.Record) *Dataset {
	ds := &Dataset{
		records:  make([]models.Record, len(records)),
		loadedAt: time.Now(),
	}

	seenCategory := make(map[string]bool)
	seenCountry := make(map[string]bool)
	seenDevice := make(map[string]bool)
	perDay := make(map[time.Time]float64)

	for i, r := range records {
		r.Profit = r.OrderValue - r.Cost
		ds.records[i] = r

		if !seenCategory[r.Category] {
			seenCategory[r.Category] = true
			ds.categories = append(ds.categories, r.Category)
		}
		if !seenCountry[r.Country] {
			seenCountry[r.Country] = true
			ds.countries = append(ds.countries, r.Country)
		}
		if !seenDevice[r.DeviceType] {
			seenDevice[r.DeviceType] = true
			ds.devices = append(ds.devices, r.DeviceType)
		}

		day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
		perDay[day] += r.Cost
	}

	slices.Sort(ds.countries)

	ds.daily = make([]models.DailyCost, 0, len(perDay))
	for day, cost := range perDay {
		ds.daily = append(ds.daily, models.DailyCost{Date: day, Cost: cost})
	}
	slices.SortFunc(ds.daily, func(a, b models.DailyCost) int {
		return a.Date.Compare(b.Date)
	})

	return ds
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of every record in load order.
func (d *Dataset) Records() []models.Record {
	return slices.Clone(d.records)
}

// Filter returns the records accepted by keep, in load order.
func (d *Dataset) Filter(keep func(models.Record) bool) []models.Record {
	out := make([]models.Record, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (d *Dataset) Categories() []string {
	return slices.Clone(d.categories)
}

// Countries lists distinct countries sorted by name.
func (d *Dataset) Countries() []string {
	return slices.Clone(d.countries)
}

// DeviceTypes lists distinct device types in first-seen order.
func (d *Dataset) DeviceTypes() []string {
	return slices.Clone(d.devices)
}

// Daily is the per-day cost series sorted by date.
func (d *Dataset) Daily() []models.DailyCost {
	return slices.Clone(d.daily)
}

func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

func (d *Dataset) Source() string {
	return d.source
}

// Page returns the 1-based page of records. Pages outside the range are empty
// but still report the totals.
func (d *Dataset) Page(page, size int) models.RecordPage {
	if size <= 0 {
		size = 1
	}
	total := len(d.records)
	result := models.RecordPage{
		Records:    []models.Record{},
		Page:       page,
		PageSize:   size,
		TotalRows:  total,
		TotalPages: (total + size - 1) / size,
	}
	if page < 1 || page > result.TotalPages {
		return result
	}

	start := (page - 1) * size
	end := min(start+size, total)
	result.Records = slices.Clone(d.records[start:end])
	return result
}
