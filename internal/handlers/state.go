package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"tienda-dashboard/internal/errors"
	"tienda-dashboard/internal/models"
)

// Signals mirrors the datastar signal store declared on the dashboard page.
// A missing or null countries key means "no filter", as does a list holding
// the All option. An empty list is an explicit empty selection.
type Signals struct {
	Device    string   `json:"device"`
	Category  string   `json:"category"`
	Countries []string `json:"countries"`
	DateIndex *int     `json:"dateIndex"`
	Period    string   `json:"period"`
	Page      int      `json:"page"`
}

func (s Signals) State() (models.ControlState, error) {
	st := models.DefaultState()
	if s.Device != "" {
		st.Device = s.Device
	}
	if s.Category != "" {
		st.Category = s.Category
	}
	if s.Countries != nil {
		st.Countries = countrySelection(s.Countries)
	}
	if s.DateIndex != nil {
		st.DateIndex = *s.DateIndex
	}
	if s.Period != "" {
		period := models.Period(s.Period)
		if !period.Valid() {
			return st, errors.BadRequest(fmt.Sprintf("unknown period %q", s.Period))
		}
		st.Period = period
	}
	return st, nil
}

func readSignals(r *http.Request) (Signals, error) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return signals, errors.BadRequestWrap(err, "invalid datastar signals")
	}
	return signals, nil
}

// stateFromQuery reads a control state from query parameters: device,
// category, countries (repeated or comma separated), date_index and period.
func stateFromQuery(q url.Values) (models.ControlState, error) {
	signals := Signals{
		Device:   q.Get("device"),
		Category: q.Get("category"),
		Period:   q.Get("period"),
	}

	if values, ok := q["countries"]; ok {
		signals.Countries = []string{}
		for _, v := range values {
			signals.Countries = append(signals.Countries, strings.Split(v, ",")...)
		}
	}

	if raw := q.Get("date_index"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return models.ControlState{}, errors.BadRequestWrap(err, "date_index must be an integer")
		}
		signals.DateIndex = &idx
	}

	return signals.State()
}

func countrySelection(values []string) models.CountrySelection {
	countries := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == models.All {
			return models.AllCountries()
		}
		if v != "" {
			countries = append(countries, v)
		}
	}
	return models.SomeCountries(countries...)
}

func pageFromQuery(q url.Values) (int, error) {
	raw := q.Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequestWrap(err, "page must be an integer")
	}
	return page, nil
}
