package models

import "slices"

// All is the selector value that disables a single-value filter.
const All = "All"

var DeviceTypes = []string{All, "PC", "Mobile", "Tablet"}

type Period string

const (
	PeriodAll     Period = "All"
	PeriodYear    Period = "Year"
	PeriodQuarter Period = "Quarter"
	PeriodMonth   Period = "Month"
)

var Periods = []Period{PeriodAll, PeriodYear, PeriodQuarter, PeriodMonth}

func (p Period) Valid() bool {
	return slices.Contains(Periods, p)
}

type selectionMode uint8

const (
	selectAll selectionMode = iota
	selectNone
	selectSome
)

// CountrySelection separates "no filter" from "explicitly nothing selected".
// The zero value selects every country.
type CountrySelection struct {
	mode   selectionMode
	values []string
}

func AllCountries() CountrySelection {
	return CountrySelection{mode: selectAll}
}

func NoCountries() CountrySelection {
	return CountrySelection{mode: selectNone}
}

// SomeCountries returns an explicit selection. An empty argument list yields
// NoCountries.
func SomeCountries(countries ...string) CountrySelection {
	if len(countries) == 0 {
		return NoCountries()
	}
	values := slices.Clone(countries)
	slices.Sort(values)
	return CountrySelection{mode: selectSome, values: slices.Compact(values)}
}

func (s CountrySelection) IsAll() bool  { return s.mode == selectAll }
func (s CountrySelection) IsNone() bool { return s.mode == selectNone }

func (s CountrySelection) Values() []string {
	return slices.Clone(s.values)
}

// Resolve applies the empty-selection policy: when emptyMeansAll is set an
// explicit empty selection is widened to every country.
func (s CountrySelection) Resolve(emptyMeansAll bool) CountrySelection {
	if s.mode == selectNone && emptyMeansAll {
		return AllCountries()
	}
	return s
}

func (s CountrySelection) Contains(country string) bool {
	switch s.mode {
	case selectAll:
		return true
	case selectNone:
		return false
	}
	_, found := slices.BinarySearch(s.values, country)
	return found
}

// ControlState is an immutable snapshot of every dashboard control.
type ControlState struct {
	Device    string
	Category  string
	Countries CountrySelection
	DateIndex int
	Period    Period
}

// DefaultState mirrors the initial widget values of the page.
func DefaultState() ControlState {
	return ControlState{
		Device:    All,
		Category:  All,
		Countries: AllCountries(),
		DateIndex: -1,
		Period:    PeriodAll,
	}
}
