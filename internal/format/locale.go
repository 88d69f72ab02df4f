package format

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supported = []language.Tag{
	language.Spanish,
	language.English,
	language.French,
	language.German,
	language.Portuguese,
}

// Indexed like supported.
var monthNames = [][12]string{
	{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
}

var matcher = language.NewMatcher(supported)

// Locale formats month names and amounts for one display language. Unknown or
// malformed tags fall back to Spanish.
type Locale struct {
	tag     language.Tag
	months  [12]string
	printer *message.Printer
}

func NewLocale(tag string) Locale {
	_, idx, _ := matcher.Match(language.Make(tag))
	return Locale{
		tag:     supported[idx],
		months:  monthNames[idx],
		printer: message.NewPrinter(supported[idx]),
	}
}

func (l Locale) String() string {
	return l.tag.String()
}

func (l Locale) Month(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return l.months[m-1]
}

// Amount renders v with two decimals and locale digit grouping.
func (l Locale) Amount(v float64) string {
	return l.printer.Sprintf("%.2f", v)
}
