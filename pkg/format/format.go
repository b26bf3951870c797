// Package format renders geological times and durations as human-readable
// strings, including the "Earth's history as a 24-hour day" projection.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthAge is the age of the Earth in Ma; 24-hour clock values are scaled
// against it.
const EarthAge = 4540.0

const secondsPerDay = 86400.0

// Units holds the unit words for one language.
type Units struct {
	Giga, Mega, Kilo, YearsAgo, Present       string
	BillionYears, MillionYears, ThousandYears string
	Years                                     string
	Hours, Minutes, Seconds                   string
}

// English is the default unit set.
var English = Units{
	Giga: "Ga", Mega: "Ma", Kilo: "Ka", YearsAgo: "years ago", Present: "Present",
	BillionYears: "billion years", MillionYears: "million years",
	ThousandYears: "thousand years", Years: "years",
	Hours: "h", Minutes: "m", Seconds: "s",
}

// Ma formats a time in Ma before present using English units.
func Ma(ma float64) string { return English.Ma(ma) }

// Duration formats the length of [end, start] using English units.
func Duration(start, end float64) string { return English.Duration(start, end) }

// Duration24 formats the length of [end, start] on the 24-hour clock using
// English units.
func Duration24(start, end float64) string { return English.Duration24(start, end) }

// Ma formats a time in Ma before present, picking Ga, Ma, Ka or years.
//
//	4540 -> "4.5 Ga", 3000 -> "3 Ga", 66 -> "66 Ma", 2.6 -> "2.6 Ma",
//	0.3 -> "300 Ka", 0.0002 -> "200 years ago", 0 -> "Present"
func (u Units) Ma(ma float64) string {
	switch {
	case ma >= 1000:
		prec := 1
		if math.Mod(ma, 1000) == 0 {
			prec = 0
		}
		return fixed(ma/1000, prec) + " " + u.Giga
	case ma >= 1:
		return fixed(ma, precision(ma)) + " " + u.Mega
	case ma >= 0.001:
		return fixed(ma*1000, 0) + " " + u.Kilo
	case ma > 0:
		return fixed(ma*1e6, 0) + " " + u.YearsAgo
	}
	return u.Present
}

// Duration formats the length of the span [end, start] given in Ma.
func (u Units) Duration(start, end float64) string {
	d := start - end
	switch {
	case d >= 1000:
		return fixed(d/1000, 1) + " " + u.BillionYears
	case d >= 1:
		return fixed(d, precision(d)) + " " + u.MillionYears
	case d >= 0.001:
		return fixed(d*1000, 0) + " " + u.ThousandYears
	}
	return fixed(d*1e6, 0) + " " + u.Years
}

// Clock24 maps a time in Ma onto a 24-hour day that starts with the
// formation of the Earth, as hh:mm:ss. Times younger than 1000 years get
// millisecond precision.
func Clock24(ma float64) string {
	sec := (EarthAge - ma) / EarthAge * secondsPerDay
	s := fmt.Sprintf("%02d:%02d:%02d",
		int(math.Floor(sec/3600)),
		int(math.Floor(math.Mod(sec, 3600)/60)),
		int(math.Floor(math.Mod(sec, 60))))
	if ma < 0.001 {
		s += fmt.Sprintf(".%03d", int(math.Round(math.Mod(sec, 1)*1000)))
	}
	return s
}

// Duration24 formats the length of [end, start] on the 24-hour clock, e.g.
// "2h 13m 5s". Zero components are omitted unless everything is zero.
func (u Units) Duration24(start, end float64) string {
	total := (start - end) / EarthAge * secondsPerDay
	h := int(math.Floor(total / 3600))
	m := int(math.Floor(math.Mod(total, 3600) / 60))
	s := int(math.Floor(math.Mod(total, 60)))

	var parts []string
	if h > 0 {
		parts = append(parts, strconv.Itoa(h)+u.Hours)
	}
	if m > 0 {
		parts = append(parts, strconv.Itoa(m)+u.Minutes)
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, strconv.Itoa(s)+u.Seconds)
	}
	return strings.Join(parts, " ")
}

func precision(v float64) int {
	if v >= 10 {
		return 0
	}
	return 1
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
