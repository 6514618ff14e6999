// Package report puts together everything the dashboard knows about a place
// for one year: monthly irradiation, day lengths and a summary of both.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/spencer-p/sundash/pkg/geo"
	"github.com/spencer-p/sundash/pkg/irradiance"
	"github.com/spencer-p/sundash/pkg/sunset"
)

// Report is the irradiation picture for a coordinate over a year.
type Report struct {
	Coordinate geo.Coordinate
	Year       int
	Series     irradiance.Series
	Daylight   [12]sunset.Daylight
	Summary    Summary
}

// Summary describes a year of monthly irradiation in a few numbers. All
// values are in W/m^2.
type Summary struct {
	Mean     float64    `json:"mean"`
	StdDev   float64    `json:"stddev"`
	Min      float64    `json:"min"`
	Max      float64    `json:"max"`
	MinMonth time.Month `json:"min_month"`
	MaxMonth time.Month `json:"max_month"`
}

// Build computes the report for c in year. Sun times are reported in loc, or
// UTC if loc is nil.
func Build(c geo.Coordinate, year int, loc *time.Location) Report {
	series := irradiance.MonthlyIrradiationForYear(c.Lat, c.Lng, year)
	return Report{
		Coordinate: c,
		Year:       year,
		Series:     series,
		Daylight:   sunset.GetDaylight(sunset.Place{Lat: c.Lat, Long: c.Lng, Location: loc}, year),
		Summary:    Summarize(series),
	}
}

// Summarize computes summary statistics over the months of s.
func Summarize(s irradiance.Series) Summary {
	vals := s.Values()
	minIdx, maxIdx := floats.MinIdx(vals), floats.MaxIdx(vals)
	return Summary{
		Mean:     stat.Mean(vals, nil),
		StdDev:   stat.StdDev(vals, nil),
		Min:      vals[minIdx],
		Max:      vals[maxIdx],
		MinMonth: s[minIdx].Month,
		MaxMonth: s[maxIdx].Month,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("mean %.2f W/m^2, highest in %s (%.2f), lowest in %s (%.2f)",
		s.Mean, s.MaxMonth, s.Max, s.MinMonth, s.Min)
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s in %d\n", r.Coordinate, r.Year)
	for i := range r.Series {
		fmt.Fprintf(&b, "%s, daylight %s\n", r.Series[i].String(), r.Daylight[i].String())
	}
	b.WriteString(r.Summary.String())
	return b.String()
}

type monthJSON struct {
	Month         string     `json:"month"`
	Irradiation   float64    `json:"irradiation"`
	DaylightHours float64    `json:"daylight_hours"`
	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
}

type reportJSON struct {
	Lat     float64     `json:"lat"`
	Lng     float64     `json:"lng"`
	Year    int         `json:"year"`
	Months  []monthJSON `json:"months"`
	Summary summaryJSON `json:"summary"`
}

type summaryJSON struct {
	Summary
	MinMonth string `json:"min_month"`
	MaxMonth string `json:"max_month"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Lat:    r.Coordinate.Lat,
		Lng:    r.Coordinate.Lng,
		Year:   r.Year,
		Months: make([]monthJSON, len(r.Series)),
		Summary: summaryJSON{
			Summary:  r.Summary,
			MinMonth: r.Summary.MinMonth.String(),
			MaxMonth: r.Summary.MaxMonth.String(),
		},
	}
	for i, s := range r.Series {
		d := r.Daylight[i]
		out.Months[i] = monthJSON{
			Month:         s.Name(),
			Irradiation:   s.Irradiation,
			DaylightHours: d.Length.Hours(),
		}
		if !d.Polar() {
			out.Months[i].Sunrise = &d.Sunrise
			out.Months[i].Sunset = &d.Sunset
		}
	}
	return json.Marshal(out)
}
