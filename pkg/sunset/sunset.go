package sunset

import (
	"time"

	"github.com/spencer-p/sundash/pkg/irradiance"
	"github.com/spencer-p/sundash/pkg/timetricks"

	"github.com/keep94/sunrise"
)

const day = 24 * time.Hour

// GetDaylight returns sunrise, sunset and day length at the place for the
// middle of each month of year.
func GetDaylight(place Place, year int) [12]Daylight {
	loc := place.Location
	if loc == nil {
		loc = time.UTC
	}

	var result [12]Daylight
	for i := range result {
		month := time.January + time.Month(i)
		date := timetricks.MidMonth(year, month, loc)

		var s sunrise.Sunrise
		s.Around(place.Lat, place.Long, date)

		// The sunrise package is not very clean with its dates; nudge it onto
		// the right day, but give up rather than loop when there is no sunrise.
		for tries := 0; tries < 2 && !s.Sunrise().IsZero() && !timetricks.SameDay(date, s.Sunrise()); tries++ {
			if s.Sunrise().Before(date) {
				s.AddDays(1)
			} else {
				s.AddDays(-1)
			}
		}

		result[i] = daylight(place.Lat, month, date, s.Sunrise(), s.Sunset())
	}
	return result
}

// daylight pairs up a sunrise and sunset. Without both it falls back to the
// sun's elevation at solar noon to tell polar day from polar night.
func daylight(lat float64, month time.Month, date, rise, set time.Time) Daylight {
	if rise.IsZero() || set.IsZero() {
		decl := irradiance.SolarDeclination(irradiance.DayOfYear(date))
		length := time.Duration(0)
		if irradiance.SolarElevationAngle(lat, decl, 0) > 0 {
			length = day
		}
		return Daylight{Month: month, Length: length}
	}

	length := set.Sub(rise)
	if length < 0 {
		length += day
	}
	return Daylight{
		Month:   month,
		Sunrise: rise,
		Sunset:  set,
		Length:  length,
	}
}
