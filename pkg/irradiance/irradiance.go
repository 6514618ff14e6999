package irradiance

import (
	"math"
	"time"

	"github.com/spencer-p/sundash/pkg/timetricks"
)

const (
	// SolarConstant is the top of atmosphere irradiance in W/m^2.
	SolarConstant = 1367.0

	degToRad = math.Pi / 180

	// Samples taken per day, one per hour.
	samplesPerDay = 24
)

// DayOfYear returns the ordinal day of t within its year, with January 1st
// being day 1. The day is counted from day zero of January in t's location and
// truncated to whole days.
func DayOfYear(t time.Time) int {
	start := time.Date(t.Year(), time.January, 0, 0, 0, 0, 0, t.Location())
	return int(t.Sub(start) / (24 * time.Hour))
}

// SolarDeclination returns the angle in radians between the sun's rays and the
// equatorial plane on the given day of the year.
func SolarDeclination(dayOfYear int) float64 {
	return 23.45 * degToRad * math.Sin(((360.0/365.0)*float64(dayOfYear-81))*degToRad)
}

// HourAngle returns the sun's angular displacement from the local meridian in
// radians. Timezone is an offset from UTC in hours.
func HourAngle(hour, minute int, longitude, timezone float64) float64 {
	solarTime := float64(hour) + float64(minute)/60 + (4*(longitude-15*timezone))/60
	return (solarTime - 12) * 15 * degToRad
}

// SolarElevationAngle returns the sun's angle above the horizon in radians.
// Latitude is in degrees, declination and hour angle in radians.
func SolarElevationAngle(latitude, declination, hourAngle float64) float64 {
	lat := latitude * degToRad
	x := math.Sin(lat)*math.Sin(declination) +
		math.Cos(lat)*math.Cos(declination)*math.Cos(hourAngle)
	// Rounding can push x just past ±1 at the poles.
	return math.Asin(math.Max(-1, math.Min(1, x)))
}

// Irradiation returns the instantaneous irradiation in W/m^2 for a sun at the
// given elevation. The sun contributes nothing at or below the horizon.
func Irradiation(elevation float64) float64 {
	if elevation <= 0 {
		return 0
	}
	return SolarConstant * math.Sin(elevation)
}

// AverageDailyIrradiation is the mean of hourly samples over the day of date.
// Samples are taken on the hour in UTC regardless of where the point is.
func AverageDailyIrradiation(latitude, longitude float64, date time.Time) float64 {
	declination := SolarDeclination(DayOfYear(date))

	total := 0.0
	for hour := 0; hour < samplesPerDay; hour++ {
		ha := HourAngle(hour, 0, longitude, 0)
		total += Irradiation(SolarElevationAngle(latitude, declination, ha))
	}
	return total / samplesPerDay
}

// AverageMonthlyIrradiation is the mean of AverageDailyIrradiation over every
// day of the month.
func AverageMonthlyIrradiation(latitude, longitude float64, year int, month time.Month) float64 {
	days := timetricks.DaysIn(year, month)

	total := 0.0
	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		total += AverageDailyIrradiation(latitude, longitude, date)
	}
	return total / float64(days)
}

// MonthlyIrradiationForYear computes the average irradiation of each month of
// year at the given point.
func MonthlyIrradiationForYear(latitude, longitude float64, year int) Series {
	var s Series
	for i := range s {
		month := time.January + time.Month(i)
		s[i] = Sample{
			Month:       month,
			Irradiation: AverageMonthlyIrradiation(latitude, longitude, year, month),
		}
	}
	return s
}
