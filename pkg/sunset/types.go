package sunset

import (
	"fmt"
	"time"
)

// Place is a lat/long coordinate on the Earth matched with its time zone.
type Place struct {
	Lat, Long float64
	Location  *time.Location
}

// Daylight describes the sun's passage over a Place on one representative day
// of a month. Sunrise and Sunset are zero when the sun never crosses the
// horizon that day.
type Daylight struct {
	Month   time.Month    `json:"month"`
	Sunrise time.Time     `json:"sunrise"`
	Sunset  time.Time     `json:"sunset"`
	Length  time.Duration `json:"length"`
}

// Polar reports whether the sun stayed up or down all day.
func (d *Daylight) Polar() bool {
	return d.Sunrise.IsZero() || d.Sunset.IsZero()
}

func (d *Daylight) String() string {
	month := d.Month.String()[:3]
	if d.Polar() {
		return fmt.Sprintf("%s %s (%s)",
			month,
			func() string {
				if d.Length > 0 {
					return "polar day"
				} else {
					return "polar night"
				}
			}(),
			hoursMinutes(d.Length))
	}
	return fmt.Sprintf("%s %s-%s (%s)",
		month,
		d.Sunrise.Format("15:04"),
		d.Sunset.Format("15:04"),
		hoursMinutes(d.Length))
}

func hoursMinutes(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
