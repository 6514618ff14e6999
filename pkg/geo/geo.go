// Package geo holds the coordinate type shared by the dashboard and converts
// coordinates to GeoJSON for the map.
package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a point on the Earth in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var (
	// Default is where the map starts when the browser cannot tell us where
	// the user is.
	Default = Coordinate{51.505, -0.09}

	coordRegex = regexp.MustCompile(`^-?\d+(\.\d+)?,\s*-?\d+(\.\d+)?$`)
)

// Valid returns an error wrapping ErrInvalidCoordinate if c is not finite or
// lies outside [-90, 90] x [-180, 180].
func (c Coordinate) Valid() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v: %w", c.Lat, ErrInvalidCoordinate)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %v: %w", c.Lng, ErrInvalidCoordinate)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

// Point returns c as an orb point, which orders longitude first.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Feature returns c as a GeoJSON point feature labelled with name.
func (c Coordinate) Feature(name string) *geojson.Feature {
	f := geojson.NewFeature(c.Point())
	f.Properties["name"] = name
	return f
}

// FromPoint is the inverse of Coordinate.Point.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// Parse reads a latitude and longitude from strings, as found in form values.
func Parse(lat, lng string) (Coordinate, error) {
	var c Coordinate
	var err error
	if c.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return c, fmt.Errorf("latitude %q: %w", lat, ErrInvalidCoordinate)
	}
	if c.Lng, err = strconv.ParseFloat(strings.TrimSpace(lng), 64); err != nil {
		return c, fmt.Errorf("longitude %q: %w", lng, ErrInvalidCoordinate)
	}
	return c, c.Valid()
}

// ParseCoordinate recognizes a search query that is already a "lat, lng" pair
// so it can skip geocoding.
func ParseCoordinate(query string) (Coordinate, bool) {
	query = strings.TrimSpace(query)
	if !coordRegex.MatchString(query) {
		return Coordinate{}, false
	}
	parts := strings.SplitN(query, ",", 2)
	c, err := Parse(parts[0], parts[1])
	if err != nil {
		return Coordinate{}, false
	}
	return c, true
}
