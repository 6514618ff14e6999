package nominatim

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/spencer-p/sundash/pkg/geo"
)

// SearchQuery is a free text place search; see Client.Search.
type SearchQuery struct {
	Text string
	// Limit caps the number of results. Zero means the package default.
	Limit int
}

// Place is a single search result.
type Place struct {
	DisplayName string  `json:"display_name"`
	Lat         Degrees `json:"lat"`
	Lon         Degrees `json:"lon"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
}

// Places is a list of search results, best match first.
type Places []Place

// Verify the custom types can be unmarshaled
var _ json.Unmarshaler = new(Degrees)

// Degrees is an angle that Nominatim encodes as a JSON string.
type Degrees float64

func (d *Degrees) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		// Be lenient with servers that send plain numbers.
		var f float64
		if numErr := json.Unmarshal(buf, &f); numErr != nil {
			return fmt.Errorf("degrees %q not string: %w", buf, err)
		}
		*d = Degrees(f)
		return nil
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("degrees %q not a float: %w", s, err)
	}
	*d = Degrees(parsed)
	return nil
}

// Coordinate returns the place's location.
func (p Place) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: float64(p.Lat), Lng: float64(p.Lon)}
}

func (p Place) String() string {
	return fmt.Sprintf("%s (%s)", p.DisplayName, p.Coordinate())
}

// Features converts the places to GeoJSON for the map, skipping any with
// coordinates out of range.
func (ps Places) Features() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range ps {
		c := p.Coordinate()
		if c.Valid() != nil {
			continue
		}
		f := c.Feature(p.DisplayName)
		f.Properties["type"] = p.Type
		f.Properties["importance"] = p.Importance
		fc.Append(f)
	}
	return fc
}
