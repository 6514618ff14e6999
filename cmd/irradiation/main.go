package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spencer-p/sundash/pkg/geo"
	"github.com/spencer-p/sundash/pkg/report"
)

func main() {
	lat := flag.Float64("lat", geo.Default.Lat, "latitude in degrees")
	lng := flag.Float64("lng", geo.Default.Lng, "longitude in degrees")
	year := flag.Int("year", time.Now().Year(), "calendar year")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	c := geo.Coordinate{Lat: *lat, Lng: *lng}
	if err := c.Valid(); err != nil {
		fmt.Fprintf(os.Stderr, "bad location: %v\n", err)
		os.Exit(2)
	}

	rep := report.Build(c, *year, time.UTC)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&rep); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(rep.String())
}
