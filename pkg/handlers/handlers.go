package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/paulmach/orb/geojson"

	"github.com/spencer-p/sundash/pkg/cache"
	"github.com/spencer-p/sundash/pkg/data"
	"github.com/spencer-p/sundash/pkg/geo"
	"github.com/spencer-p/sundash/pkg/metrics"
	"github.com/spencer-p/sundash/pkg/nominatim"
	"github.com/spencer-p/sundash/pkg/report"
)

const (
	day      = 24 * time.Hour
	cacheTTL = 1 * day

	minYear = 1
	maxYear = 9999
)

// Geocoder turns place names into coordinates.
type Geocoder interface {
	Search(ctx context.Context, q *nominatim.SearchQuery) (nominatim.Places, error)
}

// UserStore remembers where users live. It is optional.
type UserStore interface {
	Touch(id uint) (*data.User, error)
	SaveHome(id uint, name string, home geo.Coordinate) (*data.User, error)
}

// Options configure the routes installed by Register.
type Options struct {
	// Prefix the router is mounted under, with a trailing slash.
	Prefix string
	// Content holds static/. Defaults to the files built into the binary.
	Content fs.FS
	// Geocoder answers place searches.
	Geocoder Geocoder
	// Users may be nil, in which case locations only live in the session.
	Users UserStore
	// Sessions stores the visitor's last location.
	Sessions sessions.Store
}

func Register(r *mux.Router, opts Options) error {
	if opts.Content == nil {
		opts.Content = content
	}
	if opts.Prefix == "" {
		opts.Prefix = "/"
	}
	if opts.Sessions == nil {
		return errors.New("handlers need a session store")
	}
	if opts.Geocoder == nil {
		opts.Geocoder = &nominatim.Client{}
	}

	index, err := makeServerSideIndex(opts)
	if err != nil {
		return err
	}

	r.Handle("/", index).Methods(http.MethodGet)
	r.Handle("/location", makeSaveLocation(opts)).Methods(http.MethodPost)
	r.Handle("/api/v1/irradiation", makeServeIrradiation()).Methods(http.MethodGet)
	r.Handle("/api/v1/search", makeServeSearch(opts.Geocoder)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler())
	r.PathPrefix("/static/").Handler(http.StripPrefix(strings.TrimSuffix(opts.Prefix, "/"), http.FileServer(http.FS(opts.Content))))
	return nil
}

// parseYear reads the year form value, defaulting to the current year.
func parseYear(r *http.Request) (int, error) {
	s := r.FormValue("year")
	if s == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < minYear || year > maxYear {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return year, nil
}

func makeServeIrradiation() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := geo.Parse(r.FormValue("lat"), r.FormValue("lng"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Bad location: %v", err)
			return
		}
		year, err := parseYear(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Bad year: %v", err)
			return
		}

		rep := report.Build(c, year, time.UTC)
		metrics.ObserveReport()

		// serve result
		outputFormat := r.FormValue("o")
		if outputFormat == "json" {
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if err := json.NewEncoder(w).Encode(&rep); err != nil {
				log.Printf("Failed to encode JSON result: %+v", err)
			}
		} else {
			w.Header().Add("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, rep.String())
		}
	})
}

func makeServeSearch(geocoder Geocoder) http.Handler {
	// Nominatim asks that repeated queries be cached.
	searchCache := cache.NewTimed(cacheTTL)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.FormValue("q"))

		// Coordinates typed into the search box need no lookup.
		if c, ok := geo.ParseCoordinate(query); ok {
			metrics.ObserveGeocode(metrics.GeocodeCoordinate)
			fc := geojson.NewFeatureCollection()
			fc.Append(c.Feature(c.String()))
			writeGeoJSON(w, fc)
			return
		}

		key := strings.ToLower(query)
		if cached, ok := searchCache.Get(key); ok {
			metrics.ObserveGeocode(metrics.GeocodeCacheHit)
			w.Header().Add("Content-Type", "application/geo+json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		places, err := geocoder.Search(r.Context(), &nominatim.SearchQuery{Text: query})
		if errors.Is(err, nominatim.ErrQueryTooShort) {
			// Not an error, there is just nothing to suggest yet.
			places = nil
		} else if err != nil {
			metrics.ObserveGeocode(metrics.GeocodeError)
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, "Failed to search: %v", err)
			log.Printf("Failed to search for %q: %v", query, err)
			return
		} else {
			metrics.ObserveGeocode(metrics.GeocodeFetched)
		}

		blob := writeGeoJSON(w, places.Features())
		if blob != nil && len(places) > 0 {
			searchCache.Set(key, blob)
		}
	})
}

// writeGeoJSON writes v and returns what was written, or nil on failure.
func writeGeoJSON(w http.ResponseWriter, v any) []byte {
	blob, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Printf("Failed to encode GeoJSON: %v", err)
		return nil
	}
	w.Header().Add("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
	return blob
}
