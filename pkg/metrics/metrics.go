package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "sundash",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	reportsComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "reports_computed_total",
			Subsystem: "sundash",
			Help:      "Irradiation reports computed.",
		},
	)

	geocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "geocode_lookups_total",
			Subsystem: "sundash",
			Help:      "Place searches by how they were answered.",
		},
		[]string{"result"},
	)

	userRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "user_requests_total",
			Subsystem: "sundash",
			Help:      "Page views by whether the visitor has saved a location.",
		},
		[]string{"known"},
	)
)

// Results for ObserveGeocode.
const (
	GeocodeCoordinate = "coordinate"
	GeocodeCacheHit   = "cache_hit"
	GeocodeFetched    = "fetched"
	GeocodeError      = "error"
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		reportsComputed,
		geocodeLookups,
		userRequests,
	)
}

// Handler serves the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

func ObserveReport() {
	reportsComputed.Inc()
}

func ObserveGeocode(result string) {
	geocodeLookups.WithLabelValues(result).Inc()
}

// ObserveUserRequest counts a page view. id is the session's user ID, if any.
func ObserveUserRequest(id any) {
	userRequests.WithLabelValues(strconv.FormatBool(id != nil)).Inc()
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, rec.code(), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) code() string {
	if r.status == 0 {
		// Unset, will be set to 200 by stdlib.
		return "200"
	}
	return strconv.Itoa(r.status)
}
