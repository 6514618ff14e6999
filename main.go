package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"

	"github.com/spencer-p/sundash/pkg/data"
	"github.com/spencer-p/sundash/pkg/handlers"
	"github.com/spencer-p/sundash/pkg/metrics"
	"github.com/spencer-p/sundash/pkg/nominatim"
)

type Config struct {
	Port         string `default:"8080"`
	Prefix       string `default:"/"`
	NominatimURL string `default:"https://nominatim.openstreetmap.org/search" split_words:"true"`
	UserAgent    string `default:"sundash/1.0" split_words:"true"`
	// Database is a Postgres DSN. Without it homes are only kept in cookies.
	Database      string
	SessionKey    string `default:"deadbeef" split_words:"true"`
	EncryptionKey string `default:"deadbeef" split_words:"true"`
}

func main() {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err.Error())
	}

	opts := handlers.Options{
		Prefix: env.Prefix,
		Geocoder: &nominatim.Client{
			BaseURL:    env.NominatimURL,
			UserAgent:  env.UserAgent,
			HTTPClient: &http.Client{Timeout: 10 * time.Second},
		},
		Sessions: handlers.NewCookieStore(env.SessionKey, env.EncryptionKey),
	}
	if env.Database != "" {
		store, err := data.OpenPostgres(env.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		opts.Users = store
	} else {
		log.Printf("No database configured, homes will only be saved in sessions")
	}

	r := mux.NewRouter().StrictSlash(true)
	s := r.PathPrefix(env.Prefix).Subrouter()
	if err := handlers.Register(s, opts); err != nil {
		log.Fatal(err.Error())
	}

	srv := &http.Server{
		Handler:      metrics.LatencyHandler(r),
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Printf("Listening and serving on %s%s", srv.Addr, env.Prefix)
	log.Fatal(srv.ListenAndServe())
}
