package handlers

import (
	"bytes"
	"crypto/sha1"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/pbkdf2"

	"github.com/spencer-p/sundash/pkg/data"
	"github.com/spencer-p/sundash/pkg/geo"
	"github.com/spencer-p/sundash/pkg/metrics"
	"github.com/spencer-p/sundash/pkg/report"
	"github.com/spencer-p/sundash/pkg/visualize"
)

//go:embed static
var content embed.FS

const (
	sessionCookie = "sundash"
	sessionLat    = "lat"
	sessionLng    = "lng"
	sessionName   = "name"
	userID        = "userid"
	// See https://developer.chrome.com/blog/cookie-max-age-expires.
	defaultMaxAge = 60 * 60 * 24 * 400 // 400 days in seconds.
)

// NewCookieStore returns a session store signed with sessionKey and encrypted
// with a key derived from password.
func NewCookieStore(sessionKey, password string) *sessions.CookieStore {
	store := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(
			[]byte(sessionKey),
			encryptionKey(password),
		),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			Secure:   true,
			HttpOnly: true,
		},
	}
	store.MaxAge(defaultMaxAge)
	return store
}

func encryptionKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte{}, 4096, 32, sha1.New)
}

type TemplateInput struct {
	Base       string
	Coordinate geo.Coordinate
	// Located is false when the coordinate is only the default and the page
	// should ask the browser for the visitor's position.
	Located  bool
	Year     int
	PrevYear int
	NextYear int
	Name     string
	Months   []MonthRow
	Summary  report.Summary
	Chart    template.HTML
}

type MonthRow struct {
	Month       string
	Irradiation string
	Daylight    string
}

// makeServerSideIndex serves the dashboard fully rendered on the server.
func makeServerSideIndex(opts Options) (http.HandlerFunc, error) {
	indexTemplate, err := template.ParseFS(opts.Content, "static/index.template.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := opts.Sessions.Get(r, sessionCookie)
		metrics.ObserveUserRequest(session.Values[userID])

		c, located := locationFromRequest(r, session, opts.Users)
		if located {
			session.Values[sessionLat] = c.Lat
			session.Values[sessionLng] = c.Lng
		}
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		year, err := parseYear(r)
		if err != nil {
			log.Printf("Ignoring year: %v", err)
			year = time.Now().Year()
		}

		rep := report.Build(c, year, time.UTC)
		metrics.ObserveReport()

		var chart bytes.Buffer
		if _, err := visualize.NewMonthly(rep).Encode(&chart); err != nil {
			log.Printf("Failed to draw chart: %v", err)
		}

		name, _ := session.Values[sessionName].(string)
		tinput := TemplateInput{
			Base:       opts.Prefix,
			Coordinate: c,
			Located:    located,
			Year:       year,
			PrevYear:   max(year-1, minYear),
			NextYear:   min(year+1, maxYear),
			Name:       name,
			Months:     monthRows(&rep),
			Summary:    rep.Summary,
			Chart:      template.HTML(chart.String()),
		}

		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := indexTemplate.Execute(w, tinput); err != nil {
			log.Printf("Failed to execute template: %v", err)
		}
	}), nil
}

func monthRows(rep *report.Report) []MonthRow {
	rows := make([]MonthRow, len(rep.Series))
	for i := range rep.Series {
		rows[i] = MonthRow{
			Month:       rep.Series[i].Name(),
			Irradiation: fmt.Sprintf("%.2f", rep.Series[i].Irradiation),
			Daylight:    rep.Daylight[i].String(),
		}
	}
	return rows
}

// locationFromRequest picks the coordinate to show: the query string first,
// then the session, then the user's saved home. The default location is
// reported as not located.
func locationFromRequest(r *http.Request, session *sessions.Session, users UserStore) (geo.Coordinate, bool) {
	if r.FormValue("lat") != "" || r.FormValue("lng") != "" {
		c, err := geo.Parse(r.FormValue("lat"), r.FormValue("lng"))
		if err == nil {
			return c, true
		}
		log.Printf("Ignoring location: %v", err)
	}

	lat, okLat := session.Values[sessionLat].(float64)
	lng, okLng := session.Values[sessionLng].(float64)
	if c := (geo.Coordinate{Lat: lat, Lng: lng}); okLat && okLng && c.Valid() == nil {
		return c, true
	}

	if user := lookupUser(session, users); user != nil {
		if c, ok := user.Home(); ok && c.Valid() == nil {
			return c, true
		}
	}

	return geo.Default, false
}

// lookupUser finds the session's user. Note the db lookup can fail here, and
// that's fine. We'll just carry on without them.
func lookupUser(session *sessions.Session, users UserStore) *data.User {
	id, ok := session.Values[userID].(uint)
	if !ok || users == nil {
		return nil
	}
	user, err := users.Touch(id)
	if err != nil {
		log.Printf("Failed to find user %v: %v", id, err)
		return nil
	}
	return user
}

func makeSaveLocation(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := opts.Sessions.Get(r, sessionCookie)

		// Parse the form data.
		if err := r.ParseForm(); err != nil {
			msg := fmt.Sprintf("Failed to parse form: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, msg)
			return
		}

		c, err := geo.Parse(r.PostForm.Get("lat"), r.PostForm.Get("lng"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Bad location: %v", err)
			return
		}
		name := r.PostForm.Get("name")

		session.Values[sessionLat] = c.Lat
		session.Values[sessionLng] = c.Lng
		session.Values[sessionName] = name

		if opts.Users != nil {
			id, _ := session.Values[userID].(uint)
			if user, err := opts.Users.SaveHome(id, name, c); err != nil {
				// The session still has the location.
				log.Printf("Failed to save home for user %d: %v", id, err)
			} else {
				session.Values[userID] = user.ID
				log.Printf("User %d (%q) saved home %s", user.ID, user.Name, c)
			}
		}

		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		q := url.Values{}
		q.Set("year", r.PostForm.Get("year"))
		redirectTo := pathJoinPreservePrefix(opts.Prefix, "/")
		if q.Get("year") != "" {
			redirectTo += "?" + q.Encode()
		}
		http.Redirect(w, r, redirectTo, http.StatusFound)
	}
}

func pathJoinPreservePrefix(prefix string, suffix string) string {
	trimmedPrefix := path.Join(prefix, "")
	result := path.Join(prefix, suffix)
	if result == trimmedPrefix {
		return prefix
	}
	return result
}
