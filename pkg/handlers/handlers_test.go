package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/spencer-p/sundash/pkg/data"
	"github.com/spencer-p/sundash/pkg/geo"
	"github.com/spencer-p/sundash/pkg/nominatim"
)

type fakeGeocoder struct {
	calls  int
	places nominatim.Places
	err    error
}

func (g *fakeGeocoder) Search(ctx context.Context, q *nominatim.SearchQuery) (nominatim.Places, error) {
	g.calls++
	if len(q.Text) < 3 {
		return nil, nominatim.ErrQueryTooShort
	}
	return g.places, g.err
}

type fakeUsers struct {
	users map[uint]*data.User
	err   error
}

func (u *fakeUsers) Touch(id uint) (*data.User, error) {
	if user, ok := u.users[id]; ok {
		return user, nil
	}
	return nil, errors.New("no such user")
}

func (u *fakeUsers) SaveHome(id uint, name string, home geo.Coordinate) (*data.User, error) {
	if u.err != nil {
		return nil, u.err
	}
	if id == 0 {
		id = uint(len(u.users) + 1)
	}
	user := &data.User{Name: name, HomeLat: &home.Lat, HomeLng: &home.Lng}
	user.ID = id
	u.users[id] = user
	return user, nil
}

func newRouter(t *testing.T, opts Options) *mux.Router {
	t.Helper()
	if opts.Sessions == nil {
		opts.Sessions = sessions.NewCookieStore([]byte("test-session-key"))
	}
	r := mux.NewRouter().StrictSlash(true)
	if err := Register(r, opts); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestServeIrradiation(t *testing.T) {
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{}})

	table := []struct {
		name       string
		query      string
		wantStatus int
		wantPrefix string
	}{
		{"text", "lat=45&lng=-93&year=2024", http.StatusOK, "45.000000, -93.000000 in 2024\nJanuary: "},
		{"json", "lat=45&lng=-93&year=2024&o=json", http.StatusOK, `{"lat":45,"lng":-93,"year":2024,"months":[{"month":"January",`},
		{"missing lng", "lat=45", http.StatusBadRequest, "Bad location"},
		{"latitude out of range", "lat=91&lng=0", http.StatusBadRequest, "Bad location"},
		{"not a number", "lat=north&lng=0", http.StatusBadRequest, "Bad location"},
		{"bad year", "lat=45&lng=-93&year=soon", http.StatusBadRequest, "Bad year"},
		{"year zero", "lat=45&lng=-93&year=0", http.StatusBadRequest, "Bad year"},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(r, httptest.NewRequest("GET", "/api/v1/irradiation?"+tc.query, nil))
			if rec.Code != tc.wantStatus {
				t.Errorf("got status %d, wanted %d: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if !strings.HasPrefix(rec.Body.String(), tc.wantPrefix) {
				t.Errorf("body %q does not start with %q", rec.Body.String(), tc.wantPrefix)
			}
		})
	}
}

func TestServeIrradiationJSON(t *testing.T) {
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{}})
	rec := serve(r, httptest.NewRequest("GET", "/api/v1/irradiation?lat=90&lng=0&year=2024&o=json", nil))

	var got struct {
		Months []struct {
			Month       string  `json:"month"`
			Irradiation float64 `json:"irradiation"`
		} `json:"months"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json %q: %v", rec.Body.String(), err)
	}

	var names []string
	for _, m := range got.Months {
		names = append(names, m.Month)
		if m.Irradiation < 0 {
			t.Errorf("%s: negative irradiation %g", m.Month, m.Irradiation)
		}
	}
	want := []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("wrong months (-want,+got):\n%s", diff)
	}
}

type featureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func TestServeSearch(t *testing.T) {
	g := &fakeGeocoder{places: nominatim.Places{{
		DisplayName: "Santa Cruz, California, United States",
		Lat:         36.9741171,
		Lon:         -122.0307963,
	}}}
	r := newRouter(t, Options{Geocoder: g})

	search := func(q string) (*httptest.ResponseRecorder, featureCollection) {
		rec := serve(r, httptest.NewRequest("GET", "/api/v1/search?q="+url.QueryEscape(q), nil))
		var fc featureCollection
		if rec.Code == http.StatusOK {
			if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
				t.Fatalf("bad json %q: %v", rec.Body.String(), err)
			}
		}
		return rec, fc
	}

	// Coordinates never reach the geocoder.
	rec, fc := search("36.97, -122.03")
	if rec.Code != http.StatusOK || len(fc.Features) != 1 {
		t.Fatalf("got %d with %d features", rec.Code, len(fc.Features))
	}
	if diff := cmp.Diff([]float64{-122.03, 36.97}, fc.Features[0].Geometry.Coordinates); diff != "" {
		t.Errorf("wrong coordinates (-want,+got):\n%s", diff)
	}
	if g.calls != 0 {
		t.Errorf("geocoder called %d times for a coordinate", g.calls)
	}

	// Place names are looked up once and then cached.
	for i := 0; i < 3; i++ {
		rec, fc = search("Santa Cruz")
		if rec.Code != http.StatusOK || len(fc.Features) != 1 {
			t.Fatalf("got %d with %d features", rec.Code, len(fc.Features))
		}
		if got := fc.Features[0].Properties["name"]; got != "Santa Cruz, California, United States" {
			t.Errorf("got name %v", got)
		}
	}
	if g.calls != 1 {
		t.Errorf("geocoder called %d times, wanted 1", g.calls)
	}

	// Short queries have no suggestions.
	rec, fc = search("sa")
	if rec.Code != http.StatusOK || len(fc.Features) != 0 {
		t.Errorf("got %d with %d features for a short query", rec.Code, len(fc.Features))
	}
}

func TestServeSearchError(t *testing.T) {
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{err: errors.New("nominatim is down")}})
	rec := serve(r, httptest.NewRequest("GET", "/api/v1/search?q=london", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusBadGateway)
	}
}

func TestIndex(t *testing.T) {
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{}})

	rec := serve(r, httptest.NewRequest("GET", "/?lat=60&lng=10.5&year=2024", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<span id="lat">60.000000</span>`,
		`<span id="lng">10.500000</span>`,
		`data-located="true"`,
		"<td>January</td>",
		"<td>December</td>",
		"<svg",
		"peaking in June",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page is missing %q", want)
		}
	}

	// Without a location the page falls back to the default and asks the
	// browser instead.
	rec = serve(r, httptest.NewRequest("GET", "/", nil))
	if !strings.Contains(rec.Body.String(), `data-located="false"`) {
		t.Errorf("default location should not count as located")
	}
	if !strings.Contains(rec.Body.String(), `<span id="lat">51.505000</span>`) {
		t.Errorf("default location not shown")
	}
}

func TestSaveLocation(t *testing.T) {
	users := &fakeUsers{users: map[uint]*data.User{}}
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{}, Users: users})

	form := url.Values{"lat": {"-33.86"}, "lng": {"151.21"}, "name": {"sydney"}, "year": {"2023"}}
	req := httptest.NewRequest("POST", "/location", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(r, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/?year=2023" {
		t.Errorf("redirected to %q", got)
	}
	home, ok := users.users[1].Home()
	if !ok || home != (geo.Coordinate{Lat: -33.86, Lng: 151.21}) {
		t.Errorf("saved home %v, %t", home, ok)
	}

	// The session remembers the location on the next visit.
	req = httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = serve(r, req)
	body := rec.Body.String()
	if !strings.Contains(body, `<span id="lat">-33.860000</span>`) || !strings.Contains(body, `value="sydney"`) {
		t.Errorf("saved location not shown:\n%s", body)
	}
}

func TestSaveLocationRejectsBadInput(t *testing.T) {
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{}})

	form := url.Values{"lat": {"100"}, "lng": {"0"}}
	req := httptest.NewRequest("POST", "/location", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := serve(r, req); rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLocationFromHome(t *testing.T) {
	lat, lng := 36.9741, -122.0308
	users := &fakeUsers{users: map[uint]*data.User{7: {Name: "spencer", HomeLat: &lat, HomeLng: &lng}}}
	session := sessions.NewSession(sessions.NewCookieStore([]byte("k")), sessionCookie)
	session.Values[userID] = uint(7)

	got, located := locationFromRequest(httptest.NewRequest("GET", "/", nil), session, users)
	if !located || got != (geo.Coordinate{Lat: lat, Lng: lng}) {
		t.Errorf("got %v, %t", got, located)
	}

	// A location in the request wins over the saved home.
	got, _ = locationFromRequest(httptest.NewRequest("GET", "/?lat=1&lng=2", nil), session, users)
	if got != (geo.Coordinate{Lat: 1, Lng: 2}) {
		t.Errorf("got %v", got)
	}
}

func TestStatic(t *testing.T) {
	r := newRouter(t, Options{Geocoder: &fakeGeocoder{}})
	rec := serve(r, httptest.NewRequest("GET", "/static/app.js", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "debounce(handleSearch, 300)") {
		t.Errorf("got status %d serving app.js", rec.Code)
	}
}

func TestPathJoinPreservePrefix(t *testing.T) {
	table := []struct {
		prefix, suffix, want string
	}{
		{"/", "/", "/"},
		{"/sundash/", "/", "/sundash/"},
		{"/sundash/", "/location", "/sundash/location"},
	}
	for _, tc := range table {
		if got := pathJoinPreservePrefix(tc.prefix, tc.suffix); got != tc.want {
			t.Errorf("pathJoinPreservePrefix(%q, %q) = %q, wanted %q", tc.prefix, tc.suffix, got, tc.want)
		}
	}
}
