package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/gorilla/mux"
)

// FakeToken is the credential handed out by the fake's login routes.
const FakeToken = "fake-token"

// Call is one request received by a [FakeBackend].
type Call struct {
	Method string
	Path   string
	// Route is the matched path template, e.g. "/watched/{id}".
	Route string
	Auth  string
	Body  []byte
}

// Decode unmarshals the call's body into v.
func (c Call) Decode(v any) error { return json.Unmarshal(c.Body, v) }

type failure struct {
	status  int
	message string
}

// Gate holds requests to one route until released.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Arrived receives once per request that reached the gate.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets every held and future request through.
func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// FakeBackend is an in-process watchlist server that records every call.
//
// Entries, settings and follows are kept in memory and mutated the way the
// real server does. Any route can be made to fail with [FakeBackend.Fail] or
// held open with [FakeBackend.Hold].
type FakeBackend struct {
	Server *httptest.Server
	// RequireAuth rejects non-/auth requests whose Authorization header is
	// not [FakeToken] with 401.
	RequireAuth bool

	mu        sync.Mutex
	calls     []Call
	entries   []models.Entry
	settings  models.UserSettings
	follows   []models.Follow
	features  models.ServerFeatures
	jellyfin  models.JellyfinFoundContent
	providers models.AuthProviders
	failures  map[string]failure
	gates     map[string]*Gate
	nextID    uint
	now       func() time.Time
}

// NewFakeBackend starts a fake server that is closed when t finishes.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		failures:  make(map[string]failure),
		gates:     make(map[string]*Gate),
		features:  models.ServerFeatures{},
		providers: models.AuthProviders{Available: []string{"plex"}},
		nextID:    100,
		now:       func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(func() {
		b.mu.Lock()
		for _, g := range b.gates {
			g.Release()
		}
		b.mu.Unlock()
		b.Server.Close()
	})
	return b
}

// URL is the fake's base URL.
func (b *FakeBackend) URL() string { return b.Server.URL }

func (b *FakeBackend) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.record)

	r.HandleFunc("/auth/", b.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/plex", b.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/jellyfin", b.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", b.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/available", b.authAvailable).Methods(http.MethodGet)
	r.HandleFunc("/auth/change_password", b.ok).Methods(http.MethodPost)

	r.HandleFunc("/watched", b.listWatched).Methods(http.MethodGet)
	r.HandleFunc("/watched", b.addWatched).Methods(http.MethodPost)
	r.HandleFunc("/game/played", b.addPlayed).Methods(http.MethodPost)
	r.HandleFunc("/watched/{id}", b.updateWatched).Methods(http.MethodPut)
	r.HandleFunc("/watched/{id}", b.removeWatched).Methods(http.MethodDelete)
	r.HandleFunc("/watched/{id}/tag/{tagId}", b.ok).Methods(http.MethodPost, http.MethodDelete)

	r.HandleFunc("/activity/{id}", b.ok).Methods(http.MethodPut, http.MethodDelete)

	r.HandleFunc("/user/settings", b.userSettings).Methods(http.MethodGet)
	r.HandleFunc("/user/update", b.userUpdate).Methods(http.MethodPost)

	r.HandleFunc("/features", b.serverFeatures).Methods(http.MethodGet)

	r.HandleFunc("/follow", b.listFollows).Methods(http.MethodGet)
	r.HandleFunc("/follow/{id}", b.follow).Methods(http.MethodPost)
	r.HandleFunc("/follow/{id}", b.ok).Methods(http.MethodDelete)

	r.HandleFunc("/jellyfin/{type}/{name}/{tmdbId}", b.jellyfinFind).Methods(http.MethodGet)
	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		body, _ := io.ReadAll(r.Body)
		call := Call{Method: r.Method, Path: r.URL.Path, Route: route, Auth: r.Header.Get("Authorization"), Body: body}
		key := r.Method + " " + route

		b.mu.Lock()
		b.calls = append(b.calls, call)
		f, failing := b.failures[key]
		gate := b.gates[key]
		requireAuth := b.RequireAuth
		b.mu.Unlock()

		if gate != nil {
			gate.arrived <- struct{}{}
			<-gate.release
		}

		if requireAuth && !isAuth(route) && call.Auth != FakeToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if failing {
			writeJSON(w, f.status, models.ErrorResponse{Error: f.message})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request to method and route respond with status and,
// when message is set, an {"error": message} body.
func (b *FakeBackend) Fail(method, route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+route] = failure{status: status, message: message}
}

// Heal removes a failure set by [FakeBackend.Fail].
func (b *FakeBackend) Heal(method, route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+route)
}

// Hold parks requests to method and route until the returned gate is
// released. The gate buffers up to 16 arrivals.
func (b *FakeBackend) Hold(method, route string) *Gate {
	g := &Gate{arrived: make(chan struct{}, 16), release: make(chan struct{})}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gates[method+" "+route] = g
	return g
}

// Calls returns every request received so far.
func (b *FakeBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// CallsTo returns the requests received for method and route.
func (b *FakeBackend) CallsTo(method, route string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded calls.
func (b *FakeBackend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// SetEntries replaces the server's watched list.
func (b *FakeBackend) SetEntries(list []models.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = cloneEntries(list)
}

// Entries returns the server's watched list.
func (b *FakeBackend) Entries() []models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneEntries(b.entries)
}

// SetSettings replaces the user's server-side settings.
func (b *FakeBackend) SetSettings(s models.UserSettings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings = s
}

// SetFeatures replaces the reported server features.
func (b *FakeBackend) SetFeatures(f models.ServerFeatures) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.features = f
}

// SetJellyfin sets the answer to every Jellyfin lookup.
func (b *FakeBackend) SetJellyfin(c models.JellyfinFoundContent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jellyfin = c
}

// SetFollows replaces the user's follows.
func (b *FakeBackend) SetFollows(f []models.Follow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.follows = slices.Clone(f)
}

func (b *FakeBackend) ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (b *FakeBackend) login(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.AuthResponse{Token: FakeToken})
}

func (b *FakeBackend) authAvailable(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.providers)
}

func (b *FakeBackend) listWatched(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.entries
	if list == nil {
		list = []models.Entry{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *FakeBackend) addWatched(w http.ResponseWriter, r *http.Request) {
	var req models.WatchedAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	e := models.Entry{Content: &models.Content{TmdbID: req.ContentID, Type: req.ContentType, Title: fmt.Sprintf("%s %d", req.ContentType, req.ContentID)}}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.Rating != nil {
		e.Rating = *req.Rating
	}
	writeJSON(w, http.StatusOK, b.insert(e))
}

func (b *FakeBackend) addPlayed(w http.ResponseWriter, r *http.Request) {
	var req models.PlayedAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	e := models.Entry{Game: &models.Game{IgdbID: req.IgdbID, Name: fmt.Sprintf("game %d", req.IgdbID)}}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.Rating != nil {
		e.Rating = *req.Rating
	}
	writeJSON(w, http.StatusOK, b.insert(e))
}

func (b *FakeBackend) insert(e models.Entry) models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	e.ID = b.nextID
	e.CreatedAt = b.now()
	e.UpdatedAt = e.CreatedAt
	b.nextID++
	e.Activity = []models.Activity{{ID: b.nextID, WatchedID: e.ID, Type: models.ActivityAddedWatched, CreatedAt: e.CreatedAt}}
	b.entries = append(b.entries, e.Clone())
	return e
}

func (b *FakeBackend) updateWatched(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req models.WatchedUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.entries, func(e models.Entry) bool { return e.ID == uint(id) })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "watched entry not found"})
		return
	}

	a := models.Activity{WatchedID: uint(id), CreatedAt: b.now()}
	e := &b.entries[i]
	switch {
	case req.Status != nil:
		e.Status = *req.Status
		a.Type, a.Data = models.ActivityStatusChanged, string(*req.Status)
	case req.Rating != nil:
		e.Rating = *req.Rating
		a.Type, a.Data = models.ActivityRatingChanged, strconv.FormatFloat(*req.Rating, 'f', -1, 64)
	case req.Thoughts != nil:
		e.Thoughts = *req.Thoughts
		a.Type = models.ActivityThoughtsChanged
	case req.RemoveThoughts:
		e.Thoughts = ""
		a.Type = models.ActivityThoughtsRemoved
	}
	b.nextID++
	a.ID = b.nextID
	e.Activity = append(e.Activity, a)
	e.UpdatedAt = a.CreatedAt

	writeJSON(w, http.StatusOK, models.WatchedUpdateResponse{NewActivity: &a})
}

func (b *FakeBackend) removeWatched(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = slices.DeleteFunc(b.entries, func(e models.Entry) bool { return e.ID == uint(id) })
	w.WriteHeader(http.StatusOK)
}

func (b *FakeBackend) userSettings(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.settings)
}

func (b *FakeBackend) userUpdate(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	next := b.settings
	for name, raw := range patch {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		updated, err := next.WithField(name, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		next = updated
	}
	b.settings = next
	w.WriteHeader(http.StatusOK)
}

func (b *FakeBackend) serverFeatures(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.features)
}

func (b *FakeBackend) listFollows(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.follows
	if list == nil {
		list = []models.Follow{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *FakeBackend) follow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f := models.Follow{CreatedAt: b.now(), FollowedUser: models.PublicUser{ID: uint(id), Username: fmt.Sprintf("user%d", id)}}
	b.mu.Lock()
	b.follows = append(b.follows, f)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

func (b *FakeBackend) jellyfinFind(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.jellyfin)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func cloneEntries(list []models.Entry) []models.Entry {
	out := make([]models.Entry, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}

func isAuth(route string) bool {
	return len(route) >= 5 && route[:5] == "/auth"
}
