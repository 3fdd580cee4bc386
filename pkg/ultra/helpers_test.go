package ultra

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const (
	testAccount  = "Test-Account"
	testUsername = "user"
	testPassword = "rightpass"
	testToken    = "123"
)

// apiCall is one request seen by fakeAPI, token requests excluded.
type apiCall struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

// fakeAPI is an httptest-backed stand-in for the UltraDNS REST API.
// Routes are keyed by "METHOD /path"; unmatched requests go to fallback,
// or get a 404 with the "data not found" body.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	calls  []apiCall
	logins int
	routes map[string]http.HandlerFunc

	// fallback serves unmatched requests when set
	fallback http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{t: t, routes: make(map[string]http.HandlerFunc)}
	f.handle(http.MethodPost, tokenPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "password" ||
			r.PostForm.Get("username") != testUsername ||
			r.PostForm.Get("password") != testPassword {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"errorCode":60001,"errorMessage":"invalid_grant:Invalid username & password combination."}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"token_type":"Bearer","refresh_token":"abc","access_token":"`+testToken+`","expires_in":3600}`)
	})

	f.server = httptest.NewServer(f)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok && f.fallback != nil {
		h, ok = f.fallback, true
	}
	if r.URL.Path == tokenPath {
		f.logins++
	} else {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.calls = append(f.calls, apiCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Header: r.Header.Clone(),
		})
	}
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, `[{"errorCode":70002,"errorMessage":"Data not found."}]`)
		return
	}
	h(w, r)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) Logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func (f *fakeAPI) URL() string {
	return f.server.URL
}

// newTestProvider logs in to f and returns a ready Provider.
func newTestProvider(t *testing.T, f *fakeAPI) *Provider {
	t.Helper()

	p, err := New(context.Background(), Config{
		Account:  testAccount,
		Username: testUsername,
		Password: testPassword,
		BaseURL:  f.URL(),
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// fixture returns a handler serving testdata/name with status 200.
func fixture(t *testing.T, name string) http.HandlerFunc {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, string(data))
	}
}

// respondOK responds 200 with an empty JSON object.
func respondOK(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, `{}`)
}

// routeZones serves the two-page zone listing fixtures.
func routeZones(t *testing.T, f *fakeAPI) {
	page1 := fixture(t, "zones-page-1.json")
	page2 := fixture(t, "zones-page-2.json")
	f.handle(http.MethodGet, "/v3/zones", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "b2N0b2RuczE4LnRlc3QuOk5FWFQK" {
			page2(w, r)
			return
		}
		page1(w, r)
	})
}

// routeRecords serves the two-page rrset fixtures for octodns1.test.
func routeRecords(t *testing.T, f *fakeAPI) {
	page1 := fixture(t, "records-page-1.json")
	page2 := fixture(t, "records-page-2.json")
	f.handle(http.MethodGet, "/v2/zones/octodns1.test./rrsets", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "10" {
			page2(w, r)
			return
		}
		page1(w, r)
	})
}
