package ultra

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogin(t *testing.T) {
	f := newFakeAPI(t)
	f.handle(http.MethodGet, "/v2/ping", respondOK)

	var mu sync.Mutex
	var form url.Values
	f.handle(http.MethodPost, tokenPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() failed: %v", err)
		}
		mu.Lock()
		form = r.PostForm
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"token_type":"Bearer","access_token":"123","expires_in":3600}`)
	})

	c := NewClient(WithBaseURL(f.URL()), WithLogger(discardLogger()))
	if err := c.Login(context.Background(), "user", "rightpass"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := url.Values{
		"grant_type": {"password"},
		"username":   {"user"},
		"password":   {"rightpass"},
	}
	for key, values := range want {
		if form.Get(key) != values[0] {
			t.Errorf("token form %s = %q, want %q", key, form.Get(key), values[0])
		}
	}

	if _, err := c.request(context.Background(), http.MethodGet, "/v2/ping", nil, nil, true); err != nil {
		t.Fatalf("request() failed: %v", err)
	}
	calls := f.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if got := calls[0].Header.Get("Authorization"); got != "Bearer 123" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer 123")
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	f := newFakeAPI(t)

	c := NewClient(WithBaseURL(f.URL()), WithLogger(discardLogger()))
	err := c.Login(context.Background(), "user", "wrongpass")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want %v", err, ErrUnauthorized)
	}
	if err.Error() != "Unauthorized" {
		t.Errorf("Login() error message = %q, want %q", err.Error(), "Unauthorized")
	}
}

func TestLogin_ServerError(t *testing.T) {
	f := newFakeAPI(t)
	f.handle(http.MethodPost, tokenPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"errorCode":500,"errorMessage":"boom"}`)
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	c := NewClient(WithBaseURL(f.URL()), WithLogger(logger))
	err := c.Login(context.Background(), "user", "rightpass")
	if err == nil {
		t.Fatal("Login() should fail on a server error")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Login() error = %v, should not be %v", err, ErrUnauthorized)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Login() error = %T, want *HTTPError", err)
	}
	if httpErr.Method != http.MethodPost {
		t.Errorf("Method = %q, want %q", httpErr.Method, http.MethodPost)
	}
	if httpErr.URL != f.URL()+tokenPath {
		t.Errorf("URL = %q, want %q", httpErr.URL, f.URL()+tokenPath)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusInternalServerError)
	}
	if !strings.Contains(httpErr.Body, "boom") {
		t.Errorf("Body = %q, want it to contain %q", httpErr.Body, "boom")
	}
	if !strings.Contains(logs.String(), `"level":"ERROR"`) || !strings.Contains(logs.String(), tokenPath) {
		t.Errorf("expected an error log for the token request, got %s", logs.String())
	}
}

func TestNew_LoginFailure(t *testing.T) {
	f := newFakeAPI(t)

	_, err := New(context.Background(), Config{
		Account:  testAccount,
		Username: testUsername,
		Password: "wrongpass",
		BaseURL:  f.URL(),
		Logger:   discardLogger(),
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("New() error = %v, want wrapped %v", err, ErrUnauthorized)
	}
	if f.Logins() != 1 {
		t.Errorf("logins = %d, want 1", f.Logins())
	}
}

func TestRequest(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectJSON bool
		wantBody   string
		wantErr    error
		wantStatus int
	}{
		{
			name:       "success returns body",
			status:     http.StatusOK,
			body:       `{"ok":true}`,
			expectJSON: true,
			wantBody:   `{"ok":true}`,
		},
		{
			name:       "401 is unauthorized regardless of body",
			status:     http.StatusUnauthorized,
			body:       `[{"errorCode":70002,"errorMessage":"Data not found."}]`,
			expectJSON: true,
			wantErr:    ErrUnauthorized,
		},
		{
			name:       "no data body with json",
			status:     http.StatusNotFound,
			body:       `[{"errorCode":70002,"errorMessage":"Data not found."}]`,
			expectJSON: true,
			wantErr:    ErrNoZonesExist,
		},
		{
			name:       "no data body without json is an http error",
			status:     http.StatusNotFound,
			body:       `[{"errorCode":70002,"errorMessage":"Data not found."}]`,
			expectJSON: false,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "other error code",
			status:     http.StatusBadRequest,
			body:       `[{"errorCode":1801,"errorMessage":"Zone does not exist in the system."}]`,
			expectJSON: true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			expectJSON: true,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "empty success without json",
			status:     http.StatusNoContent,
			expectJSON: false,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI(t)
			f.handle(http.MethodGet, "/v2/thing", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			c := NewClient(WithBaseURL(f.URL()), WithLogger(discardLogger()))
			got, err := c.request(context.Background(), http.MethodGet, "/v2/thing", nil, nil, tt.expectJSON)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("request() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantStatus != 0:
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) {
					t.Fatalf("request() error = %v, want *HTTPError", err)
				}
				if httpErr.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, tt.wantStatus)
				}
				if httpErr.Method != http.MethodGet || !strings.HasSuffix(httpErr.URL, "/v2/thing") {
					t.Errorf("HTTPError = %+v", httpErr)
				}
				if httpErr.Body != tt.body {
					t.Errorf("Body = %q, want %q", httpErr.Body, tt.body)
				}
			default:
				if err != nil {
					t.Fatalf("request() failed: %v", err)
				}
				if string(got) != tt.wantBody {
					t.Errorf("request() body = %q, want %q", got, tt.wantBody)
				}
			}
		})
	}
}

func TestRequest_SendsJSONBodyAndQuery(t *testing.T) {
	f := newFakeAPI(t)
	f.handle(http.MethodPost, "/v2/zones", respondOK)

	c := NewClient(WithBaseURL(f.URL()+"/"), WithUserAgent("ultrasync/test"), WithLogger(discardLogger()))
	query := url.Values{"limit": {"1000"}}
	body := RRSetPayload{TTL: 60, RData: []string{"1.2.3.4"}}
	if _, err := c.request(context.Background(), http.MethodPost, "/v2/zones", query, body, true); err != nil {
		t.Fatalf("request() failed: %v", err)
	}

	calls := f.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	call := calls[0]
	if call.Query != "limit=1000" {
		t.Errorf("Query = %q, want %q", call.Query, "limit=1000")
	}
	if call.Body != `{"ttl":60,"rdata":["1.2.3.4"]}` {
		t.Errorf("Body = %s", call.Body)
	}
	if got := call.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := call.Header.Get("User-Agent"); got != "ultrasync/test" {
		t.Errorf("User-Agent = %q, want %q", got, "ultrasync/test")
	}
}

func TestRequest_Timeout(t *testing.T) {
	f := newFakeAPI(t)
	f.handle(http.MethodGet, "/v2/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		respondOK(w, r)
	})

	c := NewClient(WithBaseURL(f.URL()), WithTimeout(50*time.Millisecond), WithLogger(discardLogger()))
	if _, err := c.request(context.Background(), http.MethodGet, "/v2/slow", nil, nil, true); err == nil {
		t.Fatal("request() should time out")
	}
}

func TestIsNoData(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "no data", body: `[{"errorCode":70002,"errorMessage":"Data not found."}]`, want: true},
		{name: "no data with whitespace", body: "\n [{\"errorCode\": 70002}] \n", want: true},
		{name: "other code", body: `[{"errorCode":1801}]`, want: false},
		{name: "two errors", body: `[{"errorCode":70002},{"errorCode":70002}]`, want: false},
		{name: "object", body: `{"errorCode":70002}`, want: false},
		{name: "empty", body: ``, want: false},
		{name: "not json", body: `[oops`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNoData([]byte(tt.body)); got != tt.want {
				t.Errorf("isNoData(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}
