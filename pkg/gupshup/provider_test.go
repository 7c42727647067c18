package gupshup

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type recordedRequest struct {
	Method   string
	Path     string
	RawPath  string
	RawQuery string
	Query    url.Values
	Header   http.Header
	Form     url.Values
	Body     []byte
}

// fakeProvider is an httptest server that records every request and answers from
// registered routes keyed by "METHOD /path".
type fakeProvider struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	f := &fakeProvider{routes: map[string]http.HandlerFunc{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		rec := recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawPath:  r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
			Header:   r.Header.Clone(),
			Body:     body,
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			rec.Form, _ = url.ParseQuery(string(body))
		}

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		route := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if route == nil {
			http.NotFound(w, r)
			return
		}
		route(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeProvider) handleFunc(method, path string, handler http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = handler
}

func (f *fakeProvider) respond(method, path string, status int, body any) {
	f.handleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

// login answers /account/login with the given tokens in order, repeating the last one.
func (f *fakeProvider) login(tokens ...string) {
	var mu sync.Mutex
	next := 0
	f.handleFunc(http.MethodPost, "/account/login", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		token := tokens[next]
		if next < len(tokens)-1 {
			next++
		}
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	})
}

func (f *fakeProvider) requestsTo(method, path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []recordedRequest
	for _, rec := range f.requests {
		if rec.Method == method && rec.Path == path {
			matched = append(matched, rec)
		}
	}
	return matched
}

func (f *fakeProvider) all() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "partner-1",
		ExpiresAt: exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// testClock is a mutable clock for expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestPartner(t *testing.T, f *fakeProvider, clock *testClock, opts ...Option) *PartnerClient {
	t.Helper()
	opts = append([]Option{WithBaseURL(f.server.URL), WithClock(clock.Now)}, opts...)
	client, err := NewPartnerClient("a@b.com", "pw", opts...)
	require.NoError(t, err)
	return client
}
