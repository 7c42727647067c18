// Package gupshup is a typed client for the Gupshup WhatsApp messaging and partner APIs.
//
// Two independent facades are provided: Sender posts outbound messages with a static
// API key, and PartnerClient manages templates, apps and reporting with a cached
// partner session token.
package gupshup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMessageURL = "https://api.gupshup.io/sm/api/v1/msg"
	DefaultPartnerURL = "https://partner.gupshup.io/partner"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises a Sender or a PartnerClient. Options that only make sense for one
// of them are ignored by the other.
type Option func(*settings)

type settings struct {
	baseURL        string
	httpClient     HTTPClient
	logger         zerolog.Logger
	now            func() time.Time
	sourceName     string
	ratingsEnabled bool
}

func defaultSettings(baseURL string) settings {
	return settings{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		logger:         zerolog.Nop(),
		now:            time.Now,
		ratingsEnabled: true,
	}
}

func (s *settings) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
}

// WithHTTPClient overrides the HTTP client. Timeouts are configured here; the
// clients themselves never retry or time out on their own.
func WithHTTPClient(client HTTPClient) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithBaseURL points the client at another API root. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithLogger enables debug tracing of outbound requests.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithClock overrides the clock used to check partner token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSourceName sets the src.name form field sent with every message. Sender only.
func WithSourceName(name string) Option {
	return func(s *settings) {
		s.sourceName = strings.TrimSpace(name)
	}
}

// WithoutRatings makes CheckQualityRatingAndMessagingLimits fail with
// ErrNotImplemented without calling the API. PartnerClient only.
func WithoutRatings() Option {
	return func(s *settings) {
		s.ratingsEnabled = false
	}
}

// --- Transport ---

type transport struct {
	baseURL string
	client  HTTPClient
	logger  zerolog.Logger
}

type request struct {
	method      string
	path        string
	query       url.Values
	form        url.Values
	body        io.Reader
	contentType string
	header      http.Header
}

// do issues exactly one HTTP request and returns the response body. Non-2xx responses
// come back as *APIError together with the body; failures before a response is read
// come back as *TransportError.
func (t *transport) do(ctx context.Context, r request) ([]byte, error) {
	endpoint := t.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	body, contentType := r.body, r.contentType
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("gupshup: new request: %w", err)
	}
	for key, values := range r.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: r.method, Path: r.path, Err: fmt.Errorf("read body: %w", err)}
	}

	t.logger.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("gupshup request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, &APIError{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}

// unwrap extracts a dotted field such as "token.token" from a JSON envelope into out.
// A missing or null field leaves out untouched.
func unwrap(body []byte, field string, out any) error {
	raw := json.RawMessage(body)
	for _, key := range strings.Split(field, ".") {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("gupshup: decode response envelope: %w", err)
		}
		next, ok := envelope[key]
		if !ok {
			return nil
		}
		raw = next
	}
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gupshup: decode %s: %w", field, err)
	}
	return nil
}

func appPath(appID, suffix string) string {
	return "/app/" + url.PathEscape(appID) + suffix
}
