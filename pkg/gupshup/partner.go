package gupshup

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// PartnerClient calls the partner management API with a cached session token.
//
// The token slot is guarded by a mutex and concurrent refreshes are coalesced into a
// single login call, so a PartnerClient is safe for concurrent use.
type PartnerClient struct {
	email          string
	password       string
	transport      transport
	logger         zerolog.Logger
	now            func() time.Time
	ratingsEnabled bool

	mu    sync.Mutex
	token partnerToken
	login singleflight.Group
}

// NewPartnerClient builds a client for the partner account identified by email.
func NewPartnerClient(email, password string, opts ...Option) (*PartnerClient, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("gupshup partner: email is required")
	}
	if password == "" {
		return nil, errors.New("gupshup partner: password is required")
	}

	s := defaultSettings(DefaultPartnerURL)
	s.apply(opts)

	return &PartnerClient{
		email:          email,
		password:       password,
		transport:      transport{baseURL: s.baseURL, client: s.httpClient, logger: s.logger},
		logger:         s.logger,
		now:            s.now,
		ratingsEnabled: s.ratingsEnabled,
	}, nil
}

// PartnerToken returns the cached partner token, logging in first when there is none
// or it has expired. A failed endpoint call leaves the cache untouched.
func (c *PartnerClient) PartnerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.token
	c.mu.Unlock()
	if cached.valid(c.now()) {
		return cached.value, nil
	}

	// The login outlives any single caller's cancellation since other callers may be
	// waiting on it.
	result := c.login.DoChan("login", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *PartnerClient) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("email", c.email)
	form.Set("password", c.password)

	body, err := c.transport.do(ctx, request{method: http.MethodPost, path: "/account/login", form: form})
	if err != nil {
		return "", err
	}

	var value string
	if err := unwrap(body, "token", &value); err != nil {
		return "", err
	}
	if value == "" {
		return "", errors.New("gupshup partner: login returned an empty token")
	}

	token := partnerToken{value: value}
	if expiry, err := tokenExpiry(value); err != nil {
		c.logger.Warn().Err(err).Msg("partner token has no usable expiry; it will be refreshed on next use")
	} else {
		token.expiry = expiry
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return value, nil
}

// --- Authenticated calls ---

func (c *PartnerClient) call(ctx context.Context, r request) ([]byte, error) {
	token, err := c.PartnerToken(ctx)
	if err != nil {
		return nil, err
	}
	if r.header == nil {
		r.header = http.Header{}
	}
	r.header.Set("token", token)
	r.header.Set("authorization", token)
	return c.transport.do(ctx, r)
}

func (c *PartnerClient) fetch(ctx context.Context, path string, query url.Values, field string, out any) error {
	body, err := c.call(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return unwrap(body, field, out)
}

func (c *PartnerClient) submit(ctx context.Context, method, path string, form url.Values, field string, out any) error {
	body, err := c.call(ctx, request{method: method, path: path, form: form})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return unwrap(body, field, out)
}

func (c *PartnerClient) remove(ctx context.Context, path string) error {
	_, err := c.call(ctx, request{method: http.MethodDelete, path: path})
	return err
}
