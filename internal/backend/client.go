package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/serenespa/admin-console/internal/refresh"
	"github.com/serenespa/admin-console/pkg/logger"
	"golang.org/x/net/publicsuffix"
)

const (
	PathLogin           = "/api/admins/login"
	PathVerify          = "/api/admins/verify"
	PathLogout          = "/api/admins/logout"
	PathRefresh         = "/refresh-token"
	PathCreateSignature = "/api/cloudinary/create-signature"

	RequestIDHeader = "X-Request-ID"
)

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RefreshTimeout time.Duration
	// Base is the underlying transport; nil uses a clone of http.DefaultTransport.
	Base http.RoundTripper
}

// Client talks to the REST backend with the admin session cookies. Every
// call except login and the refresh itself goes through the refresh gate.
type Client struct {
	rest    *resty.Client
	refresh *resty.Client
	jar     http.CookieJar
	gate    *refresh.Gate
}

func New(opts Options) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	c := &Client{jar: jar}

	c.refresh = newResty(opts.BaseURL, opts.Timeout, jar).SetTransport(base)
	c.gate = refresh.NewGate(refresh.RefresherFunc(c.Refresh), opts.RefreshTimeout)

	c.rest = newResty(opts.BaseURL, opts.Timeout, jar).SetTransport(&refresh.Transport{
		Base:   base,
		Gate:   c.gate,
		Jar:    jar,
		Exempt: exempt,
	})
	return c, nil
}

func newResty(baseURL string, timeout time.Duration, jar http.CookieJar) *resty.Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})
	r.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.WithFields(logger.Fields{
			"method":     resp.Request.Method,
			"url":        resp.Request.URL,
			"status":     resp.StatusCode(),
			"request_id": resp.Request.Header.Get(RequestIDHeader),
			"took":       resp.Time().String(),
		}).Debugf("backend call")
		return nil
	})
	return r
}

func exempt(r *http.Request) bool {
	switch r.URL.Path {
	case PathLogin, PathRefresh:
		return true
	}
	return false
}

// Gate exposes the refresh gate (metrics, tests, CLI status).
func (c *Client) Gate() *refresh.Gate { return c.gate }

// Jar returns the session cookie jar.
func (c *Client) Jar() http.CookieJar { return c.jar }

// Request starts a gated request bound to ctx.
func (c *Client) Request(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx)
}

// Check turns a resty result into an error: transport failures pass
// through, non-2xx answers become *APIError.
func Check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return newAPIError(resp.StatusCode(), resp.Body())
	}
	return nil
}
