package refresh

import (
	"bytes"
	"io"
	"net/http"
)

// Transport replays requests that fail with 401 after the gate has renewed
// the session. Cookies are re-read from Jar on replay because the refresh
// call rotates them.
type Transport struct {
	Base http.RoundTripper
	Gate *Gate
	Jar  http.CookieJar
	// Exempt requests pass through untouched (login, the refresh call itself).
	Exempt func(*http.Request) bool
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Gate == nil || (t.Exempt != nil && t.Exempt(req)) {
		return t.base().RoundTrip(req)
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		buffered, err := bufferBody(req)
		if err != nil {
			return nil, err
		}
		req = buffered
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	ctx := req.Context()
	if IsRetried(ctx) {
		return resp, nil
	}

	drain(resp)
	if err := t.Gate.Await(ctx); err != nil {
		return nil, err
	}

	replay := req.Clone(WithRetried(ctx))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}
	if t.Jar != nil {
		replay.Header.Del("Cookie")
		for _, c := range t.Jar.Cookies(replay.URL) {
			replay.AddCookie(c)
		}
	}
	return t.base().RoundTrip(replay)
}

// bufferBody reads the body once and returns a clone that can replay it.
// The caller's request is left as it was, apart from its consumed body.
func bufferBody(req *http.Request) (*http.Request, error) {
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(data))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	out.ContentLength = int64(len(data))
	return out, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
