package refresh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	srv      *httptest.Server
	token    atomic.Value // current valid access token
	original atomic.Int32
	replays  atomic.Int32
	bodies   sync.Map
}

func newFakeBackend(t *testing.T) *fakeBackend {
	fb := &fakeBackend{}
	fb.token.Store("fresh")
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("access_token")
		if err != nil || c.Value != fb.token.Load().(string) {
			fb.original.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"jwt expired"}`)
			return
		}
		fb.replays.Add(1)
		body, _ := io.ReadAll(r.Body)
		fb.bodies.Store(string(body), true)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func setCookie(t *testing.T, jar http.CookieJar, raw, value string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "access_token", Value: value, Path: "/"}})
}

func TestTransport_ConcurrentUnauthorizedRefreshOnce(t *testing.T) {
	for _, n := range []int{1, 5, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			fb := newFakeBackend(t)
			jar, _ := cookiejar.New(nil)
			setCookie(t, jar, fb.srv.URL, "stale")

			release := make(chan struct{})
			var refreshes atomic.Int32
			gate := NewGate(RefresherFunc(func(ctx context.Context) error {
				refreshes.Add(1)
				<-release
				setCookie(t, jar, fb.srv.URL, "fresh")
				return nil
			}), time.Second)

			client := &http.Client{Jar: jar, Transport: &Transport{Gate: gate, Jar: jar}}

			var wg sync.WaitGroup
			codes := make([]int, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					body := strings.NewReader(fmt.Sprintf(`{"i":%d}`, i))
					req, err := http.NewRequest(http.MethodPost, fb.srv.URL+"/api/services", io.NopCloser(body))
					require.NoError(t, err)
					resp, err := client.Do(req)
					if err != nil {
						t.Errorf("request %d: %v", i, err)
						return
					}
					defer resp.Body.Close()
					codes[i] = resp.StatusCode
				}(i)
			}

			waitFor(t, func() bool { return refreshes.Load() == 1 && gate.Pending() == n-1 })
			close(release)
			wg.Wait()

			require.Equal(t, int32(1), refreshes.Load())
			require.Equal(t, int32(n), fb.original.Load())
			require.Equal(t, int32(n), fb.replays.Load())
			for i, code := range codes {
				require.Equal(t, http.StatusOK, code, "request %d", i)
				_, ok := fb.bodies.Load(fmt.Sprintf(`{"i":%d}`, i))
				require.True(t, ok, "body of request %d replayed", i)
			}
		})
	}
}

func TestTransport_RetriedRequestNotGatedAgain(t *testing.T) {
	fb := newFakeBackend(t)
	fb.token.Store("never-matches")
	jar, _ := cookiejar.New(nil)

	var refreshes atomic.Int32
	gate := NewGate(RefresherFunc(func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	}), time.Second)
	client := &http.Client{Jar: jar, Transport: &Transport{Gate: gate, Jar: jar}}

	resp, err := client.Get(fb.srv.URL + "/api/services/getServices")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(1), refreshes.Load())
	require.Equal(t, int32(2), fb.original.Load())
	require.Equal(t, 0, gate.Pending())
}

func TestTransport_RefreshFailureRejectsWithoutReplay(t *testing.T) {
	fb := newFakeBackend(t)
	jar, _ := cookiejar.New(nil)

	gate := NewGate(RefresherFunc(func(ctx context.Context) error {
		return fmt.Errorf("refresh token revoked")
	}), time.Second)
	client := &http.Client{Jar: jar, Transport: &Transport{Gate: gate, Jar: jar}}

	_, err := client.Get(fb.srv.URL + "/api/services/inactive")
	require.ErrorIs(t, err, ErrRefreshFailed)
	require.Equal(t, int32(1), fb.original.Load())
	require.Equal(t, int32(0), fb.replays.Load())
}

func TestTransport_ExemptPassesThrough(t *testing.T) {
	fb := newFakeBackend(t)
	jar, _ := cookiejar.New(nil)

	var refreshes atomic.Int32
	gate := NewGate(RefresherFunc(func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	}), time.Second)
	client := &http.Client{Jar: jar, Transport: &Transport{
		Gate:   gate,
		Jar:    jar,
		Exempt: func(r *http.Request) bool { return r.URL.Path == "/api/admins/login" },
	}}

	resp, err := client.Post(fb.srv.URL+"/api/admins/login", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), refreshes.Load())
}

func TestTransport_ReplaysBodyWithoutGetBody(t *testing.T) {
	fb := newFakeBackend(t)
	jar, _ := cookiejar.New(nil)
	setCookie(t, jar, fb.srv.URL, "stale")
	gate := NewGate(RefresherFunc(func(ctx context.Context) error {
		setCookie(t, jar, fb.srv.URL, "fresh")
		return nil
	}), time.Second)
	tr := &Transport{Gate: gate, Jar: jar}

	body := io.NopCloser(io.MultiReader(strings.NewReader(`{"name":"Hot Stone"}`)))
	req, err := http.NewRequest(http.MethodPut, fb.srv.URL+"/api/services/updateService/2", body)
	require.NoError(t, err)
	require.Nil(t, req.GetBody)
	for _, c := range jar.Cookies(req.URL) {
		req.AddCookie(c)
	}
	contentLength := req.ContentLength

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, replayed := fb.bodies.Load(`{"name":"Hot Stone"}`)
	require.True(t, replayed)

	// the caller's request is not rewritten
	require.Nil(t, req.GetBody)
	require.Equal(t, contentLength, req.ContentLength)
	require.Equal(t, body, req.Body)
}
