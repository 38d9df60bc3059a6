package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/admins"
	"github.com/serenespa/admin-console/internal/backend"
	"github.com/serenespa/admin-console/internal/catalog"
	"github.com/serenespa/admin-console/internal/catalog/repository"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/internal/refresh"
	"github.com/serenespa/admin-console/internal/sessions"
	"github.com/stretchr/testify/require"
)

type devServer struct {
	srv    *httptest.Server
	router *gin.Engine
	repo   *repository.MemoryRepo
	store  *media.MemoryStore
	cfg    *config.Config
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour
	cfg.DevBackend = config.DevBackendConfig{
		AdminEmail:    "admin@spa.local",
		AdminPassword: "secret",
		AdminName:     "Spa Admin",
		CloudName:     "spa-dev",
		CloudAPIKey:   "dev-key",
		CloudSecret:   "dev-secret",
		SeedServices:  true,
	}
	return cfg
}

func newDevServer(t *testing.T) *devServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	ds := &devServer{
		srv:   srv,
		repo:  repository.NewMemoryRepo(),
		store: media.NewMemoryStore("services", srv.URL+"/media"),
		cfg:   cfg,
	}
	adminSvc := admins.NewService(admins.NewMemoryRepository())
	require.NoError(t, SeedDev(context.Background(), cfg, adminSvc, ds.repo))

	ds.router = NewRouter(Deps{
		Config:    cfg,
		Admins:    adminSvc,
		Sessions:  sessions.NewService(sessions.NewMemoryRepository()),
		Blacklist: sessions.NewMemoryBlacklist(),
		Services:  ds.repo,
		Media:     ds.store,
	})
	handler = ds.router
	return ds
}

func (ds *devServer) client(t *testing.T) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Options{BaseURL: ds.srv.URL, Timeout: 5 * time.Second, RefreshTimeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func cookieFrom(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// rawLogin logs in over plain HTTP and returns both session cookies.
func (ds *devServer) rawLogin(t *testing.T) (access, refreshCookie *http.Cookie) {
	t.Helper()
	resp, err := http.Post(ds.srv.URL+"/api/admins/login", "application/json",
		strings.NewReader(`{"email":"admin@spa.local","password":"secret"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access, refreshCookie = cookieFrom(resp, AccessCookie), cookieFrom(resp, RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refreshCookie)
	require.True(t, access.HttpOnly)
	return access, refreshCookie
}

func (ds *devServer) do(t *testing.T, method, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ds.srv.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAdminSessionLifecycle(t *testing.T) {
	ds := newDevServer(t)
	c := ds.client(t)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "admin@spa.local", "secret"))
	require.NoError(t, c.Verify(ctx))
	require.NoError(t, c.Logout(ctx))

	err := c.Verify(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, refresh.ErrRefreshFailed)
}

func TestLoginWrongPassword(t *testing.T) {
	ds := newDevServer(t)
	err := ds.client(t).Login(context.Background(), "admin@spa.local", "nope")
	require.Error(t, err)
	require.Equal(t, "Invalid email or password", backend.DisplayMessage(err, "Login failed"))

	err = ds.client(t).Login(context.Background(), "", "")
	require.Equal(t, "Email and password are required", backend.DisplayMessage(err, "Login failed"))
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	ds := newDevServer(t)
	c := ds.client(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "admin@spa.local", "secret"))

	u, _ := url.Parse(ds.srv.URL)
	c.Jar().SetCookies(u, []*http.Cookie{{Name: AccessCookie, Value: "expired.jwt.value", Path: "/"}})

	require.NoError(t, c.Verify(ctx))
	require.Equal(t, refresh.Idle, c.Gate().State())
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	ds := newDevServer(t)
	_, rt := ds.rawLogin(t)

	first := ds.do(t, http.MethodPost, "/refresh-token", rt)
	require.Equal(t, http.StatusOK, first.StatusCode)
	rotated := cookieFrom(first, RefreshCookie)
	require.NotNil(t, rotated)
	require.NotEqual(t, rt.Value, rotated.Value)
	require.NotNil(t, cookieFrom(first, AccessCookie))

	replay := ds.do(t, http.MethodPost, "/refresh-token", rt)
	require.Equal(t, http.StatusUnauthorized, replay.StatusCode)

	require.Equal(t, http.StatusUnauthorized, ds.do(t, http.MethodPost, "/refresh-token").StatusCode)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	ds := newDevServer(t)
	at, rt := ds.rawLogin(t)

	require.Equal(t, http.StatusOK, ds.do(t, http.MethodGet, "/api/admins/verify", at).StatusCode)
	require.Equal(t, http.StatusOK, ds.do(t, http.MethodPost, "/api/admins/logout", at, rt).StatusCode)

	resp := ds.do(t, http.MethodGet, "/api/admins/verify", at)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "revoked")

	require.Equal(t, http.StatusUnauthorized, ds.do(t, http.MethodPost, "/refresh-token", rt).StatusCode)
}

func TestServicesRequireSession(t *testing.T) {
	ds := newDevServer(t)
	for _, p := range []string{"/api/services/getServices", "/api/services/inactive"} {
		require.Equal(t, http.StatusUnauthorized, ds.do(t, http.MethodGet, p).StatusCode, p)
	}
	require.Equal(t, http.StatusUnauthorized, ds.do(t, http.MethodPost, "/api/cloudinary/create-signature").StatusCode)
}

func TestCatalogEndpoints(t *testing.T) {
	ds := newDevServer(t)
	api := ds.client(t)
	ctx := context.Background()
	require.NoError(t, api.Login(ctx, "admin@spa.local", "secret"))
	cat := catalog.NewClient(api)

	active, err := cat.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	require.Equal(t, "Swedish Massage", active[0].Name)
	require.Equal(t, catalog.Minutes(60), active[0].Duration)

	inactive, err := cat.ListInactive(ctx)
	require.NoError(t, err)
	require.Len(t, inactive, 1)

	require.NoError(t, cat.Reactivate(ctx, inactive[0].SID))
	active, err = cat.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 4)

	err = cat.Reactivate(ctx, 999)
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)

	require.NoError(t, cat.Update(ctx, 1, catalog.ServiceUpdate{
		Name: "Swedish Massage", Duration: 75, Description: "Longer", AID: 1,
		Media: []string{"https://cdn.example.com/a.jpg"},
	}))
	got, err := ds.repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, catalog.Minutes(75), got.Duration)
	require.Equal(t, []string{"https://cdn.example.com/a.jpg"}, got.MediaURLs())
}

func TestCreateServiceStoresMedia(t *testing.T) {
	ds := newDevServer(t)
	api := ds.client(t)
	ctx := context.Background()
	require.NoError(t, api.Login(ctx, "admin@spa.local", "secret"))

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	sid, err := catalog.NewClient(api).Create(ctx,
		catalog.NewService{Name: "Deep Tissue", Duration: 50, Description: "Firm pressure", AID: 1},
		[]media.File{{Name: "room.png", ContentType: "image/png", Size: int64(len(png)), Body: bytes.NewReader(png)}})
	require.NoError(t, err)
	require.Equal(t, int64(5), sid)

	s, err := ds.repo.Get(ctx, sid)
	require.NoError(t, err)
	require.Len(t, s.Media, 1)
	require.Equal(t, "image", s.Media[0].Type)
	require.True(t, strings.HasPrefix(s.Media[0].URL, ds.srv.URL+"/media/services/"))

	resp, err := http.Get(s.Media[0].URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, png, body)
}

func TestSignedUploadRoundTrip(t *testing.T) {
	ds := newDevServer(t)
	api := ds.client(t)
	ctx := context.Background()
	require.NoError(t, api.Login(ctx, "admin@spa.local", "secret"))

	up := media.NewSignedUploader(api, ds.srv.URL, "services", 5*time.Second)
	u, err := up.Upload(ctx, media.File{Name: "clip.mp4", ContentType: "video/mp4", Body: strings.NewReader("not really a video")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, ds.srv.URL+"/media/services/"))
	require.Equal(t, 1, ds.store.Len())
}

func TestUploadRejectsBadCredentials(t *testing.T) {
	ds := newDevServer(t)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	valid := SignParams(map[string]string{"folder": "services", "timestamp": ts}, "dev-secret")
	flipped := []byte(valid)
	flipped[len(flipped)-1] ^= 1

	cases := map[string]struct{ apiKey, signature string }{
		"forged signature":  {"dev-key", "forged"},
		"signature prefix":  {"dev-key", valid[:20]},
		"one character off": {"dev-key", string(flipped)},
		"wrong api key":     {"dev-ke", valid},
		"empty signature":   {"dev-key", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			_ = w.WriteField("api_key", tc.apiKey)
			_ = w.WriteField("timestamp", ts)
			_ = w.WriteField("folder", "services")
			_ = w.WriteField("signature", tc.signature)
			fw, _ := w.CreateFormFile("file", "x.png")
			_, _ = fw.Write([]byte("x"))
			require.NoError(t, w.Close())

			resp, err := http.Post(ds.srv.URL+"/v1_1/spa-dev/auto/upload", w.FormDataContentType(), &buf)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Zero(t, ds.store.Len())
		})
	}
}

func TestEqualSecret(t *testing.T) {
	require.True(t, equalSecret("abc", "abc"))
	require.False(t, equalSecret("abc", "abd"))
	require.False(t, equalSecret("ab", "abc"))
	require.False(t, equalSecret("", "abc"))
}

func TestSignParams(t *testing.T) {
	a := SignParams(map[string]string{"timestamp": "1700000000", "folder": "services"}, "s")
	b := SignParams(map[string]string{"folder": "services", "timestamp": "1700000000", "empty": ""}, "s")
	require.Equal(t, a, b)
	require.Len(t, a, 40)
	require.NotEqual(t, a, SignParams(map[string]string{"folder": "services", "timestamp": "1700000000"}, "other"))
}

func TestSeedDevIsIdempotent(t *testing.T) {
	cfg := testConfig()
	repo := repository.NewMemoryRepo()
	svc := admins.NewService(admins.NewMemoryRepository())
	ctx := context.Background()
	require.NoError(t, SeedDev(ctx, cfg, svc, repo))
	require.NoError(t, SeedDev(ctx, cfg, svc, repo))

	active, _ := repo.List(ctx, true)
	inactive, _ := repo.List(ctx, false)
	require.Len(t, active, 3)
	require.Len(t, inactive, 1)

	a, err := svc.Authenticate(ctx, "admin@spa.local", "secret")
	require.NoError(t, err)
	require.Equal(t, int64(1), a.AID)
}
