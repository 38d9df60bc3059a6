package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/handlers"
	"github.com/serenespa/admin-console/internal/admins"
	"github.com/serenespa/admin-console/internal/catalog/repository"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/internal/sessions"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "cli-secret"
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
	adminSvc := admins.NewService(admins.NewMemoryRepository())
	repo := repository.NewMemoryRepo()
	require.NoError(t, handlers.SeedDev(context.Background(), cfg, adminSvc, repo))

	srv := httptest.NewServer(handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Admins:    adminSvc,
		Sessions:  sessions.NewService(sessions.NewMemoryRepository()),
		Blacklist: sessions.NewMemoryBlacklist(),
		Services:  repo,
		Media:     media.NewMemoryStore("services", "http://media.test"),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONSOLE_EMAIL", "")
	t.Setenv("CONSOLE_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVerify_SignsIn(t *testing.T) {
	srv := newBackend(t)
	out, err := run(t, "verify", "--backend-url", srv.URL, "--email", "admin@spa.local", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "session: authenticated")
	require.Contains(t, out, "initialized=true")
}

func TestVerify_WrongPassword(t *testing.T) {
	srv := newBackend(t)
	_, err := run(t, "verify", "--backend-url", srv.URL, "--email", "admin@spa.local", "--password", "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid email or password")
}

func TestCommands_RequireCredentials(t *testing.T) {
	srv := newBackend(t)
	_, err := run(t, "services", "list", "--backend-url", srv.URL)
	require.ErrorIs(t, err, errNoCredentials)
}

func TestServicesList(t *testing.T) {
	srv := newBackend(t)
	login := []string{"--backend-url", srv.URL, "--email", "admin@spa.local", "--password", "secret"}

	out, err := run(t, append([]string{"services", "list"}, login...)...)
	require.NoError(t, err)
	require.Contains(t, out, "SID")
	require.Contains(t, out, "Swedish Massage")
	require.Contains(t, out, "60 min")
	require.NotContains(t, out, "Foot Reflexology")

	out, err = run(t, append([]string{"services", "list", "-q", "stone"}, login...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Hot Stone Therapy")
	require.NotContains(t, out, "Swedish Massage")

	out, err = run(t, append([]string{"services", "list", "-q", "nothing-matches"}, login...)...)
	require.NoError(t, err)
	require.Contains(t, out, "No services found")
}

func TestServicesReactivate(t *testing.T) {
	srv := newBackend(t)
	login := []string{"--backend-url", srv.URL, "--email", "admin@spa.local", "--password", "secret"}

	out, err := run(t, append([]string{"services", "list", "--inactive"}, login...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Foot Reflexology")

	out, err = run(t, append([]string{"services", "reactivate", "4"}, login...)...)
	require.NoError(t, err)
	require.Contains(t, out, "service 4 reactivated")

	out, err = run(t, append([]string{"services", "list"}, login...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Foot Reflexology")
}

func TestServicesReactivate_BadSID(t *testing.T) {
	_, err := run(t, "services", "reactivate", "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid sid")
}
