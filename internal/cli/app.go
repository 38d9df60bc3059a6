package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serenespa/admin-console/internal/auth"
	"github.com/serenespa/admin-console/internal/backend"
	"github.com/serenespa/admin-console/internal/catalog"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/pkg/logger"
)

// app is the console wiring shared by every command: one backend client,
// one session state, one refresh gate.
type app struct {
	cfg      *config.Config
	api      *backend.Client
	state    *auth.State
	verifier *auth.Verifier
	manager  *auth.Manager
	catalog  *catalog.Client
}

func newApp(cfg *config.Config) (*app, error) {
	api, err := backend.New(backend.Options{
		BaseURL:        cfg.Backend.URL,
		Timeout:        cfg.Backend.Timeout,
		RefreshTimeout: cfg.Backend.RefreshTimeout,
	})
	if err != nil {
		return nil, err
	}
	st := auth.NewState()
	v := auth.NewVerifier(api, st, cfg.Backend.VerifyTimeout)
	return &app{
		cfg:      cfg,
		api:      api,
		state:    st,
		verifier: v,
		manager:  auth.NewManager(api, st, v),
		catalog:  catalog.NewClient(api),
	}, nil
}

var errNoCredentials = errors.New("--email and --password (or CONSOLE_EMAIL / CONSOLE_PASSWORD) are required")

// signIn logs in for one-shot commands.
func (a *app) signIn(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errNoCredentials
	}
	o, err := a.manager.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", backend.DisplayMessage(err, err.Error()))
	}
	if o != auth.Authenticated {
		return fmt.Errorf("login accepted but session verification returned %s", o)
	}
	return nil
}

// uploader picks the media driver for new files on the edit page.
func (a *app) uploader(ctx context.Context) (media.Uploader, error) {
	m := a.cfg.Media
	switch m.Driver {
	case "minio":
		return media.NewMinIOStore(ctx, m.MinIO, m.Folder)
	default:
		return media.NewSignedUploader(a.api, m.UploadURL, m.Folder, a.cfg.Backend.Timeout), nil
	}
}

// redisClient returns a client for the login limiter, or nil when Redis is
// not configured or not reachable.
func (a *app) redisClient(ctx context.Context) *redis.Client {
	addr := a.cfg.Redis.Addr()
	if addr == "" || !a.cfg.RateLimit.UseRedis {
		return nil
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
	if err := c.Ping(ctx).Err(); err != nil {
		logger.Warnf("Redis at %s unavailable, login limiter falls back to memory: %v", addr, err)
		_ = c.Close()
		return nil
	}
	return c
}
