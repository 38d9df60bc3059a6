package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/serenespa/admin-console/internal/auth"
	"github.com/serenespa/admin-console/internal/catalog"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/pkg/logger"
	"github.com/serenespa/admin-console/pkg/metrics"
	"github.com/serenespa/admin-console/pkg/middleware"
)

const (
	LoginPath   = "/admin/login"
	DefaultPath = "/admin/create-service"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Catalog is what the pages need from the catalog endpoints.
type Catalog interface {
	ListActive(ctx context.Context) ([]catalog.Service, error)
	ListInactive(ctx context.Context) ([]catalog.Service, error)
	Reactivate(ctx context.Context, sid int64) error
	Update(ctx context.Context, sid int64, u catalog.ServiceUpdate) error
	Create(ctx context.Context, s catalog.NewService, files []media.File) (int64, error)
}

type Options struct {
	Config   *config.Config
	State    *auth.State
	Verifier *auth.Verifier
	Manager  *auth.Manager
	Catalog  Catalog
	// Uploader stores media picked on the edit page; nil disables new uploads.
	Uploader media.Uploader
	// Redis backs the login rate limiter when RATE_LIMIT_USE_REDIS is set.
	Redis *redis.Client
}

// Console serves the admin pages for the single process-wide session.
type Console struct {
	cfg      *config.Config
	state    *auth.State
	verifier *auth.Verifier
	manager  *auth.Manager
	catalog  Catalog
	uploader media.Uploader
	redis    *redis.Client
	registry *prometheus.Registry
	tmpl     *template.Template
}

func New(opts Options) (*Console, error) {
	if opts.State == nil || opts.Verifier == nil || opts.Manager == nil || opts.Catalog == nil {
		return nil, errors.New("web: state, verifier, manager and catalog are required")
	}
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	return &Console{
		cfg:      cfg,
		state:    opts.State,
		verifier: opts.Verifier,
		manager:  opts.Manager,
		catalog:  opts.Catalog,
		uploader: opts.Uploader,
		redis:    opts.Redis,
		registry: reg,
		tmpl:     tmpl,
	}, nil
}

// Start launches the startup session verification. Pages behind the guard
// show the placeholder until it resolves.
func (w *Console) Start(ctx context.Context) <-chan struct{} {
	return w.verifier.Start(ctx)
}

func (w *Console) loginLimiter() gin.HandlerFunc {
	rl := w.cfg.RateLimit
	if !rl.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if rl.UseRedis && w.redis != nil {
		return middleware.RedisRateLimitMiddleware(w.redis, rl.RPS, rl.Burst, time.Duration(rl.WindowSeconds)*time.Second)
	}
	return middleware.RateLimitMiddleware(rl.RPS, rl.Burst)
}

// Router builds the gin engine with every console route.
func (w *Console) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(w.tmpl)

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", w.ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(w.registry, promhttp.HandlerOpts{})))
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, DefaultPath) })

	admin := r.Group("/admin")
	admin.GET("/login", w.loginPage)
	admin.POST("/login", w.loginLimiter(), w.login)
	admin.POST("/logout", w.logout)
	admin.GET("/session/events", w.events)

	guarded := admin.Group("", middleware.RouteGuard(w.state, LoginPath, w.pending))
	guarded.GET("/create-service", w.createForm)
	guarded.POST("/create-service", w.create)
	guarded.GET("/active-service", w.activeList)
	guarded.GET("/active-service/:sid/edit", w.editForm)
	guarded.POST("/active-service/:sid/edit", w.edit)
	guarded.GET("/inactive-service", w.inactiveList)
	guarded.POST("/inactive-service/:sid/reactivate", w.reactivate)

	r.NoRoute(func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/admin" || strings.HasPrefix(p, "/admin/") {
			c.Redirect(http.StatusFound, DefaultPath)
			return
		}
		c.String(http.StatusNotFound, "not found")
	})
	return r
}

func (w *Console) ready(c *gin.Context) {
	s := w.state.Snapshot()
	if !s.Initialized {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "session": s})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "session": s})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logger.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"took":   time.Since(start).String(),
		}).Debugf("request")
	}
}

// Serve runs the console until ctx is cancelled.
func (w *Console) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      w.Router(),
		ReadTimeout:  w.cfg.Server.ReadTimeout,
		WriteTimeout: w.cfg.Server.WriteTimeout,
	}
	w.Start(ctx)

	errc := make(chan error, 1)
	go func() {
		logger.Infof("admin console listening on http://%s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
