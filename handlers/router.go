package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/admins"
	"github.com/serenespa/admin-console/internal/catalog/repository"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/internal/sessions"
	"github.com/serenespa/admin-console/pkg/logger"
)

// Deps are the stores behind the dev backend.
type Deps struct {
	Config    *config.Config
	Admins    *admins.Service
	Sessions  *sessions.Service
	Blacklist sessions.Blacklist
	Services  repository.Repository
	Media     media.Store
}

// NewRouter builds the dev backend: admin sessions, the service catalog,
// upload signing with a mock media host, and swagger.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if origins := d.Config.DevBackend.AllowOrigins; len(origins) > 0 {
		logger.WithFields(logger.Fields{"allowedOrigins": origins}).Debugf("CORS configuration")
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	ah := NewAdminHandler(d.Config, d.Admins, d.Sessions, d.Blacklist)
	ah.Register(r)
	auth := ah.RequireAdmin()

	NewServiceHandler(d.Services, d.Media).Register(r, auth)
	dv := d.Config.DevBackend
	NewMediaHandler(dv.CloudName, dv.CloudAPIKey, dv.CloudSecret, d.Media).Register(r, auth)
	RegisterSwagger(r)
	return r
}

// SeedDev creates the configured admin (aid 1) and, when the catalog is
// empty, the demo services.
func SeedDev(ctx context.Context, cfg *config.Config, a *admins.Service, repo repository.Repository) error {
	dv := cfg.DevBackend
	if dv.AdminPassword != "" {
		if _, err := a.Seed(ctx, 1, dv.AdminEmail, dv.AdminName, dv.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		logger.Infof("seeded admin %s", dv.AdminEmail)
	} else {
		logger.Warnf("DEV_ADMIN_PASSWORD not set; no admin account seeded")
	}
	if !dv.SeedServices {
		return nil
	}
	active, err := repo.List(ctx, true)
	if err != nil {
		return err
	}
	inactive, err := repo.List(ctx, false)
	if err != nil {
		return err
	}
	if len(active)+len(inactive) > 0 {
		return nil
	}
	for _, s := range repository.Seed() {
		if _, err := repo.Create(ctx, &s); err != nil {
			return fmt.Errorf("seed service %q: %w", s.Name, err)
		}
	}
	logger.Infof("seeded %d services", len(repository.Seed()))
	return nil
}
